package fault

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Error Formatting Tests
// =============================================================================

func TestError_MessageOnly(t *testing.T) {
	err := Undefined("secret %s not found", "db-password")
	assert.Equal(t, "secret db-password not found", err.Error())
}

func TestError_WithScope(t *testing.T) {
	err := Undefined("secret %s not found", "db-password").
		WithDeployment("prod").
		WithService("api")

	assert.Equal(t, "deployment prod: service api: secret db-password not found", err.Error())
}

func TestError_WithCause(t *testing.T) {
	err := IO(fs.ErrNotExist, "read config %s", "app.conf")
	assert.Equal(t, "read config app.conf: file does not exist", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestError_ScopeKeepsExistingNames(t *testing.T) {
	err := Constraint("duplicate").WithService("a").WithService("b")
	assert.Equal(t, "a", err.Service)
}

// =============================================================================
// Kind Tests
// =============================================================================

func TestError_IsSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"malformed", Malformed("x"), ErrMalformedInput},
		{"undefined", Undefined("x"), ErrUndefinedReference},
		{"constraint", Constraint("x"), ErrConstraintViolation},
		{"io", IO(nil, "x"), ErrIOFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			wrapped := fmt.Errorf("load: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestError_IsOtherSentinel(t *testing.T) {
	err := Malformed("x")
	assert.False(t, errors.Is(err, ErrIOFailure))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConstraintViolation, KindOf(fmt.Errorf("wrap: %w", Constraint("x"))))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.True(t, IsKind(Undefined("x"), KindUndefinedReference))
}

func TestScope(t *testing.T) {
	err := Scope(Undefined("variant v not found"), "prod", "web")

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "prod", fe.Deployment)
	assert.Equal(t, "web", fe.Service)

	plain := errors.New("plain")
	assert.Equal(t, plain, Scope(plain, "prod", "web"))
}
