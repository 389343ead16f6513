package variables

import (
	"strings"

	"github.com/artpar/simpled/internal/core/fault"
)

// =============================================================================
// Interpolation Functions
// =============================================================================

const (
	refOpen  = "${"
	refClose = '}'
)

// Interpolate replaces every ${NAME} in template with its value from scope.
//
// Behavior:
//   - References are scanned left to right; substituted text is not scanned again
//   - A "${" without a closing "}" fails with fault.ErrMalformedInput
//   - A name missing from scope fails with fault.ErrUndefinedReference
//   - A template without references is returned unchanged
//
// Examples:
//
//	Interpolate("${A}", NewSet(spec.EnvVariable{Name: "A", Value: "v1"}))
//	// Returns: "v1"
//
//	Interpolate("postgres://${HOST}:${PORT}", set)
//	// Returns: "postgres://db:5432"
//
//	Interpolate("${B}", NewSet(spec.EnvVariable{Name: "A", Value: "v1"}))
//	// Fails: variable B is not defined
func Interpolate(template string, scope Scope) (string, error) {
	if !strings.Contains(template, refOpen) {
		return template, nil
	}

	var b strings.Builder
	b.Grow(len(template))

	rest := template
	for {
		start := strings.Index(rest, refOpen)
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:start])

		body := rest[start+len(refOpen):]
		end := strings.IndexByte(body, refClose)
		if end < 0 {
			return "", fault.Malformed("unterminated variable reference in %q", template)
		}

		name := body[:end]
		value, ok := scope.Lookup(name)
		if !ok {
			return "", fault.Undefined("variable %s is not defined (referenced in %q)", name, template)
		}
		b.WriteString(value)

		rest = body[end+1:]
	}
}
