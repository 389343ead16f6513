package variables

import (
	"bufio"
	"errors"
	"strings"

	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
)

// =============================================================================
// Descriptor Grammar
// =============================================================================

// Descriptor is a parsed NAME or NAME=value string.
type Descriptor struct {
	Name     string
	Value    string
	HasValue bool
}

// ParseDescriptor parses an environment descriptor.
//
// Grammar:
//   - NAME: name only, no value
//   - NAME=value: value may not contain '=' unless it is quoted
//   - NAME="value" or NAME='value': quotes are stripped, the inner text is kept as is
//
// Whitespace around the name and the value is trimmed.
//
// Examples:
//
//	ParseDescriptor("PORT")           // {Name: "PORT"}
//	ParseDescriptor(" PORT = 8080 ")  // {Name: "PORT", Value: "8080", HasValue: true}
//	ParseDescriptor(`DSN="a=b"`)      // {Name: "DSN", Value: "a=b", HasValue: true}
//	ParseDescriptor("DSN=a=b")        // fails with fault.ErrMalformedInput
func ParseDescriptor(s string) (Descriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Descriptor{}, fault.Malformed("empty environment descriptor")
	}

	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return Descriptor{}, fault.Malformed("environment descriptor %q has no name", s)
	}
	if !ok {
		return Descriptor{Name: name}, nil
	}

	value = strings.TrimSpace(value)
	if q := quote(value); q != 0 {
		if len(value) < 2 || value[len(value)-1] != q {
			return Descriptor{}, fault.Malformed("unterminated quote in value of %s", name)
		}
		return Descriptor{Name: name, Value: value[1 : len(value)-1], HasValue: true}, nil
	}
	if strings.Contains(value, "=") {
		return Descriptor{}, fault.Malformed("value of %s contains an unquoted '='", name)
	}
	return Descriptor{Name: name, Value: value, HasValue: true}, nil
}

func quote(value string) byte {
	if value == "" {
		return 0
	}
	if c := value[0]; c == '"' || c == '\'' {
		return c
	}
	return 0
}

// ParseVariable parses NAME=value. A descriptor without a value fails.
func ParseVariable(s string) (spec.EnvVariable, error) {
	d, err := ParseDescriptor(s)
	if err != nil {
		return spec.EnvVariable{}, err
	}
	if !d.HasValue {
		return spec.EnvVariable{}, fault.Malformed("environment variable %s has no value", d.Name)
	}
	return spec.EnvVariable{Name: d.Name, Value: d.Value}, nil
}

// ParseEnvFile parses env file content. Blank lines and lines starting
// with '#' are skipped; every other line must be NAME=value.
func ParseEnvFile(content string) ([]spec.EnvVariable, error) {
	var vars []spec.EnvVariable

	scanner := bufio.NewScanner(strings.NewReader(content))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := ParseVariable(text)
		if err != nil {
			var fe *fault.Error
			if errors.As(err, &fe) {
				return nil, fault.Malformed("line %d: %s", line, fe.Message)
			}
			return nil, err
		}
		vars = append(vars, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fault.Malformed("read env content: %v", err)
	}
	return vars, nil
}
