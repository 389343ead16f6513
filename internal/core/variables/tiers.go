package variables

import (
	"errors"
	"fmt"

	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
)

// =============================================================================
// Tier Resolution
// =============================================================================

// ResolveTiers resolves an application's variable tiers against the values a
// deployment supplies. Tiers are processed in order and each only sees the
// variables resolved before it:
//
//   - external: the supplied value, else the default, else a constraint violation
//   - optional: the supplied value, skipped when absent
//   - relative: "https://{hostDomain}{path}", interpolated
//   - internal: the declared value, interpolated
//
// Supplied values are taken verbatim; when a name is supplied twice the
// first occurrence wins. A name declared in more than one tier fails.
//
// Example:
//
//	env := spec.AppEnvironment{
//	    External: []spec.ExternalVariable{{Name: "DB_HOST"}},
//	    Relative: []spec.RelativeVariable{{Name: "API_ROOT", Path: "/api"}},
//	    Internal: []spec.InternalVariable{{Name: "DSN", Value: "postgres://${DB_HOST}/app"}},
//	}
//	set, _ := ResolveTiers(env, []spec.EnvVariable{{Name: "DB_HOST", Value: "db"}}, "example.com")
//	// DB_HOST=db, API_ROOT=https://example.com/api, DSN=postgres://db/app
func ResolveTiers(env spec.AppEnvironment, supplied []spec.EnvVariable, hostDomain string) (*Set, error) {
	values := make(map[string]string, len(supplied))
	for _, v := range supplied {
		if _, seen := values[v.Name]; !seen {
			values[v.Name] = v.Value
		}
	}

	set := NewSet()

	for _, v := range env.External {
		value, ok := values[v.Name]
		if !ok {
			if !v.HasDefault {
				return nil, fault.Constraint("external variable %s has no value and no default", v.Name)
			}
			// Defaults may reference earlier external entries.
			var err error
			if value, err = Interpolate(v.Default, set); err != nil {
				return nil, annotate(err, "external", v.Name)
			}
		}
		if err := set.Add(v.Name, value); err != nil {
			return nil, err
		}
	}

	for _, v := range env.Optional {
		value, ok := values[v.Name]
		if !ok {
			continue
		}
		if err := set.Add(v.Name, value); err != nil {
			return nil, err
		}
	}

	for _, v := range env.Relative {
		value, err := Interpolate(fmt.Sprintf("https://%s%s", hostDomain, v.Path), set)
		if err != nil {
			return nil, annotate(err, "relative", v.Name)
		}
		if err := set.Add(v.Name, value); err != nil {
			return nil, err
		}
	}

	for _, v := range env.Internal {
		value, err := Interpolate(v.Value, set)
		if err != nil {
			return nil, annotate(err, "internal", v.Name)
		}
		if err := set.Add(v.Name, value); err != nil {
			return nil, err
		}
	}

	return set, nil
}

// annotate prefixes a fault message with the tier and variable it came from.
func annotate(err error, tier, name string) error {
	var fe *fault.Error
	if !errors.As(err, &fe) {
		return err
	}
	c := *fe
	c.Message = fmt.Sprintf("%s variable %s: %s", tier, name, fe.Message)
	return &c
}
