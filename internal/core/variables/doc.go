// Package variables provides pure functions for environment variable
// resolution.
//
// This package contains the functional core logic for substituting ${NAME}
// references, resolving an application's variable tiers against the values a
// deployment supplies, and parsing the NAME=value descriptor grammar used by
// descriptors and env files. All functions are pure (no I/O, no side effects).
//
// # Functions
//
//   - Interpolate: Substitute ${NAME} references from a resolved scope
//   - ResolveTiers: Resolve external, optional, relative and internal tiers in order
//   - ParseDescriptor: Parse NAME or NAME=value
//   - ParseVariable: Parse NAME=value, value required
//   - ParseEnvFile: Parse env file content line by line
//
// # Usage
//
// The resolver builds one scope per host domain and filters it per service:
//
//	set, err := variables.ResolveTiers(app.Environment, deployment.Environment, "example.com")
//	if err != nil {
//	    return err
//	}
//	url, err := variables.Interpolate("${API_ROOT}/v1", set)
//
// Substitution never re-scans substituted text and a tier only sees the
// variables of earlier tiers, so reference cycles cannot occur.
package variables
