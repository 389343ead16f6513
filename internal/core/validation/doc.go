// Package validation provides pure validation functions for descriptors.
//
// This package contains the functional core logic for checking that an
// application descriptor and an environment descriptor fit together before
// anything is resolved. All functions are pure (no I/O, no side effects) and
// stop at the first violated rule.
//
// # Functions
//
//   - Validate: Check an application against one deployment of an environment
//   - ValidateEnvironment: Check environment-wide rules (Local invariants, unique names)
//
// # Usage
//
// The resolver runs both checks before it reads any file:
//
//	if err := validation.ValidateEnvironment(env); err != nil {
//	    return err
//	}
//	if err := validation.Validate(env, app, "prod"); err != nil {
//	    // err names the deployment and the offending variable, secret, config or service
//	}
package validation
