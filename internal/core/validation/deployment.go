package validation

import (
	"github.com/samber/lo"

	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
)

// =============================================================================
// Deployment Validation Functions
// =============================================================================

// Validate checks that app can be deployed as the named deployment of env.
//
// Checks, in order:
//   - the deployment exists and is bound to app by name
//   - app's version satisfies the deployment's version range, if any
//   - every external variable without a default is supplied
//   - every secret and config group app declares is supplied
//   - every service override names a service of app
//   - every bare-name environment selector names an external, relative or internal
//     variable; optional names are left to the resolver
//
// Example:
//
//	if err := Validate(env, app, "prod"); err != nil {
//	    // deployment prod: secret db-password required by the application is not provided
//	}
func Validate(env spec.DeploymentEnvironmentSpec, app spec.AppSpec, deploymentName string) error {
	d, ok := env.Deployment(deploymentName)
	if !ok {
		return fault.Undefined("deployment %s not found in environment", deploymentName)
	}

	checks := []func(spec.DeploymentSpec, spec.AppSpec) error{
		checkApplication,
		checkExternalVariables,
		checkSecrets,
		checkConfigs,
		checkOverrides,
		checkSelectors,
	}
	for _, check := range checks {
		if err := check(d, app); err != nil {
			return fault.Scope(err, d.Name, "")
		}
	}
	return nil
}

func checkApplication(d spec.DeploymentSpec, app spec.AppSpec) error {
	if d.Application.Name != app.Name {
		return fault.Constraint("expects application %s, but the application descriptor is for %s",
			d.Application.Name, app.Name)
	}
	if d.Application.Version == nil {
		return nil
	}
	if app.Version == nil {
		return fault.Constraint("application %s has no version to check against %s",
			app.Name, d.Application.Version)
	}
	if !d.Application.Version.Check(app.Version) {
		return fault.Constraint("application version %s does not satisfy requirement %s",
			app.Version, d.Application.Version)
	}
	return nil
}

func checkExternalVariables(d spec.DeploymentSpec, app spec.AppSpec) error {
	supplied := lo.KeyBy(d.Environment, func(v spec.EnvVariable) string { return v.Name })

	missing := lo.FilterMap(app.Environment.External, func(v spec.ExternalVariable, _ int) (string, bool) {
		_, ok := supplied[v.Name]
		return v.Name, !ok && !v.HasDefault
	})
	if len(missing) > 0 {
		return fault.Constraint("environment variables %v required by the application are not provided", missing)
	}
	return nil
}

func checkSecrets(d spec.DeploymentSpec, app spec.AppSpec) error {
	for _, s := range app.Secrets {
		if _, ok := d.Secret(s.Name); !ok {
			return fault.Undefined("secret %s required by the application is not provided", s.Name)
		}
	}
	return nil
}

func checkConfigs(d spec.DeploymentSpec, app spec.AppSpec) error {
	for _, c := range app.Configs {
		if _, ok := d.Config(c.Name); !ok {
			return fault.Undefined("config %s required by the application is not provided", c.Name)
		}
	}
	return nil
}

func checkOverrides(d spec.DeploymentSpec, app spec.AppSpec) error {
	for _, o := range d.Services {
		if _, ok := app.Service(o.Service); !ok {
			return fault.Undefined("deployment configures service %s which is not defined in the application", o.Service)
		}
	}
	return nil
}

func checkSelectors(_ spec.DeploymentSpec, app spec.AppSpec) error {
	declared := app.Environment.DeclaredNames()
	optional := lo.Map(app.Environment.Optional, func(v spec.OptionalVariable, _ int) string { return v.Name })
	for _, svc := range app.AllServices() {
		for _, sel := range svc.Environment {
			name, ok := sel.(spec.SelectName)
			if !ok || lo.Contains(optional, name.Name) {
				continue
			}
			if !lo.Contains(declared, name.Name) {
				return fault.Undefined("references undefined environment variable %s", name.Name).
					WithService(svc.Name)
			}
		}
	}
	return nil
}
