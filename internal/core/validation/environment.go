package validation

import (
	"github.com/samber/lo"

	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
)

// =============================================================================
// Environment Validation Functions
// =============================================================================

// ValidateEnvironment checks rules that hold for the environment as a whole.
//
// Every environment needs unique deployment and ingress host names. A Local
// environment additionally needs exactly one deployment, no registry
// mapping, and external ports that are unique across service overrides.
func ValidateEnvironment(env spec.DeploymentEnvironmentSpec) error {
	deployments := lo.Map(env.Deployments, func(d spec.DeploymentSpec, _ int) string { return d.Name })
	if dup := lo.FindDuplicates(deployments); len(dup) > 0 {
		return fault.Constraint("deployment %s is declared more than once", dup[0])
	}

	hosts := lo.Map(env.Ingress.Hosts, func(h spec.HostSpec, _ int) string { return h.Name })
	if dup := lo.FindDuplicates(hosts); len(dup) > 0 {
		return fault.Constraint("ingress host %s is declared more than once", dup[0])
	}

	if env.Type.IsLocal() {
		return validateLocal(env)
	}
	return nil
}

func validateLocal(env spec.DeploymentEnvironmentSpec) error {
	if n := len(env.Deployments); n != 1 {
		return fault.Constraint("a local environment must declare exactly one deployment, found %d", n)
	}
	if len(env.Registry) > 0 {
		return fault.Constraint("a local environment must not declare a registry mapping")
	}

	d := env.Deployments[0]
	claimed := make(map[uint16]string)
	for _, o := range d.Services {
		for _, p := range o.Ports {
			if owner, ok := claimed[p.External]; ok {
				return fault.Constraint("external port %d is used by services %s and %s", p.External, owner, o.Service).
					WithDeployment(d.Name)
			}
			claimed[p.External] = o.Service
		}
	}
	return nil
}
