package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
	"github.com/artpar/simpled/internal/core/variables"
)

// =============================================================================
// Service Planning
// =============================================================================

// servicePlan is the per-service routing decision made before any service
// is resolved.
type servicePlan struct {
	service     spec.ServiceSpec
	override    spec.ServiceOverride
	hasOverride bool
	versioned   bool
	variant     string
	host        string
	domain      string
	prefixes    []spec.Prefix
}

type routeClaim struct {
	host   string
	prefix string
}

// planServices picks variant, host and prefixes for every service and
// rejects host+prefix pairs claimed by more than one Public service.
func planServices(env spec.DeploymentEnvironmentSpec, app spec.AppSpec, d spec.DeploymentSpec) ([]servicePlan, error) {
	all := app.AllServices()
	plans := make([]servicePlan, 0, len(all))
	claims := make(map[routeClaim]string)

	for _, svc := range all {
		p := servicePlan{
			service:   svc,
			versioned: app.IsAppService(svc.Name),
			variant:   spec.DefaultVariant,
			host:      d.PrimaryHost,
		}
		p.override, p.hasOverride = d.Override(svc.Name)
		if p.hasOverride {
			if p.override.Variant != "" {
				p.variant = p.override.Variant
			}
			if p.override.Host != "" {
				p.host = p.override.Host
			}
			if svc.Type == spec.ServicePublic {
				p.prefixes = p.override.Prefixes
			}
		}

		host, ok := env.Ingress.Host(p.host)
		if !ok {
			return nil, fault.Undefined("host %s is not an ingress host", p.host).
				WithDeployment(d.Name).WithService(svc.Name)
		}
		if len(host.Domains) == 0 {
			return nil, fault.Undefined("ingress host %s has no domain names", p.host).
				WithDeployment(d.Name).WithService(svc.Name)
		}
		p.domain = host.Domains[0]

		for _, prefix := range p.prefixes {
			c := routeClaim{host: p.host, prefix: prefix.Path}
			if owner, taken := claims[c]; taken {
				return nil, fault.Constraint("duplicate host+prefix combination %s%s claimed by public services %s and %s",
					c.host, c.prefix, owner, svc.Name).WithDeployment(d.Name)
			}
			claims[c] = svc.Name
		}

		plans = append(plans, p)
	}
	return plans, nil
}

// =============================================================================
// Environment Scopes
// =============================================================================

// scopePair is the resolved variable set for one host domain, once with the
// deployment environment and once with the undockerized overrides on top.
type scopePair struct {
	primary      *variables.Set
	undockerized *variables.Set
}

// buildScopes resolves the variable tiers once per distinct host domain.
func buildScopes(app spec.AppSpec, d spec.DeploymentSpec, plans []servicePlan) (map[string]scopePair, error) {
	undockerized := mergeVariables(d.Environment, d.UndockerizedEnvironment)

	scopes := make(map[string]scopePair)
	for _, p := range plans {
		if _, done := scopes[p.domain]; done {
			continue
		}
		primary, err := variables.ResolveTiers(app.Environment, d.Environment, p.domain)
		if err != nil {
			return nil, fault.Scope(err, d.Name, "")
		}
		local, err := variables.ResolveTiers(app.Environment, undockerized, p.domain)
		if err != nil {
			return nil, fault.Scope(err, d.Name, "")
		}
		scopes[p.domain] = scopePair{primary: primary, undockerized: local}
	}
	return scopes, nil
}

// mergeVariables returns base with every override applied: a matching name
// has its value replaced in place, any other name is appended.
func mergeVariables(base, overrides []spec.EnvVariable) []spec.EnvVariable {
	merged := make([]spec.EnvVariable, len(base), len(base)+len(overrides))
	copy(merged, base)

outer:
	for _, o := range overrides {
		for i := range merged {
			if merged[i].Name == o.Name {
				merged[i].Value = o.Value
				continue outer
			}
		}
		merged = append(merged, o)
	}
	return merged
}

// =============================================================================
// Service Resolution
// =============================================================================

// resolveServices resolves every planned service concurrently. Results are
// stored by plan index so declaration order is kept.
func (r *Resolver) resolveServices(ctx context.Context, in *resolution, plans []servicePlan) ([]spec.ResolvedService, error) {
	out := make([]spec.ResolvedService, len(plans))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, p := range plans {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			svc, err := resolveService(in, p)
			if err != nil {
				return fault.Scope(err, in.deployment.Name, p.service.Name)
			}
			out[i] = svc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveService(in *resolution, p servicePlan) (spec.ResolvedService, error) {
	svc := p.service

	variant, ok := svc.Variant(p.variant)
	if !ok {
		return spec.ResolvedService{}, fault.Undefined("image variant %s not found", p.variant)
	}
	image, err := QualifyImage(variant.Image, ImageOptions{
		Versioned: p.versioned,
		Version:   in.version,
		Local:     in.env.Type.IsLocal(),
		Registry:  in.env.Registry,
	})
	if err != nil {
		return spec.ResolvedService{}, err
	}

	scopes := in.scopes[p.domain]
	environment, err := SelectEnvironment(svc.Environment, scopes.primary)
	if err != nil {
		return spec.ResolvedService{}, err
	}
	undockerized, err := SelectEnvironment(svc.Environment, scopes.undockerized)
	if err != nil {
		return spec.ResolvedService{}, err
	}

	configs, err := bindConfigs(in, svc)
	if err != nil {
		return spec.ResolvedService{}, err
	}
	secrets, err := bindSecrets(in, svc)
	if err != nil {
		return spec.ResolvedService{}, err
	}

	ports := svc.Ports
	if p.hasOverride && p.override.Ports != nil {
		ports = p.override.Ports
	}
	if in.env.Type.IsLocal() && len(ports) == 0 {
		return spec.ResolvedService{}, fault.Constraint("a service in a local environment must declare at least one port")
	}

	resources := in.deployment.Defaults
	if p.hasOverride && p.override.Resources != (spec.Resources{}) {
		resources = p.override.Resources
	}

	return spec.ResolvedService{
		Name:                    svc.Name,
		FullName:                spec.FullName(in.app.Name, svc.Name),
		Type:                    svc.Type,
		Image:                   image,
		HostDomain:              p.domain,
		Environment:             environment,
		UndockerizedEnvironment: undockerized,
		Configs:                 configs,
		Secrets:                 secrets,
		Ports:                   append([]spec.Port{}, ports...),
		Resources:               resources,
	}, nil
}

// SelectEnvironment applies a service's selectors to a resolved set.
//
// Behavior:
//   - SelectAll copies every variable
//   - SelectName copies one variable and fails when it is absent
//   - SelectValue interpolates its value against the set
//
// A later selector for the same name replaces the earlier value in place.
func SelectEnvironment(selectors []spec.EnvSelector, set *variables.Set) ([]spec.EnvVariable, error) {
	out := variables.NewSet()
	for _, sel := range selectors {
		switch s := sel.(type) {
		case spec.SelectAll:
			for _, v := range set.Vars() {
				out.Put(v.Name, v.Value)
			}
		case spec.SelectName:
			value, ok := set.Lookup(s.Name)
			if !ok {
				return nil, fault.Undefined("references undefined environment variable %s", s.Name)
			}
			out.Put(s.Name, value)
		case spec.SelectValue:
			value, err := variables.Interpolate(s.Value, set)
			if err != nil {
				return nil, err
			}
			out.Put(s.Name, value)
		default:
			return nil, fault.Malformed("unsupported environment selector %T", sel)
		}
	}
	return out.Vars(), nil
}

func bindConfigs(in *resolution, svc spec.ServiceSpec) ([]spec.ConfigMount, error) {
	out := make([]spec.ConfigMount, 0, len(svc.Configs))
	for _, c := range svc.Configs {
		name := spec.FullName(in.app.Name, c.Config)
		if _, ok := (spec.ResolvedDeployment{Configs: in.configs}).Config(name); !ok {
			return nil, fault.Undefined("references undefined config %s", name)
		}
		out = append(out, spec.ConfigMount{Config: name, MountPath: c.MountPath})
	}
	return out, nil
}

func bindSecrets(in *resolution, svc spec.ServiceSpec) ([]spec.SecretBinding, error) {
	out := make([]spec.SecretBinding, 0, len(svc.Secrets))
	for _, s := range svc.Secrets {
		name := spec.FullName(in.app.Name, s.Name)
		if _, ok := (spec.ResolvedDeployment{Secrets: in.secrets}).Secret(name); !ok {
			return nil, fault.Undefined("references undefined secret %s", s.Name)
		}
		out = append(out, spec.SecretBinding{Name: name, Mount: s.Mount})
	}
	return out, nil
}
