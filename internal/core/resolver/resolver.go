package resolver

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/afero"

	"github.com/artpar/simpled/internal/core/spec"
	"github.com/artpar/simpled/internal/core/validation"
)

// =============================================================================
// Resolver
// =============================================================================

// Resolver resolves deployments. It holds no state between calls and is safe
// for concurrent use.
type Resolver struct {
	fs          afero.Fs
	lookupEnv   func(string) (string, bool)
	logger      *slog.Logger
	parallelism int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFs sets the filesystem config and secret files are read from.
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) { r.fs = fs }
}

// WithLookupEnv sets the process environment lookup used by env secrets.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(r *Resolver) { r.lookupEnv = lookup }
}

// WithLogger sets the logger. Stage progress is logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithParallelism bounds how many services are resolved at once.
// Values below 1 are ignored.
func WithParallelism(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.parallelism = n
		}
	}
}

// New creates a Resolver reading from the OS filesystem and environment.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		fs:          afero.NewOsFs(),
		lookupEnv:   os.LookupEnv,
		logger:      slog.New(slog.DiscardHandler),
		parallelism: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves a deployment with a default Resolver.
func Resolve(ctx context.Context, env spec.DeploymentEnvironmentSpec, app spec.AppSpec, deployment string) (*spec.EnvironmentResolvedSpec, error) {
	return New().Resolve(ctx, env, app, deployment)
}

// resolution carries the outputs of earlier stages into later ones.
// It is read-only once the per-service stage starts.
type resolution struct {
	env        spec.DeploymentEnvironmentSpec
	app        spec.AppSpec
	deployment spec.DeploymentSpec
	version    string
	configs    []spec.ResolvedConfig
	secrets    []spec.ResolvedSecret
	scopes     map[string]scopePair
}

// Resolve validates and resolves the named deployment of env for app.
func (r *Resolver) Resolve(ctx context.Context, env spec.DeploymentEnvironmentSpec, app spec.AppSpec, deployment string) (*spec.EnvironmentResolvedSpec, error) {
	if err := validation.ValidateEnvironment(env); err != nil {
		return nil, err
	}
	if err := validation.Validate(env, app, deployment); err != nil {
		return nil, err
	}

	d, _ := env.Deployment(deployment)
	log := r.logger.With("deployment", d.Name, "application", app.Name, "env_type", env.Type.Kind.String())

	in := &resolution{env: env, app: app, deployment: d}
	if app.Version != nil {
		in.version = app.Version.String()
	}

	var err error
	if in.configs, err = r.resolveConfigs(app, d); err != nil {
		return nil, err
	}
	log.Debug("configs resolved", "count", len(in.configs))

	if in.secrets, err = r.resolveSecrets(app, d); err != nil {
		return nil, err
	}
	log.Debug("secrets resolved", "count", len(in.secrets))

	plans, err := planServices(env, app, d)
	if err != nil {
		return nil, err
	}

	if in.scopes, err = buildScopes(app, d, plans); err != nil {
		return nil, err
	}
	log.Debug("environment resolved", "host_domains", len(in.scopes))

	services, err := r.resolveServices(ctx, in, plans)
	if err != nil {
		return nil, err
	}
	log.Debug("services resolved", "count", len(services))

	ingress := deriveIngress(env.Ingress, plans, services)
	ingress.TLS = resolveTLS(env.Ingress.TLS)
	log.Debug("ingress derived", "domains", len(ingress.Domains), "rules", len(ingress.Rules))

	return &spec.EnvironmentResolvedSpec{
		Type:    env.Type,
		Ingress: ingress,
		Deployment: spec.ResolvedDeployment{
			Name:        d.Name,
			Application: app.Name,
			Version:     in.version,
			Configs:     in.configs,
			Secrets:     in.secrets,
			Defaults:    d.Defaults,
			Services:    services,
		},
	}, nil
}
