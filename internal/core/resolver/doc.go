// Package resolver turns an application descriptor and one deployment of an
// environment descriptor into an EnvironmentResolvedSpec.
//
// Resolution runs in fixed stages and stops at the first error:
//
//  1. environment and deployment validation
//  2. config groups, read from files or directories
//  3. secrets, read from the process environment, files or the descriptor
//  4. per-service planning: variant, host, prefixes, host+prefix uniqueness
//  5. per-service resolution: image, environment, config and secret bindings, ports
//  6. ingress rules and TLS
//
// Stage 5 runs services concurrently; results keep declaration order, so
// identical inputs always produce an identical model.
//
// Files are read through an afero.Fs and environment variables through a
// lookup function, both injectable:
//
//	r := resolver.New(
//	    resolver.WithFs(afero.NewBasePathFs(afero.NewOsFs(), root)),
//	    resolver.WithLogger(logger),
//	)
//	resolved, err := r.Resolve(ctx, env, app, "prod")
package resolver
