// Package spec provides the typed model of application descriptors,
// environment descriptors and the resolved deployment they produce.
//
// This package contains pure value types. Constructors only parse what is
// needed to build a value (versions, version ranges, ports, selectors); all
// cross-descriptor checks live in the validation and resolver packages.
//
// # Types
//
//   - AppSpec: services, images, environment tiers, configs and secrets of an application
//   - DeploymentEnvironmentSpec: environment type, registry, ingress and deployments
//   - EnvironmentResolvedSpec: the resolved ingress and deployment handed to generators
//
// # Tagged Unions
//
// Secret mounts (MountFile, MountEnv), secret sources (SecretFromEnv,
// SecretFromFile, SecretEmbedded) and environment selectors (SelectAll,
// SelectName, SelectValue) are sealed interfaces. Consumers handle them with
// a type switch:
//
//	switch m := binding.Mount.(type) {
//	case spec.MountFile:
//	    // mounted at m.Path
//	case spec.MountEnv:
//	    // exposed as m.Variable
//	}
package spec
