package loader

import (
	"github.com/spf13/afero"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
	"github.com/artpar/simpled/internal/core/validation"
	"github.com/artpar/simpled/internal/core/variables"
)

const (
	envFileYAML = "envspec.yaml"
	envFileYML  = "envspec.yml"
)

// =============================================================================
// Environment Descriptor
// =============================================================================

// LoadEnvSpec loads envspec.yaml (or .yml) from root. Relative config,
// secret, env-file and extra-service paths are resolved against root.
func LoadEnvSpec(fs afero.Fs, root string) (spec.DeploymentEnvironmentSpec, error) {
	file, err := firstExisting(fs, root, envFileYAML, envFileYML)
	if err != nil {
		return spec.DeploymentEnvironmentSpec{}, err
	}
	content, err := readFile(fs, file)
	if err != nil {
		return spec.DeploymentEnvironmentSpec{}, err
	}

	var doc envDocument
	if err := decodeDocument(file, envSchema, content, &doc); err != nil {
		return spec.DeploymentEnvironmentSpec{}, err
	}

	env, err := convertEnv(fs, root, doc)
	if err != nil {
		return spec.DeploymentEnvironmentSpec{}, annotateFile(err, file)
	}
	if err := validation.ValidateEnvironment(env); err != nil {
		return spec.DeploymentEnvironmentSpec{}, annotateFile(err, file)
	}
	return env, nil
}

func convertEnv(fs afero.Fs, root string, doc envDocument) (spec.DeploymentEnvironmentSpec, error) {
	typ, err := convertEnvType(doc)
	if err != nil {
		return spec.DeploymentEnvironmentSpec{}, err
	}

	ingress, err := convertIngress(doc.Ingress, typ)
	if err != nil {
		return spec.DeploymentEnvironmentSpec{}, err
	}

	env := spec.DeploymentEnvironmentSpec{Type: typ, Ingress: ingress}

	if len(doc.Registry) > 0 {
		env.Registry = make(map[string]string, len(doc.Registry))
		for _, r := range doc.Registry {
			env.Registry[r.Key] = r.Value
		}
	}

	for _, d := range doc.Deployments {
		dep, err := convertDeployment(fs, root, d.Key, d.Value, ingress)
		if err != nil {
			return spec.DeploymentEnvironmentSpec{}, fault.Scope(err, d.Key, "")
		}
		env.Deployments = append(env.Deployments, dep)
	}
	return env, nil
}

func convertEnvType(doc envDocument) (spec.EnvType, error) {
	name := doc.Type
	if name == "" {
		name = doc.EnvType
	}
	kind, err := spec.ParseEnvKind(name)
	if err != nil {
		return spec.EnvType{}, err
	}

	typ := spec.EnvType{Kind: kind}
	if kind != spec.EnvDocker {
		if doc.SwarmMode != nil {
			return spec.EnvType{}, fault.Malformed("swarm_mode cannot be set for a %s environment", kind)
		}
		if doc.Ingress.Type != nil {
			return spec.EnvType{}, fault.Malformed("ingress type cannot be set for a %s environment", kind)
		}
		return typ, nil
	}

	if doc.SwarmMode != nil {
		typ.Swarm = *doc.SwarmMode
	}
	if doc.Ingress.Type != nil {
		if typ.Ingress, err = spec.ParseDockerIngress(*doc.Ingress.Type); err != nil {
			return spec.EnvType{}, err
		}
	}
	return typ, nil
}

func convertIngress(doc ingressDocument, typ spec.EnvType) (spec.IngressSpec, error) {
	ingress := spec.IngressSpec{Name: doc.Name}
	for _, h := range doc.Hosts {
		ingress.Hosts = append(ingress.Hosts, spec.HostSpec{Name: h.Key, Domains: h.Value})
	}

	switch {
	case doc.TLS == nil && !typ.IsLocal():
		return spec.IngressSpec{}, fault.Malformed("ingress tls is required for a %s environment, set tls.disable to true to turn it off", typ.Kind)
	case doc.TLS == nil || doc.TLS.Disable:
		return ingress, nil
	}

	ingress.TLS = &spec.TLSSpec{Secret: doc.TLS.Secret}
	if le := doc.TLS.LetsEncrypt; le != nil {
		ingress.TLS.LetsEncrypt = &spec.LetsEncryptSpec{Server: le.Server, Email: le.Email}
	}
	return ingress, nil
}

// =============================================================================
// Deployments
// =============================================================================

func convertDeployment(fs afero.Fs, root, name string, doc deploymentDocument, ingress spec.IngressSpec) (spec.DeploymentSpec, error) {
	d := spec.DeploymentSpec{
		Name:        name,
		PrimaryHost: doc.PrimaryHost,
		Application: spec.ApplicationRef{Name: doc.Application.Name},
	}

	if d.PrimaryHost == "" {
		if len(ingress.Hosts) != 1 {
			return spec.DeploymentSpec{}, fault.Malformed("primary_host is required when the ingress declares %d hosts", len(ingress.Hosts))
		}
		d.PrimaryHost = ingress.Hosts[0].Name
	}

	if doc.Application.Version != "" {
		v, err := spec.ParseVersionRange(doc.Application.Version)
		if err != nil {
			return spec.DeploymentSpec{}, err
		}
		d.Application.Version = v
	}
	for _, p := range doc.Application.Extra {
		d.Application.Extra = append(d.Application.Extra, rooted(root, p))
	}

	var err error
	if d.Environment, err = convertEnvVariables(fs, root, doc.Environment); err != nil {
		return spec.DeploymentSpec{}, err
	}
	if d.UndockerizedEnvironment, err = convertEnvVariables(fs, root, doc.UndockerizedEnvironment); err != nil {
		return spec.DeploymentSpec{}, err
	}

	for _, c := range doc.Configs {
		d.Configs = append(d.Configs, spec.ConfigSource{Name: c.Key, Path: rooted(root, c.Value)})
	}

	for _, s := range doc.Secrets {
		source, err := convertSecretSource(root, s.Key, s.Value)
		if err != nil {
			return spec.DeploymentSpec{}, err
		}
		d.Secrets = append(d.Secrets, spec.DeploymentSecret{Name: s.Key, Source: source})
	}

	if d.Defaults, err = convertDefaults(doc.Defaults); err != nil {
		return spec.DeploymentSpec{}, err
	}

	for _, o := range doc.Services {
		override, err := convertOverride(o.Key, o.Value, d.Defaults)
		if err != nil {
			return spec.DeploymentSpec{}, fault.Scope(err, "", o.Key)
		}
		d.Services = append(d.Services, override)
	}
	return d, nil
}

func convertEnvVariables(fs afero.Fs, root string, doc *envVariablesDocument) ([]spec.EnvVariable, error) {
	if doc == nil {
		return nil, nil
	}
	if doc.File != "" {
		content, err := readFile(fs, rooted(root, doc.File))
		if err != nil {
			return nil, err
		}
		return variables.ParseEnvFile(string(content))
	}

	vars := make([]spec.EnvVariable, 0, len(doc.List))
	for _, s := range doc.List {
		v, err := variables.ParseVariable(s)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, nil
}

func convertSecretSource(root, name string, doc deploymentSecretDocument) (spec.SecretSource, error) {
	switch {
	case doc.Literal != nil:
		return spec.SecretEmbedded{Value: *doc.Literal}, nil
	case doc.Env != "" && doc.File != "":
		return nil, fault.Malformed("secret %s cannot have both env and file sources", name)
	case doc.Env != "":
		return spec.SecretFromEnv{Variable: doc.Env}, nil
	case doc.File != "":
		return spec.SecretFromFile{Path: rooted(root, doc.File)}, nil
	default:
		return nil, fault.Malformed("secret %s must have either an env or a file source", name)
	}
}

// =============================================================================
// Resources and Overrides
// =============================================================================

func convertDefaults(doc *defaultsDocument) (spec.Resources, error) {
	res := spec.DefaultResources()
	if doc == nil {
		return res, nil
	}
	if doc.Replicas != nil {
		res.Replicas = *doc.Replicas
	}
	if doc.Resources != nil {
		var err error
		if res.Requests, err = convertLimits(doc.Resources.Requests); err != nil {
			return spec.Resources{}, err
		}
		if res.Limits, err = convertLimits(doc.Resources.Limits); err != nil {
			return spec.Resources{}, err
		}
	}
	return res, nil
}

// convertLimits fills missing quantities with 128Mi and 100m and checks
// that both parse.
func convertLimits(doc *limitsDocument) (spec.ResourceLimits, error) {
	l := spec.ResourceLimits{Memory: spec.DefaultMemory, CPU: spec.DefaultCPU}
	if doc != nil {
		if doc.Memory != "" {
			l.Memory = doc.Memory
		}
		if doc.CPU != "" {
			l.CPU = doc.CPU
		}
	}
	if _, err := resource.ParseQuantity(l.Memory); err != nil {
		return l, fault.Malformed("invalid memory quantity %q: %v", l.Memory, err)
	}
	if _, err := resource.ParseQuantity(l.CPU); err != nil {
		return l, fault.Malformed("invalid cpu quantity %q: %v", l.CPU, err)
	}
	return l, nil
}

func convertOverride(name string, doc overrideDocument, defaults spec.Resources) (spec.ServiceOverride, error) {
	o := spec.ServiceOverride{
		Service:   name,
		Variant:   doc.Variant,
		Host:      doc.Host,
		Resources: defaults,
	}

	for _, p := range doc.Prefixes {
		o.Prefixes = append(o.Prefixes, spec.Prefix{Path: p.Key, Strip: p.Value.Strip})
	}
	if doc.Prefix != nil {
		strip := true
		if doc.StripPrefix != nil {
			strip = *doc.StripPrefix
		}
		o.Prefixes = append(o.Prefixes, spec.Prefix{Path: *doc.Prefix, Strip: strip})
	}

	if doc.Resources != nil {
		var err error
		if o.Resources.Requests, err = convertLimits(doc.Resources.Requests); err != nil {
			return spec.ServiceOverride{}, err
		}
		if o.Resources.Limits, err = convertLimits(doc.Resources.Limits); err != nil {
			return spec.ServiceOverride{}, err
		}
	}
	if doc.Replicas != nil {
		o.Resources.Replicas = *doc.Replicas
	}

	if doc.Ports != nil {
		o.Ports = make([]spec.Port, 0, len(doc.Ports))
		for _, s := range doc.Ports {
			p, err := spec.ParsePort(s)
			if err != nil {
				return spec.ServiceOverride{}, err
			}
			o.Ports = append(o.Ports, p)
		}
	}
	return o, nil
}
