package loader

import (
	"strings"

	"github.com/spf13/afero"

	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
	"github.com/artpar/simpled/internal/core/variables"
)

const (
	appFileYAML = "appspec.yaml"
	appFileYML  = "appspec.yml"
)

// =============================================================================
// Application Descriptor
// =============================================================================

// LoadAppSpec loads the application descriptor from a bundle: a directory
// holding appspec.yaml (or .yml) or a .tar.gz archive containing one.
//
// When env is given, the extra service files listed by the deployment of
// this application are merged into the extra services. Services declared
// in the bundle replace extra-file services of the same name.
func LoadAppSpec(fs afero.Fs, bundle string, env *spec.DeploymentEnvironmentSpec) (spec.AppSpec, error) {
	file, content, err := readBundle(fs, bundle)
	if err != nil {
		return spec.AppSpec{}, err
	}

	var doc appDocument
	if err := decodeDocument(file, appSchema, content, &doc); err != nil {
		return spec.AppSpec{}, err
	}

	var extras ordered[serviceDocument]
	if env != nil {
		if extras, err = loadExtras(fs, env, doc.Name); err != nil {
			return spec.AppSpec{}, err
		}
	}

	app, err := convertApp(doc, extras)
	if err != nil {
		return spec.AppSpec{}, annotateFile(err, file)
	}
	return app, nil
}

func readBundle(fs afero.Fs, bundle string) (string, []byte, error) {
	if isArchive(bundle) {
		return readArchiveDescriptor(fs, bundle)
	}

	info, err := fs.Stat(bundle)
	if err != nil {
		return "", nil, fault.IO(err, "open bundle %s", bundle)
	}
	if !info.IsDir() {
		return "", nil, fault.Malformed("bundle %s must be a directory or a .tar.gz archive", bundle)
	}

	file, err := firstExisting(fs, bundle, appFileYAML, appFileYML)
	if err != nil {
		return "", nil, err
	}
	content, err := readFile(fs, file)
	if err != nil {
		return "", nil, err
	}
	return file, content, nil
}

func loadExtras(fs afero.Fs, env *spec.DeploymentEnvironmentSpec, app string) (ordered[serviceDocument], error) {
	var extras ordered[serviceDocument]
	for _, d := range env.Deployments {
		if d.Application.Name != app {
			continue
		}
		for _, file := range d.Application.Extra {
			content, err := readFile(fs, file)
			if err != nil {
				return nil, err
			}
			var doc extraDocument
			if err := decodeDocument(file, extraSchema, content, &doc); err != nil {
				return nil, err
			}
			extras = mergeServices(extras, doc.ExtraServices)
		}
		break
	}
	return extras, nil
}

// mergeServices returns base with every service of over put on top: a
// matching name is replaced in place, any other name is appended.
func mergeServices(base, over ordered[serviceDocument]) ordered[serviceDocument] {
	out := append(ordered[serviceDocument]{}, base...)
	for _, s := range over {
		replaced := false
		for i := range out {
			if out[i].Key == s.Key {
				out[i] = s
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, s)
		}
	}
	return out
}

func convertApp(doc appDocument, extras ordered[serviceDocument]) (spec.AppSpec, error) {
	version, err := spec.ParseVersion(doc.Version)
	if err != nil {
		return spec.AppSpec{}, err
	}

	app := spec.AppSpec{Name: doc.Name, Version: version}

	if doc.Environment != nil {
		if app.Environment, err = convertAppEnvironment(*doc.Environment); err != nil {
			return spec.AppSpec{}, err
		}
	}

	if app.AppServices, err = convertServices(doc.AppServices); err != nil {
		return spec.AppSpec{}, err
	}
	if app.ExtraServices, err = convertServices(mergeServices(extras, doc.ExtraServices)); err != nil {
		return spec.AppSpec{}, err
	}

	for _, c := range doc.Configs {
		app.Configs = append(app.Configs, spec.ConfigSpec{Name: c.Key, Files: c.Value})
	}
	for _, name := range doc.Secrets {
		app.Secrets = append(app.Secrets, spec.AppSecret{Name: name})
	}
	return app, nil
}

// =============================================================================
// Variable Tiers
// =============================================================================

func convertAppEnvironment(doc appEnvironmentDocument) (spec.AppEnvironment, error) {
	var env spec.AppEnvironment

	for _, s := range doc.External {
		d, err := variables.ParseDescriptor(s)
		if err != nil {
			return env, err
		}
		env.External = append(env.External, spec.ExternalVariable{Name: d.Name, Default: d.Value, HasDefault: d.HasValue})
	}

	for _, s := range doc.Optional {
		d, err := variables.ParseDescriptor(s)
		if err != nil {
			return env, err
		}
		if d.HasValue {
			return env, fault.Constraint("optional variable %s cannot have a default value", d.Name)
		}
		env.Optional = append(env.Optional, spec.OptionalVariable{Name: d.Name})
	}

	for _, s := range doc.Relative {
		d, err := variables.ParseDescriptor(s)
		if err != nil {
			return env, err
		}
		if !d.HasValue {
			return env, fault.Malformed("relative variable %s has no path", d.Name)
		}
		if !strings.HasPrefix(d.Value, "/") {
			return env, fault.Malformed("relative variable %s must start with /", d.Name)
		}
		env.Relative = append(env.Relative, spec.RelativeVariable{Name: d.Name, Path: d.Value})
	}

	for _, s := range doc.Internal {
		d, err := variables.ParseDescriptor(s)
		if err != nil {
			return env, err
		}
		if !d.HasValue {
			return env, fault.Malformed("internal variable %s must have a value", d.Name)
		}
		env.Internal = append(env.Internal, spec.InternalVariable{Name: d.Name, Value: d.Value})
	}

	return env, nil
}

// =============================================================================
// Services
// =============================================================================

func convertServices(docs ordered[serviceDocument]) ([]spec.ServiceSpec, error) {
	services := make([]spec.ServiceSpec, 0, len(docs))
	for _, e := range docs {
		svc, err := convertService(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, nil
}

func convertService(name string, doc serviceDocument) (spec.ServiceSpec, error) {
	typ, err := spec.ParseServiceType(doc.Type)
	if err != nil {
		return spec.ServiceSpec{}, fault.Scope(err, "", name)
	}
	svc := spec.ServiceSpec{Name: name, Type: typ}

	if doc.Image != "" {
		svc.Variants = append(svc.Variants, spec.ImageVariant{Name: spec.DefaultVariant, Image: doc.Image})
	}
	for _, v := range doc.Variants {
		svc.Variants = append(svc.Variants, spec.ImageVariant{Name: v.Key, Image: v.Value.Image})
	}
	if len(svc.Variants) == 0 {
		return spec.ServiceSpec{}, fault.Malformed("declares no image").WithService(name)
	}

	for _, s := range doc.Environment {
		sel, err := spec.ParseEnvSelector(s)
		if err != nil {
			return spec.ServiceSpec{}, fault.Scope(err, "", name)
		}
		svc.Environment = append(svc.Environment, sel)
	}

	for _, m := range doc.Configs {
		for _, c := range m {
			svc.Configs = append(svc.Configs, spec.ConfigMount{Config: c.Key, MountPath: c.Value})
		}
	}

	for _, s := range doc.Secrets {
		if s.Name != "" {
			svc.Secrets = append(svc.Secrets, spec.SecretBinding{Name: s.Name, Mount: spec.DefaultSecretMount(s.Name)})
			continue
		}
		for _, d := range s.Detailed {
			binding, err := convertSecretMount(d.Key, d.Value)
			if err != nil {
				return spec.ServiceSpec{}, err.WithService(name)
			}
			svc.Secrets = append(svc.Secrets, binding)
		}
	}

	for _, p := range doc.Ports {
		port, err := spec.ParsePort(p)
		if err != nil {
			return spec.ServiceSpec{}, fault.Scope(err, "", name)
		}
		svc.Ports = append(svc.Ports, port)
	}

	return svc, nil
}

func convertSecretMount(name string, doc *secretMountDocument) (spec.SecretBinding, *fault.Error) {
	switch {
	case doc == nil:
		return spec.SecretBinding{}, fault.Malformed("secret %s configuration is missing", name)
	case doc.Path != "" && doc.Variable != "":
		return spec.SecretBinding{}, fault.Malformed("secret %s must have either path or variable, not both", name)
	case doc.Path != "":
		return spec.SecretBinding{Name: name, Mount: spec.MountFile{Path: doc.Path}}, nil
	case doc.Variable != "":
		return spec.SecretBinding{Name: name, Mount: spec.MountEnv{Variable: doc.Variable}}, nil
	default:
		return spec.SecretBinding{}, fault.Malformed("secret %s must have either path or variable", name)
	}
}
