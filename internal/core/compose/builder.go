package compose

import (
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/types"

	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
	"github.com/artpar/simpled/internal/core/traefik"
)

// =============================================================================
// Project Layout
// =============================================================================

const (
	// ComposeFile is the name of the generated compose file.
	ComposeFile = "docker-compose.yaml"

	ConfigsDir = "configs"
	SecretsDir = "secrets"
)

// Options controls project generation.
type Options struct {
	// ProjectName defaults to the deployment name.
	ProjectName string
}

// File is a file the compose project references, relative to the project
// directory.
type File struct {
	Path    string
	Content []byte
	Mode    fs.FileMode
}

// =============================================================================
// Project Builder
// =============================================================================

// BuildProject converts a resolved deployment into a compose project.
//
// Each resolved service becomes one compose service:
//   - container name is the full name, unless it runs more than one replica
//   - environment holds the resolved variables plus env-mounted secrets
//   - config files and file-mounted secrets are referenced from Files paths
//   - replicas and resource limits come from the resolved resources
//   - Traefik labels are attached on Docker environments with Traefik ingress
//
// Only Docker and Local environments can be exported.
func BuildProject(resolved *spec.EnvironmentResolvedSpec, opts Options) (*types.Project, error) {
	switch resolved.Type.Kind {
	case spec.EnvDocker, spec.EnvLocal:
	default:
		e := fault.Constraint("%s environment", resolved.Type.Kind).WithDeployment(resolved.Deployment.Name)
		e.Err = ErrUnsupportedEnvironment
		return nil, e
	}

	name := opts.ProjectName
	if name == "" {
		name = resolved.Deployment.Name
	}

	d := resolved.Deployment
	project := &types.Project{
		Name:     name,
		Services: make(types.Services, len(d.Services)),
		Configs:  make(types.Configs),
		Secrets:  make(types.Secrets),
	}

	for _, c := range d.Configs {
		for _, f := range c.Files {
			key := configKey(c.Name, f.Name)
			project.Configs[key] = types.ConfigObjConfig{
				Name: key,
				File: "./" + path.Join(ConfigsDir, c.Name, f.Name),
			}
		}
	}
	for _, s := range d.Secrets {
		project.Secrets[s.Name] = types.SecretConfig{
			Name: s.Name,
			File: "./" + path.Join(SecretsDir, s.Name),
		}
	}

	routed := resolved.Type.Kind == spec.EnvDocker && resolved.Type.Ingress == spec.IngressTraefik
	for _, svc := range d.Services {
		service, err := buildService(d, svc)
		if err != nil {
			return nil, fault.Scope(err, d.Name, svc.Name)
		}
		if routed {
			if labels := traefik.ServiceLabels(resolved.Ingress, svc); labels != nil {
				service.Labels = labels
			}
		}
		project.Services[svc.FullName] = service
	}

	return project, nil
}

func buildService(d spec.ResolvedDeployment, svc spec.ResolvedService) (types.ServiceConfig, error) {
	service := types.ServiceConfig{
		Name:        svc.FullName,
		Image:       svc.Image,
		Environment: make(types.MappingWithEquals, len(svc.Environment)),
	}
	if svc.Resources.Replicas <= 1 {
		service.ContainerName = svc.FullName
	}

	for _, v := range svc.Environment {
		value := escape(v.Value)
		service.Environment[v.Name] = &value
	}

	for _, p := range svc.Ports {
		service.Ports = append(service.Ports, types.ServicePortConfig{
			Target:    uint32(p.Internal),
			Published: strconv.Itoa(int(p.External)),
			Protocol:  "tcp",
		})
	}

	for _, m := range svc.Configs {
		cfg, ok := d.Config(m.Config)
		if !ok {
			return types.ServiceConfig{}, fault.Undefined("references undefined config %s", m.Config)
		}
		for _, f := range cfg.Files {
			service.Configs = append(service.Configs, types.ServiceConfigObjConfig{
				Source: configKey(cfg.Name, f.Name),
				Target: path.Join(m.MountPath, f.Name),
			})
		}
	}

	for _, b := range svc.Secrets {
		secret, ok := d.Secret(b.Name)
		if !ok {
			return types.ServiceConfig{}, fault.Undefined("references undefined secret %s", b.Name)
		}
		switch m := b.Mount.(type) {
		case spec.MountEnv:
			value := escape(secret.Value)
			service.Environment[m.Variable] = &value
		case spec.MountFile:
			service.Secrets = append(service.Secrets, types.ServiceSecretConfig{
				Source: secret.Name,
				Target: m.Path,
			})
		default:
			return types.ServiceConfig{}, fault.Malformed("secret %s has no mount", b.Name)
		}
	}

	deploy, err := buildDeploy(svc)
	if err != nil {
		return types.ServiceConfig{}, err
	}
	service.Deploy = deploy

	return service, nil
}

func buildDeploy(svc spec.ResolvedService) (*types.DeployConfig, error) {
	res := svc.Resources
	replicas := res.Replicas
	if replicas < 1 {
		replicas = spec.DefaultReplicas
	}
	deploy := &types.DeployConfig{Replicas: &replicas}

	field := "services." + svc.FullName + ".deploy.resources.limits"
	limits := &types.Resource{}
	limited := false
	if res.Limits.CPU != "" {
		cores, err := CPUCores(res.Limits.CPU)
		if err != nil {
			e := fault.Malformed("invalid CPU quantity %q", res.Limits.CPU)
			e.Err = NewFieldError(field+".cpus", err.Error(), ErrInvalidCPU)
			return nil, e
		}
		limits.NanoCPUs = types.NanoCPUs(cores)
		limited = true
	}
	if res.Limits.Memory != "" {
		bytes, err := MemoryBytes(res.Limits.Memory)
		if err != nil {
			e := fault.Malformed("invalid memory size %q", res.Limits.Memory)
			e.Err = NewFieldError(field+".memory", err.Error(), ErrInvalidMemory)
			return nil, e
		}
		limits.MemoryBytes = types.UnitBytes(bytes)
		limited = true
	}
	if limited {
		deploy.Resources.Limits = limits
	}
	return deploy, nil
}

// configKey names the compose config holding one file of a config group.
func configKey(config, file string) string {
	return config + "-" + file
}

// escape protects literal "$" from compose interpolation.
func escape(value string) string {
	return strings.ReplaceAll(value, "$", "$$")
}

// =============================================================================
// Project Files
// =============================================================================

// Files lists the config and secret files a project built from resolved
// references. Secrets are owner-only.
func Files(resolved *spec.EnvironmentResolvedSpec) []File {
	d := resolved.Deployment
	files := make([]File, 0, len(d.Configs)+len(d.Secrets))
	for _, c := range d.Configs {
		for _, f := range c.Files {
			files = append(files, File{
				Path:    path.Join(ConfigsDir, c.Name, f.Name),
				Content: f.Content,
				Mode:    0o644,
			})
		}
	}
	for _, s := range d.Secrets {
		files = append(files, File{
			Path:    path.Join(SecretsDir, s.Name),
			Content: []byte(s.Value),
			Mode:    0o600,
		})
	}
	return files
}

// Marshal renders a project as compose YAML.
func Marshal(project *types.Project) ([]byte, error) {
	out, err := project.MarshalYAML()
	if err != nil {
		return nil, NewFieldError("", err.Error(), ErrInvalidProject)
	}
	return out, nil
}
