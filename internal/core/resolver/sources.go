package resolver

import (
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
)

// =============================================================================
// Configs
// =============================================================================

// resolveConfigs reads every config source of d. A file contributes itself;
// a directory contributes its regular files, one level deep, by name.
// Every file the application lists for a config must be among them.
func (r *Resolver) resolveConfigs(app spec.AppSpec, d spec.DeploymentSpec) ([]spec.ResolvedConfig, error) {
	declared := make(map[string][]string, len(app.Configs))
	for _, c := range app.Configs {
		declared[c.Name] = c.Files
	}

	out := make([]spec.ResolvedConfig, 0, len(d.Configs))
	for _, c := range d.Configs {
		files, err := r.readConfigSource(c.Path)
		if err != nil {
			return nil, fault.IO(err, "config %s: read %s", c.Name, c.Path).WithDeployment(d.Name)
		}
		for _, name := range declared[c.Name] {
			if !slices.ContainsFunc(files, func(f spec.ConfigFile) bool { return f.Name == name }) {
				return nil, fault.Undefined("config %s: file %s is missing from %s", c.Name, name, c.Path).
					WithDeployment(d.Name)
			}
		}
		out = append(out, spec.ResolvedConfig{
			Name:  spec.FullName(app.Name, c.Name),
			Files: files,
		})
	}
	return out, nil
}

func (r *Resolver) readConfigSource(path string) ([]spec.ConfigFile, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		content, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return nil, err
		}
		return []spec.ConfigFile{{Name: filepath.Base(path), Content: content}}, nil
	}

	// ReadDir sorts by name.
	entries, err := afero.ReadDir(r.fs, path)
	if err != nil {
		return nil, err
	}
	files := make([]spec.ConfigFile, 0, len(entries))
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		content, err := afero.ReadFile(r.fs, filepath.Join(path, e.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, spec.ConfigFile{Name: e.Name(), Content: content})
	}
	return files, nil
}

// =============================================================================
// Secrets
// =============================================================================

// resolveSecrets reads every secret of d. File contents are kept byte for
// byte, trailing newlines included.
func (r *Resolver) resolveSecrets(app spec.AppSpec, d spec.DeploymentSpec) ([]spec.ResolvedSecret, error) {
	out := make([]spec.ResolvedSecret, 0, len(d.Secrets))
	for _, s := range d.Secrets {
		value, err := r.readSecret(s)
		if err != nil {
			return nil, fault.Scope(err, d.Name, "")
		}
		out = append(out, spec.ResolvedSecret{
			Name:  spec.FullName(app.Name, s.Name),
			Value: value,
		})
	}
	return out, nil
}

func (r *Resolver) readSecret(s spec.DeploymentSecret) (string, error) {
	switch src := s.Source.(type) {
	case spec.SecretFromEnv:
		value, ok := r.lookupEnv(src.Variable)
		if !ok {
			return "", fault.IO(nil, "secret %s: environment variable %s is not set", s.Name, src.Variable)
		}
		return value, nil
	case spec.SecretFromFile:
		content, err := afero.ReadFile(r.fs, src.Path)
		if err != nil {
			return "", fault.IO(err, "secret %s: read %s", s.Name, src.Path)
		}
		return string(content), nil
	case spec.SecretEmbedded:
		return src.Value, nil
	default:
		return "", fault.Malformed("secret %s has no source", s.Name)
	}
}
