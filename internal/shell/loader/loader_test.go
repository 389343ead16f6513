package loader

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
)

// =============================================================================
// Fixtures
// =============================================================================

const testEnvYAML = `
type: docker
registry:
  web: registry.io/web
ingress:
  name: main
  hosts:
    main: [example.com, www.example.com]
    admin: admin.example.com
  tls:
    letsencrypt:
      email: ops@example.com
deployments:
  prod:
    primary_host: main
    application:
      name: web
      version: "1.2"
      extra: [extra.yaml]
    environment:
      - DB_HOST=db
      - DB_PORT = 5432
    undockerized_environment: local.env
    configs:
      nginx: configs/nginx
    secrets:
      db-password: hunter2
      api-key:
        env: API_KEY
      cert:
        file: /etc/certs/cert.pem
    defaults:
      replicas: 2
      resources:
        limits:
          memory: 256Mi
    services:
      api:
        variant: debug
        prefix: /api
        prefixes:
          /v1:
            strip: true
          /v2:
        ports: ["8080:80"]
      worker:
        replicas: 3
        resources:
          requests:
            cpu: 250m
`

const testAppYAML = `
name: web
version: 1.2.3
environment:
  external: [DB_HOST, DB_PORT=5432]
  optional: [DEBUG]
  relative: [ROOT=/api]
  internal: ["DSN=postgres://${DB_HOST}:${DB_PORT}"]
app_services:
  api:
    type: public
    image: web/api
    variants:
      debug:
        image: web/api-debug
    environment: [$all, "URL=${ROOT}/v1"]
    configs:
      - nginx: /etc/nginx
    secrets:
      - db-password
      - api-key:
          variable: API_KEY
    ports: ["8080:8080"]
  worker:
    image: web/worker
configs:
  nginx: [nginx.conf]
secrets: [db-password, api-key]
extra_services:
  cache:
    image: redis:8
`

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func tarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// =============================================================================
// LoadEnvSpec Tests
// =============================================================================

func TestLoadEnvSpec(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/env/envspec.yaml": testEnvYAML,
		"/env/local.env":    "# local only\nDEBUG=1\n",
	})

	env, err := LoadEnvSpec(fs, "/env")
	require.NoError(t, err)

	assert.Equal(t, spec.EnvType{Kind: spec.EnvDocker, Ingress: spec.IngressTraefik}, env.Type)
	assert.Equal(t, map[string]string{"web": "registry.io/web"}, env.Registry)

	assert.Equal(t, "main", env.Ingress.Name)
	assert.Equal(t, []spec.HostSpec{
		{Name: "main", Domains: []string{"example.com", "www.example.com"}},
		{Name: "admin", Domains: []string{"admin.example.com"}},
	}, env.Ingress.Hosts)
	require.NotNil(t, env.Ingress.TLS)
	require.NotNil(t, env.Ingress.TLS.LetsEncrypt)
	assert.Equal(t, "ops@example.com", env.Ingress.TLS.LetsEncrypt.Email)

	require.Len(t, env.Deployments, 1)
	d := env.Deployments[0]
	assert.Equal(t, "prod", d.Name)
	assert.Equal(t, "main", d.PrimaryHost)
	assert.Equal(t, "web", d.Application.Name)
	require.NotNil(t, d.Application.Version)
	assert.Equal(t, []string{"/env/extra.yaml"}, d.Application.Extra)

	assert.Equal(t, []spec.EnvVariable{{Name: "DB_HOST", Value: "db"}, {Name: "DB_PORT", Value: "5432"}}, d.Environment)
	assert.Equal(t, []spec.EnvVariable{{Name: "DEBUG", Value: "1"}}, d.UndockerizedEnvironment)
	assert.Equal(t, []spec.ConfigSource{{Name: "nginx", Path: "/env/configs/nginx"}}, d.Configs)
	assert.Equal(t, []spec.DeploymentSecret{
		{Name: "db-password", Source: spec.SecretEmbedded{Value: "hunter2"}},
		{Name: "api-key", Source: spec.SecretFromEnv{Variable: "API_KEY"}},
		{Name: "cert", Source: spec.SecretFromFile{Path: "/etc/certs/cert.pem"}},
	}, d.Secrets)
}

func TestLoadEnvSpec_DefaultsAndOverrides(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/env/envspec.yaml": testEnvYAML,
		"/env/local.env":    "DEBUG=1\n",
	})

	env, err := LoadEnvSpec(fs, "/env")
	require.NoError(t, err)
	d := env.Deployments[0]

	assert.Equal(t, spec.Resources{
		Replicas: 2,
		Requests: spec.ResourceLimits{Memory: "128Mi", CPU: "100m"},
		Limits:   spec.ResourceLimits{Memory: "256Mi", CPU: "100m"},
	}, d.Defaults)

	require.Len(t, d.Services, 2)
	api := d.Services[0]
	assert.Equal(t, "api", api.Service)
	assert.Equal(t, "debug", api.Variant)
	assert.Empty(t, api.Host)
	assert.Equal(t, []spec.Prefix{
		{Path: "/v1", Strip: true},
		{Path: "/v2", Strip: false},
		{Path: "/api", Strip: true},
	}, api.Prefixes)
	assert.Equal(t, []spec.Port{{External: 8080, Internal: 80}}, api.Ports)
	assert.Equal(t, d.Defaults, api.Resources)

	worker := d.Services[1]
	assert.Nil(t, worker.Ports)
	assert.Equal(t, spec.Resources{
		Replicas: 3,
		Requests: spec.ResourceLimits{Memory: "128Mi", CPU: "250m"},
		Limits:   spec.ResourceLimits{Memory: "128Mi", CPU: "100m"},
	}, worker.Resources)
}

func TestLoadEnvSpec_YMLFallback(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/env/envspec.yml": testEnvYAML,
		"/env/local.env":   "DEBUG=1\n",
	})

	_, err := LoadEnvSpec(fs, "/env")
	assert.NoError(t, err)
}

func TestLoadEnvSpec_Missing(t *testing.T) {
	_, err := LoadEnvSpec(afero.NewMemMapFs(), "/env")
	assert.ErrorIs(t, err, fault.ErrIOFailure)
	assert.Contains(t, err.Error(), "envspec.yaml or envspec.yml")
}

func TestLoadEnvSpec_MissingEnvFile(t *testing.T) {
	fs := newFs(t, map[string]string{"/env/envspec.yaml": testEnvYAML})

	_, err := LoadEnvSpec(fs, "/env")
	assert.ErrorIs(t, err, fault.ErrIOFailure)
	assert.Contains(t, err.Error(), "/env/local.env")
}

const minimalEnv = `
type: %s
ingress:
  name: main
  hosts:
    main: example.com
%s
deployments:
  prod:
    application:
      name: web
%s
`

func TestLoadEnvSpec_Errors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		kind     error
		contains string
	}{
		{
			name:     "invalid yaml",
			yaml:     "type: [docker",
			kind:     fault.ErrMalformedInput,
			contains: "invalid YAML",
		},
		{
			name:     "empty document",
			yaml:     "",
			kind:     fault.ErrMalformedInput,
			contains: "document is empty",
		},
		{
			name: "unknown field",
			yaml: fmt.Sprintf(minimalEnv, "docker", "  tls: {disable: true}\ncolour: blue", ""),
			kind: fault.ErrMalformedInput,
		},
		{
			name:     "unknown type",
			yaml:     fmt.Sprintf(minimalEnv, "nomad", "  tls: {disable: true}", ""),
			kind:     fault.ErrMalformedInput,
			contains: "unknown environment type",
		},
		{
			name:     "tls required",
			yaml:     fmt.Sprintf(minimalEnv, "k8s", "", ""),
			kind:     fault.ErrMalformedInput,
			contains: "tls is required",
		},
		{
			name:     "swarm mode on k8s",
			yaml:     fmt.Sprintf(minimalEnv, "k8s", "  tls: {disable: true}\nswarm_mode: true", ""),
			kind:     fault.ErrMalformedInput,
			contains: "swarm_mode",
		},
		{
			name:     "ingress type on local",
			yaml:     fmt.Sprintf(minimalEnv, "local", "  type: nginx", ""),
			kind:     fault.ErrMalformedInput,
			contains: "ingress type",
		},
		{
			name:     "unknown ingress type",
			yaml:     fmt.Sprintf(minimalEnv, "docker", "  type: haproxy\n  tls: {disable: true}", ""),
			kind:     fault.ErrMalformedInput,
			contains: "unknown ingress type",
		},
		{
			name:     "secret with env and file",
			yaml:     fmt.Sprintf(minimalEnv, "docker", "  tls: {disable: true}", "    secrets:\n      pw: {env: PW, file: pw.txt}"),
			kind:     fault.ErrMalformedInput,
			contains: "both env and file",
		},
		{
			name:     "secret without source",
			yaml:     fmt.Sprintf(minimalEnv, "docker", "  tls: {disable: true}", "    secrets:\n      pw: {}"),
			kind:     fault.ErrMalformedInput,
			contains: "either an env or a file",
		},
		{
			name:     "invalid memory",
			yaml:     fmt.Sprintf(minimalEnv, "docker", "  tls: {disable: true}", "    defaults:\n      resources:\n        limits: {memory: lots}"),
			kind:     fault.ErrMalformedInput,
			contains: "invalid memory quantity",
		},
		{
			name:     "invalid cpu",
			yaml:     fmt.Sprintf(minimalEnv, "docker", "  tls: {disable: true}", "    services:\n      api:\n        resources:\n          requests: {cpu: fast}"),
			kind:     fault.ErrMalformedInput,
			contains: "service api",
		},
		{
			name:     "invalid port",
			yaml:     fmt.Sprintf(minimalEnv, "docker", "  tls: {disable: true}", "    services:\n      api:\n        ports: [\"8080\"]"),
			kind:     fault.ErrMalformedInput,
			contains: "deployment prod",
		},
		{
			name:     "invalid version range",
			yaml:     fmt.Sprintf(minimalEnv, "docker", "  tls: {disable: true}", "      version: not-a-range"),
			kind:     fault.ErrMalformedInput,
			contains: "invalid version range",
		},
		{
			name:     "invalid environment entry",
			yaml:     fmt.Sprintf(minimalEnv, "docker", "  tls: {disable: true}", "    environment: [NO_VALUE]"),
			kind:     fault.ErrMalformedInput,
			contains: "has no value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFs(t, map[string]string{"/env/envspec.yaml": tt.yaml})

			_, err := LoadEnvSpec(fs, "/env")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), "/env/envspec.yaml")
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestLoadEnvSpec_TLS(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		fs := newFs(t, map[string]string{"/env/envspec.yaml": fmt.Sprintf(minimalEnv, "k8s", "  tls: {disable: true}", "")})
		env, err := LoadEnvSpec(fs, "/env")
		require.NoError(t, err)
		assert.Nil(t, env.Ingress.TLS)
	})

	t.Run("secret", func(t *testing.T) {
		fs := newFs(t, map[string]string{"/env/envspec.yaml": fmt.Sprintf(minimalEnv, "k8s", "  tls: {secret: wildcard}", "")})
		env, err := LoadEnvSpec(fs, "/env")
		require.NoError(t, err)
		assert.Equal(t, &spec.TLSSpec{Secret: "wildcard"}, env.Ingress.TLS)
	})

	t.Run("local without tls", func(t *testing.T) {
		fs := newFs(t, map[string]string{"/env/envspec.yaml": fmt.Sprintf(minimalEnv, "local", "", "")})
		env, err := LoadEnvSpec(fs, "/env")
		require.NoError(t, err)
		assert.True(t, env.Type.IsLocal())
		assert.Nil(t, env.Ingress.TLS)
	})
}

func TestLoadEnvSpec_EnvTypeAlias(t *testing.T) {
	yaml := "env_type: docker\nswarm_mode: true\n" +
		"ingress:\n  name: main\n  type: nginx\n  hosts: {main: example.com}\n  tls: {disable: true}\n" +
		"deployments:\n  prod:\n    application: {name: web}\n"
	fs := newFs(t, map[string]string{"/env/envspec.yaml": yaml})

	env, err := LoadEnvSpec(fs, "/env")
	require.NoError(t, err)
	assert.Equal(t, spec.EnvType{Kind: spec.EnvDocker, Ingress: spec.IngressNginx, Swarm: true}, env.Type)
	assert.Equal(t, "main", env.Deployments[0].PrimaryHost)
	assert.Equal(t, spec.DefaultResources(), env.Deployments[0].Defaults)
}

func TestLoadEnvSpec_PrimaryHostRequired(t *testing.T) {
	yaml := "type: docker\n" +
		"ingress:\n  name: main\n  hosts: {main: example.com, admin: admin.example.com}\n  tls: {disable: true}\n" +
		"deployments:\n  prod:\n    application: {name: web}\n"
	fs := newFs(t, map[string]string{"/env/envspec.yaml": yaml})

	_, err := LoadEnvSpec(fs, "/env")
	assert.ErrorIs(t, err, fault.ErrMalformedInput)
	assert.Contains(t, err.Error(), "primary_host is required")
}

func TestLoadEnvSpec_LocalRules(t *testing.T) {
	yaml := "type: local\n" +
		"ingress:\n  name: main\n  hosts: {main: localhost}\n" +
		"deployments:\n  one:\n    application: {name: web}\n  two:\n    application: {name: web}\n"
	fs := newFs(t, map[string]string{"/env/envspec.yaml": yaml})

	_, err := LoadEnvSpec(fs, "/env")
	assert.ErrorIs(t, err, fault.ErrConstraintViolation)
	assert.Contains(t, err.Error(), "exactly one deployment")
}

// =============================================================================
// LoadAppSpec Tests
// =============================================================================

func TestLoadAppSpec_Directory(t *testing.T) {
	fs := newFs(t, map[string]string{"/bundle/appspec.yaml": testAppYAML})

	app, err := LoadAppSpec(fs, "/bundle", nil)
	require.NoError(t, err)

	assert.Equal(t, "web", app.Name)
	assert.Equal(t, "1.2.3", app.Version.String())

	assert.Equal(t, spec.AppEnvironment{
		External: []spec.ExternalVariable{{Name: "DB_HOST"}, {Name: "DB_PORT", Default: "5432", HasDefault: true}},
		Optional: []spec.OptionalVariable{{Name: "DEBUG"}},
		Relative: []spec.RelativeVariable{{Name: "ROOT", Path: "/api"}},
		Internal: []spec.InternalVariable{{Name: "DSN", Value: "postgres://${DB_HOST}:${DB_PORT}"}},
	}, app.Environment)

	require.Len(t, app.AppServices, 2)
	api := app.AppServices[0]
	assert.Equal(t, "api", api.Name)
	assert.Equal(t, spec.ServicePublic, api.Type)
	assert.Equal(t, []spec.ImageVariant{{Name: "default", Image: "web/api"}, {Name: "debug", Image: "web/api-debug"}}, api.Variants)
	assert.Equal(t, []spec.EnvSelector{spec.SelectAll{}, spec.SelectValue{Name: "URL", Value: "${ROOT}/v1"}}, api.Environment)
	assert.Equal(t, []spec.ConfigMount{{Config: "nginx", MountPath: "/etc/nginx"}}, api.Configs)
	assert.Equal(t, []spec.SecretBinding{
		{Name: "db-password", Mount: spec.MountFile{Path: "/secrets/db-password"}},
		{Name: "api-key", Mount: spec.MountEnv{Variable: "API_KEY"}},
	}, api.Secrets)
	assert.Equal(t, []spec.Port{{External: 8080, Internal: 8080}}, api.Ports)

	worker := app.AppServices[1]
	assert.Equal(t, spec.ServiceInternal, worker.Type)
	assert.Empty(t, worker.Ports)

	require.Len(t, app.ExtraServices, 1)
	assert.Equal(t, "cache", app.ExtraServices[0].Name)

	assert.Equal(t, []spec.ConfigSpec{{Name: "nginx", Files: []string{"nginx.conf"}}}, app.Configs)
	assert.Equal(t, []spec.AppSecret{{Name: "db-password"}, {Name: "api-key"}}, app.Secrets)
}

func TestLoadAppSpec_SecretsMapping(t *testing.T) {
	yaml := "name: web\nversion: 1.0.0\nsecrets:\n  db-password:\n  api-key:\n"
	fs := newFs(t, map[string]string{"/bundle/appspec.yml": yaml})

	app, err := LoadAppSpec(fs, "/bundle", nil)
	require.NoError(t, err)
	assert.Equal(t, []spec.AppSecret{{Name: "db-password"}, {Name: "api-key"}}, app.Secrets)
}

func TestLoadAppSpec_Archive(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bundles/web.tar.gz", tarball(t, map[string]string{
		"web/README.md":    "docs",
		"web/appspec.yaml": testAppYAML,
	}), 0o644))

	app, err := LoadAppSpec(fs, "/bundles/web.tar.gz", nil)
	require.NoError(t, err)
	assert.Equal(t, "web", app.Name)
	assert.Len(t, app.AppServices, 2)
}

func TestLoadAppSpec_ArchiveWithoutDescriptor(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bundles/web.tgz", tarball(t, map[string]string{"README.md": "docs"}), 0o644))

	_, err := LoadAppSpec(fs, "/bundles/web.tgz", nil)
	assert.ErrorIs(t, err, fault.ErrIOFailure)
}

func TestLoadAppSpec_NotABundle(t *testing.T) {
	fs := newFs(t, map[string]string{"/bundle.zip": "PK"})

	_, err := LoadAppSpec(fs, "/bundle.zip", nil)
	assert.ErrorIs(t, err, fault.ErrMalformedInput)

	_, err = LoadAppSpec(fs, "/missing", nil)
	assert.ErrorIs(t, err, fault.ErrIOFailure)
}

func TestLoadAppSpec_ExtraFiles(t *testing.T) {
	extra := "extra_services:\n  cache:\n    image: redis:7\n  queue:\n    image: rabbitmq:4\n"
	fs := newFs(t, map[string]string{
		"/bundle/appspec.yaml": testAppYAML,
		"/env/extra.yaml":      extra,
	})
	env := &spec.DeploymentEnvironmentSpec{Deployments: []spec.DeploymentSpec{
		{Name: "other", Application: spec.ApplicationRef{Name: "shop", Extra: []string{"/env/missing.yaml"}}},
		{Name: "prod", Application: spec.ApplicationRef{Name: "web", Extra: []string{"/env/extra.yaml"}}},
	}}

	app, err := LoadAppSpec(fs, "/bundle", env)
	require.NoError(t, err)

	require.Len(t, app.ExtraServices, 2)
	assert.Equal(t, "cache", app.ExtraServices[0].Name)
	assert.Equal(t, "redis:8", app.ExtraServices[0].Variants[0].Image)
	assert.Equal(t, "queue", app.ExtraServices[1].Name)
}

func TestLoadAppSpec_Errors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		kind     error
		contains string
	}{
		{
			name: "missing version",
			yaml: "name: web\n",
			kind: fault.ErrMalformedInput,
		},
		{
			name:     "invalid version",
			yaml:     "name: web\nversion: one\n",
			kind:     fault.ErrMalformedInput,
			contains: "invalid version",
		},
		{
			name:     "version with build metadata",
			yaml:     "name: web\nversion: 1.2.3+build.5\n",
			kind:     fault.ErrMalformedInput,
			contains: "build metadata",
		},
		{
			name:     "optional with default",
			yaml:     "name: web\nversion: 1.0.0\nenvironment:\n  optional: [DEBUG=1]\n",
			kind:     fault.ErrConstraintViolation,
			contains: "cannot have a default",
		},
		{
			name:     "relative without slash",
			yaml:     "name: web\nversion: 1.0.0\nenvironment:\n  relative: [ROOT=api]\n",
			kind:     fault.ErrMalformedInput,
			contains: "must start with /",
		},
		{
			name:     "relative without value",
			yaml:     "name: web\nversion: 1.0.0\nenvironment:\n  relative: [ROOT]\n",
			kind:     fault.ErrMalformedInput,
			contains: "has no path",
		},
		{
			name:     "internal without value",
			yaml:     "name: web\nversion: 1.0.0\nenvironment:\n  internal: [DSN]\n",
			kind:     fault.ErrMalformedInput,
			contains: "must have a value",
		},
		{
			name: "service without image",
			yaml: "name: web\nversion: 1.0.0\napp_services:\n  api:\n    type: public\n",
			kind: fault.ErrMalformedInput,
		},
		{
			name:     "unknown service type",
			yaml:     "name: web\nversion: 1.0.0\napp_services:\n  api:\n    type: daemon\n    image: web/api\n",
			kind:     fault.ErrMalformedInput,
			contains: "service api",
		},
		{
			name:     "secret with path and variable",
			yaml:     "name: web\nversion: 1.0.0\napp_services:\n  api:\n    image: web/api\n    secrets:\n      - pw: {path: /pw, variable: PW}\n",
			kind:     fault.ErrMalformedInput,
			contains: "not both",
		},
		{
			name:     "secret without mount",
			yaml:     "name: web\nversion: 1.0.0\napp_services:\n  api:\n    image: web/api\n    secrets:\n      - pw:\n",
			kind:     fault.ErrMalformedInput,
			contains: "configuration is missing",
		},
		{
			name:     "invalid port",
			yaml:     "name: web\nversion: 1.0.0\napp_services:\n  api:\n    image: web/api\n    ports: [\"http:80\"]\n",
			kind:     fault.ErrMalformedInput,
			contains: "invalid external port",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFs(t, map[string]string{"/bundle/appspec.yaml": tt.yaml})

			_, err := LoadAppSpec(fs, "/bundle", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), "/bundle/appspec.yaml")
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestRooted(t *testing.T) {
	assert.Equal(t, "/env/configs", rooted("/env", "configs"))
	assert.Equal(t, "/etc/configs", rooted("/env", "/etc/configs"))
	assert.Equal(t, "", rooted("/env", ""))
}

func TestMergeServices(t *testing.T) {
	base := ordered[serviceDocument]{
		{Key: "a", Value: serviceDocument{Image: "a:1"}},
		{Key: "b", Value: serviceDocument{Image: "b:1"}},
	}
	over := ordered[serviceDocument]{
		{Key: "b", Value: serviceDocument{Image: "b:2"}},
		{Key: "c", Value: serviceDocument{Image: "c:1"}},
	}

	got := mergeServices(base, over)
	require.Len(t, got, 3)
	assert.Equal(t, "b:2", got[1].Value.Image)
	assert.Equal(t, "c", got[2].Key)
	assert.Equal(t, "b:1", base[1].Value.Image)
}
