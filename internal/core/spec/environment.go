package spec

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/artpar/simpled/internal/core/fault"
)

// =============================================================================
// Environment Types
// =============================================================================

// EnvKind is the target platform of an environment.
type EnvKind int

const (
	EnvK8S EnvKind = iota
	EnvDocker
	EnvLocal
)

func (k EnvKind) String() string {
	switch k {
	case EnvDocker:
		return "docker"
	case EnvLocal:
		return "local"
	default:
		return "k8s"
	}
}

// MarshalText renders the kind by name.
func (k EnvKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseEnvKind parses "k8s", "docker" or "local".
func ParseEnvKind(s string) (EnvKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "k8s":
		return EnvK8S, nil
	case "docker":
		return EnvDocker, nil
	case "local":
		return EnvLocal, nil
	}
	return EnvK8S, fault.Malformed("unknown environment type %q", s)
}

// DockerIngress is the reverse proxy fronting a Docker environment.
type DockerIngress int

const (
	IngressTraefik DockerIngress = iota
	IngressNginx
)

func (i DockerIngress) String() string {
	if i == IngressNginx {
		return "nginx"
	}
	return "traefik"
}

// MarshalText renders the ingress kind by name.
func (i DockerIngress) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// ParseDockerIngress parses "nginx" or "traefik". Empty yields IngressTraefik.
func ParseDockerIngress(s string) (DockerIngress, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "traefik":
		return IngressTraefik, nil
	case "nginx":
		return IngressNginx, nil
	}
	return IngressTraefik, fault.Malformed("unknown ingress type %q", s)
}

// EnvType is the environment kind. Ingress and Swarm are only meaningful
// when Kind is EnvDocker.
type EnvType struct {
	Kind    EnvKind       `json:"kind" yaml:"kind"`
	Ingress DockerIngress `json:"ingress,omitempty" yaml:"ingress,omitempty"`
	Swarm   bool          `json:"swarm,omitempty" yaml:"swarm,omitempty"`
}

// IsLocal reports whether the environment runs on the developer machine.
func (t EnvType) IsLocal() bool {
	return t.Kind == EnvLocal
}

// =============================================================================
// Environment Descriptor
// =============================================================================

// DeploymentEnvironmentSpec describes a target environment and the
// deployments it hosts.
type DeploymentEnvironmentSpec struct {
	Type        EnvType
	Ingress     IngressSpec
	Registry    map[string]string
	Deployments []DeploymentSpec
}

// Deployment returns the deployment with the given name.
func (e DeploymentEnvironmentSpec) Deployment(name string) (DeploymentSpec, bool) {
	for _, d := range e.Deployments {
		if d.Name == name {
			return d, true
		}
	}
	return DeploymentSpec{}, false
}

// IngressSpec lists the hosts an environment can route to.
type IngressSpec struct {
	Name  string
	Hosts []HostSpec
	TLS   *TLSSpec
}

// Host returns the ingress host with the given name.
func (i IngressSpec) Host(name string) (HostSpec, bool) {
	for _, h := range i.Hosts {
		if h.Name == name {
			return h, true
		}
	}
	return HostSpec{}, false
}

// HostSpec is a named host with one or more domain names.
type HostSpec struct {
	Name    string
	Domains []string
}

// TLSSpec configures ingress TLS with a named secret or Let's Encrypt.
type TLSSpec struct {
	Secret      string
	LetsEncrypt *LetsEncryptSpec
}

// LetsEncryptSpec requests certificates from an ACME server.
// An empty Server selects the Let's Encrypt production directory.
type LetsEncryptSpec struct {
	Server string
	Email  string
}

// =============================================================================
// Deployment Descriptor
// =============================================================================

// DeploymentSpec binds one application to an environment.
type DeploymentSpec struct {
	Name                    string
	PrimaryHost             string
	Application             ApplicationRef
	Environment             []EnvVariable
	UndockerizedEnvironment []EnvVariable
	Configs                 []ConfigSource
	Secrets                 []DeploymentSecret
	Defaults                Resources
	Services                []ServiceOverride
}

// Override returns the per-service override for the named service.
func (d DeploymentSpec) Override(service string) (ServiceOverride, bool) {
	for _, o := range d.Services {
		if o.Service == service {
			return o, true
		}
	}
	return ServiceOverride{}, false
}

// Secret returns the secret source with the given name.
func (d DeploymentSpec) Secret(name string) (DeploymentSecret, bool) {
	for _, s := range d.Secrets {
		if s.Name == name {
			return s, true
		}
	}
	return DeploymentSecret{}, false
}

// Config returns the config source with the given name.
func (d DeploymentSpec) Config(name string) (ConfigSource, bool) {
	for _, c := range d.Configs {
		if c.Name == name {
			return c, true
		}
	}
	return ConfigSource{}, false
}

// ApplicationRef names the application a deployment runs.
// A nil Version accepts any application version.
type ApplicationRef struct {
	Name    string
	Version *semver.Constraints
	Extra   []string
}

// ConfigSource binds a config group to a file or directory.
type ConfigSource struct {
	Name string
	Path string
}

// DeploymentSecret binds a secret name to its source.
type DeploymentSecret struct {
	Name   string
	Source SecretSource
}

// ServiceOverride adjusts one service for a deployment. Empty Variant and
// Host fall back to the default variant and the primary host; a nil Ports
// falls back to the ports the application declares.
type ServiceOverride struct {
	Service   string
	Variant   string
	Host      string
	Prefixes  []Prefix
	Resources Resources
	Ports     []Port
}

// Prefix is a routed path prefix.
type Prefix struct {
	Path  string
	Strip bool
}

// =============================================================================
// Resources
// =============================================================================

// Resources sizes a service.
type Resources struct {
	Replicas int            `json:"replicas" yaml:"replicas"`
	Requests ResourceLimits `json:"requests" yaml:"requests"`
	Limits   ResourceLimits `json:"limits" yaml:"limits"`
}

// ResourceLimits holds Kubernetes-style quantities such as "128Mi" and "100m".
type ResourceLimits struct {
	Memory string `json:"memory" yaml:"memory"`
	CPU    string `json:"cpu" yaml:"cpu"`
}

const (
	DefaultMemory   = "128Mi"
	DefaultCPU      = "100m"
	DefaultReplicas = 1
)

// DefaultResources returns one replica with 128Mi memory and 100m CPU for
// both requests and limits.
func DefaultResources() Resources {
	l := ResourceLimits{Memory: DefaultMemory, CPU: DefaultCPU}
	return Resources{Replicas: DefaultReplicas, Requests: l, Limits: l}
}
