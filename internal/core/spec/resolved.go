package spec

// =============================================================================
// Resolved Model
// =============================================================================

// EnvironmentResolvedSpec is the fully resolved output for one deployment.
// Generators read it and must not modify it.
type EnvironmentResolvedSpec struct {
	Type       EnvType            `json:"type" yaml:"type"`
	Ingress    ResolvedIngress    `json:"ingress" yaml:"ingress"`
	Deployment ResolvedDeployment `json:"deployment" yaml:"deployment"`
}

// ResolvedIngress holds every declared domain and the routes per domain.
type ResolvedIngress struct {
	Name    string       `json:"name" yaml:"name"`
	TLS     *ResolvedTLS `json:"tls,omitempty" yaml:"tls,omitempty"`
	Domains []string     `json:"domains" yaml:"domains"`
	Rules   []DomainRule `json:"rules" yaml:"rules"`
}

// DomainRule is the ordered list of routes served under one domain.
type DomainRule struct {
	Domain string  `json:"domain" yaml:"domain"`
	Routes []Route `json:"routes" yaml:"routes"`
}

// Route sends a path prefix to a service port.
type Route struct {
	Service     string `json:"service" yaml:"service"`
	Port        uint16 `json:"port" yaml:"port"`
	Prefix      string `json:"prefix" yaml:"prefix"`
	StripPrefix bool   `json:"strip_prefix" yaml:"strip_prefix"`
}

// ResolvedTLS carries a secret name or a Let's Encrypt configuration.
type ResolvedTLS struct {
	Secret      string               `json:"secret,omitempty" yaml:"secret,omitempty"`
	LetsEncrypt *ResolvedLetsEncrypt `json:"letsencrypt,omitempty" yaml:"letsencrypt,omitempty"`
}

// ResolvedLetsEncrypt has the ACME server filled in.
type ResolvedLetsEncrypt struct {
	Server string `json:"server" yaml:"server"`
	Email  string `json:"email" yaml:"email"`
}

// ResolvedDeployment is a deployment with every value computed.
type ResolvedDeployment struct {
	Name        string            `json:"name" yaml:"name"`
	Application string            `json:"application" yaml:"application"`
	Version     string            `json:"version" yaml:"version"`
	Configs     []ResolvedConfig  `json:"configs" yaml:"configs"`
	Secrets     []ResolvedSecret  `json:"secrets" yaml:"secrets"`
	Defaults    Resources         `json:"defaults" yaml:"defaults"`
	Services    []ResolvedService `json:"services" yaml:"services"`
}

// Config returns the resolved config group with the given namespaced name.
func (d ResolvedDeployment) Config(name string) (ResolvedConfig, bool) {
	for _, c := range d.Configs {
		if c.Name == name {
			return c, true
		}
	}
	return ResolvedConfig{}, false
}

// Secret returns the resolved secret with the given namespaced name.
func (d ResolvedDeployment) Secret(name string) (ResolvedSecret, bool) {
	for _, s := range d.Secrets {
		if s.Name == name {
			return s, true
		}
	}
	return ResolvedSecret{}, false
}

// ResolvedConfig is a config group named {app}-{config}.
type ResolvedConfig struct {
	Name  string       `json:"name" yaml:"name"`
	Files []ConfigFile `json:"files" yaml:"files"`
}

// ConfigFile is one file of a config group.
type ConfigFile struct {
	Name    string `json:"name" yaml:"name"`
	Content []byte `json:"content" yaml:"content"`
}

// ResolvedSecret is a secret named {app}-{secret}.
type ResolvedSecret struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ResolvedService is a service ready for a generator. Config and secret
// bindings use the namespaced names.
type ResolvedService struct {
	Name                    string          `json:"name" yaml:"name"`
	FullName                string          `json:"full_name" yaml:"full_name"`
	Type                    ServiceType     `json:"type" yaml:"type"`
	Image                   string          `json:"image" yaml:"image"`
	HostDomain              string          `json:"host_domain" yaml:"host_domain"`
	Environment             []EnvVariable   `json:"environment" yaml:"environment"`
	UndockerizedEnvironment []EnvVariable   `json:"undockerized_environment" yaml:"undockerized_environment"`
	Configs                 []ConfigMount   `json:"configs" yaml:"configs"`
	Secrets                 []SecretBinding `json:"secrets" yaml:"secrets"`
	Ports                   []Port          `json:"ports" yaml:"ports"`
	Resources               Resources       `json:"resources" yaml:"resources"`
}

// FullName returns the globally qualified service name {app}-{service}.
func FullName(app, service string) string {
	return app + "-" + service
}
