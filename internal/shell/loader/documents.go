package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Ordered Mappings
// =============================================================================

// entry is one key of a YAML mapping.
type entry[T any] struct {
	Key   string
	Value T
}

// ordered is a YAML mapping decoded in document order.
type ordered[T any] []entry[T]

func (o *ordered[T]) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	out := make(ordered[T], 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var v T
		if err := n.Content[i+1].Decode(&v); err != nil {
			return err
		}
		out = append(out, entry[T]{Key: n.Content[i].Value, Value: v})
	}
	*o = out
	return nil
}

// =============================================================================
// Application Document
// =============================================================================

type appDocument struct {
	Name          string                   `yaml:"name"`
	Version       string                   `yaml:"version"`
	Environment   *appEnvironmentDocument  `yaml:"environment"`
	AppServices   ordered[serviceDocument] `yaml:"app_services"`
	ExtraServices ordered[serviceDocument] `yaml:"extra_services"`
	Configs       ordered[[]string]        `yaml:"configs"`
	Secrets       appSecretsDocument       `yaml:"secrets"`
}

type extraDocument struct {
	ExtraServices ordered[serviceDocument] `yaml:"extra_services"`
}

type appEnvironmentDocument struct {
	External []string `yaml:"external"`
	Optional []string `yaml:"optional"`
	Relative []string `yaml:"relative"`
	Internal []string `yaml:"internal"`
}

// appSecretsDocument is a list of names or a mapping keyed by name.
type appSecretsDocument []string

func (s *appSecretsDocument) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := n.Decode(&names); err != nil {
			return err
		}
		*s = names
	case yaml.MappingNode:
		names := make([]string, 0, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			names = append(names, n.Content[i].Value)
		}
		*s = names
	default:
		return fmt.Errorf("line %d: secrets must be a list or a mapping", n.Line)
	}
	return nil
}

type serviceDocument struct {
	Type        string                   `yaml:"type"`
	Image       string                   `yaml:"image"`
	Variants    ordered[variantDocument] `yaml:"variants"`
	Environment []string                 `yaml:"environment"`
	Configs     []ordered[string]        `yaml:"configs"`
	Secrets     []serviceSecretDocument  `yaml:"secrets"`
	Ports       []string                 `yaml:"ports"`
}

type variantDocument struct {
	Image string `yaml:"image"`
}

// serviceSecretDocument is a bare name or a mapping of name to mount.
type serviceSecretDocument struct {
	Name     string
	Detailed ordered[*secretMountDocument]
}

type secretMountDocument struct {
	Path     string `yaml:"path"`
	Variable string `yaml:"variable"`
}

func (s *serviceSecretDocument) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		s.Name = n.Value
		return nil
	case yaml.MappingNode:
		return n.Decode(&s.Detailed)
	default:
		return fmt.Errorf("line %d: a service secret must be a name or a mapping", n.Line)
	}
}

// =============================================================================
// Environment Document
// =============================================================================

type envDocument struct {
	Type        string                      `yaml:"type"`
	EnvType     string                      `yaml:"env_type"`
	SwarmMode   *bool                       `yaml:"swarm_mode"`
	Ingress     ingressDocument             `yaml:"ingress"`
	Registry    ordered[string]             `yaml:"registry"`
	Deployments ordered[deploymentDocument] `yaml:"deployments"`
}

type ingressDocument struct {
	Name  string                `yaml:"name"`
	Type  *string               `yaml:"type"`
	Hosts ordered[hostDocument] `yaml:"hosts"`
	TLS   *tlsDocument          `yaml:"tls"`
}

// hostDocument is one domain name or a list of them.
type hostDocument []string

func (h *hostDocument) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*h = []string{n.Value}
		return nil
	case yaml.SequenceNode:
		var domains []string
		if err := n.Decode(&domains); err != nil {
			return err
		}
		*h = domains
		return nil
	default:
		return fmt.Errorf("line %d: a host must be a domain or a list of domains", n.Line)
	}
}

type tlsDocument struct {
	Disable     bool                 `yaml:"disable"`
	Secret      string               `yaml:"secret"`
	LetsEncrypt *letsEncryptDocument `yaml:"letsencrypt"`
}

type letsEncryptDocument struct {
	Server string `yaml:"server"`
	Email  string `yaml:"email"`
}

type deploymentDocument struct {
	PrimaryHost             string                            `yaml:"primary_host"`
	Application             applicationDocument               `yaml:"application"`
	Environment             *envVariablesDocument             `yaml:"environment"`
	UndockerizedEnvironment *envVariablesDocument             `yaml:"undockerized_environment"`
	Configs                 ordered[string]                   `yaml:"configs"`
	Secrets                 ordered[deploymentSecretDocument] `yaml:"secrets"`
	Defaults                *defaultsDocument                 `yaml:"defaults"`
	Services                ordered[overrideDocument]         `yaml:"services"`
}

type applicationDocument struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Extra   []string `yaml:"extra"`
}

// envVariablesDocument is an env-file path or a list of NAME=value entries.
type envVariablesDocument struct {
	File string
	List []string
}

func (e *envVariablesDocument) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		e.File = n.Value
		return nil
	case yaml.SequenceNode:
		return n.Decode(&e.List)
	default:
		return fmt.Errorf("line %d: environment must be an env file path or a list", n.Line)
	}
}

// deploymentSecretDocument is an embedded literal or an env/file source.
type deploymentSecretDocument struct {
	Literal *string
	Env     string
	File    string
}

func (s *deploymentSecretDocument) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		value := n.Value
		s.Literal = &value
		return nil
	case yaml.MappingNode:
		var src struct {
			Env  string `yaml:"env"`
			File string `yaml:"file"`
		}
		if err := n.Decode(&src); err != nil {
			return err
		}
		s.Env, s.File = src.Env, src.File
		return nil
	default:
		return fmt.Errorf("line %d: a secret must be a literal or a mapping with env or file", n.Line)
	}
}

type defaultsDocument struct {
	Replicas  *int               `yaml:"replicas"`
	Resources *resourcesDocument `yaml:"resources"`
}

type resourcesDocument struct {
	Requests *limitsDocument `yaml:"requests"`
	Limits   *limitsDocument `yaml:"limits"`
}

type limitsDocument struct {
	Memory string `yaml:"memory"`
	CPU    string `yaml:"cpu"`
}

type overrideDocument struct {
	Variant     string                  `yaml:"variant"`
	Host        string                  `yaml:"host"`
	Prefix      *string                 `yaml:"prefix"`
	StripPrefix *bool                   `yaml:"strip_prefix"`
	Prefixes    ordered[prefixDocument] `yaml:"prefixes"`
	Replicas    *int                    `yaml:"replicas"`
	Resources   *resourcesDocument      `yaml:"resources"`
	Ports       []string                `yaml:"ports"`
}

type prefixDocument struct {
	Strip bool `yaml:"strip"`
}
