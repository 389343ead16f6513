package spec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/artpar/simpled/internal/core/fault"
)

// =============================================================================
// Service Types
// =============================================================================

// ServiceType is the visibility kind of a service.
type ServiceType int

const (
	// ServiceInternal is reachable only inside the deployment. It is the default.
	ServiceInternal ServiceType = iota
	// ServicePublic receives ingress routing.
	ServicePublic
	// ServiceJob runs to completion and is never routed.
	ServiceJob
)

func (t ServiceType) String() string {
	switch t {
	case ServicePublic:
		return "public"
	case ServiceJob:
		return "job"
	default:
		return "internal"
	}
}

// MarshalText renders the type by name.
func (t ServiceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseServiceType parses "public", "internal" or "job".
// An empty string yields ServiceInternal.
func ParseServiceType(s string) (ServiceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "internal":
		return ServiceInternal, nil
	case "public":
		return ServicePublic, nil
	case "job":
		return ServiceJob, nil
	}
	return ServiceInternal, fault.Malformed("unknown service type %q", s)
}

// DefaultVariant is the image variant used when a deployment selects none.
const DefaultVariant = "default"

// ImageVariant is a named image reference of a service.
type ImageVariant struct {
	Name  string `json:"name" yaml:"name"`
	Image string `json:"image" yaml:"image"`
}

// ServiceSpec is a service declared by an application.
type ServiceSpec struct {
	Name        string
	Type        ServiceType
	Variants    []ImageVariant
	Environment []EnvSelector
	Configs     []ConfigMount
	Secrets     []SecretBinding
	Ports       []Port
}

// Variant returns the image variant with the given name.
func (s ServiceSpec) Variant(name string) (ImageVariant, bool) {
	for _, v := range s.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return ImageVariant{}, false
}

// ConfigMount mounts a config group into a service.
type ConfigMount struct {
	Config    string `json:"config" yaml:"config"`
	MountPath string `json:"mount_path" yaml:"mount_path"`
}

// SecretBinding exposes a secret to a service.
type SecretBinding struct {
	Name  string      `json:"name" yaml:"name"`
	Mount SecretMount `json:"mount" yaml:"mount"`
}

// =============================================================================
// Ports
// =============================================================================

// Port maps an external port to a container port.
type Port struct {
	External uint16 `json:"external" yaml:"external"`
	Internal uint16 `json:"internal" yaml:"internal"`
}

func (p Port) String() string {
	return fmt.Sprintf("%d:%d", p.External, p.Internal)
}

// ParsePort parses "external:internal".
//
// Example:
//
//	p, _ := ParsePort("80:8080") // Port{External: 80, Internal: 8080}
func ParsePort(s string) (Port, error) {
	ext, in, ok := strings.Cut(s, ":")
	if !ok {
		return Port{}, fault.Malformed("invalid port %q, expected external:internal", s)
	}
	external, err := strconv.ParseUint(strings.TrimSpace(ext), 10, 16)
	if err != nil {
		return Port{}, fault.Malformed("invalid external port %q in %q", ext, s)
	}
	internal, err := strconv.ParseUint(strings.TrimSpace(in), 10, 16)
	if err != nil {
		return Port{}, fault.Malformed("invalid internal port %q in %q", in, s)
	}
	return Port{External: uint16(external), Internal: uint16(internal)}, nil
}

// =============================================================================
// Environment Selectors
// =============================================================================

// EnvSelector picks variables from the resolved set into a service.
// It is one of SelectAll, SelectName or SelectValue.
type EnvSelector interface {
	isEnvSelector()
}

// SelectAll copies every resolved variable.
type SelectAll struct{}

// SelectName copies one resolved variable.
type SelectName struct {
	Name string
}

// SelectValue assigns an interpolated value to a name.
type SelectValue struct {
	Name  string
	Value string
}

func (SelectAll) isEnvSelector()   {}
func (SelectName) isEnvSelector()  {}
func (SelectValue) isEnvSelector() {}

// AllSelector is the selector string that copies every variable.
const AllSelector = "$all"

// ParseEnvSelector parses a service environment entry: "$all", "NAME" or
// "NAME=value". The value is split at the first '=' and kept verbatim after
// trimming so it may contain ${...} references.
func ParseEnvSelector(s string) (EnvSelector, error) {
	s = strings.TrimSpace(s)
	if s == AllSelector {
		return SelectAll{}, nil
	}
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fault.Malformed("environment selector %q has no name", s)
	}
	if !ok {
		return SelectName{Name: name}, nil
	}
	return SelectValue{Name: name, Value: strings.TrimSpace(value)}, nil
}
