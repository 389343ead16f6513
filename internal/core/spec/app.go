package spec

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/artpar/simpled/internal/core/fault"
)

// =============================================================================
// Application Descriptor
// =============================================================================

// AppSpec describes an application: its services, the environment contract
// it expects, and the configs and secrets a deployment has to supply.
type AppSpec struct {
	Name          string
	Version       *semver.Version
	Environment   AppEnvironment
	AppServices   []ServiceSpec
	ExtraServices []ServiceSpec
	Configs       []ConfigSpec
	Secrets       []AppSecret
}

// AllServices returns the application services followed by the extra services.
func (a AppSpec) AllServices() []ServiceSpec {
	all := make([]ServiceSpec, 0, len(a.AppServices)+len(a.ExtraServices))
	all = append(all, a.AppServices...)
	return append(all, a.ExtraServices...)
}

// IsAppService reports whether name is one of the application's own services.
func (a AppSpec) IsAppService(name string) bool {
	for _, s := range a.AppServices {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Service returns the service with the given name.
func (a AppSpec) Service(name string) (ServiceSpec, bool) {
	for _, s := range a.AllServices() {
		if s.Name == name {
			return s, true
		}
	}
	return ServiceSpec{}, false
}

// ConfigSpec is a named group of config files.
type ConfigSpec struct {
	Name  string
	Files []string
}

// AppSecret is a secret the application expects the deployment to supply.
type AppSecret struct {
	Name string
}

// =============================================================================
// Environment Tiers
// =============================================================================

// AppEnvironment holds the four variable tiers in resolution order.
type AppEnvironment struct {
	External []ExternalVariable
	Optional []OptionalVariable
	Relative []RelativeVariable
	Internal []InternalVariable
}

// DeclaredNames returns the names declared in the external, relative and
// internal tiers.
func (e AppEnvironment) DeclaredNames() []string {
	names := make([]string, 0, len(e.External)+len(e.Relative)+len(e.Internal))
	for _, v := range e.External {
		names = append(names, v.Name)
	}
	for _, v := range e.Relative {
		names = append(names, v.Name)
	}
	for _, v := range e.Internal {
		names = append(names, v.Name)
	}
	return names
}

// ExternalVariable must be supplied by the deployment or fall back to Default.
type ExternalVariable struct {
	Name       string
	Default    string
	HasDefault bool
}

// OptionalVariable is included only when the deployment supplies it.
type OptionalVariable struct {
	Name string
}

// RelativeVariable resolves to https://{host-domain}{Path}.
type RelativeVariable struct {
	Name string
	Path string
}

// InternalVariable is a literal that may reference earlier variables.
type InternalVariable struct {
	Name  string
	Value string
}

// EnvVariable is a concrete name/value pair.
type EnvVariable struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// =============================================================================
// Versions
// =============================================================================

// ParseVersion parses a strict semantic version such as "1.2.3".
// Build metadata is rejected: the version is used as an image tag.
func ParseVersion(s string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, fault.Malformed("invalid version %q: %v", s, err)
	}
	if v.Metadata() != "" {
		return nil, fault.Malformed("version %q has build metadata %q, which is not allowed in an image tag", s, v.Metadata())
	}
	return v, nil
}

// ParseVersionRange parses a version requirement such as ">=1.2, <2".
// A bare version is read as a caret range, so "1.2.3" accepts 1.x from 1.2.3.
func ParseVersionRange(s string) (*semver.Constraints, error) {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p[0] >= '0' && p[0] <= '9' {
			p = "^" + p
		}
		parts[i] = p
	}
	c, err := semver.NewConstraint(strings.Join(parts, ", "))
	if err != nil {
		return nil, fault.Malformed("invalid version range %q: %v", s, err)
	}
	return c, nil
}
