package spec

// =============================================================================
// Secret Mounts
// =============================================================================

// SecretMount is how a service receives a secret.
// It is one of MountFile or MountEnv.
type SecretMount interface {
	isSecretMount()
}

// MountFile mounts the secret as a file.
type MountFile struct {
	Path string `json:"path" yaml:"path"`
}

// MountEnv exposes the secret as an environment variable.
type MountEnv struct {
	Variable string `json:"variable" yaml:"variable"`
}

func (MountFile) isSecretMount() {}
func (MountEnv) isSecretMount()  {}

// DefaultSecretMount mounts a secret at /secrets/{name}.
func DefaultSecretMount(name string) MountFile {
	return MountFile{Path: "/secrets/" + name}
}

// =============================================================================
// Secret Sources
// =============================================================================

// SecretSource is where a deployment takes a secret value from.
// It is one of SecretFromEnv, SecretFromFile or SecretEmbedded.
type SecretSource interface {
	isSecretSource()
}

// SecretFromEnv reads the value from a process environment variable.
type SecretFromEnv struct {
	Variable string
}

// SecretFromFile reads the whole file as the value.
type SecretFromFile struct {
	Path string
}

// SecretEmbedded carries the value in the descriptor.
type SecretEmbedded struct {
	Value string
}

func (SecretFromEnv) isSecretSource()  {}
func (SecretFromFile) isSecretSource() {}
func (SecretEmbedded) isSecretSource() {}
