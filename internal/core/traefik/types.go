package traefik

// =============================================================================
// Traefik Label Generation Types
// =============================================================================

// CertResolver is the certificate resolver name routers reference when TLS
// certificates come from Let's Encrypt.
const CertResolver = "letsencrypt"

// LabelParams describes one route to a container.
type LabelParams struct {
	// Router is the router name, unique across the Traefik instance.
	Router string

	// Service is the Traefik service name, normally the resolved full name.
	Service string

	// Domain is the host matched by the router (e.g., "example.com").
	Domain string

	// Prefix is the matched path prefix. "/" matches every path.
	Prefix string

	// StripPrefix removes Prefix before forwarding.
	StripPrefix bool

	// Port is the container port traffic is sent to.
	Port uint16

	// TLS routes on the websecure entrypoint with TLS termination.
	TLS bool

	// CertResolver names the ACME resolver. Empty uses the TLS store.
	CertResolver string
}
