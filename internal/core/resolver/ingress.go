package resolver

import (
	"github.com/artpar/simpled/internal/core/spec"
)

// DefaultACMEServer is the Let's Encrypt production directory.
const DefaultACMEServer = "https://acme-v02.api.letsencrypt.org/directory"

// DefaultRoutingPort is used for services that declare no ports.
const DefaultRoutingPort uint16 = 80

// deriveIngress builds one rule per domain that has at least one route.
// Routes keep service declaration order, then prefix order.
func deriveIngress(ingress spec.IngressSpec, plans []servicePlan, services []spec.ResolvedService) spec.ResolvedIngress {
	out := spec.ResolvedIngress{
		Name:    ingress.Name,
		Domains: []string{},
		Rules:   []spec.DomainRule{},
	}

	for _, host := range ingress.Hosts {
		var routes []spec.Route
		for i, p := range plans {
			if p.service.Type != spec.ServicePublic || p.host != host.Name {
				continue
			}
			port := RoutingPort(services[i].Ports)
			for _, prefix := range p.prefixes {
				routes = append(routes, spec.Route{
					Service:     services[i].FullName,
					Port:        port,
					Prefix:      prefix.Path,
					StripPrefix: prefix.Strip,
				})
			}
		}

		for _, domain := range host.Domains {
			out.Domains = append(out.Domains, domain)
			if len(routes) == 0 {
				continue
			}
			out.Rules = append(out.Rules, spec.DomainRule{
				Domain: domain,
				Routes: append([]spec.Route{}, routes...),
			})
		}
	}
	return out
}

// RoutingPort picks the port ingress traffic is sent to: 80 when a port is
// published on 80, else the first published port, else 80.
//
// Only one port per service is routed.
func RoutingPort(ports []spec.Port) uint16 {
	for _, p := range ports {
		if p.External == 80 {
			return 80
		}
	}
	if len(ports) > 0 {
		return ports[0].External
	}
	return DefaultRoutingPort
}

// resolveTLS carries an explicit secret through, otherwise fills in the
// Let's Encrypt server.
func resolveTLS(tls *spec.TLSSpec) *spec.ResolvedTLS {
	if tls == nil {
		return nil
	}
	if tls.Secret != "" {
		return &spec.ResolvedTLS{Secret: tls.Secret}
	}
	if tls.LetsEncrypt == nil {
		return &spec.ResolvedTLS{}
	}
	server := tls.LetsEncrypt.Server
	if server == "" {
		server = DefaultACMEServer
	}
	return &spec.ResolvedTLS{
		LetsEncrypt: &spec.ResolvedLetsEncrypt{Server: server, Email: tls.LetsEncrypt.Email},
	}
}
