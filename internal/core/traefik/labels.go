package traefik

import (
	"fmt"
	"strings"

	"github.com/artpar/simpled/internal/core/spec"
)

// =============================================================================
// Traefik Label Generation Functions
// =============================================================================

// GenerateLabels generates Traefik labels for a single route.
//
// The generated labels:
//   - Enable Traefik for the container
//   - Create a router matching Host, plus PathPrefix when the prefix is not "/"
//   - Use the web entrypoint, or websecure with TLS
//   - Add a stripPrefix middleware when requested
//   - Configure the service loadbalancer port
//
// Example:
//
//	labels := GenerateLabels(LabelParams{
//	    Router:  "web-api-example-com-0",
//	    Service: "web-api",
//	    Domain:  "example.com",
//	    Prefix:  "/api",
//	    Port:    8080,
//	})
//	// Returns:
//	// {
//	//   "traefik.enable": "true",
//	//   "traefik.http.routers.web-api-example-com-0.rule": "Host(`example.com`) && PathPrefix(`/api`)",
//	//   "traefik.http.routers.web-api-example-com-0.entrypoints": "web",
//	//   "traefik.http.routers.web-api-example-com-0.service": "web-api",
//	//   "traefik.http.services.web-api.loadbalancer.server.port": "8080",
//	// }
func GenerateLabels(params LabelParams) map[string]string {
	router := "traefik.http.routers." + params.Router

	labels := map[string]string{
		"traefik.enable":        "true",
		router + ".rule":        Rule(params.Domain, params.Prefix),
		router + ".service":     params.Service,
		router + ".entrypoints": "web",

		fmt.Sprintf("traefik.http.services.%s.loadbalancer.server.port", params.Service): fmt.Sprintf("%d", params.Port),
	}

	if params.TLS {
		labels[router+".entrypoints"] = "websecure"
		labels[router+".tls"] = "true"
		if params.CertResolver != "" {
			labels[router+".tls.certresolver"] = params.CertResolver
		}
	}

	if params.StripPrefix && params.Prefix != "/" {
		middleware := params.Router + "-strip"
		labels[fmt.Sprintf("traefik.http.middlewares.%s.stripprefix.prefixes", middleware)] = params.Prefix
		labels[router+".middlewares"] = middleware
	}

	return labels
}

// Rule returns the router rule for a domain and path prefix.
func Rule(domain, prefix string) string {
	if prefix == "" || prefix == "/" {
		return fmt.Sprintf("Host(`%s`)", domain)
	}
	return fmt.Sprintf("Host(`%s`) && PathPrefix(`%s`)", domain, prefix)
}

// ServiceLabels returns the labels for every route of ingress that targets
// service, or nil when none does. Routers are named
// {full name}-{domain with dots as dashes}-{route index}.
//
// Routes carry published ports; the load balancer targets the container
// port that port is mapped to.
func ServiceLabels(ingress spec.ResolvedIngress, service spec.ResolvedService) map[string]string {
	var labels map[string]string

	tls := ingress.TLS != nil
	resolver := ""
	if tls && ingress.TLS.LetsEncrypt != nil {
		resolver = CertResolver
	}

	for _, rule := range ingress.Rules {
		base := strings.ReplaceAll(rule.Domain, ".", "-")
		for i, route := range rule.Routes {
			if route.Service != service.FullName {
				continue
			}
			if labels == nil {
				labels = make(map[string]string)
			}
			for k, v := range GenerateLabels(LabelParams{
				Router:       fmt.Sprintf("%s-%s-%d", service.FullName, base, i),
				Service:      service.FullName,
				Domain:       rule.Domain,
				Prefix:       route.Prefix,
				StripPrefix:  route.StripPrefix,
				Port:         containerPort(service.Ports, route.Port),
				TLS:          tls,
				CertResolver: resolver,
			}) {
				labels[k] = v
			}
		}
	}
	return labels
}

// containerPort returns the internal port published as external, or external
// itself when the service does not publish it.
func containerPort(ports []spec.Port, external uint16) uint16 {
	for _, p := range ports {
		if p.External == external {
			return p.Internal
		}
	}
	return external
}
