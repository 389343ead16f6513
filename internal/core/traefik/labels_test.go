package traefik

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artpar/simpled/internal/core/spec"
)

// =============================================================================
// GenerateLabels Tests
// =============================================================================

func TestGenerateLabels_Basic(t *testing.T) {
	labels := GenerateLabels(LabelParams{
		Router:  "web-api-example-com-0",
		Service: "web-api",
		Domain:  "example.com",
		Prefix:  "/",
		Port:    80,
	})

	assert.Equal(t, "true", labels["traefik.enable"])
	assert.Equal(t, "Host(`example.com`)", labels["traefik.http.routers.web-api-example-com-0.rule"])
	assert.Equal(t, "web", labels["traefik.http.routers.web-api-example-com-0.entrypoints"])
	assert.Equal(t, "web-api", labels["traefik.http.routers.web-api-example-com-0.service"])
	assert.Equal(t, "80", labels["traefik.http.services.web-api.loadbalancer.server.port"])
	assert.Len(t, labels, 5)
}

func TestGenerateLabels_PathPrefix(t *testing.T) {
	labels := GenerateLabels(LabelParams{
		Router:  "r",
		Service: "web-api",
		Domain:  "example.com",
		Prefix:  "/api",
		Port:    8080,
	})

	assert.Equal(t, "Host(`example.com`) && PathPrefix(`/api`)", labels["traefik.http.routers.r.rule"])
	assert.Equal(t, "8080", labels["traefik.http.services.web-api.loadbalancer.server.port"])

	_, hasMiddleware := labels["traefik.http.routers.r.middlewares"]
	assert.False(t, hasMiddleware)
}

func TestGenerateLabels_NoTLSLabels(t *testing.T) {
	labels := GenerateLabels(LabelParams{Router: "r", Service: "s", Domain: "example.com", Port: 80})

	_, hasTLS := labels["traefik.http.routers.r.tls"]
	assert.False(t, hasTLS)
	_, hasResolver := labels["traefik.http.routers.r.tls.certresolver"]
	assert.False(t, hasResolver)
}

func TestGenerateLabels_WithTLS(t *testing.T) {
	labels := GenerateLabels(LabelParams{
		Router:       "r",
		Service:      "s",
		Domain:       "api.example.com",
		Port:         3000,
		TLS:          true,
		CertResolver: CertResolver,
	})

	assert.Equal(t, "websecure", labels["traefik.http.routers.r.entrypoints"])
	assert.Equal(t, "true", labels["traefik.http.routers.r.tls"])
	assert.Equal(t, "letsencrypt", labels["traefik.http.routers.r.tls.certresolver"])
}

func TestGenerateLabels_TLSWithoutResolver(t *testing.T) {
	labels := GenerateLabels(LabelParams{Router: "r", Service: "s", Domain: "example.com", Port: 80, TLS: true})

	assert.Equal(t, "true", labels["traefik.http.routers.r.tls"])
	_, hasResolver := labels["traefik.http.routers.r.tls.certresolver"]
	assert.False(t, hasResolver)
}

func TestGenerateLabels_StripPrefix(t *testing.T) {
	labels := GenerateLabels(LabelParams{
		Router:      "r",
		Service:     "s",
		Domain:      "example.com",
		Prefix:      "/api",
		StripPrefix: true,
		Port:        80,
	})

	assert.Equal(t, "r-strip", labels["traefik.http.routers.r.middlewares"])
	assert.Equal(t, "/api", labels["traefik.http.middlewares.r-strip.stripprefix.prefixes"])
}

func TestGenerateLabels_StripRootIgnored(t *testing.T) {
	labels := GenerateLabels(LabelParams{Router: "r", Service: "s", Domain: "example.com", Prefix: "/", StripPrefix: true, Port: 80})

	_, hasMiddleware := labels["traefik.http.routers.r.middlewares"]
	assert.False(t, hasMiddleware)
}

func TestRule(t *testing.T) {
	assert.Equal(t, "Host(`a.io`)", Rule("a.io", ""))
	assert.Equal(t, "Host(`a.io`)", Rule("a.io", "/"))
	assert.Equal(t, "Host(`a.io`) && PathPrefix(`/x`)", Rule("a.io", "/x"))
}

// =============================================================================
// ServiceLabels Tests
// =============================================================================

func testIngress() spec.ResolvedIngress {
	return spec.ResolvedIngress{
		Name:    "main",
		Domains: []string{"example.com", "www.example.com"},
		Rules: []spec.DomainRule{
			{Domain: "example.com", Routes: []spec.Route{
				{Service: "web-api", Port: 8080, Prefix: "/api", StripPrefix: true},
				{Service: "web-ui", Port: 80, Prefix: "/"},
			}},
			{Domain: "www.example.com", Routes: []spec.Route{
				{Service: "web-ui", Port: 80, Prefix: "/"},
			}},
		},
	}
}

func TestServiceLabels_MergesRoutes(t *testing.T) {
	labels := ServiceLabels(testIngress(), spec.ResolvedService{FullName: "web-ui"})

	assert.Equal(t, "Host(`example.com`)", labels["traefik.http.routers.web-ui-example-com-1.rule"])
	assert.Equal(t, "Host(`www.example.com`)", labels["traefik.http.routers.web-ui-www-example-com-0.rule"])
	assert.Equal(t, "80", labels["traefik.http.services.web-ui.loadbalancer.server.port"])

	_, hasOther := labels["traefik.http.routers.web-api-example-com-0.rule"]
	assert.False(t, hasOther)
}

func TestServiceLabels_StripPrefix(t *testing.T) {
	labels := ServiceLabels(testIngress(), spec.ResolvedService{FullName: "web-api"})

	assert.Equal(t, "Host(`example.com`) && PathPrefix(`/api`)", labels["traefik.http.routers.web-api-example-com-0.rule"])
	assert.Equal(t, "web-api-example-com-0-strip", labels["traefik.http.routers.web-api-example-com-0.middlewares"])
}

func TestServiceLabels_LetsEncrypt(t *testing.T) {
	ingress := testIngress()
	ingress.TLS = &spec.ResolvedTLS{LetsEncrypt: &spec.ResolvedLetsEncrypt{Server: "https://acme", Email: "a@b.c"}}

	labels := ServiceLabels(ingress, spec.ResolvedService{FullName: "web-ui"})
	assert.Equal(t, "websecure", labels["traefik.http.routers.web-ui-www-example-com-0.entrypoints"])
	assert.Equal(t, CertResolver, labels["traefik.http.routers.web-ui-www-example-com-0.tls.certresolver"])
}

func TestServiceLabels_SecretTLS(t *testing.T) {
	ingress := testIngress()
	ingress.TLS = &spec.ResolvedTLS{Secret: "cert"}

	labels := ServiceLabels(ingress, spec.ResolvedService{FullName: "web-ui"})
	assert.Equal(t, "true", labels["traefik.http.routers.web-ui-www-example-com-0.tls"])
	_, hasResolver := labels["traefik.http.routers.web-ui-www-example-com-0.tls.certresolver"]
	assert.False(t, hasResolver)
}

func TestServiceLabels_ContainerPort(t *testing.T) {
	tests := []struct {
		name  string
		ports []spec.Port
		want  string
	}{
		{name: "mapped port", ports: []spec.Port{{External: 80, Internal: 3000}}, want: "3000"},
		{name: "second mapping", ports: []spec.Port{{External: 9090, Internal: 9090}, {External: 80, Internal: 8000}}, want: "8000"},
		{name: "not published", ports: nil, want: "80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := ServiceLabels(testIngress(), spec.ResolvedService{FullName: "web-ui", Ports: tt.ports})
			assert.Equal(t, tt.want, labels["traefik.http.services.web-ui.loadbalancer.server.port"])
		})
	}
}

func TestServiceLabels_NoRoutes(t *testing.T) {
	assert.Nil(t, ServiceLabels(testIngress(), spec.ResolvedService{FullName: "web-db"}))
}
