// Package traefik generates Traefik reverse proxy labels from resolved
// ingress routes.
//
// All functions are pure: no I/O and no side effects.
//
// # Functions
//
//   - GenerateLabels: labels for a single route
//   - ServiceLabels: merged labels for every route targeting a service
//   - Rule: the Host/PathPrefix router rule
//
// # Usage
//
// The compose export attaches the labels to each routed service:
//
//	for _, svc := range resolved.Deployment.Services {
//	    labels := traefik.ServiceLabels(resolved.Ingress, svc)
//	    maps.Copy(composeService.Labels, labels)
//	}
package traefik
