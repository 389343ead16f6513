package resolver

import (
	"maps"
	"slices"
	"strings"

	"github.com/distribution/reference"

	"github.com/artpar/simpled/internal/core/fault"
)

// LatestTag replaces the application version on Local environments.
const LatestTag = "latest"

// ImageOptions controls how QualifyImage rewrites an image reference.
type ImageOptions struct {
	// Versioned marks images of the application's own services.
	Versioned bool
	Version   string
	Local     bool
	// Registry maps a namespace (first path segment) to a registry host.
	Registry map[string]string
}

// QualifyImage returns the image reference a service runs.
//
// Versioned images get ":{version}" appended, ":latest" on Local. Outside
// Local, a versioned image with a "/" is prefixed with the registry host
// mapped to its namespace; an unmapped namespace is an error. The result
// must be a valid image reference.
func QualifyImage(image string, opts ImageOptions) (string, error) {
	if !opts.Versioned {
		return checkReference(image)
	}

	tag := opts.Version
	if opts.Local || tag == "" {
		tag = LatestTag
	}
	qualified := image + ":" + tag

	if !opts.Local {
		namespace, _, found := strings.Cut(image, "/")
		if found {
			host, ok := opts.Registry[namespace]
			if !ok {
				return "", fault.Undefined("image %s: no registry for namespace %s (available: %s)",
					image, namespace, strings.Join(slices.Sorted(maps.Keys(opts.Registry)), ", "))
			}
			qualified = strings.TrimSuffix(host, "/") + "/" + qualified
		}
	}
	return checkReference(qualified)
}

func checkReference(image string) (string, error) {
	if _, err := reference.ParseAnyReference(image); err != nil {
		return "", fault.Malformed("invalid image reference %q: %v", image, err)
	}
	return image, nil
}
