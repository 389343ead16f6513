package compose

import (
	"github.com/docker/go-units"
	"k8s.io/apimachinery/pkg/api/resource"
)

// =============================================================================
// Resource Conversion
// =============================================================================

// CPUCores converts a Kubernetes CPU quantity ("100m", "2") into cores.
func CPUCores(quantity string) (float32, error) {
	q, err := resource.ParseQuantity(quantity)
	if err != nil {
		return 0, err
	}
	if q.Sign() < 0 {
		return 0, ErrInvalidCPU
	}
	return float32(q.MilliValue()) / 1000, nil
}

// MemoryBytes converts a memory size into bytes. Kubernetes quantities
// ("128Mi", "1G") are tried first, then Docker sizes ("512mb", "1g").
func MemoryBytes(size string) (int64, error) {
	q, err := resource.ParseQuantity(size)
	if err == nil {
		if q.Sign() < 0 {
			return 0, ErrInvalidMemory
		}
		return q.Value(), nil
	}
	return units.RAMInBytes(size)
}
