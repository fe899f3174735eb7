// Package vulkan is a reserved placeholder backend (spec §6
// BACKEND_VULKAN: "reserved, not implemented"). Opening it initializes
// the Vulkan loader so callers can probe for a usable Vulkan ICD (a
// loader failure is appended to the returned error), but it never
// returns a Backend: Open always fails with rgpu.ErrBackendNotImplemented.
package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vitrailgpu/rgpu/rgpu"
)

// Driver is the rgpu.Driver for the reserved Vulkan backend.
type Driver struct{}

func (Driver) Name() string { return "vulkan" }

// IsThreadSafe reports true: a real Vulkan backend would serialize
// access to each VkQueue internally rather than relying on the Gpu's
// claim discipline. Since this backend is a placeholder, the value is
// asserted rather than exercised.
func (Driver) IsThreadSafe() bool { return true }

// Open initializes the Vulkan loader, then always fails with
// rgpu.ErrBackendNotImplemented (spec §6).
func (Driver) Open(flags rgpu.Flags, loader interface{}) (rgpu.Backend, error) {
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("%w: vulkan loader: %v", rgpu.ErrBackendNotImplemented, err)
	}
	return nil, rgpu.ErrBackendNotImplemented
}
