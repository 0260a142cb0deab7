package light

import "github.com/go-gl/mathgl/mgl32"

// ShadowMap is an externally allocated shadow-map resource. A light owns its
// shadow map exclusively: created lazily on first need, freed explicitly.
type ShadowMap interface {
	// Update re-renders the shadow map for a light at pos looking along dir.
	Update(pos, dir mgl32.Vec3, radius float32)

	// Free releases the GPU resource. The handle must not be used after.
	Free()
}

// ShadowMapAllocator creates shadow-map resources on demand.
type ShadowMapAllocator interface {
	Allocate() ShadowMap
}
