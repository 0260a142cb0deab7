package building

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/geom"
	"github.com/udisondev/cityscape/internal/scene"
)

// Building is one placed axis-aligned building volume. Created during
// generation, mutated once by the conformance pass, never removed
// individually — only via full regeneration.
//
// A zeroed BCube marks the building as invalid/culled: it must be skipped by
// drawing and collision but may still occupy grid-cell slots.
type Building struct {
	Side, Roof           TexturePair
	SideColor, RoofColor geom.Color
	BCube                geom.Cube
}

// Valid reports whether the building survived placement and conformance.
func (b *Building) Valid() bool {
	return !b.BCube.IsAllZeros()
}

// SinglePass reports whether sides and roof share texture and color, letting
// a renderer draw the cube in one pass.
func (b *Building) SinglePass() bool {
	return b.Side == b.Roof && b.SideColor == b.RoofColor
}

// VisibleFrom is the per-building draw pre-cull: within the far clip distance
// of camera and with the bounding sphere inside the frustum. Culled buildings
// are never visible.
func (b *Building) VisibleFrom(camera mgl32.Vec3, farClip float32, fr scene.Frustum) bool {
	if !b.Valid() {
		return false
	}
	center := b.BCube.Center()
	if !geom.DistLessThan(camera, center, farClip) {
		return false
	}
	return fr.SphereVisible(center, b.BCube.BoundingSphereRadius())
}
