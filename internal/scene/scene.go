// Package scene declares the contracts of the external services consumed by
// the building and light cores: terrain height queries, static collision
// volumes, view-frustum tests, and texture lookup. The engine treats all of
// these as opaque synchronous services.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/geom"
)

// Terrain answers height and water-level queries.
// HeightAt must be deterministic for a given terrain state.
type Terrain interface {
	HeightAt(x, y float32) float32
	WaterLevel() float32
}

// TerrainFlattener is implemented by terrains that support flattening a
// region to a single height (heightmap-backed terrain). The building
// generator uses it for the flatten conformance mode when available.
type TerrainFlattener interface {
	FlattenRegion(region geom.Cube)
}

// Occluder exposes the static collision-volume service: containment tests,
// segment intersection queries, and the "truly static" predicate that gates
// caching of ray results.
type Occluder interface {
	// Contains returns the id of a static volume containing p, if any.
	Contains(p mgl32.Vec3) (id int32, ok bool)

	// VolumeContains reports whether the volume with the given id still
	// contains p. Used to revalidate cached bind points, since volume ids
	// may be reused.
	VolumeContains(id int32, p mgl32.Vec3) bool

	// SegmentBlocked reports whether anything occludes the open segment.
	SegmentBlocked(p0, p1 mgl32.Vec3) bool

	// SegmentHit returns the first intersection along the segment.
	SegmentHit(p0, p1 mgl32.Vec3) (hitPos mgl32.Vec3, id int32, hit bool)

	// SphereOccluded is the approximate occlusion test against the nearest
	// static occluder between from and to.
	SphereOccluded(from, to mgl32.Vec3, radius float32) bool

	// TrulyStatic reports whether the volume never moves. Only hits on
	// truly static volumes may be memoized across frames.
	TrulyStatic(id int32) bool
}

// Frustum is the view-frustum test service.
type Frustum interface {
	SphereVisible(center mgl32.Vec3, radius float32) bool
	CubeVisible(c geom.Cube) bool
}

// TextureID is an opaque texture handle. Negative means "no texture".
type TextureID int32

// NoTexture is the disabled-texture sentinel.
const NoTexture TextureID = -1

// TextureStore resolves texture names to opaque handles, with a parallel
// normal-map namespace.
type TextureStore interface {
	Lookup(name string) (TextureID, error)
	LookupNormal(name string) (TextureID, error)
}
