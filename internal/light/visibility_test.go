package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/cityscape/internal/geom"
	"github.com/udisondev/cityscape/internal/scene"
)

// wallOccluder blocks every segment and reports every hit on one volume.
type wallOccluder struct {
	static bool
}

func (wallOccluder) Contains(mgl32.Vec3) (int32, bool)          { return 1, true }
func (wallOccluder) VolumeContains(int32, mgl32.Vec3) bool      { return true }
func (wallOccluder) SegmentBlocked(mgl32.Vec3, mgl32.Vec3) bool { return true }
func (wallOccluder) SegmentHit(p0, p1 mgl32.Vec3) (mgl32.Vec3, int32, bool) {
	return p0.Add(p1.Sub(p0).Mul(0.5)), 1, true
}
func (wallOccluder) SphereOccluded(mgl32.Vec3, mgl32.Vec3, float32) bool { return false }
func (w wallOccluder) TrulyStatic(int32) bool                            { return w.static }

// noFrustum rejects everything.
type noFrustum struct{}

func (noFrustum) SphereVisible(mgl32.Vec3, float32) bool { return false }
func (noFrustum) CubeVisible(geom.Cube) bool             { return false }

// sphereBlindOccluder answers SphereOccluded true but blocks nothing else.
type sphereBlindOccluder struct {
	scene.NilOccluder
}

func (sphereBlindOccluder) SphereOccluded(mgl32.Vec3, mgl32.Vec3, float32) bool { return true }

var testCamera = mgl32.Vec3{0, 0, 50}

func TestIsVisibleDisabled(t *testing.T) {
	vc := NewVisibilityContext(1)
	s := NewPoint(5, mgl32.Vec3{}, geom.White)
	s.SetEnabled(false)

	assert.False(t, s.IsVisible(vc, testCamera, scene.AllFrustum{}, scene.NilOccluder{}, true))
}

func TestIsVisibleGlobal(t *testing.T) {
	vc := NewVisibilityContext(1)
	s := NewPoint(0, mgl32.Vec3{}, geom.White)

	// Global lights are visible even when the frustum rejects everything.
	assert.True(t, s.IsVisible(vc, testCamera, noFrustum{}, wallOccluder{}, true))
}

func TestIsVisibleFrustumReject(t *testing.T) {
	vc := NewVisibilityContext(1)

	s := NewPoint(5, mgl32.Vec3{}, geom.White)
	assert.False(t, s.IsVisible(vc, testCamera, noFrustum{}, scene.NilOccluder{}, true))

	line := NewLine(5, mgl32.Vec3{}, mgl32.Vec3{10, 0, 0}, geom.White)
	assert.False(t, line.IsVisible(vc, testCamera, noFrustum{}, scene.NilOccluder{}, true))
}

func TestIsVisibleSmallLight(t *testing.T) {
	vc := NewVisibilityContext(1)
	s := NewPoint(0.4, mgl32.Vec3{}, geom.White)

	// Below the small-light radius everything past the frustum is skipped,
	// even a fully blocking occluder.
	assert.True(t, s.IsVisible(vc, testCamera, scene.AllFrustum{}, wallOccluder{static: true}, true))
}

func TestIsVisibleSphereOccluded(t *testing.T) {
	vc := NewVisibilityContext(1)
	s := NewPoint(5, mgl32.Vec3{}, geom.White)

	assert.False(t, s.IsVisible(vc, testCamera, scene.AllFrustum{}, sphereBlindOccluder{}, true))
}

func TestIsVisibleSkipsSamplingWhenCheap(t *testing.T) {
	vc := NewVisibilityContext(1)
	wall := wallOccluder{static: true}

	medium := NewPoint(0.6, mgl32.Vec3{}, geom.White)
	assert.True(t, medium.IsVisible(vc, testCamera, scene.AllFrustum{}, wall, true))

	dyn := NewPoint(5, mgl32.Vec3{}, geom.White)
	dyn.SetDynamic(true)
	assert.True(t, dyn.IsVisible(vc, testCamera, scene.AllFrustum{}, wall, true))

	s := NewPoint(5, mgl32.Vec3{}, geom.White)
	assert.True(t, s.IsVisible(vc, testCamera, scene.AllFrustum{}, wall, false),
		"occlusion culling off skips the ray sampling")

	assert.Zero(t, vc.CacheSize(), "none of these paths cast rays")
}

func TestIsVisibleCenterShortCircuit(t *testing.T) {
	vc := NewVisibilityContext(1)
	s := NewPoint(5, mgl32.Vec3{}, geom.White)

	assert.True(t, s.IsVisible(vc, testCamera, scene.AllFrustum{}, scene.NilOccluder{}, true))
	assert.Zero(t, vc.CacheSize(), "a directly visible center casts no sample rays")
}

func TestIsVisibleFullyBlocked(t *testing.T) {
	vc := NewVisibilityContext(1)
	s := NewPoint(5, mgl32.Vec3{}, geom.White)

	assert.False(t, s.IsVisible(vc, testCamera, scene.AllFrustum{}, wallOccluder{static: true}, true))
	assert.Equal(t, visibilityRays, vc.CacheSize(), "static hits are memoized per ray")

	// The second query answers every ray from the cache; the size is stable.
	assert.False(t, s.IsVisible(vc, testCamera, scene.AllFrustum{}, wallOccluder{static: true}, true))
	assert.Equal(t, visibilityRays, vc.CacheSize())
}

func TestRayCacheIgnoresDynamicHits(t *testing.T) {
	vc := NewVisibilityContext(1)
	s := NewPoint(5, mgl32.Vec3{}, geom.White)

	assert.False(t, s.IsVisible(vc, testCamera, scene.AllFrustum{}, wallOccluder{static: false}, true))
	assert.Zero(t, vc.CacheSize(), "hits on dynamic occluders must not poison the cache")
}

func TestVisibilityContextReset(t *testing.T) {
	vc := NewVisibilityContext(1)
	s := NewPoint(5, mgl32.Vec3{}, geom.White)

	require.False(t, s.IsVisible(vc, testCamera, scene.AllFrustum{}, wallOccluder{static: true}, true))
	require.NotZero(t, vc.CacheSize())

	vc.Reset()
	assert.Zero(t, vc.CacheSize())
}

// fakeShadowMap counts updates and frees.
type fakeShadowMap struct {
	updates int
	freed   bool
}

func (m *fakeShadowMap) Update(pos, dir mgl32.Vec3, radius float32) { m.updates++ }
func (m *fakeShadowMap) Free()                                     { m.freed = true }

type fakeAllocator struct {
	allocated []*fakeShadowMap
}

func (a *fakeAllocator) Allocate() ShadowMap {
	m := &fakeShadowMap{}
	a.allocated = append(a.allocated, m)
	return m
}

func TestCheckShadowMapSpotOnly(t *testing.T) {
	alloc := &fakeAllocator{}

	point := NewTriggeredSource(NewPoint(5, mgl32.Vec3{}, geom.White))
	point.CheckShadowMap(alloc)
	assert.False(t, point.HasShadowMap(), "point lights would need a cube map")

	spot := NewTriggeredSource(NewSpot(5, mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, geom.White, 0.5, 0))
	spot.CheckShadowMap(alloc)
	require.True(t, spot.HasShadowMap())
	require.Len(t, alloc.allocated, 1)
	assert.Equal(t, 1, alloc.allocated[0].updates)

	// Repeated checks reuse the allocation and re-render.
	spot.CheckShadowMap(alloc)
	assert.Len(t, alloc.allocated, 1)
	assert.Equal(t, 2, alloc.allocated[0].updates)

	spot.SetEnabled(false)
	spot.CheckShadowMap(alloc)
	assert.Equal(t, 2, alloc.allocated[0].updates, "disabled lights are not re-rendered")

	spot.FreeShadowMap()
	assert.False(t, spot.HasShadowMap())
	assert.True(t, alloc.allocated[0].freed)
}

func TestBindPointLifecycle(t *testing.T) {
	var unbound BindPoint
	assert.True(t, unbound.Valid())
	assert.True(t, unbound.IsValid(scene.NilOccluder{}))

	bp := NewBindPoint(mgl32.Vec3{1, 2, 3})
	assert.True(t, bp.Valid(), "validity is assumed until the first check")

	// No volume contains the point: invalid, and it stays invalid.
	assert.False(t, bp.IsValid(scene.NilOccluder{}))
	assert.False(t, bp.Valid())
	assert.False(t, bp.IsValid(wallOccluder{static: true}), "invalidity is sticky")
}

func TestBindPointRevalidation(t *testing.T) {
	bp := NewBindPoint(mgl32.Vec3{1, 2, 3})

	// Resolve the containing volume, then lose it when it goes non-static.
	require.True(t, bp.IsValid(wallOccluder{static: true}))
	require.True(t, bp.IsValid(wallOccluder{static: true}))
	assert.False(t, bp.IsValid(wallOccluder{static: false}))
	assert.False(t, bp.Valid())
}

func TestAdvanceTimestepFreesShadowMapOnInvalidBind(t *testing.T) {
	alloc := &fakeAllocator{}
	ts := NewTriggeredSource(NewSpot(5, mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, geom.White, 0.5, 0))
	ts.CheckShadowMap(alloc)
	require.True(t, ts.HasShadowMap())

	ts.Bind = NewBindPoint(mgl32.Vec3{})
	ts.Bind.Invalidate()
	ts.AdvanceTimestep(1)

	assert.False(t, ts.HasShadowMap())
	assert.True(t, alloc.allocated[0].freed)
}

func TestRevalidateBindFreesShadowMap(t *testing.T) {
	alloc := &fakeAllocator{}
	ts := NewTriggeredSource(NewSpot(5, mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, geom.White, 0.5, 0))
	ts.CheckShadowMap(alloc)
	ts.Bind = NewBindPoint(mgl32.Vec3{})

	assert.False(t, ts.RevalidateBind(scene.NilOccluder{}))
	assert.False(t, ts.HasShadowMap())
}
