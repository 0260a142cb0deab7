package scene

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/geom"
)

// FlatTerrain is a constant-height terrain. Useful for tests and as a
// placeholder when no heightmap service is wired.
type FlatTerrain struct {
	Height float32
	Water  float32
}

func (t FlatTerrain) HeightAt(x, y float32) float32 { return t.Height }
func (t FlatTerrain) WaterLevel() float32           { return t.Water }

// WaveTerrain is a cheap analytic terrain: rolling sine/cosine hills.
// Deterministic, so generation on top of it is reproducible.
type WaveTerrain struct {
	Amplitude float32
	Frequency float32
	Water     float32
}

func (t WaveTerrain) HeightAt(x, y float32) float32 {
	return t.Amplitude * float32(math.Sin(float64(x*t.Frequency))+math.Cos(float64(y*t.Frequency))) * 0.5
}

func (t WaveTerrain) WaterLevel() float32 { return t.Water }

// NilOccluder is an occluder with no volumes: nothing contains, nothing
// blocks. Collision and visibility degrade to their conservative answers.
type NilOccluder struct{}

func (NilOccluder) Contains(mgl32.Vec3) (int32, bool)                      { return 0, false }
func (NilOccluder) VolumeContains(int32, mgl32.Vec3) bool                  { return false }
func (NilOccluder) SegmentBlocked(mgl32.Vec3, mgl32.Vec3) bool             { return false }
func (NilOccluder) SegmentHit(p0, p1 mgl32.Vec3) (mgl32.Vec3, int32, bool) { return p1, 0, false }
func (NilOccluder) SphereOccluded(mgl32.Vec3, mgl32.Vec3, float32) bool    { return false }
func (NilOccluder) TrulyStatic(int32) bool                                 { return false }

// AllFrustum reports everything as visible. Used when no camera is wired.
type AllFrustum struct{}

func (AllFrustum) SphereVisible(mgl32.Vec3, float32) bool { return true }
func (AllFrustum) CubeVisible(geom.Cube) bool             { return true }

// TextureRegistry is an in-memory TextureStore that assigns sequential ids
// on first lookup. Color and diffuse/normal namespaces are kept separate.
type TextureRegistry struct {
	mu      sync.Mutex
	diffuse map[string]TextureID
	normals map[string]TextureID
	next    TextureID
}

// NewTextureRegistry returns an empty registry.
func NewTextureRegistry() *TextureRegistry {
	return &TextureRegistry{
		diffuse: make(map[string]TextureID),
		normals: make(map[string]TextureID),
	}
}

func (r *TextureRegistry) Lookup(name string) (TextureID, error) {
	return r.lookup(r.diffuse, name)
}

func (r *TextureRegistry) LookupNormal(name string) (TextureID, error) {
	return r.lookup(r.normals, name)
}

func (r *TextureRegistry) lookup(ns map[string]TextureID, name string) (TextureID, error) {
	if name == "" {
		return NoTexture, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := ns[name]; ok {
		return id, nil
	}
	id := r.next
	r.next++
	ns[name] = id
	return id, nil
}
