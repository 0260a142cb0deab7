package light

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/geom"
	"github.com/udisondev/cityscape/internal/scene"
)

const (
	// visibilityRays is the sample count of the stochastic occlusion test.
	visibilityRays = 100

	// smallLightRadius: lights below this skip all expensive tests.
	smallLightRadius = 0.5

	// mediumLightRadius: lights below this skip the ray sampling.
	mediumLightRadius = 0.65

	// rayBackoff moves a cached hit point off the occluder surface so the
	// follow-up segment test does not re-hit the same face.
	rayBackoff = 1e-4

	// raySeed is the PCG stream constant for the direction pool.
	raySeed = 777
)

type rayKey struct {
	start, end mgl32.Vec3
}

// VisibilityContext holds the state shared by visibility queries: the
// direction pool and the (start,end) -> hit-point ray cache. One context is
// scoped per generation epoch or frame set; Reset clears the cache when the
// static scene changes.
//
// The cache is read-then-written per sample and shared across all lights, so
// access is serialized internally.
type VisibilityContext struct {
	mu       sync.Mutex
	rayCache map[rayKey]mgl32.Vec3
	dirs     []mgl32.Vec3
	rng      *rand.Rand
}

// NewVisibilityContext returns a context seeded for reproducible sampling.
func NewVisibilityContext(seed uint64) *VisibilityContext {
	vc := &VisibilityContext{
		rayCache: make(map[rayKey]mgl32.Vec3),
		rng:      rand.New(rand.NewPCG(seed, raySeed)),
		dirs:     latticeDirs(),
	}
	return vc
}

// Reset drops cached ray results. The direction pool is kept.
func (vc *VisibilityContext) Reset() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.rayCache = make(map[rayKey]mgl32.Vec3)
}

// CacheSize returns the number of memoized rays.
func (vc *VisibilityContext) CacheSize() int {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return len(vc.rayCache)
}

func (vc *VisibilityContext) cachedRay(key rayKey) (mgl32.Vec3, bool) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	p, ok := vc.rayCache[key]
	return p, ok
}

func (vc *VisibilityContext) storeRay(key rayKey, p mgl32.Vec3) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.rayCache[key] = p
}

// nextDir returns direction cur from the pool, extending the pool with
// pseudo-random unit vectors as needed, and advances cur.
func (vc *VisibilityContext) nextDir(cur *int) mgl32.Vec3 {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	for *cur >= len(vc.dirs) {
		vc.dirs = append(vc.dirs, randomUnitVec(vc.rng))
	}
	d := vc.dirs[*cur]
	*cur++
	return d
}

// latticeDirs returns the 26 uniformly distributed lattice directions the
// pool starts with.
func latticeDirs() []mgl32.Vec3 {
	dirs := make([]mgl32.Vec3, 0, 26)
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				dirs = append(dirs, mgl32.Vec3{float32(x), float32(y), float32(z)}.Normalize())
			}
		}
	}
	return dirs
}

func randomUnitVec(rng *rand.Rand) mgl32.Vec3 {
	for {
		v := mgl32.Vec3{
			2*rng.Float32() - 1,
			2*rng.Float32() - 1,
			2*rng.Float32() - 1,
		}
		if l := v.Len(); l > 1e-6 && l <= 1.0 {
			return v.Mul(1.0 / l)
		}
	}
}

// IsVisible determines whether the light can contribute to the current view.
// The pipeline, cheapest first:
//
//  1. disabled lights are never visible;
//  2. global (radius 0) lights always are;
//  3. frustum tests (capsule sphere + box for line lights, sphere refined by
//     a box for strongly directional ones);
//  4. small lights pass after the frustum test;
//  5. approximate occlusion against the nearest static occluder;
//  6. dynamic lights, medium lights, and disabled occlusion culling pass;
//  7. otherwise stochastic ray sampling from the light toward the camera.
//
// Step 7 is Monte-Carlo: a visible light may rarely be culled, which is
// accepted for performance.
func (s *Source) IsVisible(vc *VisibilityContext, camera mgl32.Vec3, fr scene.Frustum, occ scene.Occluder, occlusionCulling bool) bool {
	if !s.enabled {
		return false
	}
	if s.radius == 0 {
		return true
	}
	lineLight := s.kind == KindLine

	if lineLight {
		mid := s.pos.Add(s.pos2).Mul(0.5)
		if !fr.SphereVisible(mid, s.radius+0.5*s.pos2.Sub(s.pos).Len()) {
			return false
		}
		if !fr.CubeVisible(s.CalcBCube(sqrtCThresh)) {
			return false
		}
	} else {
		if !fr.SphereVisible(s.pos, s.radius) {
			return false
		}
		if s.isVeryDirectional() && !fr.CubeVisible(s.CalcBCube(sqrtCThresh)) {
			return false
		}
		if s.radius < smallLightRadius {
			return true // not worth anything more expensive
		}
		if occ.SphereOccluded(camera, s.pos, max(0.5*s.radius, s.rInner)) {
			return false // can miss a visible light, but rarely
		}
	}
	if s.dynamic || s.radius < mediumLightRadius || !occlusionCulling {
		return true
	}
	return s.raySampleVisible(vc, camera, fr, occ)
}

// raySampleVisible casts up to visibilityRays rays from the light outward
// and checks whether any terminal point can see the camera. Results of the
// per-ray occlusion query are memoized in the shared context, but only when
// the hit occluder is truly static — dynamic occluders must not poison the
// cache.
func (s *Source) raySampleVisible(vc *VisibilityContext, camera mgl32.Vec3, fr scene.Frustum, occ scene.Occluder) bool {
	if !occ.SegmentBlocked(s.pos, camera) {
		return true // light center is directly visible
	}
	lineLight := s.kind == KindLine
	directional := s.IsDirectional()
	veryDir := s.isVeryDirectional()

	var vortho [2]mgl32.Vec3
	var cylinEnd float32
	if veryDir {
		vortho = geom.OrthoVectors(s.dir)
		cylinEnd = s.cylinEndRadius()
	}
	radiusAdj := s.radius * (1.0 - sqrtCThresh)
	cur := 0

	for n := 0; n < visibilityRays; n++ {
		var rayDir mgl32.Vec3
		switch {
		case veryDir && n < visibilityRays/4:
			// Deterministic pattern: uniformly spaced around the beam
			// cone's end-cap perimeter.
			theta := 2 * math.Pi * float64(n) / float64(visibilityRays/4)
			rayDir = s.dir.Mul(s.radius).
				Add(vortho[0].Mul(cylinEnd * float32(math.Sin(theta)))).
				Add(vortho[1].Mul(cylinEnd * float32(math.Cos(theta)))).
				Normalize()
		case directional:
			// Random directions restricted to the beam.
			for {
				rayDir = vc.nextDir(&cur)
				if s.bwidth+DirFalloff < 0.5 && rayDir.Dot(s.dir) < 0 {
					rayDir = rayDir.Mul(-1) // mirror into the beam half-space
				}
				if s.DirIntensity(rayDir.Mul(-1)) > 0 {
					break
				}
			}
		default:
			rayDir = vc.nextDir(&cur)
		}

		start := s.pos
		if lineLight {
			// Fixed spacing along the capsule segment.
			start = start.Add(s.pos2.Sub(s.pos).Mul(float32(n) / float32(visibilityRays-1)))
		}
		end := start.Add(rayDir.Mul(radiusAdj))

		key := rayKey{start: start, end: end}
		cpos, ok := vc.cachedRay(key)
		if !ok {
			if hitPos, id, hit := occ.SegmentHit(start, end); hit {
				cpos = hitPos.Sub(rayDir.Mul(rayBackoff))
				if occ.TrulyStatic(id) {
					vc.storeRay(key, cpos)
				}
			} else {
				cpos = end
				vc.storeRay(key, cpos) // empty space is always static
			}
		}
		if !fr.SphereVisible(cpos, 0.1*s.radius) {
			continue
		}
		if !occ.SegmentBlocked(cpos, camera) {
			return true
		}
	}
	return false
}
