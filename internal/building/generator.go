package building

import (
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/cityscape/internal/geom"
	"github.com/udisondev/cityscape/internal/scene"
)

const (
	// placementSeed is the fixed constant mixed with the generation epoch.
	// Regeneration for the same epoch is reproducible; bump the epoch when
	// the terrain changes.
	placementSeed = 123

	// maxPlaceAttempts bounds the per-building retry loop.
	maxPlaceAttempts = 10

	// maxPosTries bounds the XY rejection sampling inside one attempt.
	maxPosTries = 10
)

// Generator owns the building list and its grid index for one generation
// epoch. Grid mutation and the placement loop are single-threaded; only the
// conformance pass runs parallel, one worker per building.
type Generator struct {
	params    Params
	epoch     uint64
	grid      *gridIndex
	buildings []Building
}

// NewGenerator returns a generator for the given parameters and epoch.
func NewGenerator(params Params, epoch uint64) *Generator {
	params.Finalize()
	return &Generator{params: params, epoch: epoch}
}

// SetEpoch changes the generation epoch for the next Generate call.
func (g *Generator) SetEpoch(epoch uint64) { g.epoch = epoch }

// Epoch returns the generation epoch the current layout was built from.
func (g *Generator) Epoch() uint64 { return g.epoch }

// Buildings returns the placed buildings. Zeroed boxes mark culled entries.
func (g *Generator) Buildings() []Building { return g.buildings }

// Empty reports whether no buildings are placed.
func (g *Generator) Empty() bool { return len(g.buildings) == 0 }

// Clear drops the building list and the grid index.
func (g *Generator) Clear() {
	g.buildings = nil
	g.grid = nil
}

// Restore adopts a previously stored layout, rebuilding the grid index so
// collision and region queries work without re-running placement. Invalid
// (zeroed) entries keep their slots but are not indexed.
func (g *Generator) Restore(epoch uint64, buildings []Building) {
	g.Clear()
	g.epoch = epoch
	g.grid = newGridIndex(g.params.PosRange)
	g.buildings = buildings
	for i := range buildings {
		if buildings[i].Valid() {
			g.grid.insert(buildings[i].BCube, uint32(i))
		}
	}
	slog.Info("building layout restored", "epoch", epoch, "buildings", len(buildings))
}

// Generate runs the full placement pipeline: randomized placement with
// overlap rejection, color sampling, then the terrain-conformance pass.
// Per-building placement failures are silent skips, counted and logged in
// aggregate.
func (g *Generator) Generate(terrain scene.Terrain) {
	start := time.Now()
	g.Clear()

	region := g.params.PosRange
	g.grid = newGridIndex(region)
	g.buildings = make([]Building, 0, g.params.Count)

	waterLevel := terrain.WaterLevel()
	placeCenter := region.Center()
	rng := rand.New(rand.NewPCG(g.epoch, placementSeed))

	var tries, candidates int
	for i := 0; i < g.params.Count; i++ {
		mat := g.params.chooseMaterial(rng)
		b := Building{Side: mat.Side, Roof: mat.Roof}

		for n := 0; n < maxPlaceAttempts; n++ {
			var center mgl32.Vec3
			placed := false
			for m := 0; m < maxPosTries; m++ {
				center[0] = uniform(rng, region.Min.X(), region.Max.X())
				center[1] = uniform(rng, region.Min.Y(), region.Max.Y())
				if g.params.PlaceRadius == 0 || geom.DistXYLessThan(center, placeCenter, g.params.PlaceRadius) {
					placed = true
					break
				}
			}
			if !placed {
				continue // this attempt found no position inside the radius
			}
			center[2] = terrain.HeightAt(center.X(), center.Y())

			for d := 0; d < 3; d++ {
				sz := 0.5 * uniform(rng, g.params.SizeRange.Min[d], g.params.SizeRange.Max[d])
				if d == 2 {
					b.BCube.Min[d] = center[d] // base sits on the terrain
				} else {
					b.BCube.Min[d] = center[d] - sz
				}
				b.BCube.Max[d] = center[d] + sz
			}
			tries++
			if center.Z() < waterLevel {
				continue // ground point underwater, retry placement
			}
			candidates++

			testBC := b.BCube
			testBC.ExpandByVec(b.BCube.Size().Mul(0.1))
			if g.overlapsExisting(b.BCube, testBC) {
				continue
			}

			b.SideColor = mat.SideColor.Sample(rng)
			b.RoofColor = mat.RoofColor.Sample(rng)
			g.grid.insert(b.BCube, uint32(len(g.buildings)))
			g.buildings = append(g.buildings, b)
			break
		}
	}

	skipped := g.conformToTerrain(terrain, waterLevel)

	slog.Info("buildings generated",
		"requested", g.params.Count,
		"tries", tries,
		"candidates", candidates,
		"placed", len(g.buildings),
		"kept", len(g.buildings)-skipped,
		"elapsed", time.Since(start))
}

// overlapsExisting tests the expanded candidate box against placed
// buildings in XY only. The grid range is computed from the un-expanded box;
// each cell's union bcube fast-rejects before per-building tests.
func (g *Generator) overlapsExisting(bc, testBC geom.Cube) bool {
	x0, y0, x1, y1 := g.grid.cellRange(bc)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			cell := g.grid.cell(x, y)
			if len(cell.ids) == 0 || !testBC.IntersectsXY(cell.bcube) {
				continue
			}
			for _, id := range cell.ids {
				if testBC.IntersectsXY(g.buildings[id].BCube) {
					return true
				}
			}
		}
	}
	return false
}

// conformToTerrain runs the post-placement pass and returns the number of
// buildings invalidated. Each worker writes only its own building's box, so
// the pass is safe to run with one worker per building.
func (g *Generator) conformToTerrain(terrain scene.Terrain, waterLevel float32) int {
	if g.params.Conform == ConformNone || len(g.buildings) == 0 {
		return 0
	}
	flattener, canFlatten := terrain.(scene.TerrainFlattener)
	doFlatten := g.params.Conform == ConformFlatten && canFlatten

	var skipped atomic.Int32
	eg := new(errgroup.Group)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range g.buildings {
		b := &g.buildings[i]
		eg.Go(func() error {
			if doFlatten {
				flattener.FlattenRegion(b.BCube)
				return nil
			}
			// Drop the base to the lowest of the four footprint corners.
			zmin0 := b.BCube.Min.Z()
			zmin := zmin0
			numBelow := 0
			for d := 0; d < 4; d++ {
				x := b.BCube.Min.X()
				if d&1 != 0 {
					x = b.BCube.Max.X()
				}
				y := b.BCube.Min.Y()
				if d>>1 != 0 {
					y = b.BCube.Max.Y()
				}
				zval := terrain.HeightAt(x, y)
				zmin = min(zmin, zval)
				if zval < waterLevel {
					numBelow++
				}
			}
			zmin = max(zmin, waterLevel) // never extend below the water
			if numBelow > 2 || (g.params.MaxDeltaZ > 0 && zmin0-zmin > g.params.MaxDeltaZ) {
				b.BCube.SetToZeros()
				skipped.Add(1)
				return nil
			}
			b.BCube.Min[2] = zmin
			return nil
		})
	}
	_ = eg.Wait() // workers never return errors

	if doFlatten {
		// Flattening changed heights under every footprint; reset grid cell
		// z-minimums conservatively to the water level.
		for i := range g.grid.cells {
			if len(g.grid.cells[i].ids) > 0 {
				g.grid.cells[i].bcube.Min[2] = waterLevel
			}
		}
	}
	return int(skipped.Load())
}

// QueryRegion returns the ids of buildings whose grid cells overlap region.
// The result is a superset of the buildings truly intersecting the region.
func (g *Generator) QueryRegion(region geom.Cube) []uint32 {
	if g.grid == nil {
		return nil
	}
	return g.grid.queryRegion(region)
}

// ForEachInRegion calls fn for every valid building whose grid cells
// overlap region, until fn returns false.
func (g *Generator) ForEachInRegion(region geom.Cube, fn func(id uint32, b *Building) bool) {
	for _, id := range g.QueryRegion(region) {
		b := &g.buildings[id]
		if !b.Valid() {
			continue
		}
		if !fn(id, b) {
			return
		}
	}
}
