package building

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/cityscape/internal/geom"
)

func testRegion() geom.Cube {
	return geom.NewCube(mgl32.Vec3{-100, -100, 0}, mgl32.Vec3{100, 100, 0})
}

func TestGridCellPosClampsToRegion(t *testing.T) {
	g := newGridIndex(testRegion())

	gx, gy := g.cellPos(mgl32.Vec3{-1000, -1000, 0})
	assert.Equal(t, 0, gx)
	assert.Equal(t, 0, gy)

	gx, gy = g.cellPos(mgl32.Vec3{1000, 1000, 0})
	assert.Equal(t, gridSize-1, gx)
	assert.Equal(t, gridSize-1, gy)
}

func TestGridInsertUnionsCellBCube(t *testing.T) {
	g := newGridIndex(testRegion())

	a := geom.NewCube(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 5})
	b := geom.NewCube(mgl32.Vec3{0.5, 0.5, 0}, mgl32.Vec3{2, 2, 3})
	g.insert(a, 0)
	g.insert(b, 1)

	gx, gy := g.cellPos(mgl32.Vec3{0.5, 0.5, 0})
	cell := g.cell(gx, gy)
	require.NotEmpty(t, cell.ids)
	assert.Equal(t, float32(0), cell.bcube.Min.X())
	assert.Equal(t, float32(2), cell.bcube.Max.X())
	assert.Equal(t, float32(5), cell.bcube.Max.Z())
}

// Query must return a superset of the buildings truly intersecting the
// region: pruning may over-report but never misses.
func TestGridQuerySoundness(t *testing.T) {
	g := newGridIndex(testRegion())
	rng := rand.New(rand.NewPCG(42, 1))

	var boxes []geom.Cube
	for i := 0; i < 200; i++ {
		cx := -100 + 200*rng.Float32()
		cy := -100 + 200*rng.Float32()
		sz := 0.5 + 3*rng.Float32()
		bc := geom.NewCube(
			mgl32.Vec3{cx - sz, cy - sz, 0},
			mgl32.Vec3{cx + sz, cy + sz, 4},
		)
		g.insert(bc, uint32(i))
		boxes = append(boxes, bc)
	}

	for i := 0; i < 50; i++ {
		qx := -100 + 200*rng.Float32()
		qy := -100 + 200*rng.Float32()
		query := geom.NewCube(
			mgl32.Vec3{qx - 10, qy - 10, 0},
			mgl32.Vec3{qx + 10, qy + 10, 10},
		)

		got := make(map[uint32]bool)
		for _, id := range g.queryRegion(query) {
			assert.False(t, got[id], "queryRegion must deduplicate")
			got[id] = true
		}
		for id, bc := range boxes {
			if bc.IntersectsXY(query) {
				assert.True(t, got[uint32(id)],
					"building %d intersects query but was not returned", id)
			}
		}
	}
}
