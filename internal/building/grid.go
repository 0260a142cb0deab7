package building

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/geom"
)

// gridSize is the number of cells per axis of the placement grid.
const gridSize = 32

// gridCell holds back-references to the buildings overlapping the cell plus
// the union of their bounding boxes. Mutated only during generation;
// immutable afterward.
type gridCell struct {
	ids   []uint32
	bcube geom.Cube
}

func (c *gridCell) add(bc geom.Cube, id uint32) {
	if len(c.ids) == 0 {
		c.bcube = bc
	} else {
		c.bcube.UnionWith(bc)
	}
	c.ids = append(c.ids, id)
}

// gridIndex is a uniform 2D spatial grid over the placement region.
// There is no removal — the index is rebuilt wholesale on regeneration.
type gridIndex struct {
	region  geom.Cube
	sizeInv mgl32.Vec3
	cells   []gridCell
}

func newGridIndex(region geom.Cube) *gridIndex {
	g := &gridIndex{
		region: region,
		cells:  make([]gridCell, gridSize*gridSize),
	}
	sz := region.Size()
	for d := 0; d < 3; d++ {
		if sz[d] != 0 {
			g.sizeInv[d] = 1.0 / sz[d]
		}
	}
	return g
}

func (g *gridIndex) cell(gx, gy int) *gridCell {
	return &g.cells[gy*gridSize+gx]
}

// cellPos maps a point to grid coordinates: clamp into the region, normalize
// by region size, scale by (gridSize-1). The clamp-then-scale form biases
// cell boundaries to the region extents and must match the insert-side
// formula exactly, or query density drifts from insert density.
func (g *gridIndex) cellPos(p mgl32.Vec3) (gx, gy int) {
	p = g.region.ClampPoint(p)
	gx = int((p.X() - g.region.Min.X()) * g.sizeInv.X() * float32(gridSize-1))
	gy = int((p.Y() - g.region.Min.Y()) * g.sizeInv.Y() * float32(gridSize-1))
	return min(gx, gridSize-1), min(gy, gridSize-1)
}

// cellRange returns the inclusive cell range covered by the XY projection
// of bc.
func (g *gridIndex) cellRange(bc geom.Cube) (x0, y0, x1, y1 int) {
	x0, y0 = g.cellPos(bc.Min)
	x1, y1 = g.cellPos(bc.Max)
	return x0, y0, x1, y1
}

// insert adds id to every cell intersecting bc's XY projection, growing each
// touched cell's bounding box.
func (g *gridIndex) insert(bc geom.Cube, id uint32) {
	x0, y0, x1, y1 := g.cellRange(bc)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			g.cell(x, y).add(bc, id)
		}
	}
}

// queryRegion returns the deduplicated ids of all cells overlapping bc.
// The result is a superset of the buildings truly intersecting bc; callers
// filter with exact tests.
func (g *gridIndex) queryRegion(bc geom.Cube) []uint32 {
	x0, y0, x1, y1 := g.cellRange(bc)
	var out []uint32
	seen := make(map[uint32]struct{})
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			for _, id := range g.cell(x, y).ids {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}
