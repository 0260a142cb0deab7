package building

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/geom"
)

// CheckSphereColl tests a moving sphere against the building set. pos is the
// current center, prev the center on the previous step, radius the sphere
// radius. On collision it returns the corrected position and true.
//
// The query stops at the first hit. This assumes buildings do not overlap so
// at most one collision can occur — a documented approximation: the
// generator's overlap test is XY-only, so buildings may still overlap in Z.
func (g *Generator) CheckSphereColl(pos, prev mgl32.Vec3, radius float32) (mgl32.Vec3, bool) {
	if g.Empty() {
		return pos, false
	}
	// Conservative query box: sphere radius plus the travel distance.
	travel := pos.Sub(prev).Len()
	bc := geom.CubeFromSphere(pos, radius+travel)

	x0, y0, x1, y1 := g.grid.cellRange(bc)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			cell := g.grid.cell(x, y)
			if len(cell.ids) == 0 || !geom.SphereCubeIntersects(pos, radius+travel, cell.bcube) {
				continue
			}
			for _, id := range cell.ids {
				b := &g.buildings[id]
				if !b.Valid() {
					continue
				}
				if corrected, hit := sweepSphereCube(pos, prev, radius, b.BCube); hit {
					return corrected, true
				}
			}
		}
	}
	return pos, false
}

// sweepSphereCube is the precise sphere-vs-box sweep: if the sphere at pos
// penetrates the cube, the center is pushed back out through the face it
// entered from (judged by the previous position), yielding a corrected
// resting position.
func sweepSphereCube(pos, prev mgl32.Vec3, radius float32, c geom.Cube) (mgl32.Vec3, bool) {
	if !geom.SphereCubeIntersects(pos, radius, c) {
		return pos, false
	}

	// Prefer the face the previous center was outside of: that is the face
	// the sphere crossed this step.
	for d := 0; d < 3; d++ {
		if prev[d] <= c.Min[d]-radius && pos[d] > c.Min[d]-radius {
			pos[d] = c.Min[d] - radius
			return pos, true
		}
		if prev[d] >= c.Max[d]+radius && pos[d] < c.Max[d]+radius {
			pos[d] = c.Max[d] + radius
			return pos, true
		}
	}

	// Degenerate start (already inside, or zero travel): push out along the
	// axis of minimum penetration.
	bestAxis, bestSide := 0, 0
	bestDepth := float32(0)
	for d := 0; d < 3; d++ {
		lo := pos[d] - (c.Min[d] - radius) // depth past the low face
		hi := (c.Max[d] + radius) - pos[d] // depth past the high face
		if bestDepth == 0 || lo < bestDepth {
			bestAxis, bestSide, bestDepth = d, 0, lo
		}
		if hi < bestDepth {
			bestAxis, bestSide, bestDepth = d, 1, hi
		}
	}
	if bestSide == 0 {
		pos[bestAxis] = c.Min[bestAxis] - radius
	} else {
		pos[bestAxis] = c.Max[bestAxis] + radius
	}
	return pos, true
}
