package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Cube is an axis-aligned bounding box in world space.
// A cube with all coordinates zeroed is the "invalid/culled" sentinel used
// by building placement and collision — see IsAllZeros.
type Cube struct {
	Min, Max mgl32.Vec3
}

// NewCube returns the axis-aligned box spanning points a and b.
func NewCube(a, b mgl32.Vec3) Cube {
	var c Cube
	for d := 0; d < 3; d++ {
		c.Min[d] = min(a[d], b[d])
		c.Max[d] = max(a[d], b[d])
	}
	return c
}

// CubeFromSphere returns the bounding box of a sphere.
func CubeFromSphere(center mgl32.Vec3, radius float32) Cube {
	r := mgl32.Vec3{radius, radius, radius}
	return Cube{Min: center.Sub(r), Max: center.Add(r)}
}

// IsAllZeros reports whether every coordinate is zero (the invalid sentinel).
func (c Cube) IsAllZeros() bool {
	return c.Min == mgl32.Vec3{} && c.Max == mgl32.Vec3{}
}

// SetToZeros marks the cube as invalid.
func (c *Cube) SetToZeros() {
	*c = Cube{}
}

// Size returns the edge lengths along each axis.
func (c Cube) Size() mgl32.Vec3 {
	return c.Max.Sub(c.Min)
}

// Center returns the cube center point.
func (c Cube) Center() mgl32.Vec3 {
	return c.Min.Add(c.Max).Mul(0.5)
}

// BoundingSphereRadius returns the radius of the sphere enclosing the cube.
func (c Cube) BoundingSphereRadius() float32 {
	return 0.5 * c.Size().Len()
}

// UnionWith grows the cube to enclose other.
func (c *Cube) UnionWith(other Cube) {
	for d := 0; d < 3; d++ {
		c.Min[d] = min(c.Min[d], other.Min[d])
		c.Max[d] = max(c.Max[d], other.Max[d])
	}
}

// IntersectWith shrinks the cube to the overlap with other.
// The caller must ensure the cubes actually overlap.
func (c *Cube) IntersectWith(other Cube) {
	for d := 0; d < 3; d++ {
		c.Min[d] = max(c.Min[d], other.Min[d])
		c.Max[d] = min(c.Max[d], other.Max[d])
	}
}

// ExpandBy grows the cube by d on every side.
func (c *Cube) ExpandBy(d float32) {
	c.ExpandByVec(mgl32.Vec3{d, d, d})
}

// ExpandByVec grows the cube by v[d] on both sides of each axis.
func (c *Cube) ExpandByVec(v mgl32.Vec3) {
	c.Min = c.Min.Sub(v)
	c.Max = c.Max.Add(v)
}

// Intersects reports whether the two cubes overlap in all three axes.
func (c Cube) Intersects(other Cube) bool {
	for d := 0; d < 3; d++ {
		if c.Max[d] < other.Min[d] || c.Min[d] > other.Max[d] {
			return false
		}
	}
	return true
}

// IntersectsXY reports whether the two cubes overlap in the XY projection.
// Z is ignored — building overlap is a deliberate 2D test since buildings
// are ground-anchored.
func (c Cube) IntersectsXY(other Cube) bool {
	for d := 0; d < 2; d++ {
		if c.Max[d] < other.Min[d] || c.Min[d] > other.Max[d] {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p lies inside the cube (inclusive).
func (c Cube) ContainsPoint(p mgl32.Vec3) bool {
	for d := 0; d < 3; d++ {
		if p[d] < c.Min[d] || p[d] > c.Max[d] {
			return false
		}
	}
	return true
}

// ClampPoint returns p clamped into the cube's extents.
func (c Cube) ClampPoint(p mgl32.Vec3) mgl32.Vec3 {
	for d := 0; d < 3; d++ {
		p[d] = min(max(p[d], c.Min[d]), c.Max[d])
	}
	return p
}

// ClosestPoint is an alias of ClampPoint kept for readability at call sites
// that compute sphere/cube distances.
func (c Cube) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	return c.ClampPoint(p)
}

// ShiftBy translates the cube by v.
func (c *Cube) ShiftBy(v mgl32.Vec3) {
	c.Min = c.Min.Add(v)
	c.Max = c.Max.Add(v)
}

// SphereCubeIntersects reports whether a sphere overlaps the cube.
func SphereCubeIntersects(center mgl32.Vec3, radius float32, c Cube) bool {
	d := c.ClosestPoint(center).Sub(center)
	return d.Dot(d) <= radius*radius
}

// Cylinder is a capped cylinder between two endpoints with per-end radii.
type Cylinder struct {
	P0, P1 mgl32.Vec3
	R0, R1 float32
}

// BCube returns a conservative bounding box of the cylinder.
func (cy Cylinder) BCube() Cube {
	r := max(cy.R0, cy.R1)
	c := NewCube(cy.P0, cy.P1)
	c.ExpandBy(r)
	return c
}

// DistLessThan reports whether |a-b| < d.
func DistLessThan(a, b mgl32.Vec3, d float32) bool {
	v := a.Sub(b)
	return v.Dot(v) < d*d
}

// DistXYLessThan reports whether the XY-projected distance |a-b| < d.
func DistXYLessThan(a, b mgl32.Vec3, d float32) bool {
	dx := a.X() - b.X()
	dy := a.Y() - b.Y()
	return dx*dx+dy*dy < d*d
}

// ClipTo01 clamps v into [0, 1].
func ClipTo01(v float32) float32 {
	return min(max(v, 0), 1)
}

// OrthoVectors returns two unit vectors orthogonal to dir and to each other.
func OrthoVectors(dir mgl32.Vec3) [2]mgl32.Vec3 {
	up := mgl32.Vec3{0, 0, 1}
	if abs(dir.Z()) > 0.99*dir.Len() { // dir nearly vertical, pick another axis
		up = mgl32.Vec3{1, 0, 0}
	}
	v0 := dir.Cross(up).Normalize()
	v1 := dir.Cross(v0).Normalize()
	return [2]mgl32.Vec3{v0, v1}
}

func abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
