// Package light models point, spot, and line light sources: radiometric
// falloff, directional cone attenuation, bounding volumes, LOD merging, the
// GPU wire format, occlusion-aware visibility, and trigger-driven activation
// with shadow-map binding.
package light

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/geom"
)

// Kind tags the light variant. Directional (spot) and line are mutually
// exclusive by construction.
type Kind uint8

const (
	// KindPoint is an omnidirectional point light.
	KindPoint Kind = iota
	// KindSpot is a directional cone light with a beam width.
	KindSpot
	// KindLine is a capsule light between two endpoints.
	KindLine
)

const (
	// DirFalloff is the fixed softness margin added to the beam width when
	// mapping the direction cosine into attenuation.
	DirFalloff = 0.005

	dirFalloffInv = 1.0 / DirFalloff

	// sqrtCThresh is the square root of the intensity cutoff used for
	// bounding-volume and visibility-ray extents.
	sqrtCThresh = 0.158
)

// TerrainGridUnit is the one-grid-unit margin added to the cylinder bound of
// strongly directional lights so nearby terrain cells are not excluded.
// Callers with a real terrain grid should set it to the grid spacing.
var TerrainGridUnit = mgl32.Vec3{1, 1, 1}

// Source is a light source. radius == 0 means infinite range with no
// attenuation (a global light). Color carries premultiplied alpha.
type Source struct {
	kind      Kind
	dynamic   bool
	enabled   bool
	neg       bool // negative light, used for shadow subtraction
	radius    float32
	radiusInv float32
	rInner    float32
	bwidth    float32
	pos       mgl32.Vec3
	pos2      mgl32.Vec3 // second endpoint; equals pos unless KindLine
	dir       mgl32.Vec3 // beam axis; zero unless KindSpot
	color     geom.Color
}

func newSource(kind Kind, radius float32, pos, pos2, dir mgl32.Vec3, color geom.Color, bwidth, rInner float32) Source {
	// Out-of-range geometry parameters are programming errors, not user
	// input: fail loudly.
	if bwidth <= 0 || bwidth > 1 {
		panic(fmt.Sprintf("light: beam width %v out of range (0,1]", bwidth))
	}
	if rInner > radius {
		panic(fmt.Sprintf("light: inner radius %v exceeds radius %v", rInner, radius))
	}
	radiusInv := float32(0)
	if radius != 0 {
		radiusInv = 1.0 / radius
	}
	if kind == KindSpot {
		dir = dir.Normalize()
	}
	return Source{
		kind:      kind,
		enabled:   true,
		radius:    radius,
		radiusInv: radiusInv,
		rInner:    rInner,
		bwidth:    bwidth,
		pos:       pos,
		pos2:      pos2,
		dir:       dir,
		color:     color,
	}
}

// NewPoint returns an omnidirectional light. radius 0 means global.
func NewPoint(radius float32, pos mgl32.Vec3, color geom.Color) Source {
	return newSource(KindPoint, radius, pos, pos, mgl32.Vec3{}, color, 1.0, 0)
}

// NewSpot returns a directional cone light along dir with the given beam
// width in (0,1] and inner full-intensity radius.
func NewSpot(radius float32, pos, dir mgl32.Vec3, color geom.Color, bwidth, rInner float32) Source {
	return newSource(KindSpot, radius, pos, pos, dir, color, bwidth, rInner)
}

// NewLine returns a capsule light between p0 and p1.
func NewLine(radius float32, p0, p1 mgl32.Vec3, color geom.Color) Source {
	return newSource(KindLine, radius, p0, p1, mgl32.Vec3{}, color, 1.0, 0)
}

// Kind returns the variant tag.
func (s *Source) Kind() Kind { return s.kind }

// Pos returns the light position (first endpoint for line lights).
func (s *Source) Pos() mgl32.Vec3 { return s.pos }

// Pos2 returns the second endpoint. Equals Pos unless the light is a line.
func (s *Source) Pos2() mgl32.Vec3 { return s.pos2 }

// Dir returns the beam axis (zero vector unless the light is a spot).
func (s *Source) Dir() mgl32.Vec3 { return s.dir }

// Radius returns the attenuation radius; 0 means infinite range.
func (s *Source) Radius() float32 { return s.radius }

// InnerRadius returns the full-intensity inner radius.
func (s *Source) InnerRadius() float32 { return s.rInner }

// BeamWidth returns the spot beam width in (0,1].
func (s *Source) BeamWidth() float32 { return s.bwidth }

// Color returns the light color with premultiplied alpha.
func (s *Source) Color() geom.Color { return s.color }

// Enabled reports whether the light is currently on.
func (s *Source) Enabled() bool { return s.enabled }

// SetEnabled turns the light on or off.
func (s *Source) SetEnabled(v bool) { s.enabled = v }

// Dynamic reports whether the light moves with the scene.
func (s *Source) Dynamic() bool { return s.dynamic }

// SetDynamic marks the light as dynamic.
func (s *Source) SetDynamic(v bool) { s.dynamic = v }

// Neg reports the negative-light polarity (shadow subtraction).
func (s *Source) Neg() bool { return s.neg }

// SetNeg sets the negative-light polarity.
func (s *Source) SetNeg(v bool) { s.neg = v }

// IsDirectional reports whether the light has a beam axis.
func (s *Source) IsDirectional() bool { return s.kind == KindSpot }

// isVeryDirectional reports a beam narrower than a hemisphere.
func (s *Source) isVeryDirectional() bool {
	return s.kind == KindSpot && s.bwidth+DirFalloff < 0.5
}

// IntensityAt returns the light intensity at p and the effective light
// position (the projection onto the capsule segment for line lights).
// Returns exactly color alpha when radius is 0, and 0 outside the radius.
func (s *Source) IntensityAt(p mgl32.Vec3) (float32, mgl32.Vec3) {
	if s.radius == 0 {
		return s.color.A, s.pos
	}
	lpos := s.pos
	if s.kind == KindLine {
		l := s.pos2.Sub(s.pos)
		t := geom.ClipTo01(p.Sub(s.pos).Dot(l) / l.Dot(l))
		lpos = s.pos.Add(l.Mul(t))
	}
	if abs(p.Z()-lpos.Z()) > s.radius { // fast Z-slab reject
		return 0, lpos
	}
	d := p.Sub(lpos)
	distSq := d.Dot(d)
	if distSq > s.radius*s.radius {
		return 0, lpos
	}
	rscale := (s.radius - sqrt(distSq)) * s.radiusInv
	return rscale * rscale * s.color.A, lpos // quadratic falloff
}

// DirIntensity returns the directional attenuation in [0,1] for a query
// direction pointing from the lit object toward the light. Full intensity
// when the query direction is opposite the beam axis. Non-directional
// lights always return 1.
func (s *Source) DirIntensity(objDir mgl32.Vec3) float32 {
	if !s.IsDirectional() {
		return 1.0
	}
	dp := objDir.Dot(s.dir)
	if dp >= 0 && s.bwidth+DirFalloff < 0.5 {
		return 0.0 // pointing away from a narrow beam
	}
	dpNorm := 0.5 * (-dp/objDir.Len() + 1.0) // [-1,1] => [0,1]
	return geom.ClipTo01(2.0 * (dpNorm + s.bwidth + DirFalloff - 1.0) * dirFalloffInv)
}

// CalcBCube returns the bounding box of the light's influence down to the
// given intensity threshold (as sqrt of the cutoff). For strongly
// directional lights the box is intersected with the cone's cylinder bound
// plus one terrain-grid-unit margin.
func (s *Source) CalcBCube(sqrtThresh float32) geom.Cube {
	if s.radius <= 0 {
		panic("light: CalcBCube on a global light")
	}
	if sqrtThresh >= 1 {
		panic("light: CalcBCube threshold must be < 1")
	}
	bc := geom.NewCube(s.pos, s.pos2)
	bc.ExpandBy(s.radius * (1.0 - sqrtThresh))

	if s.isVeryDirectional() {
		bc2 := s.boundingCylinder(sqrtThresh).BCube()
		bc2.ExpandByVec(TerrainGridUnit)
		bc.IntersectWith(bc2)
	}
	return bc
}

// cylinEndRadius returns the cone end-cap radius at the attenuation radius.
func (s *Source) cylinEndRadius() float32 {
	d := 1.0 - 2.0*(s.bwidth+DirFalloff)
	return s.radius * sqrt(1.0/(d*d)-1.0)
}

// boundingCylinder returns the cylinder bound of a line light or of a
// strongly directional spot. Not valid for point lights or wide spots.
func (s *Source) boundingCylinder(sqrtThresh float32) geom.Cylinder {
	rad := s.radius * (1.0 - sqrtThresh)
	if s.kind == KindLine {
		return geom.Cylinder{P0: s.pos, P1: s.pos2, R0: rad, R1: rad}
	}
	if !s.isVeryDirectional() {
		panic("light: boundingCylinder on a wide or point light")
	}
	return geom.Cylinder{
		P0: s.pos,
		P1: s.pos.Add(s.dir.Mul(rad)),
		R0: 0,
		R1: (1.0 - sqrtThresh) * s.cylinEndRadius(),
	}
}

// AddColor blends another color in, weighted by alpha on both sides.
func (s *Source) AddColor(c geom.Color) {
	s.color.AccumulateWeighted(c)
}

// CombineWith merges l into s as a weighted average, weighting by volume
// (mass proportional to radius cubed). Used for LOD light clustering.
func (s *Source) CombineWith(l *Source) {
	if s.radius <= 0 {
		panic("light: CombineWith on a global light")
	}
	w1 := s.radius * s.radius * s.radius
	w2 := l.radius * l.radius * l.radius
	wsum := w1 + w2
	wa, wb := w1/wsum, w2/wsum
	s.radius = float32(math.Cbrt(float64(wsum)))
	s.radiusInv = 1.0 / s.radius
	s.pos = s.pos.Mul(wa).Add(l.pos.Mul(wb))
	s.pos2 = s.pos
	s.color = geom.BlendColors(s.color, l.color, wa, wb)
}

// MergeSpacing is the light spacing constant bounding how far apart two
// lights may sit and still merge. Derived from the terrain grid unit.
func MergeSpacing() float32 {
	return 0.5 * (TerrainGridUnit.X() + TerrainGridUnit.Y())
}

// TryMergeInto merges s into ls when the pair is mergeable, returning
// whether the merge happened. ls is never mutated on a false return.
// Preconditions checked: ls must be the larger light (callers sort by
// radius), positions within a fraction of the spacing constant, matching
// beam width / inner radius / dynamic flag, spot axes within a 0.95 cosine,
// neither a line light, matching negative-light polarity.
func (s *Source) TryMergeInto(ls *Source) bool {
	if ls.radius < s.radius {
		return false
	}
	if !geom.DistLessThan(s.pos, ls.pos, 0.2*min(MergeSpacing(), s.radius)) {
		return false
	}
	if ls.bwidth != s.bwidth || ls.rInner != s.rInner || ls.dynamic != s.dynamic {
		return false
	}
	if s.IsDirectional() && s.dir.Dot(ls.dir) < 0.95 {
		return false
	}
	if s.kind == KindLine || ls.kind == KindLine {
		return false
	}
	if s.neg != ls.neg { // merging opposite polarities looks bad
		return false
	}
	ls.CombineWith(s)
	return true
}

// ShiftBy translates the light by v.
func (s *Source) ShiftBy(v mgl32.Vec3) {
	s.pos = s.pos.Add(v)
	s.pos2 = s.pos2.Add(v)
}

// ShiftSources translates every light in the collection.
func ShiftSources(lights []Source, v mgl32.Vec3) {
	for i := range lights {
		lights[i].ShiftBy(v)
	}
}

func abs(v float32) float32 { return float32(math.Abs(float64(v))) }

func sqrt(v float32) float32 { return float32(math.Sqrt(float64(v))) }
