package geom

// Color is an RGBA color with premultiplied alpha semantics where noted.
type Color struct {
	R, G, B, A float32
}

// White is the default building/material color.
var White = Color{1, 1, 1, 1}

// At returns channel i (0=R, 1=G, 2=B, 3=A).
func (c Color) At(i int) float32 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	case 2:
		return c.B
	default:
		return c.A
	}
}

// Set assigns channel i (0=R, 1=G, 2=B, 3=A).
func (c *Color) Set(i int, v float32) {
	switch i {
	case 0:
		c.R = v
	case 1:
		c.G = v
	case 2:
		c.B = v
	default:
		c.A = v
	}
}

// Scale multiplies all four channels by s.
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A * s}
}

// BlendColors returns a*wa + b*wb across all four channels.
func BlendColors(a, b Color, wa, wb float32) Color {
	return Color{
		R: a.R*wa + b.R*wb,
		G: a.G*wa + b.G*wb,
		B: a.B*wa + b.B*wb,
		A: a.A*wa + b.A*wb,
	}
}

// AccumulateWeighted blends another color in, weighting each side by its own
// alpha, and resets alpha to 1. Alpha accumulates via this weighted blend
// when light colors are combined.
func (c *Color) AccumulateWeighted(other Color) {
	blended := BlendColors(c.Scale(c.A), other.Scale(other.A), 1, 1)
	blended.A = 1
	*c = blended
}
