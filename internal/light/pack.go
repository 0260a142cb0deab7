package light

// PackedFloats is the size of the fixed GPU upload record for one light.
const PackedFloats = 12

// PackInto serializes the light into a fixed 12-float record for GPU upload:
//
//	{pos.xyz, radius}, {color.rgba remapped [-1,1]=>[0,1], alpha raw},
//	{pos2.xyz, 0} for line lights or {dir.xyz remapped, bwidth} otherwise.
//
// The 0 in the bwidth slot is the wire sentinel the shader branches on to
// recognize line lights; this layout must be preserved bit for bit.
func (s *Source) PackInto(data []float32) {
	if len(data) < PackedFloats {
		panic("light: PackInto buffer too small")
	}
	data[0] = s.pos.X()
	data[1] = s.pos.Y()
	data[2] = s.pos.Z()
	data[3] = s.radius
	// Map RGB from [-1,1] to [0,1] for negative light support.
	data[4] = 0.5 * (1.0 + s.color.R)
	data[5] = 0.5 * (1.0 + s.color.G)
	data[6] = 0.5 * (1.0 + s.color.B)
	data[7] = s.color.A

	if s.kind == KindLine {
		data[8] = s.pos2.X()
		data[9] = s.pos2.Y()
		data[10] = s.pos2.Z()
		data[11] = 0.0 // line-light sentinel
	} else {
		data[8] = 0.5 * (1.0 + s.dir.X())
		data[9] = 0.5 * (1.0 + s.dir.Y())
		data[10] = 0.5 * (1.0 + s.dir.Z())
		data[11] = s.bwidth
	}
}

// PackFloats returns the 12-float GPU record. See PackInto.
func (s *Source) PackFloats() [PackedFloats]float32 {
	var data [PackedFloats]float32
	s.PackInto(data[:])
	return data
}
