// Package building implements procedural placement of axis-aligned building
// volumes over an open-world terrain: a uniform spatial grid index,
// randomized placement with overlap rejection, a terrain-conformance pass,
// and sphere collision queries against the placed set.
package building

import (
	"math/rand/v2"

	"github.com/udisondev/cityscape/internal/geom"
	"github.com/udisondev/cityscape/internal/scene"
)

// TexturePair bundles a texture handle with its normal map and tiling scale.
// Embedded by value in materials and buildings.
type TexturePair struct {
	Texture   scene.TextureID
	NormalMap scene.TextureID
	Scale     float32
}

// DefaultTexturePair returns a disabled texture pair with unit tiling.
func DefaultTexturePair() TexturePair {
	return TexturePair{Texture: scene.NoTexture, NormalMap: scene.NoTexture, Scale: 1.0}
}

// Enabled reports whether either the texture or its normal map is set.
func (t TexturePair) Enabled() bool {
	return t.Texture >= 0 || t.NormalMap >= 0
}

// ColorRange samples a color uniformly between Min and Max per channel.
// If Min == Max the exact color is used. GrayscaleRand, when positive, adds
// a shared random value to the RGB channels only.
type ColorRange struct {
	GrayscaleRand float32
	Min, Max      geom.Color
}

// DefaultColorRange returns an exact-white range.
func DefaultColorRange() ColorRange {
	return ColorRange{Min: geom.White, Max: geom.White}
}

// Sample draws a color from the range using rng.
func (cr ColorRange) Sample(rng *rand.Rand) geom.Color {
	var c geom.Color
	if cr.Min == cr.Max {
		c = cr.Min
	} else {
		for i := 0; i < 4; i++ {
			c.Set(i, uniform(rng, cr.Min.At(i), cr.Max.At(i)))
		}
	}
	if cr.GrayscaleRand > 0 {
		v := cr.GrayscaleRand * rng.Float32()
		c.R += v
		c.G += v
		c.B += v
	}
	return c
}

// Material describes the textures and color ranges of one building style.
type Material struct {
	Side, Roof           TexturePair
	SideColor, RoofColor ColorRange
}

// DefaultMaterial returns an untextured white material.
func DefaultMaterial() Material {
	return Material{
		Side:      DefaultTexturePair(),
		Roof:      DefaultTexturePair(),
		SideColor: DefaultColorRange(),
		RoofColor: DefaultColorRange(),
	}
}

// ConformMode selects the post-placement terrain-conformance pass.
type ConformMode uint8

const (
	// ConformNone leaves building bases at the sampled terrain height.
	ConformNone ConformMode = iota
	// ConformFlatten flattens the terrain under each footprint to a single
	// height. Requires the terrain to implement scene.TerrainFlattener;
	// falls back to ConformDrop otherwise.
	ConformFlatten
	// ConformDrop lowers each base to the minimum of its four corner
	// heights, rejecting steep or mostly-underwater placements.
	ConformDrop
)

// Params holds the generation parameters for one building set.
type Params struct {
	Count       int
	PlaceRadius float32 // 0 disables the radial placement constraint
	MaxDeltaZ   float32 // 0 disables the slope rejection in ConformDrop
	Conform     ConformMode
	SizeRange   geom.Cube // min/max half-extent source range per axis
	PosRange    geom.Cube // XY placement region (Z unused)
	Materials   []Material
}

// Finalize ensures at least one material exists so generation never has an
// empty choice set.
func (p *Params) Finalize() {
	if len(p.Materials) == 0 {
		p.Materials = append(p.Materials, DefaultMaterial())
	}
}

// HasNormalMap reports whether any material carries a normal map.
func (p *Params) HasNormalMap() bool {
	for _, m := range p.Materials {
		if m.Side.NormalMap >= 0 || m.Roof.NormalMap >= 0 {
			return true
		}
	}
	return false
}

// chooseMaterial picks a material by uniform random index.
func (p *Params) chooseMaterial(rng *rand.Rand) Material {
	if len(p.Materials) == 0 {
		panic("building: Params.Finalize not called, no materials")
	}
	return p.Materials[rng.IntN(len(p.Materials))]
}

func uniform(rng *rand.Rand, lo, hi float32) float32 {
	return lo + (hi-lo)*rng.Float32()
}
