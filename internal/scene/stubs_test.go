package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureRegistry(t *testing.T) {
	r := NewTextureRegistry()

	id, err := r.Lookup("brick")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, id, TextureID(0))

	again, err := r.Lookup("brick")
	require.NoError(t, err)
	assert.Equal(t, id, again, "repeated lookups are stable")

	other, err := r.Lookup("tile")
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	nm, err := r.LookupNormal("brick")
	require.NoError(t, err)
	assert.NotEqual(t, id, nm, "diffuse and normal namespaces are separate")

	empty, err := r.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, NoTexture, empty)
}

func TestWaveTerrainDeterministic(t *testing.T) {
	terr := WaveTerrain{Amplitude: 4, Frequency: 0.1, Water: -1}

	assert.Equal(t, terr.HeightAt(3, 7), terr.HeightAt(3, 7))
	assert.InDelta(t, 2, float64(terr.HeightAt(0, 0)), 1e-5, "sin(0)+cos(0) gives half the amplitude")
	assert.Equal(t, float32(-1), terr.WaterLevel())
}
