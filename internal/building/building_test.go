package building

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/udisondev/cityscape/internal/geom"
	"github.com/udisondev/cityscape/internal/scene"
)

type rejectFrustum struct{}

func (rejectFrustum) SphereVisible(mgl32.Vec3, float32) bool { return false }
func (rejectFrustum) CubeVisible(geom.Cube) bool             { return false }

func TestVisibleFrom(t *testing.T) {
	b := Building{BCube: geom.NewCube(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 2, 2})}
	near := mgl32.Vec3{5, 1, 1}

	assert.True(t, b.VisibleFrom(near, 100, scene.AllFrustum{}))
	assert.False(t, b.VisibleFrom(mgl32.Vec3{500, 1, 1}, 100, scene.AllFrustum{}), "beyond the far clip")
	assert.False(t, b.VisibleFrom(near, 100, rejectFrustum{}))

	b.BCube.SetToZeros()
	assert.False(t, b.VisibleFrom(near, 100, scene.AllFrustum{}), "culled buildings are never drawn")
}

func TestSinglePass(t *testing.T) {
	b := Building{
		Side:      DefaultTexturePair(),
		Roof:      DefaultTexturePair(),
		SideColor: geom.White,
		RoofColor: geom.White,
	}
	assert.True(t, b.SinglePass())

	b.RoofColor = geom.Color{R: 1, A: 1}
	assert.False(t, b.SinglePass())
}
