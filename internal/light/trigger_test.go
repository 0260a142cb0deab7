package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/cityscape/internal/geom"
)

func TestTriggerRegister(t *testing.T) {
	tr := Trigger{ActPos: mgl32.Vec3{0, 0, 0}, ActDist: 2}

	assert.Equal(t, TrigProximity, tr.Register(mgl32.Vec3{1, 0, 0}, 0.5, ActivatorPlayer, false))
	assert.Equal(t, TrigNone, tr.Register(mgl32.Vec3{5, 0, 0}, 0.5, ActivatorPlayer, false))

	// The activator radius extends the reach.
	assert.Equal(t, TrigProximity, tr.Register(mgl32.Vec3{2.3, 0, 0}, 0.5, ActivatorPlayer, false))

	tr.ActDist = 0
	assert.Equal(t, TrigNone, tr.Register(mgl32.Vec3{0, 0, 0}, 0.5, ActivatorPlayer, false),
		"zero distance disables the trigger")
}

func TestTriggerRegisterAction(t *testing.T) {
	tr := Trigger{ActPos: mgl32.Vec3{}, ActDist: 2, RequiresAction: true}

	assert.Equal(t, TrigNone, tr.Register(mgl32.Vec3{1, 0, 0}, 0, ActivatorPlayer, false))
	assert.Equal(t, TrigAction, tr.Register(mgl32.Vec3{1, 0, 0}, 0, ActivatorPlayer, true))
	assert.Equal(t, TrigNone, tr.Register(mgl32.Vec3{1, 0, 0}, 0, 7, true),
		"only the player can issue actions")
}

func TestTriggerRegisterRegion(t *testing.T) {
	region := geom.NewCube(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{4, 4, 4})
	tr := Trigger{ActRegion: &region}

	assert.Equal(t, TrigProximity, tr.Register(mgl32.Vec3{2, 2, 2}, 10, ActivatorPlayer, false),
		"containment replaces the distance check")
	assert.Equal(t, TrigNone, tr.Register(mgl32.Vec3{5, 2, 2}, 10, ActivatorPlayer, false))
}

func TestTriggerPlayerOnly(t *testing.T) {
	tr := Trigger{ActPos: mgl32.Vec3{}, ActDist: 2, PlayerOnly: true}

	assert.Equal(t, TrigProximity, tr.Register(mgl32.Vec3{1, 0, 0}, 0, ActivatorPlayer, false))
	assert.Equal(t, TrigNone, tr.Register(mgl32.Vec3{1, 0, 0}, 0, 3, false))
}

func TestMultiTriggerAggregation(t *testing.T) {
	mt := MultiTrigger{
		{AutoOnTime: 5, AutoOffTime: 2},
		{AutoOnTime: 3, AutoOffTime: 10},
		{AutoOffTime: 1},
	}

	assert.Equal(t, float32(3), mt.AutoOnTime(), "smallest positive auto-on wins")
	assert.Equal(t, float32(10), mt.AutoOffTime(), "largest auto-off wins")
	assert.True(t, mt.IsActive())
	assert.False(t, MultiTrigger(nil).IsActive())
}

func newToggleLight() *TriggeredSource {
	ts := NewTriggeredSource(NewPoint(5, mgl32.Vec3{}, geom.White))
	ts.Triggers = MultiTrigger{{ActPos: mgl32.Vec3{}, ActDist: 3}}
	return ts
}

func TestCheckActivateToggle(t *testing.T) {
	ts := newToggleLight()
	p := mgl32.Vec3{1, 0, 0}

	// No auto-off: proximity toggles between off and one second on.
	require.True(t, ts.CheckActivate(p, 0.5, ActivatorPlayer, false))
	assert.Equal(t, float32(1*TicksPerSecond), ts.ActiveTime())

	require.True(t, ts.CheckActivate(p, 0.5, ActivatorPlayer, false))
	assert.Equal(t, float32(0), ts.ActiveTime())

	assert.False(t, ts.CheckActivate(mgl32.Vec3{100, 0, 0}, 0.5, ActivatorPlayer, false))
}

func TestCheckActivateActionToggle(t *testing.T) {
	ts := NewTriggeredSource(NewPoint(5, mgl32.Vec3{}, geom.White))
	ts.Triggers = MultiTrigger{{ActPos: mgl32.Vec3{}, ActDist: 3, AutoOffTime: 10, RequiresAction: true}}
	p := mgl32.Vec3{1, 0, 0}

	require.True(t, ts.CheckActivate(p, 0.5, ActivatorPlayer, true))
	assert.Equal(t, float32(10*TicksPerSecond), ts.ActiveTime())

	// A second action while on turns it off again.
	require.True(t, ts.CheckActivate(p, 0.5, ActivatorPlayer, true))
	assert.Equal(t, float32(0), ts.ActiveTime())
}

func TestCheckActivateProximityRearms(t *testing.T) {
	ts := NewTriggeredSource(NewPoint(5, mgl32.Vec3{}, geom.White))
	ts.Triggers = MultiTrigger{{ActPos: mgl32.Vec3{}, ActDist: 3, AutoOffTime: 4}}
	p := mgl32.Vec3{1, 0, 0}

	require.True(t, ts.CheckActivate(p, 0.5, ActivatorPlayer, false))
	assert.Equal(t, float32(4*TicksPerSecond), ts.ActiveTime())

	ts.AdvanceTimestep(30)
	ts.AdvanceTimestep(30)
	assert.Equal(t, float32(4*TicksPerSecond-60), ts.ActiveTime())

	// Lingering in range re-arms the full duration instead of toggling off.
	require.True(t, ts.CheckActivate(p, 0.5, ActivatorPlayer, false))
	assert.Equal(t, float32(4*TicksPerSecond), ts.ActiveTime())
}

func TestAdvanceTimestepDrainsActiveTime(t *testing.T) {
	ts := NewTriggeredSource(NewPoint(5, mgl32.Vec3{}, geom.White))
	ts.Triggers = MultiTrigger{{ActPos: mgl32.Vec3{}, ActDist: 3, AutoOffTime: 1}}
	ts.SetActiveTime(50)

	ts.AdvanceTimestep(20)
	assert.True(t, ts.Enabled())
	assert.Equal(t, float32(30), ts.ActiveTime())

	ts.AdvanceTimestep(40)
	assert.Equal(t, float32(0), ts.ActiveTime(), "drains to zero, never negative")

	ts.AdvanceTimestep(1)
	assert.False(t, ts.Enabled())
}

func TestAutoOnFiresAfterElapsed(t *testing.T) {
	ts := NewTriggeredSource(NewPoint(5, mgl32.Vec3{}, geom.White))
	ts.Triggers = MultiTrigger{{AutoOnTime: 2, AutoOffTime: 1}}
	far := mgl32.Vec3{1000, 0, 0}

	// Off and accumulating: not enough inactive time yet.
	ts.AdvanceTimestep(2 * TicksPerSecond)
	assert.False(t, ts.CheckActivate(far, 0.5, ActivatorPlayer, false))

	ts.AdvanceTimestep(1)
	require.True(t, ts.CheckActivate(far, 0.5, ActivatorPlayer, false),
		"auto-on fires once the inactive time exceeds the duration")
	assert.Equal(t, float32(1*TicksPerSecond), ts.ActiveTime())
	assert.Equal(t, float32(0), ts.InactiveTime(), "accumulator resets on fire")
}

func TestAdvanceTimestepWithoutTriggers(t *testing.T) {
	ts := NewTriggeredSource(NewPoint(5, mgl32.Vec3{}, geom.White))
	require.True(t, ts.Enabled(), "untriggered lights stay always on")

	ts.AdvanceTimestep(100)
	assert.True(t, ts.Enabled())
}

func TestTriggeredShiftBy(t *testing.T) {
	ts := newToggleLight()
	ts.ShiftBy(mgl32.Vec3{10, 0, 0})

	assert.Equal(t, mgl32.Vec3{10, 0, 0}, ts.Pos())
	assert.Equal(t, mgl32.Vec3{10, 0, 0}, ts.Triggers[0].ActPos)
}
