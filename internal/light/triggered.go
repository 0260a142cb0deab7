package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/scene"
)

// TicksPerSecond converts trigger durations from seconds to simulation
// ticks.
const TicksPerSecond = 40

// TriggeredSource extends a light source with trigger-driven activation
// state and the lifecycle of its shadow-map resource. Enabled state is a
// pure function of the remaining active time.
type TriggeredSource struct {
	Source
	Triggers MultiTrigger
	Bind     BindPoint

	activeTime   float32 // remaining on-duration, ticks
	inactiveTime float32 // elapsed off-duration, ticks
	smap         ShadowMap
}

// NewTriggeredSource wraps a light source with trigger state.
func NewTriggeredSource(s Source) *TriggeredSource {
	return &TriggeredSource{Source: s}
}

// ActiveTime returns the remaining on-duration in ticks.
func (ts *TriggeredSource) ActiveTime() float32 { return ts.activeTime }

// SetActiveTime overrides the remaining on-duration in ticks.
func (ts *TriggeredSource) SetActiveTime(ticks float32) { ts.activeTime = ticks }

// InactiveTime returns the elapsed off-duration in ticks.
func (ts *TriggeredSource) InactiveTime() float32 { return ts.inactiveTime }

// AdvanceTimestep advances the trigger state machine by fticks ticks.
// A light whose bind point became invalid loses its shadow map. With a
// trigger configured, enabled follows activeTime > 0: auto-off mode drains
// the active time, auto-on mode accumulates inactive time while off.
func (ts *TriggeredSource) AdvanceTimestep(fticks float32) {
	if !ts.Bind.Valid() {
		ts.FreeShadowMap() // invalid binding, drop the resource early
	}
	if !ts.Triggers.IsActive() {
		return
	}
	ts.enabled = ts.activeTime > 0

	if ts.enabled {
		if ts.Triggers.AutoOffTime() > 0 {
			ts.activeTime = max(0, ts.activeTime-fticks)
		}
	} else if ts.Triggers.AutoOnTime() > 0 {
		ts.inactiveTime += fticks
	}
}

// CheckActivate evaluates the triggers against an activator at p and updates
// the activation timer. Returns whether anything fired.
//
// Modes: with no auto-off the light toggles between off and 1 second on;
// an action trigger with auto-off toggles between off and the full auto-off
// duration; otherwise the on-duration is re-armed to the auto-off duration.
func (ts *TriggeredSource) CheckActivate(p mgl32.Vec3, actRadius float32, activator int32, actionKey bool) bool {
	autoOn := ts.Triggers.AutoOnTime()
	mode := TrigNone
	if autoOn > 0 && ts.inactiveTime > TicksPerSecond*autoOn {
		ts.inactiveTime = 0
		mode = TrigAutoOn // fires unconditionally once elapsed
	}
	mode |= ts.Triggers.Register(p, actRadius, activator, actionKey)
	if mode == TrigNone {
		return false
	}

	autoOff := ts.Triggers.AutoOffTime()
	isOff := ts.activeTime == 0
	switch {
	case autoOff == 0: // toggle between off and 1 second
		if isOff {
			ts.activeTime = 1
		} else {
			ts.activeTime = 0
		}
	case mode&TrigAction != 0: // action toggles the full duration
		if isOff {
			ts.activeTime = autoOff
		} else {
			ts.activeTime = 0
		}
	default: // proximity/auto-on re-arms the on-duration
		ts.activeTime = autoOff
	}
	ts.activeTime *= TicksPerSecond
	return true
}

// CheckShadowMap lazily allocates the shadow map and re-renders it for the
// current light transform. Line lights never get one; point lights would
// need a cube map, which is not supported, so only spots qualify.
func (ts *TriggeredSource) CheckShadowMap(alloc ShadowMapAllocator) {
	if ts.kind != KindSpot {
		return
	}
	if !ts.enabled {
		return
	}
	if ts.smap == nil {
		ts.smap = alloc.Allocate()
	}
	ts.smap.Update(ts.pos, ts.dir, ts.radius)
}

// HasShadowMap reports whether a shadow map is currently allocated.
func (ts *TriggeredSource) HasShadowMap() bool { return ts.smap != nil }

// FreeShadowMap releases the shadow-map resource, if any.
func (ts *TriggeredSource) FreeShadowMap() {
	if ts.smap != nil {
		ts.smap.Free()
		ts.smap = nil
	}
}

// RevalidateBind re-checks the bind point against the occluder service,
// freeing the shadow map when containment was lost.
func (ts *TriggeredSource) RevalidateBind(occ scene.Occluder) bool {
	if ts.Bind.IsValid(occ) {
		return true
	}
	ts.FreeShadowMap()
	return false
}

// ShiftBy translates the light, its triggers, and its bind point.
func (ts *TriggeredSource) ShiftBy(v mgl32.Vec3) {
	ts.Source.ShiftBy(v)
	ts.Triggers.ShiftBy(v)
	ts.Bind.ShiftBy(v)
}

// FreeAll releases the shadow maps of every light in the collection.
func FreeAll(lights []*TriggeredSource) {
	for _, l := range lights {
		l.FreeShadowMap()
	}
}
