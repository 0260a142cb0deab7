package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/geom"
)

// Trigger mode bits returned by Register.
const (
	TrigNone      uint32 = 0
	TrigProximity uint32 = 1 // activator entered the activation range
	TrigAction    uint32 = 2 // activator used the action key in range
	TrigAutoOn    uint32 = 4 // auto-on duration elapsed
)

// ActivatorPlayer is the activator id of the player. Triggers with
// PlayerOnly or RequiresAction ignore every other activator.
const ActivatorPlayer int32 = 0

// Trigger describes one activation condition for a light: a proximity
// sphere or an explicit activation region, optionally gated on the player's
// action key, with auto-on/auto-off durations in seconds.
type Trigger struct {
	ActPos         mgl32.Vec3
	ActDist        float32    // 0 disables the proximity check
	ActRegion      *geom.Cube // when set, containment replaces the distance check
	AutoOnTime     float32    // seconds; 0 disables auto-on
	AutoOffTime    float32    // seconds; 0 means toggle mode
	RequiresAction bool
	PlayerOnly     bool
}

// Register evaluates the trigger against an activator at p with the given
// activation radius and returns the trigger mode bits. actionKey reports
// whether the activator pressed the action key this step.
func (t *Trigger) Register(p mgl32.Vec3, actRadius float32, activator int32, actionKey bool) uint32 {
	// Only the player can issue an action, so RequiresAction implies
	// player-only.
	if (t.PlayerOnly || t.RequiresAction) && activator != ActivatorPlayer {
		return TrigNone
	}
	if t.RequiresAction && !actionKey {
		return TrigNone
	}
	if t.ActRegion != nil {
		if !t.ActRegion.ContainsPoint(p) {
			return TrigNone
		}
		if t.RequiresAction {
			return TrigAction
		}
		return TrigProximity
	}
	if t.ActDist == 0 {
		return TrigNone // distance of 0 disables this trigger
	}
	if !geom.DistLessThan(p, t.ActPos, t.ActDist+actRadius) {
		return TrigNone
	}
	if t.RequiresAction {
		return TrigAction
	}
	return TrigProximity
}

// ShiftBy translates the trigger geometry by v.
func (t *Trigger) ShiftBy(v mgl32.Vec3) {
	t.ActPos = t.ActPos.Add(v)
	if t.ActRegion != nil {
		t.ActRegion.ShiftBy(v)
	}
}

// MultiTrigger groups triggers: any member may activate the group.
type MultiTrigger []Trigger

// IsActive reports whether any trigger is configured.
func (mt MultiTrigger) IsActive() bool { return len(mt) > 0 }

// Register ORs the mode bits of all member triggers.
func (mt MultiTrigger) Register(p mgl32.Vec3, actRadius float32, activator int32, actionKey bool) uint32 {
	ret := TrigNone
	for i := range mt {
		ret |= mt[i].Register(p, actRadius, activator, actionKey)
	}
	return ret
}

// AutoOnTime returns the smallest positive auto-on duration: the first
// trigger to fire activates the group.
func (mt MultiTrigger) AutoOnTime() float32 {
	minTime := float32(0)
	for i := range mt {
		if t := mt[i].AutoOnTime; t > 0 && (minTime == 0 || t < minTime) {
			minTime = t
		}
	}
	return minTime
}

// AutoOffTime returns the largest auto-off duration: the last trigger to
// deactivate deactivates the group.
func (mt MultiTrigger) AutoOffTime() float32 {
	maxTime := float32(0)
	for i := range mt {
		maxTime = max(maxTime, mt[i].AutoOffTime)
	}
	return maxTime
}

// ShiftBy translates all member triggers.
func (mt MultiTrigger) ShiftBy(v mgl32.Vec3) {
	for i := range mt {
		mt[i].ShiftBy(v)
	}
}
