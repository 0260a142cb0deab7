package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/scene"
)

// BindPoint optionally ties a light to a static collision volume: the light
// stays valid only while its binding position is contained in that volume.
// Validity is cached because re-checking containment is expensive; once
// invalid, a bind point stays invalid.
type BindPoint struct {
	bound    bool
	valid    bool
	pos      mgl32.Vec3
	volumeID int32 // resolved lazily; -1 until found
}

// NewBindPoint returns a bind point at pos. The containing volume is
// resolved on the first validity check.
func NewBindPoint(pos mgl32.Vec3) BindPoint {
	return BindPoint{bound: true, valid: true, pos: pos, volumeID: -1}
}

// Bound reports whether a binding is configured at all.
func (bp *BindPoint) Bound() bool { return bp.bound }

// Valid returns the cached validity flag without re-checking containment.
func (bp *BindPoint) Valid() bool { return !bp.bound || bp.valid }

// Pos returns the binding position.
func (bp *BindPoint) Pos() mgl32.Vec3 { return bp.pos }

// Invalidate forces the bind point invalid.
func (bp *BindPoint) Invalidate() { bp.valid = false }

// ShiftBy translates the binding position and forces re-resolution.
func (bp *BindPoint) ShiftBy(v mgl32.Vec3) {
	bp.pos = bp.pos.Add(v)
	bp.volumeID = -1
}

// IsValid re-checks the binding against the occluder service and caches the
// result. An unbound point is always valid. Containment is re-verified even
// after the volume is resolved, since volume ids may be reused.
func (bp *BindPoint) IsValid(occ scene.Occluder) bool {
	if !bp.bound {
		return true
	}
	if !bp.valid {
		return false
	}
	if bp.volumeID < 0 { // containing volume not yet found
		id, ok := occ.Contains(bp.pos)
		if !ok {
			bp.valid = false
			return false
		}
		bp.volumeID = id
		return true
	}
	if !occ.TrulyStatic(bp.volumeID) || !occ.VolumeContains(bp.volumeID, bp.pos) {
		bp.valid = false
		return false
	}
	return true
}
