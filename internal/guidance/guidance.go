// Package guidance turns hand-position offsets into spoken clock directions.
package guidance

import (
	"fmt"
	"math"
)

// Distance is a coarse hint of how far the hand is from the target.
type Distance string

const (
	DistanceNear Distance = "near"
	DistanceFar  Distance = "far"
)

// Offset describes the target item's position relative to the user's hand,
// as seen in the latest tracking photo. Recomputed every guidance cycle,
// never persisted.
type Offset struct {
	AngleDegrees float64  `json:"angle_degrees"`
	Distance     Distance `json:"distance"`
}

// ClockPosition maps an angle in degrees to the nearest of the twelve clock
// positions. 0 and 360 both map to 12 o'clock, 90 maps to 3 o'clock. A tie
// exactly between two positions resolves to the clockwise neighbor.
func ClockPosition(angle float64) int {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	pos := int(math.Floor(angle/30+0.5)) % 12
	if pos == 0 {
		return 12
	}
	return pos
}

// Phrase renders an offset as a short spoken direction.
func Phrase(o Offset) string {
	pos := ClockPosition(o.AngleDegrees)
	if o.Distance == DistanceNear {
		return fmt.Sprintf("Move your hand toward %d o'clock. You're close.", pos)
	}
	return fmt.Sprintf("Move your hand toward %d o'clock, a bit further.", pos)
}

// Reached reports whether the offset puts the hand on the target: the
// distance hint is near and the angle is within tolerance of straight ahead.
func Reached(o Offset, toleranceDegrees float64) bool {
	if o.Distance != DistanceNear {
		return false
	}
	angle := math.Mod(o.AngleDegrees, 360)
	if angle < 0 {
		angle += 360
	}
	deviation := math.Min(angle, 360-angle)
	return deviation <= toleranceDegrees
}
