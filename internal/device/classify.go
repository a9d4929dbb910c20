package device

import "touchpad/internal/tap"

// Classifier implements the palm/thumb heuristics internal/tap consults
// through its Classifier interface: zone/pressure thresholds classify
// individual touches by position and pressure.
type Classifier struct {
	// PalmZoneTopY is the device Y coordinate above which (i.e. numerically
	// below, since Y grows downward) a touch is close enough to the
	// palm rest to be considered for palm rejection.
	PalmZoneTopY int32
	// PalmPressureThreshold is the pressure reading above which a touch
	// inside the palm zone is classified as a palm.
	PalmPressureThreshold int32
	// ThumbZoneTopY is the device Y coordinate below which a touch is
	// close enough to the bottom edge to be considered a thumb resting
	// on the pad rather than a deliberate tap.
	ThumbZoneTopY int32
	// ThumbPressureThreshold is the pressure above which a bottom-edge
	// touch is treated as a resting thumb.
	ThumbPressureThreshold int32

	// Pressure is refreshed by the caller (internal/device.Source) each
	// time a touch's ABS_MT_PRESSURE is reported; it is read here rather
	// than carried on tap.Touch because pressure isn't part of the tap
	// package's vocabulary.
	Pressure map[int]int32
}

// NewClassifier builds a Classifier with reasonable default thresholds.
func NewClassifier() *Classifier {
	return &Classifier{
		PalmZoneTopY:           500,
		PalmPressureThreshold:  45,
		ThumbZoneTopY:          800,
		ThumbPressureThreshold: 30,
		Pressure:               make(map[int]int32),
	}
}

func (c *Classifier) pressure(t *tap.Touch) int32 {
	if c.Pressure == nil {
		return 0
	}
	return c.Pressure[t.Index]
}

// IsPalmNow is consulted by internal/device.Source on TouchBegin,
// before the touch ever reaches internal/tap.
func (c *Classifier) IsPalmNow(t *tap.Touch) bool {
	return t.Point.Y < float64(c.PalmZoneTopY) && c.pressure(t) > c.PalmPressureThreshold
}

// ThumbIgnored implements tp_thumb_ignored: a touch resting near the
// bottom edge with sustained pressure, seen anywhere in its lifetime,
// is treated as a thumb and stops participating in the FSM.
func (c *Classifier) ThumbIgnored(t *tap.Touch) bool {
	return t.Point.Y > float64(c.ThumbZoneTopY) && c.pressure(t) > c.ThumbPressureThreshold
}

// ThumbIgnoredForTap implements tp_thumb_ignored_for_tap: the same
// check applied at TouchBegin, before the touch has accumulated any
// history, so a thumb never even opens a tap gesture.
func (c *Classifier) ThumbIgnoredForTap(t *tap.Touch) bool {
	return c.ThumbIgnored(t)
}

// PalmTapIsPalm implements tp_palm_tap_is_palm: a touch that began
// inside the palm zone but wasn't pressed hard enough to be classified
// outright is still suspicious enough that a resulting tap should be
// suppressed rather than click.
func (c *Classifier) PalmTapIsPalm(t *tap.Touch) bool {
	return t.Initial.Y < float64(c.PalmZoneTopY)
}
