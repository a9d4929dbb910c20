package tap

// exceedsMotionThreshold implements tp_tap_exceeds_motion_threshold:
// true iff the touch has moved more than MoveThresholdMM from its
// initial point, unless one of two hardware quirks suppresses the
// reading for this tick.
//
// nfingersDown/oldNfingersDown are the *host's* real finger counts (not
// tap.NFingersDown), matching the original's comment that the Synaptics
// quirk must use the raw count, not the tap-filtered one.
func (d *Dispatch) exceedsMotionThreshold(t *Touch, nfingersDown, oldNfingersDown int) bool {
	// Synaptics serial touchpads extrapolate coordinates and produce
	// false jumps for 3-finger taps when more fingers are down than the
	// hardware has slots for (libinput #101435).
	if d.quirks.SynapticsSerialTouchpad &&
		(nfingersDown > 2 || oldNfingersDown > 2) &&
		(nfingersDown > d.quirks.NumSlots || oldNfingersDown > d.quirks.NumSlots) {
		return false
	}

	// Semi-MT devices report only a bounding box; a finger count change
	// produces a position jump that's an artifact, not real motion.
	if d.quirks.SemiMT && nfingersDown != oldNfingersDown {
		return false
	}

	if d.geometry == nil {
		return false
	}
	return d.geometry.DistanceMM(t.Point, t.Initial) > MoveThresholdMM
}
