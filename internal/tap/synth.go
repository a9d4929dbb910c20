package tap

// HandleState is the per-tick entry point (tp_tap_handle_state).
// touches must be supplied in stable order by slot index;
// nfingersDown/oldNfingersDown are the host's real (unfiltered) finger
// counts this tick and last tick, used by the motion-quirk checks;
// nfingersDown is also the bound checkInvariants holds NFingersDown
// to. It returns true when the caller should suppress pointer-motion
// delivery this tick.
func (d *Dispatch) HandleState(
	touches []*Touch,
	time Time,
	nfingersDown, oldNfingersDown int,
	clickPressQueued, isClickpad bool,
) bool {
	if !d.effectivelyEnabled() {
		return false
	}

	if isClickpad && clickPressQueued {
		d.HandleEvent(nil, EventButton, time)
	}

	for _, t := range touches {
		if !t.Dirty || t.State == TouchNone {
			continue
		}

		if isClickpad && clickPressQueued {
			t.TapState = TouchTapDead
		}

		// A touch considered a thumb once is ignored for its whole life.
		if !t.active() {
			continue
		}

		// A palm tap still needs to be properly released, since we might
		// be anywhere in the state machine; otherwise ignore it entirely.
		if t.IsPalm {
			if t.State == TouchEnd {
				d.HandleEvent(t, EventPalmUp, time)
			}
			continue
		}

		if t.State == TouchHovering {
			continue
		}

		switch {
		case t.PalmState != PalmNone:
			d.HandleEvent(t, EventPalm, time)
			t.IsPalm = true
			t.TapState = TouchTapDead
			if t.State != TouchBegin {
				d.NFingersDown--
			}

		case t.State == TouchBegin:
			// The simple version: if a touch is a thumb on begin we
			// ignore it. All other thumb touches follow the normal tap
			// state for now.
			if d.thumbIgnoredForTap(t) {
				t.IsThumb = true
				continue
			}

			t.TapState = TouchTapTouch
			t.Initial = t.Point
			d.NFingersDown++
			d.HandleEvent(t, EventTouch, time)

			// If we think this is a palm, pretend there's a motion event
			// which will prevent tap clicks without requiring extra
			// states in the FSM.
			if d.palmTapIsPalm(t) {
				d.HandleEvent(t, EventMotion, time)
			}

		case t.State == TouchEnd:
			if t.WasDown {
				d.NFingersDown--
				d.HandleEvent(t, EventRelease, time)
			}
			t.TapState = TouchTapIdle

		case d.State != StateIdle && d.thumbIgnored(t):
			d.HandleEvent(t, EventThumb, time)

		case d.State != StateIdle && d.exceedsMotionThreshold(t, nfingersDown, oldNfingersDown):
			// Any touch exceeding the threshold turns all TOUCH touches
			// into DEAD.
			for _, tmp := range touches {
				if tmp.TapState == TouchTapTouch {
					tmp.TapState = TouchTapDead
				}
			}
			d.HandleEvent(t, EventMotion, time)
		}
	}

	filterMotion := false
	switch d.State {
	case StateTouch, StateTapped, StateDraggingOrDoubleTap, StateDraggingOrTap, StateTouch2, StateTouch3:
		filterMotion = true
	}

	d.checkInvariants(time, touches, nfingersDown)

	return filterMotion
}

func (d *Dispatch) thumbIgnored(t *Touch) bool {
	return d.classifier != nil && d.classifier.ThumbIgnored(t)
}

func (d *Dispatch) thumbIgnoredForTap(t *Touch) bool {
	return d.classifier != nil && d.classifier.ThumbIgnoredForTap(t)
}

func (d *Dispatch) palmTapIsPalm(t *Touch) bool {
	return d.classifier != nil && d.classifier.PalmTapIsPalm(t)
}

// checkInvariants enforces that the dispatch never believes more
// fingers are down than the host reports. A release build can't
// assert-and-abort, so on violation we log and coerce back to a
// consistent state via releaseAll.
func (d *Dispatch) checkInvariants(time Time, touches []*Touch, hostNFingersDown int) {
	violated := d.NFingersDown > hostNFingersDown || (hostNFingersDown == 0 && d.NFingersDown != 0)
	if !violated {
		return
	}
	d.log.Warn().
		Int("tap_nfingers_down", d.NFingersDown).
		Int("host_nfingers_down", hostNFingersDown).
		Msg("tap nfingers_down invariant violated, releasing all taps")
	d.releaseAll(time, touches)
}
