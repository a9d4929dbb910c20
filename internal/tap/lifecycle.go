package tap

// setEnabledUpdate implements tp_tap_enabled_update: flips
// enabled/suspended and, only on an edge in the *effective* enabled
// state, resets to IDLE (treating all in-flight touches as palms) or
// releases everything that was held.
func (d *Dispatch) setEnabledUpdate(suspended, enabled bool, time Time, touches []*Touch) {
	wasEnabled := d.effectivelyEnabled()

	d.Suspended = suspended
	d.Enabled = enabled

	if d.effectivelyEnabled() == wasEnabled {
		return
	}

	if d.effectivelyEnabled() {
		// On resume, all in-flight touches are considered palms so they
		// cannot produce taps.
		for _, t := range touches {
			if t.State == TouchNone {
				continue
			}
			t.IsPalm = true
			t.TapState = TouchTapDead
		}
		d.State = StateIdle
		d.NFingersDown = 0
	} else {
		d.releaseAll(time, touches)
	}
}

// Suspend implements tp_tap_suspend.
func (d *Dispatch) Suspend(time Time, touches []*Touch) {
	d.setEnabledUpdate(true, d.Enabled, time, touches)
}

// Resume implements tp_tap_resume.
func (d *Dispatch) Resume(time Time, touches []*Touch) {
	d.setEnabledUpdate(false, d.Enabled, time, touches)
}

// ReleaseAll implements tp_release_all_taps: the emergency release used
// on device removal, disable, and as the else-branch of
// setEnabledUpdate.
func (d *Dispatch) ReleaseAll(time Time, touches []*Touch) {
	d.releaseAll(time, touches)
}

func (d *Dispatch) releaseAll(time Time, touches []*Touch) {
	for n := 1; n <= 3; n++ {
		if d.ButtonsPressed&(1<<uint(n)) != 0 {
			d.notify(n, time, false)
		}
	}

	// To neutralize all current touches, we make them all palms.
	for _, t := range touches {
		if t.State == TouchNone {
			continue
		}
		if t.IsPalm {
			continue
		}
		t.IsPalm = true
		t.TapState = TouchTapDead
	}

	d.State = StateIdle
	d.NFingersDown = 0
	if d.timer != nil {
		d.timer.Cancel()
	}
}
