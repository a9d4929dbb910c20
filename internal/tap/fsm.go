package tap

// HandleEvent feeds one event into the global FSM. t may be nil for
// the BUTTON event synthesised from a clickpad press, which targets no
// specific touch.
func (d *Dispatch) HandleEvent(t *Touch, event Event, time Time) {
	current := d.State

	r, ok := d.lookup(event)
	if !ok {
		if isBugEvent(d.State, event) {
			d.log.Warn().
				Str("state", d.State.String()).
				Str("event", event.String()).
				Msg("invalid tap event in state")
		}
		return
	}

	if r.guard != nil && !r.guard(d, t) {
		return
	}

	if !r.dynamic {
		d.State = r.next
	}
	for _, a := range r.actions {
		a(d, t, time)
	}

	// Belt-and-braces: any transition landing on IDLE or DEAD cancels the
	// timer, even if the rule above didn't do it explicitly.
	if d.State == StateIdle || d.State == StateDead {
		if d.timer != nil {
			d.timer.Cancel()
		}
	}

	if current != d.State {
		d.log.Debug().
			Int("touch", touchIndex(t)).
			Str("from", current.String()).
			Str("event", event.String()).
			Str("to", d.State.String()).
			Msg("tap state transition")
	}
}

func (d *Dispatch) lookup(event Event) (rule, bool) {
	byEvent, ok := tapTable[d.State]
	if !ok {
		return rule{}, false
	}
	r, ok := byEvent[event]
	return r, ok
}

func touchIndex(t *Touch) int {
	if t == nil {
		return -1
	}
	return t.Index
}

// HandleTimeout implements tp_tap_handle_timeout: injects TIMEOUT, then
// forces every touch that hasn't already gone idle to DEAD, since a
// timeout always ends the window in which a new press could still be
// recognised as part of the same gesture.
func (d *Dispatch) HandleTimeout(time Time, touches []*Touch) {
	d.HandleEvent(nil, EventTimeout, time)

	for _, t := range touches {
		if t.State == TouchNone || t.TapState == TouchTapIdle {
			continue
		}
		t.TapState = TouchTapDead
	}
}
