package tap

// Timeout periods and motion threshold. These are process-wide
// tunables rather than per-Dispatch fields, set once at startup via
// Configure and read by every Dispatch table action thereafter.
var (
	TapTimeoutPeriod  Time    = 180 * 1000 // 180ms in microseconds
	DragTimeoutPeriod Time    = 300 * 1000 // 300ms in microseconds
	MoveThresholdMM   float64 = 1.3
)

// Configure overrides the process-wide timeout/motion tunables. Call it
// once at startup, before any Dispatch begins handling events.
func Configure(tapTimeout, dragTimeout Time, moveThresholdMM float64) {
	TapTimeoutPeriod = tapTimeout
	DragTimeoutPeriod = dragTimeout
	MoveThresholdMM = moveThresholdMM
}

// action is one step of a transition's effect list. Actions run in
// order and may read/write fields another action in the same list just
// wrote (e.g. a release notification reads SavedRelTime before a later
// action overwrites it) — this is load-bearing, see
// dragging-or-doubletap's RELEASE handler below.
type action func(d *Dispatch, t *Touch, time Time)

// rule is one (state, event) entry of the transition table, a nested
// map from state and event to (NextState, ActionList); pairs with no
// entry are absent from the map. guard, when non-nil, must return true for
// the rule to apply at all; a guard returning false is equivalent to the
// (state, event) pair being unlisted (silent no-op, never a bug).
// dynamic rules set d.State themselves inside an action instead of via
// next, for the handful of transitions whose destination state depends
// on a config flag rather than just the table lookup.
type rule struct {
	next    State
	dynamic bool
	guard   func(d *Dispatch, t *Touch) bool
	actions []action
}

// --- reusable actions ---

func saveSavedPressTime(d *Dispatch, t *Touch, time Time) { d.SavedPressTime = time }
func saveSavedRelTime(d *Dispatch, t *Touch, time Time)   { d.SavedRelTime = time }

func armTapTimer(d *Dispatch, t *Touch, time Time) {
	if d.timer != nil {
		d.timer.Set(time + TapTimeoutPeriod)
	}
}

func armDragTimer(d *Dispatch, t *Touch, time Time) {
	if d.timer != nil {
		d.timer.Set(time + DragTimeoutPeriod)
	}
}

func clearTimer(d *Dispatch, t *Touch, time Time) {
	if d.timer != nil {
		d.timer.Cancel()
	}
}

func markTouchDead(d *Dispatch, t *Touch, time Time) {
	if t != nil {
		t.TapState = TouchTapDead
	}
}

func markThumbAndDead(d *Dispatch, t *Touch, time Time) {
	if t != nil {
		t.IsThumb = true
		t.TapState = TouchTapDead
	}
}

func decNFingers(d *Dispatch, t *Touch, time Time) { d.NFingersDown-- }

func emitPressAtSavedPress(n int) action {
	return func(d *Dispatch, t *Touch, time Time) { d.notify(n, d.SavedPressTime, true) }
}

func emitReleaseAtSavedRel(n int) action {
	return func(d *Dispatch, t *Touch, time Time) { d.notify(n, d.SavedRelTime, false) }
}

func emitReleaseAtTime(n int) action {
	return func(d *Dispatch, t *Touch, time Time) { d.notify(n, time, false) }
}

func emitPressAtTime(n int) action {
	return func(d *Dispatch, t *Touch, time Time) { d.notify(n, time, true) }
}

// releaseThirdFingerIfStillDown implements TOUCH_3+RELEASE's guard: the
// 3rd-finger tap is only really a tap if the touch that fired the event
// never itself went through MOTION/THUMB/PALM (i.e. its own per-touch
// state is still TOUCH, not DEAD).
func releaseThirdFingerIfStillDown(d *Dispatch, t *Touch, time Time) {
	if t != nil && t.TapState == TouchTapTouch {
		d.notify(3, d.SavedPressTime, true)
		d.notify(3, time, false)
	}
}

// nfingersDownZero guards DEAD's RELEASE/PALM/PALM_UP transitions back
// to IDLE: DEAD only drains, it never emits, and it only leaves once
// every finger is accounted for.
func nfingersDownZero(d *Dispatch, t *Touch) bool { return d.NFingersDown == 0 }

// --- the table ---

var tapTable = buildTable()

func buildTable() map[State]map[Event]rule {
	t := map[State]map[Event]rule{}

	t[StateIdle] = map[Event]rule{
		EventTouch: {next: StateTouch, actions: []action{saveSavedPressTime, armTapTimer}},
		EventButton: {next: StateDead},
		EventPalm:   {next: StateIdle},
	}

	t[StateTouch] = map[Event]rule{
		EventTouch: {next: StateTouch2, actions: []action{saveSavedPressTime, armTapTimer}},
		EventRelease: {
			dynamic: true,
			actions: []action{func(d *Dispatch, t *Touch, time Time) {
				d.notify(1, d.SavedPressTime, true)
				if d.DragEnabled {
					d.State = StateTapped
					d.SavedRelTime = time
					armTapTimer(d, t, time)
				} else {
					d.notify(1, time, false)
					d.State = StateIdle
				}
			}},
		},
		EventMotion:  {next: StateDead, actions: []action{markTouchDead}},
		EventTimeout: {next: StateHold, actions: []action{clearTimer}},
		EventButton:  {next: StateDead},
		EventThumb:   {next: StateIdle, actions: []action{markThumbAndDead, decNFingers, clearTimer}},
		EventPalm:    {next: StateIdle, actions: []action{clearTimer}},
	}

	t[StateHold] = map[Event]rule{
		EventTouch:   {next: StateTouch2, actions: []action{saveSavedPressTime, armTapTimer}},
		EventRelease: {next: StateIdle},
		EventMotion:  {next: StateDead, actions: []action{markTouchDead}},
		EventButton:  {next: StateDead},
		EventThumb:   {next: StateIdle, actions: []action{markThumbAndDead, decNFingers}},
		EventPalm:    {next: StateIdle},
	}

	t[StateTapped] = map[Event]rule{
		EventTouch:   {next: StateDraggingOrDoubleTap, actions: []action{saveSavedPressTime, armTapTimer}},
		EventTimeout: {next: StateIdle, actions: []action{emitReleaseAtSavedRel(1)}},
		EventButton:  {next: StateDead, actions: []action{emitReleaseAtSavedRel(1)}},
	}

	t[StateTouch2] = map[Event]rule{
		EventTouch:   {next: StateTouch3, actions: []action{saveSavedPressTime, armTapTimer}},
		EventRelease: {next: StateTouch2Release, actions: []action{saveSavedRelTime, armTapTimer}},
		EventMotion:  {next: StateDead, actions: []action{markTouchDead}},
		EventTimeout: {next: StateTouch2Hold},
		EventButton:  {next: StateDead},
		// overwrite timer with palm's/current time.
		EventPalm: {next: StateTouch, actions: []action{armTapTimer}},
	}

	t[StateTouch2Hold] = map[Event]rule{
		EventTouch:   {next: StateTouch3, actions: []action{saveSavedPressTime, armTapTimer}},
		EventRelease: {next: StateHold},
		EventMotion:  {next: StateDead, actions: []action{markTouchDead}},
		EventButton:  {next: StateDead},
		EventPalm:    {next: StateHold},
	}

	t[StateTouch2Release] = map[Event]rule{
		EventTouch:   {next: StateTouch2Hold, actions: []action{markTouchDead, clearTimer}},
		EventRelease: {next: StateIdle, actions: []action{emitPressAtSavedPress(2), emitReleaseAtSavedRel(2)}},
		EventMotion:  {next: StateDead, actions: []action{markTouchDead}},
		EventTimeout: {next: StateHold},
		EventButton:  {next: StateDead},
		EventPalm: {
			dynamic: true,
			actions: []action{func(d *Dispatch, t *Touch, time Time) {
				// There's only one saved press time and it's overwritten
				// by the last touch down. So in the case of finger down,
				// palm down, finger up, palm detected, we use the palm
				// touch's press time here instead of the finger's press
				// time. Let's wait and see if that's an issue.
				d.notify(1, d.SavedPressTime, true)
				if d.DragEnabled {
					d.State = StateTapped
					d.SavedRelTime = time
					armTapTimer(d, t, time)
				} else {
					d.notify(1, time, false)
					d.State = StateIdle
				}
			}},
		},
	}

	t[StateTouch3] = map[Event]rule{
		EventTouch:   {next: StateDead, actions: []action{clearTimer}},
		EventMotion:  {next: StateDead, actions: []action{markTouchDead}},
		EventTimeout: {next: StateTouch3Hold, actions: []action{clearTimer}},
		EventRelease: {next: StateTouch2Hold, actions: []action{releaseThirdFingerIfStillDown}},
		EventButton:  {next: StateDead},
		EventPalm:    {next: StateTouch2},
	}

	t[StateTouch3Hold] = map[Event]rule{
		EventTouch:   {next: StateDead, actions: []action{armTapTimer}},
		EventRelease: {next: StateTouch2Hold},
		EventMotion:  {next: StateDead, actions: []action{markTouchDead}},
		EventButton:  {next: StateDead},
		EventPalm:    {next: StateTouch2Hold},
	}

	t[StateDraggingOrDoubleTap] = map[Event]rule{
		EventTouch: {next: StateDragging2},
		EventRelease: {next: StateTapped, actions: []action{
			emitReleaseAtSavedRel(1),
			emitPressAtSavedPress(1),
			saveSavedRelTime,
			armTapTimer,
		}},
		EventMotion:  {next: StateDragging},
		EventTimeout: {next: StateDragging},
		EventButton:  {next: StateDead, actions: []action{emitReleaseAtSavedRel(1)}},
		EventPalm:    {next: StateTapped},
	}

	t[StateDragging] = map[Event]rule{
		EventTouch: {next: StateDragging2},
		EventRelease: {
			dynamic: true,
			actions: []action{func(d *Dispatch, t *Touch, time Time) {
				if d.DragLockEnabled {
					d.State = StateDraggingWait
					armDragTimer(d, t, time)
				} else {
					d.notify(1, time, false)
					d.State = StateIdle
				}
			}},
		},
		EventButton: {next: StateDead, actions: []action{emitReleaseAtTime(1)}},
		EventPalm:   {next: StateIdle, actions: []action{emitReleaseAtSavedRel(1)}},
	}

	t[StateDraggingWait] = map[Event]rule{
		EventTouch:   {next: StateDraggingOrTap, actions: []action{armTapTimer}},
		EventTimeout: {next: StateIdle, actions: []action{emitReleaseAtTime(1)}},
		EventButton:  {next: StateDead, actions: []action{emitReleaseAtTime(1)}},
	}

	t[StateDraggingOrTap] = map[Event]rule{
		EventTouch:   {next: StateDragging2, actions: []action{clearTimer}},
		EventRelease: {next: StateIdle, actions: []action{emitReleaseAtTime(1)}},
		EventMotion:  {next: StateDragging},
		EventTimeout: {next: StateDragging},
		EventButton:  {next: StateDead, actions: []action{emitReleaseAtTime(1)}},
		EventPalm:    {next: StateIdle, actions: []action{emitReleaseAtSavedRel(1)}},
	}

	t[StateDragging2] = map[Event]rule{
		EventRelease: {next: StateDragging},
		EventTouch:   {next: StateDead, actions: []action{emitReleaseAtTime(1)}},
		EventButton:  {next: StateDead, actions: []action{emitReleaseAtTime(1)}},
		EventPalm:    {next: StateDraggingOrDoubleTap},
	}

	t[StateDead] = map[Event]rule{
		EventRelease: {next: StateIdle, guard: nfingersDownZero},
		EventPalm:    {next: StateIdle, guard: nfingersDownZero},
		EventPalmUp:  {next: StateIdle, guard: nfingersDownZero},
	}

	return t
}

// bugEvents lists the (state, event) pairs the original source flags
// with log_tap_bug: events that should never occur in that state given
// the synthesiser's own guarantees. Logged, non-fatal.
var bugEvents = map[State]map[Event]bool{
	StateIdle:   {EventMotion: true, EventThumb: true},
	StateTapped: {EventMotion: true, EventRelease: true, EventThumb: true},
}

func isBugEvent(s State, e Event) bool {
	return bugEvents[s][e]
}
