package tap

import "github.com/rs/zerolog"

// ButtonSink is the emission sink evdev_pointer_notify_button calls
// into: the one place synthetic button events leave this package.
type ButtonSink interface {
	Notify(button Button, time Time, pressed bool)
}

// Timer is the single scheduled timeout this package treats as an
// external collaborator (libinput_timer_set/cancel). At most one
// deadline is ever pending; Set overwrites any previous deadline.
type Timer interface {
	Set(deadline Time)
	Cancel()
}

// Classifier supplies the palm/thumb predicates named after their
// upstream counterparts: tp_thumb_ignored, tp_thumb_ignored_for_tap,
// tp_palm_tap_is_palm.
type Classifier interface {
	ThumbIgnored(t *Touch) bool
	ThumbIgnoredForTap(t *Touch) bool
	PalmTapIsPalm(t *Touch) bool
}

// Quirks carries the hardware-quirk flags needed to suppress spurious
// motion, plus the device's number of hardware slots. The device/mm
// conversion is the separate Geometry collaborator.
type Quirks struct {
	SynapticsSerialTouchpad bool
	SemiMT                  bool
	NumSlots                int
}

// Geometry converts a device-coordinate delta into physical
// millimetres (tp_phys_delta, length_in_mm — out of scope here,
// consumed via this interface).
type Geometry interface {
	DistanceMM(current, initial Point) float64
}

// Dispatch is the tap dispatch: one per touchpad, holding the global
// FSM state and its timer. Zero value is not usable; use Init.
type Dispatch struct {
	State          State
	NFingersDown   int
	SavedPressTime Time
	SavedRelTime   Time
	ButtonsPressed uint8 // bitmask over bits 1,2,3
	Map            ButtonMap
	WantMap        ButtonMap

	Enabled         bool
	Suspended       bool
	DragEnabled     bool
	DragLockEnabled bool

	timer      Timer
	sink       ButtonSink
	classifier Classifier
	geometry   Geometry
	quirks     Quirks
	log        zerolog.Logger
}

// Config bundles the collaborators a Dispatch needs at construction time.
type Config struct {
	Timer      Timer
	Sink       ButtonSink
	Classifier Classifier
	Geometry   Geometry
	Quirks     Quirks
	Logger     zerolog.Logger

	// HasPhysicalLeftButton controls the enabled-by-default rule:
	// tapping defaults to enabled on touchpads that have no physical
	// left button, disabled otherwise.
	HasPhysicalLeftButton bool
}

// Init constructs a Dispatch in its default state. A zero
// Config.Logger is safe to use (zerolog's zero-value Logger discards
// everything) and behaves like zerolog.Nop().
func Init(cfg Config) *Dispatch {
	d := &Dispatch{
		State:           StateIdle,
		NFingersDown:    0,
		Map:             MapLRM,
		DragEnabled:     true,
		DragLockEnabled: false,
		Enabled:         !cfg.HasPhysicalLeftButton,
		Suspended:       false,
		timer:           cfg.Timer,
		sink:            cfg.Sink,
		classifier:      cfg.Classifier,
		geometry:        cfg.Geometry,
		quirks:          cfg.Quirks,
		log:             cfg.Logger,
	}
	d.WantMap = d.Map
	return d
}

// Remove tears down the dispatch.
func (d *Dispatch) Remove() {
	if d.timer != nil {
		d.timer.Cancel()
	}
}

// effectivelyEnabled mirrors tp_tap_enabled: enabled && !suspended.
func (d *Dispatch) effectivelyEnabled() bool {
	return d.Enabled && !d.Suspended
}

// Dragging reports whether the dispatch is in one of the dragging
// states (tp_tap_dragging).
func (d *Dispatch) Dragging() bool {
	switch d.State {
	case StateDragging, StateDragging2, StateDraggingWait, StateDraggingOrTap:
		return true
	default:
		return false
	}
}

// PostProcess applies a pending map change, but only from IDLE.
func (d *Dispatch) PostProcess() {
	if d.State != StateIdle {
		return
	}
	d.Map = d.WantMap
}

// --- config surface ---

func (d *Dispatch) SetEnabled(enabled bool, time Time, touches []*Touch) {
	d.setEnabledUpdate(d.Suspended, enabled, time, touches)
}

func (d *Dispatch) GetEnabled() bool { return d.Enabled }

func (d *Dispatch) SetMap(m ButtonMap) {
	d.WantMap = m
	d.PostProcess()
}

func (d *Dispatch) GetMap() ButtonMap { return d.WantMap }

func (d *Dispatch) SetDragEnabled(enabled bool) { d.DragEnabled = enabled }
func (d *Dispatch) GetDragEnabled() bool         { return d.DragEnabled }

func (d *Dispatch) SetDragLockEnabled(enabled bool) { d.DragLockEnabled = enabled }
func (d *Dispatch) GetDragLockEnabled() bool         { return d.DragLockEnabled }

// Count implements tp_tap_config_count: a static capability getter,
// queried once at startup against the device's number of finger slots,
// reporting how many fingers of simultaneous tap this dispatch can ever
// recognise (min(numFingerSlots, 3)). It is not part of the per-tick
// HandleState path — HandleState always receives the host's real,
// unfiltered finger counts.
func Count(numFingerSlots int) int {
	if numFingerSlots > 3 {
		return 3
	}
	return numFingerSlots
}
