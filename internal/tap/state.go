// Package tap implements the tap-and-drag state machine of a multi-touch
// touchpad: a global FSM over 15 states and 8 event kinds, coupled with a
// per-touch sub-state, that converts touch lifecycle ticks into synthetic
// pointer-button press/release events (taps, multi-finger taps,
// double-taps, drags, drag-lock).
//
// The package knows nothing about evdev, uinput, or wall-clock time beyond
// the opaque microsecond Time it's handed; those concerns live in
// internal/device, internal/uinputsink and internal/timer.
package tap

// State is one of the 15 states of the global tap FSM.
type State int

const (
	StateIdle State = iota
	StateTouch
	StateHold
	StateTapped
	StateTouch2
	StateTouch2Hold
	StateTouch2Release
	StateTouch3
	StateTouch3Hold
	StateDragging
	StateDraggingWait
	StateDraggingOrDoubleTap
	StateDraggingOrTap
	StateDragging2
	StateDead
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateTouch:
		return "TOUCH"
	case StateHold:
		return "HOLD"
	case StateTapped:
		return "TAPPED"
	case StateTouch2:
		return "TOUCH_2"
	case StateTouch2Hold:
		return "TOUCH_2_HOLD"
	case StateTouch2Release:
		return "TOUCH_2_RELEASE"
	case StateTouch3:
		return "TOUCH_3"
	case StateTouch3Hold:
		return "TOUCH_3_HOLD"
	case StateDragging:
		return "DRAGGING"
	case StateDraggingWait:
		return "DRAGGING_WAIT"
	case StateDraggingOrDoubleTap:
		return "DRAGGING_OR_DOUBLETAP"
	case StateDraggingOrTap:
		return "DRAGGING_OR_TAP"
	case StateDragging2:
		return "DRAGGING_2"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// Event is one of the 8 event kinds fed into the global FSM.
type Event int

const (
	EventTouch Event = iota
	EventMotion
	EventRelease
	EventTimeout
	EventButton
	EventThumb
	EventPalm
	EventPalmUp
)

func (e Event) String() string {
	switch e {
	case EventTouch:
		return "TOUCH"
	case EventMotion:
		return "MOTION"
	case EventRelease:
		return "RELEASE"
	case EventTimeout:
		return "TIMEOUT"
	case EventButton:
		return "BUTTON"
	case EventThumb:
		return "THUMB"
	case EventPalm:
		return "PALM"
	case EventPalmUp:
		return "PALM_UP"
	default:
		return "UNKNOWN"
	}
}

// ButtonMap selects which synthetic button a finger count maps to.
type ButtonMap int

const (
	MapLRM ButtonMap = iota // 1->left, 2->right, 3->middle
	MapLMR                  // 1->left, 2->middle, 3->right
)

// Time is a monotonic microsecond timestamp, matching the original
// uint64_t time used throughout the upstream implementation.
type Time uint64

// Button identifies one of the three synthetic pointer buttons this
// subsystem can emit.
type Button uint16

const (
	ButtonLeft Button = iota + 1
	ButtonRight
	ButtonMiddle
)

var lrmMap = [3]Button{ButtonLeft, ButtonRight, ButtonMiddle}
var lmrMap = [3]Button{ButtonLeft, ButtonMiddle, ButtonRight}

// buttonForFingers resolves the button for an n-finger tap (n in 1..3)
// under the given map. Callers must not pass n outside 1..3.
func buttonForFingers(m ButtonMap, n int) Button {
	if m == MapLMR {
		return lmrMap[n-1]
	}
	return lrmMap[n-1]
}
