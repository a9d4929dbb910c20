package tap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingleFingerTap(t *testing.T) {
	sink := &fakeSink{}
	d := newTestDispatch(sink, &fakeTimer{}, &fakeClassifier{}, &fakeGeometry{})

	touch := &Touch{Index: 0}

	touch.State, touch.Dirty, touch.Point = TouchBegin, true, Point{X: 100, Y: 100}
	touch.WasDown = true
	d.HandleState([]*Touch{touch}, 0, 1, 0, false, false)
	require.Equal(t, StateTouch, d.State)
	require.Empty(t, sink.calls, "press must not fire until release pairs it with a time")

	touch.State, touch.Dirty = TouchEnd, true
	d.HandleState([]*Touch{touch}, 50_000, 0, 1, false, false)
	require.Equal(t, StateTapped, d.State)
	require.Len(t, sink.calls, 1)
	require.Equal(t, sinkCall{ButtonLeft, 0, true}, sink.calls[0])

	// The timer fires before any second touch arrives: the deferred
	// release closes the tap.
	d.HandleTimeout(230_000, nil)
	require.Equal(t, StateIdle, d.State)
	require.Len(t, sink.calls, 2)
	require.Equal(t, sinkCall{ButtonLeft, 50_000, false}, sink.calls[1])
}

func TestTwoFingerTap(t *testing.T) {
	sink := &fakeSink{}
	d := newTestDispatch(sink, &fakeTimer{}, &fakeClassifier{}, &fakeGeometry{})

	t0 := &Touch{Index: 0}
	t1 := &Touch{Index: 1}

	t0.State, t0.Dirty, t0.Point = TouchBegin, true, Point{X: 100, Y: 100}
	t0.WasDown = true
	d.HandleState([]*Touch{t0}, 0, 1, 0, false, false)

	t1.State, t1.Dirty, t1.Point = TouchBegin, true, Point{X: 200, Y: 100}
	t1.WasDown = true
	d.HandleState([]*Touch{t1}, 5_000, 2, 1, false, false)
	require.Equal(t, StateTouch2, d.State)

	t0.State, t0.Dirty = TouchEnd, true
	d.HandleState([]*Touch{t0}, 30_000, 1, 2, false, false)
	require.Equal(t, StateTouch2Release, d.State)
	require.Empty(t, sink.calls)

	t1.State, t1.Dirty = TouchEnd, true
	d.HandleState([]*Touch{t1}, 35_000, 0, 1, false, false)
	require.Equal(t, StateIdle, d.State)

	require.Len(t, sink.calls, 2)
	require.Equal(t, sinkCall{ButtonRight, 5_000, true}, sink.calls[0])
	require.Equal(t, sinkCall{ButtonRight, 30_000, false}, sink.calls[1])
}

func TestThreeFingerTap(t *testing.T) {
	sink := &fakeSink{}
	d := newTestDispatch(sink, &fakeTimer{}, &fakeClassifier{}, &fakeGeometry{})

	t0 := &Touch{Index: 0}
	t1 := &Touch{Index: 1}
	t2 := &Touch{Index: 2}

	t0.State, t0.Dirty, t0.Point = TouchBegin, true, Point{X: 100, Y: 100}
	t0.WasDown = true
	d.HandleState([]*Touch{t0}, 0, 1, 0, false, false)

	t1.State, t1.Dirty, t1.Point = TouchBegin, true, Point{X: 150, Y: 100}
	t1.WasDown = true
	d.HandleState([]*Touch{t1}, 5_000, 2, 1, false, false)

	t2.State, t2.Dirty, t2.Point = TouchBegin, true, Point{X: 200, Y: 100}
	t2.WasDown = true
	d.HandleState([]*Touch{t2}, 10_000, 3, 2, false, false)
	require.Equal(t, StateTouch3, d.State)

	t0.State, t0.Dirty = TouchEnd, true
	d.HandleState([]*Touch{t0}, 20_000, 2, 3, false, false)
	require.Equal(t, StateTouch2Hold, d.State)
	require.Len(t, sink.calls, 2)
	require.Equal(t, sinkCall{ButtonMiddle, 10_000, true}, sink.calls[0])
	require.Equal(t, sinkCall{ButtonMiddle, 20_000, false}, sink.calls[1])

	t1.State, t1.Dirty = TouchEnd, true
	d.HandleState([]*Touch{t1}, 25_000, 1, 2, false, false)
	require.Equal(t, StateHold, d.State)

	t2.State, t2.Dirty = TouchEnd, true
	d.HandleState([]*Touch{t2}, 30_000, 0, 1, false, false)
	require.Equal(t, StateIdle, d.State)

	// No extra clicks from the two remaining, non-tap releases.
	require.Len(t, sink.calls, 2)
}

func TestTapAndDrag(t *testing.T) {
	sink := &fakeSink{}
	geo := &fakeGeometry{}
	d := newTestDispatch(sink, &fakeTimer{}, &fakeClassifier{}, geo)

	t0 := &Touch{Index: 0}
	t0.State, t0.Dirty, t0.Point = TouchBegin, true, Point{X: 100, Y: 100}
	t0.WasDown = true
	d.HandleState([]*Touch{t0}, 0, 1, 0, false, false)

	t0.State, t0.Dirty = TouchEnd, true
	d.HandleState([]*Touch{t0}, 30_000, 0, 1, false, false)
	require.Equal(t, StateTapped, d.State)
	require.Len(t, sink.calls, 1)

	// Second touch lands before the tap timeout: drag begins instead of
	// a double-tap/second click.
	t1 := &Touch{Index: 1}
	t1.State, t1.Dirty, t1.Point, t1.TapState = TouchBegin, true, Point{X: 100, Y: 100}, TouchTapIdle
	t1.WasDown = true
	d.HandleState([]*Touch{t1}, 50_000, 1, 0, false, false)
	require.Equal(t, StateDraggingOrDoubleTap, d.State)

	geo.distanceMM = 5.0 // exceeds MoveThresholdMM
	t1.State, t1.Dirty, t1.Point = TouchUpdate, true, Point{X: 120, Y: 100}
	d.HandleState([]*Touch{t1}, 60_000, 1, 1, false, false)
	require.Equal(t, StateDragging, d.State)

	t1.State, t1.Dirty = TouchEnd, true
	d.HandleState([]*Touch{t1}, 80_000, 0, 1, false, false)
	require.Equal(t, StateIdle, d.State)

	// Exactly one press/release pair: the drag segment never produced an
	// intermediate click when the second touch arrived.
	require.Len(t, sink.calls, 2)
	require.Equal(t, sinkCall{ButtonLeft, 0, true}, sink.calls[0])
	require.Equal(t, sinkCall{ButtonLeft, 80_000, false}, sink.calls[1])
}

func TestMotionCancelsTap(t *testing.T) {
	sink := &fakeSink{}
	geo := &fakeGeometry{}
	d := newTestDispatch(sink, &fakeTimer{}, &fakeClassifier{}, geo)

	touch := &Touch{Index: 0}
	touch.State, touch.Dirty, touch.Point = TouchBegin, true, Point{X: 100, Y: 100}
	touch.WasDown = true
	d.HandleState([]*Touch{touch}, 0, 1, 0, false, false)
	require.Equal(t, StateTouch, d.State)

	geo.distanceMM = 5.0
	touch.State, touch.Dirty, touch.Point = TouchUpdate, true, Point{X: 300, Y: 100}
	d.HandleState([]*Touch{touch}, 20_000, 1, 1, false, false)
	require.Equal(t, StateDead, d.State)
	require.Equal(t, TouchTapDead, touch.TapState)

	touch.State, touch.Dirty = TouchEnd, true
	d.HandleState([]*Touch{touch}, 40_000, 0, 1, false, false)
	require.Equal(t, StateIdle, d.State)

	require.Empty(t, sink.calls, "motion before release must suppress the tap entirely")
}

func TestDragLockHoldsAcrossPause(t *testing.T) {
	sink := &fakeSink{}
	geo := &fakeGeometry{}
	d := newTestDispatch(sink, &fakeTimer{}, &fakeClassifier{}, geo)
	d.SetDragLockEnabled(true)

	t0 := &Touch{Index: 0}
	t0.State, t0.Dirty, t0.Point = TouchBegin, true, Point{X: 100, Y: 100}
	t0.WasDown = true
	d.HandleState([]*Touch{t0}, 0, 1, 0, false, false)
	t0.State, t0.Dirty = TouchEnd, true
	d.HandleState([]*Touch{t0}, 10_000, 0, 1, false, false)
	require.Equal(t, StateTapped, d.State)
	require.Len(t, sink.calls, 1)

	t1 := &Touch{Index: 1}
	t1.State, t1.Dirty, t1.Point, t1.TapState = TouchBegin, true, Point{X: 100, Y: 100}, TouchTapIdle
	t1.WasDown = true
	d.HandleState([]*Touch{t1}, 20_000, 1, 0, false, false)
	require.Equal(t, StateDraggingOrDoubleTap, d.State)

	geo.distanceMM = 5.0
	t1.State, t1.Dirty, t1.Point = TouchUpdate, true, Point{X: 140, Y: 100}
	d.HandleState([]*Touch{t1}, 30_000, 1, 1, false, false)
	require.Equal(t, StateDragging, d.State)

	// First drag segment ends: with drag lock on, the button stays down.
	t1.State, t1.Dirty = TouchEnd, true
	d.HandleState([]*Touch{t1}, 40_000, 0, 1, false, false)
	require.Equal(t, StateDraggingWait, d.State)
	require.Len(t, sink.calls, 1, "drag lock must not release on an in-gesture pause")

	// A second drag segment continues holding the same click.
	t2 := &Touch{Index: 2}
	t2.State, t2.Dirty, t2.Point, t2.TapState = TouchBegin, true, Point{X: 140, Y: 100}, TouchTapIdle
	t2.WasDown = true
	d.HandleState([]*Touch{t2}, 60_000, 1, 0, false, false)
	require.Equal(t, StateDraggingOrTap, d.State)

	t2.State, t2.Dirty, t2.Point = TouchUpdate, true, Point{X: 180, Y: 100}
	d.HandleState([]*Touch{t2}, 70_000, 1, 1, false, false)
	require.Equal(t, StateDragging, d.State)

	t2.State, t2.Dirty = TouchEnd, true
	d.HandleState([]*Touch{t2}, 90_000, 0, 1, false, false)
	require.Equal(t, StateDraggingWait, d.State)
	require.Len(t, sink.calls, 1)

	// Drag timeout finally fires with no further touch: release the lock.
	d.HandleTimeout(150_000, nil)
	require.Equal(t, StateIdle, d.State)
	require.Len(t, sink.calls, 2)
	require.Equal(t, sinkCall{ButtonLeft, 0, true}, sink.calls[0])
	require.Equal(t, sinkCall{ButtonLeft, 150_000, false}, sink.calls[1])
}
