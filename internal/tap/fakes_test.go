package tap

// fakeSink records every button notification a test can later assert
// against, standing in for tap.ButtonSink.
type fakeSink struct {
	calls []sinkCall
}

type sinkCall struct {
	button  Button
	time    Time
	pressed bool
}

func (s *fakeSink) Notify(button Button, time Time, pressed bool) {
	s.calls = append(s.calls, sinkCall{button, time, pressed})
}

// fakeTimer records Set/Cancel calls instead of actually scheduling
// anything; tests drive timeouts explicitly via Dispatch.HandleTimeout.
type fakeTimer struct {
	deadline  Time
	armed     bool
	setCount  int
	cancelled int
}

func (t *fakeTimer) Set(deadline Time) {
	t.deadline = deadline
	t.armed = true
	t.setCount++
}

func (t *fakeTimer) Cancel() {
	t.armed = false
	t.cancelled++
}

// fakeClassifier is a no-op classifier: nothing is ever a thumb or palm
// unless a test explicitly flips one of these flags.
type fakeClassifier struct {
	thumb       bool
	thumbForTap bool
	palmTapPalm bool
}

func (c *fakeClassifier) ThumbIgnored(t *Touch) bool       { return c.thumb }
func (c *fakeClassifier) ThumbIgnoredForTap(t *Touch) bool { return c.thumbForTap }
func (c *fakeClassifier) PalmTapIsPalm(t *Touch) bool      { return c.palmTapPalm }

// fakeGeometry reports a fixed, test-controlled distance regardless of
// the two points it's given.
type fakeGeometry struct {
	distanceMM float64
}

func (g *fakeGeometry) DistanceMM(current, initial Point) float64 {
	return g.distanceMM
}

func newTestDispatch(sink *fakeSink, timer *fakeTimer, classifier *fakeClassifier, geometry *fakeGeometry) *Dispatch {
	return Init(Config{
		Timer:                 timer,
		Sink:                  sink,
		Classifier:            classifier,
		Geometry:              geometry,
		HasPhysicalLeftButton: false, // Enabled defaults to true
	})
}
