// Package device drives a real touchpad: it decodes evdev multi-touch
// reports into the internal/tap.Touch lifecycle (BEGIN/UPDATE/END; it
// never reports a touch as HOVERING) and supplies the palm/thumb
// classification predicates and geometry helper the tap package
// consults.
package device

import (
	"fmt"
	"strings"
	"time"

	evdev "github.com/gvalkov/golang-evdev"

	"touchpad/internal/tap"
)

// FindDevice locates an input device whose name contains keyword,
// preferring one whose name also contains mustContain; if no keyword
// match contains mustContain, the first keyword match is returned.
func FindDevice(keyword, mustContain string) (string, error) {
	devices, err := evdev.ListInputDevices()
	if err != nil {
		return "", fmt.Errorf("list input devices: %w", err)
	}

	var fallback string
	for _, d := range devices {
		nameLower := strings.ToLower(d.Name)
		if !strings.Contains(nameLower, strings.ToLower(keyword)) {
			continue
		}
		if strings.Contains(nameLower, strings.ToLower(mustContain)) {
			return d.Fn, nil
		}
		if fallback == "" {
			fallback = d.Fn
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("device with keyword %q not found", keyword)
}

// Source wraps an evdev multi-touch node and reassembles per-slot
// lifecycle into internal/tap.Touch values, one tick (one SYN_REPORT)
// at a time.
type Source struct {
	dev        *evdev.InputDevice
	IsClickpad bool

	activeSlot  int
	slotTouches map[int]*tap.Touch
	trackingIDs map[int]int32

	oldFingerCount int

	clickQueued bool
	physPressed bool

	classifier *Classifier
	geometry   tap.Geometry
}

// Open opens and grabs the evdev node at path (dev.Grab() so the
// kernel stops delivering these events to anyone else while this
// process owns pointer synthesis).
func Open(path string, isClickpad bool, classifier *Classifier, geometry tap.Geometry) (*Source, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := dev.Grab(); err != nil {
		dev.File.Close()
		return nil, fmt.Errorf("grab %s: %w", path, err)
	}

	return &Source{
		dev:         dev,
		IsClickpad:  isClickpad,
		slotTouches: make(map[int]*tap.Touch),
		trackingIDs: make(map[int]int32),
		classifier:  classifier,
		geometry:    geometry,
	}, nil
}

// Close releases the grabbed device.
func (s *Source) Close() error {
	if err := s.dev.Release(); err != nil {
		return fmt.Errorf("release device: %w", err)
	}
	return s.dev.File.Close()
}

// HasPhysicalLeftButton reports whether the opened node advertises a
// real BTN_LEFT key, the way tap.Config.HasPhysicalLeftButton expects
// to be populated from hardware rather than left at its zero value.
func (s *Source) HasPhysicalLeftButton() bool {
	for capType, codes := range s.dev.Capabilities {
		if capType.Type != evdev.EV_KEY {
			continue
		}
		for _, code := range codes {
			if code.Code == evdev.BTN_LEFT {
				return true
			}
		}
	}
	return false
}

func (s *Source) touch(slot int) *tap.Touch {
	t, ok := s.slotTouches[slot]
	if !ok {
		t = &tap.Touch{Index: slot, State: tap.TouchNone, TapState: tap.TouchTapIdle}
		s.slotTouches[slot] = t
	}
	return t
}

// Tick blocks for the next batch of input events and reassembles them
// into one tick's worth of per-touch lifecycle, by dispatching over
// EV_ABS/EV_KEY/EV_SYN for every MT slot rather than only slot 0.
//
// It returns the dirty touches in stable slot-index order, the host's
// real finger counts this tick and last tick (used by the
// Synaptics-serial and semi-MT motion quirks, and this tick's count by
// the tap package's invariant check), whether a physical clickpad press
// was queued this tick, and the tick's timestamp in microseconds since
// the Unix epoch (time.Now().UnixMicro(), a wall-clock reading).
func (s *Source) Tick() (touches []*tap.Touch, nfingersDown, oldNfingersDown int, clickQueued bool, now tap.Time, err error) {
	s.clickQueued = false

	for {
		events, rerr := s.dev.Read()
		if rerr != nil {
			return nil, 0, 0, false, 0, fmt.Errorf("read device: %w", rerr)
		}

		for _, ev := range events {
			s.applyEvent(ev)

			if ev.Type == evdev.EV_SYN && ev.Code == evdev.SYN_REPORT {
				return s.finishTick()
			}
		}
	}
}

func (s *Source) applyEvent(ev evdev.InputEvent) {
	switch ev.Type {
	case evdev.EV_ABS:
		s.applyAbs(ev)
	case evdev.EV_KEY:
		s.applyKey(ev)
	}
}

func (s *Source) applyAbs(ev evdev.InputEvent) {
	if ev.Code == evdev.ABS_MT_SLOT {
		s.activeSlot = int(ev.Value)
	}

	t := s.touch(s.activeSlot)

	switch ev.Code {
	case evdev.ABS_MT_POSITION_X:
		t.Point.X = float64(ev.Value)
		t.Dirty = true
	case evdev.ABS_MT_POSITION_Y:
		t.Point.Y = float64(ev.Value)
		t.Dirty = true
	case evdev.ABS_MT_PRESSURE:
		if s.classifier != nil && s.classifier.Pressure != nil {
			s.classifier.Pressure[s.activeSlot] = ev.Value
		}
	case evdev.ABS_MT_TRACKING_ID:
		if ev.Value == -1 {
			s.endSlot(s.activeSlot)
		} else {
			s.beginSlot(s.activeSlot, ev.Value)
		}
	}
}

func (s *Source) beginSlot(slot int, trackingID int32) {
	t := s.touch(slot)
	t.State = tap.TouchBegin
	t.WasDown = true
	t.Dirty = true
	t.TapState = tap.TouchTapIdle
	t.IsPalm = false
	t.IsThumb = false
	s.trackingIDs[slot] = trackingID

	if s.classifier != nil && s.classifier.IsPalmNow(t) {
		t.PalmState = tap.PalmClassified
	} else {
		t.PalmState = tap.PalmNone
	}
}

func (s *Source) endSlot(slot int) {
	t := s.touch(slot)
	t.State = tap.TouchEnd
	t.Dirty = true
	delete(s.trackingIDs, slot)
}

// applyKey only cares about BTN_LEFT here: BTN_TOOL_FINGER/DOUBLETAP/
// TRIPLETAP duplicate what ABS_MT_TRACKING_ID slot bookkeeping already
// gives us precisely (a live finger count per slot), so this module
// doesn't track a separate finger-count field at all.
func (s *Source) applyKey(ev evdev.InputEvent) {
	if ev.Code != evdev.BTN_LEFT || !s.IsClickpad {
		return
	}
	if ev.Value == 1 && !s.physPressed {
		s.physPressed = true
		s.clickQueued = true
	} else if ev.Value == 0 {
		s.physPressed = false
	}
}

// finishTick snapshots the current slot map as a tick result and
// transitions any BEGIN/END touch into the steady UPDATE/NONE state
// for the next tick, rolling the bookkeeping forward after every
// SYN_REPORT.
func (s *Source) finishTick() ([]*tap.Touch, int, int, bool, tap.Time, error) {
	now := tap.Time(time.Now().UnixMicro())

	nfingersDown := len(s.trackingIDs)
	oldFingerCount := s.oldFingerCount
	s.oldFingerCount = nfingersDown

	var dirty []*tap.Touch
	for slot := 0; slot < maxSlot(s.slotTouches)+1; slot++ {
		t, ok := s.slotTouches[slot]
		if !ok || !t.Dirty {
			continue
		}
		dirty = append(dirty, t)
	}

	clickQueued := s.clickQueued

	for _, t := range dirty {
		switch t.State {
		case tap.TouchBegin:
			t.State = tap.TouchUpdate
		case tap.TouchEnd:
			t.State = tap.TouchNone
		}
		t.Dirty = false
	}

	return dirty, nfingersDown, oldFingerCount, clickQueued, now, nil
}

// Touches returns every touch the source is currently tracking,
// including ones that weren't dirty this tick. cmd/touchtapd passes
// this to Dispatch.HandleTimeout, which needs the full live set to mark
// stragglers dead on a timeout.
func (s *Source) Touches() []*tap.Touch {
	out := make([]*tap.Touch, 0, len(s.slotTouches))
	for slot := 0; slot < maxSlot(s.slotTouches)+1; slot++ {
		if t, ok := s.slotTouches[slot]; ok {
			out = append(out, t)
		}
	}
	return out
}

func maxSlot(m map[int]*tap.Touch) int {
	max := -1
	for k := range m {
		if k > max {
			max = k
		}
	}
	return max
}
