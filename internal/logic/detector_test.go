package logic

import (
	"testing"
	"time"
)

// harness drives a Detector over buttons sharing one manual clock.
type harness struct {
	d       *Detector
	sensors []*scriptedSensor
	clock   *manualClock
	start   time.Time
}

func newHarness(t *testing.T, hold Millis, names ...string) *harness {
	t.Helper()
	h := &harness{
		clock: &manualClock{},
		start: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	var buttons []*Button
	for _, name := range names {
		s := &scriptedSensor{raw: []uint16{rawUntouched}}
		cfg := testConfig()
		cfg.Name = name
		buttons = append(buttons, NewButton(cfg, s, h.clock))
		h.sensors = append(h.sensors, s)
	}
	h.d = NewDetector(buttons, hold, h.start)
	return h
}

// step sets each button's raw reading, moves the clock to at and processes.
func (h *harness) step(at Millis, raws ...uint16) []Event {
	for i, raw := range raws {
		h.sensors[i].set(raw)
	}
	h.clock.now = at
	return h.d.Process(h.start.Add(time.Duration(at) * time.Millisecond))
}

func TestNewDetector(t *testing.T) {
	h := newHarness(t, 1000, "A", "B")
	if h.d.hold != 1000 {
		t.Errorf("expected hold 1000, got %d", h.d.hold)
	}
	if h.d.IsBaselined() {
		t.Error("new detector should not be baselined")
	}
	if len(h.d.Buttons()) != 2 {
		t.Errorf("expected 2 buttons, got %d", len(h.d.Buttons()))
	}
	if !h.d.lastHeartbeat.Equal(h.start) {
		t.Errorf("expected lastHeartbeat %v, got %v", h.start, h.d.lastHeartbeat)
	}
}

func TestProcessBaselinesFirst(t *testing.T) {
	h := newHarness(t, 0, "A")

	// Touched at baseline: no PRESSED event is emitted for it.
	events := h.step(0, rawTouched)
	if len(events) != 0 {
		t.Errorf("expected no events at baseline, got %d", len(events))
	}
	if !h.d.IsBaselined() {
		t.Fatal("expected baseline after first Process")
	}

	events = h.step(100, rawTouched)
	if len(events) != 0 {
		t.Errorf("expected no events for stable state, got %v", events)
	}
	if st := h.d.States()[0].State; st != StatePressed {
		t.Errorf("expected PRESSED, got %s", st)
	}
}

func TestPressAndReleaseEvents(t *testing.T) {
	h := newHarness(t, 0, "A")
	h.d.Begin()

	events := h.step(100, rawTouched)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Type != EventPressed || e.State != StatePressed || e.Button != "A" {
		t.Errorf("unexpected event: %+v", e)
	}
	if !e.Timestamp.Equal(h.start.Add(100 * time.Millisecond)) {
		t.Errorf("unexpected timestamp: %v", e.Timestamp)
	}

	events = h.step(420, rawUntouched)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e = events[0]
	if e.Type != EventReleased || e.State != StateReleased {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.HeldMs != 320 {
		t.Errorf("expected HeldMs 320, got %d", e.HeldMs)
	}
}

func TestBounceInsideWindowEmitsNothing(t *testing.T) {
	h := newHarness(t, 0, "A")
	h.d.Begin()
	h.step(100, rawTouched)

	for _, at := range []Millis{110, 120, 130, 140} {
		raw := rawUntouched
		if at%20 == 0 {
			raw = rawTouched
		}
		if events := h.step(at, raw); len(events) != 0 {
			t.Errorf("t=%d: expected no events while bouncing, got %v", at, events)
		}
	}
}

func TestHeldEmittedOncePerPress(t *testing.T) {
	h := newHarness(t, 500, "A")
	h.d.Begin()
	h.step(100, rawTouched)

	if events := h.step(599, rawTouched); len(events) != 0 {
		t.Fatalf("expected no HELD before hold time, got %v", events)
	}

	events := h.step(600, rawTouched)
	if len(events) != 1 || events[0].Type != EventHeld {
		t.Fatalf("expected HELD at hold time, got %v", events)
	}
	if events[0].HeldMs != 500 {
		t.Errorf("expected HeldMs 500, got %d", events[0].HeldMs)
	}

	if events := h.step(900, rawTouched); len(events) != 0 {
		t.Errorf("HELD must fire once per press, got %v", events)
	}

	// Release and press again: HELD is re-armed.
	h.step(1000, rawUntouched)
	h.step(1100, rawTouched)
	events = h.step(1600, rawTouched)
	if len(events) != 1 || events[0].Type != EventHeld {
		t.Errorf("expected HELD for second press, got %v", events)
	}
}

func TestHoldDisabled(t *testing.T) {
	h := newHarness(t, 0, "A")
	h.d.Begin()
	h.step(100, rawTouched)

	if events := h.step(100000, rawTouched); len(events) != 0 {
		t.Errorf("expected no HELD with hold disabled, got %v", events)
	}
}

func TestMultipleButtonsInOrder(t *testing.T) {
	h := newHarness(t, 0, "A", "B")
	h.d.Begin()

	events := h.step(100, rawTouched, rawTouched)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Button != "A" || events[1].Button != "B" {
		t.Errorf("expected A then B, got %s then %s", events[0].Button, events[1].Button)
	}

	events = h.step(200, rawTouched, rawUntouched)
	if len(events) != 1 || events[0].Button != "B" || events[0].Type != EventReleased {
		t.Errorf("expected only B RELEASED, got %v", events)
	}
}

func TestStates(t *testing.T) {
	h := newHarness(t, 0, "A", "B")
	h.d.Begin()
	h.step(100, rawTouched, rawUntouched)

	states := h.d.States()
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	if states[0].Name != "A" || states[0].State != StatePressed || states[0].LastChange != 100 {
		t.Errorf("unexpected A state: %+v", states[0])
	}
	if states[0].Counts.Pressed != 1 {
		t.Errorf("expected A pressed count 1, got %d", states[0].Counts.Pressed)
	}
	if states[1].Name != "B" || states[1].State != StateReleased || states[1].LastChange != 0 {
		t.Errorf("unexpected B state: %+v", states[1])
	}
	if states[1].Line != "17" {
		t.Errorf("expected line 17, got %q", states[1].Line)
	}
}

func TestEventCountsIncrementOnTransition(t *testing.T) {
	h := newHarness(t, 200, "A")
	h.d.Begin()

	h.step(100, rawTouched)   // PRESSED
	h.step(300, rawTouched)   // HELD
	h.step(400, rawUntouched) // RELEASED
	h.step(500, rawTouched)   // PRESSED
	h.step(600, rawUntouched) // RELEASED

	counts := h.d.EventCountsSnapshot()["A"]
	if counts.Pressed != 2 || counts.Released != 2 || counts.Held != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

// Heartbeat tests

func TestCheckHeartbeatDisabledWithZeroInterval(t *testing.T) {
	h := newHarness(t, 0, "A")
	h.d.Begin()

	if hb := h.d.CheckHeartbeat(h.start.Add(15*time.Minute), 0); hb != nil {
		t.Error("should not return heartbeat when interval is 0 (disabled)")
	}
	if hb := h.d.CheckHeartbeat(h.start.Add(15*time.Minute), -1*time.Minute); hb != nil {
		t.Error("should not return heartbeat when interval is negative")
	}
}

func TestCheckHeartbeatBeforeBaseline(t *testing.T) {
	h := newHarness(t, 0, "A")

	if hb := h.d.CheckHeartbeat(h.start.Add(15*time.Minute), 15*time.Minute); hb != nil {
		t.Error("should not return heartbeat before baseline")
	}
}

func TestCheckHeartbeatBeforeInterval(t *testing.T) {
	h := newHarness(t, 0, "A")
	h.d.Begin()

	if hb := h.d.CheckHeartbeat(h.start.Add(14*time.Minute), 15*time.Minute); hb != nil {
		t.Error("should not return heartbeat before interval")
	}
}

func TestCheckHeartbeatUpdatesLastTime(t *testing.T) {
	h := newHarness(t, 0, "A")
	h.d.Begin()

	t1 := h.start.Add(15 * time.Minute)
	hb1 := h.d.CheckHeartbeat(t1, 15*time.Minute)
	if hb1 == nil {
		t.Fatal("should return first heartbeat")
	}
	if !hb1.Timestamp.Equal(t1) {
		t.Errorf("expected timestamp %v, got %v", t1, hb1.Timestamp)
	}
	if hb1.Uptime != 15*time.Minute {
		t.Errorf("expected uptime 15m, got %v", hb1.Uptime)
	}

	if hb := h.d.CheckHeartbeat(t1.Add(time.Second), 15*time.Minute); hb != nil {
		t.Error("should not return heartbeat immediately after previous")
	}

	if hb := h.d.CheckHeartbeat(t1.Add(15*time.Minute), 15*time.Minute); hb == nil {
		t.Fatal("should return second heartbeat")
	}
}

func TestHeartbeatContainsEventCounts(t *testing.T) {
	h := newHarness(t, 0, "A", "B")
	h.d.Begin()
	h.step(100, rawTouched, rawUntouched)
	h.step(200, rawUntouched, rawUntouched)

	hb := h.d.CheckHeartbeat(h.start.Add(15*time.Minute), 15*time.Minute)
	if hb == nil {
		t.Fatal("should return heartbeat")
	}
	if hb.Counts["A"].Pressed != 1 || hb.Counts["A"].Released != 1 {
		t.Errorf("unexpected A counts: %+v", hb.Counts["A"])
	}
	if hb.Counts["B"] != (EventCounts{}) {
		t.Errorf("expected zero B counts, got %+v", hb.Counts["B"])
	}
}
