package logic

import "time"

// Detector polls a set of buttons and turns their debounced edges into events.
type Detector struct {
	buttons       []*Button
	hold          Millis
	held          []bool
	since         []Millis
	begun         bool
	startTime     time.Time
	eventCounts   []EventCounts
	lastHeartbeat time.Time
}

// NewDetector creates a detector over buttons. A HELD event is emitted once per
// press when the press reaches hold; hold 0 disables HELD events.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(buttons []*Button, hold Millis, startTime time.Time) *Detector {
	return &Detector{
		buttons:       buttons,
		hold:          hold,
		held:          make([]bool, len(buttons)),
		since:         make([]Millis, len(buttons)),
		startTime:     startTime,
		eventCounts:   make([]EventCounts, len(buttons)),
		lastHeartbeat: startTime,
	}
}

// Begin establishes the baseline of every button. It emits no events.
func (d *Detector) Begin() {
	for i, b := range d.buttons {
		b.Begin()
		d.since[i] = b.LastChange()
		d.held[i] = false
	}
	d.begun = true
}

// Process reads every button once, in order, and returns the resulting events.
func (d *Detector) Process(now time.Time) []Event {
	if !d.begun {
		d.Begin()
		return nil
	}

	var events []Event
	for i, b := range d.buttons {
		b.Read()

		switch {
		case b.WasPressed():
			d.held[i] = false
			d.since[i] = b.LastChange()
			d.eventCounts[i].Pressed++
			events = append(events, Event{
				Timestamp: now,
				Button:    b.Name(),
				Type:      EventPressed,
				State:     StatePressed,
			})
		case b.WasReleased():
			d.eventCounts[i].Released++
			events = append(events, Event{
				Timestamp: now,
				Button:    b.Name(),
				Type:      EventReleased,
				State:     StateReleased,
				HeldMs:    b.LastChange().Sub(d.since[i]),
			})
			d.held[i] = false
			d.since[i] = b.LastChange()
		}

		if d.hold > 0 && !d.held[i] && b.PressedFor(d.hold) {
			d.held[i] = true
			d.eventCounts[i].Held++
			events = append(events, Event{
				Timestamp: now,
				Button:    b.Name(),
				Type:      EventHeld,
				State:     StatePressed,
				HeldMs:    b.elapsed(),
			})
		}
	}

	return events
}

// IsBaselined returns whether Begin has run.
func (d *Detector) IsBaselined() bool {
	return d.begun
}

// Buttons returns the buttons in polling order.
func (d *Detector) Buttons() []*Button {
	return d.buttons
}

// States returns the current debounced state of every button.
func (d *Detector) States() []ButtonState {
	out := make([]ButtonState, len(d.buttons))
	for i, b := range d.buttons {
		out[i] = ButtonState{
			Name:       b.Name(),
			Line:       b.Line(),
			State:      b.State(),
			LastChange: b.LastChange(),
			Counts:     d.eventCounts[i],
		}
	}
	return out
}

// EventCountsSnapshot returns a copy of the per-button event counts, keyed by name.
func (d *Detector) EventCountsSnapshot() map[string]EventCounts {
	out := make(map[string]EventCounts, len(d.buttons))
	for i, b := range d.buttons {
		out[b.Name()] = d.eventCounts[i]
	}
	return out
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if !d.begun {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.EventCountsSnapshot(),
	}
}
