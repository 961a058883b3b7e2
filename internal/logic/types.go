// Package logic contains the touch button debounce core and the detector that
// turns debounced edges into events.
// This package has NO hardware dependencies (no GPIO, I2C, MQTT or time.Sleep).
// Raw readings, pin resets and the millisecond clock are injected.
package logic

import "time"

// Millis is a wrapping millisecond counter. It rolls over after ~49.7 days.
type Millis uint32

// Sub returns m - earlier modulo 2^32, so a rollover between the two
// timestamps still yields the true elapsed time.
func (m Millis) Sub(earlier Millis) Millis {
	return m - earlier
}

// Clock returns the current value of the millisecond counter.
type Clock interface {
	Millis() Millis
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() Millis

// Millis implements Clock.
func (f ClockFunc) Millis() Millis {
	return f()
}

// MillisSince returns a Clock counting milliseconds elapsed since start,
// truncated to the width of Millis.
func MillisSince(start time.Time, now func() time.Time) Clock {
	return ClockFunc(func() Millis {
		return Millis(uint64(now().Sub(start).Milliseconds()))
	})
}

// TouchSensor is a single capacitive sensing line.
type TouchSensor interface {
	// RawTouch returns the current raw sensing intensity. Lower values mean
	// more capacitance, i.e. closer to a touch.
	RawTouch() uint16

	// ResetToInput puts the sensing line back into input mode. Called after
	// every raw read; without it readings drift when several lines share a
	// controller.
	ResetToInput()
}

// Level is a thresholded raw reading.
type Level uint8

const (
	NotTouched Level = iota
	Touched
)

func (l Level) String() string {
	if l == Touched {
		return "TOUCHED"
	}
	return "NOT_TOUCHED"
}

// State represents the debounced state of a button.
type State string

const (
	StatePressed  State = "PRESSED"
	StateReleased State = "RELEASED"
)

// EventType represents a button event.
type EventType string

const (
	EventPressed  EventType = "PRESSED"
	EventReleased EventType = "RELEASED"
	EventHeld     EventType = "HELD"
)

// Event represents a button edge or hold to be published.
type Event struct {
	Timestamp time.Time
	Button    string
	Type      EventType
	State     State
	// HeldMs is how long the button had been pressed, for RELEASED and HELD.
	HeldMs Millis
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Pressed  int
	Released int
	Held     int
}

// ButtonState is a point-in-time view of one button.
type ButtonState struct {
	Name       string
	Line       string
	State      State
	LastChange Millis
	Counts     EventCounts
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    map[string]EventCounts
}
