package logic

// ButtonConfig is the fixed configuration of a touch button.
type ButtonConfig struct {
	Name string
	// Line identifies the sensing input; informational only.
	Line string
	// Threshold separates touched (raw below) from not touched (raw at or above).
	Threshold uint16
	// Debounce is the minimum time after an accepted change before another
	// change is accepted.
	Debounce Millis
	// Invert flips the touched/not-touched interpretation after thresholding.
	Invert bool
}

// Button debounces a capacitive touch input.
//
// Begin must be called once before Read. Read is expected to be called from a
// single polling loop more often than the debounce interval; otherwise changes
// may be missed rather than merely delayed.
type Button struct {
	cfg    ButtonConfig
	sensor TouchSensor
	clock  Clock

	state      Level
	lastState  Level
	changed    bool
	time       Millis
	lastChange Millis
	raw        uint16
}

// NewButton creates a button reading from sensor and timed by clock.
func NewButton(cfg ButtonConfig, sensor TouchSensor, clock Clock) *Button {
	return &Button{
		cfg:    cfg,
		sensor: sensor,
		clock:  clock,
	}
}

// Begin establishes the baseline state from one raw reading. No change is
// flagged and no debounce window is applied.
func (b *Button) Begin() {
	b.state = b.sample()
	b.time = b.clock.Millis()
	b.lastState = b.state
	b.changed = false
	b.lastChange = b.time
}

// Read samples the sensor, applies the debounce gate and returns the
// debounced state (true = pressed).
func (b *Button) Read() bool {
	now := b.clock.Millis()
	level := b.sample()

	if now.Sub(b.lastChange) < b.cfg.Debounce {
		b.changed = false
	} else {
		b.lastState = b.state
		b.state = level
		b.changed = b.state != b.lastState
		if b.changed {
			b.lastChange = now
		}
	}
	b.time = now
	return b.state == Touched
}

// sample takes one raw reading, resets the line and converts the reading to a
// Level.
func (b *Button) sample() Level {
	b.raw = b.sensor.RawTouch()
	b.sensor.ResetToInput()

	level := NotTouched
	if b.raw < b.cfg.Threshold {
		level = Touched
	}
	if b.cfg.Invert {
		level = invert(level)
	}
	return level
}

func invert(l Level) Level {
	if l == Touched {
		return NotTouched
	}
	return Touched
}

// IsPressed reports the state as of the last Read. It does not sample.
func (b *Button) IsPressed() bool {
	return b.state == Touched
}

// IsReleased is the complement of IsPressed.
func (b *Button) IsReleased() bool {
	return b.state != Touched
}

// WasPressed reports whether the last Read changed the state to pressed.
func (b *Button) WasPressed() bool {
	return b.state == Touched && b.changed
}

// WasReleased reports whether the last Read changed the state to released.
func (b *Button) WasReleased() bool {
	return b.state != Touched && b.changed
}

// PressedFor reports whether the button is pressed and had been for at least
// ms as of the last Read. The live clock is not consulted.
func (b *Button) PressedFor(ms Millis) bool {
	return b.state == Touched && b.time.Sub(b.lastChange) >= ms
}

// ReleasedFor reports whether the button is released and had been for at
// least ms as of the last Read.
func (b *Button) ReleasedFor(ms Millis) bool {
	return b.state != Touched && b.time.Sub(b.lastChange) >= ms
}

// Raw returns the reading taken by the last Begin or Read.
func (b *Button) Raw() uint16 {
	return b.raw
}

// LastChange returns the clock value at which the state last changed.
func (b *Button) LastChange() Millis {
	return b.lastChange
}

// Name returns the configured button name.
func (b *Button) Name() string {
	return b.cfg.Name
}

// Line returns the configured sensing line.
func (b *Button) Line() string {
	return b.cfg.Line
}

// Config returns the button configuration.
func (b *Button) Config() ButtonConfig {
	return b.cfg
}

// State returns the debounced state as a State value.
func (b *Button) State() State {
	if b.state == Touched {
		return StatePressed
	}
	return StateReleased
}

// elapsed is the time spent in the current state as of the last Read.
func (b *Button) elapsed() Millis {
	return b.time.Sub(b.lastChange)
}
