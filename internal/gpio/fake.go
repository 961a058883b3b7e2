package gpio

// FakeSensor is a test double that returns scripted raw readings.
type FakeSensor struct {
	// Samples contains scripted raw readings to return.
	// Each call to RawTouch() consumes the next sample.
	Samples []uint16

	// index tracks current position in Samples
	index int

	// Calls records "read" and "reset" in the order they happened.
	Calls []string

	// Reads and Resets count RawTouch and ResetToInput calls.
	Reads  int
	Resets int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeSensor creates a FakeSensor with the given samples.
func NewFakeSensor(samples ...uint16) *FakeSensor {
	return &FakeSensor{Samples: samples}
}

// RawTouch returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly; with no
// samples it reports RawCeiling.
func (f *FakeSensor) RawTouch() uint16 {
	f.Reads++
	f.Calls = append(f.Calls, "read")

	if len(f.Samples) == 0 {
		return RawCeiling
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample
}

// ResetToInput records the reset.
func (f *FakeSensor) ResetToInput() {
	f.Resets++
	f.Calls = append(f.Calls, "reset")
}

// Close marks the sensor as closed.
func (f *FakeSensor) Close() error {
	f.Closed = true
	return nil
}

// Rewind resets the sensor to the beginning of samples and clears the record.
func (f *FakeSensor) Rewind() {
	f.index = 0
	f.Calls = nil
	f.Reads = 0
	f.Resets = 0
	f.Closed = false
}
