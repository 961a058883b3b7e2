// Package gpio provides capacitive touch sensing lines with hardware abstraction.
// RCSensor times the discharge of a GPIO line through the Linux GPIO character
// device. ADSSensor and GobotSensor read an ADS1115 ADC channel over I2C.
// FakeSensor allows testing without hardware.
package gpio

import "math"

// Sensor is a touch sensing line that holds hardware resources.
type Sensor interface {
	// RawTouch returns the raw sensing intensity; lower means touched.
	RawTouch() uint16

	// ResetToInput puts the sensing line back into input mode.
	ResetToInput()

	// Close releases hardware resources.
	Close() error
}

// RawCeiling is reported when a reading fails, so that a failed read is
// never mistaken for a touch.
const RawCeiling uint16 = math.MaxUint16

// Defaults for the RC discharge sensor.
const (
	DefaultChip     = "gpiochip0"
	DefaultMaxCount = 1000
)

// clampRaw converts a signed ADC sample to the uint16 raw range.
func clampRaw(v int64) uint16 {
	if v < 0 {
		return 0
	}
	if v > int64(RawCeiling) {
		return RawCeiling
	}
	return uint16(v)
}
