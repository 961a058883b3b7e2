//go:build !linux

package gpio

import "errors"

// RCSensor is not available on non-Linux platforms.
type RCSensor struct{}

// NewRCSensor returns an error on non-Linux platforms.
func NewRCSensor(chipName string, offset int, maxCount uint16) (*RCSensor, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// RawTouch is not implemented on non-Linux platforms.
func (s *RCSensor) RawTouch() uint16 {
	return RawCeiling
}

// ResetToInput is not implemented on non-Linux platforms.
func (s *RCSensor) ResetToInput() {}

// Err always reports the platform as unsupported.
func (s *RCSensor) Err() error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *RCSensor) Close() error {
	return nil
}
