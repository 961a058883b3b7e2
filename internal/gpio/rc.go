//go:build linux

package gpio

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/warthog618/go-gpiocdev"
)

// RCSensor measures touch by RC discharge timing on a GPIO line.
// The electrode is charged by driving the line high, then released as an
// input; a finger adds capacitance and slows the discharge. The raw value is
// MaxCount minus the number of polls until the line reads low, so a touch
// lowers it.
type RCSensor struct {
	chip     *gpiocdev.Chip
	line     *gpiocdev.Line
	offset   int
	maxCount uint16
	err      error
}

// NewRCSensor requests the given line offset on chip for touch sensing.
func NewRCSensor(chipName string, offset int, maxCount uint16) (*RCSensor, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("touch-sensor"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsInput)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request touch line %d: %w", offset, err)
	}

	if maxCount == 0 {
		maxCount = DefaultMaxCount
	}

	return &RCSensor{
		chip:     chip,
		line:     line,
		offset:   offset,
		maxCount: maxCount,
	}, nil
}

// RawTouch charges the electrode and counts polls until it discharges.
func (s *RCSensor) RawTouch() uint16 {
	if err := s.line.Reconfigure(gpiocdev.AsOutput(1)); err != nil {
		return s.fail(fmt.Errorf("charge line: %w", err))
	}
	if err := s.line.Reconfigure(gpiocdev.AsInput); err != nil {
		return s.fail(fmt.Errorf("release line: %w", err))
	}

	var count uint16
	for count < s.maxCount {
		v, err := s.line.Value()
		if err != nil {
			return s.fail(fmt.Errorf("read line: %w", err))
		}
		if v == 0 {
			break
		}
		count++
	}
	s.err = nil
	return s.maxCount - count
}

// ResetToInput reconfigures the line as a plain input.
func (s *RCSensor) ResetToInput() {
	if err := s.line.Reconfigure(gpiocdev.AsInput); err != nil {
		s.err = fmt.Errorf("reset line: %w", err)
		log.WithError(err).WithField("line", s.offset).Warn("touch line reset failed")
	}
}

// Err returns the error from the most recent failed operation, if any.
func (s *RCSensor) Err() error {
	return s.err
}

func (s *RCSensor) fail(err error) uint16 {
	s.err = err
	log.WithError(err).WithField("line", s.offset).Warn("touch read failed")
	return RawCeiling
}

// Close leaves the line as an input with pull-down and releases it.
func (s *RCSensor) Close() error {
	var errs []error

	if s.line != nil {
		if err := s.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line %d: %w", s.offset, err))
		}
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", s.offset, err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
