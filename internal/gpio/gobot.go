package gpio

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"gobot.io/x/gobot/drivers/i2c"
	"gobot.io/x/gobot/platforms/raspi"
)

// GobotBoard is an ADS1115 reached through gobot's Raspberry Pi adaptor.
type GobotBoard struct {
	adaptor *raspi.Adaptor
	ads     *i2c.ADS1x15Driver
}

// OpenGobotBoard connects the raspi adaptor and starts the ADS1115 driver.
func OpenGobotBoard() (*GobotBoard, error) {
	r := raspi.NewAdaptor()
	if err := r.Connect(); err != nil {
		return nil, fmt.Errorf("connect raspi adaptor: %w", err)
	}

	ads := i2c.NewADS1115Driver(r)
	if err := ads.Start(); err != nil {
		r.Finalize()
		return nil, fmt.Errorf("start ads1115 driver: %w", err)
	}

	return &GobotBoard{adaptor: r, ads: ads}, nil
}

// Channel returns a sensor for ADC channel ch with the electrode wired to the
// raspi header pin padPin ("" skips the pin reset).
func (b *GobotBoard) Channel(ch int, padPin string) (*GobotSensor, error) {
	if ch < 0 || ch > 3 {
		return nil, fmt.Errorf("ads1115 channel %d out of range", ch)
	}
	return &GobotSensor{board: b, channel: strconv.Itoa(ch), pad: padPin}, nil
}

// Close halts the driver and releases the adaptor.
func (b *GobotBoard) Close() error {
	var errs []error
	if err := b.ads.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt ads1115 driver: %w", err))
	}
	if err := b.adaptor.Finalize(); err != nil {
		errs = append(errs, fmt.Errorf("finalize raspi adaptor: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// GobotSensor reads one ADS1115 channel through gobot.
type GobotSensor struct {
	board   *GobotBoard
	channel string
	pad     string
	err     error
}

// RawTouch returns the raw ADC count for the channel.
func (s *GobotSensor) RawTouch() uint16 {
	v, err := s.board.ads.AnalogRead(s.channel)
	if err != nil {
		s.err = fmt.Errorf("read channel %s: %w", s.channel, err)
		log.WithError(err).WithField("channel", s.channel).Warn("touch read failed")
		return RawCeiling
	}
	s.err = nil
	return clampRaw(int64(v))
}

// ResetToInput reads the pad pin digitally, which makes the adaptor export it
// as an input.
func (s *GobotSensor) ResetToInput() {
	if s.pad == "" {
		return
	}
	if _, err := s.board.adaptor.DigitalRead(s.pad); err != nil {
		s.err = fmt.Errorf("reset pad %s: %w", s.pad, err)
		log.WithError(err).WithField("pin", s.pad).Warn("touch pad reset failed")
	}
}

// Err returns the error from the most recent failed operation, if any.
func (s *GobotSensor) Err() error {
	return s.err
}

// Close is a no-op; the board owns the adaptor.
func (s *GobotSensor) Close() error {
	return nil
}
