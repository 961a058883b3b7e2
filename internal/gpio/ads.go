package gpio

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// ADS1115 full-scale settings used for touch pads.
const (
	adsMaxVoltage = 4096 * physic.MilliVolt
	adsFrequency  = 860 * physic.Hertz
)

var adsChannels = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// ADSBoard is an ADS1115 on an I2C bus, shared by the channels read from it.
type ADSBoard struct {
	bus i2c.BusCloser
	dev *ads1x15.Dev
}

// OpenADSBoard initializes the periph host drivers and opens the ADS1115 on
// busName ("" selects the first bus).
func OpenADSBoard(busName string) (*ADSBoard, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	dev, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("open ads1115: %w", err)
	}

	return &ADSBoard{bus: bus, dev: dev}, nil
}

// Channel returns a sensor for ADC channel ch. padPin names the GPIO the
// electrode is wired to; it is put back into input mode after each read.
// An empty padPin skips the reset.
func (b *ADSBoard) Channel(ch int, padPin string) (*ADSSensor, error) {
	if ch < 0 || ch >= len(adsChannels) {
		return nil, fmt.Errorf("ads1115 channel %d out of range", ch)
	}

	adc, err := b.dev.PinForChannel(adsChannels[ch], adsMaxVoltage, adsFrequency, ads1x15.BestQuality)
	if err != nil {
		return nil, fmt.Errorf("ads1115 channel %d: %w", ch, err)
	}

	s := &ADSSensor{adc: adc, channel: ch}
	if padPin != "" {
		p := gpioreg.ByName(padPin)
		if p == nil {
			adc.Halt()
			return nil, fmt.Errorf("unknown gpio pin %q", padPin)
		}
		s.pad = p
	}
	return s, nil
}

// Close releases the I2C bus.
func (b *ADSBoard) Close() error {
	if err := b.bus.Close(); err != nil {
		return fmt.Errorf("close i2c bus: %w", err)
	}
	return nil
}

// ADSSensor reads one ADS1115 channel as a raw touch value.
type ADSSensor struct {
	adc     ads1x15.PinADC
	pad     pgpio.PinIO
	channel int
	err     error
}

// RawTouch returns the raw ADC count for the channel.
func (s *ADSSensor) RawTouch() uint16 {
	sample, err := s.adc.Read()
	if err != nil {
		s.err = fmt.Errorf("read channel %d: %w", s.channel, err)
		log.WithError(err).WithField("channel", s.channel).Warn("touch read failed")
		return RawCeiling
	}
	s.err = nil
	return clampRaw(int64(sample.Raw))
}

// ResetToInput returns the electrode pad pin to input mode.
func (s *ADSSensor) ResetToInput() {
	if s.pad == nil {
		return
	}
	if err := s.pad.In(pgpio.PullNoChange, pgpio.NoEdge); err != nil {
		s.err = fmt.Errorf("reset pad %s: %w", s.pad, err)
		log.WithError(err).WithField("pin", s.pad.Name()).Warn("touch pad reset failed")
	}
}

// Err returns the error from the most recent failed operation, if any.
func (s *ADSSensor) Err() error {
	return s.err
}

// Close halts the channel. The board owns the bus.
func (s *ADSSensor) Close() error {
	return s.adc.Halt()
}
