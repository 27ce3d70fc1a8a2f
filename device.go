// Package nrf24 drives a Nordic nRF24L01(+) 2.4GHz transceiver
// over SPI, with the CE line controlled separately.
package nrf24

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// State is the lifecycle state of a Radio.
type State int

const (
	StateUninitialized State = iota
	StatePowerDown
	StateStandby
	StateListening
	StateTransmitting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePowerDown:
		return "power-down"
	case StateStandby:
		return "standby"
	case StateListening:
		return "listening"
	case StateTransmitting:
		return "transmitting"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Radio represents one nRF24L01 chip.
// It must not be used from more than one goroutine at a time.
type Radio struct {
	bus Transport
	cfg Config
	log *logrus.Entry

	payloadSize  int
	addressWidth int     // 0 until written
	pipe0Address Address // restored by StartListening
	state        State

	stats Statistics
	err   error
}

// Open opens the transport selected by cfg.Transport and initializes the radio.
func Open(cfg Config) (*Radio, error) {
	var (
		t   Transport
		err error
	)
	switch cfg.Transport {
	case "", TransportSpidev:
		t, err = OpenSpidev(cfg)
	case TransportPeriph:
		var h *PeriphHost
		if h, err = NewPeriphHost(); err == nil {
			t, err = h.Open(cfg)
		}
	default:
		err = errors.Errorf("unknown transport %q", cfg.Transport)
	}
	if err != nil {
		return nil, err
	}
	r, err := New(t, cfg)
	if err != nil {
		if c, ok := t.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}
	return r, nil
}

// New initializes the radio behind t and applies cfg.
// The radio is left powered up in standby, ready to listen.
func New(t Transport, cfg Config) (*Radio, error) {
	r := &Radio{
		bus:         t,
		cfg:         cfg,
		log:         cfg.logger(),
		payloadSize: cfg.payloadSize(),
	}
	if err := r.bus.EnableLow(); err != nil {
		return nil, err
	}
	if err := r.init(cfg.Channel); err != nil {
		return nil, errors.Wrap(err, "initialize nRF24L01")
	}
	if err := r.configure(cfg); err != nil {
		return nil, errors.Wrap(err, "configure nRF24L01")
	}
	r.log.Debugf("initialized on channel %d, %d-byte payloads", cfg.Channel, r.payloadSize)
	return r, nil
}

// init runs the power-up sequence.
func (r *Radio) init(channel int) error {
	steps := []func() error{
		r.Activate, // nRF24L01 (non-plus) compatibility
		func() error { return r.SetAddressWidth(defaultAW) },
		func() error { return r.SetChannel(channel) },
		func() error { return r.SetPayloadSize(r.payloadSize) },
		r.DisableDynamicPayloads,
		func() error { return r.EnableAutoAck() },
		func() error {
			return r.writeRegister(CONFIG, bv(EN_CRC)|bv(CRCO)|bv(PWR_UP)|bv(PRIM_RX))
		},
		r.ClearInterruptFlags,
		r.FlushRx,
		r.FlushTx,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	r.setState(StateStandby)
	return nil
}

func (r *Radio) configure(cfg Config) error {
	if cfg.AddressWidth != 0 && cfg.AddressWidth != defaultAW {
		if err := r.SetAddressWidth(cfg.AddressWidth); err != nil {
			return err
		}
	}
	if _, err := r.RFSetup(cfg.DataRate, cfg.Power); err != nil {
		return err
	}
	if cfg.CRCLength != nil {
		if err := r.SetCRCLength(*cfg.CRCLength); err != nil {
			return err
		}
	}
	if cfg.Retries != nil {
		return r.SetRetries(cfg.Retries.Delay, cfg.Retries.Count)
	}
	return nil
}

func (r *Radio) setState(s State) {
	if s != r.state {
		r.log.Debugf("%v -> %v", r.state, s)
		r.state = s
	}
}

// CurrentState returns the lifecycle state.
func (r *Radio) CurrentState() State {
	return r.state
}

// StartListening enters receive mode.
func (r *Radio) StartListening() error {
	if err := r.updateRegister(CONFIG, bv(PRIM_RX), 0); err != nil {
		return err
	}
	if err := r.ClearInterruptFlags(); err != nil {
		return err
	}
	// Pipe 0 may have been taken over for auto acknowledgments while transmitting.
	if r.pipe0Address != nil {
		if err := r.writeRegister(RX_ADDR_P0, r.pipe0Address...); err != nil {
			return err
		}
	}
	if err := r.bus.EnableHigh(); err != nil {
		return err
	}
	if err := r.flushTxIfAckPayload(); err != nil {
		return err
	}
	r.setState(StateListening)
	return nil
}

// StopListening leaves receive mode, ready to transmit.
func (r *Radio) StopListening() error {
	if err := r.bus.EnableLow(); err != nil {
		return err
	}
	if err := r.flushTxIfAckPayload(); err != nil {
		return err
	}
	if err := r.updateRegister(CONFIG, 0, bv(PRIM_RX)); err != nil {
		return err
	}
	// Pipe 0 receives the acknowledgments.
	if err := r.updateRegister(EN_RXADDR, bv(0), 0); err != nil {
		return err
	}
	r.setState(StateStandby)
	return nil
}

func (r *Radio) flushTxIfAckPayload() error {
	ackPayload, err := r.AckPayloadEnabled()
	if err != nil || !ackPayload {
		return err
	}
	return r.FlushTx()
}

// Close resets the radio to its initial configuration on channel 0
// and closes the transport. Failures are recorded as the radio's error.
func (r *Radio) Close() {
	if r.state == StateClosed {
		return
	}
	err := r.teardown()
	if c, ok := r.bus.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	r.setState(StateClosed)
	if err != nil && r.err == nil {
		r.err = err
	}
}

func (r *Radio) teardown() error {
	if err := r.bus.EnableLow(); err != nil {
		return err
	}
	if err := r.init(r.cfg.Channel); err != nil {
		return err
	}
	if _, err := r.RFSetup(Rate1Mbps, PowerMax); err != nil {
		return err
	}
	r.pipe0Address = nil
	return r.SetChannel(0)
}
