package nrf24

import (
	"errors"
	"time"

	"github.com/ecc1/radio"
)

// nRF24L01 hardware-related constants.
const (
	baseFrequency = 2400000000 // Hz, channel 0
	channelWidth  = 1000000    // Hz

	// RPD asserts above this level; there is no finer RSSI.
	rpdThreshold = -64 // dBm
	noSignal     = -128
)

// ErrMaxRetransmits is recorded by Send when a packet was not acknowledged.
var ErrMaxRetransmits = errors.New("nrf24: maximum retransmits reached")

// The methods below follow the github.com/ecc1/radio conventions:
// instead of returning errors, they record the first one, available from Error.

var _ radio.Interface = (*Radio)(nil)

// Statistics holds the byte and packet counts of a radio.
type Statistics struct {
	Bytes struct {
		Sent     int
		Received int
	}
	Packets struct {
		Sent     int
		Received int
	}
}

// Name returns the radio's name.
func (r *Radio) Name() string {
	return "nRF24L01"
}

// Device returns the pathname of the radio's device.
func (r *Radio) Device() string {
	return r.cfg.SPIDevice
}

// Init initializes the radio device.
func (r *Radio) Init(frequency uint32) {
	r.SetFrequency(frequency)
}

// Reset reruns the power-up sequence.
func (r *Radio) Reset() {
	if r.Error() != nil {
		return
	}
	if r.err = r.bus.EnableLow(); r.err != nil {
		return
	}
	r.err = r.init(r.cfg.Channel)
}

// State returns the radio's lifecycle state.
func (r *Radio) State() string {
	return r.state.String()
}

// Statistics returns the byte and packet counts for the radio device.
func (r *Radio) Statistics() Statistics {
	return r.stats
}

// Hardware returns nil: the nRF24L01 is reached through its Transport,
// not through a radio.Hardware register interface.
func (r *Radio) Hardware() *radio.Hardware {
	return nil
}

// Error returns the error state of the radio device.
func (r *Radio) Error() error {
	return r.err
}

// SetError sets the error state of the radio device.
func (r *Radio) SetError(err error) {
	r.err = err
}

// Frequency returns the radio's current frequency, in Hertz.
func (r *Radio) Frequency() uint32 {
	ch, err := r.Channel()
	if err != nil {
		r.SetError(err)
		return 0
	}
	return baseFrequency + uint32(ch)*channelWidth
}

// SetFrequency sets the radio to the channel nearest the given frequency, in Hertz.
func (r *Radio) SetFrequency(freq uint32) {
	if r.Error() != nil {
		return
	}
	if freq < baseFrequency {
		r.SetError(ErrBadChannel)
		return
	}
	ch := (freq - baseFrequency + channelWidth/2) / channelWidth
	r.err = r.SetChannel(int(ch))
}

// Send transmits the given packet and waits for it to be acknowledged.
func (r *Radio) Send(data []byte) {
	if r.Error() != nil {
		return
	}
	if r.err = r.StopListening(); r.err != nil {
		return
	}
	// Stale flags would be taken for this packet's outcome.
	if r.err = r.writeRegister(STATUS, byte(StatusTxDS|StatusMaxRT)); r.err != nil {
		return
	}
	res, err := r.Write(data, Ack, DefaultWriteTimeout)
	if err == nil && res == TxMaxRetransmits {
		// The failed payload stays at the head of the TX FIFO.
		if err = r.FlushTx(); err == nil {
			res, err = r.Write(data, Ack, DefaultWriteTimeout)
		}
	}
	if err == nil && res == TxMaxRetransmits {
		err = ErrMaxRetransmits
	}
	if err != nil {
		r.SetError(err)
		return
	}
	r.awaitSent(DefaultWriteTimeout)
}

// awaitSent polls until TX_DS or MAX_RT is asserted.
func (r *Radio) awaitSent(timeout time.Duration) {
	const pollInterval = 100 * time.Microsecond
	for start := time.Now(); time.Since(start) < timeout; time.Sleep(pollInterval) {
		s, err := r.status()
		if err != nil {
			r.SetError(err)
			return
		}
		switch {
		case s.Has(StatusTxDS):
			r.err = r.writeRegister(STATUS, byte(StatusTxDS))
			return
		case s.Has(StatusMaxRT):
			r.err = r.writeRegister(STATUS, byte(StatusMaxRT))
			if r.err == nil {
				r.err = r.FlushTx()
			}
			if r.err == nil {
				r.SetError(ErrMaxRetransmits)
			}
			return
		}
	}
	r.SetError(ErrTransmitTimeout)
}

// Receive listens with the given timeout for an incoming packet.
// It returns the packet and the associated RSSI, which the nRF24L01
// can only approximate with its received power detector.
func (r *Radio) Receive(timeout time.Duration) ([]byte, int) {
	if r.Error() != nil {
		return nil, noSignal
	}
	if r.state != StateListening {
		if r.err = r.StartListening(); r.err != nil {
			return nil, noSignal
		}
	}
	const pollInterval = 1 * time.Millisecond
	for {
		_, ok, err := r.DataAvailable()
		if err != nil {
			r.SetError(err)
			return nil, noSignal
		}
		if ok {
			break
		}
		if timeout <= 0 {
			return nil, noSignal
		}
		time.Sleep(pollInterval)
		timeout -= pollInterval
	}
	rpd, err := r.ReceivedPower()
	if err != nil {
		r.SetError(err)
		return nil, noSignal
	}
	data, err := r.Read()
	if err != nil {
		r.SetError(err)
		return nil, noSignal
	}
	if rpd {
		return data, rpdThreshold
	}
	return data, noSignal
}

// SendAndReceive sends the given packet,
// then listens with the given timeout for an incoming packet.
// It returns the packet and the associated RSSI.
func (r *Radio) SendAndReceive(p []byte, timeout time.Duration) ([]byte, int) {
	r.Send(p)
	if r.Error() != nil {
		return nil, noSignal
	}
	return r.Receive(timeout)
}
