package nrf24

import (
	"errors"
	"time"
)

var (
	// ErrOversizedPayload is returned, before anything is written, for payloads
	// longer than 32 bytes or, without dynamic payloads, the static payload size.
	ErrOversizedPayload = errors.New("nrf24: payload too large")
	// ErrTransmitTimeout is returned when the TX FIFO stays full past the timeout.
	ErrTransmitTimeout = errors.New("nrf24: TX FIFO full")
	// ErrBadPayloadWidth is returned when R_RX_PL_WID reports more than 32 bytes.
	// The RX FIFO is flushed in that case.
	ErrBadPayloadWidth = errors.New("nrf24: invalid dynamic payload width")
)

const (
	// DefaultWriteTimeout bounds the wait for room in the TX FIFO.
	DefaultWriteTimeout = 2 * time.Second

	// CE must stay high for at least 10µs to start a transmission.
	cePulse = 10 * time.Microsecond
)

// AckMode selects whether a payload expects an acknowledgment.
type AckMode int

const (
	Ack AckMode = iota
	// NoAck requires dynamic ack to be enabled.
	NoAck
)

// TxResult is the outcome of Write.
type TxResult int

const (
	// TxQueued means the payload was written and transmission started.
	TxQueued TxResult = iota
	// TxMaxRetransmits means a previous payload used up its retransmits.
	// MAX_RT has been cleared and nothing was written; resending is up to the caller.
	TxMaxRetransmits
)

func (t TxResult) String() string {
	switch t {
	case TxQueued:
		return "queued"
	case TxMaxRetransmits:
		return "max retransmits"
	}
	return "unknown"
}

// Write waits for room in the TX FIFO, writes payload and pulses CE
// to transmit it.
func (r *Radio) Write(payload []byte, mode AckMode, timeout time.Duration) (TxResult, error) {
	if len(payload) > MaxPayloadSize {
		return TxQueued, ErrOversizedPayload
	}
	start := time.Now()
	for {
		full, err := r.TxFull()
		if err != nil {
			return TxQueued, err
		}
		if !full {
			break
		}
		maxRT, err := r.MaxRT()
		if err != nil {
			return TxQueued, err
		}
		if maxRT {
			r.log.Debug("maximum retransmits reached")
			if err := r.writeRegister(STATUS, byte(StatusMaxRT)); err != nil {
				return TxQueued, err
			}
			return TxMaxRetransmits, nil
		}
		if time.Since(start) > timeout {
			return TxQueued, ErrTransmitTimeout
		}
	}
	if err := r.writePayload(payload, mode); err != nil {
		return TxQueued, err
	}
	r.setState(StateTransmitting)
	if err := r.pulseCE(); err != nil {
		return TxQueued, err
	}
	r.setState(StateStandby)
	r.stats.Packets.Sent++
	r.stats.Bytes.Sent += len(payload)
	return TxQueued, nil
}

// WriteNoAck is Write without acknowledgment.
func (r *Radio) WriteNoAck(payload []byte, timeout time.Duration) (TxResult, error) {
	return r.Write(payload, NoAck, timeout)
}

func (r *Radio) writePayload(payload []byte, mode AckMode) error {
	dynamic, err := r.DynamicPayloadsEnabled()
	if err != nil {
		return err
	}
	data := payload
	switch {
	case dynamic && len(payload) > MaxPayloadSize:
		return ErrOversizedPayload
	case !dynamic && len(payload) > r.payloadSize:
		return ErrOversizedPayload
	case !dynamic:
		data = make([]byte, r.payloadSize)
		copy(data, payload)
	}
	cmd := W_TX_PAYLOAD
	if mode == NoAck {
		cmd = W_TX_PAYLOAD_NOACK
	}
	_, err = r.sendCommand(cmd, 0, data...)
	return err
}

func (r *Radio) pulseCE() error {
	if err := r.bus.EnableHigh(); err != nil {
		return err
	}
	time.Sleep(cePulse)
	return r.bus.EnableLow()
}

// Read removes the payload at the head of the RX FIFO and clears the interrupt flags.
func (r *Radio) Read() ([]byte, error) {
	n, err := r.rxPayloadSize()
	if err != nil {
		return nil, err
	}
	if n > MaxPayloadSize {
		if err := r.FlushRx(); err != nil {
			return nil, err
		}
		if err := r.ClearInterruptFlags(); err != nil {
			return nil, err
		}
		return nil, ErrBadPayloadWidth
	}
	var payload []byte
	if n > 0 {
		if payload, err = r.sendCommand(R_RX_PAYLOAD, n); err != nil {
			return nil, err
		}
	}
	if err := r.ClearInterruptFlags(); err != nil {
		return nil, err
	}
	r.stats.Packets.Received++
	r.stats.Bytes.Received += len(payload)
	return payload, nil
}

// rxPayloadSize returns the width of the next payload: R_RX_PL_WID
// with dynamic payloads, the static payload size otherwise.
func (r *Radio) rxPayloadSize() (int, error) {
	dynamic, err := r.DynamicPayloadsEnabled()
	if err != nil {
		return 0, err
	}
	if !dynamic {
		return r.payloadSize, nil
	}
	b, err := r.sendCommand(R_RX_PL_WID, 1)
	if err != nil {
		return 0, err
	}
	return int(b[0]), nil
}

// SetAckPayload queues payload to be sent with the next acknowledgment on pipe.
func (r *Radio) SetAckPayload(pipe int, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return ErrOversizedPayload
	}
	if err := checkPipe(pipe); err != nil {
		return err
	}
	_, err := r.sendCommand(W_ACK_PAYLOAD|Command(pipe&7), 0, payload...)
	return err
}

// ReuseTxPayload clears MAX_RT and retransmits the last payload.
func (r *Radio) ReuseTxPayload() error {
	if err := r.writeRegister(STATUS, byte(StatusMaxRT)); err != nil {
		return err
	}
	if _, err := r.sendCommand(REUSE_TX_PL, 0); err != nil {
		return err
	}
	return r.pulseCE()
}
