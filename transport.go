package nrf24

import "errors"

// Transport is the hardware capability the driver is built on:
// the chip-select (CSN) and enable (CE) lines, and raw byte transfers
// over the SPI bus. Exactly one Transport serves one Radio.
//
// A Transport that also implements io.Closer is closed by Radio.Close.
type Transport interface {
	// AssertChipSelect drives CSN low, starting a bus transaction.
	AssertChipSelect() error
	// ReleaseChipSelect drives CSN high, ending the transaction.
	ReleaseChipSelect() error
	// EnableHigh drives CE high.
	EnableHigh() error
	// EnableLow drives CE low.
	EnableLow() error
	// WriteBytes clocks p out on MOSI, discarding MISO.
	WriteBytes(p []byte) error
	// ReadBytes clocks out n NOP bytes and returns the bytes received on MISO.
	ReadBytes(n int) ([]byte, error)
}

// nopFill returns n NOP bytes, used as filler while reading.
func nopFill(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(NOP)
	}
	return buf
}

// transaction runs fn with chip select asserted.
// Chip select is released on every path; a release failure is
// reported only when fn itself succeeded.
func (r *Radio) transaction(fn func(bus Transport) error) (err error) {
	if err = r.bus.AssertChipSelect(); err != nil {
		return err
	}
	defer func() {
		if rerr := r.bus.ReleaseChipSelect(); err == nil {
			err = rerr
		}
	}()
	return fn(r.bus)
}

// sendCommand issues cmd, followed by data if any, and then reads n response bytes.
func (r *Radio) sendCommand(cmd Command, n int, data ...byte) ([]byte, error) {
	var resp []byte
	err := r.transaction(func(bus Transport) error {
		if err := bus.WriteBytes([]byte{byte(cmd)}); err != nil {
			return err
		}
		if len(data) != 0 {
			if err := bus.WriteBytes(data); err != nil {
				return err
			}
		}
		if n == 0 {
			return nil
		}
		var err error
		resp, err = bus.ReadBytes(n)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.log.Tracef("%v % X -> % X", cmd, data, resp)
	return resp, nil
}

// readRegister returns n bytes of reg.
func (r *Radio) readRegister(reg Register, n int) ([]byte, error) {
	return r.sendCommand(R_REGISTER|Command(reg&registerMask), n)
}

func (r *Radio) readRegister8(reg Register) (byte, error) {
	b, err := r.readRegister(reg, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// writeRegister writes value to reg.
func (r *Radio) writeRegister(reg Register, value ...byte) error {
	_, err := r.sendCommand(W_REGISTER|Command(reg&registerMask), 0, value...)
	return err
}

// updateRegister sets the bits in set and clears the bits in clear.
func (r *Radio) updateRegister(reg Register, set, clear byte) error {
	b, err := r.readRegister8(reg)
	if err != nil {
		return err
	}
	return r.writeRegister(reg, b&^clear|set)
}

// status returns STATUS, which the chip shifts out while receiving
// the first byte of any transaction.
func (r *Radio) status() (Status, error) {
	var s Status
	err := r.transaction(func(bus Transport) error {
		b, err := bus.ReadBytes(1)
		if err != nil {
			return err
		}
		s = Status(b[0])
		return nil
	})
	return s, err
}

// frame gathers the bytes of one chip-select transaction so that a
// hardware transport can clock them out in a single full-duplex
// transfer. The SPI controller's chip select only stays asserted for
// the length of one transfer.
type frame struct {
	open bool
	tx   []byte
}

var (
	errFrameOpen   = errors.New("nrf24: chip select already asserted")
	errFrameClosed = errors.New("nrf24: chip select not asserted")
)

func (f *frame) begin() error {
	if f.open {
		return errFrameOpen
	}
	f.open = true
	f.tx = f.tx[:0]
	return nil
}

func (f *frame) write(p []byte) error {
	if !f.open {
		return errFrameClosed
	}
	f.tx = append(f.tx, p...)
	return nil
}

// read appends n NOPs and runs the frame through xfer, returning the
// last n bytes received. Bytes written after a read go out in a further transfer.
func (f *frame) read(n int, xfer func(w, r []byte) error) ([]byte, error) {
	if !f.open {
		return nil, errFrameClosed
	}
	f.tx = append(f.tx, nopFill(n)...)
	rx := make([]byte, len(f.tx))
	err := xfer(f.tx, rx)
	f.tx = f.tx[:0]
	if err != nil {
		return nil, err
	}
	return rx[len(rx)-n:], nil
}

// end sends whatever was written since the last read.
func (f *frame) end(xfer func(w, r []byte) error) error {
	if !f.open {
		return errFrameClosed
	}
	f.open = false
	if len(f.tx) == 0 {
		return nil
	}
	err := xfer(f.tx, make([]byte, len(f.tx)))
	f.tx = f.tx[:0]
	return err
}
