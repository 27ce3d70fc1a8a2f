package nrf24

import "errors"

// ErrBadPipe is returned for pipe numbers outside 0 to 5.
var ErrBadPipe = errors.New("nrf24: pipe out of range")

func checkPipe(pipe int) error {
	if pipe < 0 || pipe >= NumPipes {
		return ErrBadPipe
	}
	return nil
}

// OpenReadingPipe sets the address of a receive pipe, sets its payload
// width to the static payload size and enables it.
// Pipes 0 and 1 take a full address; pipes 2 to 5 take only addr[0]
// and share the upper bytes of pipe 1.
func (r *Radio) OpenReadingPipe(pipe int, addr Address) error {
	if err := checkPipe(pipe); err != nil {
		return err
	}
	a := []byte(addr)
	if pipe < 2 {
		var err error
		if a, err = r.fullAddress(addr); err != nil {
			return err
		}
	} else {
		if len(a) == 0 {
			return ErrBadAddress
		}
		a = a[:1]
	}
	if err := r.writeRegister(RX_ADDR_P0+Register(pipe), a...); err != nil {
		return err
	}
	if err := r.writeRegister(RX_PW_P0+Register(pipe), byte(r.payloadSize)); err != nil {
		return err
	}
	if err := r.updateRegister(EN_RXADDR, bv(uint(pipe)), 0); err != nil {
		return err
	}
	if pipe == 0 {
		r.pipe0Address = append(Address(nil), a...)
	}
	r.log.Debugf("reading pipe %d open at %v", pipe, Address(a))
	return nil
}

// CloseReadingPipe disables a receive pipe.
func (r *Radio) CloseReadingPipe(pipe int) error {
	if err := checkPipe(pipe); err != nil {
		return err
	}
	return r.updateRegister(EN_RXADDR, 0, bv(uint(pipe)))
}

// OpenWritingPipe sets the destination address. Pipe 0 gets the same
// address so that auto acknowledgments are received.
func (r *Radio) OpenWritingPipe(addr Address) error {
	a, err := r.fullAddress(addr)
	if err != nil {
		return err
	}
	if err := r.writeRegister(RX_ADDR_P0, a...); err != nil {
		return err
	}
	if err := r.writeRegister(TX_ADDR, a...); err != nil {
		return err
	}
	return r.writeRegister(RX_PW_P0, byte(r.payloadSize))
}

// SetPayloadSize sets the static payload width of the given pipes,
// or of all pipes if none are given.
func (r *Radio) SetPayloadSize(size int, pipes ...int) error {
	if size < 0 || size > MaxPayloadSize {
		return ErrOversizedPayload
	}
	if len(pipes) == 0 {
		pipes = []int{0, 1, 2, 3, 4, 5}
	}
	for _, p := range pipes {
		if err := checkPipe(p); err != nil {
			return err
		}
		if err := r.writeRegister(RX_PW_P0+Register(p), byte(size)); err != nil {
			return err
		}
	}
	return nil
}

// PayloadSize returns the static payload size.
func (r *Radio) PayloadSize() int {
	return r.payloadSize
}
