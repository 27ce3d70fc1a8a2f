package nrf24

import (
	"fmt"
	"io"
	"strconv"
)

// flags formats the bits of b selected by mask according to f:
// every '+' in f is replaced by '+' or '-' for the next set bit of mask,
// scanning from the most significant bit.
func flags(f string, mask, b byte) string {
	buf := make([]byte, len(f))
	m := byte(0x80)
	for i := range buf {
		if f[i] != '+' {
			buf[i] = f[i]
			continue
		}
		for mask&m == 0 {
			m >>= 1
		}
		if b&m == 0 {
			buf[i] = '-'
		} else {
			buf[i] = '+'
		}
		m >>= 1
	}
	return string(buf)
}

// Status is the value of the STATUS register.
type Status byte

// STATUS flags.
const (
	StatusTxFull Status = 1 << TX_FULL
	StatusMaxRT  Status = 1 << MAX_RT
	StatusTxDS   Status = 1 << TX_DS
	StatusRxDR   Status = 1 << RX_DR

	// Interrupts are cleared by writing 1 to them.
	Interrupts = StatusRxDR | StatusTxDS | StatusMaxRT
)

// RxPipe returns the pipe of the payload at the head of the RX FIFO,
// or -1 if the RX FIFO is empty.
func (s Status) RxPipe() int {
	n := int(s>>RX_P_NO) & 7
	if n == 7 {
		return -1
	}
	return n
}

// Has reports whether all flags in f are set.
func (s Status) Has(f Status) bool {
	return s&f == f
}

func (s Status) String() string {
	return flags("RxDR+ TxDS+ MaxRT+ TxFull+ RxPipe:", 0x71, byte(s)) +
		strconv.Itoa(s.RxPipe())
}

// FIFO is the value of the FIFO_STATUS register.
type FIFO byte

// FIFO_STATUS flags.
const (
	FIFORxEmpty FIFO = 1 << FIFO_RX_EMPTY
	FIFORxFull  FIFO = 1 << FIFO_RX_FULL
	FIFOTxEmpty FIFO = 1 << FIFO_TX_EMPTY
	FIFOTxFull  FIFO = 1 << FIFO_TX_FULL
	FIFOTxReuse FIFO = 1 << TX_REUSE
)

// Has reports whether all flags in f are set.
func (f FIFO) Has(flag FIFO) bool {
	return f&flag == flag
}

// Names returns the names of the asserted TX and RX flags.
func (f FIFO) Names() []string {
	var names []string
	for _, n := range []struct {
		flag FIFO
		name string
	}{
		{FIFOTxFull, "tx_full"},
		{FIFOTxEmpty, "tx_empty"},
		{FIFORxFull, "rx_full"},
		{FIFORxEmpty, "rx_empty"},
	} {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return names
}

func (f FIFO) String() string {
	return flags("TxReuse+ TxFull+ TxEmpty+ RxFull+ RxEmpty+", 0x73, byte(f))
}

// Status returns the current value of the STATUS register.
func (r *Radio) Status() (Status, error) {
	return r.status()
}

// FIFOFlags returns the value of the FIFO_STATUS register.
func (r *Radio) FIFOFlags() (FIFO, error) {
	b, err := r.readRegister8(FIFO_STATUS)
	return FIFO(b), err
}

func (r *Radio) fifoHas(flag FIFO) (bool, error) {
	f, err := r.FIFOFlags()
	if err != nil {
		return false, err
	}
	return f.Has(flag), nil
}

// TxFull reports whether the TX FIFO is full.
func (r *Radio) TxFull() (bool, error) { return r.fifoHas(FIFOTxFull) }

// TxEmpty reports whether the TX FIFO is empty.
func (r *Radio) TxEmpty() (bool, error) { return r.fifoHas(FIFOTxEmpty) }

// RxFull reports whether the RX FIFO is full.
func (r *Radio) RxFull() (bool, error) { return r.fifoHas(FIFORxFull) }

// RxEmpty reports whether the RX FIFO is empty.
func (r *Radio) RxEmpty() (bool, error) { return r.fifoHas(FIFORxEmpty) }

// InterruptFlags returns the asserted interrupt flags.
func (r *Radio) InterruptFlags() (Status, error) {
	s, err := r.status()
	return s & Interrupts, err
}

func (r *Radio) statusHas(flag Status) (bool, error) {
	s, err := r.status()
	if err != nil {
		return false, err
	}
	return s.Has(flag), nil
}

// RxDR reports whether the data ready interrupt is asserted.
func (r *Radio) RxDR() (bool, error) { return r.statusHas(StatusRxDR) }

// TxDS reports whether the data sent interrupt is asserted.
func (r *Radio) TxDS() (bool, error) { return r.statusHas(StatusTxDS) }

// MaxRT reports whether the maximum retransmits interrupt is asserted.
func (r *Radio) MaxRT() (bool, error) { return r.statusHas(StatusMaxRT) }

// ClearInterruptFlags clears RX_DR, TX_DS and MAX_RT.
func (r *Radio) ClearInterruptFlags() error {
	return r.writeRegister(STATUS, byte(Interrupts))
}

// DataAvailable returns the pipe of the next received payload.
// ok is false if the RX FIFO is empty.
func (r *Radio) DataAvailable() (pipe int, ok bool, err error) {
	empty, err := r.RxEmpty()
	if err != nil || empty {
		return 0, false, err
	}
	s, err := r.status()
	if err != nil {
		return 0, false, err
	}
	return int(s>>RX_P_NO) & 7, true, nil
}

// TxCounters returns the lost packet and retransmit counters from OBSERVE_TX.
// The lost packet counter saturates at 15 and is reset by writing RF_CH.
func (r *Radio) TxCounters() (lost, retransmits int, err error) {
	b, err := r.readRegister8(OBSERVE_TX)
	if err != nil {
		return 0, 0, err
	}
	return int(b >> PLOS_CNT), int(b & 0xF), nil
}

// ReceivedPower reports whether the received power exceeds -64dBm.
func (r *Radio) ReceivedPower() (bool, error) {
	b, err := r.readRegister8(RPD)
	return b&1 != 0, err
}

// RegisterValue is the content of one register.
type RegisterValue struct {
	Register Register
	Value    []byte
}

func (v RegisterValue) String() string {
	return fmt.Sprintf("register %02x (%v): % X", byte(v.Register), v.Register, v.Value)
}

// Registers reads every register. Full address registers are read
// with the current address width.
func (r *Radio) Registers() ([]RegisterValue, error) {
	aw, err := r.AddressWidth()
	if err != nil {
		return nil, err
	}
	regs := make([]RegisterValue, 0, len(AllRegisters))
	for _, reg := range AllRegisters {
		n := 1
		if reg.isAddress() {
			n = aw
		}
		v, err := r.readRegister(reg, n)
		if err != nil {
			return nil, err
		}
		regs = append(regs, RegisterValue{Register: reg, Value: v})
	}
	return regs, nil
}

// DumpRegisters writes the value of every register to w, one per line.
func (r *Radio) DumpRegisters(w io.Writer) error {
	regs, err := r.Registers()
	if err != nil {
		return err
	}
	for _, v := range regs {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}
