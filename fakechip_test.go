package nrf24

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// xfer is one completed chip-select transaction.
type xfer struct {
	cmd  Command
	data []byte
}

type rxPacket struct {
	pipe    int
	payload []byte
}

// fakeChip emulates the nRF24L01 command set behind a Transport.
type fakeChip struct {
	regs   [0x20][]byte
	irq    Status
	rx     []rxPacket
	tx     [][]byte
	ack    [NumPipes][]byte
	txFull bool // forces FIFO_STATUS.TX_FULL and STATUS.TX_FULL

	selected bool
	cur      *xfer
	started  bool
	resp     []byte
	xfers    []xfer

	ce       bool
	cePulses int
	sent     [][]byte
	dropAcks bool // transmissions end in MAX_RT

	failAfter int // fail the n-th bus call when > 0
	calls     int
}

var errBus = errors.New("bus fault")

func newFakeChip() *fakeChip {
	c := &fakeChip{}
	for i := range c.regs {
		c.regs[i] = []byte{0}
	}
	c.regs[CONFIG] = []byte{0x08}
	c.regs[EN_AA] = []byte{0x3F}
	c.regs[EN_RXADDR] = []byte{0x03}
	c.regs[SETUP_AW] = []byte{0x03}
	c.regs[SETUP_RETR] = []byte{0x03}
	c.regs[RF_CH] = []byte{0x02}
	c.regs[RF_SETUP] = []byte{0x0F}
	c.regs[RX_ADDR_P0] = []byte{0xE7, 0xE7, 0xE7, 0xE7, 0xE7}
	c.regs[RX_ADDR_P1] = []byte{0xC2, 0xC2, 0xC2, 0xC2, 0xC2}
	c.regs[RX_ADDR_P2] = []byte{0xC3}
	c.regs[RX_ADDR_P3] = []byte{0xC4}
	c.regs[RX_ADDR_P4] = []byte{0xC5}
	c.regs[RX_ADDR_P5] = []byte{0xC6}
	c.regs[TX_ADDR] = []byte{0xE7, 0xE7, 0xE7, 0xE7, 0xE7}
	return c
}

func (c *fakeChip) fail() error {
	c.calls++
	if c.failAfter > 0 && c.calls >= c.failAfter {
		return errBus
	}
	return nil
}

func (c *fakeChip) status() Status {
	s := c.irq & Interrupts
	if len(c.rx) == 0 {
		s |= 7 << RX_P_NO
	} else {
		s |= Status(c.rx[0].pipe) << RX_P_NO
	}
	if c.txFull || len(c.tx) == 3 {
		s |= StatusTxFull
	}
	return s
}

func (c *fakeChip) fifoStatus() byte {
	var f FIFO
	if len(c.rx) == 0 {
		f |= FIFORxEmpty
	}
	if len(c.rx) == 3 {
		f |= FIFORxFull
	}
	if len(c.tx) == 0 && !c.txFull {
		f |= FIFOTxEmpty
	}
	if c.txFull || len(c.tx) == 3 {
		f |= FIFOTxFull
	}
	return byte(f)
}

func (c *fakeChip) reg(reg Register) []byte {
	switch reg {
	case STATUS:
		return []byte{byte(c.status())}
	case FIFO_STATUS:
		return []byte{c.fifoStatus()}
	}
	return c.regs[reg]
}

func (c *fakeChip) AssertChipSelect() error {
	if err := c.fail(); err != nil {
		return err
	}
	if c.selected {
		return errors.New("chip select already asserted")
	}
	c.selected = true
	c.cur = &xfer{}
	c.started = false
	c.resp = nil
	return nil
}

func (c *fakeChip) ReleaseChipSelect() error {
	if !c.selected {
		return errors.New("chip select not asserted")
	}
	c.selected = false
	if c.started {
		c.execute(*c.cur)
		c.xfers = append(c.xfers, *c.cur)
	}
	return c.fail()
}

func (c *fakeChip) EnableHigh() error {
	if !c.ce {
		c.cePulses++
		c.transmit()
	}
	c.ce = true
	return c.fail()
}

// transmit sends the head of the TX FIFO when CE rises in PTX mode.
func (c *fakeChip) transmit() {
	if isSet(c.regs[CONFIG][0], PRIM_RX) || len(c.tx) == 0 {
		return
	}
	if c.dropAcks {
		c.irq |= StatusMaxRT
		return
	}
	c.sent = append(c.sent, c.tx[0])
	c.tx = c.tx[1:]
	c.irq |= StatusTxDS
}

func (c *fakeChip) EnableLow() error {
	c.ce = false
	return c.fail()
}

// begin latches the command byte and prepares the response.
func (c *fakeChip) begin(cmd Command) {
	c.started = true
	c.cur.cmd = cmd
	switch {
	case cmd < W_REGISTER:
		c.resp = append([]byte(nil), c.reg(Register(cmd&registerMask))...)
	case cmd == R_RX_PL_WID:
		if len(c.rx) != 0 {
			c.resp = []byte{byte(len(c.rx[0].payload))}
		}
	case cmd == R_RX_PAYLOAD:
		if len(c.rx) != 0 {
			c.resp = append([]byte(nil), c.rx[0].payload...)
		}
	}
}

func (c *fakeChip) WriteBytes(p []byte) error {
	if err := c.fail(); err != nil {
		return err
	}
	if !c.selected {
		return errors.New("write without chip select")
	}
	if len(p) == 0 {
		return nil
	}
	if !c.started {
		c.begin(Command(p[0]))
		p = p[1:]
	}
	c.cur.data = append(c.cur.data, p...)
	return nil
}

func (c *fakeChip) ReadBytes(n int) ([]byte, error) {
	if err := c.fail(); err != nil {
		return nil, err
	}
	if !c.selected {
		return nil, errors.New("read without chip select")
	}
	buf := make([]byte, n)
	if !c.started {
		// The first byte clocked out is a NOP; STATUS comes back.
		buf[0] = byte(c.status())
		c.begin(NOP)
		copy(buf[1:], c.resp)
		return buf, nil
	}
	copy(buf, c.resp)
	if len(c.resp) > n {
		c.resp = c.resp[n:]
	} else {
		c.resp = nil
	}
	return buf, nil
}

func (c *fakeChip) execute(x xfer) {
	switch {
	case x.cmd < W_REGISTER:
	case x.cmd < ACTIVATE:
		reg := Register(x.cmd & registerMask)
		if len(x.data) == 0 {
			return
		}
		if reg == STATUS {
			c.irq &^= Status(x.data[0]) & Interrupts
			return
		}
		c.regs[reg] = append([]byte(nil), x.data...)
	case x.cmd == W_TX_PAYLOAD || x.cmd == W_TX_PAYLOAD_NOACK:
		if len(c.tx) < 3 {
			c.tx = append(c.tx, x.data)
		}
	case x.cmd&^7 == W_ACK_PAYLOAD:
		c.ack[x.cmd&7] = x.data
	case x.cmd == R_RX_PAYLOAD:
		if len(c.rx) != 0 {
			c.rx = c.rx[1:]
		}
	case x.cmd == FLUSH_TX:
		c.tx = nil
	case x.cmd == FLUSH_RX:
		c.rx = nil
	}
}

// resetLog forgets the transactions so far.
func (c *fakeChip) resetLog() {
	c.xfers = nil
}

// count returns the number of transactions with the given command.
func (c *fakeChip) count(cmd Command) int {
	n := 0
	for _, x := range c.xfers {
		if x.cmd == cmd {
			n++
		}
	}
	return n
}

// writes returns the data of every write to reg.
func (c *fakeChip) writes(reg Register) [][]byte {
	var w [][]byte
	for _, x := range c.xfers {
		if x.cmd == W_REGISTER|Command(reg) {
			w = append(w, x.data)
		}
	}
	return w
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = quietLogger()
	return cfg
}

func newTestRadio(t *testing.T) (*Radio, *fakeChip) {
	t.Helper()
	return newTestRadioConfig(t, testConfig())
}

func newTestRadioConfig(t *testing.T, cfg Config) (*Radio, *fakeChip) {
	t.Helper()
	c := newFakeChip()
	r, err := New(c, cfg)
	require.NoError(t, err)
	require.False(t, c.selected)
	c.resetLog()
	return r, c
}
