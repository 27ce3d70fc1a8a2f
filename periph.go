package nrf24

import (
	"fmt"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// PeriphHost holds the periph.io host drivers.
// Create one per process and open every transport through it.
type PeriphHost struct {
	state *driverreg.State
}

// NewPeriphHost loads the periph.io host drivers.
func NewPeriphHost() (*PeriphHost, error) {
	state, err := host.Init()
	if err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}
	for _, f := range state.Failed {
		log.Warnf("periph driver %v: %v", f.D, f.Err)
	}
	return &PeriphHost{state: state}, nil
}

// PeriphTransport drives the bus through periph.io. Each chip-select
// transaction is sent as one Tx, framed by the port's chip select
// or by the optional CSN pin.
type PeriphTransport struct {
	port  spi.PortCloser
	conn  spi.Conn
	ce    gpio.PinOut
	csn   gpio.PinOut // nil for the port's own chip select
	frame frame
}

// Open opens the SPI port named by cfg.SPIDevice ("" for the first one),
// the CE pin and, if cfg.CSNPin is set, the CSN pin.
func (h *PeriphHost) Open(cfg Config) (*PeriphTransport, error) {
	speed := cfg.SPISpeed
	if speed == 0 {
		speed = defaultSPISpeed
	}
	port, err := spireg.Open(cfg.SPIDevice)
	if err != nil {
		return nil, errors.Wrapf(err, "open SPI port %q", cfg.SPIDevice)
	}
	conn, err := port.Connect(physic.Frequency(speed)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, errors.Wrap(err, "SPI connect")
	}
	t := &PeriphTransport{port: port, conn: conn}
	if t.ce, err = outputPin(cfg.CEPin, gpio.Low); err != nil {
		_ = port.Close()
		return nil, err
	}
	if cfg.CSNPin != hardwareCS {
		if t.csn, err = outputPin(cfg.CSNPin, gpio.High); err != nil {
			_ = port.Close()
			return nil, err
		}
	}
	return t, nil
}

func outputPin(n int, level gpio.Level) (gpio.PinOut, error) {
	name := fmt.Sprintf("GPIO%d", n)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, errors.Errorf("no pin %s", name)
	}
	if err := p.Out(level); err != nil {
		return nil, errors.Wrap(err, name)
	}
	return p, nil
}

func (t *PeriphTransport) transfer(w, r []byte) error {
	if t.csn == nil {
		return t.conn.Tx(w, r)
	}
	if err := t.csn.Out(gpio.Low); err != nil {
		return err
	}
	err := t.conn.Tx(w, r)
	if cerr := t.csn.Out(gpio.High); err == nil {
		err = cerr
	}
	return err
}

// AssertChipSelect starts a transaction.
func (t *PeriphTransport) AssertChipSelect() error { return t.frame.begin() }

// ReleaseChipSelect sends any pending bytes and ends the transaction.
func (t *PeriphTransport) ReleaseChipSelect() error { return t.frame.end(t.transfer) }

// EnableHigh drives CE high.
func (t *PeriphTransport) EnableHigh() error { return t.ce.Out(gpio.High) }

// EnableLow drives CE low.
func (t *PeriphTransport) EnableLow() error { return t.ce.Out(gpio.Low) }

// WriteBytes queues p for the current transaction.
func (t *PeriphTransport) WriteBytes(p []byte) error { return t.frame.write(p) }

// ReadBytes sends the queued bytes followed by n NOPs
// and returns the last n bytes received.
func (t *PeriphTransport) ReadBytes(n int) ([]byte, error) {
	return t.frame.read(n, t.transfer)
}

// Close closes the SPI port.
func (t *PeriphTransport) Close() error {
	return t.port.Close()
}
