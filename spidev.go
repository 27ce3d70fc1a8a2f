package nrf24

import (
	"github.com/ecc1/gpio"
	"github.com/ecc1/spi"
	"github.com/pkg/errors"
)

// SpidevTransport drives the bus through a Linux spidev device,
// with CE on a sysfs GPIO pin. Each chip-select transaction is sent
// as one spidev transfer, framed by the controller's chip select
// or, if cfg.CSNPin is set, by that GPIO under the spi package's control.
type SpidevTransport struct {
	device *spi.Device
	ce     gpio.OutputPin
	frame  frame
}

// OpenSpidev opens cfg.SPIDevice and the CE pin.
func OpenSpidev(cfg Config) (*SpidevTransport, error) {
	speed := cfg.SPISpeed
	if speed == 0 {
		speed = defaultSPISpeed
	}
	t := &SpidevTransport{}
	var err error
	t.device, err = spi.Open(cfg.SPIDevice, speed, cfg.CSNPin)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.SPIDevice)
	}
	t.ce, err = gpio.Output(cfg.CEPin, false, false)
	if err != nil {
		_ = t.device.Close()
		return nil, errors.Wrapf(err, "CE pin %d", cfg.CEPin)
	}
	return t, nil
}

func (t *SpidevTransport) transfer(w, r []byte) error {
	return t.device.Transfer(w, r)
}

// AssertChipSelect starts a transaction.
func (t *SpidevTransport) AssertChipSelect() error { return t.frame.begin() }

// ReleaseChipSelect sends any pending bytes and ends the transaction.
func (t *SpidevTransport) ReleaseChipSelect() error { return t.frame.end(t.transfer) }

// EnableHigh drives CE high.
func (t *SpidevTransport) EnableHigh() error { return t.ce.Write(true) }

// EnableLow drives CE low.
func (t *SpidevTransport) EnableLow() error { return t.ce.Write(false) }

// WriteBytes queues p for the current transaction.
func (t *SpidevTransport) WriteBytes(p []byte) error { return t.frame.write(p) }

// ReadBytes sends the queued bytes followed by n NOPs
// and returns the last n bytes received.
func (t *SpidevTransport) ReadBytes(n int) ([]byte, error) {
	return t.frame.read(n, t.transfer)
}

// Close closes the spidev device.
func (t *SpidevTransport) Close() error {
	return t.device.Close()
}
