package nrf24

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Transport selectors for Config.Transport.
const (
	TransportSpidev = "spidev"
	TransportPeriph = "periph"
)

const (
	defaultChannel  = 76
	defaultSPISpeed = 1000000 // Hz
	defaultAW       = 5

	// hardwareCS leaves chip select to the SPI controller.
	hardwareCS = 0
)

// Retries configures automatic retransmission (see SetRetries).
type Retries struct {
	Delay int `yaml:"delay"`
	Count int `yaml:"count"`
}

// Config holds the construction parameters of a Radio.
type Config struct {
	// Transport selects the Transport used by Open.
	Transport string `yaml:"transport"`
	// SPIDevice is the spidev path, or the periph.io SPI port name.
	SPIDevice string `yaml:"spi_device"`
	SPISpeed  int    `yaml:"spi_speed"`
	CEPin     int    `yaml:"ce_pin"`
	// CSNPin is a GPIO used as chip select instead of the controller's own.
	CSNPin int `yaml:"csn_pin"`

	// PayloadSize is the static payload size, clamped to 1..32.
	PayloadSize int        `yaml:"payload_size"`
	Channel     int        `yaml:"channel"`
	DataRate    DataRate   `yaml:"data_rate"`
	Power       Power      `yaml:"power"`
	CRCLength   *CRCLength `yaml:"crc_length"` // nil keeps the 16-bit CRC; "none" disables it
	Retries     *Retries   `yaml:"retries"`
	// AddressWidth defaults to 5.
	AddressWidth int `yaml:"address_width"`

	Verbose  bool `yaml:"verbose"`
	TraceBus bool `yaml:"trace_bus"`

	// Logger defaults to the package logger.
	Logger *logrus.Logger `yaml:"-"`
}

// DefaultConfig returns the configuration for the platform's usual wiring.
func DefaultConfig() Config {
	return Config{
		Transport:    TransportSpidev,
		SPIDevice:    spiDevice,
		SPISpeed:     defaultSPISpeed,
		CEPin:        cePin,
		CSNPin:       hardwareCS,
		PayloadSize:  MaxPayloadSize,
		Channel:      defaultChannel,
		DataRate:     Rate1Mbps,
		Power:        PowerMax,
		CRCLength:    crcLength(CRC16),
		AddressWidth: defaultAW,
	}
}

func crcLength(c CRCLength) *CRCLength {
	return &c
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

func (cfg Config) payloadSize() int {
	if cfg.PayloadSize <= 0 || cfg.PayloadSize > MaxPayloadSize {
		return MaxPayloadSize
	}
	return cfg.PayloadSize
}

// logger returns the radio's log entry. Verbose and TraceBus raise the
// level of cfg.Logger, or of a private copy of the package logger.
func (cfg Config) logger() *logrus.Entry {
	level := logrus.PanicLevel
	switch {
	case cfg.TraceBus:
		level = logrus.TraceLevel
	case cfg.Verbose:
		level = logrus.DebugLevel
	}
	l := cfg.Logger
	switch {
	case l != nil:
		if !l.IsLevelEnabled(level) {
			l.SetLevel(level)
		}
	case log.IsLevelEnabled(level):
		l = log
	default:
		l = &logrus.Logger{
			Out:          log.Out,
			Hooks:        log.Hooks,
			Formatter:    log.Formatter,
			ReportCaller: log.ReportCaller,
			Level:        level,
			ExitFunc:     log.ExitFunc,
		}
	}
	return l.WithField("device", cfg.SPIDevice)
}
