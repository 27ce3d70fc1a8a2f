package nrf24

// Configuration for Raspberry Pi (64-bit) with the nRF24L01 on SPI0 and CSN on CE0.

const (
	spiDevice = "/dev/spidev0.0"
	cePin     = 22
)
