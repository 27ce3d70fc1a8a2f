package nrf24

// Configuration for Intel Edison in 64-bit mode with the nRF24L01 on SPI5 and CSN on its chip select 1.

const (
	spiDevice = "/dev/spidev5.1"
	cePin     = 48
)
