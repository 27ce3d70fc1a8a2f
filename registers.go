package nrf24

import "fmt"

// Register represents the 5-bit address of an nRF24L01 register.
type Register byte

// nRF24L01 registers.
const (
	CONFIG      Register = 0x00 // Configuration
	EN_AA       Register = 0x01 // Enable auto acknowledgment
	EN_RXADDR   Register = 0x02 // Enabled RX addresses
	SETUP_AW    Register = 0x03 // Address width (common for all pipes)
	SETUP_RETR  Register = 0x04 // Automatic retransmission
	RF_CH       Register = 0x05 // RF channel
	RF_SETUP    Register = 0x06 // Data rate and output power
	STATUS      Register = 0x07
	OBSERVE_TX  Register = 0x08 // Lost and retransmitted packet counters
	RPD         Register = 0x09 // Received power detector
	RX_ADDR_P0  Register = 0x0A // Pipe 0 address, LSByte first
	RX_ADDR_P1  Register = 0x0B // Pipe 1 address, LSByte first
	RX_ADDR_P2  Register = 0x0C // Pipe 2 LSByte; upper bytes from RX_ADDR_P1
	RX_ADDR_P3  Register = 0x0D
	RX_ADDR_P4  Register = 0x0E
	RX_ADDR_P5  Register = 0x0F
	TX_ADDR     Register = 0x10
	RX_PW_P0    Register = 0x11 // Static payload width of pipe 0 (0 = pipe unused)
	RX_PW_P1    Register = 0x12
	RX_PW_P2    Register = 0x13
	RX_PW_P3    Register = 0x14
	RX_PW_P4    Register = 0x15
	RX_PW_P5    Register = 0x16
	FIFO_STATUS Register = 0x17
	DYNPD       Register = 0x1C // Dynamic payload length per pipe
	FEATURE     Register = 0x1D

	// CD is the name of RPD on the non-plus nRF24L01.
	CD = RPD
)

const registerMask = 0x1F

var registerNames = [...]string{
	CONFIG:      "CONFIG",
	EN_AA:       "EN_AA",
	EN_RXADDR:   "EN_RXADDR",
	SETUP_AW:    "SETUP_AW",
	SETUP_RETR:  "SETUP_RETR",
	RF_CH:       "RF_CH",
	RF_SETUP:    "RF_SETUP",
	STATUS:      "STATUS",
	OBSERVE_TX:  "OBSERVE_TX",
	RPD:         "RPD",
	RX_ADDR_P0:  "RX_ADDR_P0",
	RX_ADDR_P1:  "RX_ADDR_P1",
	RX_ADDR_P2:  "RX_ADDR_P2",
	RX_ADDR_P3:  "RX_ADDR_P3",
	RX_ADDR_P4:  "RX_ADDR_P4",
	RX_ADDR_P5:  "RX_ADDR_P5",
	TX_ADDR:     "TX_ADDR",
	RX_PW_P0:    "RX_PW_P0",
	RX_PW_P1:    "RX_PW_P1",
	RX_PW_P2:    "RX_PW_P2",
	RX_PW_P3:    "RX_PW_P3",
	RX_PW_P4:    "RX_PW_P4",
	RX_PW_P5:    "RX_PW_P5",
	FIFO_STATUS: "FIFO_STATUS",
	DYNPD:       "DYNPD",
	FEATURE:     "FEATURE",
}

// AllRegisters lists every register in address order.
var AllRegisters = []Register{
	CONFIG, EN_AA, EN_RXADDR, SETUP_AW, SETUP_RETR, RF_CH, RF_SETUP, STATUS,
	OBSERVE_TX, RPD, RX_ADDR_P0, RX_ADDR_P1, RX_ADDR_P2, RX_ADDR_P3, RX_ADDR_P4,
	RX_ADDR_P5, TX_ADDR, RX_PW_P0, RX_PW_P1, RX_PW_P2, RX_PW_P3, RX_PW_P4,
	RX_PW_P5, FIFO_STATUS, DYNPD, FEATURE,
}

func (r Register) String() string {
	if int(r) < len(registerNames) && registerNames[r] != "" {
		return registerNames[r]
	}
	return fmt.Sprintf("Register(%#02x)", byte(r))
}

// ParseRegister returns the register with the given name.
// NRF_STATUS and CD are accepted as aliases.
func ParseRegister(name string) (Register, bool) {
	switch name {
	case "NRF_STATUS":
		return STATUS, true
	case "CD":
		return CD, true
	}
	for i, s := range registerNames {
		if s != "" && s == name {
			return Register(i), true
		}
	}
	return 0, false
}

// isAddress reports whether r holds a full multi-byte address.
func (r Register) isAddress() bool {
	return r == RX_ADDR_P0 || r == RX_ADDR_P1 || r == TX_ADDR
}

// Command represents an SPI command op-code.
type Command byte

const (
	R_REGISTER         Command = 0x00 // | register address
	W_REGISTER         Command = 0x20 // | register address
	ACTIVATE           Command = 0x50 // followed by 0x73; nRF24L01 (non-plus) only
	R_RX_PL_WID        Command = 0x60
	R_RX_PAYLOAD       Command = 0x61
	W_TX_PAYLOAD       Command = 0xA0
	W_ACK_PAYLOAD      Command = 0xA8 // | pipe
	W_TX_PAYLOAD_NOACK Command = 0xB0
	FLUSH_TX           Command = 0xE1
	FLUSH_RX           Command = 0xE2
	REUSE_TX_PL        Command = 0xE3
	NOP                Command = 0xFF
)

func (c Command) String() string {
	switch c {
	case R_RX_PL_WID:
		return "R_RX_PL_WID"
	case R_RX_PAYLOAD:
		return "R_RX_PAYLOAD"
	case W_TX_PAYLOAD:
		return "W_TX_PAYLOAD"
	case W_TX_PAYLOAD_NOACK:
		return "W_TX_PAYLOAD_NOACK"
	case FLUSH_TX:
		return "FLUSH_TX"
	case FLUSH_RX:
		return "FLUSH_RX"
	case REUSE_TX_PL:
		return "REUSE_TX_PL"
	case NOP:
		return "NOP"
	case ACTIVATE:
		return "ACTIVATE"
	}
	switch {
	case c < W_REGISTER:
		return "R_REGISTER(" + Register(c&registerMask).String() + ")"
	case c < ACTIVATE:
		return "W_REGISTER(" + Register(c&registerMask).String() + ")"
	case c&^7 == W_ACK_PAYLOAD:
		return fmt.Sprintf("W_ACK_PAYLOAD(%d)", byte(c&7))
	}
	return fmt.Sprintf("Command(%#02x)", byte(c))
}

// activateKey follows ACTIVATE to toggle the extended feature registers.
const activateKey = 0x73

// Bit positions.
const (
	// CONFIG
	MASK_RX_DR  = 6
	MASK_TX_DS  = 5
	MASK_MAX_RT = 4
	EN_CRC      = 3
	CRCO        = 2
	PWR_UP      = 1
	PRIM_RX     = 0

	// SETUP_RETR
	ARD = 4
	ARC = 0

	// STATUS
	RX_DR   = 6
	TX_DS   = 5
	MAX_RT  = 4
	RX_P_NO = 1 // bits 3:1
	TX_FULL = 0

	// OBSERVE_TX
	PLOS_CNT = 4 // bits 7:4
	ARC_CNT  = 0 // bits 3:0

	// FIFO_STATUS
	TX_REUSE      = 6
	FIFO_TX_FULL  = 5
	FIFO_TX_EMPTY = 4
	FIFO_RX_FULL  = 1
	FIFO_RX_EMPTY = 0

	// FEATURE
	EN_DPL     = 2
	EN_ACK_PAY = 1
	EN_DYN_ACK = 0

	// RF_SETUP
	CONT_WAVE   = 7
	RF_DR_LOW   = 5
	PLL_LOCK    = 4
	RF_DR_HIGH  = 3
	RF_PWR_HIGH = 2
	RF_PWR_LOW  = 1
	LNA_HCURR   = 0
)

const (
	// MaxPayloadSize is the size of one FIFO slot.
	MaxPayloadSize = 32

	// NumPipes is the number of receive pipes.
	NumPipes = 6

	allPipes = 1<<NumPipes - 1
)

func bv(bit uint) byte {
	return 1 << bit
}

func isSet(b byte, bit uint) bool {
	return b&bv(bit) != 0
}
