package nrf24

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRegister(t *testing.T) {
	for _, reg := range AllRegisters {
		t.Run(reg.String(), func(t *testing.T) {
			r, ok := ParseRegister(reg.String())
			assert.True(t, ok)
			assert.Equal(t, reg, r)
		})
	}
	cases := []struct {
		name string
		reg  Register
		ok   bool
	}{
		{"NRF_STATUS", STATUS, true},
		{"CD", RPD, true},
		{"RPD", RPD, true},
		{"OBSERVE_TX", OBSERVE_TX, true},
		{"config", 0, false},
		{"BOGUS", 0, false},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("alias_%s", c.name), func(t *testing.T) {
			r, ok := ParseRegister(c.name)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.reg, r)
		})
	}
}

func TestRegisterString(t *testing.T) {
	assert.Equal(t, "FIFO_STATUS", FIFO_STATUS.String())
	assert.Equal(t, "Register(0x18)", Register(0x18).String())
	assert.True(t, RX_ADDR_P1.isAddress())
	assert.False(t, RX_ADDR_P2.isAddress())
}

func TestCommandString(t *testing.T) {
	cases := []struct {
		cmd  Command
		name string
	}{
		{R_REGISTER | Command(STATUS), "R_REGISTER(STATUS)"},
		{W_REGISTER | Command(RF_CH), "W_REGISTER(RF_CH)"},
		{ACTIVATE, "ACTIVATE"},
		{R_RX_PL_WID, "R_RX_PL_WID"},
		{R_RX_PAYLOAD, "R_RX_PAYLOAD"},
		{W_TX_PAYLOAD, "W_TX_PAYLOAD"},
		{W_ACK_PAYLOAD | 2, "W_ACK_PAYLOAD(2)"},
		{W_TX_PAYLOAD_NOACK, "W_TX_PAYLOAD_NOACK"},
		{FLUSH_TX, "FLUSH_TX"},
		{FLUSH_RX, "FLUSH_RX"},
		{REUSE_TX_PL, "REUSE_TX_PL"},
		{NOP, "NOP"},
		{Command(0x70), "Command(0x70)"},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("cmd_%02X", byte(c.cmd)), func(t *testing.T) {
			assert.Equal(t, c.name, c.cmd.String())
		})
	}
}
