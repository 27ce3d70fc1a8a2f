package nrf24

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequency(t *testing.T) {
	cases := []struct {
		freq    uint32
		channel int
	}{
		{2400000000, 0},
		{2410400000, 10},
		{2476000000, 76},
		{2480600000, 81},
		{2525000000, 125},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("freq_%d", c.freq), func(t *testing.T) {
			r, _ := newTestRadio(t)
			r.SetFrequency(c.freq)
			require.NoError(t, r.Error())
			ch, err := r.Channel()
			require.NoError(t, err)
			assert.Equal(t, c.channel, ch)
			assert.Equal(t, 2400000000+uint32(c.channel)*1000000, r.Frequency())
		})
	}
}

func TestFrequencyOutOfRange(t *testing.T) {
	for _, freq := range []uint32{2300000000, 2600000000} {
		r, c := newTestRadio(t)
		r.SetFrequency(freq)
		assert.Equal(t, ErrBadChannel, r.Error())
		assert.Equal(t, []byte{76}, c.regs[RF_CH])
		// The error is sticky.
		r.SetFrequency(2410000000)
		assert.Equal(t, []byte{76}, c.regs[RF_CH])
		r.SetError(nil)
		r.Init(2410000000)
		assert.Equal(t, []byte{10}, c.regs[RF_CH])
	}
}

func TestSend(t *testing.T) {
	r, c := newTestRadio(t)
	require.NoError(t, r.StartListening())
	r.Send([]byte{1, 2, 3})
	require.NoError(t, r.Error())
	require.Len(t, c.sent, 1)
	assert.Equal(t, append([]byte{1, 2, 3}, make([]byte, 29)...), c.sent[0])
	assert.Zero(t, c.irq)
	assert.Equal(t, StateStandby, r.CurrentState())
	stats := r.Statistics()
	assert.Equal(t, 1, stats.Packets.Sent)
	assert.Equal(t, 3, stats.Bytes.Sent)
}

func TestSendNotAcknowledged(t *testing.T) {
	r, c := newTestRadio(t)
	c.dropAcks = true
	r.Send([]byte{1})
	assert.Equal(t, ErrMaxRetransmits, r.Error())
	assert.Empty(t, c.tx)
	assert.Zero(t, c.irq)
	assert.Empty(t, c.sent)
}

func TestReceive(t *testing.T) {
	cases := []struct {
		rpd  byte
		rssi int
	}{
		{1, -64},
		{0, -128},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("rpd_%d", c.rpd), func(t *testing.T) {
			r, chip := newTestRadio(t)
			payload := bytes.Repeat([]byte{0x42}, 32)
			chip.regs[RPD] = []byte{c.rpd}
			chip.rx = []rxPacket{{pipe: 1, payload: payload}}
			chip.irq = StatusRxDR
			data, rssi := r.Receive(0)
			require.NoError(t, r.Error())
			assert.Equal(t, payload, data)
			assert.Equal(t, c.rssi, rssi)
			assert.Equal(t, StateListening, r.CurrentState())
			assert.Zero(t, chip.irq)
			assert.Equal(t, 32, r.Statistics().Bytes.Received)
		})
	}
}

func TestReceiveTimeout(t *testing.T) {
	r, _ := newTestRadio(t)
	data, rssi := r.Receive(3 * time.Millisecond)
	require.NoError(t, r.Error())
	assert.Nil(t, data)
	assert.Equal(t, -128, rssi)
}

func TestSendAndReceive(t *testing.T) {
	r, c := newTestRadio(t)
	c.rx = []rxPacket{{pipe: 1, payload: []byte{7}}}
	data, _ := r.SendAndReceive([]byte{1}, 0)
	require.NoError(t, r.Error())
	assert.Len(t, c.sent, 1)
	assert.Equal(t, byte(7), data[0])
}

func TestRadioInfo(t *testing.T) {
	r, _ := newTestRadio(t)
	assert.Equal(t, "nRF24L01", r.Name())
	assert.Equal(t, DefaultConfig().SPIDevice, r.Device())
	assert.Equal(t, "standby", r.State())
	assert.Nil(t, r.Hardware())
	r.Reset()
	require.NoError(t, r.Error())
}

func TestSendIgnoresStaleFlags(t *testing.T) {
	r, c := newTestRadio(t)
	require.NoError(t, r.StopListening())
	_, err := r.Write([]byte{1}, Ack, DefaultWriteTimeout)
	require.NoError(t, err)
	require.True(t, c.irq.Has(StatusTxDS))

	c.dropAcks = true
	r.Send([]byte{2})
	assert.Equal(t, ErrMaxRetransmits, r.Error())
	assert.Zero(t, c.irq)
	assert.Empty(t, c.tx)
}

func TestResetDropsCE(t *testing.T) {
	r, c := newTestRadio(t)
	require.NoError(t, r.StartListening())
	require.True(t, c.ce)
	r.Reset()
	require.NoError(t, r.Error())
	assert.False(t, c.ce)
	assert.Equal(t, StateStandby, r.CurrentState())
	assert.Equal(t, []byte{0x0F}, c.regs[CONFIG])
}
