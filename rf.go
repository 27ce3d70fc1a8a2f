package nrf24

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrBadSetting is returned when a data rate, power level or CRC
	// length is not recognized. Nothing is written in that case.
	ErrBadSetting = errors.New("nrf24: unrecognized setting")
	// ErrBadChannel is returned for channels above MaxChannel.
	ErrBadChannel = errors.New("nrf24: channel out of range")
)

// MaxChannel is the highest RF channel (2400 MHz + channel).
const MaxChannel = 125

// DataRate is an air data rate.
type DataRate int

// Data rates.
const (
	Rate1Mbps DataRate = iota
	Rate2Mbps
	Rate250Kbps
)

// rfSetupRate holds the RF_DR_LOW / RF_DR_HIGH pattern of each data rate.
var rfSetupRate = map[DataRate]byte{
	Rate250Kbps: bv(RF_DR_LOW),
	Rate1Mbps:   0,
	Rate2Mbps:   bv(RF_DR_HIGH),
}

func (d DataRate) String() string {
	switch d {
	case Rate250Kbps:
		return "250kbps"
	case Rate1Mbps:
		return "1mbps"
	case Rate2Mbps:
		return "2mbps"
	}
	return "DataRate(" + strconv.Itoa(int(d)) + ")"
}

// ParseDataRate accepts "250kbps", "1mbps" and "2mbps" as well as
// the numbers 250, 1, 1000, 2 and 2000.
func ParseDataRate(s string) (DataRate, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "250kbps", "rate_250kbps", "250":
		return Rate250Kbps, nil
	case "1mbps", "rate_1mbps", "1", "1000":
		return Rate1Mbps, nil
	case "2mbps", "rate_2mbps", "2", "2000":
		return Rate2Mbps, nil
	}
	return 0, ErrBadSetting
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DataRate) UnmarshalText(text []byte) error {
	v, err := ParseDataRate(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Power is a transmitter output power level.
type Power int

// Power levels.
const (
	PowerMax  Power = iota // 0dBm
	PowerHigh              // -6dBm
	PowerLow               // -12dBm
	PowerMin               // -18dBm
)

// rfSetupPower holds the RF_PWR pattern of each power level.
var rfSetupPower = map[Power]byte{
	PowerMin:  0,
	PowerLow:  2,
	PowerHigh: 4,
	PowerMax:  6,
}

// DBm returns the output power in dBm.
func (p Power) DBm() int {
	return -6 * int(p)
}

func (p Power) String() string {
	if _, ok := rfSetupPower[p]; !ok {
		return "Power(" + strconv.Itoa(int(p)) + ")"
	}
	return strconv.Itoa(p.DBm()) + "dBm"
}

// ParsePower accepts "min", "low", "high" and "max", a level in dBm
// such as "-12dBm", or its magnitude as used by the nRF24 libraries (18, 12, 6, 0).
func ParsePower(s string) (Power, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "min", "min_power":
		return PowerMin, nil
	case "low", "low_power":
		return PowerLow, nil
	case "high", "high_power":
		return PowerHigh, nil
	case "max", "max_power":
		return PowerMax, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "dbm"))
	if err != nil {
		return 0, ErrBadSetting
	}
	if n < 0 {
		n = -n
	}
	switch n {
	case 18:
		return PowerMin, nil
	case 12:
		return PowerLow, nil
	case 6:
		return PowerHigh, nil
	case 0:
		return PowerMax, nil
	}
	return 0, ErrBadSetting
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Power) UnmarshalText(text []byte) error {
	v, err := ParsePower(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// CRCLength is the length of the packet CRC.
type CRCLength int

// CRC lengths.
const (
	CRCDisabled CRCLength = 0
	CRC8        CRCLength = 8
	CRC16       CRCLength = 16
)

func (c CRCLength) String() string {
	switch c {
	case CRC8:
		return "crc8"
	case CRC16:
		return "crc16"
	}
	return "none"
}

// ParseCRCLength accepts 16, 2 and "crc16" for a 16-bit CRC and 8, 1 and
// "crc8" for an 8-bit CRC. Anything else disables the CRC.
func ParseCRCLength(s string) CRCLength {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "16", "2", "crc16", "crc_16":
		return CRC16
	case "8", "1", "crc8", "crc_8":
		return CRC8
	}
	return CRCDisabled
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CRCLength) UnmarshalText(text []byte) error {
	*c = ParseCRCLength(string(text))
	return nil
}

// Channel returns the RF channel.
func (r *Radio) Channel() (int, error) {
	ch, err := r.readRegister8(RF_CH)
	return int(ch), err
}

// SetChannel sets the RF channel (0 to 125).
func (r *Radio) SetChannel(ch int) error {
	if ch < 0 || ch > MaxChannel {
		return ErrBadChannel
	}
	return r.writeRegister(RF_CH, byte(ch))
}

// RFSetup sets the data rate and output power and returns the resulting RF_SETUP value.
// It returns ErrBadSetting without touching RF_SETUP if either is not recognized.
func (r *Radio) RFSetup(rate DataRate, power Power) (byte, error) {
	rateBits, ok := rfSetupRate[rate]
	if !ok {
		return 0, ErrBadSetting
	}
	powerBits, ok := rfSetupPower[power]
	if !ok {
		return 0, ErrBadSetting
	}
	if err := r.writeRegister(RF_SETUP, rateBits|powerBits); err != nil {
		return 0, err
	}
	return r.readRegister8(RF_SETUP)
}

// DataRate returns the configured data rate.
// RF_DR_LOW takes precedence over RF_DR_HIGH.
func (r *Radio) DataRate() (DataRate, error) {
	b, err := r.readRegister8(RF_SETUP)
	if err != nil {
		return 0, err
	}
	switch {
	case isSet(b, RF_DR_LOW):
		return Rate250Kbps, nil
	case isSet(b, RF_DR_HIGH):
		return Rate2Mbps, nil
	}
	return Rate1Mbps, nil
}

// PowerLevel returns the configured output power.
func (r *Radio) PowerLevel() (Power, error) {
	b, err := r.readRegister8(RF_SETUP)
	if err != nil {
		return 0, err
	}
	return PowerMin - Power(b>>RF_PWR_LOW&3), nil
}

// CRCLength returns the CRC length in use. The CRC is forced on when
// auto acknowledgment is enabled on any pipe.
func (r *Radio) CRCLength() (CRCLength, error) {
	config, err := r.readRegister8(CONFIG)
	if err != nil {
		return 0, err
	}
	aa, err := r.readRegister8(EN_AA)
	if err != nil {
		return 0, err
	}
	if !isSet(config, EN_CRC) && aa == 0 {
		return CRCDisabled, nil
	}
	if isSet(config, CRCO) {
		return CRC16, nil
	}
	return CRC8, nil
}

// SetCRCLength sets the CRC length. Lengths other than CRC8 and CRC16 disable the CRC.
func (r *Radio) SetCRCLength(length CRCLength) error {
	var set byte
	switch length {
	case CRC16:
		set = bv(EN_CRC) | bv(CRCO)
	case CRC8:
		set = bv(EN_CRC)
	}
	return r.updateRegister(CONFIG, set, bv(EN_CRC)|bv(CRCO))
}

// DisableCRC clears EN_CRC.
func (r *Radio) DisableCRC() error {
	return r.updateRegister(CONFIG, 0, bv(EN_CRC))
}

// SetRetries sets the auto retransmit delay, in units of 250µs beyond
// the first 250µs, and the number of retransmits. Both are 4 bits wide.
func (r *Radio) SetRetries(delay, count int) error {
	return r.writeRegister(SETUP_RETR, byte(delay&0xF)<<ARD|byte(count&0xF)<<ARC)
}

// Retries returns the auto retransmit delay and count.
func (r *Radio) Retries() (delay, count int, err error) {
	b, err := r.readRegister8(SETUP_RETR)
	if err != nil {
		return 0, 0, err
	}
	return int(b >> ARD), int(b & 0xF), nil
}

// RetryDelay converts a SETUP_RETR delay to a duration.
func RetryDelay(delay int) time.Duration {
	return time.Duration(delay&0xF+1) * 250 * time.Microsecond
}

// AddressWidth returns the address width in bytes.
func (r *Radio) AddressWidth() (int, error) {
	if r.addressWidth != 0 {
		return r.addressWidth, nil
	}
	aw, err := r.readRegister8(SETUP_AW)
	if err != nil {
		return 0, err
	}
	return int(aw&3) + 2, nil
}

// SetAddressWidth sets the address width. The chip stores (n-2) mod 4,
// so widths outside 2..5 wrap around.
func (r *Radio) SetAddressWidth(n int) error {
	aw := ((n-2)%4 + 4) % 4
	if err := r.writeRegister(SETUP_AW, byte(aw)); err != nil {
		return err
	}
	r.addressWidth = aw + 2
	return nil
}

// SetTxAddress sets TX_ADDR without touching pipe 0.
func (r *Radio) SetTxAddress(addr Address) error {
	a, err := r.fullAddress(addr)
	if err != nil {
		return err
	}
	return r.writeRegister(TX_ADDR, a...)
}

const powerUpDelay = 10 * time.Millisecond

// PowerUp sets PWR_UP and waits for the oscillator to settle
// if the chip was powered down.
func (r *Radio) PowerUp() error {
	config, err := r.readRegister8(CONFIG)
	if err != nil {
		return err
	}
	if isSet(config, PWR_UP) {
		return nil
	}
	if err := r.writeRegister(CONFIG, config|bv(PWR_UP)); err != nil {
		return err
	}
	time.Sleep(powerUpDelay)
	r.setState(StateStandby)
	return nil
}

// PowerDown drops CE and clears PWR_UP.
func (r *Radio) PowerDown() error {
	if err := r.bus.EnableLow(); err != nil {
		return err
	}
	if err := r.updateRegister(CONFIG, 0, bv(PWR_UP)); err != nil {
		return err
	}
	r.setState(StatePowerDown)
	return nil
}

func pipeMask(pipes []int) (byte, error) {
	if len(pipes) == 0 {
		return allPipes, nil
	}
	var mask byte
	for _, p := range pipes {
		if p < 0 || p >= NumPipes {
			return 0, ErrBadPipe
		}
		mask |= bv(uint(p))
	}
	return mask, nil
}

// EnableAutoAck enables auto acknowledgment on the given pipes, or on all pipes if none are given.
func (r *Radio) EnableAutoAck(pipes ...int) error {
	mask, err := pipeMask(pipes)
	if err != nil {
		return err
	}
	if len(pipes) == 0 {
		return r.writeRegister(EN_AA, mask)
	}
	return r.updateRegister(EN_AA, mask, 0)
}

// DisableAutoAck disables auto acknowledgment on the given pipes, or on all pipes if none are given.
func (r *Radio) DisableAutoAck(pipes ...int) error {
	mask, err := pipeMask(pipes)
	if err != nil {
		return err
	}
	if len(pipes) == 0 {
		return r.writeRegister(EN_AA, 0)
	}
	return r.updateRegister(EN_AA, 0, mask)
}

func (r *Radio) feature(bit uint) (bool, error) {
	f, err := r.readRegister8(FEATURE)
	return isSet(f, bit), err
}

// EnableDynamicPayloads turns on dynamic payload length on all pipes.
func (r *Radio) EnableDynamicPayloads() error {
	if err := r.updateRegister(FEATURE, bv(EN_DPL), 0); err != nil {
		return err
	}
	return r.writeRegister(DYNPD, allPipes)
}

// DisableDynamicPayloads turns off dynamic payload length on all pipes.
func (r *Radio) DisableDynamicPayloads() error {
	if err := r.updateRegister(FEATURE, 0, bv(EN_DPL)); err != nil {
		return err
	}
	return r.writeRegister(DYNPD, 0)
}

// DynamicPayloadsEnabled reports whether EN_DPL is set.
func (r *Radio) DynamicPayloadsEnabled() (bool, error) {
	return r.feature(EN_DPL)
}

// EnableDynamicAck allows W_TX_PAYLOAD_NOACK.
func (r *Radio) EnableDynamicAck() error {
	return r.updateRegister(FEATURE, bv(EN_DYN_ACK), 0)
}

// DisableDynamicAck disallows W_TX_PAYLOAD_NOACK.
func (r *Radio) DisableDynamicAck() error {
	return r.updateRegister(FEATURE, 0, bv(EN_DYN_ACK))
}

// DynamicAckEnabled reports whether EN_DYN_ACK is set.
func (r *Radio) DynamicAckEnabled() (bool, error) {
	return r.feature(EN_DYN_ACK)
}

// EnableAckPayload allows payloads in acknowledgment packets.
func (r *Radio) EnableAckPayload() error {
	return r.updateRegister(FEATURE, bv(EN_ACK_PAY), 0)
}

// DisableAckPayload disallows payloads in acknowledgment packets.
func (r *Radio) DisableAckPayload() error {
	return r.updateRegister(FEATURE, 0, bv(EN_ACK_PAY))
}

// AckPayloadEnabled reports whether EN_ACK_PAY is set.
func (r *Radio) AckPayloadEnabled() (bool, error) {
	return r.feature(EN_ACK_PAY)
}

// Activate sends ACTIVATE 0x73, which the non-plus nRF24L01 needs
// before FEATURE and DYNPD can be written. The plus variant ignores it.
func (r *Radio) Activate() error {
	_, err := r.sendCommand(ACTIVATE, 0, activateKey)
	return err
}

// FlushTx empties the TX FIFO.
func (r *Radio) FlushTx() error {
	_, err := r.sendCommand(FLUSH_TX, 0)
	return err
}

// FlushRx empties the RX FIFO.
func (r *Radio) FlushRx() error {
	_, err := r.sendCommand(FLUSH_RX, 0)
	return err
}
