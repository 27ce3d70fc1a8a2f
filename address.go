package nrf24

import (
	"encoding/hex"
	"errors"
	"strings"
)

// ErrBadAddress is returned for addresses that are too short for the pipe.
var ErrBadAddress = errors.New("nrf24: address too short")

// Address is a pipe address in the order it is sent over SPI:
// least significant byte first.
type Address []byte

// ParseAddress parses hexadecimal bytes, optionally separated by ':'
// as printed by String, e.g. "E7:E7:E7:E7:E7".
func ParseAddress(s string) (Address, error) {
	b, err := hex.DecodeString(strings.ReplaceAll(s, ":", ""))
	if err != nil {
		return nil, err
	}
	if len(b) == 0 || len(b) > 5 {
		return nil, ErrBadAddress
	}
	return Address(b), nil
}

func (a Address) String() string {
	s := strings.ToUpper(hex.EncodeToString(a))
	var b strings.Builder
	for i := 0; i < len(s); i += 2 {
		if i != 0 {
			b.WriteByte(':')
		}
		b.WriteString(s[i : i+2])
	}
	return b.String()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	v, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// fullAddress returns the first AddressWidth bytes of addr.
func (r *Radio) fullAddress(addr Address) ([]byte, error) {
	aw, err := r.AddressWidth()
	if err != nil {
		return nil, err
	}
	if len(addr) < aw {
		return nil, ErrBadAddress
	}
	return addr[:aw], nil
}
