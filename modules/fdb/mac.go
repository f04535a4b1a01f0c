package fdb

import (
	"net"
)

// MAC is an EUI-48 hardware address. The fixed array makes the six-byte
// invariant hold by construction.
type MAC [6]byte

// ParseMAC parses a textual EUI-48 address, e.g. "00:11:22:33:44:55".
// Longer hardware address forms (EUI-64, InfiniBand) are rejected with a
// *RangeError.
func ParseMAC(s string) (MAC, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MAC{}, &RangeError{Field: "mac", Value: s}
	}
	return MACFromHardwareAddr(hw)
}

// MACFromHardwareAddr converts a net.HardwareAddr, which may have any
// length, into an EUI-48 address.
func MACFromHardwareAddr(hw net.HardwareAddr) (MAC, error) {
	if len(hw) != 6 {
		return MAC{}, &RangeError{Field: "mac", Value: hw.String()}
	}
	var m MAC
	copy(m[:], hw)
	return m, nil
}

// String formats the address in the canonical colon-separated form.
func (m MAC) String() string {
	return net.HardwareAddr(m[:]).String()
}

// IsZero reports whether the address is all-zero.
func (m MAC) IsZero() bool {
	return m == MAC{}
}

// IsUnicast reports whether the address is unicast. Multicast and
// broadcast sources must never be learned.
func (m MAC) IsUnicast() bool {
	return m[0]&0x01 == 0
}
