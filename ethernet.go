package tapstack

import (
	"encoding/binary"
	"net"
)

// SizeEthernetHeader is the size in bytes of an Ethernet II header
// with no 802.1Q VLAN tag.
const SizeEthernetHeader = 14

// EtherType identifies the protocol encapsulated in an Ethernet frame.
type EtherType uint16

// Common EtherType values.
const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeARP  EtherType = 0x0806
	EtherTypeIPv6 EtherType = 0x86DD
	EtherTypeRARP EtherType = 0x8035
)

func (e EtherType) String() string {
	switch e {
	case EtherTypeIPv4:
		return "IPv4"
	case EtherTypeARP:
		return "ARP"
	case EtherTypeIPv6:
		return "IPv6"
	case EtherTypeRARP:
		return "RARP"
	default:
		return "EtherType(0x" + hex16(uint16(e)) + ")"
	}
}

// Broadcast is the link-layer broadcast address.
var Broadcast = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// EthernetHeader is the 14-byte Ethernet II header.
type EthernetHeader struct {
	Destination [6]byte
	Source      [6]byte
	EtherType   EtherType
}

// DecodeEthernetHeader parses buf, which must be at least
// SizeEthernetHeader bytes long, into an EthernetHeader.
func DecodeEthernetHeader(buf []byte) (hdr EthernetHeader) {
	_ = buf[SizeEthernetHeader-1]
	copy(hdr.Destination[:], buf[0:6])
	copy(hdr.Source[:], buf[6:12])
	hdr.EtherType = EtherType(binary.BigEndian.Uint16(buf[12:14]))
	return hdr
}

// Put serializes hdr into buf, which must be at least
// SizeEthernetHeader bytes long. Returns the number of bytes written.
func (hdr *EthernetHeader) Put(buf []byte) int {
	_ = buf[SizeEthernetHeader-1]
	copy(buf[0:6], hdr.Destination[:])
	copy(buf[6:12], hdr.Source[:])
	binary.BigEndian.PutUint16(buf[12:14], uint16(hdr.EtherType))
	return SizeEthernetHeader
}

// Reversed returns a copy of hdr with source and destination swapped,
// the transform the dispatcher applies to every outbound response.
func (hdr EthernetHeader) Reversed() EthernetHeader {
	hdr.Destination, hdr.Source = hdr.Source, hdr.Destination
	return hdr
}

func (hdr *EthernetHeader) String() string {
	return "dst: " + net.HardwareAddr(hdr.Destination[:]).String() +
		", src: " + net.HardwareAddr(hdr.Source[:]).String() +
		", etype: " + hdr.EtherType.String()
}

func hex16(v uint16) string {
	const hexdigits = "0123456789abcdef"
	return string([]byte{
		hexdigits[(v>>12)&0xf],
		hexdigits[(v>>8)&0xf],
		hexdigits[(v>>4)&0xf],
		hexdigits[v&0xf],
	})
}
