package tapstack

import (
	"encoding/binary"
	"net"
)

// SizeIPv4Header is the size of an IPv4 header with no options
// (IHL == 5).
const SizeIPv4Header = 20

// IPProtocol is the IPv4 "protocol" field identifying the payload.
type IPProtocol uint8

const (
	IPProtocolICMP IPProtocol = 1
	IPProtocolIGMP IPProtocol = 2
	IPProtocolTCP  IPProtocol = 6
	IPProtocolUDP  IPProtocol = 17
)

func (p IPProtocol) String() string {
	switch p {
	case IPProtocolICMP:
		return "ICMP"
	case IPProtocolIGMP:
		return "IGMP"
	case IPProtocolTCP:
		return "TCP"
	case IPProtocolUDP:
		return "UDP"
	default:
		return "IPProtocol(" + u32toa(uint32(p)) + ")"
	}
}

// IPFlags is the combined 16-bit flags/fragment-offset field: high 3
// bits are flags, low 13 bits are the fragment offset in 8-byte units.
type IPFlags uint16

const (
	ipFlagReserved   = 0x8000
	ipFlagDontFrag   = 0x4000
	ipFlagMoreFrag   = 0x2000
	ipFragOffsetMask = 0x1fff
)

func (f IPFlags) DontFragment() bool     { return f&ipFlagDontFrag != 0 }
func (f IPFlags) MoreFragments() bool    { return f&ipFlagMoreFrag != 0 }
func (f IPFlags) FragmentOffset() uint16 { return uint16(f) & ipFragOffsetMask }

// IPv4Header is the fixed 20-byte IPv4 header, excluding options.
type IPv4Header struct {
	Version     uint8 // high nibble of byte 0
	IHL         uint8 // low nibble of byte 0, in 32-bit words
	ToS         uint8
	TotalLength uint16
	ID          uint16
	Flags       IPFlags
	TTL         uint8
	Protocol    IPProtocol
	Checksum    uint16
	Source      [4]byte
	Destination [4]byte
}

// DecodeIPv4Header parses buf, which must be at least SizeIPv4Header
// bytes long, into an IPv4Header. The version/IHL byte is split into
// its two nibbles per spec §6.
func DecodeIPv4Header(buf []byte) (hdr IPv4Header) {
	_ = buf[SizeIPv4Header-1]
	hdr.Version = buf[0] >> 4
	hdr.IHL = buf[0] & 0x0f
	hdr.ToS = buf[1]
	hdr.TotalLength = binary.BigEndian.Uint16(buf[2:4])
	hdr.ID = binary.BigEndian.Uint16(buf[4:6])
	hdr.Flags = IPFlags(binary.BigEndian.Uint16(buf[6:8]))
	hdr.TTL = buf[8]
	hdr.Protocol = IPProtocol(buf[9])
	hdr.Checksum = binary.BigEndian.Uint16(buf[10:12])
	copy(hdr.Source[:], buf[12:16])
	copy(hdr.Destination[:], buf[16:20])
	return hdr
}

// Put serializes hdr into buf, which must be at least SizeIPv4Header
// bytes long. Returns the number of bytes written.
func (hdr *IPv4Header) Put(buf []byte) int {
	_ = buf[SizeIPv4Header-1]
	buf[0] = hdr.Version<<4 | hdr.IHL&0x0f
	buf[1] = hdr.ToS
	binary.BigEndian.PutUint16(buf[2:4], hdr.TotalLength)
	binary.BigEndian.PutUint16(buf[4:6], hdr.ID)
	binary.BigEndian.PutUint16(buf[6:8], uint16(hdr.Flags))
	buf[8] = hdr.TTL
	buf[9] = uint8(hdr.Protocol)
	binary.BigEndian.PutUint16(buf[10:12], hdr.Checksum)
	copy(buf[12:16], hdr.Source[:])
	copy(buf[16:20], hdr.Destination[:])
	return SizeIPv4Header
}

// Reversed returns a copy of hdr with source and destination swapped.
func (hdr IPv4Header) Reversed() IPv4Header {
	hdr.Source, hdr.Destination = hdr.Destination, hdr.Source
	return hdr
}

// ComputeChecksum returns the IPv4 header checksum: the RFC 1071 sum
// over hdr serialized with its Checksum field zeroed.
func (hdr IPv4Header) ComputeChecksum() uint16 {
	hdr.Checksum = 0
	var buf [SizeIPv4Header]byte
	hdr.Put(buf[:])
	var acc Accumulator
	acc.Write(buf[:])
	return acc.Sum()
}

func (hdr *IPv4Header) String() string {
	return "IPv4 " + net.IP(hdr.Source[:]).String() + " -> " + net.IP(hdr.Destination[:]).String() +
		" proto " + hdr.Protocol.String() + " len " + u32toa(uint32(hdr.TotalLength))
}
