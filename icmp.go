package tapstack

import "encoding/binary"

// SizeICMPHeader and SizeICMPEcho are the byte sizes of the ICMP
// header and the id/seq prefix of an echo request/reply body. The
// echo body's actual payload is variable-length and bounded by the
// enclosing IPv4 total-length field, not a fixed slot - see spec §9.
const (
	SizeICMPHeader = 4
	SizeICMPEcho   = 4
)

// ICMPType is the ICMPv4 message type.
type ICMPType uint8

const (
	ICMPEchoReply             ICMPType = 0
	ICMPDestinationUnreachable ICMPType = 3
	ICMPEchoRequest           ICMPType = 8
)

func (t ICMPType) String() string {
	switch t {
	case ICMPEchoReply:
		return "EchoReply"
	case ICMPDestinationUnreachable:
		return "DestinationUnreachable"
	case ICMPEchoRequest:
		return "EchoRequest"
	default:
		return "ICMPType(" + u32toa(uint32(t)) + ")"
	}
}

// ICMPHeader is the 4-byte header common to all ICMPv4 messages.
type ICMPHeader struct {
	Type     ICMPType
	Code     uint8
	Checksum uint16
}

// DecodeICMPHeader parses buf, which must be at least SizeICMPHeader
// bytes long, into an ICMPHeader.
func DecodeICMPHeader(buf []byte) (hdr ICMPHeader) {
	_ = buf[SizeICMPHeader-1]
	hdr.Type = ICMPType(buf[0])
	hdr.Code = buf[1]
	hdr.Checksum = binary.BigEndian.Uint16(buf[2:4])
	return hdr
}

// Put serializes hdr into buf, which must be at least SizeICMPHeader
// bytes long. Returns the number of bytes written.
func (hdr *ICMPHeader) Put(buf []byte) int {
	_ = buf[SizeICMPHeader-1]
	buf[0] = uint8(hdr.Type)
	buf[1] = hdr.Code
	binary.BigEndian.PutUint16(buf[2:4], hdr.Checksum)
	return SizeICMPHeader
}

func (hdr *ICMPHeader) String() string {
	return "ICMP " + hdr.Type.String()
}

// ICMPEcho is the id/seq prefix of an echo request or reply body.
// The payload bytes that follow are opaque and caller-supplied.
type ICMPEcho struct {
	ID  uint16
	Seq uint16
}

// DecodeICMPEcho parses buf, which must be at least SizeICMPEcho
// bytes long, into an ICMPEcho.
func DecodeICMPEcho(buf []byte) (echo ICMPEcho) {
	_ = buf[SizeICMPEcho-1]
	echo.ID = binary.BigEndian.Uint16(buf[0:2])
	echo.Seq = binary.BigEndian.Uint16(buf[2:4])
	return echo
}

// Put serializes echo into buf, which must be at least SizeICMPEcho
// bytes long. Returns the number of bytes written.
func (echo *ICMPEcho) Put(buf []byte) int {
	_ = buf[SizeICMPEcho-1]
	binary.BigEndian.PutUint16(buf[0:2], echo.ID)
	binary.BigEndian.PutUint16(buf[2:4], echo.Seq)
	return SizeICMPEcho
}
