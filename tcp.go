package tapstack

import "encoding/binary"

// SizeTCPHeader is the size of a TCP header with no options
// (data-offset == 5).
const SizeTCPHeader = 20

// tcpWordLen is the size in bytes of one TCP "word": the unit the
// data-offset field is expressed in.
const tcpWordLen = 4

// TCPFlags is the 8-bit control-flags field of a TCP header.
type TCPFlags uint8

const (
	FlagFIN TCPFlags = 1 << iota
	FlagSYN
	FlagRST
	FlagPSH
	FlagACK
	FlagURG
	FlagECE
	FlagCWR
)

// String renders flags in the conventional "[SYN,ACK]" form, FIN
// first through CWR last.
func (flags TCPFlags) String() string {
	const names = "FINSYNRSTPSHACKURGECECWR"
	var b [len("[FIN,SYN,RST,PSH,ACK,URG,ECE,CWR]")]byte
	n := 0
	for i := 0; i < 8; i++ {
		if flags&(1<<i) == 0 {
			continue
		}
		if n == 0 {
			b[n] = '['
			n++
		} else {
			b[n] = ','
			n++
		}
		copy(b[n:], names[i*3:i*3+3])
		n += 3
	}
	if n == 0 {
		return "[]"
	}
	b[n] = ']'
	n++
	return string(b[:n])
}

// TCPHeader is the fixed 20-byte TCP header, excluding options.
type TCPHeader struct {
	SourcePort      uint16
	DestinationPort uint16
	Seq             uint32
	Ack             uint32
	DataOffset      uint8 // in 32-bit words, i.e. data-offset*4 == header+options length
	Reserved        uint8 // low 4 bits of the data-offset/reserved byte
	Flags           TCPFlags
	Window          uint16
	Checksum        uint16
	Urgent          uint16
}

// DecodeTCPHeader parses buf, which must be at least SizeTCPHeader
// bytes long, into a TCPHeader.
func DecodeTCPHeader(buf []byte) (hdr TCPHeader) {
	_ = buf[SizeTCPHeader-1]
	hdr.SourcePort = binary.BigEndian.Uint16(buf[0:2])
	hdr.DestinationPort = binary.BigEndian.Uint16(buf[2:4])
	hdr.Seq = binary.BigEndian.Uint32(buf[4:8])
	hdr.Ack = binary.BigEndian.Uint32(buf[8:12])
	hdr.DataOffset = buf[12] >> 4
	hdr.Reserved = buf[12] & 0x0f
	hdr.Flags = TCPFlags(buf[13])
	hdr.Window = binary.BigEndian.Uint16(buf[14:16])
	hdr.Checksum = binary.BigEndian.Uint16(buf[16:18])
	hdr.Urgent = binary.BigEndian.Uint16(buf[18:20])
	return hdr
}

// Put serializes hdr into buf, which must be at least SizeTCPHeader
// bytes long. Returns the number of bytes written.
func (hdr *TCPHeader) Put(buf []byte) int {
	_ = buf[SizeTCPHeader-1]
	binary.BigEndian.PutUint16(buf[0:2], hdr.SourcePort)
	binary.BigEndian.PutUint16(buf[2:4], hdr.DestinationPort)
	binary.BigEndian.PutUint32(buf[4:8], hdr.Seq)
	binary.BigEndian.PutUint32(buf[8:12], hdr.Ack)
	buf[12] = hdr.DataOffset<<4 | hdr.Reserved&0x0f
	buf[13] = uint8(hdr.Flags)
	binary.BigEndian.PutUint16(buf[14:16], hdr.Window)
	binary.BigEndian.PutUint16(buf[16:18], hdr.Checksum)
	binary.BigEndian.PutUint16(buf[18:20], hdr.Urgent)
	return SizeTCPHeader
}

// OffsetBytes returns DataOffset converted to bytes: the length of
// the TCP header plus its options.
func (hdr *TCPHeader) OffsetBytes() uint16 { return uint16(hdr.DataOffset) * tcpWordLen }

func (hdr *TCPHeader) String() string {
	return "TCP " + u32toa(uint32(hdr.SourcePort)) + "->" + u32toa(uint32(hdr.DestinationPort)) +
		" " + hdr.Flags.String() + " seq " + u32toa(hdr.Seq) + " ack " + u32toa(hdr.Ack)
}
