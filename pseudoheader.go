package tapstack

import "encoding/binary"

// SizeTCPPseudoHeader is the size of the IPv4 TCP pseudo-header used
// only as checksum input; it never appears on the wire.
const SizeTCPPseudoHeader = 12

// TCPPseudoHeader is the RFC 793 pseudo-header prepended to the TCP
// segment (header + options + payload) when computing its checksum.
type TCPPseudoHeader struct {
	Source      [4]byte
	Destination [4]byte
	Zero        uint8
	Protocol    IPProtocol
	TCPLength   uint16 // data-offset*4 + payload length, in bytes
}

// Put serializes h into buf, which must be at least
// SizeTCPPseudoHeader bytes long. Returns the number of bytes written.
func (h *TCPPseudoHeader) Put(buf []byte) int {
	_ = buf[SizeTCPPseudoHeader-1]
	copy(buf[0:4], h.Source[:])
	copy(buf[4:8], h.Destination[:])
	buf[8] = h.Zero
	buf[9] = uint8(h.Protocol)
	binary.BigEndian.PutUint16(buf[10:12], h.TCPLength)
	return SizeTCPPseudoHeader
}

// ComputeTCPChecksum returns the TCP checksum over the pseudo-header,
// the TCP header (with its Checksum field zeroed) and options, and the
// segment payload, chained through a single Accumulator per RFC 1071.
func ComputeTCPChecksum(pseudo TCPPseudoHeader, hdr TCPHeader, options, payload []byte) uint16 {
	hdr.Checksum = 0
	var acc Accumulator
	var pbuf [SizeTCPPseudoHeader]byte
	pseudo.Put(pbuf[:])
	acc.Write(pbuf[:])
	var hbuf [SizeTCPHeader]byte
	hdr.Put(hbuf[:])
	acc.Write(hbuf[:])
	acc.Write(options)
	acc.Write(payload)
	return acc.Sum()
}
