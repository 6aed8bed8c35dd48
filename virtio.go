package tapstack

import "encoding/binary"

// SizeVirtioNetHeader is the size of the optional virtio-net header
// some TAP devices prepend to every frame.
const SizeVirtioNetHeader = 12

// Virtio-net header flag bits.
const (
	VirtioNetHdrFlagNeedsChecksum uint8 = 1 << 0
	VirtioNetHdrFlagDataValid     uint8 = 1 << 1
)

// VirtioNetHeader is the 12-byte header some TAP devices prepend to
// every Ethernet frame when the IFF_VNET_HDR flag is set. Unlike the
// Ethernet/IP/TCP headers it wraps, its multi-byte fields are not in
// network order: DecodeVirtioNetHeader and Put read and write them
// little-endian, which matches host byte order on little-endian hosts
// only; big-endian hosts are not handled.
type VirtioNetHeader struct {
	Flags         uint8
	GSOType       uint8
	HdrLen        uint16
	GSOSize       uint16
	ChecksumStart uint16
	ChecksumOffset uint16
	NumBuffers    uint16
}

// DecodeVirtioNetHeader parses buf, which must be at least
// SizeVirtioNetHeader bytes long, into a VirtioNetHeader. Multi-byte
// fields are read little-endian, not network order.
func DecodeVirtioNetHeader(buf []byte) (hdr VirtioNetHeader) {
	_ = buf[SizeVirtioNetHeader-1]
	hdr.Flags = buf[0]
	hdr.GSOType = buf[1]
	hdr.HdrLen = binary.LittleEndian.Uint16(buf[2:4])
	hdr.GSOSize = binary.LittleEndian.Uint16(buf[4:6])
	hdr.ChecksumStart = binary.LittleEndian.Uint16(buf[6:8])
	hdr.ChecksumOffset = binary.LittleEndian.Uint16(buf[8:10])
	hdr.NumBuffers = binary.LittleEndian.Uint16(buf[10:12])
	return hdr
}

// Put serializes hdr into buf, which must be at least
// SizeVirtioNetHeader bytes long. Returns the number of bytes written.
func (hdr *VirtioNetHeader) Put(buf []byte) int {
	_ = buf[SizeVirtioNetHeader-1]
	buf[0] = hdr.Flags
	buf[1] = hdr.GSOType
	binary.LittleEndian.PutUint16(buf[2:4], hdr.HdrLen)
	binary.LittleEndian.PutUint16(buf[4:6], hdr.GSOSize)
	binary.LittleEndian.PutUint16(buf[6:8], hdr.ChecksumStart)
	binary.LittleEndian.PutUint16(buf[8:10], hdr.ChecksumOffset)
	binary.LittleEndian.PutUint16(buf[10:12], hdr.NumBuffers)
	return SizeVirtioNetHeader
}

// NeedsChecksum reports whether the enclosed frame's checksum was
// left for the receiver to compute (NEEDS_CSUM set in Flags).
func (hdr VirtioNetHeader) NeedsChecksum() bool {
	return hdr.Flags&VirtioNetHdrFlagNeedsChecksum != 0
}
