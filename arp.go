package tapstack

import (
	"encoding/binary"
	"net"
)

// SizeArpHeader and SizeArpIPv4Body are the byte sizes of the ARP
// header and its IPv4-over-Ethernet body.
const (
	SizeArpHeader     = 8
	SizeArpIPv4Body   = 20
	SizeArpIPv4Packet = SizeArpHeader + SizeArpIPv4Body
)

// ArpHardwareType identifies the network link protocol in an ARP header.
type ArpHardwareType uint16

// ArpHardwareEthernet is the only hardware type this stack accepts.
const ArpHardwareEthernet ArpHardwareType = 1

// ArpOpcode is the ARP operation: request or reply.
type ArpOpcode uint16

const (
	ArpRequest ArpOpcode = 1
	ArpReply   ArpOpcode = 2
)

func (op ArpOpcode) String() string {
	switch op {
	case ArpRequest:
		return "Request"
	case ArpReply:
		return "Reply"
	default:
		return "ArpOpcode(" + u32toa(uint32(op)) + ")"
	}
}

// ArpHeader is the 8-byte fixed portion of an ARP message, independent
// of the hardware/protocol address sizes that follow it.
type ArpHeader struct {
	HardwareType ArpHardwareType
	ProtoType    EtherType
	HardwareSize uint8
	ProtoSize    uint8
	Operation    ArpOpcode
}

// DecodeArpHeader parses buf, which must be at least SizeArpHeader
// bytes long, into an ArpHeader.
func DecodeArpHeader(buf []byte) (hdr ArpHeader) {
	_ = buf[SizeArpHeader-1]
	hdr.HardwareType = ArpHardwareType(binary.BigEndian.Uint16(buf[0:2]))
	hdr.ProtoType = EtherType(binary.BigEndian.Uint16(buf[2:4]))
	hdr.HardwareSize = buf[4]
	hdr.ProtoSize = buf[5]
	hdr.Operation = ArpOpcode(binary.BigEndian.Uint16(buf[6:8]))
	return hdr
}

// Put serializes hdr into buf, which must be at least SizeArpHeader
// bytes long. Returns the number of bytes written.
func (hdr *ArpHeader) Put(buf []byte) int {
	_ = buf[SizeArpHeader-1]
	binary.BigEndian.PutUint16(buf[0:2], uint16(hdr.HardwareType))
	binary.BigEndian.PutUint16(buf[2:4], uint16(hdr.ProtoType))
	buf[4] = hdr.HardwareSize
	buf[5] = hdr.ProtoSize
	binary.BigEndian.PutUint16(buf[6:8], uint16(hdr.Operation))
	return SizeArpHeader
}

// ArpIPv4Body is the 20-byte sender/target address block for an IPv4
// over Ethernet ARP message.
type ArpIPv4Body struct {
	SenderHardware [6]byte
	SenderProto    [4]byte
	TargetHardware [6]byte
	TargetProto    [4]byte
}

// DecodeArpIPv4Body parses buf, which must be at least
// SizeArpIPv4Body bytes long, into an ArpIPv4Body.
func DecodeArpIPv4Body(buf []byte) (body ArpIPv4Body) {
	_ = buf[SizeArpIPv4Body-1]
	copy(body.SenderHardware[:], buf[0:6])
	copy(body.SenderProto[:], buf[6:10])
	copy(body.TargetHardware[:], buf[10:16])
	copy(body.TargetProto[:], buf[16:20])
	return body
}

// Put serializes body into buf, which must be at least
// SizeArpIPv4Body bytes long. Returns the number of bytes written.
func (body *ArpIPv4Body) Put(buf []byte) int {
	_ = buf[SizeArpIPv4Body-1]
	copy(buf[0:6], body.SenderHardware[:])
	copy(buf[6:10], body.SenderProto[:])
	copy(buf[10:16], body.TargetHardware[:])
	copy(buf[16:20], body.TargetProto[:])
	return SizeArpIPv4Body
}

func (hdr *ArpHeader) String() string {
	return "ARP proto " + hdr.ProtoType.String() + " op " + hdr.Operation.String()
}

func (body *ArpIPv4Body) String() string {
	return "sender " + net.HardwareAddr(body.SenderHardware[:]).String() +
		"/" + net.IP(body.SenderProto[:]).String() +
		" -> target " + net.HardwareAddr(body.TargetHardware[:]).String() +
		"/" + net.IP(body.TargetProto[:]).String()
}

func u32toa(u uint32) string {
	if u == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return string(buf[i:])
}
