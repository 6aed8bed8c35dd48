// Package diag renders a one-line human-readable summary of a frame,
// for the optional "print frames" runtime toggle (spec §6).
package diag

import (
	"strings"

	"github.com/soypat/tapstack"
)

// Frame renders one Ethernet frame as a single line: the Ethernet
// header, followed by the inner protocol's own summary. Frames too
// short to hold a full Ethernet header render as a length-only line;
// anything further truncated renders whatever layers could be parsed.
func Frame(b []byte) string {
	var sb strings.Builder
	if len(b) < tapstack.SizeEthernetHeader {
		sb.WriteString("short frame (")
		sb.WriteString(itoa(len(b)))
		sb.WriteString(" bytes)")
		return sb.String()
	}

	eth := tapstack.DecodeEthernetHeader(b)
	sb.WriteString(eth.String())
	rest := b[tapstack.SizeEthernetHeader:]

	switch eth.EtherType {
	case tapstack.EtherTypeARP:
		writeARP(&sb, rest)
	case tapstack.EtherTypeIPv4:
		writeIPv4(&sb, rest)
	}
	return sb.String()
}

func writeARP(sb *strings.Builder, rest []byte) {
	if len(rest) < tapstack.SizeArpHeader {
		return
	}
	hdr := tapstack.DecodeArpHeader(rest)
	sb.WriteString(" | ")
	sb.WriteString(hdr.String())
	if len(rest) < tapstack.SizeArpIPv4Packet {
		return
	}
	body := tapstack.DecodeArpIPv4Body(rest[tapstack.SizeArpHeader:])
	sb.WriteString(" ")
	sb.WriteString(body.String())
}

func writeIPv4(sb *strings.Builder, rest []byte) {
	if len(rest) < tapstack.SizeIPv4Header {
		return
	}
	ip := tapstack.DecodeIPv4Header(rest)
	sb.WriteString(" | ")
	sb.WriteString(ip.String())
	if ip.IHL != 5 {
		return
	}
	payload := rest[tapstack.SizeIPv4Header:]

	switch ip.Protocol {
	case tapstack.IPProtocolICMP:
		writeICMP(sb, payload)
	case tapstack.IPProtocolTCP:
		writeTCP(sb, payload)
	default:
		// No header type in this package describes this protocol; just
		// report how much payload follows.
		sb.WriteString(" | ")
		sb.WriteString(itoa(len(payload)))
		sb.WriteString(" bytes payload")
	}
}

func writeICMP(sb *strings.Builder, payload []byte) {
	if len(payload) < tapstack.SizeICMPHeader {
		return
	}
	hdr := tapstack.DecodeICMPHeader(payload)
	sb.WriteString(" | ")
	sb.WriteString(hdr.String())

	switch hdr.Type {
	case tapstack.ICMPEchoRequest, tapstack.ICMPEchoReply:
		if len(payload) < tapstack.SizeICMPHeader+tapstack.SizeICMPEcho {
			return
		}
		echo := tapstack.DecodeICMPEcho(payload[tapstack.SizeICMPHeader:])
		sb.WriteString(" id ")
		sb.WriteString(itoa(int(echo.ID)))
		sb.WriteString(" seq ")
		sb.WriteString(itoa(int(echo.Seq)))
	default:
		// No dedicated body type for this ICMP type (e.g.
		// DestinationUnreachable); report the remaining byte count
		// beyond the common header ICMPLayout describes.
		sb.WriteString(" ")
		sb.WriteString(itoa(len(payload) - tapstack.ICMPLayout.Size()))
		sb.WriteString(" bytes body")
	}
}

func writeTCP(sb *strings.Builder, payload []byte) {
	if len(payload) < tapstack.SizeTCPHeader {
		return
	}
	hdr := tapstack.DecodeTCPHeader(payload)
	sb.WriteString(" | ")
	sb.WriteString(hdr.String())
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
