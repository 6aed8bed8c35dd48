// Package dispatch implements the single-threaded frame dispatcher of
// spec §4.6: take one Ethernet frame already read by the caller, parse
// and demultiplex by
// EtherType and (for IPv4) IP protocol, and assemble any response by
// reversing addresses at each layer.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/soypat/tapstack"
	"github.com/soypat/tapstack/arpcache"
	"github.com/soypat/tapstack/icmpecho"
	"github.com/soypat/tapstack/internal/metrics"
	"github.com/soypat/tapstack/tcpctl"
)

// Drop reasons reported to logs and metrics.
const (
	ReasonShortRead            = "short_read"
	ReasonUnknownEtherType     = "unknown_ethertype"
	ReasonUnsupportedARPFamily = "unsupported_arp_family"
	ReasonUnsupportedIPOptions = "unsupported_ip_options"
	ReasonUnsupportedICMPType  = "unsupported_icmp_type"
	ReasonUnknownIPProtocol    = "unknown_ip_protocol"
	ReasonTCPChecksumMismatch  = "checksum_mismatch"
	ReasonTCPDuplicateAck      = "duplicate_ack"
	ReasonARPNotAddressedToUs  = "arp_not_addressed_to_us"
	ReasonTCPDataPastSegment   = "tcp_data_past_segment"
)

// ErrMalformedTCPOptions is the single intentional fatal condition of
// spec §7: a TCP option in the data-offset-bounded options region that
// tapstack.ParseTCPOption rejects - its declared length runs past the
// data-offset boundary, or a fixed-size option declares a different
// size. This indicates a parser invariant violation,
// not an ordinary network condition, and is surfaced distinctly so the
// caller can treat it as fatal.
var ErrMalformedTCPOptions = errors.New("dispatch: TCP option overruns data-offset boundary")

// malformedOptionsPanic is the internal panic value Process recovers
// from at the top of each call, converting it back into
// ErrMalformedTCPOptions wrapped with positional detail.
type malformedOptionsPanic struct{ detail string }

// Dispatcher holds the long-lived per-process state the dispatch loop
// consults for every frame: the ARP responder/cache and the TCP
// endpoint table. It is not safe for concurrent use - spec §5 requires
// a single dispatcher goroutine.
type Dispatcher struct {
	arp     *arpcache.Responder
	tcp     *tcpctl.Table
	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// New returns a Dispatcher that answers ARP/ICMP for ourIP/ourMAC.
func New(ourIP [4]byte, ourMAC [6]byte) *Dispatcher {
	return &Dispatcher{
		arp:    arpcache.NewResponder(ourIP, ourMAC),
		tcp:    tcpctl.NewTable(),
		Logger: slog.Default(),
	}
}

// ARPCache exposes the underlying translation cache, mainly for tests
// and diagnostics.
func (d *Dispatcher) ARPCache() *arpcache.Cache { return d.arp.Cache }

// TCPTable exposes the underlying endpoint table, mainly for tests and
// diagnostics.
func (d *Dispatcher) TCPTable() *tcpctl.Table { return d.tcp }

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d *Dispatcher) drop(reason string, args ...any) {
	d.Metrics.IncDropped(reason)
	d.logger().Debug("dropping frame", append([]any{slog.String("reason", reason)}, args...)...)
}

// Process handles one inbound Ethernet frame and returns the raw bytes
// of a response frame to write back, or nil if no response should be
// emitted. It never returns an error for ordinary protocol conditions
// (those are logged and dropped per spec §7); the only error it
// returns is ErrMalformedTCPOptions, which callers must treat as
// fatal and use to terminate the process with exit code 1.
func (d *Dispatcher) Process(frame []byte) (response []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			mop, ok := r.(malformedOptionsPanic)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("%w: %s", ErrMalformedTCPOptions, mop.detail)
		}
	}()

	d.Metrics.IncFramesRead()

	if len(frame) < tapstack.SizeEthernetHeader {
		d.drop(ReasonShortRead, slog.Int("len", len(frame)))
		return nil, nil
	}
	eth := tapstack.DecodeEthernetHeader(frame)
	rest := frame[tapstack.SizeEthernetHeader:]

	switch eth.EtherType {
	case tapstack.EtherTypeARP:
		return d.processARP(eth, rest), nil
	case tapstack.EtherTypeIPv4:
		return d.processIPv4(eth, rest), nil
	default:
		d.drop(ReasonUnknownEtherType, slog.String("ethertype", eth.EtherType.String()))
		return nil, nil
	}
}

func (d *Dispatcher) processARP(eth tapstack.EthernetHeader, rest []byte) []byte {
	if len(rest) < tapstack.SizeArpIPv4Packet {
		d.drop(ReasonShortRead, slog.String("layer", "arp"))
		return nil
	}
	hdr := tapstack.DecodeArpHeader(rest)
	if hdr.ProtoType != tapstack.EtherTypeIPv4 {
		d.drop(ReasonUnsupportedARPFamily)
		return nil
	}
	body := tapstack.DecodeArpIPv4Body(rest[tapstack.SizeArpHeader:])

	replyHdr, replyBody, ok := d.arp.Handle(hdr, body)
	if !ok {
		d.drop(ReasonARPNotAddressedToUs)
		return nil
	}
	d.Metrics.IncARPReply()

	// The Ethernet source is our own MAC, not the incoming destination:
	// ARP requests commonly arrive addressed to the broadcast address,
	// which would otherwise leak into the reply's source field.
	out := make([]byte, tapstack.SizeEthernetHeader+tapstack.SizeArpIPv4Packet)
	outEth := tapstack.EthernetHeader{
		Destination: eth.Source,
		Source:      replyBody.SenderHardware,
		EtherType:   tapstack.EtherTypeARP,
	}
	n := outEth.Put(out)
	n += replyHdr.Put(out[n:])
	replyBody.Put(out[n:])
	return out
}

func (d *Dispatcher) processIPv4(eth tapstack.EthernetHeader, rest []byte) []byte {
	if len(rest) < tapstack.SizeIPv4Header {
		d.drop(ReasonShortRead, slog.String("layer", "ipv4"))
		return nil
	}
	ip := tapstack.DecodeIPv4Header(rest)
	if ip.IHL != 5 {
		d.drop(ReasonUnsupportedIPOptions, slog.Int("ihl", int(ip.IHL)))
		return nil
	}
	packetEnd := int(ip.TotalLength) - tapstack.SizeIPv4Header
	payload := rest[tapstack.SizeIPv4Header:]
	if packetEnd < 0 || packetEnd > len(payload) {
		d.drop(ReasonShortRead, slog.String("layer", "ipv4-total-length"))
		return nil
	}
	payload = payload[:packetEnd]

	switch ip.Protocol {
	case tapstack.IPProtocolICMP:
		return d.processICMP(eth, ip, payload)
	case tapstack.IPProtocolTCP:
		return d.processTCP(eth, ip, payload)
	default:
		d.drop(ReasonUnknownIPProtocol, slog.String("protocol", ip.Protocol.String()))
		return nil
	}
}

func (d *Dispatcher) processICMP(eth tapstack.EthernetHeader, ip tapstack.IPv4Header, payload []byte) []byte {
	if len(payload) < tapstack.SizeICMPHeader+tapstack.SizeICMPEcho {
		d.drop(ReasonShortRead, slog.String("layer", "icmp"))
		return nil
	}
	hdr := tapstack.DecodeICMPHeader(payload)
	if hdr.Type != tapstack.ICMPEchoRequest {
		d.drop(ReasonUnsupportedICMPType, slog.String("type", hdr.Type.String()))
		return nil
	}
	echo := tapstack.DecodeICMPEcho(payload[tapstack.SizeICMPHeader:])
	echoPayload := payload[tapstack.SizeICMPHeader+tapstack.SizeICMPEcho:]

	replyHdr, replyEcho, err := icmpecho.Reply(hdr, echo, echoPayload)
	if err != nil {
		d.drop(ReasonUnsupportedICMPType)
		return nil
	}
	d.Metrics.IncICMPReply()

	outIP := ip.Reversed()
	outIP.Checksum = 0
	outIP.Checksum = outIP.ComputeChecksum()

	icmpLen := tapstack.SizeICMPHeader + tapstack.SizeICMPEcho + len(echoPayload)
	out := make([]byte, tapstack.SizeEthernetHeader+tapstack.SizeIPv4Header+icmpLen)
	outEth := eth.Reversed()
	n := outEth.Put(out)
	n += outIP.Put(out[n:])
	n += replyHdr.Put(out[n:])
	n += replyEcho.Put(out[n:])
	copy(out[n:], echoPayload)
	return out
}

func (d *Dispatcher) processTCP(eth tapstack.EthernetHeader, ip tapstack.IPv4Header, payload []byte) []byte {
	if len(payload) < tapstack.SizeTCPHeader {
		d.drop(ReasonShortRead, slog.String("layer", "tcp"))
		return nil
	}
	hdr := tapstack.DecodeTCPHeader(payload)
	offsetBytes := int(hdr.OffsetBytes())
	if offsetBytes < tapstack.SizeTCPHeader {
		d.drop(ReasonShortRead, slog.String("layer", "tcp-data-offset"))
		return nil
	}
	if offsetBytes > len(payload) {
		// Data-offset claims more header+options bytes than this
		// IP-total-length-bounded segment actually carries - a
		// malformed/truncated segment, not the options-overrun fatal
		// below. Drop silently per spec §7.
		d.drop(ReasonTCPDataPastSegment, slog.Int("offset_bytes", offsetBytes), slog.Int("segment_len", len(payload)))
		return nil
	}
	options := payload[tapstack.SizeTCPHeader:offsetBytes]
	segPayload := payload[offsetBytes:]

	consumeTCPOptions(options)

	pseudo := tapstack.TCPPseudoHeader{
		Source:      ip.Source,
		Destination: ip.Destination,
		Protocol:    tapstack.IPProtocolTCP,
		TCPLength:   uint16(offsetBytes + len(segPayload)),
	}
	want := tapstack.ComputeTCPChecksum(pseudo, hdr, options, segPayload)
	if want != hdr.Checksum {
		d.drop(ReasonTCPChecksumMismatch)
		return nil
	}

	outHdr, ok := d.tcp.Reply(hdr, len(segPayload))
	if !ok {
		d.drop(ReasonTCPDuplicateAck)
		return nil
	}
	d.Metrics.IncTCPReply()

	outIP := ip.Reversed()
	outIP.TotalLength = uint16(tapstack.SizeIPv4Header + tapstack.SizeTCPHeader)
	outIP.Checksum = 0
	outIP.Checksum = outIP.ComputeChecksum()

	outPseudo := tapstack.TCPPseudoHeader{
		Source:      outIP.Source,
		Destination: outIP.Destination,
		Protocol:    tapstack.IPProtocolTCP,
		TCPLength:   tapstack.SizeTCPHeader,
	}
	outHdr.Checksum = tapstack.ComputeTCPChecksum(outPseudo, outHdr, nil, nil)

	out := make([]byte, tapstack.SizeEthernetHeader+tapstack.SizeIPv4Header+tapstack.SizeTCPHeader)
	outEth := eth.Reversed()
	n := outEth.Put(out)
	n += outIP.Put(out[n:])
	outHdr.Put(out[n:])
	return out
}

// consumeTCPOptions walks options one option at a time via
// tapstack.ParseTCPOption, exactly as spec §4.6 describes. options is
// already the exact byte range between the TCP header and the
// data-offset boundary, so an option whose own declared size doesn't
// fit within what remains is the single sanctioned fatal condition of
// spec §7: the option's size field overruns the data-offset boundary
// itself, not merely the segment's IP-total-length bound already
// checked by the caller. Every other option ParseTCPOption rejects
// (a fixed-size option declaring a different size) takes the same
// fatal path.
func consumeTCPOptions(options []byte) {
	consumed := 0
	for consumed < len(options) {
		opt, n, err := tapstack.ParseTCPOption(options[consumed:])
		if err != nil {
			panic(malformedOptionsPanic{detail: fmt.Sprintf("tcp option at offset %d overruns data-offset boundary: %v", consumed, err)})
		}
		consumed += n
		if opt.Type == tapstack.TCPOptEndOfOptions {
			break
		}
	}
}
