// Package tcpctl implements the TCP endpoint table described in spec
// §4.5: per-local-port state tracking the next outbound sequence
// number and the last emitted ack, driving SYN-ACK and data-ACK
// generation for a responder that never sends data, never
// retransmits, and never manages a receive window.
package tcpctl

import "github.com/soypat/tapstack"

// InitialSeq is the outbound sequence number assigned to a newly
// created endpoint, matching spec §8's worked scenarios.
const InitialSeq uint32 = 8000

// Endpoint holds the per-port state spec §4.5 names: the local and
// peer ports, the next outbound sequence number, and the last ack
// value already emitted (used to suppress duplicate ACKs). LastAck
// starts at 0, matching spec §4.5's stated initial state.
type Endpoint struct {
	LocalPort uint16
	PeerPort  uint16
	NextSeq   uint32
	LastAck   uint32
}

// Table is the TCP endpoint table, keyed by local (destination) port
// as spec §4.5/§9 specify for this subset. Entries are created lazily
// on first sight and never evicted. Table is accessed only from the
// single dispatcher goroutine (spec §5) and needs no synchronization.
type Table struct {
	endpoints map[uint16]*Endpoint
}

// NewTable returns an empty, ready-to-use Table.
func NewTable() *Table {
	return &Table{endpoints: make(map[uint16]*Endpoint)}
}

// endpointFor returns the endpoint for localPort, creating it with
// InitialSeq if this is the first sighting of that port.
func (t *Table) endpointFor(localPort, peerPort uint16) *Endpoint {
	ep, ok := t.endpoints[localPort]
	if !ok {
		ep = &Endpoint{LocalPort: localPort, PeerPort: peerPort, NextSeq: InitialSeq}
		t.endpoints[localPort] = ep
	}
	return ep
}

// Len returns the number of tracked endpoints, for tests and metrics.
func (t *Table) Len() int { return len(t.endpoints) }

// Reply implements spec §4.5 steps 1-4. incoming is the inbound TCP
// header; payloadLen is the size of the payload carried after the
// incoming header's options. ok is false when the computed ack
// duplicates the last one already emitted for this endpoint - no
// response should be sent.
func (t *Table) Reply(incoming tapstack.TCPHeader, payloadLen int) (out tapstack.TCPHeader, ok bool) {
	ep := t.endpointFor(incoming.DestinationPort, incoming.SourcePort)

	out = tapstack.TCPHeader{
		SourcePort:      incoming.DestinationPort,
		DestinationPort: incoming.SourcePort,
		DataOffset:      5,
		Flags:           tapstack.FlagACK,
		Window:          incoming.Window,
	}

	if incoming.Flags&tapstack.FlagSYN != 0 {
		out.Flags = tapstack.FlagSYN | tapstack.FlagACK
		out.Ack = incoming.Seq + 1
		out.Seq = ep.NextSeq
		ep.NextSeq++
	} else {
		out.Ack = incoming.Seq + uint32(payloadLen)
		out.Seq = ep.NextSeq
	}

	if out.Ack == ep.LastAck {
		return tapstack.TCPHeader{}, false
	}
	ep.LastAck = out.Ack
	return out, true
}
