// Package icmpecho implements the ICMPv4 echo responder described in
// spec §4.4: only EchoRequest is handled, the reply copies header and
// body, flips the type, and recomputes the checksum.
package icmpecho

import (
	"errors"

	"github.com/soypat/tapstack"
)

// ErrNotEchoRequest is returned by Reply when the inbound ICMP message
// is not an EchoRequest; the caller should drop the frame.
var ErrNotEchoRequest = errors.New("icmpecho: not an echo request")

// Reply builds an EchoReply for an inbound EchoRequest. payload is the
// variable-length echo body following the id/seq fields (spec §9: no
// fixed 48-byte slot). The returned header's Checksum is already
// computed over header+echo+payload.
func Reply(hdr tapstack.ICMPHeader, echo tapstack.ICMPEcho, payload []byte) (tapstack.ICMPHeader, tapstack.ICMPEcho, error) {
	if hdr.Type != tapstack.ICMPEchoRequest {
		return tapstack.ICMPHeader{}, tapstack.ICMPEcho{}, ErrNotEchoRequest
	}

	replyHdr := tapstack.ICMPHeader{
		Type:     tapstack.ICMPEchoReply,
		Code:     hdr.Code,
		Checksum: 0,
	}
	replyEcho := echo

	var acc tapstack.Accumulator
	var hbuf [tapstack.SizeICMPHeader]byte
	replyHdr.Put(hbuf[:])
	acc.Write(hbuf[:])
	var ebuf [tapstack.SizeICMPEcho]byte
	replyEcho.Put(ebuf[:])
	acc.Write(ebuf[:])
	acc.Write(payload)
	replyHdr.Checksum = acc.Sum()

	return replyHdr, replyEcho, nil
}
