package tapstack_test

import (
	"testing"

	"github.com/soypat/tapstack"
	"github.com/stretchr/testify/require"
)

func TestTCPHeaderRoundTrip(t *testing.T) {
	want := tapstack.TCPHeader{
		SourcePort:      12345,
		DestinationPort: 80,
		Seq:             8000,
		Ack:             0,
		DataOffset:      5,
		Reserved:        0,
		Flags:           tapstack.FlagSYN,
		Window:          65535,
		Checksum:        0,
		Urgent:          0,
	}
	var buf [tapstack.SizeTCPHeader]byte
	want.Put(buf[:])
	got := tapstack.DecodeTCPHeader(buf[:])
	require.Equal(t, want, got)
}

func TestTCPFlagsString(t *testing.T) {
	require.Equal(t, "[SYN,ACK]", (tapstack.FlagSYN | tapstack.FlagACK).String())
	require.Equal(t, "[]", tapstack.TCPFlags(0).String())
}

func TestTCPOffsetBytes(t *testing.T) {
	hdr := tapstack.TCPHeader{DataOffset: 6}
	require.Equal(t, uint16(24), hdr.OffsetBytes())
}

func TestTCPChecksumOverPseudoHeaderAndPayload(t *testing.T) {
	hdr := tapstack.TCPHeader{
		SourcePort: 1, DestinationPort: 2,
		Seq: 8000, Ack: 0, DataOffset: 5, Flags: tapstack.FlagSYN, Window: 1024,
	}
	pseudo := tapstack.TCPPseudoHeader{
		Source:      [4]byte{10, 0, 0, 1},
		Destination: [4]byte{10, 0, 0, 2},
		Protocol:    tapstack.IPProtocolTCP,
		TCPLength:   tapstack.SizeTCPHeader,
	}
	payload := []byte{}
	hdr.Checksum = tapstack.ComputeTCPChecksum(pseudo, hdr, nil, payload)

	var acc tapstack.Accumulator
	var pbuf [tapstack.SizeTCPPseudoHeader]byte
	pseudo.Put(pbuf[:])
	acc.Write(pbuf[:])
	var hbuf [tapstack.SizeTCPHeader]byte
	hdr.Put(hbuf[:])
	acc.Write(hbuf[:])
	require.Equal(t, uint16(0xffff), acc.Sum())
}
