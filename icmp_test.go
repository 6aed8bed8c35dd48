package tapstack_test

import (
	"testing"

	"github.com/soypat/tapstack"
	"github.com/stretchr/testify/require"
)

func TestICMPHeaderRoundTrip(t *testing.T) {
	want := tapstack.ICMPHeader{
		Type:     tapstack.ICMPEchoRequest,
		Code:     0,
		Checksum: 0x1234,
	}
	var buf [tapstack.SizeICMPHeader]byte
	want.Put(buf[:])
	got := tapstack.DecodeICMPHeader(buf[:])
	require.Equal(t, want, got)
}

func TestICMPEchoRoundTrip(t *testing.T) {
	want := tapstack.ICMPEcho{ID: 0xaaaa, Seq: 7}
	var buf [tapstack.SizeICMPEcho]byte
	want.Put(buf[:])
	got := tapstack.DecodeICMPEcho(buf[:])
	require.Equal(t, want, got)
}

func TestICMPEchoChecksumVariablePayload(t *testing.T) {
	hdr := tapstack.ICMPHeader{Type: tapstack.ICMPEchoRequest}
	echo := tapstack.ICMPEcho{ID: 1, Seq: 1}
	payload := []byte("some variable length payload, not pinned to 48 bytes")

	var hbuf [tapstack.SizeICMPHeader]byte
	hdr.Put(hbuf[:])
	var ebuf [tapstack.SizeICMPEcho]byte
	echo.Put(ebuf[:])

	var acc tapstack.Accumulator
	acc.Write(hbuf[:])
	acc.Write(ebuf[:])
	acc.Write(payload)
	hdr.Checksum = acc.Sum()

	hbuf = [tapstack.SizeICMPHeader]byte{}
	hdr.Put(hbuf[:])
	acc.Reset()
	acc.Write(hbuf[:])
	acc.Write(ebuf[:])
	acc.Write(payload)
	require.Equal(t, uint16(0xffff), acc.Sum())
}
