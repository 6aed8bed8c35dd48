package tapstack_test

import (
	"testing"

	"github.com/soypat/tapstack"
	"github.com/stretchr/testify/require"
)

func TestIPv4HeaderRoundTrip(t *testing.T) {
	want := tapstack.IPv4Header{
		Version:     4,
		IHL:         5,
		ToS:         0,
		TotalLength: 84,
		ID:          0x1234,
		Flags:       0x4000, // don't-fragment
		TTL:         64,
		Protocol:    tapstack.IPProtocolICMP,
		Checksum:    0xbeef,
		Source:      [4]byte{192, 168, 1, 1},
		Destination: [4]byte{192, 168, 1, 2},
	}
	var buf [tapstack.SizeIPv4Header]byte
	want.Put(buf[:])
	got := tapstack.DecodeIPv4Header(buf[:])
	require.Equal(t, want, got)
}

func TestIPv4FlagsBits(t *testing.T) {
	f := tapstack.IPFlags(0x4000 | 123)
	require.True(t, f.DontFragment())
	require.False(t, f.MoreFragments())
	require.Equal(t, uint16(123), f.FragmentOffset())
}

func TestIPv4ChecksumZeroesOut(t *testing.T) {
	hdr := tapstack.IPv4Header{
		Version: 4, IHL: 5, TotalLength: 20, TTL: 64,
		Protocol:    tapstack.IPProtocolTCP,
		Source:      [4]byte{10, 0, 0, 1},
		Destination: [4]byte{10, 0, 0, 2},
	}
	hdr.Checksum = hdr.ComputeChecksum()

	var buf [tapstack.SizeIPv4Header]byte
	hdr.Put(buf[:])
	var acc tapstack.Accumulator
	acc.Write(buf[:])
	require.Equal(t, uint16(0xffff), ^acc.Sum())
}

func TestIPv4Reversed(t *testing.T) {
	hdr := tapstack.IPv4Header{
		Source:      [4]byte{1, 2, 3, 4},
		Destination: [4]byte{5, 6, 7, 8},
	}
	rev := hdr.Reversed()
	require.Equal(t, hdr.Source, rev.Destination)
	require.Equal(t, hdr.Destination, rev.Source)
}
