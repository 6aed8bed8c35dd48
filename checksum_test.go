package tapstack_test

import (
	"testing"

	"github.com/soypat/tapstack"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorKnownSum(t *testing.T) {
	// Classic RFC 1071 worked example.
	data := []byte{0x00, 0x01, 0xf2, 0x03, 0xf4, 0xf5, 0xf6, 0xf7}
	var acc tapstack.Accumulator
	acc.Write(data)
	sum := acc.Sum()
	// The folded sum is 0xddf2; its one's complement is 0x220d.
	require.Equal(t, uint16(0x220d), sum)
}

func TestAccumulatorOddLengthSpans(t *testing.T) {
	var whole, split tapstack.Accumulator
	data := []byte{0x11, 0x22, 0x33, 0x44, 0x55}
	whole.Write(data)

	split.Write(data[:3])
	split.Write(data[3:])

	require.Equal(t, whole.Sum(), split.Sum())
}

func TestAccumulatorZeroedChecksumSumsToAllOnes(t *testing.T) {
	data := []byte{0x45, 0x00, 0x00, 0x3c, 0x1c, 0x46, 0x40, 0x00, 0x40, 0x06,
		0x00, 0x00, 0xac, 0x10, 0x0a, 0x63, 0xac, 0x10, 0x0a, 0x0c}
	var acc tapstack.Accumulator
	acc.Write(data)
	sum := acc.Sum()

	data[10] = byte(sum >> 8)
	data[11] = byte(sum)

	// Sum returns the complement of the folded sum, so the folded sum
	// itself is ^Sum().
	var verify tapstack.Accumulator
	verify.Write(data)
	require.Equal(t, uint16(0xffff), ^verify.Sum())
}

func TestIsChecksumDisabled(t *testing.T) {
	require.True(t, tapstack.IsChecksumDisabled(0))
	require.False(t, tapstack.IsChecksumDisabled(1))
}

func TestAccumulatorReset(t *testing.T) {
	var acc tapstack.Accumulator
	acc.Write([]byte{1, 2, 3, 4})
	first := acc.Sum()
	acc.Reset()
	acc.Write([]byte{1, 2, 3, 4})
	require.Equal(t, first, acc.Sum())
}
