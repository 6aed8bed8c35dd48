package tapstack_test

import (
	"testing"

	"github.com/soypat/tapstack"
	"github.com/stretchr/testify/require"
)

func TestTCPOptionMSSRoundTrip(t *testing.T) {
	opt := tapstack.TCPOption{Type: tapstack.TCPOptMSS, Value: 1460}
	buf := make([]byte, 4)
	n, err := tapstack.PutTCPOption(opt, buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	got, consumed, err := tapstack.ParseTCPOption(buf)
	require.NoError(t, err)
	require.Equal(t, 4, consumed)
	require.Equal(t, uint32(1460), got.Value)
}

func TestTCPOptionWindowScaleRoundTrip(t *testing.T) {
	opt := tapstack.TCPOption{Type: tapstack.TCPOptWindowScale, Value: 7}
	buf := make([]byte, 3)
	_, err := tapstack.PutTCPOption(opt, buf)
	require.NoError(t, err)

	got, consumed, err := tapstack.ParseTCPOption(buf)
	require.NoError(t, err)
	require.Equal(t, 3, consumed)
	require.Equal(t, uint32(7), got.Value)
}

func TestTCPOptionNoOpAndEndOfOptions(t *testing.T) {
	buf := []byte{1, 1, 0}
	opt, n, err := tapstack.ParseTCPOption(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, tapstack.TCPOptNoOp, opt.Type)

	opt, n, err = tapstack.ParseTCPOption(buf[1:])
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, tapstack.TCPOptNoOp, opt.Type)

	opt, n, err = tapstack.ParseTCPOption(buf[2:])
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, tapstack.TCPOptEndOfOptions, opt.Type)
}

func TestTCPOptionTimestampsRoundTrip(t *testing.T) {
	opt := tapstack.TCPOption{Type: tapstack.TCPOptTimestamps, Value: 111, Value2: 222}
	buf := make([]byte, 10)
	_, err := tapstack.PutTCPOption(opt, buf)
	require.NoError(t, err)

	got, consumed, err := tapstack.ParseTCPOption(buf)
	require.NoError(t, err)
	require.Equal(t, 10, consumed)
	require.Equal(t, uint32(111), got.Value)
	require.Equal(t, uint32(222), got.Value2)
}

func TestTCPOptionTruncated(t *testing.T) {
	buf := []byte{byte(tapstack.TCPOptMSS), 4, 0}
	_, _, err := tapstack.ParseTCPOption(buf)
	require.Error(t, err)
}

func TestPutTCPOptionUnsupportedType(t *testing.T) {
	opt := tapstack.TCPOption{Type: tapstack.TCPOptSACK}
	buf := make([]byte, 10)
	_, err := tapstack.PutTCPOption(opt, buf)
	require.ErrorIs(t, err, tapstack.ErrUnsupportedTCPOption)
}
