package tcpctl_test

import (
	"testing"

	"github.com/soypat/tapstack"
	"github.com/soypat/tapstack/tcpctl"
	"github.com/stretchr/testify/require"
)

func TestSynProducesSynAckWithInitialSeq(t *testing.T) {
	table := tcpctl.NewTable()
	incoming := tapstack.TCPHeader{
		SourcePort:      54321,
		DestinationPort: 7777,
		Seq:             0xDEADBEEF,
		DataOffset:      5,
		Flags:           tapstack.FlagSYN,
		Window:          65535,
	}

	out, ok := table.Reply(incoming, 0)
	require.True(t, ok)
	require.Equal(t, tapstack.FlagSYN|tapstack.FlagACK, out.Flags)
	require.Equal(t, uint32(0xDEADBEF0), out.Ack)
	require.Equal(t, tcpctl.InitialSeq, out.Seq)
	require.Equal(t, incoming.SourcePort, out.DestinationPort)
	require.Equal(t, incoming.DestinationPort, out.SourcePort)
}

func TestDataSegmentProducesAckAndSuppressesDuplicate(t *testing.T) {
	table := tcpctl.NewTable()
	syn := tapstack.TCPHeader{
		SourcePort: 54321, DestinationPort: 7777,
		Seq: 0xDEADBEEF, Flags: tapstack.FlagSYN, DataOffset: 5,
	}
	_, ok := table.Reply(syn, 0)
	require.True(t, ok)

	data := tapstack.TCPHeader{
		SourcePort: 54321, DestinationPort: 7777,
		Seq: 0xDEADBEF0, Flags: tapstack.FlagACK, DataOffset: 5,
	}
	out, ok := table.Reply(data, 10)
	require.True(t, ok)
	require.Equal(t, uint32(0xDEADBEFA), out.Ack)
	require.Equal(t, tcpctl.InitialSeq+1, out.Seq)

	// identical data segment again -> suppressed.
	_, ok = table.Reply(data, 10)
	require.False(t, ok)
}

func TestDuplicatePureAckSuppressed(t *testing.T) {
	table := tcpctl.NewTable()
	ack := tapstack.TCPHeader{
		SourcePort: 1, DestinationPort: 80,
		Seq: 100, Flags: tapstack.FlagACK, DataOffset: 5,
	}
	_, ok := table.Reply(ack, 0)
	require.True(t, ok)
	_, ok = table.Reply(ack, 0)
	require.False(t, ok)
}
