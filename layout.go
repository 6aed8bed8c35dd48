package tapstack

// Field describes one fixed-width field of a wire-format header: its
// name (for diagnostics), its width in bytes, and whether it is
// opaque. Opaque fields - MAC/IPv4 address blobs and packed
// single-byte bitfields - are copied verbatim between wire and host
// representation; all other fields are big-endian multi-byte
// integers that require byte-order conversion.
type Field struct {
	Name   string
	Width  int
	Opaque bool
}

// Layout is the field-width sequence that fully describes a header's
// wire shape, in field order. It exists as data rather than code so
// that generic consumers can query a header's size or locate its
// checksum field without a type switch per header. The per-header
// Decode/Put functions do not consult it; the diagnostic renderer uses
// only ICMPLayout.Size.
type Layout []Field

// Size returns the total byte length described by the layout.
func (l Layout) Size() int {
	n := 0
	for _, f := range l {
		n += f.Width
	}
	return n
}

// ChecksumField returns the byte offset and width of the field named
// "Checksum" in the layout, or ok=false if the layout has none.
func (l Layout) ChecksumField() (offset, width int, ok bool) {
	off := 0
	for _, f := range l {
		if f.Name == "Checksum" {
			return off, f.Width, true
		}
		off += f.Width
	}
	return 0, 0, false
}

var (
	// EthernetLayout describes the 14-byte Ethernet II header.
	EthernetLayout = Layout{
		{"Destination", 6, true},
		{"Source", 6, true},
		{"EtherType", 2, false},
	}

	// ArpLayout describes the 8-byte fixed portion of an ARP header.
	ArpLayout = Layout{
		{"HardwareType", 2, false},
		{"ProtoType", 2, false},
		{"HardwareSize", 1, true},
		{"ProtoSize", 1, true},
		{"Operation", 2, false},
	}

	// ArpIPv4BodyLayout describes the 20-byte IPv4-over-Ethernet ARP body.
	ArpIPv4BodyLayout = Layout{
		{"SenderHardware", 6, true},
		{"SenderProto", 4, true},
		{"TargetHardware", 6, true},
		{"TargetProto", 4, true},
	}

	// IPv4Layout describes the fixed 20-byte IPv4 header (no options).
	IPv4Layout = Layout{
		{"VersionIHL", 1, true},
		{"ToS", 1, true},
		{"TotalLength", 2, false},
		{"ID", 2, false},
		{"FlagsFragOffset", 2, false},
		{"TTL", 1, true},
		{"Protocol", 1, true},
		{"Checksum", 2, false},
		{"Source", 4, true},
		{"Destination", 4, true},
	}

	// ICMPLayout describes the 4-byte ICMP header common to all types.
	ICMPLayout = Layout{
		{"Type", 1, true},
		{"Code", 1, true},
		{"Checksum", 2, false},
	}

	// ICMPEchoLayout describes the 4-byte id/seq prefix of an echo body.
	// The variable-length payload that follows is not part of the layout.
	ICMPEchoLayout = Layout{
		{"ID", 2, false},
		{"Seq", 2, false},
	}

	// TCPLayout describes the fixed 20-byte TCP header (no options).
	TCPLayout = Layout{
		{"SourcePort", 2, false},
		{"DestinationPort", 2, false},
		{"Seq", 4, false},
		{"Ack", 4, false},
		{"DataOffsetReserved", 1, true},
		{"Flags", 1, true},
		{"Window", 2, false},
		{"Checksum", 2, false},
		{"Urgent", 2, false},
	}

	// TCPPseudoHeaderLayout describes the 12-byte pseudo-header used only
	// as checksum input; it is never transmitted.
	TCPPseudoHeaderLayout = Layout{
		{"Source", 4, true},
		{"Destination", 4, true},
		{"Zero", 1, true},
		{"Protocol", 1, true},
		{"TCPLength", 2, false},
	}

	// VirtioNetHeaderLayout describes the optional 12-byte virtio-net
	// header. Per spec its fields are already host byte order on the
	// wire, so every field is opaque (no swap) - see virtio.go.
	VirtioNetHeaderLayout = Layout{
		{"Flags", 1, true},
		{"GSOType", 1, true},
		{"HdrLen", 2, true},
		{"GSOSize", 2, true},
		{"ChecksumStart", 2, true},
		{"ChecksumOffset", 2, true},
		{"NumBuffers", 2, true},
	}
)
