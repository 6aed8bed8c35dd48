package tapstack

import (
	"encoding/binary"
	"errors"
)

// TCPOptionType identifies the kind of a TCP option.
type TCPOptionType uint8

// TCP option kinds this stack understands, per spec §4.1.
const (
	TCPOptEndOfOptions     TCPOptionType = 0
	TCPOptNoOp             TCPOptionType = 1
	TCPOptMSS              TCPOptionType = 2
	TCPOptWindowScale      TCPOptionType = 3
	TCPOptSACKPermitted    TCPOptionType = 4
	TCPOptSACK             TCPOptionType = 5
	TCPOptTimestamps       TCPOptionType = 8
)

func (t TCPOptionType) String() string {
	switch t {
	case TCPOptEndOfOptions:
		return "EndOfOptions"
	case TCPOptNoOp:
		return "NoOp"
	case TCPOptMSS:
		return "MaximumSegmentSize"
	case TCPOptWindowScale:
		return "WindowScale"
	case TCPOptSACKPermitted:
		return "SACKPermitted"
	case TCPOptSACK:
		return "SACK"
	case TCPOptTimestamps:
		return "Timestamps"
	default:
		return "TCPOptionType(" + u32toa(uint32(t)) + ")"
	}
}

// ErrUnsupportedTCPOption is returned by PutTCPOption for option
// types that have no outbound encoding.
var ErrUnsupportedTCPOption = errors.New("tapstack: unsupported TCP option for this operation")

// ErrTruncatedTCPOption is returned when fewer bytes remain than an
// option's declared size requires. ParseTCPOption also returns it when
// a fixed-size option (SACKPermitted, WindowScale, MSS, Timestamps)
// declares a size other than its fixed one, or when any other
// multi-byte option declares a size below 2.
var ErrTruncatedTCPOption = errors.New("tapstack: truncated TCP option")

// TCPOption is a decoded TCP option. Value/Value2 are populated only
// for the option types that carry numeric data (MSS, WindowScale,
// Timestamps); Size is the option's total on-wire length in bytes,
// including its type and (if present) length bytes.
type TCPOption struct {
	Type   TCPOptionType
	Size   uint8
	Value  uint32
	Value2 uint32
}

// ParseTCPOption decodes one TCP option starting at buf[0], returning
// the option and the number of bytes it occupies on the wire. buf may
// contain trailing bytes belonging to later options or padding.
func ParseTCPOption(buf []byte) (opt TCPOption, n int, err error) {
	if len(buf) == 0 {
		return TCPOption{}, 0, ErrTruncatedTCPOption
	}
	opt.Type = TCPOptionType(buf[0])
	switch opt.Type {
	case TCPOptEndOfOptions, TCPOptNoOp:
		opt.Size = 1
		return opt, 1, nil
	}
	if len(buf) < 2 {
		return TCPOption{}, 0, ErrTruncatedTCPOption
	}
	opt.Size = buf[1]
	if int(opt.Size) > len(buf) {
		return TCPOption{}, 0, ErrTruncatedTCPOption
	}
	switch opt.Type {
	case TCPOptSACKPermitted:
		if opt.Size != 2 {
			return TCPOption{}, 0, ErrTruncatedTCPOption
		}
		return opt, int(opt.Size), nil
	case TCPOptWindowScale:
		if opt.Size != 3 {
			return TCPOption{}, 0, ErrTruncatedTCPOption
		}
		opt.Value = uint32(buf[2])
		return opt, int(opt.Size), nil
	case TCPOptMSS:
		if opt.Size != 4 {
			return TCPOption{}, 0, ErrTruncatedTCPOption
		}
		opt.Value = uint32(binary.BigEndian.Uint16(buf[2:4]))
		return opt, int(opt.Size), nil
	case TCPOptTimestamps:
		if opt.Size != 10 {
			return TCPOption{}, 0, ErrTruncatedTCPOption
		}
		opt.Value = binary.BigEndian.Uint32(buf[2:6])
		opt.Value2 = binary.BigEndian.Uint32(buf[6:10])
		return opt, int(opt.Size), nil
	case TCPOptSACK:
		// Variable length, best-effort: consume declared size but do
		// not decode block contents - not exercised by this stack.
		if opt.Size < 2 {
			return TCPOption{}, 0, ErrTruncatedTCPOption
		}
		return opt, int(opt.Size), nil
	default:
		// Unknown option type: best-effort skip using the declared
		// size, matching the original's "unsupported but not fatal
		// on read" behaviour.
		if opt.Size < 2 {
			return TCPOption{}, 0, ErrTruncatedTCPOption
		}
		return opt, int(opt.Size), nil
	}
}

// PutTCPOption serializes opt into buf, returning the number of bytes
// written. Only the option types spec §4.1 names as emittable are
// supported; all others return ErrUnsupportedTCPOption, matching the
// original's "unsupported on emit" behaviour for option types this
// stack never needs to send itself.
func PutTCPOption(opt TCPOption, buf []byte) (n int, err error) {
	switch opt.Type {
	case TCPOptEndOfOptions, TCPOptNoOp:
		if len(buf) < 1 {
			return 0, ErrTruncatedTCPOption
		}
		buf[0] = uint8(opt.Type)
		return 1, nil
	case TCPOptSACKPermitted:
		if len(buf) < 2 {
			return 0, ErrTruncatedTCPOption
		}
		buf[0] = uint8(opt.Type)
		buf[1] = 2
		return 2, nil
	case TCPOptWindowScale:
		if len(buf) < 3 {
			return 0, ErrTruncatedTCPOption
		}
		buf[0] = uint8(opt.Type)
		buf[1] = 3
		buf[2] = uint8(opt.Value)
		return 3, nil
	case TCPOptMSS:
		if len(buf) < 4 {
			return 0, ErrTruncatedTCPOption
		}
		buf[0] = uint8(opt.Type)
		buf[1] = 4
		binary.BigEndian.PutUint16(buf[2:4], uint16(opt.Value))
		return 4, nil
	case TCPOptTimestamps:
		if len(buf) < 10 {
			return 0, ErrTruncatedTCPOption
		}
		buf[0] = uint8(opt.Type)
		buf[1] = 10
		binary.BigEndian.PutUint32(buf[2:6], opt.Value)
		binary.BigEndian.PutUint32(buf[6:10], opt.Value2)
		return 10, nil
	default:
		return 0, ErrUnsupportedTCPOption
	}
}
