// Package arpcache implements the ARP responder and translation cache
// described in spec §4.3: gratuitous learning of (protocol, address)
// to hardware-address mappings, and reply generation for requests
// addressed to a configured local IPv4/MAC pair.
package arpcache

import (
	"github.com/soypat/tapstack"
)

// Key identifies a translation cache entry by protocol type and
// protocol address. Never key on the address alone - a real
// deployment may see more than one protocol family (spec §9).
type Key struct {
	ProtoType EtherType
	ProtoAddr [4]byte
}

// EtherType is an alias so callers don't need to import tapstack just
// to build a Key.
type EtherType = tapstack.EtherType

// Cache maps (protocol, address) to hardware address. Entries are
// never evicted; the zero value is ready to use. Cache is accessed
// only from the single dispatcher goroutine (spec §5) and needs no
// synchronization.
type Cache struct {
	entries map[Key][6]byte
}

// NewCache returns an empty, ready-to-use Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key][6]byte)}
}

// Upsert inserts or overwrites the mapping for key.
func (c *Cache) Upsert(key Key, hw [6]byte) {
	if c.entries == nil {
		c.entries = make(map[Key][6]byte)
	}
	c.entries[key] = hw
}

// Lookup returns the hardware address for key and whether it was found.
func (c *Cache) Lookup(key Key) (hw [6]byte, ok bool) {
	hw, ok = c.entries[key]
	return hw, ok
}

// Len returns the number of cached entries, mainly for tests and metrics.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Responder resolves IPv4/Ethernet ARP requests addressed to OurIP,
// learning every sighting into Cache along the way.
type Responder struct {
	Cache  *Cache
	OurIP  [4]byte
	OurMAC [6]byte
}

// NewResponder returns a Responder backed by a fresh Cache.
func NewResponder(ourIP [4]byte, ourMAC [6]byte) *Responder {
	return &Responder{
		Cache:  NewCache(),
		OurIP:  ourIP,
		OurMAC: ourMAC,
	}
}

// Handle implements spec §4.3 steps 1-3: a cache upsert for every
// Ethernet/IPv4 message, then a reply only when the request targets
// OurIP. Messages with any other hardware or protocol type are ignored
// without touching the cache. ok is false when no reply should be
// emitted - the hardware/protocol type isn't Ethernet/IPv4, the opcode
// isn't Request, or the request isn't addressed to us.
func (r *Responder) Handle(hdr tapstack.ArpHeader, body tapstack.ArpIPv4Body) (replyHdr tapstack.ArpHeader, replyBody tapstack.ArpIPv4Body, ok bool) {
	if hdr.HardwareType != tapstack.ArpHardwareEthernet || hdr.ProtoType != tapstack.EtherTypeIPv4 {
		return tapstack.ArpHeader{}, tapstack.ArpIPv4Body{}, false
	}

	r.Cache.Upsert(Key{ProtoType: hdr.ProtoType, ProtoAddr: body.SenderProto}, body.SenderHardware)

	if hdr.Operation != tapstack.ArpRequest || body.TargetProto != r.OurIP {
		return tapstack.ArpHeader{}, tapstack.ArpIPv4Body{}, false
	}

	replyHdr = hdr
	replyHdr.Operation = tapstack.ArpReply

	replyBody = tapstack.ArpIPv4Body{
		SenderHardware: r.OurMAC,
		SenderProto:    r.OurIP,
		TargetHardware: body.SenderHardware,
		TargetProto:    body.SenderProto,
	}
	return replyHdr, replyBody, true
}
