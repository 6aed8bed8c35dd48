/*
Package tapstack implements the wire-format core of a userspace network
stack that attaches to a layer-2 TAP interface: Ethernet II framing,
ARP for IPv4/Ethernet resolution, a minimal IPv4 header, ICMPv4 echo,
and the TCP header plus its variable-length options.

The package owns no sockets and performs no I/O. It parses raw frame
bytes into header structs, computes and verifies the Internet
checksum used by IPv4/ICMP/TCP, and serializes header structs back to
wire bytes. Everything above the wire format — the ARP cache, the ICMP
echo responder, the TCP endpoint table, the per-frame dispatcher —
lives in the sibling packages arpcache, icmpecho, tcpctl, and dispatch;
the receive loop itself is in cmd/tapstackd.

# Byte order

The wire uses big-endian ("network order") multi-byte fields; Go
structs hold them in host-native order via encoding/binary. Opaque
byte blobs — 6-byte MAC addresses, 4-byte IPv4 addresses, and packed
single-byte bitfields — are never byte-swapped; only genuine
multi-byte integers (EtherType, lengths, sequence numbers, checksums)
are.

See https://hpd.gasmi.net/ to decode hex frames by hand.
*/
package tapstack
