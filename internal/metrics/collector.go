// Package metrics exposes Prometheus counters for the tapstack
// dispatcher: frames read, responses emitted per protocol, and frames
// dropped broken down by reason.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "tapstack"
	subsystem = "dispatch"
)

const labelReason = "reason"

// Collector holds all tapstack Prometheus metrics.
type Collector struct {
	// FramesRead counts frames read off the TAP device.
	FramesRead prometheus.Counter

	// ARPRepliesSent counts ARP replies emitted by the responder.
	ARPRepliesSent prometheus.Counter

	// ICMPRepliesSent counts ICMP echo replies emitted.
	ICMPRepliesSent prometheus.Counter

	// TCPRepliesSent counts TCP SYN-ACK/ACK segments emitted.
	TCPRepliesSent prometheus.Counter

	// FramesDropped counts frames dropped, labeled by reason (e.g.
	// "short_read", "unknown_ethertype", "unsupported_ip_options",
	// "checksum_mismatch", "duplicate_ack").
	FramesDropped *prometheus.CounterVec
}

// NewCollector creates a Collector with all tapstack metrics registered
// against reg. If reg is nil, prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		FramesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frames_read_total",
			Help:      "Total frames read from the TAP device.",
		}),
		ARPRepliesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "arp_replies_sent_total",
			Help:      "Total ARP replies emitted.",
		}),
		ICMPRepliesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "icmp_replies_sent_total",
			Help:      "Total ICMP echo replies emitted.",
		}),
		TCPRepliesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tcp_replies_sent_total",
			Help:      "Total TCP segments emitted by the endpoint table.",
		}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frames_dropped_total",
			Help:      "Total frames dropped, labeled by reason.",
		}, []string{labelReason}),
	}

	reg.MustRegister(
		c.FramesRead,
		c.ARPRepliesSent,
		c.ICMPRepliesSent,
		c.TCPRepliesSent,
		c.FramesDropped,
	)

	return c
}

// IncDropped increments the dropped-frames counter for reason.
func (c *Collector) IncDropped(reason string) {
	if c == nil {
		return
	}
	c.FramesDropped.WithLabelValues(reason).Inc()
}

// IncFramesRead increments the frames-read counter.
func (c *Collector) IncFramesRead() {
	if c == nil {
		return
	}
	c.FramesRead.Inc()
}

// IncARPReply increments the ARP-replies-sent counter.
func (c *Collector) IncARPReply() {
	if c == nil {
		return
	}
	c.ARPRepliesSent.Inc()
}

// IncICMPReply increments the ICMP-replies-sent counter.
func (c *Collector) IncICMPReply() {
	if c == nil {
		return
	}
	c.ICMPRepliesSent.Inc()
}

// IncTCPReply increments the TCP-replies-sent counter.
func (c *Collector) IncTCPReply() {
	if c == nil {
		return
	}
	c.TCPRepliesSent.Inc()
}
