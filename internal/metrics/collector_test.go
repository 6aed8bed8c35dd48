package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/soypat/tapstack/internal/metrics"
)

func TestNewCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	if c.FramesRead == nil {
		t.Error("FramesRead is nil")
	}
	if c.ARPRepliesSent == nil {
		t.Error("ARPRepliesSent is nil")
	}
	if c.ICMPRepliesSent == nil {
		t.Error("ICMPRepliesSent is nil")
	}
	if c.TCPRepliesSent == nil {
		t.Error("TCPRepliesSent is nil")
	}
	if c.FramesDropped == nil {
		t.Error("FramesDropped is nil")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	_ = families
}

func TestCounterIncrements(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.IncFramesRead()
	c.IncARPReply()
	c.IncICMPReply()
	c.IncTCPReply()
	c.IncDropped("checksum_mismatch")

	if got := testutil.ToFloat64(c.FramesRead); got != 1 {
		t.Errorf("FramesRead = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.ARPRepliesSent); got != 1 {
		t.Errorf("ARPRepliesSent = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.FramesDropped.WithLabelValues("checksum_mismatch")); got != 1 {
		t.Errorf("FramesDropped{checksum_mismatch} = %v, want 1", got)
	}
}

func TestNilCollectorMethodsAreNoOps(t *testing.T) {
	var c *metrics.Collector
	c.IncFramesRead()
	c.IncARPReply()
	c.IncICMPReply()
	c.IncTCPReply()
	c.IncDropped("whatever")
}
