// Command tapstackd attaches to a TAP interface and answers ARP, ICMP
// echo, and a minimal TCP handshake/data-ack subset for a single
// configured IPv4/MAC pair.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/songgao/water"
	"golang.org/x/sync/errgroup"

	"github.com/soypat/tapstack"
	"github.com/soypat/tapstack/diag"
	"github.com/soypat/tapstack/dispatch"
	"github.com/soypat/tapstack/internal/config"
	"github.com/soypat/tapstack/internal/metrics"
)

// shutdownTimeout bounds how long the metrics server gets to drain
// active connections once a shutdown signal arrives.
const shutdownTimeout = 5 * time.Second

// frameBufSize is the scratch buffer size for one read: bigger than a
// standard Ethernet MTU plus the optional 12-byte virtio-net header.
const frameBufSize = 2048

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file (YAML)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load configuration",
			slog.String("error", err.Error()))
		return 1
	}

	logger := newLogger(cfg.Log)

	ourIP, err := cfg.TAP.IPv4()
	if err != nil {
		logger.Error("invalid tap.ip", slog.String("error", err.Error()))
		return 1
	}
	ourMAC, err := cfg.TAP.HardwareAddr()
	if err != nil {
		logger.Error("invalid tap.mac", slog.String("error", err.Error()))
		return 1
	}

	iface, err := openTAP(cfg.TAP)
	if err != nil {
		logger.Error("failed to open TAP device", slog.String("error", err.Error()))
		return 1
	}
	defer iface.Close()

	logger.Info("tapstackd starting",
		slog.String("device", cfg.TAP.Device),
		slog.String("ip", cfg.TAP.IP),
		slog.String("mac", cfg.TAP.MAC),
		slog.Int("frame_budget", cfg.TAP.FrameBudget),
	)

	reg := prometheus.NewRegistry()
	d := dispatch.New(ourIP, ourMAC)
	d.Logger = logger
	d.Metrics = metrics.NewCollector(reg)

	var printFrames, writeResponses atomic.Bool
	writeResponses.Store(true)
	installToggleHandlers(logger, &printFrames, &writeResponses)

	metricsSrv := newMetricsServer(cfg.Metrics, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return listenAndServe(gCtx, metricsSrv, cfg.Metrics.Addr)
	})

	g.Go(func() error {
		err := receiveLoop(gCtx, iface, d, cfg.TAP.FrameBudget, cfg.TAP.VirtioNetHeader, logger, &printFrames, &writeResponses)
		if err == nil {
			// Normal completion (frame budget reached, or ctx already
			// cancelled): report this as a sentinel error so errgroup
			// tears down the metrics server and shutdown goroutine too,
			// rather than leaving them running after the loop exits.
			err = errReceiveLoopStopped
		}
		return err
	})

	g.Go(func() error {
		<-gCtx.Done()
		return gracefulShutdown(gCtx, logger, metricsSrv)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errReceiveLoopStopped) {
		logger.Error("tapstackd exited with error", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("tapstackd stopped")
	return 0
}

// errReceiveLoopStopped signals that the receive loop returned without
// an error - either the frame budget was reached (spec §6) or the
// shutdown signal's context was already cancelled - so errgroup tears
// down the metrics server and shutdown goroutine instead of leaving
// them running. It is never treated as a failure by run().
var errReceiveLoopStopped = errors.New("tapstackd: receive loop stopped")

// receiveLoop is the single-threaded read-dispatch-write loop. It owns
// the dispatcher exclusively - no other goroutine touches the ARP
// cache or TCP endpoint table, satisfying spec §5. When virtioHeader is
// set, every frame read carries a leading 12-byte virtio-net header
// (spec §6) that is stripped before dispatch, and the same header is
// re-prefixed on every frame written back.
func receiveLoop(
	ctx context.Context,
	iface *water.Interface,
	d *dispatch.Dispatcher,
	frameBudget int,
	virtioHeader bool,
	logger *slog.Logger,
	printFrames, writeResponses *atomic.Bool,
) error {
	buf := make([]byte, frameBufSize)
	processed := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := iface.Read(buf)
		if err != nil {
			return fmt.Errorf("read TAP device: %w", err)
		}
		raw := buf[:n]

		var vnet tapstack.VirtioNetHeader
		frame := raw
		if virtioHeader {
			if len(raw) < tapstack.SizeVirtioNetHeader {
				logger.Warn("short read: smaller than virtio-net header", slog.Int("len", n))
				continue
			}
			vnet = tapstack.DecodeVirtioNetHeader(raw)
			frame = raw[tapstack.SizeVirtioNetHeader:]
		}

		if printFrames.Load() {
			logger.Info("frame received", slog.String("summary", diag.Frame(frame)))
		}

		resp, err := d.Process(frame)
		if err != nil {
			return fmt.Errorf("process frame: %w", err)
		}
		if resp != nil && writeResponses.Load() {
			if printFrames.Load() {
				logger.Info("frame sent", slog.String("summary", diag.Frame(resp)))
			}
			out := resp
			if virtioHeader {
				out = make([]byte, tapstack.SizeVirtioNetHeader+len(resp))
				vnet.Put(out)
				copy(out[tapstack.SizeVirtioNetHeader:], resp)
			}
			written, err := iface.Write(out)
			if err != nil {
				return fmt.Errorf("write TAP device: %w", err)
			}
			if written < len(out) {
				logger.Warn("short write", slog.Int("written", written), slog.Int("len", len(out)))
			}
		}

		processed++
		if frameBudget > 0 && processed >= frameBudget {
			logger.Info("frame budget exhausted, stopping", slog.Int("processed", processed))
			return nil
		}
	}
}

// installToggleHandlers wires SIGUSR1/SIGUSR2 to the "print frames" and
// "write responses" runtime toggles (spec §6). SIGUSR1/SIGUSR2 are
// Unix-only signals; syscall does not define them on Windows, so this
// command does not build there.
func installToggleHandlers(logger *slog.Logger, printFrames, writeResponses *atomic.Bool) {
	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	usr2 := make(chan os.Signal, 1)
	signal.Notify(usr2, syscall.SIGUSR2)

	go func() {
		for range usr1 {
			v := !printFrames.Load()
			printFrames.Store(v)
			logger.Info("toggled print-frames", slog.Bool("enabled", v))
		}
	}()
	go func() {
		for range usr2 {
			v := !writeResponses.Load()
			writeResponses.Store(v)
			logger.Info("toggled write-responses", slog.Bool("enabled", v))
		}
	}()
}

func openTAP(cfg config.TAPConfig) (*water.Interface, error) {
	waterCfg := water.Config{DeviceType: water.TAP}
	if cfg.Device != "" {
		waterCfg.Name = cfg.Device
	}
	iface, err := water.New(waterCfg)
	if err != nil {
		return nil, fmt.Errorf("open TAP device %q: %w", cfg.Device, err)
	}
	return iface, nil
}

func gracefulShutdown(ctx context.Context, logger *slog.Logger, metricsSrv *http.Server) error {
	logger.Info("initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}

func listenAndServe(ctx context.Context, srv *http.Server, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics on %s: %w", addr, err)
	}
	return nil
}

func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.Level)}
	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
