// cmd/etherdream-stream/main.go
package main

import (
	"context"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/etherdream/internal/config"
	"github.com/tamzrod/etherdream/internal/device"
	"github.com/tamzrod/etherdream/internal/logx"
	"github.com/tamzrod/etherdream/internal/point"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: etherdream-stream <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate + normalize config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger := buildLogger(cfg.Stream.LogLevel)
	logx.SetDefault(logger)

	// --------------------
	// Build the device
	// --------------------

	dev := device.New()
	dev.SetLogger(logger)
	dev.SetLatency(cfg.Stream.LatencyMs)
	dev.SetRequestPointsCallback(circleGenerator(cfg.Stream.TargetPointRate))

	if err := dev.ConnectHost(cfg.Stream.Host, cfg.Stream.Port); err != nil {
		log.Fatalf("connect failed (%s:%d): %v", cfg.Stream.Host, cfg.Stream.Port, err)
	}
	defer dev.Close()

	// --------------------
	// Run until a shutdown signal, joined through an errgroup so a worker
	// failure and a signal-driven stop both converge on the same wait.
	// --------------------

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dev.Start()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		dev.Stop()
		return nil
	})

	g.Go(func() error {
		for dev.IsRunning() {
			select {
			case <-ctx.Done():
			case <-time.After(100 * time.Millisecond):
			}
		}
		return dev.LastNetworkError()
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("etherdream-stream: %v", err)
	}
}

// buildLogger wraps the default stdlib-backed logger, suppressing Info
// when the configured level is "error" (§6.4).
func buildLogger(level string) logx.Logger {
	base := logx.NewStdLogger()
	if level == "error" {
		return quietLogger{base}
	}
	return base
}

type quietLogger struct {
	logx.Logger
}

func (quietLogger) Info(string) {}

// circleGenerator produces a demo point source: a circle traced at
// pointRate samples/second, continued smoothly across refills via
// CurrentPointIndex. Mirrors the constant-callback shape of
// DummyController's demo run, extended with the supplemented
// currentPointIndex field so it doesn't restart its phase every refill.
func circleGenerator(pointRate uint32) device.RequestPointsFunc {
	if pointRate == 0 {
		pointRate = 30000
	}
	const radius = 0.8

	return func(req device.PointFillRequest, out *[]point.LaserPoint) {
		n := req.MinimumPointsRequired
		if req.MaximumPointsRequired > 0 && n < req.MaximumPointsRequired {
			n = req.MaximumPointsRequired
		}
		for i := 0; i < n; i++ {
			phase := 2 * math.Pi * float64(req.CurrentPointIndex+uint64(i)) / float64(pointRate)
			*out = append(*out, point.LaserPoint{
				X: radius * math.Cos(phase),
				Y: radius * math.Sin(phase),
				R: 1,
				G: 1,
				B: 1,
			})
		}
	}
}
