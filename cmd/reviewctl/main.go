// Media review console
// Drives a review session from a script or stdin and prints JSON views
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/config"
	"github.com/ibbymorris/collaborative-media-review-tool/internal/console"
	"github.com/ibbymorris/collaborative-media-review-tool/internal/logger"
	"github.com/ibbymorris/collaborative-media-review-tool/internal/metrics"
	"github.com/ibbymorris/collaborative-media-review-tool/internal/seed"
	"github.com/ibbymorris/collaborative-media-review-tool/internal/server"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/session"
)

var (
	configPath  = flag.String("config", "", "Config file path (json, yaml or toml)")
	seedPath    = flag.String("seed", "", "Seed fixture path; empty uses the bundled demo")
	scriptPath  = flag.String("script", "", "Command script; empty reads stdin")
	metricsPort = flag.Int("metrics-port", -1, "Observability server port; 0 disables, -1 uses config")
	thumbDelay  = flag.Duration("thumb-delay", 0, "Simulated thumbnail generation latency")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "reviewctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *seedPath != "" {
		cfg.SeedPath = *seedPath
	}
	if *metricsPort >= 0 {
		cfg.MetricsPort = *metricsPort
	}

	logger.InitGlobalLogger(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log := logger.GetGlobalLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fixture, err := loadFixture(cfg.SeedPath)
	if err != nil {
		return err
	}
	seedName := cfg.SeedPath
	if seedName == "" {
		seedName = "default"
	}
	log.LogSessionStart(fixture.History.Len(), seedName)

	m := metrics.NewMetrics()
	done := make(chan struct{})
	defer close(done)
	go m.RunUptime(done)

	var obs *server.ObservabilityServer
	if cfg.MetricsPort > 0 {
		obs = server.NewObservabilityServer(cfg.MetricsPort, m, log)
		go func() {
			if err := obs.Start(); err != nil {
				log.Error("Observability server stopped").Err(err).Send()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obs.Shutdown(shutdownCtx); err != nil {
				log.Warn("Observability server shutdown failed").Err(err).Send()
			}
		}()
	}

	s := session.New(fixture.History, fixture.Thread(), session.Options{
		Actor:            cfg.ActorValue(),
		Vocabulary:       cfg.Vocabulary,
		VisibilityWindow: cfg.VisibilityWindow,
		ThumbnailCount:   cfg.ThumbnailCount,
		StrokeColor:      cfg.Stroke.Color,
		StrokeWidth:      cfg.Stroke.Width,
		Generator:        console.PlaceholderGenerator{Delay: *thumbDelay},
		Logger:           log,
		Metrics:          m,
	})

	if obs != nil {
		obs.MarkReady()
	}

	in, closeIn, err := openScript(*scriptPath)
	if err != nil {
		return err
	}
	defer closeIn()

	err = console.New(s, os.Stdout, log).Run(ctx, in)
	log.LogSessionShutdown()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func loadFixture(path string) (*seed.Fixture, error) {
	loader, err := seed.NewLoader()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return loader.Default(time.Now())
	}
	return loader.LoadFile(path, time.Now())
}

func openScript(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open script: %w", err)
	}
	return f, func() { f.Close() }, nil
}
