// Command workerctl runs the worker side of a stream link: it binds a
// transport from a config file, ticks the engine, and prints every
// value delivered by OnData to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	logs "github.com/danmuck/smplog"

	"github.com/danmuck/relaylink/internal/config"
	"github.com/danmuck/relaylink/internal/engineio"
	"github.com/danmuck/relaylink/internal/link"
	"github.com/danmuck/relaylink/internal/logging"
	"github.com/danmuck/relaylink/internal/protocol/engine"
)

func main() {
	configPath := flag.String("config", "cmd/workerctl/config.toml", "path to worker config.toml")
	tickInterval := flag.Duration("tick", 50*time.Millisecond, "interval between engine ticks")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "workerctl: %v\n", err)
		os.Exit(1)
	}
	if cfg.IsController() {
		fmt.Fprintf(os.Stderr, "workerctl: config at %s is not role=worker\n", *configPath)
		os.Exit(1)
	}

	tr, err := link.Bind(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "workerctl: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recv := engineio.NewPrintingReceiver("workerctl")
	eng := engine.New(tr, recv, time.Duration(cfg.TimeoutSeconds*float64(time.Second)))

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	logs.Infof("workerctl.main ready blockSize=%d timeout=%.1fs", cfg.BlockSize, cfg.TimeoutSeconds)
	for {
		select {
		case <-ctx.Done():
			logs.Infof("workerctl.main shutdown")
			return
		case <-ticker.C:
			eng.Tick()
		}
	}
}
