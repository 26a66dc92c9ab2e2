// Command controllerctl runs the controller side of a stream link: it
// binds a transport from a config file, ticks the engine, and turns
// stdin lines into outbound Write calls.
package main

import (
	"bufio"
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
	"github.com/danmuck/relaylink/internal/protocol/value"
)

func main() {
	configPath := flag.String("config", "cmd/controllerctl/config.toml", "path to controller config.toml")
	tickInterval := flag.Duration("tick", 50*time.Millisecond, "interval between engine ticks")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "controllerctl: %v\n", err)
		os.Exit(1)
	}
	if !cfg.IsController() {
		fmt.Fprintf(os.Stderr, "controllerctl: config at %s is not role=controller\n", *configPath)
		os.Exit(1)
	}

	tr, err := link.Bind(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "controllerctl: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recv := engineio.NewPrintingReceiver("controllerctl")
	eng := engine.New(tr, recv, time.Duration(cfg.TimeoutSeconds*float64(time.Second)))

	lines := make(chan string)
	go readLines(ctx, lines)

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	logs.Infof("controllerctl.main ready blockSize=%d timeout=%.1fs", cfg.BlockSize, cfg.TimeoutSeconds)
	for {
		select {
		case <-ctx.Done():
			logs.Infof("controllerctl.main shutdown")
			return
		case line := <-lines:
			if err := eng.Write(value.NewString(line)); err != nil {
				logs.Error(err, "controllerctl.main write")
			}
		case <-ticker.C:
			eng.Tick()
		}
	}
}

func readLines(ctx context.Context, out chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		case out <- scanner.Text():
		}
	}
}
