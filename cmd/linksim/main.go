// Command linksim runs both the controller and worker sides of a stream
// link in one process over an in-memory loopback transport, for local
// smoke-testing without two terminals or real files.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	logs "github.com/danmuck/smplog"

	"github.com/danmuck/relaylink/internal/engineio"
	"github.com/danmuck/relaylink/internal/logging"
	"github.com/danmuck/relaylink/internal/protocol/engine"
	"github.com/danmuck/relaylink/internal/protocol/value"
	"github.com/danmuck/relaylink/internal/transport"
)

func main() {
	blockSize := flag.Int("block-size", 512, "transport block size")
	timeout := flag.Duration("timeout", 5*time.Second, "engine timeout")
	tickInterval := flag.Duration("tick", 20*time.Millisecond, "interval between ticks")
	flag.Parse()

	logging.ConfigureRuntime()

	ctrlTr, workTr := transport.NewLoopbackPair(*blockSize)
	h := &engine.Harness{
		Controller: engine.New(ctrlTr, engineio.NewPrintingReceiver("linksim.controller"), *timeout),
		Worker:     engine.New(workTr, engineio.NewPrintingReceiver("linksim.worker"), *timeout),
	}

	lines := make(chan string)
	go readLines(lines)

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	logs.Infof("linksim.main ready blockSize=%d timeout=%s", *blockSize, *timeout)
	fmt.Println("type a line to Write it from the controller to the worker; Ctrl-D to exit")
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := h.Controller.Write(value.NewString(line)); err != nil {
				logs.Error(err, "linksim.main write")
			}
		case <-ticker.C:
			h.TickBoth()
		}
	}
}

func readLines(out chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		out <- scanner.Text()
	}
	close(out)
}
