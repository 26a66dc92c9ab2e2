// Package engineio provides a small stock engine.Receiver for the CLI
// binaries: print delivered values, log timeouts, and stash the stream
// handle RegisterStream hands back.
package engineio

import (
	"fmt"

	logs "github.com/danmuck/smplog"

	"github.com/danmuck/relaylink/internal/protocol/engine"
	"github.com/danmuck/relaylink/internal/protocol/value"
)

// PrintingReceiver renders delivered values to stdout and logs liveness
// transitions and assembly failures through the tag given at
// construction (the binary name, typically).
type PrintingReceiver struct {
	tag    string
	handle engine.Handle
}

// NewPrintingReceiver returns a Receiver tagged for log lines.
func NewPrintingReceiver(tag string) *PrintingReceiver {
	return &PrintingReceiver{tag: tag}
}

func (r *PrintingReceiver) RegisterStream(h engine.Handle) {
	r.handle = h
	logs.Debugf("%s.engine registered handle=%d", r.tag, h)
}

func (r *PrintingReceiver) OnData(v value.Value) {
	fmt.Println(renderValue(v))
}

func (r *PrintingReceiver) OnTimeout(isTimedOut bool, h engine.Handle) {
	if isTimedOut {
		logs.Warnf("%s.engine handle=%d timed out", r.tag, h)
		return
	}
	logs.Debugf("%s.engine handle=%d alive", r.tag, h)
}

func (r *PrintingReceiver) OnAssemblyError(err error) {
	logs.Error(err, fmt.Sprintf("%s.engine handle=%d assembly error", r.tag, r.handle))
}

func renderValue(v value.Value) string {
	switch v.Kind {
	case value.StringKind:
		return v.Str
	case value.BytesKind:
		return string(v.Bytes)
	default:
		data, err := value.Serialize(v)
		if err != nil {
			return fmt.Sprintf("<unserializable: %v>", err)
		}
		return string(data)
	}
}
