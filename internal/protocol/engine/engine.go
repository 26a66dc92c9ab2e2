// Package engine implements the per-tick stream protocol state machine:
// duplicate suppression, command dispatch, the controller poll loop, and
// timeout detection/recovery. It is the one package every other protocol
// package exists to serve.
package engine

import (
	"errors"
	"sync/atomic"
	"time"

	logs "github.com/danmuck/smplog"

	"github.com/danmuck/relaylink/internal/protocol/assembler"
	"github.com/danmuck/relaylink/internal/protocol/chunker"
	"github.com/danmuck/relaylink/internal/protocol/command"
	"github.com/danmuck/relaylink/internal/protocol/frame"
	"github.com/danmuck/relaylink/internal/protocol/value"
	"github.com/danmuck/relaylink/internal/transport"
)

// Handle is the one-shot identifier an Engine hands its Receiver at
// construction, per spec: delivered by value, never a shared-ownership
// cycle back to the engine itself.
type Handle uint64

var handleCounter atomic.Uint64

func nextHandle() Handle {
	return Handle(handleCounter.Add(1))
}

// Receiver is the upward-facing capability set application code
// implements to receive delivered messages and liveness signals.
type Receiver interface {
	OnData(v value.Value)
	OnTimeout(isTimedOut bool, h Handle)
	RegisterStream(h Handle)
}

// AssemblyErrorReceiver is an optional extension: a Receiver that also
// wants to know when a checksum-valid message failed to deserialize.
// Engine checks for this interface dynamically rather than requiring it
// on every Receiver.
type AssemblyErrorReceiver interface {
	OnAssemblyError(err error)
}

// ErrBlockTooSmall is returned by Write when the transport's block size
// leaves no room for a payload after the frame header.
var ErrBlockTooSmall = errors.New("engine: transport block size too small for frame header")

type outputState struct {
	frames          []string
	waitingForReply bool
	seq             int
}

type inputState struct {
	seq int
}

// Engine is one side's stream protocol instance: a single transport, a
// single receiver, and the tick-driven state machine connecting them.
// Nothing here is safe for concurrent use — Tick and Write are expected
// to be called from one goroutine, per the cooperative scheduling model.
type Engine struct {
	transport transport.Transport
	receiver  Receiver
	timeout   time.Duration
	clock     func() time.Time

	controller bool
	handle     Handle

	out          outputState
	in           inputState
	asm          *assembler.Assembler
	lastReceived time.Time
}

// New binds an engine to a transport, receiver, and timeout. It clears
// the transport immediately and registers the stream with the receiver.
func New(tr transport.Transport, recv Receiver, timeout time.Duration) *Engine {
	return newEngine(tr, recv, timeout, time.Now)
}

// NewWithClock is New with an injectable clock, for tests that need to
// control the passage of time deterministically.
func NewWithClock(tr transport.Transport, recv Receiver, timeout time.Duration, clock func() time.Time) *Engine {
	return newEngine(tr, recv, timeout, clock)
}

func newEngine(tr transport.Transport, recv Receiver, timeout time.Duration, clock func() time.Time) *Engine {
	e := &Engine{
		transport:  tr,
		receiver:   recv,
		timeout:    timeout,
		clock:      clock,
		controller: tr.IsController(),
		handle:     nextHandle(),
		in:         inputState{seq: -1},
		asm:        assembler.New(),
	}
	e.lastReceived = clock()
	e.transport.Clear()
	e.receiver.RegisterStream(e.handle)
	logs.Debugf("engine.New handle=%d controller=%t blockSize=%d", e.handle, e.controller, tr.BlockSize())
	return e
}

// Write serializes v, splits it into frame-sized chunks, and appends the
// encoded Data frames to the output queue. It returns chunker.ErrTooLarge
// unwrapped if the serialized value would require more than 999 chunks.
func (e *Engine) Write(v value.Value) error {
	data, err := value.Serialize(v)
	if err != nil {
		return err
	}
	maxPayload := e.transport.BlockSize() - frame.FixedHeaderLen
	if maxPayload <= 0 {
		return ErrBlockTooSmall
	}
	chunks, err := chunker.Split(data, maxPayload)
	if err != nil {
		logs.Warnf("engine.Write handle=%d rejected len=%d err=%v", e.handle, len(data), err)
		return err
	}
	cksum := frame.Checksum(data)
	encoded := make([]string, len(chunks))
	for i, c := range chunks {
		fr := frame.Frame{
			New:       i == 0,
			Remaining: len(chunks) - 1 - i,
			Seq:       e.nextSeq(),
			Cmd:       command.Data,
			Payload:   c,
		}
		if i == 0 {
			fr.Checksum = cksum
		}
		encoded[i] = frame.Encode(fr)
	}
	e.out.frames = append(e.out.frames, encoded...)
	logs.Debugf("engine.Write handle=%d queued chunks=%d bytes=%d", e.handle, len(chunks), len(data))
	return nil
}

// WaitingToSend reports whether the output queue still holds frames that
// have not yet been handed to the transport.
func (e *Engine) WaitingToSend() bool {
	return len(e.out.frames) > 0
}

// Tick runs one pass of the protocol state machine: read, decode,
// deduplicate, dispatch, check timeout, and — for the controller —
// advance the poll loop.
func (e *Engine) Tick() {
	now := e.clock()

	if fr, ok := frame.Decode(e.transport.Read()); ok && fr.Seq != e.in.seq {
		e.in.seq = fr.Seq
		e.receiver.OnTimeout(false, e.handle)
		e.lastReceived = now
		if fr.New {
			e.asm.BeginNew(fr.Checksum)
		}
		if e.controller {
			e.dispatchController(fr)
		} else {
			e.dispatchWorker(fr)
		}
	}

	if now.Sub(e.lastReceived) >= e.timeout {
		logs.Warnf("engine.Tick handle=%d timeout controller=%t", e.handle, e.controller)
		e.receiver.OnTimeout(true, e.handle)
		e.lastReceived = now
		e.resetQueues()
	}

	if e.controller && !e.out.waitingForReply {
		e.sendHeadOrControl(command.Poll)
		e.out.waitingForReply = true
	}
}

func (e *Engine) dispatchController(fr frame.Frame) {
	if fr.Cmd == command.Data {
		e.receiveChunk(fr)
	}
	e.out.waitingForReply = false
}

func (e *Engine) dispatchWorker(fr frame.Frame) {
	switch fr.Cmd {
	case command.Data:
		e.receiveChunk(fr)
		e.sendHeadOrControl(command.Ack)
	case command.Poll:
		e.sendHeadOrControl(command.Ack)
	case command.Reset:
		e.resetQueues()
		e.sendControl(command.Ack)
	}
}

func (e *Engine) receiveChunk(fr frame.Frame) {
	e.asm.Append(fr.Payload)
	data, ok, valid := e.asm.TryComplete(fr.Remaining)
	if !ok {
		return
	}
	if !valid {
		logs.Warnf("engine.receiveChunk handle=%d checksum mismatch, dropped", e.handle)
		return
	}
	v, err := value.Deserialize(data)
	if err != nil {
		logs.Warnf("engine.receiveChunk handle=%d deserialize err=%v", e.handle, err)
		if r, ok := e.receiver.(AssemblyErrorReceiver); ok {
			r.OnAssemblyError(err)
		}
		return
	}
	e.receiver.OnData(v)
}

// sendHeadOrControl sends the output queue's head frame if one is
// queued, otherwise sends a content-free control frame of the given
// command (Ack from the worker, Poll from the controller).
func (e *Engine) sendHeadOrControl(cmd command.Command) {
	if len(e.out.frames) > 0 {
		head := e.out.frames[0]
		e.out.frames = e.out.frames[1:]
		e.transport.Send(head)
		return
	}
	e.sendControl(cmd)
}

func (e *Engine) sendControl(cmd command.Command) {
	fr := frame.Frame{New: true, Remaining: 0, Seq: e.nextSeq(), Cmd: cmd}
	e.transport.Send(frame.Encode(fr))
}

func (e *Engine) nextSeq() int {
	s := e.out.seq
	e.out.seq = (e.out.seq + 1) % 10
	return s
}

// resetQueues clears both comm-queue records: the output queue and its
// waitingForReply flag, and the input queue's partial assembly and
// duplicate-suppression sequence. Used by explicit Reset frames and by
// local timeout recovery, which the spec treats identically.
func (e *Engine) resetQueues() {
	e.out.frames = nil
	e.out.waitingForReply = false
	e.asm.Reset()
	e.in.seq = -1
}
