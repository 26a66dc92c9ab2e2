package transport

import "sync"

// loopbackPair is the shared state behind a controller/worker loopback
// transport pair: one string slot per direction, guarded by a mutex since
// tests may tick either side from different goroutines (the engine itself
// remains single-threaded).
type loopbackPair struct {
	mu        sync.Mutex
	toWorker  string
	toCtrl    string
	blockSize int
}

type loopbackEnd struct {
	pair       *loopbackPair
	controller bool
}

// NewLoopbackPair returns a bound pair of Transports sharing two one-slot
// registers, one per direction — a stand-in for two peers polling the same
// unreliable channel in a test harness.
func NewLoopbackPair(blockSize int) (controllerSide Transport, workerSide Transport) {
	pair := &loopbackPair{blockSize: blockSize}
	return &loopbackEnd{pair: pair, controller: true}, &loopbackEnd{pair: pair, controller: false}
}

func (e *loopbackEnd) Send(f string) {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	if e.controller {
		e.pair.toWorker = f
	} else {
		e.pair.toCtrl = f
	}
}

func (e *loopbackEnd) Read() string {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	if e.controller {
		return e.pair.toCtrl
	}
	return e.pair.toWorker
}

func (e *loopbackEnd) Clear() {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	if e.controller {
		e.pair.toWorker = ""
	} else {
		e.pair.toCtrl = ""
	}
}

func (e *loopbackEnd) BlockSize() int {
	return e.pair.blockSize
}

func (e *loopbackEnd) IsController() bool {
	return e.controller
}
