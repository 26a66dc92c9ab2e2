// Package assembler accumulates the chunk payloads of one logical message
// and validates the result against the checksum captured from its first
// chunk.
package assembler

import "github.com/danmuck/relaylink/internal/protocol/frame"

// Assembler holds the in-progress chunk list for the message currently
// being received. At most one message is under assembly at a time —
// BeginNew discards whatever was there before.
type Assembler struct {
	chunks           [][]byte
	expectedChecksum uint8
	active           bool
}

// New returns an empty assembler with no message in progress.
func New() *Assembler {
	return &Assembler{}
}

// BeginNew starts assembling a new logical message, discarding any
// partial assembly in progress, and records the checksum the completed
// message must satisfy.
func (a *Assembler) BeginNew(checksum uint8) {
	a.chunks = a.chunks[:0]
	a.expectedChecksum = checksum
	a.active = true
}

// Append adds one chunk's payload to the tail of the assembly.
func (a *Assembler) Append(payload []byte) {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	a.chunks = append(a.chunks, buf)
}

// TryComplete checks whether the message is now complete (remaining == 0).
// On completion it concatenates and XORs the accumulated chunks against
// the checksum captured by BeginNew: a match returns the assembled bytes
// with ok=true and valid=true; a mismatch returns nil with ok=true and
// valid=false. Either way
// the assembly is cleared — the caller gets exactly one chance per
// message, per the protocol's no-retry checksum policy.
func (a *Assembler) TryComplete(remaining int) (data []byte, ok bool, valid bool) {
	if remaining > 0 {
		return nil, false, false
	}
	total := 0
	for _, c := range a.chunks {
		total += len(c)
	}
	data = make([]byte, 0, total)
	for _, c := range a.chunks {
		data = append(data, c...)
	}
	valid = frame.Checksum(data) == a.expectedChecksum
	a.chunks = a.chunks[:0]
	a.active = false
	if !valid {
		return nil, true, false
	}
	return data, true, true
}

// Active reports whether a message assembly is currently in progress.
func (a *Assembler) Active() bool {
	return a.active
}

// Reset discards any partial assembly without checking a checksum,
// distinct from BeginNew in that no new expectedChecksum is recorded.
// Used by Reset-command handling and timeout recovery, where the input
// queue is torn down rather than restarted against a fresh message.
func (a *Assembler) Reset() {
	a.chunks = a.chunks[:0]
	a.expectedChecksum = 0
	a.active = false
}
