// Package frame encodes and decodes the wire frame used by the stream
// engine: a fixed-width text header followed by an opaque payload.
//
// Layout: #<new>|<cksum>|<remaining>|<seq>|<cmd>|<payload>
//
//	new       1 digit  0/1
//	cksum     2 hex digits, lowercase
//	remaining 3 decimal digits, zero-padded
//	seq       1 decimal digit, 0-9
//	cmd       2 decimal digits, 00-03
package frame

import (
	"errors"
	"fmt"

	"github.com/danmuck/relaylink/internal/protocol/command"
)

// FixedHeaderLen is the byte length of every frame up to and including the
// separator before the payload. It is derived from the field widths above
// rather than hardcoded, so header size can never drift out of sync with
// Encode/Decode.
var FixedHeaderLen = len(Encode(Frame{}))

var (
	ErrSeqOutOfRange       = errors.New("frame: seq out of range 0-9")
	ErrRemainingOutOfRange = errors.New("frame: remaining out of range 0-999")
	ErrCommandOutOfRange   = errors.New("frame: command out of range 0-3")
)

// Frame is one decoded wire frame.
type Frame struct {
	New       bool
	Checksum  uint8
	Remaining int
	Seq       int
	Cmd       command.Command
	Payload   []byte
}

// Encode renders f in the fixed wire format. It panics on field values
// that violate the width discipline (seq, remaining, cmd out of range) —
// callers are expected to validate before encoding; see Validate.
func Encode(f Frame) string {
	if err := Validate(f); err != nil {
		panic(err)
	}
	newBit := 0
	if f.New {
		newBit = 1
	}
	return fmt.Sprintf("#%d|%02x|%03d|%d|%02d|%s", newBit, f.Checksum, f.Remaining, f.Seq, uint8(f.Cmd), f.Payload)
}

// Validate reports whether f's fields fit the wire width discipline.
func Validate(f Frame) error {
	if f.Seq < 0 || f.Seq > 9 {
		return ErrSeqOutOfRange
	}
	if f.Remaining < 0 || f.Remaining > 999 {
		return ErrRemainingOutOfRange
	}
	if !f.Cmd.Valid() {
		return ErrCommandOutOfRange
	}
	return nil
}

// Decode parses a candidate wire string. ok is false for anything that
// does not match the fixed format exactly; the caller treats that as "no
// frame this tick" per the protocol's silent-discard policy for garbled
// input.
func Decode(s string) (f Frame, ok bool) {
	b := []byte(s)
	if len(b) < FixedHeaderLen {
		return Frame{}, false
	}
	if b[0] != '#' || b[2] != '|' || b[5] != '|' || b[9] != '|' || b[11] != '|' || b[14] != '|' {
		return Frame{}, false
	}

	newDigit := b[1]
	if newDigit != '0' && newDigit != '1' {
		return Frame{}, false
	}

	cksum, ok := parseHex2(b[3:5])
	if !ok {
		return Frame{}, false
	}

	remaining, ok := parseDecimal(b[6:9])
	if !ok {
		return Frame{}, false
	}

	seqDigit := b[10]
	if seqDigit < '0' || seqDigit > '9' {
		return Frame{}, false
	}

	cmdVal, ok := parseDecimal(b[12:14])
	if !ok || cmdVal > int(command.Max) {
		return Frame{}, false
	}

	payload := b[FixedHeaderLen:]
	out := make([]byte, len(payload))
	copy(out, payload)

	return Frame{
		New:       newDigit == '1',
		Checksum:  uint8(cksum),
		Remaining: remaining,
		Seq:       int(seqDigit - '0'),
		Cmd:       command.Command(cmdVal),
		Payload:   out,
	}, true
}

func parseDecimal(b []byte) (int, bool) {
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func parseHex2(b []byte) (int, bool) {
	if len(b) != 2 {
		return 0, false
	}
	hi, ok := hexDigit(b[0])
	if !ok {
		return 0, false
	}
	lo, ok := hexDigit(b[1])
	if !ok {
		return 0, false
	}
	return hi<<4 | lo, true
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	default:
		return 0, false
	}
}

// Checksum computes the XOR of every byte in data.
func Checksum(data []byte) uint8 {
	var c uint8
	for _, b := range data {
		c ^= b
	}
	return c
}
