// Package transport defines the abstract, unreliable poll/response
// transport the stream engine runs over, plus a handful of thin shims
// implementing it: a loopback pair for tests, an in-game screen surface,
// and a radio emitter/receiver pair.
//
// None of these buffer or queue: each holds exactly one slot per
// direction, overwritten on every Send and read non-destructively by
// Read — matching the real constraint the engine is built around.
package transport

// Transport is the five-operation capability set the engine consumes.
// Send and Read each touch one atomic slot; Read may return the same
// string on repeated calls until the peer sends again.
type Transport interface {
	Send(frame string)
	Read() string
	Clear()
	BlockSize() int
	IsController() bool
}
