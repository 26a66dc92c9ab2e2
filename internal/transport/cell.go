package transport

import "sync"

// Cell is a trivial in-memory mutable string slot, used to back Screen
// and Radio shims when no real platform call is available (local
// testing). Real deployments pass platform-backed closures
// instead of reaching for Cell.
type Cell struct {
	mu   sync.Mutex
	text string
}

func (c *Cell) Set(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = s
}

func (c *Cell) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}
