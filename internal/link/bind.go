// Package link turns a loaded config.LinkConfig into a bound
// transport.Transport, the piece of wiring shared by controllerctl and
// workerctl (linksim builds its own loopback pair without it).
package link

import (
	"fmt"
	"os"

	"github.com/danmuck/relaylink/internal/config"
	"github.com/danmuck/relaylink/internal/transport"
)

// Bind constructs the transport described by cfg. Loopback is
// intentionally rejected here: it describes a single-process pair of
// bound ends, not a transport one side can stand up on its own, and is
// only meaningful inside cmd/linksim.
func Bind(cfg config.LinkConfig) (transport.Transport, error) {
	switch cfg.Transport {
	case config.TransportScreen:
		return newFileScreen(cfg), nil
	case config.TransportRadio:
		return transport.NewFileRadio(cfg.RadioEmitterAddr, cfg.RadioReceiverAddr, cfg.BlockSize, cfg.IsController()), nil
	case config.TransportLoopback:
		return nil, fmt.Errorf("link: transport %q is single-process only, use cmd/linksim", config.TransportLoopback)
	default:
		return nil, fmt.Errorf("link: transport %q has no standalone binding, use cmd/linksim", cfg.Transport)
	}
}

// newFileScreen backs a Screen transport with two files standing in for
// the platform's "set display text" / "get display text" calls: Send
// writes the outbox file, Read reads the inbox file. Errors reading a
// not-yet-written inbox are treated as an empty inbound slot, matching
// the transport contract's tolerance for an idle channel.
func newFileScreen(cfg config.LinkConfig) *transport.Screen {
	setText := func(s string) {
		_ = os.WriteFile(cfg.ScreenOutboxPath, []byte(s), 0o600)
	}
	getText := func() string {
		data, err := os.ReadFile(cfg.ScreenInboxPath)
		if err != nil {
			return ""
		}
		return string(data)
	}
	return transport.NewScreen(setText, getText, cfg.BlockSize, cfg.IsController())
}
