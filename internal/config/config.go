// Package config loads and validates the TOML configuration consumed by
// the controllerctl and workerctl binaries: block size, timeout, role,
// and which transport adapter to bind.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	RoleController = "controller"
	RoleWorker     = "worker"

	TransportLoopback = "loopback"
	TransportScreen   = "screen"
	TransportRadio    = "radio"
)

const (
	minBlockSize = 32
	maxBlockSize = 1024
)

// LinkConfig is the full TOML schema for either role. Transport-specific
// fields are optional and only validated when Transport selects them.
type LinkConfig struct {
	BlockSize      int     `toml:"block_size"`
	TimeoutSeconds float64 `toml:"timeout_seconds"`
	Role           string  `toml:"role"`
	Transport      string  `toml:"transport"`

	ScreenInboxPath  string `toml:"screen_inbox_path"`
	ScreenOutboxPath string `toml:"screen_outbox_path"`

	RadioEmitterAddr  string `toml:"radio_emitter_addr"`
	RadioReceiverAddr string `toml:"radio_receiver_addr"`
}

// DefaultLinkConfig returns the baseline a loaded config is overlaid onto.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		BlockSize:      512,
		TimeoutSeconds: 5,
		Role:           RoleController,
		Transport:      TransportLoopback,
	}
}

// Load reads path, overlays it onto the default config, and validates
// the result.
func Load(path string) (LinkConfig, error) {
	cfg := DefaultLinkConfig()

	var raw LinkConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return LinkConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("block_size") {
		cfg.BlockSize = raw.BlockSize
	}
	if meta.IsDefined("timeout_seconds") {
		cfg.TimeoutSeconds = raw.TimeoutSeconds
	}
	if meta.IsDefined("role") {
		cfg.Role = strings.ToLower(strings.TrimSpace(raw.Role))
	}
	if meta.IsDefined("transport") {
		cfg.Transport = strings.ToLower(strings.TrimSpace(raw.Transport))
	}
	if meta.IsDefined("screen_inbox_path") {
		cfg.ScreenInboxPath = strings.TrimSpace(raw.ScreenInboxPath)
	}
	if meta.IsDefined("screen_outbox_path") {
		cfg.ScreenOutboxPath = strings.TrimSpace(raw.ScreenOutboxPath)
	}
	if meta.IsDefined("radio_emitter_addr") {
		cfg.RadioEmitterAddr = strings.TrimSpace(raw.RadioEmitterAddr)
	}
	if meta.IsDefined("radio_receiver_addr") {
		cfg.RadioReceiverAddr = strings.TrimSpace(raw.RadioReceiverAddr)
	}

	if err := Validate(cfg); err != nil {
		return LinkConfig{}, fmt.Errorf("config validate failed (%s): %w", path, err)
	}
	return cfg, nil
}

// Validate enforces the range and enum constraints on a LinkConfig,
// regardless of how it was constructed.
func Validate(cfg LinkConfig) error {
	if cfg.BlockSize < minBlockSize || cfg.BlockSize > maxBlockSize {
		return fmt.Errorf("block_size %d out of range [%d, %d]", cfg.BlockSize, minBlockSize, maxBlockSize)
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be > 0, got %v", cfg.TimeoutSeconds)
	}
	switch cfg.Role {
	case RoleController, RoleWorker:
	default:
		return fmt.Errorf("role must be %q or %q, got %q", RoleController, RoleWorker, cfg.Role)
	}
	switch cfg.Transport {
	case TransportLoopback, TransportScreen, TransportRadio:
	default:
		return fmt.Errorf("transport must be %q, %q, or %q, got %q", TransportLoopback, TransportScreen, TransportRadio, cfg.Transport)
	}
	if cfg.Transport == TransportRadio && (cfg.RadioEmitterAddr == "" || cfg.RadioReceiverAddr == "") {
		return fmt.Errorf("transport %q requires radio_emitter_addr and radio_receiver_addr", TransportRadio)
	}
	if cfg.Transport == TransportScreen && (cfg.ScreenInboxPath == "" || cfg.ScreenOutboxPath == "") {
		return fmt.Errorf("transport %q requires screen_inbox_path and screen_outbox_path", TransportScreen)
	}
	return nil
}

// IsController reports whether cfg configures the controller role.
func (c LinkConfig) IsController() bool {
	return c.Role == RoleController
}
