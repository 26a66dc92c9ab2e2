package config

import (
	"fmt"
	"os"
	"strings"
)

// Template returns the starter TOML text for the given role.
func Template(role string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleController:
		return controllerTemplate, nil
	case RoleWorker:
		return workerTemplate, nil
	default:
		return "", fmt.Errorf("unknown config role: %s", role)
	}
}

// WriteTemplate renders the template for role and writes it to path,
// refusing to overwrite an existing file unless overwrite is set.
func WriteTemplate(path, role string, overwrite bool) error {
	template, err := Template(role)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const controllerTemplate = `block_size = 512
timeout_seconds = 5
role = "controller"
transport = "screen"
screen_inbox_path = "/tmp/relaylink/to-controller.txt"
screen_outbox_path = "/tmp/relaylink/to-worker.txt"
`

const workerTemplate = `block_size = 512
timeout_seconds = 5
role = "worker"
transport = "screen"
screen_inbox_path = "/tmp/relaylink/to-worker.txt"
screen_outbox_path = "/tmp/relaylink/to-controller.txt"
`
