package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "link.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsForUnsetFields(t *testing.T) {
	path := writeTempConfig(t, `role = "worker"
transport = "loopback"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BlockSize != 512 || cfg.TimeoutSeconds != 5 {
		t.Fatalf("expected default block_size/timeout_seconds, got %+v", cfg)
	}
	if cfg.Role != RoleWorker || cfg.IsController() {
		t.Fatalf("expected worker role, got %+v", cfg)
	}
}

func TestLoadRejectsBlockSizeOutOfRange(t *testing.T) {
	path := writeTempConfig(t, `block_size = 16
role = "controller"
transport = "loopback"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for out-of-range block_size")
	}
}

func TestLoadRejectsUnknownRole(t *testing.T) {
	path := writeTempConfig(t, `role = "bystander"
transport = "loopback"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an unknown role")
	}
}

func TestLoadRequiresRadioAddrsForRadioTransport(t *testing.T) {
	path := writeTempConfig(t, `role = "controller"
transport = "radio"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for radio transport missing addrs")
	}
}

func TestTemplatesValidateAfterWrite(t *testing.T) {
	for _, role := range []string{RoleController, RoleWorker} {
		dir := t.TempDir()
		path := filepath.Join(dir, "link.toml")
		if err := WriteTemplate(path, role, false); err != nil {
			t.Fatalf("write template %s: %v", role, err)
		}
		if _, err := Load(path); err != nil {
			t.Fatalf("generated %s template failed to load: %v", role, err)
		}
	}
}

func TestWriteTemplateRefusesOverwriteByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "link.toml")
	if err := WriteTemplate(path, RoleController, false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteTemplate(path, RoleController, false); err == nil {
		t.Fatalf("expected overwrite to be refused")
	}
	if err := WriteTemplate(path, RoleController, true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}
