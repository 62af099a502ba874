package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cmdmon.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	testlog.Start(t)

	path := writeTempConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CmdPortValue == 0 {
		t.Fatalf("expected a nonzero default command port")
	}
	if cfg.CmdSocketPath == "" {
		t.Fatalf("expected a default socket path")
	}
}

func TestLoadRejectsBadAddress(t *testing.T) {
	testlog.Start(t)

	path := writeTempConfig(t, `bind_cmd_address_v4 = "not-an-ip"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an invalid bind address")
	}
}

func TestLoadRejectsRelativeSocketPath(t *testing.T) {
	testlog.Start(t)

	path := writeTempConfig(t, `cmd_socket_path = "relative/path.sock"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for a relative socket path")
	}
}

func TestDaemonConfigSatisfiesCollabConfig(t *testing.T) {
	testlog.Start(t)

	path := writeTempConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BindCmdAddress(collab.AddressFamilyV4) == nil {
		t.Fatalf("expected a v4 bind address")
	}
	if cfg.BindCmdAddress(collab.AddressFamilyV6) == nil {
		t.Fatalf("expected a v6 bind address")
	}
	if cfg.BindCmdPath() == "" {
		t.Fatalf("expected a bind path")
	}
	if cfg.CmdPort() == 0 {
		t.Fatalf("expected a nonzero port")
	}
}
