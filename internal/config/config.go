package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ntpcore/cmdmon/internal/collab"
)

// DaemonConfig is the C/M-relevant slice of daemon configuration: where to
// bind the command port on each IP family, the local filesystem socket
// path, and the port itself. Load replaces a zero port with 323 and an
// empty socket path with /var/run/cmdmon/cmdmon.sock, so neither a zero
// port nor an empty path in the file disables an endpoint.
type DaemonConfig struct {
	BindCmdAddressV4 string `toml:"bind_cmd_address_v4"`
	BindCmdAddressV6 string `toml:"bind_cmd_address_v6"`
	CmdSocketPath    string `toml:"cmd_socket_path"`
	CmdPortValue     uint16 `toml:"cmd_port"`
	DebugHTTPAddr    string `toml:"debug_http_addr"`
}

// Load parses path, applies defaults to any zero-valued field, validates
// the result, and returns it.
func Load(path string) (DaemonConfig, error) {
	var cfg DaemonConfig
	if err := loadToml(path, &cfg); err != nil {
		return DaemonConfig{}, err
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return DaemonConfig{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *DaemonConfig) {
	if cfg.BindCmdAddressV4 == "" {
		cfg.BindCmdAddressV4 = "127.0.0.1"
	}
	if cfg.BindCmdAddressV6 == "" {
		cfg.BindCmdAddressV6 = "::1"
	}
	if cfg.CmdSocketPath == "" {
		cfg.CmdSocketPath = "/var/run/cmdmon/cmdmon.sock"
	}
	if cfg.CmdPortValue == 0 {
		cfg.CmdPortValue = 323
	}
	if cfg.DebugHTTPAddr == "" {
		cfg.DebugHTTPAddr = "127.0.0.1:9120"
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// Validate checks a config after defaults have been applied.
func Validate(cfg DaemonConfig) error {
	if net.ParseIP(cfg.BindCmdAddressV4) == nil {
		return fmt.Errorf("bind_cmd_address_v4 %q is not a valid IP", cfg.BindCmdAddressV4)
	}
	if net.ParseIP(cfg.BindCmdAddressV6) == nil {
		return fmt.Errorf("bind_cmd_address_v6 %q is not a valid IP", cfg.BindCmdAddressV6)
	}
	if cfg.CmdSocketPath != "" && !strings.HasPrefix(cfg.CmdSocketPath, "/") {
		return fmt.Errorf("cmd_socket_path %q must be an absolute path", cfg.CmdSocketPath)
	}
	return nil
}

// BindCmdAddress satisfies collab.Config.
func (cfg DaemonConfig) BindCmdAddress(family collab.AddressFamily) net.IP {
	if family == collab.AddressFamilyV6 {
		return net.ParseIP(cfg.BindCmdAddressV6)
	}
	return net.ParseIP(cfg.BindCmdAddressV4)
}

// BindCmdPath satisfies collab.Config.
func (cfg DaemonConfig) BindCmdPath() string {
	return cfg.CmdSocketPath
}

// CmdPort satisfies collab.Config.
func (cfg DaemonConfig) CmdPort() uint16 {
	return cfg.CmdPortValue
}
