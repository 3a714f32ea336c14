package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	securejoin "github.com/cyphar/filepath-securejoin"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile   = "/etc/sshproxy/config.toml"
	DefaultStateDir     = "/var/lib/sshproxy"
	DefaultTableFile    = "ssh-port-table.txt"
	DefaultLockFile     = "ssh-port-table.lock"
	DefaultAuditFile    = "events.jsonl"
	DefaultStartPort    = 3100
	DefaultMinPort      = 1024
	DefaultBackend      = "exec"
	DefaultIPTablesPath = "/sbin/iptables"
	DefaultLockMode     = "held"

	// ConfigEnvVar overrides the config file location.
	ConfigEnvVar = "SSHPROXY_CONFIG"

	maxPort = 65535
)

// HostConfig represents the host configuration file
type HostConfig struct {
	StateDir  string `toml:"state_dir" yaml:"state_dir"`
	TableFile string `toml:"table_file" yaml:"table_file"`
	LockFile  string `toml:"lock_file" yaml:"lock_file"`
	AuditFile string `toml:"audit_file" yaml:"audit_file"`
	StartPort int    `toml:"start_port" yaml:"start_port"`
	MinPort   int    `toml:"min_port" yaml:"min_port"`
	// Namespace scopes directives to a named network namespace; empty for the host.
	Namespace string `toml:"namespace" yaml:"namespace"`
	// Backend is "exec" or "iptables".
	Backend string `toml:"backend" yaml:"backend"`
	// IPTablesPath is the binary run by the exec backend.
	IPTablesPath string `toml:"iptables_path" yaml:"iptables_path"`
	// LockMode is "held" or "split".
	LockMode string `toml:"lock_mode" yaml:"lock_mode"`
}

// Default returns a HostConfig with every field set to its default.
func Default() *HostConfig {
	return &HostConfig{
		StateDir:     DefaultStateDir,
		TableFile:    DefaultTableFile,
		LockFile:     DefaultLockFile,
		AuditFile:    DefaultAuditFile,
		StartPort:    DefaultStartPort,
		MinPort:      DefaultMinPort,
		Backend:      DefaultBackend,
		IPTablesPath: DefaultIPTablesPath,
		LockMode:     DefaultLockMode,
	}
}

// applyDefaults fills zero values left by a partial config file.
func (c *HostConfig) applyDefaults() {
	d := Default()
	if c.StateDir == "" {
		c.StateDir = d.StateDir
	}
	if c.TableFile == "" {
		c.TableFile = d.TableFile
	}
	if c.LockFile == "" {
		c.LockFile = d.LockFile
	}
	if c.AuditFile == "" {
		c.AuditFile = d.AuditFile
	}
	if c.StartPort == 0 {
		c.StartPort = d.StartPort
	}
	if c.MinPort == 0 {
		c.MinPort = d.MinPort
	}
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.IPTablesPath == "" {
		c.IPTablesPath = d.IPTablesPath
	}
	if c.LockMode == "" {
		c.LockMode = d.LockMode
	}
}

// Validate checks that the HostConfig is valid.
func (c *HostConfig) Validate() error {
	if !filepath.IsAbs(c.StateDir) {
		return fmt.Errorf("state_dir must be an absolute path (got %q)", c.StateDir)
	}

	if c.MinPort < 1 || c.MinPort > maxPort {
		return fmt.Errorf("min_port must be between 1 and %d (got %d)", maxPort, c.MinPort)
	}

	if c.StartPort < c.MinPort || c.StartPort > maxPort {
		return fmt.Errorf("start_port must be between min_port (%d) and %d (got %d)", c.MinPort, maxPort, c.StartPort)
	}

	validBackends := map[string]bool{"exec": true, "iptables": true}
	if !validBackends[c.Backend] {
		return fmt.Errorf("invalid backend: %s (must be exec or iptables)", c.Backend)
	}

	validLockModes := map[string]bool{"held": true, "split": true}
	if !validLockModes[c.LockMode] {
		return fmt.Errorf("invalid lock_mode: %s (must be held or split)", c.LockMode)
	}

	if strings.ContainsAny(c.Namespace, "/\x00") {
		return fmt.Errorf("invalid namespace %q", c.Namespace)
	}

	return nil
}

// Paths holds the resolved file locations
type Paths struct {
	StateDir  string
	TablePath string
	LockPath  string
	AuditPath string
}

// Paths resolves the state files under StateDir. Names that would escape
// the state directory are confined to it.
func (c *HostConfig) Paths() (*Paths, error) {
	table, err := securejoin.SecureJoin(c.StateDir, c.TableFile)
	if err != nil {
		return nil, fmt.Errorf("invalid table_file: %w", err)
	}

	lock, err := securejoin.SecureJoin(c.StateDir, c.LockFile)
	if err != nil {
		return nil, fmt.Errorf("invalid lock_file: %w", err)
	}

	audit, err := securejoin.SecureJoin(c.StateDir, c.AuditFile)
	if err != nil {
		return nil, fmt.Errorf("invalid audit_file: %w", err)
	}

	return &Paths{
		StateDir:  c.StateDir,
		TablePath: table,
		LockPath:  lock,
		AuditPath: audit,
	}, nil
}

// ConfigFile returns the config path to use: explicit, then $SSHPROXY_CONFIG,
// then the default.
func ConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(ConfigEnvVar); env != "" {
		return env
	}
	return DefaultConfigFile
}

// LoadHostConfig loads the host configuration. TOML is the default format;
// files ending in .yaml or .yml are read as YAML. A missing file yields the
// defaults unless required is set.
func LoadHostConfig(path string, required bool) (*HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			cfg := Default()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read host config: %w", err)
	}

	var cfg HostConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse host config: %w", err)
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse host config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse host config: unknown key %q", undecoded[0].String())
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid host config: %w", err)
	}

	return &cfg, nil
}
