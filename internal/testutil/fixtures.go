package testutil

import (
	"embed"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/sshproxy-ctl/internal/config"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadHostConfigFixture decodes a TOML host config fixture without
// applying defaults or validating it.
func LoadHostConfigFixture(name string) (*config.HostConfig, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	var cfg config.HostConfig
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidHostConfig returns the valid host config fixture.
func ValidHostConfig() (*config.HostConfig, error) {
	return LoadHostConfigFixture("valid_host_config.toml")
}

// InvalidHostConfig returns the invalid host config fixture.
func InvalidHostConfig() (*config.HostConfig, error) {
	return LoadHostConfigFixture("invalid_host_config.toml")
}

// PortTable returns a table file with three valid entries, a gap at 3101
// and two malformed lines.
func PortTable() ([]byte, error) {
	return LoadFixture("port_table.txt")
}
