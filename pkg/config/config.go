// Package config loads agentdir configuration from YAML files and the
// environment.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`
	MCP       MCPConfig       `koanf:"mcp"`
	Store     StoreConfig     `koanf:"store"`
	Fetch     FetchConfig     `koanf:"fetch"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type MCPConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Transport string `koanf:"transport"` // stdio, http
	Addr      string `koanf:"addr"`
}

type StoreConfig struct {
	Backend    string `koanf:"backend"` // file, sqlite
	Path       string `koanf:"path"`
	StrictLoad bool   `koanf:"strict_load"`
}

type FetchConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// Global k instance
var k = koanf.New(".")

func Load(path string) (*Config, error) {
	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("server.addr", ":8080")
	k.Set("mcp.enabled", false)
	k.Set("mcp.transport", "stdio")
	k.Set("mcp.addr", "localhost:8081")
	k.Set("store.backend", "file")
	k.Set("store.path", "agents.json")
	k.Set("store.strict_load", false)
	k.Set("fetch.timeout", "30s")
	k.Set("telemetry.enabled", false)
	k.Set("telemetry.exporter", "stdout")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (AGENTDIR_STORE_BACKEND -> store.backend)
	if err := k.Load(env.Provider("AGENTDIR_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "AGENTDIR_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
