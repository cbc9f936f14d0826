package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

type Config struct {
	Server struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"server"`

	Bearer struct {
		Binary           string        `yaml:"binary"`
		WorkingDirectory string        `yaml:"workingDirectory"`
		SandboxRoot      string        `yaml:"sandboxRoot"`
		Timeout          time.Duration `yaml:"timeout"`
	} `yaml:"bearer"`

	Transport struct {
		Type string `yaml:"type"`
		SSE  struct {
			Host        string            `yaml:"host"`
			Port        int               `yaml:"port"`
			BaseURL     string            `yaml:"baseURL"`
			APIKeys     map[string]string `yaml:"apiKeys"`
			CORSOrigins []string          `yaml:"corsOrigins"`
			RateLimit   struct {
				Capacity   int `yaml:"capacity"`
				RefillRate int `yaml:"refillRate"`
			} `yaml:"rateLimit"`
		} `yaml:"sse"`
	} `yaml:"transport"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | console
	} `yaml:"logging"`

	Audit struct {
		Driver string `yaml:"driver"` // "" | mysql | postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"audit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Name = "bearer-mcp-server"
	cfg.Server.Version = "1.0.1"
	cfg.Bearer.Binary = "bearer"
	cfg.Bearer.SandboxRoot = "/workspace"
	cfg.Transport.Type = TransportStdio
	cfg.Transport.SSE.Host = "localhost"
	cfg.Transport.SSE.Port = 8000
	cfg.Transport.SSE.CORSOrigins = []string{"*"}
	cfg.Transport.SSE.RateLimit.Capacity = 60
	cfg.Transport.SSE.RateLimit.RefillRate = 1
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	return &cfg
}

// Load baca file config.yaml di atas default, lalu env override.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MCP_WORKING_DIRECTORY"); v != "" {
		c.Bearer.WorkingDirectory = v
	}
	if v := os.Getenv("BEARER_BINARY"); v != "" {
		c.Bearer.Binary = v
	}
	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		c.Transport.Type = strings.ToLower(v)
	}
	if v := os.Getenv("MCP_SSE_HOST"); v != "" {
		c.Transport.SSE.Host = v
	}
	if v := os.Getenv("MCP_SSE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MCP_SSE_PORT: %w", err)
		}
		c.Transport.SSE.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// normalize resolves the working directory once so nothing downstream needs
// to consult the process cwd again.
func (c *Config) normalize() error {
	if c.Bearer.WorkingDirectory != "" {
		abs, err := filepath.Abs(c.Bearer.WorkingDirectory)
		if err != nil {
			return fmt.Errorf("working directory: %w", err)
		}
		c.Bearer.WorkingDirectory = abs
	}
	return nil
}

// ValidTransport reports whether Transport.Type is known. Callers fall back to
// stdio when it is not.
func (c *Config) ValidTransport() bool {
	return c.Transport.Type == TransportStdio || c.Transport.Type == TransportSSE
}

// Validate checks the fields that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Transport.SSE.Port <= 0 || c.Transport.SSE.Port > 65535 {
		return fmt.Errorf("invalid sse port: %d", c.Transport.SSE.Port)
	}
	switch c.Audit.Driver {
	case "":
	case "mysql", "postgres":
		if c.Audit.DSN == "" {
			return fmt.Errorf("audit driver %s requires a dsn", c.Audit.Driver)
		}
	default:
		return fmt.Errorf("unknown audit driver: %s", c.Audit.Driver)
	}
	if c.Bearer.Timeout < 0 {
		return fmt.Errorf("bearer timeout must not be negative")
	}
	return nil
}

// SSEAddr is the listen address for the SSE transport.
func (c *Config) SSEAddr() string {
	return fmt.Sprintf("%s:%d", c.Transport.SSE.Host, c.Transport.SSE.Port)
}

// SSEBaseURL is the public URL clients use to reach the message endpoint.
func (c *Config) SSEBaseURL() string {
	if c.Transport.SSE.BaseURL != "" {
		return strings.TrimRight(c.Transport.SSE.BaseURL, "/")
	}
	return "http://" + c.SSEAddr()
}
