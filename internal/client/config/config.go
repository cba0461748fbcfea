package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/filex"
	"github.com/dmitrijs2005/gophersocial/internal/flagx"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "GOPHERSOCIAL_CLIENT_"

// Config holds runtime settings for the gophersocial CLI.
//
// Fields:
//   - ServerURL: base URL of the server's HTTP API.
//   - SessionDB: path of the SQLite file caching the current session.
//   - Timeout: per-request HTTP timeout.
type Config struct {
	ServerURL string        `koanf:"server_url"`
	SessionDB string        `koanf:"session_db"`
	Timeout   time.Duration `koanf:"timeout"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SessionDB = filex.DefaultStatePath("gophersocial", "session.db")
	c.Timeout = 10 * time.Second
}

var flagKeys = map[string]string{
	"server":  "server_url",
	"session": "session_db",
	"timeout": "timeout",
}

// RegisterFlags defines the client's flags on fs with defaults taken from c.
func RegisterFlags(fs *pflag.FlagSet, c *Config) {
	fs.StringP("server", "a", c.ServerURL, "base URL of the gophersocial server")
	fs.String("session", c.SessionDB, "path of the local session database")
	fs.Duration("timeout", c.Timeout, "HTTP request timeout")
}

// Load applies, over defaults, GOPHERSOCIAL_CLIENT_* environment variables
// and then the flags set on fs. fs must carry the flags of RegisterFlags and
// already be parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if err := k.Load(flagx.Provider(fs, flagKeys), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	return cfg, nil
}
