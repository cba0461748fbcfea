package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophersocial/internal/flagx"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load. Nested keys
// are separated by a double underscore:
//
//	GOPHERSOCIAL_JWT_SETTINGS__KEY -> jwt_settings.key
const EnvPrefix = "GOPHERSOCIAL_"

// flagKeys maps flag names onto configuration keys.
var flagKeys = map[string]string{
	"http-address":           "http_address",
	"database-dsn":           "database_dsn",
	"secret-key":             "jwt_settings.key",
	"access-token-validity":  "jwt_settings.access_token_validity_in_minutes",
	"refresh-token-validity": "jwt_settings.refresh_token_validity_in_minutes",
	"redis-addr":             "redis.addr",
	"log-level":              "log.level",
}

func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("gophersocial", pflag.ContinueOnError)

	fs.StringP("config", "c", "", "path to a YAML or JSON config file")
	fs.StringP("http-address", "a", cfg.HTTPAddress, "address and port to run server")
	fs.StringP("database-dsn", "d", cfg.DatabaseDSN, "PostgreSQL DSN (empty selects the in-memory store)")
	fs.StringP("secret-key", "s", cfg.JWT.Key, "HS256 signing key")
	fs.IntP("access-token-validity", "t", cfg.JWT.AccessTokenValidityInMinutes, "access token validity (in minutes)")
	fs.IntP("refresh-token-validity", "r", cfg.JWT.RefreshTokenValidityInMinutes, "refresh token validity (in minutes)")
	fs.String("redis-addr", cfg.Redis.Addr, "Redis address for reset tickets and the mail outbox")
	fs.String("log-level", cfg.Log.Level, "log level: debug, info, warn, error")

	return fs
}

// Load builds a Config from defaults, then the file named by -c/--config,
// then environment variables, then flags found in args. Arguments that do
// not belong to the server's flag set are ignored.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fs := newFlagSet(cfg)
	if err := fs.Parse(flagx.FilterArgs(args, fs)); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if err := k.Load(flagx.Provider(fs, flagKeys), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// LoadConfig is Load over the process arguments; it panics on failure.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}
