// Package config handles configuration for the server component: defaults,
// an optional YAML/JSON file, GOPHERSOCIAL_* environment variables and
// command-line flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/logging"
)

// MinSigningKeyLength is the shortest HS256 key accepted, in bytes.
const MinSigningKeyLength = 32

// Config holds runtime settings for the gophersocial server. It is loaded
// once at startup and treated as read-only afterwards.
type Config struct {
	HTTPAddress string      `koanf:"http_address"`
	DatabaseDSN string      `koanf:"database_dsn"`
	Log         LogConfig   `koanf:"log"`
	JWT         JWTSettings `koanf:"jwt_settings"`
	Redis       RedisConfig `koanf:"redis"`
	Reset       ResetConfig `koanf:"reset"`
	Mail        MailConfig  `koanf:"mail"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// JWTSettings configures access token signing and the validity windows of
// both halves of a session.
type JWTSettings struct {
	Key                           string `koanf:"key"`
	AccessTokenValidityInMinutes  int    `koanf:"access_token_validity_in_minutes"`
	RefreshTokenValidityInMinutes int    `koanf:"refresh_token_validity_in_minutes"`
}

func (j JWTSettings) AccessTokenValidity() time.Duration {
	return time.Duration(j.AccessTokenValidityInMinutes) * time.Minute
}

func (j JWTSettings) RefreshTokenValidity() time.Duration {
	return time.Duration(j.RefreshTokenValidityInMinutes) * time.Minute
}

// RedisConfig points at the Redis instance holding reset tickets and the
// mail outbox. An empty Addr selects in-process fallbacks.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// ResetConfig drives the forgot/reset password flow.
type ResetConfig struct {
	TicketTTLMinutes int    `koanf:"ticket_ttl_minutes"`
	PasswordURL      string `koanf:"password_url"`
}

func (r ResetConfig) TicketTTL() time.Duration {
	return time.Duration(r.TicketTTLMinutes) * time.Minute
}

type MailConfig struct {
	From         string `koanf:"from"`
	OutboxStream string `koanf:"outbox_stream"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: no signing key is provided; one must be configured explicitly.
func (c *Config) LoadDefaults() {
	c.HTTPAddress = ":8080"
	c.DatabaseDSN = ""
	c.Log = LogConfig{Level: "info", Format: "json"}
	c.JWT = JWTSettings{
		AccessTokenValidityInMinutes:  15,
		RefreshTokenValidityInMinutes: 7 * 24 * 60,
	}
	c.Redis = RedisConfig{}
	c.Reset = ResetConfig{
		TicketTTLMinutes: 60,
		PasswordURL:      "http://localhost:3000/reset-password",
	}
	c.Mail = MailConfig{
		From:         "no-reply@gophersocial.local",
		OutboxStream: "mail:outbox",
	}
}

// Validate reports every setting that would make the server unusable.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPAddress == "" {
		errs = append(errs, errors.New("http_address must be set"))
	}
	if len(c.JWT.Key) < MinSigningKeyLength {
		errs = append(errs, fmt.Errorf("jwt_settings.key must be at least %d bytes", MinSigningKeyLength))
	}
	if c.JWT.AccessTokenValidityInMinutes <= 0 {
		errs = append(errs, errors.New("jwt_settings.access_token_validity_in_minutes must be positive"))
	}
	if c.JWT.RefreshTokenValidityInMinutes <= 0 {
		errs = append(errs, errors.New("jwt_settings.refresh_token_validity_in_minutes must be positive"))
	}
	if c.Reset.TicketTTLMinutes <= 0 {
		errs = append(errs, errors.New("reset.ticket_ttl_minutes must be positive"))
	}
	if u, err := url.Parse(c.Reset.PasswordURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("reset.password_url %q is not an absolute URL", c.Reset.PasswordURL))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}
