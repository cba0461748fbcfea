package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	var defaults Config
	defaults.LoadDefaults()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, &defaults)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Contains(t, c.SessionDB, "session.db")
}

func TestLoad_DefaultsWithoutOverrides(t *testing.T) {
	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoad_EnvThenFlags(t *testing.T) {
	t.Setenv("GOPHERSOCIAL_CLIENT_SERVER_URL", "http://env:1")
	t.Setenv("GOPHERSOCIAL_CLIENT_TIMEOUT", "3s")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "http://env:1", cfg.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	cfg, err = Load(newFlags(t, "-a", "http://flag:2", "--session", "/tmp/s.db"))
	require.NoError(t, err)
	assert.Equal(t, "http://flag:2", cfg.ServerURL, "flags win over env")
	assert.Equal(t, "/tmp/s.db", cfg.SessionDB)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	_, err := Load(newFlags(t, "--timeout", "0s"))
	require.Error(t, err)
}
