package server

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophersocial/internal/server/config"
	"github.com/dmitrijs2005/gophersocial/internal/server/mail"
	"github.com/dmitrijs2005/gophersocial/internal/server/repositories/resettickets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddress = "127.0.0.1:0"
	c.JWT.Key = "0123456789abcdef0123456789abcdef"
	return c
}

func TestNewApp_InMemory(t *testing.T) {
	var logs bytes.Buffer
	app, err := newApp(context.Background(), testConfig(), &logs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.close() })

	assert.Nil(t, app.redis)
	assert.NotNil(t, app.sessions)
	assert.Contains(t, logs.String(), "redis address not set")
}

func TestNewApp_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testConfig()
	c.Redis.Addr = mr.Addr()

	app, err := newApp(context.Background(), c, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.close() })

	require.NotNil(t, app.redis)
	tickets, notifier, err := app.initRedis(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &resettickets.RedisStore{}, tickets)
	assert.IsType(t, &mail.RedisOutbox{}, notifier)
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testConfig()
	c.Redis.Addr = mr.Addr()
	mr.Close()

	_, err := newApp(context.Background(), c, &bytes.Buffer{})
	assert.ErrorContains(t, err, "redis init error")
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := testConfig()
	c.JWT.Key = "short"

	_, err := newApp(context.Background(), c, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid configuration")

	c = testConfig()
	c.JWT.RefreshTokenValidityInMinutes = 0
	_, err = newApp(context.Background(), c, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	var logs bytes.Buffer
	app, err := newApp(context.Background(), testConfig(), &logs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}
