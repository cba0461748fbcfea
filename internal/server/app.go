// Package server initializes and runs the gophersocial auth server. It picks
// storage backends from configuration, wires the session service to the HTTP
// API and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophersocial/internal/logging"
	"github.com/dmitrijs2005/gophersocial/internal/server/auth"
	"github.com/dmitrijs2005/gophersocial/internal/server/config"
	"github.com/dmitrijs2005/gophersocial/internal/server/httpapi"
	"github.com/dmitrijs2005/gophersocial/internal/server/mail"
	"github.com/dmitrijs2005/gophersocial/internal/server/metrics"
	"github.com/dmitrijs2005/gophersocial/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophersocial/internal/server/repositories/resettickets"
	"github.com/dmitrijs2005/gophersocial/internal/server/services"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	redis    *redis.Client
	sessions *services.SessionService
	server   *httpapi.HTTPServer
}

// NewApp validates c and builds every component. Logs go to stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logOut io.Writer) (_ *App, err error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(c.Log.Format, c.Log.Level, logOut)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}
	defer func() {
		if err != nil {
			_ = app.close()
		}
	}()

	app.repos, err = repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := app.repos.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	tickets, notifier, err := app.initRedis(ctx)
	if err != nil {
		return nil, err
	}

	codec, err := auth.NewCodec([]byte(c.JWT.Key), c.JWT.AccessTokenValidity())
	if err != nil {
		return nil, fmt.Errorf("token codec init error: %w", err)
	}

	m := metrics.New()

	app.sessions = services.NewSessionService(
		app.repos.Users(),
		tickets,
		codec,
		auth.NewArgon2idHasher(auth.DefaultArgon2Params),
		notifier,
		c,
		logger,
		services.WithRecorder(m),
	)

	app.server = httpapi.NewHTTPServer(c.HTTPAddress, logger, app.sessions, codec, httpapi.WithMetrics(m.Handler(), m))

	return app, nil
}

// initRedis connects to Redis when an address is configured. Without one,
// reset tickets live in process memory and mail is only logged.
func (app *App) initRedis(ctx context.Context) (resettickets.Store, mail.Notifier, error) {
	c := app.config

	if c.Redis.Addr == "" {
		app.logger.Warn(ctx, "redis address not set, using in-memory reset tickets and log-only mail")
		return resettickets.NewMemoryStore(c.Reset.TicketTTL()), mail.NewLogNotifier(app.logger), nil
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
	if err := app.redis.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("redis init error: %w", err)
	}

	return resettickets.NewRedisStore(app.redis, "", c.Reset.TicketTTL()),
		mail.NewRedisOutbox(app.redis, c.Mail.OutboxStream, c.Mail.From),
		nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases storage connections.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.close(); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close() error {
	var errs []error
	if app.repos != nil {
		errs = append(errs, app.repos.Close())
	}
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	return errors.Join(errs...)
}
