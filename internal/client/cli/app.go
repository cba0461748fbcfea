package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophersocial/internal/client/client"
	"github.com/dmitrijs2005/gophersocial/internal/client/config"
	"github.com/dmitrijs2005/gophersocial/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophersocial/internal/client/services"
	"github.com/dmitrijs2005/gophersocial/internal/filex"
)

// App holds the services a single command invocation works with.
type App struct {
	auth   services.AuthService
	closer func() error
}

// NewApp opens the session database named by c and connects the
// authentication service to the server at c.ServerURL.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	path, err := filex.EnsureParentDir(c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("session directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient := client.NewHTTPClient(c.ServerURL, c.Timeout)
	as := services.NewAuthService(apiClient, metadata.NewSQLiteRepository(db))

	return &App{auth: as, closer: db.Close}, nil
}

// Close releases the session database.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}
