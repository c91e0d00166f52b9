package commands

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/internal/config"
	"github.com/jakechorley/shift-optimiser/pkg/clients/sheetsclient"
	"github.com/jakechorley/shift-optimiser/pkg/db"
	"github.com/jakechorley/shift-optimiser/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database // nil when no database is configured
	Logger   *zap.Logger
	Ctx      context.Context

	sheetsOnce   sync.Once
	sheetsClient *sheetsclient.Client
	sheetsErr    error
}

// RequireDatabase returns the database, or an error naming the setting to configure
func (app *AppContext) RequireDatabase() (db.Database, error) {
	if app.Database == nil {
		return nil, fmt.Errorf("no database configured (set databaseURL or databaseSheetID, or %sDATABASE_URL)", config.EnvPrefix)
	}
	return app.Database, nil
}

// RunWriter returns the database as a run writer, or nil when runs are not persisted
func (app *AppContext) RunWriter() db.RunWriter {
	if app.Database == nil {
		return nil
	}
	return app.Database
}

// SheetsClient creates the Sheets client on first use, running the OAuth flow if needed.
// Commands that never publish do not need OAuth credentials.
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	app.sheetsOnce.Do(func() {
		app.sheetsClient, app.sheetsErr = app.newSheetsClient()
	})
	return app.sheetsClient, app.sheetsErr
}

func (app *AppContext) newSheetsClient() (*sheetsclient.Client, error) {
	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	store, err := utils.NewTokenStore()
	if err != nil {
		return nil, err
	}

	auth, err := utils.NewAuthenticator(oauthCfg, store, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.Logger.Debug("Sheets client initialized successfully")

	return client, nil
}
