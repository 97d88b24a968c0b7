package main

import (
	"database/sql"
	"fmt"

	"github.com/Iampro1712/apiconsole/internal/analytics"
	"github.com/Iampro1712/apiconsole/internal/catalog"
	"github.com/Iampro1712/apiconsole/internal/config"
	"github.com/Iampro1712/apiconsole/internal/console"
	"github.com/Iampro1712/apiconsole/internal/executor"
	"github.com/Iampro1712/apiconsole/internal/filter"
	"github.com/Iampro1712/apiconsole/internal/history"
	"github.com/Iampro1712/apiconsole/internal/logging"
	"github.com/Iampro1712/apiconsole/internal/migrations"
	"github.com/Iampro1712/apiconsole/internal/notify"
	"github.com/Iampro1712/apiconsole/internal/render"
	"github.com/Iampro1712/apiconsole/internal/tokenstore"
	"go.uber.org/zap"
)

// app holds the wired collaborators of one command invocation
type app struct {
	settings  config.Settings
	logger    *zap.Logger
	db        *sql.DB
	catalog   *catalog.Catalog
	notices   *notify.Center
	history   *history.Manager
	analytics *analytics.Manager
	bookmarks *filter.Bookmarks
	console   *console.Console
}

// setup loads settings and opens storage. Interactive mode routes
// notifications to the TUI toast center; commands print their own feedback.
func setup(interactive bool) (*app, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	settingsPath := flagSettings
	if settingsPath == "" {
		settingsPath = config.GetSettingsFilePath()
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		settings.BaseURL = config.NormalizeBaseURL(flagBaseURL)
	}
	if flagLogLevel != "" {
		settings.LogLevel = flagLogLevel
	}

	a := &app{settings: settings}
	a.logger = logging.New(logging.Config{
		Level:    settings.LogLevel,
		Format:   settings.LogFormat,
		FilePath: config.LogFile,
		Stderr:   flagVerbose && !interactive,
	})

	var store tokenstore.Store
	if flagEphemeral {
		store = tokenstore.NewMemory()
	} else {
		db, err := migrations.Open(config.DatabasePath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.db = db
		store = tokenstore.NewSQLite(db)
		a.bookmarks = filter.NewBookmarks(db)
		a.analytics = analytics.NewManager(db)
		if settings.HistoryEnabled() {
			a.history = history.NewManager(db)
		}
	}

	transport, err := executor.New(settings.TLS, executor.WithLogger(a.logger))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	a.catalog, err = loadCatalog(settings)
	if err != nil {
		a.Close()
		return nil, err
	}

	tokens, err := render.NewTokenExtractor(settings.TokenField)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid tokenField setting: %w", err)
	}

	a.notices = notify.NewCenter()
	opts := []console.Option{
		console.WithTokenExtractor(tokens),
		console.WithLogger(a.logger),
	}
	if interactive {
		opts = append(opts, console.WithNotifier(a.notices))
	}
	if a.history != nil {
		opts = append(opts, console.WithHistory(a.history))
	}
	a.console = console.New(settings.PipelineConfig(), store, transport, opts...)

	a.logger.Debug("console ready",
		zap.String("baseUrl", a.console.Config().BaseURL),
		zap.String("settings", settingsPath),
		zap.Bool("ephemeral", flagEphemeral),
		zap.Bool("history", a.history != nil))

	return a, nil
}

func loadCatalog(settings config.Settings) (*catalog.Catalog, error) {
	if settings.CatalogFile == "" {
		return catalog.Default()
	}
	path, err := config.ResolvePath(settings.CatalogFile)
	if err != nil {
		return nil, err
	}
	return catalog.Load(path)
}

// Close releases the database and flushes the logger
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
