package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/adapters/esp"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/adapters/metrics"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/adapters/persistence"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/adapters/snapshot"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/common"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/gamedata/commands"
	gamedataQueries "github.com/mickdekkers/skyrim-alchemy-go/internal/application/gamedata/queries"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/mediator"
	potionQueries "github.com/mickdekkers/skyrim-alchemy-go/internal/application/potions/queries"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/potion"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/infrastructure/config"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/infrastructure/database"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/infrastructure/logging"
)

// appOptions controls what newApplication sets up for a command
type appOptions struct {
	// withDatabase opens the snapshot database
	withDatabase bool
	// configure adjusts the loaded config with command flags
	configure func(cfg *config.Config)
}

// application holds everything a command needs, wired from the config
type application struct {
	cfg         *config.Config
	ctx         context.Context
	logger      *logging.Logger
	mediator    mediator.Mediator
	db          *gorm.DB
	prefs       *config.UserConfigHandler
	store       *snapshot.FileStore
	metricsPath string
}

func newApplication(cmd *cobra.Command, opts appOptions) (*application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbosity > 0 {
		cfg.Logging.Level = "debug"
	}
	if verbosity > 1 {
		cfg.Logging.IncludeCaller = true
	}
	if opts.configure != nil {
		opts.configure(cfg)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app := &application{
		cfg:    cfg,
		ctx:    common.WithLogger(ctx, logger),
		logger: logger,
		store:  snapshot.NewFileStore(),
	}

	if preferencesPath != "" {
		app.prefs = config.NewUserConfigHandlerAt(preferencesPath)
	} else if app.prefs, err = config.NewUserConfigHandler(); err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("failed to create user config handler: %w", err)
	}

	if opts.withDatabase {
		db, err := database.Open(&cfg.Database)
		if err != nil {
			_ = logger.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.db = db
	}

	if err := app.wire(); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

// wire builds the mediator and registers every handler
func (a *application) wire() error {
	var (
		commandMetrics *metrics.CommandMetricsCollector
		decode         common.DecodeRecorder
		observer       potion.BuildObserver
	)
	if metricsOut != "" || a.cfg.Metrics.Enabled {
		a.metricsPath = metricsOut
		if a.metricsPath == "" {
			a.metricsPath = a.cfg.Metrics.OutputPath
		}
		metrics.InitRegistry()

		commandMetrics = metrics.NewCommandMetricsCollector()
		decodeMetrics := metrics.NewDecodeMetricsCollector()
		searchMetrics := metrics.NewSearchMetricsCollector()
		for _, err := range []error{commandMetrics.Register(), decodeMetrics.Register(), searchMetrics.Register()} {
			if err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}
		}
		decode, observer = decodeMetrics, searchMetrics
	}

	var repo gamedata.SnapshotRepository
	if a.db != nil {
		repo = persistence.NewGormSnapshotRepository(a.db, nil)
	}

	med := mediator.NewMediator()
	med.Use(common.LoggingMiddleware())
	med.Use(metrics.PrometheusMiddleware(commandMetrics))

	game := a.cfg.Game
	installation := esp.NewInstallation(game.PluginsDir, game.LoadOrderPath, game.StringsDir, game.Language, game.ImplicitPlugins)
	exportHandler := commands.NewExportGameDataHandler(installation, a.store, repo, decode, a.prefs, shared.NewRealClock())
	if err := mediator.RegisterHandler[*commands.ExportGameDataCommand](med, exportHandler); err != nil {
		return fmt.Errorf("failed to register ExportGameData handler: %w", err)
	}

	suggestHandler := potionQueries.NewSuggestPotionsHandler(a.store, repo, observer)
	if err := mediator.RegisterHandler[*potionQueries.SuggestPotionsQuery](med, suggestHandler); err != nil {
		return fmt.Errorf("failed to register SuggestPotions handler: %w", err)
	}

	if repo != nil {
		listHandler := gamedataQueries.NewListSnapshotsHandler(repo)
		if err := mediator.RegisterHandler[*gamedataQueries.ListSnapshotsQuery](med, listHandler); err != nil {
			return fmt.Errorf("failed to register ListSnapshots handler: %w", err)
		}
	}

	a.mediator = med
	return nil
}

// close flushes metrics and releases the database and log file
func (a *application) close() {
	if a.metricsPath != "" {
		if err := metrics.WriteTextfile(a.metricsPath); err != nil {
			a.logger.Log(common.LevelWarn, "Failed to write metrics", map[string]interface{}{"error": err.Error()})
		}
	}
	metrics.Reset()
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Log(common.LevelWarn, "Failed to close database", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = a.logger.Close()
}
