package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"docuscore-backend/internal/analyses"
	"docuscore-backend/internal/connectivity"
	"docuscore-backend/internal/documents"
	"docuscore-backend/internal/export"
	"docuscore-backend/internal/services/health"
	"docuscore-backend/internal/shared/config"
	"docuscore-backend/internal/shared/server"
	"docuscore-backend/internal/shared/storage/db"
	"docuscore-backend/internal/shared/storage/object"
	localstore "docuscore-backend/internal/shared/storage/object/local"
	s3store "docuscore-backend/internal/shared/storage/object/s3"
	"docuscore-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Dialect          db.Dialect
	Store            object.ObjectStore
	Connectivity     connectivity.Provider
	DocumentsRepo    documents.DocumentsRepo
	AnalysesRepo     analyses.Repo
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	ExportService    *export.Service
	DocumentsHandler *documents.Handler
	AnalysisHandler  *analyses.Handler
	ExportHandler    *export.Handler
	Health           *health.Service
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.ConnectivityMode) == "" {
		cfg.ConnectivityMode = connectivity.ModeAuto
	}
	ctx := context.Background()

	sqlDB, dialect, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:       cfg,
		DB:           sqlDB,
		Dialect:      dialect,
		Store:        store,
		Connectivity: connectivity.FromConfig(cfg),
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Health:          app.Health,
		DocumentHandler: app.DocumentsHandler,
		AnalysisHandler: app.AnalysisHandler,
		ExportHandler:   app.ExportHandler,
	})

	return app, nil
}

// Close waits for background analyses and releases the database.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.AnalysesService != nil {
		a.AnalysesService.Wait()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// buildDB opens the session store. Tables are cleared on boot so nothing outlives the process.
func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, db.Dialect, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, "", nil
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, dialect, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, "", nil
		}
		return nil, "", err
	}

	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		sqlDB.Close()
		return nil, "", fmt.Errorf("run migrations: %w", err)
	}
	if err := db.ResetSession(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, "", err
	}

	return sqlDB, dialect, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo
	storage := "memory"

	if app.DB != nil {
		docRepo = &documents.SQLRepo{DB: app.DB}
		analysisRepo = &analyses.SQLRepo{DB: app.DB}
		storage = string(app.Dialect)
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
	}

	analysisSvc := analyses.NewService(analysisRepo, docRepo, app.Connectivity)
	analysisSvc.EnhancedDelay = app.Config.EnhancedDelay

	docSvc := &documents.Service{
		Store:    app.Store,
		Repo:     docRepo,
		Analyses: analysisSvc,
	}

	format, err := export.ParseFormat(app.Config.ExportFormat, export.FormatJSON)
	if err != nil {
		return err
	}
	exportSvc := &export.Service{
		Results:       analysisSvc,
		Docs:          docRepo,
		Store:         app.Store,
		DefaultFormat: format,
	}

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.DocumentsService = docSvc
	app.AnalysesService = analysisSvc
	app.ExportService = exportSvc
	app.DocumentsHandler = documents.NewHandler(docSvc, analysisSvc)
	app.AnalysisHandler = analyses.NewHandler(analysisSvc)
	app.ExportHandler = export.NewHandler(exportSvc)
	app.Health = health.NewService(app.Connectivity, app.Config.ConnectivityMode, storage)

	if app.DocumentsHandler == nil || app.AnalysisHandler == nil || app.ExportHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}
