package container

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"statflow/adapters/postgres"
	"statflow/internal/classify"
	"statflow/internal/config"
	"statflow/internal/dispatch"
	"statflow/internal/logging"
	"statflow/internal/progress"
	"statflow/internal/resilience"
	"statflow/internal/storage"
	"statflow/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *logging.Logger

	// Infrastructure
	DB        *sqlx.DB
	FileStore ports.FileStore

	// Repositories (data access layer)
	ProjectRepo        ports.ProjectRepository
	DatasetRepo        ports.DatasetRepository
	ClassificationRepo ports.ClassificationRepository
	ConfigRepo         ports.ConfigRepository
	ResultRepo         ports.ResultRepository

	// Services
	Gateway         *resilience.Gateway
	ClassifyService *classify.Service
	DispatchService *dispatch.Service
	ProgressTracker *progress.Tracker
}

// New creates the dependency injection container. The resilience gateway is
// constructed exactly once here and shared process-wide; it is never torn
// down mid-process.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := logging.NewDefaultLogger()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		FileStore: storage.NewLocalFileStore(cfg.Storage.BasePath),
	}

	c.ProjectRepo = postgres.NewProjectRepository(db)
	c.DatasetRepo = postgres.NewDatasetRepository(db)
	c.ClassificationRepo = postgres.NewClassificationRepository(db)
	c.ConfigRepo = postgres.NewConfigRepository(db)
	c.ResultRepo = postgres.NewResultRepository(db)

	c.Gateway = resilience.NewGateway(resilience.GatewayConfig{
		BaseURL:        cfg.RService.BaseURL,
		APIKey:         cfg.RService.APIKey,
		RequestTimeout: cfg.RService.RequestTimeout,
		MaxRetries:     cfg.RService.MaxRetries,
		InitialBackoff: cfg.RService.InitialBackoff,
		JitterFactor:   cfg.RService.JitterFactor,
		CacheTTL:       cfg.RService.CacheTTL,
		Breaker: resilience.BreakerConfig{
			FailureThreshold: cfg.RService.FailureThreshold,
			Cooldown:         cfg.RService.Cooldown,
		},
	}, logger)

	c.ClassifyService = classify.NewService(c.ClassificationRepo, c.ProjectRepo, logger)
	c.DispatchService = dispatch.NewService(
		c.ProjectRepo, c.DatasetRepo, c.ClassificationRepo, c.ConfigRepo, c.ResultRepo,
		c.FileStore, c.Gateway, logger)
	c.ProgressTracker = progress.NewTracker(c.ProjectRepo, c.ResultRepo)

	return c, nil
}

// Close releases held resources
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
