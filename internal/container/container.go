package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/worker"
	httpapi "github.com/garyjia/billed/internal/interfaces/http"
	"github.com/garyjia/billed/pkg/database"
)

// Container owns the components behind the bills resource and their
// lifecycle. Components start in dependency order and close in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	db           *database.DB
	txManager    *sqlite.TxManager
	repositories *RepositoryBundle
	fileStorage  port.FileStorage
	services     *ServiceBundle
	workers      *worker.Manager

	mu     sync.Mutex
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups the repositories
type RepositoryBundle struct {
	Bills    port.BillRepository
	Sessions port.SessionStore
}

// ServiceBundle groups the application services
type ServiceBundle struct {
	Bills service.BillService
}

// HealthStatus represents the health of all components
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer validates cfg. Call Start to initialize the components.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes the database, storage, services and workers
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if err := c.initDatabase(runCtx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized", zap.String("path", c.config.Database.Path))

	storage, err := ProvideStorage(runCtx, &c.config.Storage, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.fileStorage = storage
	c.logger.Info("Storage initialized", zap.String("driver", c.config.Storage.Driver))

	services, err := ProvideServices(&ServiceDeps{
		Repos:     c.repositories,
		Storage:   c.fileStorage,
		TxManager: c.txManager,
		PublicURL: c.config.Server.PublicURL,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services

	workers, err := ProvideWorkers(c.services.Bills, &c.config.Worker, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize workers: %w", err)
	}
	c.workers = workers
	if err := c.workers.StartAll(runCtx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}

	c.ready.Store(true)
	c.logger.Info("Container started", zap.Int("workers", c.workers.Count()))
	return nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	bundle, err := ProvideDatabase(ctx, &c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.db = bundle.DB
	c.txManager = bundle.TxManager

	repos, err := ProvideRepositories(c.db.DB, c.logger)
	if err != nil {
		c.db.Close()
		return err
	}
	c.repositories = repos
	return nil
}

// Close stops the workers and closes the database
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed")
	return nil
}

// Ready returns true when all components are initialized
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health reports the state of the database and the workers
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	switch {
	case c.db == nil:
		status.Components["database"] = ComponentHealth{Message: "not initialized"}
		status.Overall = false
	default:
		if err := c.db.Ping(); err != nil {
			status.Components["database"] = ComponentHealth{Message: fmt.Sprintf("ping failed: %v", err)}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	}

	if c.workers == nil {
		status.Components["workers"] = ComponentHealth{Message: "not initialized"}
		status.Overall = false
	} else {
		status.Components["workers"] = ComponentHealth{
			Healthy: c.workers.IsRunning(),
			Message: fmt.Sprintf("worker count: %d", c.workers.Count()),
		}
		if !c.workers.IsRunning() {
			status.Overall = false
		}
	}

	return status
}

// NewHTTPServer creates the HTTP API server. Start must have succeeded.
func (c *Container) NewHTTPServer() *httpapi.Server {
	return ProvideHTTPServer(&c.config.Server, c.services.Bills, c.logger)
}

// DB returns the transaction manager
func (c *Container) DB() port.TransactionManager {
	return c.txManager
}

// Repositories returns the repository bundle
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// FileStorage returns the receipt storage
func (c *Container) FileStorage() port.FileStorage {
	return c.fileStorage
}

// Services returns the service bundle
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Workers returns the worker manager
func (c *Container) Workers() *worker.Manager {
	return c.workers
}

// Logger returns the root logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
