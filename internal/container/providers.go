// Package container wires the server and the billctl client from configuration.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/application/validation"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/domain/event"
	"github.com/garyjia/billed/internal/infrastructure/external/billsapi"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	"github.com/garyjia/billed/internal/infrastructure/worker"
	httpapi "github.com/garyjia/billed/internal/interfaces/http"
	"github.com/garyjia/billed/pkg/database"
	"github.com/garyjia/billed/pkg/utils"
)

// DatabaseBundle holds database-related components
type DatabaseBundle struct {
	DB        *database.DB
	TxManager *sqlite.TxManager
}

// ProvideDatabase opens the database and applies pending migrations
func ProvideDatabase(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:        db,
		TxManager: sqlite.NewTxManager(db.DB, logger),
	}, nil
}

// ProvideRepositories creates the repositories over sqlDB
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Bills:    repository.NewBillRepository(sqlDB, logger),
		Sessions: repository.NewSessionRepository(sqlDB, logger),
	}, nil
}

// ProvideStorage creates the receipt storage selected by cfg.Driver
func ProvideStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (port.FileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	switch cfg.Driver {
	case config.StorageLocal:
		return storage.NewLocalFileStorage(cfg.LocalDir, logger), nil
	case config.StorageS3:
		return storage.NewS3FileStorage(ctx, storage.S3Config{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ServiceDeps holds dependencies required for creating services
type ServiceDeps struct {
	Repos     *RepositoryBundle
	Storage   port.FileStorage
	TxManager port.TransactionManager
	PublicURL string
	Logger    *zap.Logger
}

// ProvideServices creates the application services
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Storage == nil {
		return nil, fmt.Errorf("file storage is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &ServiceBundle{
		Bills: service.NewBillService(
			deps.Repos.Bills,
			deps.Storage,
			deps.TxManager,
			validation.NewBillValidator(),
			deps.PublicURL,
			utils.NewKVLogger(deps.Logger),
		),
	}, nil
}

// ProvideWorkers creates the worker manager and registers the orphan sweeper
func ProvideWorkers(bills service.BillService, cfg *config.WorkerConfig, logger *zap.Logger) (*worker.Manager, error) {
	if bills == nil {
		return nil, fmt.Errorf("bill service is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("worker config is required")
	}

	manager := worker.NewManager(logger)
	if !cfg.Enabled {
		return manager, nil
	}

	manager.Register(worker.NewOrphanSweeper(bills, worker.SweeperConfig{
		PollInterval: cfg.SweepInterval,
		MaxAge:       cfg.OrphanMaxAge,
		BatchSize:    cfg.SweepBatchSize,
	}, logger))
	return manager, nil
}

// ProvideDispatcher creates the event dispatcher and logs every event it
// carries on the diagnostic channel
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	d := dispatcher.NewDispatcher(
		dispatcher.WithLogger(utils.NewKVLogger(logger)),
	)
	d.SubscribeAll("diagnostics", func(ctx context.Context, evt *event.Event) error {
		fields := []zap.Field{
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.Type.String()),
			zap.String("bill_key", evt.BillKey),
			zap.String("correlation_id", evt.CorrelationID),
			zap.Any("payload", evt.Payload),
		}
		if evt.Type.IsFailure() {
			logger.Warn("Bill workflow event", fields...)
		} else {
			logger.Debug("Bill workflow event", fields...)
		}
		return nil
	})
	return d, nil
}

// ProvideRemoteClient creates the HTTP client of the bills API
func ProvideRemoteClient(cfg *config.ClientConfig, logger *zap.Logger) (port.RemoteStore, error) {
	if cfg == nil || cfg.APIURL == "" {
		return nil, fmt.Errorf("api url is required")
	}
	return billsapi.NewClient(cfg.APIURL, logger,
		billsapi.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	), nil
}

// ProvideHTTPServer creates the HTTP API over the bill service
func ProvideHTTPServer(cfg *config.ServerConfig, bills service.BillService, logger *zap.Logger) *httpapi.Server {
	return httpapi.NewServer(httpapi.ServerConfig{
		Host:           cfg.Host,
		Port:           cfg.Port,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, bills, utils.NewKVLogger(logger))
}
