package container

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/application/listing"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/session"
	"github.com/garyjia/billed/internal/application/submission"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/infrastructure/embedded"
	"github.com/garyjia/billed/internal/infrastructure/export"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/pkg/database"
	"github.com/garyjia/billed/pkg/utils"
)

// Client holds what billctl needs: the session, the remote store and the
// factories of the workflow and list presenter
type Client struct {
	config *config.Config
	logger *zap.Logger

	sessionDB  *database.DB
	session    *session.Context
	store      port.RemoteStore
	dispatcher dispatcher.Dispatcher

	// offline mode runs the bills resource in-process
	backend *Container

	closeOnce sync.Once
}

// NewClient opens the session database and connects to the bills API,
// or to a local database when cfg.Client.Offline is set
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	c := &Client{config: cfg, logger: logger}

	sessionBundle, err := ProvideDatabase(ctx, &config.DatabaseConfig{Path: cfg.Client.SessionPath}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	c.sessionDB = sessionBundle.DB
	c.session = session.NewContext(repository.NewSessionRepository(c.sessionDB.DB, logger))

	if cfg.Client.Offline {
		backendCfg := *cfg
		backendCfg.Worker.Enabled = false
		backend, err := NewContainer(&backendCfg, logger)
		if err == nil {
			err = backend.Start(ctx)
		}
		if err != nil {
			if backend != nil {
				backend.Close()
			}
			c.sessionDB.Close()
			return nil, fmt.Errorf("failed to start offline store: %w", err)
		}
		c.backend = backend
		c.store = embedded.NewStore(backend.Services().Bills)
	} else {
		store, err := ProvideRemoteClient(&cfg.Client, logger)
		if err != nil {
			c.sessionDB.Close()
			return nil, err
		}
		c.store = store
	}

	d, err := ProvideDispatcher(logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.dispatcher = d

	return c, nil
}

// Session returns the session context
func (c *Client) Session() *session.Context {
	return c.session
}

// Store returns the bills store
func (c *Client) Store() port.RemoteStore {
	return c.store
}

// Offline reports whether the store is the in-process one
func (c *Client) Offline() bool {
	return c.backend != nil
}

// NewWorkflow creates a submission workflow for view
func (c *Client) NewWorkflow(view port.NewBillView, navigator port.Navigator) *submission.Workflow {
	return submission.NewWorkflow(c.store, c.session, view, navigator,
		submission.WithDispatcher(c.dispatcher),
		submission.WithLogger(utils.NewKVLogger(c.logger)),
	)
}

// NewPresenter creates a bills page presenter with spreadsheet export
func (c *Client) NewPresenter(navigator port.Navigator) *listing.Presenter {
	return listing.NewPresenter(c.store, c.session, navigator,
		listing.WithExporter(export.NewXLSXExporter(c.logger)),
		listing.WithLogger(utils.NewKVLogger(c.logger)),
	)
}

// Close releases the dispatcher, the offline backend and the session database
func (c *Client) Close() error {
	var firstErr error
	c.closeOnce.Do(func() {
		if c.dispatcher != nil {
			if err := c.dispatcher.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if c.backend != nil {
			if err := c.backend.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if c.sessionDB != nil {
			if err := c.sessionDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}
