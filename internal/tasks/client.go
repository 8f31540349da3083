package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/coursecatalog/internal/logger"
)

// Client wraps backlite to provide task queue functionality.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config
	log    *logger.Logger

	mu      sync.RWMutex
	started bool
}

// TasksDBPath returns the queue database path kept next to mainDBPath with a
// "-tasks" suffix, e.g. ./data/audit.db → ./data/audit-tasks.db.
func TasksDBPath(mainDBPath string) string {
	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return filepath.Join(dir, name+"-tasks"+ext)
}

// NewClient creates a new task queue client with a dedicated SQLite database
// stored alongside mainDBPath.
func NewClient(mainDBPath string, cfg Config, log *logger.Logger) (*Client, error) {
	log = log.Named("tasks")

	// WAL keeps the workers from blocking each other
	db, err := sql.Open("sqlite3", TasksDBPath(mainDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          &zapLogger{log: log},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}

	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	return &Client{
		client: client,
		db:     db,
		config: cfg,
		log:    log,
	}, nil
}

// Register registers task queues with the client.
// Must be called before Start().
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start begins processing tasks. It does not block; use Stop() for graceful
// shutdown.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.log.Info("task queue started", "workers", c.config.Workers)
	c.client.Start(ctx)
}

// Stop gracefully shuts down the task queue, waiting for active tasks to complete.
// Returns true if all workers finished before the context deadline.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	if !c.started {
		c.mu.RUnlock()
		return true
	}
	c.mu.RUnlock()

	c.log.Info("stopping task queue")
	success := c.client.Stop(ctx)
	if success {
		c.log.Info("task queue stopped gracefully")
	} else {
		c.log.Warn("task queue stopped with timeout, some tasks may not have completed")
	}
	return success
}

// Close releases all resources. Should be called after Stop().
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Add starts an operation to enqueue one or more tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.client.Add(tasks...)
}

// Enqueue saves a single task and returns its id.
func (c *Client) Enqueue(task backlite.Task) (string, error) {
	ids, err := c.client.Add(task).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task.Config().Name, err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("enqueue %s: no task id returned", task.Config().Name)
	}
	return ids[0], nil
}

// Status returns the status of a task by ID.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.client.Status(ctx, taskID)
}

// zapLogger implements backlite.Logger on top of the application logger.
type zapLogger struct {
	log *logger.Logger
}

func (l *zapLogger) Info(message string, params ...any) {
	l.log.Info(message, params...)
}

func (l *zapLogger) Error(message string, params ...any) {
	l.log.Error(message, params...)
}
