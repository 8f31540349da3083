package http

import (
	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/logger"
	"github.com/mrlokans/coursecatalog/internal/scheduler"
	"github.com/mrlokans/coursecatalog/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog *catalog.Catalog
	Logger  *logger.Logger

	// Consistency checks. Queue runs checks in the background and may be
	// nil, in which case POST /api/consistency/check is not registered.
	Checker tasks.ConsistencyRunner
	Queue   scheduler.Enqueuer
	Journal Journal

	// Health checks
	DataFiles map[string]string // name -> path of each collection file
	Database  Pinger

	// CORS
	AllowedOrigins []string

	// Pagination
	DefaultLimit int

	// Application info
	Version string
}
