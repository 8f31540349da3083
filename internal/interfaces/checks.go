package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/coursecatalog/internal/audit"
	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/consistency"
	"github.com/mrlokans/coursecatalog/internal/database"
	"github.com/mrlokans/coursecatalog/internal/http"
	"github.com/mrlokans/coursecatalog/internal/scheduler"
	"github.com/mrlokans/coursecatalog/internal/tasks"
)

// =============================================================================
// Catalog
// =============================================================================

var _ http.CourseStore = (*catalog.CourseRepository)(nil)
var _ http.ModuleStore = (*catalog.ModuleRepository)(nil)
var _ http.LessonStore = (*catalog.LessonRepository)(nil)

// Error kinds carry their HTTP status
var _ catalog.StatusCoder = (*catalog.NotFoundError)(nil)
var _ catalog.StatusCoder = (*catalog.StorageError)(nil)

// =============================================================================
// Consistency
// =============================================================================

var _ consistency.Locker = (*catalog.Catalog)(nil)
var _ consistency.Backup = (*audit.Auditor)(nil)
var _ tasks.ConsistencyRunner = (*consistency.Checker)(nil)

// =============================================================================
// Journal
// =============================================================================

var _ catalog.Recorder = (*audit.Service)(nil)
var _ tasks.ConsistencyJournal = (*audit.Service)(nil)
var _ tasks.JournalPruner = (*audit.Service)(nil)
var _ http.Journal = (*audit.Service)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Inline)(nil)
