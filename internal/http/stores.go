package http

import (
	"context"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/consistency"
	"github.com/mrlokans/coursecatalog/internal/database/audit"
	"github.com/mrlokans/coursecatalog/internal/entities"
)

// CourseStore provides course operations for the courses controller.
type CourseStore interface {
	ListAll(ctx context.Context) ([]entities.Course, error)
	GetByID(ctx context.Context, id int) (*entities.Course, error)
	Create(ctx context.Context, patch catalog.CoursePatch) (*entities.Course, error)
	Update(ctx context.Context, id int, patch catalog.CoursePatch) (*entities.Course, error)
	Delete(ctx context.Context, id int) error
}

// ModuleStore provides module operations. A zero courseID selects the flat
// modules file.
type ModuleStore interface {
	ListAll(ctx context.Context, courseID int) ([]entities.Module, error)
	GetByID(ctx context.Context, courseID, moduleID int) (*entities.Module, error)
	Create(ctx context.Context, patch catalog.ModulePatch, courseID int) (*entities.Module, error)
	Update(ctx context.Context, moduleID int, patch catalog.ModulePatch, courseID int) (*entities.Module, error)
	Delete(ctx context.Context, courseID, moduleID int) error
}

// LessonStore provides lesson operations. Zero scoping ids select the flat
// lessons file.
type LessonStore interface {
	ListAll(ctx context.Context, moduleID, courseID int) ([]entities.Lesson, error)
	GetByID(ctx context.Context, lessonID, moduleID, courseID int) (*entities.Lesson, error)
	Create(ctx context.Context, patch catalog.LessonPatch, courseID, moduleID int) (*entities.Lesson, error)
	Update(ctx context.Context, patch catalog.LessonPatch, lessonID, courseID, moduleID int) (*entities.Lesson, error)
	Delete(ctx context.Context, lessonID, courseID, moduleID int) error
}

// Journal reads and writes the mutation journal.
type Journal interface {
	GetEvents(filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
	LogCheck(operationID string, report *consistency.Report, err error)
	LogRepair(operationID string, res *consistency.RepairResult, err error)
}

// Pinger reports whether a backing database is reachable.
type Pinger interface {
	Ping() error
}
