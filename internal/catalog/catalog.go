// Package catalog implements the course → module → lesson repositories.
//
// Every module is stored twice: once in the flat modules file and once
// embedded in its course. Every lesson is stored in the flat lessons file and
// embedded in its module (which in turn is embedded in the course). The
// repositories keep those copies in sync on each mutation:
//
//	lesson create  → lessons.json, then modules.json + courses.json
//	module create  → courses.json, then modules.json
//	course update  → courses.json
//
// The writes to different files are sequential and not atomic as a group. If
// one fails the copies may diverge; the consistency package detects and
// repairs that.
//
// Scoping ids use 0 for "no scope": ModuleRepository.ListAll(ctx, 0) reads the
// flat modules file while ListAll(ctx, 3) returns the modules embedded in
// course 3.
package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mrlokans/coursecatalog/internal/entities"
	"github.com/mrlokans/coursecatalog/internal/jsonstore"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

// Paths locates the three collection files.
type Paths struct {
	Courses string
	Modules string
	Lessons string
	// Sequences optionally holds the per-collection id high-water marks.
	// When empty, ids are allocated as max+1 of the stored records.
	Sequences string
}

// Mutation describes the outcome of one repository write operation.
type Mutation struct {
	OperationID string
	Entity      string
	Action      entities.AuditAction
	EntityID    int
	Scope       string
	Err         error
	// Writes counts the collection files replaced before the operation
	// returned.
	Writes      int
}

// MayHaveDiverged reports whether the mutation failed after writing some of
// its files, leaving the others behind. Failures before the first write
// (missing ids, unreadable files, a cancelled context) leave the stores as
// they were.
func (m Mutation) MayHaveDiverged() bool {
	return m.Err != nil && m.Writes > 0
}

// Recorder receives every mutation after it finished, successful or not.
type Recorder interface {
	RecordMutation(ctx context.Context, m Mutation)
}

type Option func(*shared)

func WithLogger(l *logger.Logger) Option {
	return func(s *shared) { s.log = l }
}

func WithRecorder(r Recorder) Option {
	return func(s *shared) { s.recorder = r }
}

// WithWriteHook registers fn to be called with the path of every collection
// file the repositories wrote.
func WithWriteHook(fn func(path string)) Option {
	return func(s *shared) { s.onWrite = fn }
}

// Catalog bundles the three repositories built over the same lock.
type Catalog struct {
	Courses *CourseRepository
	Modules *ModuleRepository
	Lessons *LessonRepository
}

// New wires the repositories. Public reads share a read lock and public
// mutations take the write lock, so writers within one process never
// interleave. Nested calls between repositories use the unlocked variants.
func New(paths Paths, opts ...Option) *Catalog {
	s := &shared{log: logger.Nop(), ids: &sequences{}}
	for _, opt := range opts {
		opt(s)
	}
	if paths.Sequences != "" {
		s.ids.file = jsonstore.NewFile[Sequence](paths.Sequences)
	}

	courses := &CourseRepository{
		file:   jsonstore.NewFile[entities.Course](paths.Courses),
		shared: s,
		log:    s.log.Named("courses"),
	}
	modules := &ModuleRepository{
		file:    jsonstore.NewFile[entities.Module](paths.Modules),
		courses: courses,
		shared:  s,
		log:     s.log.Named("modules"),
	}
	lessons := &LessonRepository{
		file:    jsonstore.NewFile[entities.Lesson](paths.Lessons),
		courses: courses,
		modules: modules,
		shared:  s,
		log:     s.log.Named("lessons"),
	}

	return &Catalog{Courses: courses, Modules: modules, Lessons: lessons}
}

// Lock blocks all repository calls until the returned func is called. The
// consistency repair uses it to rewrite the files without racing writers.
func (c *Catalog) Lock() (unlock func()) {
	c.Courses.shared.mu.Lock()
	return c.Courses.shared.mu.Unlock
}

// RLock blocks repository mutations until the returned func is called.
func (c *Catalog) RLock() (unlock func()) {
	c.Courses.shared.mu.RLock()
	return c.Courses.shared.mu.RUnlock
}

type shared struct {
	mu       sync.RWMutex
	log      *logger.Logger
	recorder Recorder
	onWrite  func(path string)
	ids      *sequences
}

func (s *shared) wrote(ctx context.Context, path string) {
	if op, ok := ctx.Value(operationStateKey{}).(*operationState); ok {
		op.writes++
	}
	if s.onWrite != nil {
		s.onWrite(path)
	}
}

func (s *shared) record(ctx context.Context, m Mutation) {
	if s.recorder == nil {
		return
	}
	if op, ok := ctx.Value(operationStateKey{}).(*operationState); ok {
		m.Writes = op.writes
	}
	s.recorder.RecordMutation(ctx, m)
}

type operationKey struct{}

type operationStateKey struct{}

// operationState is private to one public repository call, which holds the
// write lock for its whole duration.
type operationState struct {
	writes int
}

// WithOperationID attaches an id that groups the file writes of one request
// in logs and in the audit journal.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationKey{}, id)
}

// OperationID returns the id attached to ctx, if any.
func OperationID(ctx context.Context) string {
	id, _ := ctx.Value(operationKey{}).(string)
	return id
}

// startOperation returns ctx carrying an operation id, generating one when
// the caller did not supply it, and a fresh write counter.
func startOperation(ctx context.Context) (context.Context, string) {
	ctx = context.WithValue(ctx, operationStateKey{}, &operationState{})
	if id := OperationID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithOperationID(ctx, id), id
}
