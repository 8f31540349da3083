// Package consistency verifies that the duplicated catalog records agree and
// rebuilds the flat files from the course tree when they do not.
//
// The course file is treated as the source of truth: every module embedded in
// a course and every lesson embedded in such a module must have an identical
// flat copy, and the id lists must mirror the embedded arrays. Records whose
// parent no longer exists anywhere in the tree are orphans of a
// non-cascading delete; they are reported but never removed.
package consistency

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/entities"
	"github.com/mrlokans/coursecatalog/internal/jsonstore"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

// Locker serializes the checker with repository calls. *catalog.Catalog
// implements it.
type Locker interface {
	Lock() (unlock func())
	RLock() (unlock func())
}

// Backup stores a copy of the catalog before Repair rewrites it.
type Backup interface {
	SaveSnapshot(kind string, data any) (string, error)
}

type Checker struct {
	courses *jsonstore.File[entities.Course]
	modules *jsonstore.File[entities.Module]
	lessons *jsonstore.File[entities.Lesson]
	locker  Locker
	backup  Backup
	log     *logger.Logger
	now     func() time.Time
}

type Option func(*Checker)

func WithLocker(l Locker) Option {
	return func(c *Checker) { c.locker = l }
}

func WithBackup(b Backup) Option {
	return func(c *Checker) { c.backup = b }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Checker) { c.log = l }
}

func NewChecker(paths catalog.Paths, opts ...Option) *Checker {
	c := &Checker{
		courses: jsonstore.NewFile[entities.Course](paths.Courses),
		modules: jsonstore.NewFile[entities.Module](paths.Modules),
		lessons: jsonstore.NewFile[entities.Lesson](paths.Lessons),
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("consistency")
	return c
}

type snapshot struct {
	courses []entities.Course
	modules []entities.Module
	lessons []entities.Lesson
}

func (c *Checker) load(ctx context.Context) (*snapshot, error) {
	courses, err := c.courses.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	modules, err := c.modules.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	lessons, err := c.lessons.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}
	return &snapshot{courses: courses, modules: modules, lessons: lessons}, nil
}

// Check reads the three files and reports every violated invariant.
func (c *Checker) Check(ctx context.Context) (*Report, error) {
	if c.locker != nil {
		unlock := c.locker.RLock()
		defer unlock()
	}

	s, err := c.load(ctx)
	if err != nil {
		c.log.Error("consistency check failed", "error", err)
		return nil, err
	}

	report := c.inspect(s)
	report.CheckedAt = c.now()

	if report.Consistent() {
		c.log.Info("consistency check passed", "issues", len(report.Issues))
	} else {
		c.log.Warn("consistency check found diverged records", "issues", len(report.Issues), "errors", report.Errors())
	}
	return report, nil
}

func (c *Checker) inspect(s *snapshot) *Report {
	r := &Report{
		Courses: len(s.courses),
		Modules: len(s.modules),
		Lessons: len(s.lessons),
		Issues:  []Issue{},
	}
	coursesFile, modulesFile, lessonsFile := c.courses.Name(), c.modules.Name(), c.lessons.Name()

	reportDuplicates(r, coursesFile, s.courses)
	flatModules := reportDuplicates(r, modulesFile, s.modules)
	flatLessons := reportDuplicates(r, lessonsFile, s.lessons)

	courseIDs := make(map[int]bool, len(s.courses))
	treeModules := make(map[int]bool)
	treeLessons := make(map[int]bool)

	for _, course := range s.courses {
		courseIDs[course.ID] = true
		checkIDList(r, coursesFile, course.ModulesID, ids(course.Modules),
			fmt.Sprintf("course %d modulesId", course.ID), Issue{CourseID: course.ID})

		for _, module := range course.Modules {
			treeModules[module.ID] = true
			at := Issue{CourseID: course.ID, ModuleID: module.ID}

			if module.CourseID != 0 && module.CourseID != course.ID {
				r.add(issue(at, SeverityError, KindParentMismatch, coursesFile,
					"module %d embedded in course %d has courseId %d", module.ID, course.ID, module.CourseID))
			}

			if flat, ok := flatModules[module.ID]; !ok {
				r.add(issue(at, SeverityError, KindMissingFlatCopy, modulesFile,
					"module %d of course %d has no flat copy", module.ID, course.ID))
			} else if !reflect.DeepEqual(flat, module) {
				r.add(issue(at, SeverityError, KindDivergedCopy, modulesFile,
					"module %d differs from the copy embedded in course %d", module.ID, course.ID))
			}

			checkIDList(r, coursesFile, module.LessonsID, ids(module.Lessons),
				fmt.Sprintf("module %d lessonsId", module.ID), at)

			for _, lesson := range module.Lessons {
				treeLessons[lesson.ID] = true
				at := Issue{CourseID: course.ID, ModuleID: module.ID, LessonID: lesson.ID}

				if lesson.ModuleID != module.ID {
					r.add(issue(at, SeverityError, KindParentMismatch, coursesFile,
						"lesson %d embedded in module %d has moduleId %d", lesson.ID, module.ID, lesson.ModuleID))
				}

				if flat, ok := flatLessons[lesson.ID]; !ok {
					r.add(issue(at, SeverityError, KindMissingFlatCopy, lessonsFile,
						"lesson %d of module %d has no flat copy", lesson.ID, module.ID))
				} else if !reflect.DeepEqual(flat, lesson) {
					r.add(issue(at, SeverityError, KindDivergedCopy, lessonsFile,
						"lesson %d differs from the copy embedded in module %d", lesson.ID, module.ID))
				}
			}
		}
	}

	for _, module := range s.modules {
		if treeModules[module.ID] {
			continue
		}
		at := Issue{CourseID: module.CourseID, ModuleID: module.ID}
		if courseIDs[module.CourseID] {
			r.add(issue(at, SeverityError, KindNotEmbedded, modulesFile,
				"module %d is not embedded in its course %d", module.ID, module.CourseID))
		} else {
			r.add(issue(at, SeverityInfo, KindOrphan, modulesFile,
				"module %d belongs to missing course %d", module.ID, module.CourseID))
		}
	}

	for _, lesson := range s.lessons {
		if treeLessons[lesson.ID] {
			continue
		}
		at := Issue{ModuleID: lesson.ModuleID, LessonID: lesson.ID}
		if treeModules[lesson.ModuleID] {
			r.add(issue(at, SeverityError, KindNotEmbedded, lessonsFile,
				"lesson %d is not embedded in its module %d", lesson.ID, lesson.ModuleID))
		} else {
			r.add(issue(at, SeverityInfo, KindOrphan, lessonsFile,
				"lesson %d belongs to module %d which is not part of any course", lesson.ID, lesson.ModuleID))
		}
	}

	return r
}

func issue(at Issue, severity Severity, kind Kind, file, format string, args ...any) Issue {
	at.Severity = severity
	at.Kind = kind
	at.File = file
	at.Message = fmt.Sprintf(format, args...)
	return at
}

// reportDuplicates adds an issue for every repeated id and returns the first
// record seen per id.
func reportDuplicates[T entities.Identifiable](r *Report, file string, items []T) map[int]T {
	byID := make(map[int]T, len(items))
	for _, item := range items {
		id := item.GetID()
		if _, seen := byID[id]; seen {
			r.add(Issue{Severity: SeverityError, Kind: KindDuplicateID, File: file,
				Message: fmt.Sprintf("id %d appears more than once", id)})
			continue
		}
		byID[id] = item
	}
	return byID
}

// checkIDList verifies that list holds each embedded id exactly once and
// nothing else.
func checkIDList(r *Report, file string, list, embedded []int, what string, at Issue) {
	for _, id := range embedded {
		if n := count(list, id); n != 1 {
			r.add(issue(at, SeverityError, KindIDListMismatch, file,
				"%s lists id %d %d times, want 1", what, id, n))
		}
	}
	for _, id := range list {
		if !slices.Contains(embedded, id) {
			r.add(issue(at, SeverityError, KindDanglingID, file,
				"%s lists id %d with no embedded record", what, id))
		}
	}
}

func count(list []int, id int) int {
	n := 0
	for _, v := range list {
		if v == id {
			n++
		}
	}
	return n
}

func ids[T entities.Identifiable](items []T) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, item.GetID())
	}
	return out
}
