package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/mrlokans/coursecatalog/internal/entities"
	"github.com/mrlokans/coursecatalog/internal/jsonstore"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

// LessonRepository keeps the flat lessons file and the lessons embedded in
// modules in sync. Embedded modules are written through ModuleRepository, so
// one lesson mutation touches lessons.json, courses.json and modules.json.
type LessonRepository struct {
	file    *jsonstore.File[entities.Lesson]
	courses *CourseRepository
	modules *ModuleRepository
	shared  *shared
	log     *logger.Logger
}

// ListAll returns the lessons embedded in the module when both scoping ids
// are set, otherwise the flat lessons file.
func (r *LessonRepository) ListAll(ctx context.Context, moduleID, courseID int) ([]entities.Lesson, error) {
	r.shared.mu.RLock()
	defer r.shared.mu.RUnlock()
	return r.listAll(ctx, moduleID, courseID)
}

// GetByID looks the lesson up in the scope selected by moduleID and courseID.
func (r *LessonRepository) GetByID(ctx context.Context, lessonID, moduleID, courseID int) (*entities.Lesson, error) {
	r.shared.mu.RLock()
	defer r.shared.mu.RUnlock()

	lessons, err := r.listAll(ctx, moduleID, courseID)
	if err != nil {
		return nil, err
	}

	for i := range lessons {
		if lessons[i].ID == lessonID {
			return &lessons[i], nil
		}
	}
	if moduleID != 0 && courseID != 0 {
		return nil, lessonNotInModule(lessonID, moduleID)
	}
	return nil, lessonNotFound(lessonID)
}

// Create appends a lesson to the flat lessons file and to the module embedded
// in the course.
func (r *LessonRepository) Create(ctx context.Context, patch LessonPatch, courseID, moduleID int) (lesson *entities.Lesson, err error) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()

	ctx, opID := startOperation(ctx)
	defer func() {
		m := Mutation{OperationID: opID, Entity: "lesson", Action: entities.AuditActionCreate, Scope: lessonScope(courseID, moduleID), Err: err}
		if lesson != nil {
			m.EntityID = lesson.ID
		}
		r.shared.record(ctx, m)
	}()

	course, err := r.courses.getByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	module, err := findModule(course, moduleID)
	if err != nil {
		return nil, err
	}

	lessons, err := r.listAll(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	id, err := r.shared.ids.reserve(ctx, "lessons", NextID(lessons))
	if err != nil {
		return nil, err
	}

	created := patch.Apply(entities.Lesson{
		ID:       id,
		ModuleID: moduleID,
	})
	created.Normalize()

	lessons = append(lessons, created)
	if err := r.write(ctx, lessons); err != nil {
		return nil, err
	}

	module.Lessons = append(module.Lessons, created)
	module.LessonsID = append(module.LessonsID, created.ID)
	if _, err := r.modules.update(ctx, moduleID, ModulePatch{Lessons: module.Lessons, LessonsID: module.LessonsID}, courseID); err != nil {
		return nil, err
	}

	r.log.Info("lesson created", "op_id", opID, "lesson_id", created.ID, "module_id", moduleID, "course_id", courseID)
	return &created, nil
}

// Update merges patch into the flat lesson and, when the module embeds it,
// into the embedded copy. A lesson missing from the module is not an error:
// only the flat copy is updated in that case.
func (r *LessonRepository) Update(ctx context.Context, patch LessonPatch, lessonID, courseID, moduleID int) (lesson *entities.Lesson, err error) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()

	ctx, opID := startOperation(ctx)
	defer func() {
		r.shared.record(ctx, Mutation{OperationID: opID, Entity: "lesson", Action: entities.AuditActionUpdate, EntityID: lessonID, Scope: lessonScope(courseID, moduleID), Err: err})
	}()

	course, err := r.courses.getByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	module, err := findModule(course, moduleID)
	if err != nil {
		return nil, err
	}

	lessons, err := r.listAll(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(lessons, func(l entities.Lesson) bool { return l.ID == lessonID })
	if idx == -1 {
		return nil, lessonNotInGlobal(lessonID)
	}

	updated := patch.Apply(lessons[idx])
	lessons[idx] = updated
	if err := r.write(ctx, lessons); err != nil {
		return nil, err
	}

	if embedded := slices.IndexFunc(module.Lessons, func(l entities.Lesson) bool { return l.ID == lessonID }); embedded != -1 {
		module.Lessons[embedded] = updated
	} else {
		r.log.Warn("lesson not embedded in module, only the flat copy was updated",
			"op_id", opID, "lesson_id", lessonID, "module_id", moduleID, "course_id", courseID)
	}

	if _, err := r.modules.update(ctx, moduleID, ModulePatch{Lessons: module.Lessons, LessonsID: module.LessonsID}, courseID); err != nil {
		return nil, err
	}

	r.log.Info("lesson updated", "op_id", opID, "lesson_id", lessonID, "module_id", moduleID, "course_id", courseID)
	return &updated, nil
}

// Delete removes the lesson from the module embedded in the course and from
// the flat lessons file. The lesson must be embedded in the module; its
// absence from the flat file is tolerated.
func (r *LessonRepository) Delete(ctx context.Context, lessonID, courseID, moduleID int) (err error) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()

	ctx, opID := startOperation(ctx)
	defer func() {
		r.shared.record(ctx, Mutation{OperationID: opID, Entity: "lesson", Action: entities.AuditActionDelete, EntityID: lessonID, Scope: lessonScope(courseID, moduleID), Err: err})
	}()

	course, err := r.courses.getByID(ctx, courseID)
	if err != nil {
		return err
	}
	module, err := findModule(course, moduleID)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(module.Lessons, func(l entities.Lesson) bool { return l.ID == lessonID })
	if idx == -1 {
		return lessonNotInModule(lessonID, moduleID)
	}

	remaining := make([]entities.Lesson, 0, len(module.Lessons)-1)
	remaining = append(remaining, module.Lessons[:idx]...)
	remaining = append(remaining, module.Lessons[idx+1:]...)
	remainingIDs := without(module.LessonsID, lessonID)

	lessons, err := r.listAll(ctx, 0, 0)
	if err != nil {
		return err
	}
	lessons = slices.DeleteFunc(lessons, func(l entities.Lesson) bool { return l.ID == lessonID })
	if err := r.write(ctx, lessons); err != nil {
		return err
	}

	if _, err := r.modules.update(ctx, moduleID, ModulePatch{Lessons: remaining, LessonsID: remainingIDs}, courseID); err != nil {
		return err
	}

	r.log.Info("lesson deleted", "op_id", opID, "lesson_id", lessonID, "module_id", moduleID, "course_id", courseID)
	return nil
}

func (r *LessonRepository) listAll(ctx context.Context, moduleID, courseID int) ([]entities.Lesson, error) {
	if moduleID != 0 && courseID != 0 {
		module, err := r.modules.getByID(ctx, courseID, moduleID)
		if err != nil {
			return nil, err
		}
		return module.Lessons, nil
	}

	lessons, err := r.file.ReadAll(ctx)
	if err != nil {
		r.log.Error("could not fetch lessons", "file", r.file.Name(), "error", err)
		return nil, asStorageError(err)
	}
	r.log.Debug("lessons fetched", "file", r.file.Name(), "count", len(lessons))
	return lessons, nil
}

func (r *LessonRepository) write(ctx context.Context, lessons []entities.Lesson) error {
	if err := r.file.WriteAll(ctx, lessons); err != nil {
		r.log.Error("could not write lessons", "op_id", OperationID(ctx), "file", r.file.Name(), "error", err)
		return asStorageError(err)
	}
	r.shared.wrote(ctx, r.file.Path())
	return nil
}

func lessonScope(courseID, moduleID int) string {
	return fmt.Sprintf("course %d / module %d", courseID, moduleID)
}
