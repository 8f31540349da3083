package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/mrlokans/coursecatalog/internal/entities"
	"github.com/mrlokans/coursecatalog/internal/jsonstore"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

// ModuleRepository keeps the flat modules file and the modules embedded in
// courses in sync.
type ModuleRepository struct {
	file    *jsonstore.File[entities.Module]
	courses *CourseRepository
	shared  *shared
	log     *logger.Logger
}

// ListAll returns the modules embedded in the course when courseID is set,
// otherwise the flat modules file.
func (r *ModuleRepository) ListAll(ctx context.Context, courseID int) ([]entities.Module, error) {
	r.shared.mu.RLock()
	defer r.shared.mu.RUnlock()
	return r.listAll(ctx, courseID)
}

// GetByID looks the module up in the scope selected by courseID.
func (r *ModuleRepository) GetByID(ctx context.Context, courseID, moduleID int) (*entities.Module, error) {
	r.shared.mu.RLock()
	defer r.shared.mu.RUnlock()
	return r.getByID(ctx, courseID, moduleID)
}

// Create adds a module to the course and to the flat modules file. The id is
// allocated from the flat file, not from the course.
func (r *ModuleRepository) Create(ctx context.Context, patch ModulePatch, courseID int) (module *entities.Module, err error) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()

	ctx, opID := startOperation(ctx)
	defer func() {
		m := Mutation{OperationID: opID, Entity: "module", Action: entities.AuditActionCreate, Scope: courseScope(courseID), Err: err}
		if module != nil {
			m.EntityID = module.ID
		}
		r.shared.record(ctx, m)
	}()

	modules, err := r.listAll(ctx, 0)
	if err != nil {
		return nil, err
	}

	course, err := r.courses.getByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	id, err := r.shared.ids.reserve(ctx, "modules", NextID(modules))
	if err != nil {
		return nil, err
	}

	created := entities.Module{
		ID:        id,
		Title:     valueOf(patch.Title),
		Lessons:   []entities.Lesson{},
		LessonsID: []int{},
		CourseID:  courseID,
	}

	course.Modules = append(course.Modules, created)
	course.ModulesID = append(course.ModulesID, created.ID)
	if _, err := r.courses.update(ctx, courseID, CoursePatch{Modules: course.Modules, ModulesID: course.ModulesID}); err != nil {
		return nil, err
	}

	modules = append(modules, created)
	if err := r.write(ctx, modules); err != nil {
		return nil, err
	}

	r.log.Info("module created", "op_id", opID, "module_id", created.ID, "course_id", courseID)
	return &created, nil
}

// Update merges patch into the module embedded in the course, then into the
// flat modules file. A module missing from either place is a distinct
// not-found error; when only the flat copy is missing the course has already
// been written.
func (r *ModuleRepository) Update(ctx context.Context, moduleID int, patch ModulePatch, courseID int) (module *entities.Module, err error) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()

	ctx, opID := startOperation(ctx)
	defer func() {
		r.shared.record(ctx, Mutation{OperationID: opID, Entity: "module", Action: entities.AuditActionUpdate, EntityID: moduleID, Scope: courseScope(courseID), Err: err})
	}()

	return r.update(ctx, moduleID, patch, courseID)
}

// Delete removes the module from the course and from the flat modules file.
// A module already absent from the flat file is not an error. Lessons of the
// module stay in the flat lessons file.
func (r *ModuleRepository) Delete(ctx context.Context, courseID, moduleID int) (err error) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()

	ctx, opID := startOperation(ctx)
	defer func() {
		r.shared.record(ctx, Mutation{OperationID: opID, Entity: "module", Action: entities.AuditActionDelete, EntityID: moduleID, Scope: courseScope(courseID), Err: err})
	}()

	course, err := r.courses.getByID(ctx, courseID)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(course.Modules, func(m entities.Module) bool { return m.ID == moduleID })
	if idx == -1 {
		return moduleNotInCourse(moduleID, courseID)
	}

	remaining := make([]entities.Module, 0, len(course.Modules)-1)
	remaining = append(remaining, course.Modules[:idx]...)
	remaining = append(remaining, course.Modules[idx+1:]...)

	if _, err := r.courses.update(ctx, courseID, CoursePatch{Modules: remaining, ModulesID: without(course.ModulesID, moduleID)}); err != nil {
		return err
	}

	modules, err := r.listAll(ctx, 0)
	if err != nil {
		return err
	}
	modules = slices.DeleteFunc(modules, func(m entities.Module) bool { return m.ID == moduleID })
	if err := r.write(ctx, modules); err != nil {
		return err
	}

	r.log.Info("module deleted", "op_id", opID, "module_id", moduleID, "course_id", courseID)
	return nil
}

func (r *ModuleRepository) listAll(ctx context.Context, courseID int) ([]entities.Module, error) {
	if courseID != 0 {
		course, err := r.courses.getByID(ctx, courseID)
		if err != nil {
			return nil, err
		}
		return course.Modules, nil
	}

	modules, err := r.file.ReadAll(ctx)
	if err != nil {
		r.log.Error("could not fetch modules", "file", r.file.Name(), "error", err)
		return nil, asStorageError(err)
	}
	r.log.Debug("modules fetched", "file", r.file.Name(), "count", len(modules))
	return modules, nil
}

func (r *ModuleRepository) getByID(ctx context.Context, courseID, moduleID int) (*entities.Module, error) {
	modules, err := r.listAll(ctx, courseID)
	if err != nil {
		return nil, err
	}

	for i := range modules {
		if modules[i].ID == moduleID {
			return &modules[i], nil
		}
	}
	return nil, moduleNotFound(moduleID)
}

func (r *ModuleRepository) update(ctx context.Context, moduleID int, patch ModulePatch, courseID int) (*entities.Module, error) {
	course, err := r.courses.getByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(course.Modules, func(m entities.Module) bool { return m.ID == moduleID })
	if idx == -1 {
		return nil, moduleNotInCourse(moduleID, courseID)
	}

	updated := patch.Apply(course.Modules[idx])
	course.Modules[idx] = updated

	if _, err := r.courses.update(ctx, courseID, CoursePatch{Modules: course.Modules}); err != nil {
		return nil, err
	}

	modules, err := r.listAll(ctx, 0)
	if err != nil {
		return nil, err
	}

	globalIdx := slices.IndexFunc(modules, func(m entities.Module) bool { return m.ID == moduleID })
	if globalIdx == -1 {
		return nil, moduleNotInGlobal(moduleID)
	}

	modules[globalIdx] = updated
	if err := r.write(ctx, modules); err != nil {
		return nil, err
	}

	r.log.Info("module updated", "op_id", OperationID(ctx), "module_id", moduleID, "course_id", courseID)
	return &updated, nil
}

func (r *ModuleRepository) write(ctx context.Context, modules []entities.Module) error {
	if err := r.file.WriteAll(ctx, modules); err != nil {
		r.log.Error("could not write modules", "op_id", OperationID(ctx), "file", r.file.Name(), "error", err)
		return asStorageError(err)
	}
	r.shared.wrote(ctx, r.file.Path())
	return nil
}

// findModule returns the module embedded in course, or a not-found error
// scoped to the course.
func findModule(course *entities.Course, moduleID int) (*entities.Module, error) {
	for i := range course.Modules {
		if course.Modules[i].ID == moduleID {
			return &course.Modules[i], nil
		}
	}
	return nil, moduleNotInCourse(moduleID, course.ID)
}

func without(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func courseScope(courseID int) string {
	if courseID == 0 {
		return ""
	}
	return fmt.Sprintf("course %d", courseID)
}
