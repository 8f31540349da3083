package catalog

import (
	"context"
	"slices"

	"github.com/mrlokans/coursecatalog/internal/entities"
	"github.com/mrlokans/coursecatalog/internal/jsonstore"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

// CourseRepository owns the courses file, which holds the canonical tree
// course → modules → lessons.
type CourseRepository struct {
	file   *jsonstore.File[entities.Course]
	shared *shared
	log    *logger.Logger
}

// ListAll returns every course with its embedded modules.
func (r *CourseRepository) ListAll(ctx context.Context) ([]entities.Course, error) {
	r.shared.mu.RLock()
	defer r.shared.mu.RUnlock()
	return r.listAll(ctx)
}

// GetByID returns the course with the given id.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*entities.Course, error) {
	r.shared.mu.RLock()
	defer r.shared.mu.RUnlock()
	return r.getByID(ctx, id)
}

// Create appends a course with the next free id and empty module lists. Title
// and description are taken as given; validating them is the caller's job.
func (r *CourseRepository) Create(ctx context.Context, patch CoursePatch) (course *entities.Course, err error) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()

	ctx, opID := startOperation(ctx)
	defer func() {
		m := Mutation{OperationID: opID, Entity: "course", Action: entities.AuditActionCreate, Err: err}
		if course != nil {
			m.EntityID = course.ID
		}
		r.shared.record(ctx, m)
	}()

	courses, err := r.listAll(ctx)
	if err != nil {
		return nil, err
	}

	id, err := r.shared.ids.reserve(ctx, "courses", NextID(courses))
	if err != nil {
		return nil, err
	}

	created := entities.Course{
		ID:          id,
		Title:       valueOf(patch.Title),
		Description: valueOf(patch.Description),
		Modules:     []entities.Module{},
		ModulesID:   []int{},
	}

	courses = append(courses, created)
	if err := r.write(ctx, courses); err != nil {
		return nil, err
	}

	r.log.Info("course created", "op_id", opID, "course_id", created.ID)
	return &created, nil
}

// Update shallow-merges patch onto the course. Embedded modules are kept
// unless the patch replaces them.
func (r *CourseRepository) Update(ctx context.Context, id int, patch CoursePatch) (course *entities.Course, err error) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()

	ctx, opID := startOperation(ctx)
	defer func() {
		r.shared.record(ctx, Mutation{OperationID: opID, Entity: "course", Action: entities.AuditActionUpdate, EntityID: id, Err: err})
	}()

	return r.update(ctx, id, patch)
}

// Delete removes the course. Its modules and lessons stay in the flat files.
func (r *CourseRepository) Delete(ctx context.Context, id int) (err error) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()

	ctx, opID := startOperation(ctx)
	defer func() {
		r.shared.record(ctx, Mutation{OperationID: opID, Entity: "course", Action: entities.AuditActionDelete, EntityID: id, Err: err})
	}()

	courses, err := r.listAll(ctx)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(courses, func(c entities.Course) bool { return c.ID == id })
	if idx == -1 {
		return courseNotFound(id)
	}

	courses = slices.Delete(courses, idx, idx+1)
	if err := r.write(ctx, courses); err != nil {
		return err
	}

	r.log.Info("course deleted", "op_id", opID, "course_id", id)
	return nil
}

func (r *CourseRepository) listAll(ctx context.Context) ([]entities.Course, error) {
	courses, err := r.file.ReadAll(ctx)
	if err != nil {
		r.log.Error("could not fetch courses", "file", r.file.Name(), "error", err)
		return nil, asStorageError(err)
	}
	r.log.Debug("courses fetched", "file", r.file.Name(), "count", len(courses))
	return courses, nil
}

func (r *CourseRepository) getByID(ctx context.Context, id int) (*entities.Course, error) {
	courses, err := r.listAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range courses {
		if courses[i].ID == id {
			return &courses[i], nil
		}
	}
	return nil, courseNotFound(id)
}

func (r *CourseRepository) update(ctx context.Context, id int, patch CoursePatch) (*entities.Course, error) {
	courses, err := r.listAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(courses, func(c entities.Course) bool { return c.ID == id })
	if idx == -1 {
		return nil, courseNotFound(id)
	}

	courses[idx] = patch.Apply(courses[idx])
	if err := r.write(ctx, courses); err != nil {
		return nil, err
	}

	r.log.Info("course updated", "op_id", OperationID(ctx), "course_id", id)
	updated := courses[idx]
	return &updated, nil
}

func (r *CourseRepository) write(ctx context.Context, courses []entities.Course) error {
	if err := r.file.WriteAll(ctx, courses); err != nil {
		r.log.Error("could not write courses", "op_id", OperationID(ctx), "file", r.file.Name(), "error", err)
		return asStorageError(err)
	}
	r.shared.wrote(ctx, r.file.Path())
	return nil
}
