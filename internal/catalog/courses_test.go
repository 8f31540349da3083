package catalog

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/coursecatalog/internal/entities"
)

func TestCourseRepository_ListAll(t *testing.T) {
	ctx := context.Background()

	t.Run("returns every course", func(t *testing.T) {
		cat, _ := setupCatalog(t, newFixture())

		courses, err := cat.Courses.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, newFixture().Courses, courses)
	})

	t.Run("repeated reads are equal", func(t *testing.T) {
		cat, _ := setupCatalog(t, newFixture())

		first, err := cat.Courses.ListAll(ctx)
		require.NoError(t, err)
		second, err := cat.Courses.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("missing file is a storage error", func(t *testing.T) {
		cat, paths := setupCatalog(t, newFixture())
		require.NoError(t, os.Remove(paths.Courses))

		_, err := cat.Courses.ListAll(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStorage))

		var storageErr *StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.Equal(t, "courses.json", storageErr.File)
		assert.Equal(t, http.StatusInternalServerError, storageErr.StatusCode())
	})

	t.Run("corrupt file is a storage error", func(t *testing.T) {
		cat, paths := setupCatalog(t, newFixture())
		require.NoError(t, os.WriteFile(paths.Courses, []byte("[{"), 0644))

		_, err := cat.Courses.ListAll(ctx)
		assert.ErrorIs(t, err, ErrStorage)
	})
}

func TestCourseRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	cat, _ := setupCatalog(t, newFixture())

	t.Run("finds course", func(t *testing.T) {
		course, err := cat.Courses.GetByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, newFixture().Courses[1], *course)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := cat.Courses.GetByID(ctx, 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "Course ID [99] not found", err.Error())

		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, http.StatusNotFound, notFound.StatusCode())
	})
}

func TestCourseRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("first course on empty file gets id 1", func(t *testing.T) {
		cat, _ := setupEmptyCatalog(t)

		course, err := cat.Courses.Create(ctx, CoursePatch{Title: strPtr("T"), Description: strPtr("D")})
		require.NoError(t, err)

		expected := entities.Course{ID: 1, Title: "T", Description: "D", Modules: []entities.Module{}, ModulesID: []int{}}
		assert.Equal(t, expected, *course)

		courses, err := cat.Courses.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []entities.Course{expected}, courses)
	})

	t.Run("allocates max id plus one", func(t *testing.T) {
		f := newFixture()
		f.Courses[1].ID = 7
		cat, _ := setupCatalog(t, f)

		course, err := cat.Courses.Create(ctx, CoursePatch{Title: strPtr("New course"), Description: strPtr("Brand new course")})
		require.NoError(t, err)
		assert.Equal(t, 8, course.ID)
	})

	t.Run("does not reuse the id of a deleted course", func(t *testing.T) {
		cat, paths := setupCatalog(t, newFixture())

		created, err := cat.Courses.Create(ctx, CoursePatch{Title: strPtr("Latest"), Description: strPtr("Latest course")})
		require.NoError(t, err)
		require.Equal(t, 3, created.ID)
		require.NoError(t, cat.Courses.Delete(ctx, created.ID))

		course, err := cat.Courses.Create(ctx, CoursePatch{Title: strPtr("Another"), Description: strPtr("Another course")})
		require.NoError(t, err)
		assert.Equal(t, 4, course.ID)
		assert.JSONEq(t, `[{"collection":"courses","lastId":4}]`, string(readFile(t, paths.Sequences)))
	})

	t.Run("without sequences file falls back to max plus one", func(t *testing.T) {
		f := newFixture()
		paths := testPaths(t)
		paths.Sequences = ""
		writeJSON(t, paths.Courses, f.Courses)
		cat := New(paths)

		course, err := cat.Courses.Create(ctx, CoursePatch{Title: strPtr("Another"), Description: strPtr("Another course")})
		require.NoError(t, err)
		assert.Equal(t, 3, course.ID)
	})

	t.Run("storage failure is propagated", func(t *testing.T) {
		cat, paths := setupEmptyCatalog(t)
		require.NoError(t, os.Remove(paths.Courses))

		_, err := cat.Courses.Create(ctx, CoursePatch{Title: strPtr("T"), Description: strPtr("D")})
		assert.ErrorIs(t, err, ErrStorage)
	})
}

func TestCourseRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("shallow merge keeps untouched fields", func(t *testing.T) {
		cat, _ := setupCatalog(t, newFixture())

		course, err := cat.Courses.Update(ctx, 1, CoursePatch{Title: strPtr("Renamed course")})
		require.NoError(t, err)

		expected := newFixture().Courses[0]
		expected.Title = "Renamed course"
		assert.Equal(t, expected, *course)

		stored, err := cat.Courses.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, expected, *stored)
	})

	t.Run("supplied modules replace the embedded array", func(t *testing.T) {
		cat, _ := setupCatalog(t, newFixture())

		course, err := cat.Courses.Update(ctx, 1, CoursePatch{Modules: []entities.Module{}, ModulesID: []int{}})
		require.NoError(t, err)
		assert.Empty(t, course.Modules)
		assert.Empty(t, course.ModulesID)
		assert.Equal(t, "Test Course 1", course.Title)
	})

	t.Run("unknown id is not found and nothing is written", func(t *testing.T) {
		cat, paths := setupCatalog(t, newFixture())
		before := snapshot(t, paths)

		_, err := cat.Courses.Update(ctx, 42, CoursePatch{Title: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, before, snapshot(t, paths))
	})
}

func TestCourseRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes course without cascading", func(t *testing.T) {
		cat, _ := setupCatalog(t, newFixture())

		require.NoError(t, cat.Courses.Delete(ctx, 1))

		_, err := cat.Courses.GetByID(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)

		// modules and lessons of the deleted course stay addressable
		module, err := cat.Modules.GetByID(ctx, 0, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, module.CourseID)

		lesson, err := cat.Lessons.GetByID(ctx, 1, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, lesson.ModuleID)
	})

	t.Run("unknown id is not found and nothing is written", func(t *testing.T) {
		cat, paths := setupCatalog(t, newFixture())
		before := snapshot(t, paths)

		err := cat.Courses.Delete(ctx, 42)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, before, snapshot(t, paths))
	})
}

func TestCourseRepository_RecordsMutations(t *testing.T) {
	ctx := context.Background()
	rec := &recordingRecorder{}
	cat, _ := setupEmptyCatalog(t, WithRecorder(rec))

	course, err := cat.Courses.Create(WithOperationID(ctx, "op-1"), CoursePatch{Title: strPtr("T"), Description: strPtr("D")})
	require.NoError(t, err)
	err = cat.Courses.Delete(ctx, 99)
	require.Error(t, err)

	mutations := rec.all()
	require.Len(t, mutations, 2)

	assert.Equal(t, "op-1", mutations[0].OperationID)
	assert.Equal(t, "course", mutations[0].Entity)
	assert.Equal(t, entities.AuditActionCreate, mutations[0].Action)
	assert.Equal(t, course.ID, mutations[0].EntityID)
	assert.NoError(t, mutations[0].Err)

	assert.NotEmpty(t, mutations[1].OperationID)
	assert.Equal(t, entities.AuditActionDelete, mutations[1].Action)
	assert.ErrorIs(t, mutations[1].Err, ErrNotFound)
}

func TestMutation_MayHaveDiverged(t *testing.T) {
	assert.False(t, Mutation{}.MayHaveDiverged())
	assert.False(t, Mutation{Err: courseNotFound(1)}.MayHaveDiverged())
	assert.False(t, Mutation{Err: context.Canceled}.MayHaveDiverged())
	assert.True(t, Mutation{Err: moduleNotInGlobal(1), Writes: 1}.MayHaveDiverged())
	assert.True(t, Mutation{Err: &StorageError{File: "lessons.json", Err: os.ErrPermission}, Writes: 2}.MayHaveDiverged())
}

func TestCatalog_CountsWritesOfFailedMutations(t *testing.T) {
	t.Run("cancelled context fails before any write", func(t *testing.T) {
		rec := &recordingRecorder{}
		cat, _ := setupCatalog(t, newFixture(), WithRecorder(rec))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := cat.Courses.Update(ctx, 1, CoursePatch{Title: strPtr("Renamed")})
		require.ErrorIs(t, err, ErrStorage)

		mutations := rec.all()
		require.Len(t, mutations, 1)
		assert.Equal(t, 0, mutations[0].Writes)
		assert.False(t, mutations[0].MayHaveDiverged())
	})

	t.Run("unreadable file fails before any write", func(t *testing.T) {
		rec := &recordingRecorder{}
		cat, paths := setupCatalog(t, newFixture(), WithRecorder(rec))
		writeJSON(t, paths.Courses, map[string]string{"not": "an array"})

		_, err := cat.Modules.Create(context.Background(), ModulePatch{Title: strPtr("Module 3")}, 1)
		require.ErrorIs(t, err, ErrStorage)

		mutations := rec.all()
		require.Len(t, mutations, 1)
		assert.False(t, mutations[0].MayHaveDiverged())
	})

	t.Run("missing flat module fails after the earlier writes", func(t *testing.T) {
		rec := &recordingRecorder{}
		f := newFixture()
		f.Modules = f.Modules[1:]
		cat, _ := setupCatalog(t, f, WithRecorder(rec))

		_, err := cat.Lessons.Create(context.Background(), LessonPatch{Title: strPtr("Lesson 5")}, 1, 1)
		require.ErrorIs(t, err, ErrNotFound)

		mutations := rec.all()
		require.Len(t, mutations, 1)
		assert.Equal(t, 2, mutations[0].Writes)
		assert.True(t, mutations[0].MayHaveDiverged())
	})

	t.Run("successful mutation counts every file", func(t *testing.T) {
		rec := &recordingRecorder{}
		cat, _ := setupCatalog(t, newFixture(), WithRecorder(rec))

		_, err := cat.Lessons.Create(context.Background(), LessonPatch{Title: strPtr("Lesson 5")}, 1, 1)
		require.NoError(t, err)

		mutations := rec.all()
		require.Len(t, mutations, 1)
		assert.Equal(t, 3, mutations[0].Writes)
		assert.False(t, mutations[0].MayHaveDiverged())
	})
}

func TestCatalog_WriteHook(t *testing.T) {
	var written []string
	cat, paths := setupCatalog(t, newFixture(), WithWriteHook(func(path string) { written = append(written, path) }))

	_, err := cat.Lessons.Create(context.Background(), LessonPatch{Title: strPtr("Lesson 5")}, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{paths.Lessons, paths.Courses, paths.Modules}, written)
}
