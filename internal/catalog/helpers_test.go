package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/coursecatalog/internal/entities"
)

func testLesson(id, moduleID int, title string) entities.Lesson {
	return entities.Lesson{
		ID:          id,
		Title:       title,
		Description: title + " for testing",
		Topics:      []string{"Topic 1"},
		Content:     []entities.Content{},
		ModuleID:    moduleID,
	}
}

// fixture mirrors a consistent catalog: course 1 embeds module 1 (lessons 1,
// 2) and course 2 embeds module 2 (lessons 3, 4).
type fixture struct {
	Courses []entities.Course
	Modules []entities.Module
	Lessons []entities.Lesson
}

func newFixture() fixture {
	l1 := testLesson(1, 1, "Lesson 1")
	l2 := testLesson(2, 1, "Lesson 2")
	l3 := testLesson(3, 2, "Lesson 3")
	l4 := testLesson(4, 2, "Lesson 4")

	m1 := entities.Module{ID: 1, Title: "Module 1", Lessons: []entities.Lesson{l1, l2}, LessonsID: []int{1, 2}, CourseID: 1}
	m2 := entities.Module{ID: 2, Title: "Module 2", Lessons: []entities.Lesson{l3, l4}, LessonsID: []int{3, 4}, CourseID: 2}

	return fixture{
		Courses: []entities.Course{
			{ID: 1, Title: "Test Course 1", Description: "Course 1 for testing", Modules: []entities.Module{m1}, ModulesID: []int{1}},
			{ID: 2, Title: "Test Course 2", Description: "Course 2 for testing", Modules: []entities.Module{m2}, ModulesID: []int{2}},
		},
		Modules: []entities.Module{m1, m2},
		Lessons: []entities.Lesson{l1, l2, l3, l4},
	}
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func testPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		Courses:   filepath.Join(dir, "courses.json"),
		Modules:   filepath.Join(dir, "modules.json"),
		Lessons:   filepath.Join(dir, "lessons.json"),
		Sequences: filepath.Join(dir, "sequences.json"),
	}
}

// setupCatalog writes f to a temp data dir and opens a catalog over it.
func setupCatalog(t *testing.T, f fixture, opts ...Option) (*Catalog, Paths) {
	t.Helper()
	paths := testPaths(t)
	writeJSON(t, paths.Courses, f.Courses)
	writeJSON(t, paths.Modules, f.Modules)
	writeJSON(t, paths.Lessons, f.Lessons)
	return New(paths, opts...), paths
}

func setupEmptyCatalog(t *testing.T, opts ...Option) (*Catalog, Paths) {
	t.Helper()
	return setupCatalog(t, fixture{
		Courses: []entities.Course{},
		Modules: []entities.Module{},
		Lessons: []entities.Lesson{},
	}, opts...)
}

// snapshot captures the raw bytes of the three collection files.
func snapshot(t *testing.T, paths Paths) [3][]byte {
	t.Helper()
	return [3][]byte{readFile(t, paths.Courses), readFile(t, paths.Modules), readFile(t, paths.Lessons)}
}

type recordingRecorder struct {
	mu        sync.Mutex
	mutations []Mutation
}

func (r *recordingRecorder) RecordMutation(_ context.Context, m Mutation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, m)
}

func (r *recordingRecorder) all() []Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Mutation(nil), r.mutations...)
}

func strPtr(s string) *string { return &s }
