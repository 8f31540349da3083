package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/coursecatalog/internal/entities"
)

func TestCoursesController_List(t *testing.T) {
	t.Run("returns paginated courses", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do("GET", "/api/courses", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		page := decode[Page[entities.Course]](t, w)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 10, page.Limit)
		assert.Equal(t, 1, page.TotalItems)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Course 1", page.Data[0].Title)
	})

	t.Run("honours page and limit", func(t *testing.T) {
		env := setupEnv(t)
		env.do("POST", "/api/courses", map[string]string{"title": "Course 2", "description": "Second course"})

		w := env.do("GET", "/api/courses?page=2&limit=1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		page := decode[Page[entities.Course]](t, w)
		assert.Equal(t, 2, page.TotalItems)
		require.Len(t, page.Data, 1)
		assert.Equal(t, 2, page.Data[0].ID)
	})

	t.Run("huge limit returns an empty later page", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do("GET", "/api/courses?page=2&limit=9223372036854775807", nil)

		require.Equal(t, http.StatusOK, w.Code)
		page := decode[Page[entities.Course]](t, w)
		assert.Equal(t, 1, page.TotalItems)
		assert.Empty(t, page.Data)
	})

	t.Run("returns 500 when the courses file is unreadable", func(t *testing.T) {
		env := setupEnv(t)
		writeJSON(t, env.paths.Courses, map[string]string{"not": "an array"})

		w := env.do("GET", "/api/courses", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, errorMessage(t, w), "courses.json")
	})
}

func TestCoursesController_Get(t *testing.T) {
	env := setupEnv(t)

	t.Run("returns the course with embedded modules", func(t *testing.T) {
		w := env.do("GET", "/api/courses/1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		course := decode[entities.Course](t, w)
		assert.Equal(t, []int{1}, course.ModulesID)
		require.Len(t, course.Modules, 1)
		assert.Equal(t, []int{1, 2}, course.Modules[0].LessonsID)
	})

	t.Run("returns 404 for unknown id", func(t *testing.T) {
		w := env.do("GET", "/api/courses/42", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Course ID [42] not found", errorMessage(t, w))
	})

	t.Run("returns 400 for non numeric id", func(t *testing.T) {
		w := env.do("GET", "/api/courses/abc", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCoursesController_Create(t *testing.T) {
	t.Run("creates a course with empty child collections", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do("POST", "/api/courses", map[string]string{"title": "Go basics", "description": "Learn the language"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":2,"title":"Go basics","description":"Learn the language","modules":[],"modulesId":[]}`, w.Body.String())
	})

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"missing title", map[string]string{"description": "Learn the language"}, `"title" is required`},
		{"short title", map[string]string{"title": "Go", "description": "Learn the language"}, `"title" length must be at least 5 characters long`},
		{"short description", map[string]string{"title": "Go basics", "description": "short"}, `"description" length must be at least 10 characters long`},
		{"unknown field", map[string]string{"title": "Go basics", "description": "Learn the language", "author": "me"}, `unknown field "author"`},
		{"malformed json", `{"title":`, ""},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			env := setupEnv(t)

			w := env.do("POST", "/api/courses", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, errorMessage(t, w), tt.message)
		})
	}
}

func TestCoursesController_Update(t *testing.T) {
	t.Run("merges supplied fields only", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do("PUT", "/api/courses/1", map[string]string{"title": "Renamed course"})

		assert.Equal(t, http.StatusOK, w.Code)
		course := decode[entities.Course](t, w)
		assert.Equal(t, "Renamed course", course.Title)
		assert.Equal(t, "First course", course.Description)
		assert.Len(t, course.Modules, 1)
	})

	t.Run("accepts an empty body", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do("PUT", "/api/courses/1", map[string]string{})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Course 1", decode[entities.Course](t, w).Title)
	})

	t.Run("validates supplied fields", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do("PUT", "/api/courses/1", map[string]string{"title": "abc"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for unknown id", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do("PUT", "/api/courses/9", map[string]string{"title": "Renamed course"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCoursesController_Delete(t *testing.T) {
	env := setupEnv(t)

	w := env.do("DELETE", "/api/courses/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = env.do("DELETE", "/api/courses/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Modules are not cascade deleted.
	w = env.do("GET", "/api/modules/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
