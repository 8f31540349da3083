package consistency

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/entities"
)

func lesson(id, moduleID int) entities.Lesson {
	return entities.Lesson{
		ID:          id,
		Title:       "Lesson title",
		Description: "Lesson description",
		Topics:      []string{"go"},
		Content:     []entities.Content{{Type: entities.ContentTypeText, Data: "body"}},
		ModuleID:    moduleID,
	}
}

type dataset struct {
	courses []entities.Course
	modules []entities.Module
	lessons []entities.Lesson
}

// consistentDataset holds course 1 with module 1 (lessons 1, 2) and course 2
// with module 2 (lesson 3).
func consistentDataset() dataset {
	m1 := entities.Module{ID: 1, Title: "Module 1", Lessons: []entities.Lesson{lesson(1, 1), lesson(2, 1)}, LessonsID: []int{1, 2}, CourseID: 1}
	m2 := entities.Module{ID: 2, Title: "Module 2", Lessons: []entities.Lesson{lesson(3, 2)}, LessonsID: []int{3}, CourseID: 2}
	return dataset{
		courses: []entities.Course{
			{ID: 1, Title: "Course 1", Description: "First course", Modules: []entities.Module{m1}, ModulesID: []int{1}},
			{ID: 2, Title: "Course 2", Description: "Second course", Modules: []entities.Module{m2}, ModulesID: []int{2}},
		},
		modules: []entities.Module{m1, m2},
		lessons: []entities.Lesson{lesson(1, 1), lesson(2, 1), lesson(3, 2)},
	}
}

func writeDataset(t *testing.T, d dataset) catalog.Paths {
	t.Helper()
	dir := t.TempDir()
	paths := catalog.Paths{
		Courses: filepath.Join(dir, "courses.json"),
		Modules: filepath.Join(dir, "modules.json"),
		Lessons: filepath.Join(dir, "lessons.json"),
	}
	for path, v := range map[string]any{paths.Courses: d.courses, paths.Modules: d.modules, paths.Lessons: d.lessons} {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0644))
	}
	return paths
}

func kinds(r *Report) []Kind {
	out := []Kind{}
	for _, issue := range r.Issues {
		out = append(out, issue.Kind)
	}
	return out
}

func TestChecker_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("consistent catalog has no issues", func(t *testing.T) {
		checker := NewChecker(writeDataset(t, consistentDataset()))

		report, err := checker.Check(ctx)
		require.NoError(t, err)
		assert.True(t, report.Consistent())
		assert.Empty(t, report.Issues)
		assert.Equal(t, 2, report.Courses)
		assert.Equal(t, 3, report.Lessons)
		assert.Contains(t, report.Summary(), "no issues found")
	})

	t.Run("orphans after course delete are informational", func(t *testing.T) {
		paths := writeDataset(t, consistentDataset())
		cat := catalog.New(paths)
		require.NoError(t, cat.Courses.Delete(ctx, 2))

		report, err := NewChecker(paths, WithLocker(cat)).Check(ctx)
		require.NoError(t, err)
		assert.True(t, report.Consistent())
		assert.Equal(t, []Kind{KindOrphan, KindOrphan}, kinds(report))
		for _, issue := range report.Issues {
			assert.Equal(t, SeverityInfo, issue.Severity)
		}
	})

	t.Run("diverged flat module", func(t *testing.T) {
		d := consistentDataset()
		d.modules[0].Title = "Edited by hand"

		report, err := NewChecker(writeDataset(t, d)).Check(ctx)
		require.NoError(t, err)
		assert.False(t, report.Consistent())
		assert.Equal(t, []Kind{KindDivergedCopy}, kinds(report))
		assert.Equal(t, "modules.json", report.Issues[0].File)
		assert.Equal(t, 1, report.Issues[0].CourseID)
		assert.Equal(t, 1, report.Issues[0].ModuleID)
	})

	t.Run("missing flat lesson and dangling id", func(t *testing.T) {
		d := consistentDataset()
		d.lessons = d.lessons[1:]
		d.courses[0].Modules[0].LessonsID = []int{1, 2, 9}
		d.modules[0].LessonsID = []int{1, 2, 9}

		report, err := NewChecker(writeDataset(t, d)).Check(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []Kind{KindDanglingID, KindMissingFlatCopy}, kinds(report))
		assert.Equal(t, 2, report.Errors())
	})

	t.Run("duplicate ids and lessons missing from their module", func(t *testing.T) {
		d := consistentDataset()
		d.lessons = append(d.lessons, lesson(3, 2), lesson(7, 1))

		report, err := NewChecker(writeDataset(t, d)).Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Kind{KindDuplicateID, KindNotEmbedded}, kinds(report))
		assert.Equal(t, 7, report.Issues[1].LessonID)
	})

	t.Run("parent mismatch", func(t *testing.T) {
		d := consistentDataset()
		d.courses[0].Modules[0].Lessons[0].ModuleID = 5
		d.lessons[0].ModuleID = 5

		report, err := NewChecker(writeDataset(t, d)).Check(ctx)
		require.NoError(t, err)
		assert.Contains(t, kinds(report), KindParentMismatch)
	})

	t.Run("unreadable file fails the check", func(t *testing.T) {
		paths := writeDataset(t, consistentDataset())
		require.NoError(t, os.Remove(paths.Lessons))

		_, err := NewChecker(paths).Check(ctx)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
