package consistency

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/coursecatalog/internal/catalog"
)

func TestChecker_Repair(t *testing.T) {
	ctx := context.Background()

	t.Run("consistent catalog is left untouched", func(t *testing.T) {
		paths := writeDataset(t, consistentDataset())

		res, err := NewChecker(paths).Repair(ctx)
		require.NoError(t, err)
		assert.False(t, res.Changed())
		assert.Equal(t, "nothing to repair\n", res.Summary())
	})

	t.Run("flat copies follow the course tree", func(t *testing.T) {
		d := consistentDataset()
		d.modules[1].Title = "Edited by hand"
		d.lessons = d.lessons[:2]

		paths := writeDataset(t, d)
		checker := NewChecker(paths)

		res, err := checker.Repair(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.ModulesUpdated)
		assert.Equal(t, 1, res.LessonsRestored)
		assert.Equal(t, 0, res.CoursesFixed)
		assert.Equal(t, []string{"modules.json", "lessons.json"}, res.FilesWritten)

		report, err := checker.Check(ctx)
		require.NoError(t, err)
		assert.True(t, report.Consistent())
		assert.Empty(t, report.Issues)

		module, err := catalog.New(paths).Modules.GetByID(ctx, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, "Module 2", module.Title)
	})

	t.Run("id lists are rebuilt from embedded arrays", func(t *testing.T) {
		d := consistentDataset()
		d.courses[0].ModulesID = []int{1, 1, 4}
		d.courses[0].Modules[0].LessonsID = []int{2}

		paths := writeDataset(t, d)
		checker := NewChecker(paths)

		res, err := checker.Repair(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.CoursesFixed)
		assert.Contains(t, res.FilesWritten, "courses.json")

		course, err := catalog.New(paths).Courses.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, course.ModulesID)
		assert.Equal(t, []int{1, 2}, course.Modules[0].LessonsID)

		report, err := checker.Check(ctx)
		require.NoError(t, err)
		assert.True(t, report.Consistent())
	})

	t.Run("duplicates and unembedded records are dropped, orphans kept", func(t *testing.T) {
		d := consistentDataset()
		d.lessons = append(d.lessons, lesson(1, 1), lesson(8, 1), lesson(9, 42))

		paths := writeDataset(t, d)
		checker := NewChecker(paths)

		res, err := checker.Repair(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.DuplicatesRemoved)
		assert.Equal(t, 1, res.LessonsRemoved)

		lessons, err := catalog.New(paths).Lessons.ListAll(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, lessons, 4)
		assert.Equal(t, 9, lessons[3].ID)

		report, err := checker.Check(ctx)
		require.NoError(t, err)
		assert.True(t, report.Consistent())
		assert.Equal(t, []Kind{KindOrphan}, kinds(report))
	})

	t.Run("repair takes the catalog write lock", func(t *testing.T) {
		paths := writeDataset(t, consistentDataset())
		cat := catalog.New(paths)
		checker := NewChecker(paths, WithLocker(cat))

		_, err := checker.Repair(ctx)
		require.NoError(t, err)

		// the lock is released afterwards
		_, err = cat.Courses.Create(ctx, catalog.CoursePatch{})
		require.NoError(t, err)
	})
}

type memoryBackup struct {
	kinds []string
	data  []any
}

func (b *memoryBackup) SaveSnapshot(kind string, data any) (string, error) {
	b.kinds = append(b.kinds, kind)
	b.data = append(b.data, data)
	return kind + ".json", nil
}

func TestChecker_RepairBackup(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshot taken before rewriting", func(t *testing.T) {
		d := consistentDataset()
		d.lessons = d.lessons[:1]
		backup := &memoryBackup{}

		res, err := NewChecker(writeDataset(t, d), WithBackup(backup)).Repair(ctx)
		require.NoError(t, err)
		assert.Equal(t, "repair.json", res.Backup)
		require.Len(t, backup.data, 1)

		saved := backup.data[0].(map[string]any)
		assert.Len(t, saved["lessons"], 1)
	})

	t.Run("no snapshot when nothing changes", func(t *testing.T) {
		backup := &memoryBackup{}

		res, err := NewChecker(writeDataset(t, consistentDataset()), WithBackup(backup)).Repair(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Backup)
		assert.Empty(t, backup.kinds)
	})
}
