package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/coursecatalog/internal/config"
	"github.com/mrlokans/coursecatalog/internal/consistency"
	"github.com/mrlokans/coursecatalog/internal/entities"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Data: config.Data{
			CoursesPath: filepath.Join(dir, "courses.json"),
			ModulesPath: filepath.Join(dir, "modules.json"),
			LessonsPath: filepath.Join(dir, "lessons.json"),
		},
		Audit: config.Audit{BackupDir: filepath.Join(dir, "backups")},
	}
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

// writeCatalog stores course 1 with module 1 (lesson 1). When dropLesson is
// set the flat lessons file is left empty.
func writeCatalog(t *testing.T, cfg *config.Config, dropLesson bool) {
	t.Helper()
	lesson := entities.Lesson{ID: 1, Title: "Lesson", Description: "Lesson one", Topics: []string{}, Content: []entities.Content{}, ModuleID: 1}
	module := entities.Module{ID: 1, Title: "Module", Lessons: []entities.Lesson{lesson}, LessonsID: []int{1}, CourseID: 1}
	writeJSON(t, cfg.Data.CoursesPath, []entities.Course{
		{ID: 1, Title: "Course", Description: "Course one", Modules: []entities.Module{module}, ModulesID: []int{1}},
	})
	writeJSON(t, cfg.Data.ModulesPath, []entities.Module{module})
	lessons := []entities.Lesson{lesson}
	if dropLesson {
		lessons = []entities.Lesson{}
	}
	writeJSON(t, cfg.Data.LessonsPath, lessons)
}

func TestCheckCommand(t *testing.T) {
	t.Run("consistent files", func(t *testing.T) {
		cfg := testConfig(t)
		writeCatalog(t, cfg, false)
		var out bytes.Buffer

		cmd := NewCheckCommand(cfg)
		cmd.Out = &out
		require.NoError(t, cmd.ParseFlags(nil))

		require.NoError(t, cmd.Run())
		assert.Contains(t, out.String(), "no issues found")
	})

	t.Run("inconsistent files fail with a report", func(t *testing.T) {
		cfg := testConfig(t)
		writeCatalog(t, cfg, true)
		var out bytes.Buffer

		cmd := NewCheckCommand(cfg)
		cmd.Out = &out
		require.NoError(t, cmd.ParseFlags([]string{"-json"}))

		err := cmd.Run()
		require.ErrorIs(t, err, ErrInconsistent)

		var report consistency.Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		require.Len(t, report.Issues, 1)
		assert.Equal(t, consistency.KindMissingFlatCopy, report.Issues[0].Kind)
	})

	t.Run("path flags override the configuration", func(t *testing.T) {
		cfg := testConfig(t)
		cmd := NewCheckCommand(cfg)
		require.NoError(t, cmd.ParseFlags([]string{"-lessons", "/tmp/other.json"}))

		assert.Equal(t, "/tmp/other.json", cmd.Paths.Lessons)
		assert.Equal(t, cfg.Data.CoursesPath, cmd.Paths.Courses)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		cfg := testConfig(t)
		cmd := NewCheckCommand(cfg)
		cmd.Out = &bytes.Buffer{}
		require.NoError(t, cmd.ParseFlags(nil))

		err := cmd.Run()
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInconsistent)
	})
}

func TestRepairCommand(t *testing.T) {
	cfg := testConfig(t)
	writeCatalog(t, cfg, true)
	var out bytes.Buffer

	cmd := NewRepairCommand(cfg)
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, cmd.Run())

	assert.Contains(t, out.String(), "rewrote lessons.json")
	assert.Contains(t, out.String(), "previous content saved to")

	backups, err := os.ReadDir(cfg.Audit.BackupDir)
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	check := NewCheckCommand(cfg)
	check.Out = &bytes.Buffer{}
	require.NoError(t, check.ParseFlags(nil))
	assert.NoError(t, check.Run())
}

func TestInitDataCommand(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	cmd := NewInitDataCommand(cfg)
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, cmd.Run())

	assert.Contains(t, out.String(), "created "+cfg.Data.CoursesPath)
	data, err := os.ReadFile(cfg.Data.LessonsPath)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	out.Reset()
	require.NoError(t, cmd.Run())
	assert.Equal(t, "all data files already exist\n", out.String())
}
