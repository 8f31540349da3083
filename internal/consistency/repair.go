package consistency

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/mrlokans/coursecatalog/internal/entities"
)

// Repair rewrites the flat modules and lessons files and the id lists from
// the course tree:
//
//   - id lists and parent ids inside the tree are derived from the embedded arrays
//   - flat copies of embedded records are replaced by the embedded version or restored
//   - flat records not embedded although their parent is in the tree are removed
//   - duplicate flat ids keep their first occurrence
//
// Orphans are kept. Only files whose content changes are written, after the
// previous content was handed to the Backup, if any.
func (c *Checker) Repair(ctx context.Context) (*RepairResult, error) {
	if c.locker != nil {
		unlock := c.locker.Lock()
		defer unlock()
	}

	s, err := c.load(ctx)
	if err != nil {
		c.log.Error("consistency repair failed", "error", err)
		return nil, err
	}

	res := &RepairResult{FilesWritten: []string{}}
	courses := rebuildTree(s.courses, res)

	var treeModules []entities.Module
	var treeLessons []entities.Lesson
	courseIDs := make(map[int]bool, len(courses))
	treeModuleIDs := make(map[int]bool)
	for _, course := range courses {
		courseIDs[course.ID] = true
		for _, module := range course.Modules {
			treeModules = append(treeModules, module)
			treeModuleIDs[module.ID] = true
			treeLessons = append(treeLessons, module.Lessons...)
		}
	}

	modules, modulesStats := reconcile(s.modules, treeModules, func(m entities.Module) bool {
		return !courseIDs[m.CourseID]
	})
	lessons, lessonsStats := reconcile(s.lessons, treeLessons, func(l entities.Lesson) bool {
		return !treeModuleIDs[l.ModuleID]
	})

	res.ModulesRestored, res.ModulesUpdated, res.ModulesRemoved = modulesStats.restored, modulesStats.updated, modulesStats.removed
	res.LessonsRestored, res.LessonsUpdated, res.LessonsRemoved = lessonsStats.restored, lessonsStats.updated, lessonsStats.removed
	res.DuplicatesRemoved = modulesStats.duplicates + lessonsStats.duplicates

	modulesChanged := !reflect.DeepEqual(modules, s.modules)
	lessonsChanged := !reflect.DeepEqual(lessons, s.lessons)
	if (res.CoursesFixed > 0 || modulesChanged || lessonsChanged) && c.backup != nil {
		name, err := c.backup.SaveSnapshot("repair", map[string]any{
			"courses": s.courses,
			"modules": s.modules,
			"lessons": s.lessons,
		})
		if err != nil {
			return res, fmt.Errorf("backup before repair: %w", err)
		}
		res.Backup = name
	}

	if res.CoursesFixed > 0 {
		if err := c.courses.WriteAll(ctx, courses); err != nil {
			return res, fmt.Errorf("write courses: %w", err)
		}
		res.FilesWritten = append(res.FilesWritten, c.courses.Name())
	}
	if modulesChanged {
		if err := c.modules.WriteAll(ctx, modules); err != nil {
			return res, fmt.Errorf("write modules: %w", err)
		}
		res.FilesWritten = append(res.FilesWritten, c.modules.Name())
	}
	if lessonsChanged {
		if err := c.lessons.WriteAll(ctx, lessons); err != nil {
			return res, fmt.Errorf("write lessons: %w", err)
		}
		res.FilesWritten = append(res.FilesWritten, c.lessons.Name())
	}

	c.log.Info("consistency repair finished",
		"files", res.FilesWritten,
		"backup", res.Backup,
		"courses_fixed", res.CoursesFixed,
		"modules_restored", res.ModulesRestored,
		"lessons_restored", res.LessonsRestored,
		"duplicates_removed", res.DuplicatesRemoved)
	return res, nil
}

// rebuildTree returns a copy of courses whose id lists and parent ids follow
// the embedded arrays.
func rebuildTree(courses []entities.Course, res *RepairResult) []entities.Course {
	out := make([]entities.Course, len(courses))
	for i, course := range courses {
		fixed := course
		fixed.Modules = slices.Clone(course.Modules)
		fixed.ModulesID = ids(fixed.Modules)

		for j := range fixed.Modules {
			module := &fixed.Modules[j]
			module.CourseID = course.ID
			module.Lessons = slices.Clone(module.Lessons)
			module.LessonsID = ids(module.Lessons)
			for k := range module.Lessons {
				module.Lessons[k].ModuleID = module.ID
			}
		}

		if !reflect.DeepEqual(fixed, course) {
			res.CoursesFixed++
		}
		out[i] = fixed
	}
	return out
}

type reconcileStats struct {
	restored, updated, removed, duplicates int
}

// reconcile aligns flat with tree. Flat records absent from the tree survive
// only when keep reports them as orphans. Existing records keep their
// position; restored ones are appended in tree order.
func reconcile[T entities.Identifiable](flat, tree []T, keep func(T) bool) ([]T, reconcileStats) {
	var stats reconcileStats

	treeByID := make(map[int]T, len(tree))
	for _, item := range tree {
		if _, ok := treeByID[item.GetID()]; !ok {
			treeByID[item.GetID()] = item
		}
	}

	out := make([]T, 0, len(flat))
	seen := make(map[int]bool, len(flat))
	for _, item := range flat {
		id := item.GetID()
		if seen[id] {
			stats.duplicates++
			continue
		}
		want, inTree := treeByID[id]
		if !inTree {
			if keep(item) {
				seen[id] = true
				out = append(out, item)
			} else {
				stats.removed++
			}
			continue
		}
		seen[id] = true
		if !reflect.DeepEqual(item, want) {
			stats.updated++
		}
		out = append(out, want)
	}

	for _, item := range tree {
		if id := item.GetID(); !seen[id] {
			seen[id] = true
			out = append(out, item)
			stats.restored++
		}
	}
	return out, stats
}
