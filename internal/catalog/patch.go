package catalog

import "github.com/mrlokans/coursecatalog/internal/entities"

// Patches describe partial updates. A nil pointer or nil slice means the field
// was not supplied. Apply is a shallow merge: supplied top-level fields
// overwrite, nested arrays are replaced wholesale, never merged element-wise.

type CoursePatch struct {
	Title       *string
	Description *string
	Modules     []entities.Module
	ModulesID   []int
}

func (p CoursePatch) Apply(c entities.Course) entities.Course {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Modules != nil {
		c.Modules = p.Modules
	}
	if p.ModulesID != nil {
		c.ModulesID = p.ModulesID
	}
	return c
}

type ModulePatch struct {
	Title     *string
	Lessons   []entities.Lesson
	LessonsID []int
}

func (p ModulePatch) Apply(m entities.Module) entities.Module {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Lessons != nil {
		m.Lessons = p.Lessons
	}
	if p.LessonsID != nil {
		m.LessonsID = p.LessonsID
	}
	return m
}

type LessonPatch struct {
	Title       *string
	Description *string
	Topics      []string
	Content     []entities.Content
}

func (p LessonPatch) Apply(l entities.Lesson) entities.Lesson {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Topics != nil {
		l.Topics = p.Topics
	}
	if p.Content != nil {
		l.Content = p.Content
	}
	return l
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
