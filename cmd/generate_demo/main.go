// Command generate_demo creates a data directory with a sample catalog.
// Usage: go run cmd/generate_demo/main.go [-dir path/to/data]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/config"
	"github.com/mrlokans/coursecatalog/internal/entities"
	"github.com/mrlokans/coursecatalog/internal/entrypoint"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

const defaultDemoDataDir = "./demo/data"

// CourseConfig holds a course and the modules to create in it.
type CourseConfig struct {
	Title       string
	Description string
	Modules     []ModuleConfig
}

type ModuleConfig struct {
	Title   string
	Lessons []catalog.LessonPatch
}

func main() {
	dir := flag.String("dir", defaultDemoDataDir, "directory to write the demo data files to")
	flag.Parse()

	log.Printf("Generating demo catalog in %s...", *dir)

	paths := catalog.Paths{
		Courses:   filepath.Join(*dir, config.CoursesFileName),
		Modules:   filepath.Join(*dir, config.ModulesFileName),
		Lessons:   filepath.Join(*dir, config.LessonsFileName),
		Sequences: filepath.Join(*dir, config.SequencesFileName),
	}

	// Start from empty files
	for _, path := range []string{paths.Courses, paths.Modules, paths.Lessons, paths.Sequences} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Failed to remove existing data file: %v", err)
		}
	}
	if _, err := entrypoint.InitData(paths, logger.Nop()); err != nil {
		log.Fatalf("Failed to create data files: %v", err)
	}

	cat := catalog.New(paths)
	ctx := context.Background()

	for _, cfg := range getDemoCourses() {
		course, err := cat.Courses.Create(ctx, catalog.CoursePatch{Title: &cfg.Title, Description: &cfg.Description})
		if err != nil {
			log.Fatalf("Failed to create course %s: %v", cfg.Title, err)
		}

		lessons := 0
		for _, mc := range cfg.Modules {
			module, err := cat.Modules.Create(ctx, catalog.ModulePatch{Title: &mc.Title}, course.ID)
			if err != nil {
				log.Fatalf("Failed to create module %s: %v", mc.Title, err)
			}
			for _, lp := range mc.Lessons {
				if _, err := cat.Lessons.Create(ctx, lp, course.ID, module.ID); err != nil {
					log.Fatalf("Failed to create lesson %s: %v", *lp.Title, err)
				}
				lessons++
			}
		}
		log.Printf("Saved: %s (%d modules, %d lessons)", course.Title, len(cfg.Modules), lessons)
	}

	log.Println("Demo catalog generated successfully!")
}

func lesson(title, description string, topics []string, content ...entities.Content) catalog.LessonPatch {
	return catalog.LessonPatch{
		Title:       &title,
		Description: &description,
		Topics:      topics,
		Content:     content,
	}
}

func text(data string) entities.Content {
	return entities.Content{Type: entities.ContentTypeText, Data: data}
}

func video(url string) entities.Content {
	return entities.Content{Type: entities.ContentTypeVideo, Data: url}
}

func audio(url string) entities.Content {
	return entities.Content{Type: entities.ContentTypeAudio, Data: url}
}

func getDemoCourses() []CourseConfig {
	return []CourseConfig{
		{
			Title:       "Introduction to Go",
			Description: "A practical tour of the Go programming language",
			Modules: []ModuleConfig{
				{
					Title: "Getting started",
					Lessons: []catalog.LessonPatch{
						lesson("Installing Go", "Set up the toolchain and your editor",
							[]string{"setup", "tooling"},
							text("Download the toolchain from go.dev and check it with go version."),
							video("https://example.com/videos/installing-go.mp4")),
						lesson("Hello, world", "Write, build and run the first program",
							[]string{"basics"},
							text("package main is the entry point of every executable.")),
					},
				},
				{
					Title: "Concurrency",
					Lessons: []catalog.LessonPatch{
						lesson("Goroutines", "Run functions concurrently with the go keyword",
							[]string{"goroutines", "concurrency"},
							text("A goroutine is a function running concurrently with others in the same address space.")),
						lesson("Channels", "Communicate between goroutines with typed channels",
							[]string{"channels", "concurrency"},
							text("Do not communicate by sharing memory; share memory by communicating."),
							audio("https://example.com/audio/channels.mp3")),
					},
				},
			},
		},
		{
			Title:       "Designing HTTP APIs",
			Description: "Resource modelling, status codes and pagination",
			Modules: []ModuleConfig{
				{
					Title: "Resources",
					Lessons: []catalog.LessonPatch{
						lesson("Nested resources", "When to nest routes and when to keep them flat",
							[]string{"rest", "routing"},
							text("Nest a resource when it cannot exist without its parent.")),
					},
				},
				{
					Title: "Errors",
					Lessons: []catalog.LessonPatch{
						lesson("Status codes", "Pick the status code that tells the client what to do next",
							[]string{"http", "errors"},
							text("404 means the resource does not exist in the scope the client asked for.")),
					},
				},
			},
		},
	}
}
