package cli

import (
	"flag"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/config"
)

// registerPathFlags binds -courses, -modules and -lessons to paths, defaulting
// to the configured locations.
func registerPathFlags(fs *flag.FlagSet, paths *catalog.Paths, cfg *config.Config) {
	fs.StringVar(&paths.Courses, "courses", cfg.Data.CoursesPath, "Path to the courses file")
	fs.StringVar(&paths.Modules, "modules", cfg.Data.ModulesPath, "Path to the modules file")
	fs.StringVar(&paths.Lessons, "lessons", cfg.Data.LessonsPath, "Path to the lessons file")
}
