package config

// Default locations, relative to the working directory.
const (
	DefaultDataDir = "./data"

	CoursesFileName   = "courses.json"
	ModulesFileName   = "modules.json"
	LessonsFileName   = "lessons.json"
	SequencesFileName = "sequences.json"

	DefaultAuditDatabasePath = "./data/audit.db"
	DefaultAuditBackupDir    = "./data/backups"
	DefaultLogFile           = "logs/app.log"
)
