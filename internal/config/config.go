package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type LogMode string

const (
	LogModeDevelopment LogMode = "development" // Colored console output
	LogModeProduction  LogMode = "production"  // JSON console output
)

type (
	Config struct {
		HTTP
		Global
		Data
		Log
		Audit
		Consistency
		Tasks
		CORS
		Pagination
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Data struct {
		Dir           string
		CoursesPath   string
		ModulesPath   string
		LessonsPath   string
		SequencesPath string // Empty disables the id high-water marks
		InitMissing   bool   // Create missing collection files holding [] on startup
		WatchEnabled  bool
		WatchDebounce time.Duration
	}
	Log struct {
		Mode       LogMode
		Level      string
		File       string // Empty disables the file sink
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
	}
	Audit struct {
		Enabled         bool
		DatabasePath    string
		BackupDir       string // Snapshots taken before a repair
		RetentionDays   int    // Days to keep journal rows (default: 30)
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Consistency struct {
		CheckEnabled  bool
		CheckSchedule string // Cron format: "*/30 * * * *" = every 30 minutes
		AutoRepair    bool
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	CORS struct {
		AllowedOrigins []string
	}
	Pagination struct {
		DefaultLimit int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("courses_file_path", "")
	v.SetDefault("modules_file_path", "")
	v.SetDefault("lessons_file_path", "")
	v.SetDefault("sequences_file_path", "")
	v.SetDefault("data_init_missing", true)
	v.SetDefault("data_watch_enabled", false)
	v.SetDefault("data_watch_debounce", "500ms")

	v.SetDefault("log_mode", string(LogModeDevelopment))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_backups", 5)
	v.SetDefault("log_max_age_days", 30)

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_database_path", DefaultAuditDatabasePath)
	v.SetDefault("audit_backup_dir", DefaultAuditBackupDir)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	v.SetDefault("consistency_check_enabled", true)
	v.SetDefault("consistency_check_schedule", "*/30 * * * *")
	v.SetDefault("consistency_auto_repair", false)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("pagination_default_limit", 10)

	dataDir := v.GetString("DATA_DIR")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Data: Data{
			Dir:           dataDir,
			CoursesPath:   pathOrDefault(v.GetString("COURSES_FILE_PATH"), dataDir, CoursesFileName),
			ModulesPath:   pathOrDefault(v.GetString("MODULES_FILE_PATH"), dataDir, ModulesFileName),
			LessonsPath:   pathOrDefault(v.GetString("LESSONS_FILE_PATH"), dataDir, LessonsFileName),
			SequencesPath: pathOrDefault(v.GetString("SEQUENCES_FILE_PATH"), dataDir, SequencesFileName),
			InitMissing:   v.GetBool("DATA_INIT_MISSING"),
			WatchEnabled:  v.GetBool("DATA_WATCH_ENABLED"),
			WatchDebounce: v.GetDuration("DATA_WATCH_DEBOUNCE"),
		},
		Log: Log{
			Mode:       LogMode(v.GetString("LOG_MODE")),
			Level:      v.GetString("LOG_LEVEL"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Audit: Audit{
			Enabled:         v.GetBool("AUDIT_ENABLED"),
			DatabasePath:    v.GetString("AUDIT_DATABASE_PATH"),
			BackupDir:       v.GetString("AUDIT_BACKUP_DIR"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Consistency: Consistency{
			CheckEnabled:  v.GetBool("CONSISTENCY_CHECK_ENABLED"),
			CheckSchedule: v.GetString("CONSISTENCY_CHECK_SCHEDULE"),
			AutoRepair:    v.GetBool("CONSISTENCY_AUTO_REPAIR"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Pagination: Pagination{
			DefaultLimit: v.GetInt("PAGINATION_DEFAULT_LIMIT"),
		},
	}
}

// pathOrDefault returns explicit when set, otherwise name inside dir.
func pathOrDefault(explicit, dir, name string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(dir, name)
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
