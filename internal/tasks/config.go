package tasks

import "time"

// Config holds configuration for the task queue system. Per-queue retry and
// timeout settings live on the task types.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 1
	Workers int

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// AuditRetentionDays is passed to audit cleanup tasks. Default: 30
	AuditRetentionDays int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:            1,
		ReleaseAfter:       15 * time.Minute,
		CleanupInterval:    1 * time.Hour,
		AuditRetentionDays: 30,
	}
}
