package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Auditor keeps JSON snapshots of catalog data taken before destructive
// operations such as a consistency repair.
type Auditor struct {
	AuditDir string
	now      func() time.Time
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
		now:      time.Now,
	}
}

// SaveSnapshot writes data as indented JSON to
// <AuditDir>/<kind>-<timestamp>-<uuid>.json and returns the file name.
func (a *Auditor) SaveSnapshot(kind string, data any) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s-%s.json", kind, a.now().UTC().Format("20060102T150405"), uuid.NewString())
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	return filename, nil
}

// ensureAuditDir creates the audit directory if it doesn't exist
func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
