package entities

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionCheck  AuditAction = "consistency_check"
	AuditActionRepair AuditAction = "consistency_repair"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one row of the mutation journal. A failed mutation may have
// left the flat files and the embedded copies out of sync.
type AuditEvent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OperationID string      `gorm:"index;size:36" json:"operation_id"`
	EntityType  string      `gorm:"index;size:20" json:"entity_type"` // "course", "module", "lesson", "catalog"
	EntityID    int         `gorm:"index" json:"entity_id"`
	Action      AuditAction `gorm:"index;size:30" json:"action"`
	Scope       string      `gorm:"size:100" json:"scope,omitempty"` // e.g. "course 1 / module 2"
	Description string      `gorm:"size:500" json:"description"`
	Status      AuditStatus `gorm:"size:20" json:"status"`
	ErrorMsg    string      `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
