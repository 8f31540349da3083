package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/coursecatalog/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows GetEvents. Zero fields match everything.
type Filter struct {
	EntityType  string
	EntityID    int
	OperationID string
	Action      entities.AuditAction
	Status      entities.AuditStatus
}

func (f Filter) apply(query *gorm.DB) *gorm.DB {
	if f.EntityType != "" {
		query = query.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID > 0 {
		query = query.Where("entity_id = ?", f.EntityID)
	}
	if f.OperationID != "" {
		query = query.Where("operation_id = ?", f.OperationID)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	return query
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// GetEvents retrieves paginated audit events matching filter, most recent first.
func (r *Repository) GetEvents(filter Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	var events []entities.AuditEvent
	var total int64

	query := filter.apply(r.db.Model(&entities.AuditEvent{}))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// GetFailedSince returns failed mutations recorded after since.
func (r *Repository) GetFailedSince(since time.Time) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.Where("status = ? AND created_at > ?", entities.AuditStatusFailed, since).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}

// GetEventByID retrieves a single audit event by ID.
func (r *Repository) GetEventByID(id uint) (*entities.AuditEvent, error) {
	var event entities.AuditEvent
	err := r.db.First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}
