package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/consistency"
	"github.com/mrlokans/coursecatalog/internal/database/audit"
	"github.com/mrlokans/coursecatalog/internal/entities"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

// DivergenceHook is called after a mutation failed in a way that may have left
// the flat files and the embedded copies out of sync.
type DivergenceHook func(ctx context.Context, m catalog.Mutation)

// Service records catalog mutations and consistency runs in the journal.
type Service struct {
	repo      *audit.Repository
	log       *logger.Logger
	onDiverge DivergenceHook
	wg        sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log.Named("audit")}
}

// OnDivergence registers the hook run for failed mutations that may have
// diverged the stores. It must be set before the service is shared.
func (s *Service) OnDivergence(hook DivergenceHook) {
	s.onDiverge = hook
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.log.Error("failed to log audit event", "action", event.Action, "op_id", event.OperationID, "error", err)
		}
	}()
}

// Wait blocks until every pending LogAsync call finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// RecordMutation implements catalog.Recorder.
func (s *Service) RecordMutation(ctx context.Context, m catalog.Mutation) {
	event := &entities.AuditEvent{
		OperationID: m.OperationID,
		EntityType:  m.Entity,
		EntityID:    m.EntityID,
		Action:      m.Action,
		Scope:       m.Scope,
		Description: describe(m),
		Status:      entities.AuditStatusSuccess,
	}

	if m.Err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(m.Err.Error(), 500)
	}

	s.LogAsync(event)

	if m.MayHaveDiverged() {
		s.log.Warn("mutation failed midway, stores may have diverged",
			"op_id", m.OperationID, "entity", m.Entity, "entity_id", m.EntityID, "error", m.Err)
		if s.onDiverge != nil {
			s.onDiverge(ctx, m)
		}
	}
}

// LogCheck records the outcome of a consistency check.
func (s *Service) LogCheck(operationID string, report *consistency.Report, err error) {
	event := &entities.AuditEvent{
		OperationID: operationID,
		EntityType:  "catalog",
		Action:      entities.AuditActionCheck,
		Status:      entities.AuditStatusSuccess,
	}

	switch {
	case err != nil:
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
		event.Description = "consistency check could not run"
	case report.Consistent():
		event.Description = fmt.Sprintf("catalog consistent, %d informational issues", len(report.Issues))
	default:
		event.Status = entities.AuditStatusFailed
		event.Description = fmt.Sprintf("%d consistency errors, %d issues in total", report.Errors(), len(report.Issues))
	}

	s.LogAsync(event)
}

// LogRepair records the outcome of a consistency repair.
func (s *Service) LogRepair(operationID string, res *consistency.RepairResult, err error) {
	event := &entities.AuditEvent{
		OperationID: operationID,
		EntityType:  "catalog",
		Action:      entities.AuditActionRepair,
		Status:      entities.AuditStatusSuccess,
	}

	if res != nil {
		event.Description = truncate(res.Summary(), 500)
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(filter, limit, offset)
}

// FailedSince returns failed mutations recorded after since.
func (s *Service) FailedSince(since time.Time) ([]entities.AuditEvent, error) {
	return s.repo.GetFailedSince(since)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func describe(m catalog.Mutation) string {
	desc := fmt.Sprintf("%s %s", m.Action, m.Entity)
	if m.EntityID != 0 {
		desc += fmt.Sprintf(" %d", m.EntityID)
	}
	if m.Scope != "" {
		desc += " in " + m.Scope
	}
	return desc
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
