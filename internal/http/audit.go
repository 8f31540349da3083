package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/coursecatalog/internal/database/audit"
	"github.com/mrlokans/coursecatalog/internal/entities"
)

const maxAuditLimit = 100

type AuditController struct {
	journal      Journal
	defaultLimit int
}

func NewAuditController(journal Journal, defaultLimit int) *AuditController {
	return &AuditController{
		journal:      journal,
		defaultLimit: defaultLimit,
	}
}

// GetAuditEvents returns paginated journal rows, newest first.
// GET /api/audit?entity_type=lesson&entity_id=4&action=update&status=failed&operation_id=...
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, limit := pageParams(c, ac.defaultLimit)
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	filter := audit.Filter{
		EntityType:  c.Query("entity_type"),
		OperationID: c.Query("operation_id"),
		Action:      entities.AuditAction(c.Query("action")),
		Status:      entities.AuditStatus(c.Query("status")),
	}
	if raw := c.Query("entity_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			respondBadRequest(c, "invalid entity_id")
			return
		}
		filter.EntityID = id
	}

	events, total, err := ac.journal.GetEvents(filter, limit, pageOffset(page, limit))
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, Page[entities.AuditEvent]{
		Page:       page,
		Limit:      limit,
		TotalItems: int(total),
		Data:       events,
	})
}
