package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/scheduler"
	"github.com/mrlokans/coursecatalog/internal/tasks"
)

type ConsistencyController struct {
	checker tasks.ConsistencyRunner
	queue   scheduler.Enqueuer
	journal Journal
}

// NewConsistencyController builds the controller. queue and journal may be nil.
func NewConsistencyController(checker tasks.ConsistencyRunner, queue scheduler.Enqueuer, journal Journal) *ConsistencyController {
	return &ConsistencyController{
		checker: checker,
		queue:   queue,
		journal: journal,
	}
}

// Check runs a consistency check synchronously and returns the report.
// GET /api/consistency
func (cc *ConsistencyController) Check(c *gin.Context) {
	report, err := cc.checker.Check(c.Request.Context())
	if cc.journal != nil {
		cc.journal.LogCheck(catalog.OperationID(c.Request.Context()), report, err)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Enqueue schedules a background check, repairing afterwards when
// ?repair=true.
// POST /api/consistency/check
func (cc *ConsistencyController) Enqueue(c *gin.Context) {
	repair, _ := strconv.ParseBool(c.DefaultQuery("repair", "false"))
	opID := catalog.OperationID(c.Request.Context())

	taskID, err := cc.queue.Enqueue(tasks.ConsistencyCheckTask{
		Reason:      "api",
		OperationID: opID,
		Repair:      repair,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondAccepted(c, "consistency check queued", gin.H{
		"task_id":      taskID,
		"operation_id": opID,
		"repair":       repair,
	})
}

// Repair rebuilds the flat files from the course tree.
// POST /api/consistency/repair
func (cc *ConsistencyController) Repair(c *gin.Context) {
	res, err := cc.checker.Repair(c.Request.Context())
	if cc.journal != nil {
		cc.journal.LogRepair(catalog.OperationID(c.Request.Context()), res, err)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
