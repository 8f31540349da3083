package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/coursecatalog/internal/jsonstore"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	files   map[string]*jsonstore.File[json.RawMessage]
	db      Pinger
	version string
}

// NewHealthController checks that every file in dataFiles parses as a JSON
// array and, when db is set, that the journal database answers.
func NewHealthController(dataFiles map[string]string, db Pinger, version string) *HealthController {
	files := make(map[string]*jsonstore.File[json.RawMessage], len(dataFiles))
	for name, path := range dataFiles {
		files[name] = jsonstore.NewFile[json.RawMessage](path)
	}
	return &HealthController{
		files:   files,
		db:      db,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	for name, file := range h.files {
		if _, err := file.ReadAll(c.Request.Context()); err != nil {
			checks[name] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks[name] = "ok"
		}
	}

	// Check database connectivity
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
