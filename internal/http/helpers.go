package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/coursecatalog/internal/catalog"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondError maps err to a status code. Catalog errors carry their own
// status; anything else is a 500. The message is passed through verbatim.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var coder catalog.StatusCoder
	if errors.As(err, &coder) {
		status = coder.StatusCode()
	}
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIDParam extracts a positive integer id from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (int, bool) {
	id, err := strconv.Atoi(c.Param(paramName))
	if err != nil || id < 1 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return id, true
}

// parseScopeParam is parseIDParam for routes shared between scoped and
// unscoped paths: an absent parameter yields 0.
func parseScopeParam(c *gin.Context, paramName string) (int, bool) {
	if c.Param(paramName) == "" {
		return 0, true
	}
	return parseIDParam(c, paramName)
}

// --- Request Binding ---

// bindJSON decodes and validates the request body into req, responding 400 on
// failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBadRequest(c, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns the first validator failure into a readable message.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err.Error()
	}
	fe := errs[0]
	field := fmt.Sprintf("%q", fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " length must be at least " + fe.Param() + " characters long"
	case "max":
		return field + " length must be less than or equal to " + fe.Param() + " characters long"
	case "oneof":
		return field + " must be one of [" + strings.ReplaceAll(fe.Param(), " ", ", ") + "]"
	default:
		return field + " is invalid"
	}
}

// jsonFieldName reports struct fields to the validator by their JSON name.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
