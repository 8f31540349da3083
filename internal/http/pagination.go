package http

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page is the envelope of every list endpoint.
type Page[T any] struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	Data       []T `json:"data"`
}

// pageParams reads ?page and ?limit. Missing, malformed or non-positive
// values fall back to page 1 and defaultLimit.
func pageParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// paginate slices items for the requested page. Pages past the end are empty.
func paginate[T any](items []T, page, limit int) Page[T] {
	start := min(pageOffset(page, limit), len(items))
	end := start + min(limit, len(items)-start)
	data := items[start:end]
	if data == nil {
		data = []T{}
	}
	return Page[T]{Page: page, Limit: limit, TotalItems: len(items), Data: data}
}

// pageOffset returns the index of the first item of page. It saturates at
// math.MaxInt instead of overflowing for huge page or limit values.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}
