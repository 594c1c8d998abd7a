// Package handler translates HTTP requests into service calls and renders
// the response envelope.
package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classledger/records-api/internal/middleware"
	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/internal/query"
	"github.com/classledger/records-api/internal/validation"
	appErrors "github.com/classledger/records-api/pkg/errors"
	"github.com/classledger/records-api/pkg/response"
)

// claimsFromContext extracts the authenticated identity set by the JWT
// middleware.
func claimsFromContext(c *gin.Context) (*models.JWTClaims, bool) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

// pageParams reads page and limit query parameters. Non-numeric values fall
// back to the defaults; range clamping happens in the query package.
func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(query.DefaultLimit)))
	if err != nil {
		limit = query.DefaultLimit
	}
	return page, limit
}

// dateQuery parses an optional ISO-8601 date query parameter. A malformed
// value is a validation failure, not a silent skip.
func dateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := validation.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Validation("validation failed", []appErrors.FieldViolation{
			{Field: name, Message: name + " must be a valid ISO-8601 date", Value: raw},
		})
	}
	return &parsed, nil
}

// renderList emits the collection envelope from a page slice and its
// pagination metadata.
func renderList(c *gin.Context, data interface{}, count int, p *models.Pagination) {
	response.List(c, data, count, p.TotalCount, query.TotalPages(p.TotalCount, p.Limit), p.Page)
}
