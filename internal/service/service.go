// Package service implements the application use-cases on top of the
// repository layer. Services return typed errors only; HTTP semantics are
// applied by the handlers.
package service

import (
	"errors"
	"math"

	"github.com/lib/pq"

	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/internal/query"
	appErrors "github.com/classledger/records-api/pkg/errors"
)

// reportCacheKeyPattern matches every cached report payload.
const reportCacheKeyPattern = "reports:*"

// uniqueViolation is the PostgreSQL error code for duplicate unique keys.
const uniqueViolation = "23505"

// round2 rounds to two decimal places. Applied once, at the output
// boundary, so internal accumulation never truncates.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// paginationMeta normalises the requested page parameters into response
// metadata.
func paginationMeta(page, limit, total int) *models.Pagination {
	p := query.Page{Page: page, Limit: limit}.Clamp()
	return &models.Pagination{Page: p.Page, Limit: p.Limit, TotalCount: total}
}

// storeError maps store failures onto the error taxonomy: duplicate unique
// keys become conflicts, anything else an internal error carrying the
// diagnostic.
func storeError(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "duplicate value for a unique field")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
