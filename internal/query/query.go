// Package query translates optional list filters into store query
// fragments plus pagination parameters. Matching totals are always
// computable independently of the page slice.
package query

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLimit is the page size applied when the caller supplies none.
const DefaultLimit = 20

// Builder accumulates SQL conditions with positional arguments. Absent
// filters add no condition, leaving that dimension unconstrained.
type Builder struct {
	conds []string
	args  []interface{}
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// DateFrom adds an inclusive lower bound on the column.
func (b *Builder) DateFrom(column string, t *time.Time) *Builder {
	if t != nil {
		b.args = append(b.args, *t)
		b.conds = append(b.conds, fmt.Sprintf("%s >= $%d", column, len(b.args)))
	}
	return b
}

// DateTo adds an inclusive upper bound on the column.
func (b *Builder) DateTo(column string, t *time.Time) *Builder {
	if t != nil {
		b.args = append(b.args, *t)
		b.conds = append(b.conds, fmt.Sprintf("%s <= $%d", column, len(b.args)))
	}
	return b
}

// Equals adds an exact match condition when value is non-empty.
func (b *Builder) Equals(column, value string) *Builder {
	if value != "" {
		b.args = append(b.args, value)
		b.conds = append(b.conds, fmt.Sprintf("%s = $%d", column, len(b.args)))
	}
	return b
}

// Contains adds an unanchored case-insensitive substring condition when
// value is non-empty.
func (b *Builder) Contains(column, value string) *Builder {
	if value != "" {
		b.args = append(b.args, "%"+strings.ToLower(value)+"%")
		b.conds = append(b.conds, fmt.Sprintf("LOWER(%s) LIKE $%d", column, len(b.args)))
	}
	return b
}

// ContainsAny adds one substring condition matching any of the columns,
// sharing a single argument.
func (b *Builder) ContainsAny(value string, columns ...string) *Builder {
	if value == "" || len(columns) == 0 {
		return b
	}
	b.args = append(b.args, "%"+strings.ToLower(value)+"%")
	idx := len(b.args)
	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = fmt.Sprintf("LOWER(%s) LIKE $%d", column, idx)
	}
	b.conds = append(b.conds, "("+strings.Join(parts, " OR ")+")")
	return b
}

// Where renders the accumulated conditions as a WHERE clause, or an empty
// string when no filter applies.
func (b *Builder) Where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// Args returns the positional arguments matching the rendered clause.
func (b *Builder) Args() []interface{} {
	return b.args
}

// Page carries pagination parameters as requested by the caller.
type Page struct {
	Page  int
	Limit int
}

// Clamp normalises out-of-range pagination. Zero or negative pages become
// page 1; a zero limit falls back to the default, a negative one to 1.
func (p Page) Clamp() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	} else if p.Limit < 1 {
		p.Limit = 1
	}
	return p
}

// Offset returns the slice offset for the clamped page.
func (p Page) Offset() int {
	c := p.Clamp()
	return (c.Page - 1) * c.Limit
}

// TotalPages derives the page count from the unpaginated match total.
// Zero matches yield zero pages.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
