package pagination

import (
	"slices"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

const (
	DefaultLimit = 10
	MaxLimit     = 1000
)

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

type Page[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Normalize clamps page to >= 1 and limit to [1, MaxLimit].
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func Calculate(page, limit int) (offset int, size int) {
	page, limit = Normalize(page, limit)
	return (page - 1) * limit, limit
}

func NewMeta(page, limit int, total int64) Meta {
	page, limit = Normalize(page, limit)
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Meta{Page: page, Limit: limit, TotalItems: total, TotalPages: pages}
}

func New[T any](items []T, page, limit int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Pagination: NewMeta(page, limit, total)}
}

// SortColumn returns requested if it is whitelisted, def otherwise.
func SortColumn(requested string, allowed []string, def string) string {
	if slices.Contains(allowed, requested) {
		return requested
	}
	return def
}

// IsDesc treats anything but an explicit "asc" as descending.
func IsDesc(order string) bool {
	return !strings.EqualFold(strings.TrimSpace(order), "asc")
}

// OrderBy builds an ORDER BY fragment from a whitelisted column.
func OrderBy(column string, desc bool) string {
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	return pq.QuoteIdentifier(column) + dir
}
