package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Page*Size far from overflowing the offset.
	MaxPage = 1_000_000
)

type SortOrder struct {
	Column string
	Desc   bool
}

// PageRequest selects a zero-based page of a sorted result set.
type PageRequest struct {
	Page int
	Size int
	Sort []SortOrder
}

type Page[T any] struct {
	Items []T
	Page  int
	Size  int
	Total int64
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// NewPageRequest normalizes page and size and resolves sort expressions of
// the form "field" or "field,asc|desc" against columns. An empty sort falls
// back to defaultSort.
func NewPageRequest(page, size int, sort []string, columns map[string]string, defaultSort string) (PageRequest, error) {
	if page < 0 {
		return PageRequest{}, fmt.Errorf("page must not be negative")
	}
	if page > MaxPage {
		return PageRequest{}, fmt.Errorf("page must be at most %d", MaxPage)
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	if len(sort) == 0 && defaultSort != "" {
		sort = []string{defaultSort}
	}
	orders := make([]SortOrder, 0, len(sort))
	for _, expr := range sort {
		if strings.TrimSpace(expr) == "" {
			continue
		}
		field, dir, _ := strings.Cut(expr, ",")
		col, ok := columns[strings.TrimSpace(field)]
		if !ok {
			return PageRequest{}, fmt.Errorf("cannot sort by %q", field)
		}
		var desc bool
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			desc = true
		default:
			return PageRequest{}, fmt.Errorf("unknown sort direction %q", dir)
		}
		orders = append(orders, SortOrder{Column: col, Desc: desc})
	}
	return PageRequest{Page: page, Size: size, Sort: orders}, nil
}

// Paginate applies ordering, limit and offset.
func Paginate(p PageRequest) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, s := range p.Sort {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc})
		}
		return db.Limit(p.Size).Offset(p.Page * p.Size)
	}
}
