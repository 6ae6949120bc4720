package employee

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Filter field names accepted by Filter.Set.
const (
	FilterSearch     = "search"
	FilterDepartment = "department"
	FilterRole       = "role"
	FilterStatus     = "status"
	FilterArchived   = "archived"
	FilterSortBy     = "sortBy"
	FilterOrder      = "order"
	FilterDateRange  = "dateRange"
)

const (
	DefaultSortBy   = "joiningDate"
	DefaultOrder    = "desc"
	DefaultPageSize = 10
)

// DateRange is an inclusive joining-date window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r *DateRange) IsZero() bool {
	return r == nil || (r.Start.IsZero() && r.End.IsZero())
}

// Filter is the employee list filter. Archived and active employees are
// disjoint views selected by Archived.
type Filter struct {
	Search     string     `json:"search,omitempty"`
	Department string     `json:"department,omitempty"`
	Role       string     `json:"role,omitempty"`
	Status     string     `json:"status,omitempty"`
	Archived   bool       `json:"archived"`
	SortBy     string     `json:"sortBy"`
	Order      string     `json:"order"`
	DateRange  *DateRange `json:"dateRange,omitempty"`
}

// DefaultFilter returns the cleared filter state.
func DefaultFilter() Filter {
	return Filter{
		SortBy: DefaultSortBy,
		Order:  DefaultOrder,
	}
}

// Set assigns a single filter field by name.
func (f *Filter) Set(field string, value any) error {
	switch field {
	case FilterSearch:
		f.Search = toString(value)
	case FilterDepartment:
		f.Department = toString(value)
	case FilterRole:
		f.Role = toString(value)
	case FilterStatus:
		f.Status = toString(value)
	case FilterSortBy:
		f.SortBy = toString(value)
	case FilterOrder:
		f.Order = strings.ToLower(toString(value))
	case FilterArchived:
		switch t := value.(type) {
		case bool:
			f.Archived = t
		default:
			s := strings.TrimSpace(toString(value))
			if s == "" {
				f.Archived = false
				return nil
			}
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("invalid %s %v: %w", field, value, err)
			}
			f.Archived = b
		}
	case FilterDateRange:
		var r *DateRange
		switch t := value.(type) {
		case nil:
		case DateRange:
			r = &t
		case *DateRange:
			r = t
		case []time.Time:
			if len(t) != 0 && len(t) != 2 {
				return fmt.Errorf("invalid %s: expected start and end", field)
			}
			if len(t) == 2 {
				r = &DateRange{Start: t[0], End: t[1]}
			}
		default:
			return fmt.Errorf("invalid %s type %T", field, value)
		}
		if r != nil && !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
			return fmt.Errorf("invalid %s: end is before start", field)
		}
		if r.IsZero() {
			r = nil
		}
		f.DateRange = r
	default:
		return fmt.Errorf("unknown filter field %q", field)
	}
	return nil
}

// Pagination is the 1-based page window plus the server-reported total.
type Pagination struct {
	CurrentPage    int `json:"currentPage"`
	PageSize       int `json:"pageSize"`
	TotalEmployees int `json:"totalEmployees"`
}

func DefaultPagination() Pagination {
	return Pagination{CurrentPage: 1, PageSize: DefaultPageSize}
}

// TotalPages derives the page count from the total and page size.
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 || p.TotalEmployees <= 0 {
		return 0
	}
	return (p.TotalEmployees + p.PageSize - 1) / p.PageSize
}
