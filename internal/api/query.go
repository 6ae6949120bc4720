package api

import (
	"net/url"
	"strconv"
	"strings"

	"empadmin/internal/employee"
)

// DateRangeParam is repeated once per bound, the way form-style array
// serializers encode it.
const DateRangeParam = "dateRange[]"

// ListQuery is one page request of the employee list.
type ListQuery struct {
	Page   int
	Limit  int
	Filter employee.Filter
}

// Values encodes the query. Empty values are omitted; archived is always
// sent as "true" or "false".
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	f := q.Filter
	setNonEmpty(v, "search", f.Search)
	setNonEmpty(v, "department", f.Department)
	setNonEmpty(v, "role", f.Role)
	setNonEmpty(v, "status", f.Status)
	v.Set("archived", strconv.FormatBool(f.Archived))
	setNonEmpty(v, "sortBy", f.SortBy)
	setNonEmpty(v, "order", f.Order)
	if !f.DateRange.IsZero() {
		if !f.DateRange.Start.IsZero() {
			v.Add(DateRangeParam, f.DateRange.Start.Format(employee.DateLayout))
		}
		if !f.DateRange.End.IsZero() {
			v.Add(DateRangeParam, f.DateRange.End.Format(employee.DateLayout))
		}
	}
	return v
}

func setNonEmpty(v url.Values, key, val string) {
	if val = strings.TrimSpace(val); val != "" {
		v.Set(key, val)
	}
}
