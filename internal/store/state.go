package store

import (
	"slices"

	"empadmin/internal/employee"
)

// Status is the lifecycle of one kind of request.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a read-only snapshot of everything the store owns.
type State struct {
	// Loading is true while any request is in flight.
	Loading bool
	// Error is the message of the most recent failure. It is cleared when
	// the next request starts.
	Error string

	DashboardStatus Status
	ListStatus      Status

	// Dashboard is nil until a fetch succeeds and after a fetch fails.
	Dashboard  *employee.Dashboard
	Employees  []employee.Employee
	Filter     employee.Filter
	Pagination employee.Pagination
	Draft      employee.Draft
}

func (s State) clone() State {
	out := s
	out.Employees = slices.Clone(s.Employees)
	if out.Employees == nil {
		out.Employees = []employee.Employee{}
	}
	if s.Dashboard != nil {
		d := *s.Dashboard
		out.Dashboard = &d
	}
	if s.Filter.DateRange != nil {
		r := *s.Filter.DateRange
		out.Filter.DateRange = &r
	}
	return out
}
