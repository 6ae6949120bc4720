package output

import (
	"encoding/json"

	"empadmin/internal/employee"
	"empadmin/internal/store"
)

// Event types written to sinks.
const (
	EventNotification = "notification"
	EventDashboard    = "dashboard"
	EventEmployees    = "employees"
	EventMessage      = "message"
	EventFinished     = "command.finished"
)

// Event is one record of command output.
//
// In NDJSON mode, sinks emit every Event as one JSON object per line,
// including:
// - notification (store toasts)
// - dashboard
// - employees
// - message (login/logout confirmations)
// - command.finished
//
// JSON mode aggregates the non-lifecycle events into an array.
type Event struct {
	Type       string               `json:"type"`
	Op         string               `json:"op,omitempty"`
	Level      string               `json:"level,omitempty"`
	Message    string               `json:"message,omitempty"`
	Dashboard  *employee.Dashboard  `json:"dashboard,omitempty"`
	Employees  []employee.Employee  `json:"employees,omitempty"`
	Filter     *employee.Filter     `json:"filter,omitempty"`
	Pagination *employee.Pagination `json:"pagination,omitempty"`
	ExitCode   int                  `json:"exit_code,omitempty"`
}

// MarshalJSON always writes the payload that defines an event type: an
// empty page still carries "employees": [] and a successful run still
// carries "exit_code": 0. Other events leave those keys out.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	switch e.Type {
	case EventEmployees:
		list := e.Employees
		if list == nil {
			list = []employee.Employee{}
		}
		return json.Marshal(struct {
			plain
			Employees []employee.Employee `json:"employees"`
		}{plain(e), list})
	case EventFinished:
		return json.Marshal(struct {
			plain
			ExitCode int `json:"exit_code"`
		}{plain(e), e.ExitCode})
	default:
		return json.Marshal(plain(e))
	}
}

func NotificationEvent(n store.Notification) Event {
	return Event{Type: EventNotification, Op: n.Op, Level: string(n.Level), Message: n.Message}
}

func DashboardEvent(d *employee.Dashboard) Event {
	return Event{Type: EventDashboard, Dashboard: d}
}

// EmployeesEvent captures the list view of a store snapshot.
func EmployeesEvent(st store.State) Event {
	f := st.Filter
	p := st.Pagination
	list := st.Employees
	if list == nil {
		list = []employee.Employee{}
	}
	return Event{Type: EventEmployees, Employees: list, Filter: &f, Pagination: &p}
}

func MessageEvent(msg string) Event {
	return Event{Type: EventMessage, Message: msg}
}

func FinishedEvent(exitCode int) Event {
	return Event{Type: EventFinished, ExitCode: exitCode}
}

// aggregated reports whether an event belongs in a JSON array result.
func aggregated(e Event) bool {
	return e.Type != EventFinished
}

func toEvent(v any) (Event, bool) {
	switch t := v.(type) {
	case Event:
		return t, true
	case *Event:
		if t == nil {
			return Event{}, false
		}
		return *t, true
	case store.Notification:
		return NotificationEvent(t), true
	default:
		return Event{}, false
	}
}
