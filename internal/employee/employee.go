package employee

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire format used for joiningDate.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusActive  Status = "Active"
	StatusOnLeave Status = "On Leave"
)

// Statuses lists the allowed employee statuses.
var Statuses = []Status{StatusActive, StatusOnLeave}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Employee is a record as returned by the remote API.
type Employee struct {
	ID               string `json:"id"`
	EmployeeID       string `json:"employeeID"`
	Name             string `json:"name"`
	Department       string `json:"department"`
	Role             string `json:"role"`
	Status           Status `json:"status"`
	JoiningDate      string `json:"joiningDate,omitempty"`
	PerformanceScore int    `json:"performanceScore"`
	IsArchived       bool   `json:"isArchived"`
	Image            string `json:"image,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" for the record identity and
// tolerates a numeric or string performanceScore.
func (e *Employee) UnmarshalJSON(b []byte) error {
	type plain Employee
	var aux struct {
		plain
		MongoID          string          `json:"_id"`
		PerformanceScore json.RawMessage `json:"performanceScore"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = Employee(aux.plain)
	if e.ID == "" {
		e.ID = aux.MongoID
	}
	if len(aux.PerformanceScore) > 0 && string(aux.PerformanceScore) != "null" {
		var raw any
		if err := json.Unmarshal(aux.PerformanceScore, &raw); err == nil {
			if n, ok := ParseScore(raw); ok {
				e.PerformanceScore = n
			}
		}
	}
	return nil
}

// Joined parses JoiningDate, accepting a bare date or an RFC 3339 timestamp.
func (e Employee) Joined() (time.Time, bool) {
	return parseDate(e.JoiningDate)
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
