package employee

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Performance score bucket boundaries.
const (
	HighScoreThreshold   = 80
	MediumScoreThreshold = 60
)

type Bucket string

const (
	BucketHigh   Bucket = "high"
	BucketMedium Bucket = "medium"
	BucketLow    Bucket = "low"
)

// BucketOf classifies a score: high >= 80, medium 60-79, low < 60.
func BucketOf(score int) Bucket {
	switch {
	case score >= HighScoreThreshold:
		return BucketHigh
	case score >= MediumScoreThreshold:
		return BucketMedium
	default:
		return BucketLow
	}
}

// Delta is a growth or trend indicator. The API sends either a preformatted
// string ("+12%") or a bare number.
type Delta string

func (d *Delta) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*d = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*d = Delta(str)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*d = Delta(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Summary carries the headline counts.
type Summary struct {
	TotalEmployees   int   `json:"totalEmployees"`
	ActiveEmployees  int   `json:"activeEmployees"`
	OnLeaveEmployees int   `json:"onLeaveEmployees,omitempty"`
	ArchivedCount    int   `json:"archivedEmployees,omitempty"`
	PendingReviews   int   `json:"pendingReviews,omitempty"`
	EmployeeGrowth   Delta `json:"employeeGrowth,omitempty"`
	ActivePercentage Delta `json:"activePercentage,omitempty"`
}

// SummaryFields are the keys that identify a bare summary object.
var SummaryFields = []string{"totalEmployees", "activeEmployees"}

// PerformanceStats carries the score distribution.
type PerformanceStats struct {
	AverageScore     float64 `json:"averageScore"`
	HighPerformers   int     `json:"highPerformers"`
	MediumPerformers int     `json:"mediumPerformers"`
	LowPerformers    int     `json:"lowPerformers"`
	ScoreTrend       Delta   `json:"scoreTrend,omitempty"`
}

// PerformanceFields are the keys that identify a bare performance object.
var PerformanceFields = []string{"averageScore", "highPerformers", "mediumPerformers", "lowPerformers"}

// DepartmentStat is one row of the department breakdown.
type DepartmentStat struct {
	Department string  `json:"department"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// UnmarshalJSON also accepts aggregation output keyed by "_id".
func (s *DepartmentStat) UnmarshalJSON(b []byte) error {
	type plain DepartmentStat
	var aux struct {
		plain
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*s = DepartmentStat(aux.plain)
	if s.Department == "" {
		s.Department = aux.ID
	}
	return nil
}

// Dashboard is the combined aggregate. It is always replaced as a whole.
type Dashboard struct {
	Summary          Summary          `json:"summary"`
	PerformanceStats PerformanceStats `json:"performanceStats"`
	RecentEmployees  []Employee       `json:"recentEmployees"`
	TopPerformers    []Employee       `json:"topPerformers"`
	DepartmentStats  []DepartmentStat `json:"departmentStats"`
}

// DepartmentPercentTotal sums the department percentages. Servers round
// each row, so the total is only approximately 100.
func (d *Dashboard) DepartmentPercentTotal() float64 {
	if d == nil {
		return 0
	}
	var total float64
	for _, s := range d.DepartmentStats {
		total += s.Percentage
	}
	return total
}
