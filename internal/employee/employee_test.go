package employee

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{name: "zero clamps to min", in: 0, want: 1},
		{name: "above max clamps", in: 150, want: 100},
		{name: "numeric string", in: "85", want: 85},
		{name: "float rounds", in: 79.6, want: 80},
		{name: "negative string", in: "-4", want: 1},
		{name: "garbage falls back", in: "abc", want: DefaultScore},
		{name: "nil falls back", in: nil, want: DefaultScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeScore(tt.in))
		})
	}
}

func TestDraftSet_CoercesFormInput(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.Set(FieldPerformanceScore, "85"))
	assert.Equal(t, 85, d.PerformanceScore)

	require.NoError(t, d.Set(FieldPerformanceScore, 0))
	assert.Equal(t, 1, d.PerformanceScore)

	require.NoError(t, d.Set(FieldPerformanceScore, 150))
	assert.Equal(t, 100, d.PerformanceScore)

	require.NoError(t, d.Set(FieldJoiningDate, "2024-01-15"))
	assert.Equal(t, "2024-01-15", d.FormattedJoiningDate())

	require.NoError(t, d.Set(FieldIsArchived, "true"))
	assert.True(t, d.IsArchived)

	require.NoError(t, d.Set(FieldImage, "https://cdn.example.com/a.png"))
	assert.False(t, d.Image.HasUpload())
	assert.Equal(t, "https://cdn.example.com/a.png", d.Image.URL)

	require.NoError(t, d.Set(FieldImage, &Upload{Filename: "a.png", Data: []byte{1}}))
	assert.True(t, d.Image.HasUpload())

	assert.Error(t, d.Set(FieldJoiningDate, "15/01/2024"))
	assert.Error(t, d.Set("salary", 10))
}

func TestDraftScore_ClampsDirectAssignment(t *testing.T) {
	d := NewDraft()
	d.PerformanceScore = 0
	assert.Equal(t, 1, d.Score())
	d.PerformanceScore = 101
	assert.Equal(t, 100, d.Score())
}

func TestDraftFrom_SeedsEditForm(t *testing.T) {
	e := Employee{
		ID:               "64a1",
		EmployeeID:       "EMP001",
		Name:             "John Doe",
		Department:       "Engineering",
		Role:             "Senior Developer",
		Status:           StatusOnLeave,
		JoiningDate:      "2024-01-15T00:00:00.000Z",
		PerformanceScore: 85,
		Image:            "https://i.pravatar.cc/150?img=1",
	}
	d := DraftFrom(e)
	assert.Equal(t, "EMP001", d.EmployeeID)
	assert.Equal(t, StatusOnLeave, d.Status)
	assert.Equal(t, "2024-01-15", d.FormattedJoiningDate())
	assert.Equal(t, e.Image, d.Image.URL)
	assert.False(t, d.Image.HasUpload())
}

func TestEmployeeUnmarshal_AcceptsMongoIDAndStringScore(t *testing.T) {
	var e Employee
	err := json.Unmarshal([]byte(`{"_id":"abc","employeeID":"EMP002","name":"Jane","performanceScore":"92","status":"Active"}`), &e)
	require.NoError(t, err)
	assert.Equal(t, "abc", e.ID)
	assert.Equal(t, 92, e.PerformanceScore)
	assert.Equal(t, StatusActive, e.Status)

	var withID Employee
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x1","_id":"ignored","performanceScore":88}`), &withID))
	assert.Equal(t, "x1", withID.ID)
	assert.Equal(t, 88, withID.PerformanceScore)
}

func TestFilterSet(t *testing.T) {
	f := DefaultFilter()
	require.NoError(t, f.Set(FilterSearch, "john"))
	require.NoError(t, f.Set(FilterArchived, "true"))
	require.NoError(t, f.Set(FilterOrder, "ASC"))
	assert.Equal(t, "john", f.Search)
	assert.True(t, f.Archived)
	assert.Equal(t, "asc", f.Order)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.Set(FilterDateRange, []time.Time{start, end}))
	require.NotNil(t, f.DateRange)
	assert.Equal(t, start, f.DateRange.Start)

	assert.Error(t, f.Set(FilterDateRange, []time.Time{end, start}))
	assert.Equal(t, start, f.DateRange.Start, "rejected range must not replace the current one")

	require.NoError(t, f.Set(FilterDateRange, nil))
	assert.Nil(t, f.DateRange)

	assert.Error(t, f.Set("salary", "1"))
}

func TestPaginationTotalPages(t *testing.T) {
	assert.Equal(t, 5, Pagination{PageSize: 10, TotalEmployees: 42}.TotalPages())
	assert.Equal(t, 0, Pagination{PageSize: 10}.TotalPages())
	assert.Equal(t, 0, Pagination{TotalEmployees: 3}.TotalPages())
}

func TestBucketOf(t *testing.T) {
	assert.Equal(t, BucketHigh, BucketOf(80))
	assert.Equal(t, BucketMedium, BucketOf(79))
	assert.Equal(t, BucketMedium, BucketOf(60))
	assert.Equal(t, BucketLow, BucketOf(59))
}

func TestDeltaUnmarshal(t *testing.T) {
	var s Summary
	require.NoError(t, json.Unmarshal([]byte(`{"totalEmployees":156,"employeeGrowth":12.5,"activePercentage":"91%"}`), &s))
	assert.Equal(t, 156, s.TotalEmployees)
	assert.Equal(t, Delta("12.5"), s.EmployeeGrowth)
	assert.Equal(t, Delta("91%"), s.ActivePercentage)
}

func TestDepartmentStatUnmarshal_AcceptsAggregationID(t *testing.T) {
	var stats []DepartmentStat
	require.NoError(t, json.Unmarshal([]byte(`[{"_id":"Sales","count":32,"percentage":21},{"department":"HR","count":18,"percentage":12}]`), &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, "Sales", stats[0].Department)
	assert.Equal(t, "HR", stats[1].Department)

	d := &Dashboard{DepartmentStats: stats}
	assert.InDelta(t, 33, d.DepartmentPercentTotal(), 0.001)
}

func TestValidateDraft(t *testing.T) {
	d := NewDraft()
	err := ValidateDraft(d)
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 4)

	d.EmployeeID = "EMP010"
	d.Name = "Ada"
	d.Department = "Engineering"
	d.Role = "Developer"
	assert.NoError(t, ValidateDraft(d))

	d.Status = "Retired"
	assert.Error(t, ValidateDraft(d))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("admin@example.com"))
	assert.False(t, IsEmail("admin@"))
	assert.False(t, IsEmail(""))
}
