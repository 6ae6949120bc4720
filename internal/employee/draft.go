package employee

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Draft field names, matching the remote API's form keys.
const (
	FieldEmployeeID       = "employeeID"
	FieldName             = "name"
	FieldDepartment       = "department"
	FieldRole             = "role"
	FieldStatus           = "status"
	FieldJoiningDate      = "joiningDate"
	FieldPerformanceScore = "performanceScore"
	FieldIsArchived       = "isArchived"
	FieldImage            = "image"
)

// Upload is a pending binary image attached to a draft.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Image is either an existing image URL or a new upload. A new upload takes
// precedence when both are set.
type Image struct {
	URL    string
	Upload *Upload
}

// HasUpload reports whether the image carries new binary content.
func (i Image) HasUpload() bool {
	return i.Upload != nil && len(i.Upload.Data) > 0
}

// Draft is the transient create/edit form state for one employee.
type Draft struct {
	EmployeeID       string
	Name             string
	Department       string
	Role             string
	Status           Status
	JoiningDate      time.Time
	PerformanceScore int
	IsArchived       bool
	Image            Image
}

// NewDraft returns an empty form with the default status and score.
func NewDraft() Draft {
	return Draft{
		Status:           StatusActive,
		PerformanceScore: DefaultScore,
	}
}

// DraftFrom seeds an edit form from an existing record.
func DraftFrom(e Employee) Draft {
	d := NewDraft()
	d.EmployeeID = e.EmployeeID
	d.Name = e.Name
	d.Department = e.Department
	d.Role = e.Role
	if e.Status != "" {
		d.Status = e.Status
	}
	if t, ok := e.Joined(); ok {
		d.JoiningDate = t
	}
	d.PerformanceScore = ClampScore(e.PerformanceScore)
	d.IsArchived = e.IsArchived
	d.Image = Image{URL: e.Image}
	return d
}

// Set assigns a single form field by its API name, coercing loosely typed
// input the way a form widget would hand it over.
func (d *Draft) Set(field string, value any) error {
	switch field {
	case FieldEmployeeID:
		d.EmployeeID = toString(value)
	case FieldName:
		d.Name = toString(value)
	case FieldDepartment:
		d.Department = toString(value)
	case FieldRole:
		d.Role = toString(value)
	case FieldStatus:
		d.Status = Status(toString(value))
	case FieldJoiningDate:
		switch t := value.(type) {
		case time.Time:
			d.JoiningDate = t
		case nil:
			d.JoiningDate = time.Time{}
		default:
			s := toString(value)
			if strings.TrimSpace(s) == "" {
				d.JoiningDate = time.Time{}
				return nil
			}
			parsed, ok := parseDate(s)
			if !ok {
				return fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", field, s)
			}
			d.JoiningDate = parsed
		}
	case FieldPerformanceScore:
		d.PerformanceScore = NormalizeScore(value)
	case FieldIsArchived:
		switch t := value.(type) {
		case bool:
			d.IsArchived = t
		default:
			b, err := strconv.ParseBool(toString(value))
			if err != nil {
				return fmt.Errorf("invalid %s %v: %w", field, value, err)
			}
			d.IsArchived = b
		}
	case FieldImage:
		switch t := value.(type) {
		case *Upload:
			d.Image.Upload = t
		case Upload:
			d.Image.Upload = &t
		case nil:
			d.Image = Image{}
		default:
			d.Image = Image{URL: toString(value)}
		}
	default:
		return fmt.Errorf("unknown draft field %q", field)
	}
	return nil
}

// FormattedJoiningDate renders JoiningDate as YYYY-MM-DD, or "" when unset.
func (d Draft) FormattedJoiningDate() string {
	if d.JoiningDate.IsZero() {
		return ""
	}
	return d.JoiningDate.Format(DateLayout)
}

// Score returns the clamped score that is actually submitted.
func (d Draft) Score() int {
	return ClampScore(d.PerformanceScore)
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
