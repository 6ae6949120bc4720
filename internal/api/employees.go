package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"empadmin/internal/api/envelope"
	"empadmin/internal/employee"
	"empadmin/internal/logger"
)

// DefaultRecentLimit is how many recent hires the dashboard asks for.
const DefaultRecentLimit = 5

// Page is one decoded page of the employee list.
type Page struct {
	Employees []employee.Employee
	Total     int
	// TotalReported is false when the server sent no count and Total is
	// only the page length.
	TotalReported bool
}

func (c *Client) DashboardSummary(ctx context.Context) (employee.Summary, error) {
	body, err := c.get(ctx, "/employees/dashboard/summary", nil)
	if err != nil {
		return employee.Summary{}, err
	}
	s, _ := envelope.DecodeObject[employee.Summary](ctx, body, employee.SummaryFields...)
	return s, nil
}

func (c *Client) RecentEmployees(ctx context.Context, limit int) ([]employee.Employee, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	body, err := c.get(ctx, "/employees/recent/list", url.Values{"limit": {strconv.Itoa(limit)}})
	if err != nil {
		return nil, err
	}
	list, _ := envelope.DecodeList[employee.Employee](ctx, body, envelope.AggregateLists)
	return list, nil
}

func (c *Client) DepartmentWise(ctx context.Context) ([]employee.DepartmentStat, error) {
	body, err := c.get(ctx, "/employees/dashboard/department-wise", nil)
	if err != nil {
		return nil, err
	}
	list, _ := envelope.DecodeList[employee.DepartmentStat](ctx, body, envelope.AggregateLists)
	return list, nil
}

func (c *Client) TopPerformers(ctx context.Context) ([]employee.Employee, error) {
	body, err := c.get(ctx, "/employees/dashboard/top-performers", nil)
	if err != nil {
		return nil, err
	}
	list, _ := envelope.DecodeList[employee.Employee](ctx, body, envelope.AggregateLists)
	return list, nil
}

func (c *Client) PerformanceStats(ctx context.Context) (employee.PerformanceStats, error) {
	body, err := c.get(ctx, "/employees/performance/stats", nil)
	if err != nil {
		return employee.PerformanceStats{}, err
	}
	s, _ := envelope.DecodeObject[employee.PerformanceStats](ctx, body, employee.PerformanceFields...)
	return s, nil
}

// ListEmployees fetches one page. The total falls back to the page length
// when the server reports none. List requests are never shared with other
// callers, so a refetch after a write always sees the write and cancelling
// ctx aborts the request.
func (c *Client) ListEmployees(ctx context.Context, q ListQuery) (Page, error) {
	body, err := c.getOwn(ctx, "/employees", q.Values())
	if err != nil {
		return Page{}, err
	}
	list, shape := envelope.DecodeList[employee.Employee](ctx, body, envelope.PageLists)
	total, reported := envelope.ReportedTotal(body)
	if !reported {
		total = len(list)
	}
	logger.FromContext(ctx).Debug().
		Str("shape", shape.String()).
		Int("items", len(list)).
		Int("total", total).
		Bool("total_reported", reported).
		Msg("employee page decoded")
	return Page{
		Employees:     list,
		Total:         total,
		TotalReported: reported,
	}, nil
}

// CreateEmployee always submits multipart form data.
func (c *Client) CreateEmployee(ctx context.Context, d employee.Draft) error {
	body, contentType, err := encodeDraftForm(d)
	if err != nil {
		return err
	}
	return c.mutate(ctx, http.MethodPost, "/employees/create", body, contentType)
}

// UpdateEmployee sends multipart only when the draft carries a new upload.
// Otherwise it sends JSON and keeps the existing image URL.
func (c *Client) UpdateEmployee(ctx context.Context, id string, d employee.Draft) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("update employee: id is required")
	}
	path := "/employees/update/" + url.PathEscape(id)

	if d.Image.HasUpload() {
		body, contentType, err := encodeDraftForm(d)
		if err != nil {
			return err
		}
		return c.mutate(ctx, http.MethodPut, path, body, contentType)
	}

	body, err := json.Marshal(newUpdatePayload(d))
	if err != nil {
		return fmt.Errorf("encode update payload: %w", err)
	}
	logger.FromContext(ctx).Debug().Str("id", id).Msg("update without new image, sending json")
	return c.mutate(ctx, http.MethodPut, path, body, "application/json")
}

// ArchiveEmployee toggles the archived flag. The request has an empty body.
func (c *Client) ArchiveEmployee(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("archive employee: id is required")
	}
	return c.mutate(ctx, http.MethodPatch, "/employees/"+url.PathEscape(id)+"/archive", []byte("{}"), "application/json")
}

type updatePayload struct {
	EmployeeID       string          `json:"employeeID"`
	Name             string          `json:"name"`
	Department       string          `json:"department"`
	Role             string          `json:"role"`
	Status           employee.Status `json:"status"`
	PerformanceScore int             `json:"performanceScore"`
	IsArchived       bool            `json:"isArchived"`
	JoiningDate      string          `json:"joiningDate,omitempty"`
	Image            string          `json:"image,omitempty"`
}

func newUpdatePayload(d employee.Draft) updatePayload {
	return updatePayload{
		EmployeeID:       d.EmployeeID,
		Name:             d.Name,
		Department:       d.Department,
		Role:             d.Role,
		Status:           d.Status,
		PerformanceScore: d.Score(),
		IsArchived:       d.IsArchived,
		JoiningDate:      d.FormattedJoiningDate(),
		Image:            strings.TrimSpace(d.Image.URL),
	}
}

func encodeDraftForm(d employee.Draft) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ key, val string }{
		{employee.FieldEmployeeID, d.EmployeeID},
		{employee.FieldName, d.Name},
		{employee.FieldDepartment, d.Department},
		{employee.FieldRole, d.Role},
		{employee.FieldStatus, string(d.Status)},
		{employee.FieldJoiningDate, d.FormattedJoiningDate()},
		{employee.FieldPerformanceScore, strconv.Itoa(d.Score())},
		{employee.FieldIsArchived, strconv.FormatBool(d.IsArchived)},
	}
	for _, f := range fields {
		if f.key == employee.FieldJoiningDate && f.val == "" {
			continue
		}
		if err := w.WriteField(f.key, f.val); err != nil {
			return nil, "", fmt.Errorf("encode form field %s: %w", f.key, err)
		}
	}

	switch {
	case d.Image.HasUpload():
		up := d.Image.Upload
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, employee.FieldImage, uploadName(up)))
		ct := up.ContentType
		if ct == "" {
			ct = http.DetectContentType(up.Data)
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("encode image: %w", err)
		}
		if _, err := part.Write(up.Data); err != nil {
			return nil, "", fmt.Errorf("encode image: %w", err)
		}
	case strings.TrimSpace(d.Image.URL) != "":
		if err := w.WriteField(employee.FieldImage, strings.TrimSpace(d.Image.URL)); err != nil {
			return nil, "", fmt.Errorf("encode form field image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encode form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func uploadName(up *employee.Upload) string {
	if name := strings.TrimSpace(up.Filename); name != "" {
		return name
	}
	return "image"
}
