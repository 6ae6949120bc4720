package output

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"empadmin/internal/employee"
	"empadmin/internal/store"

	"github.com/fatih/color"
)

type theme struct {
	heading *color.Color
	success *color.Color
	failure *color.Color
	muted   *color.Color
}

func newTheme(noColor bool) theme {
	t := theme{
		heading: color.New(color.Bold),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		muted:   color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{t.heading, t.success, t.failure, t.muted} {
			c.DisableColor()
		}
	}
	return t
}

func renderText(w io.Writer, th theme, e Event) error {
	switch e.Type {
	case EventNotification:
		return renderNotification(w, th, e)
	case EventMessage:
		_, err := fmt.Fprintln(w, e.Message)
		return err
	case EventDashboard:
		return renderDashboard(w, th, e.Dashboard)
	case EventEmployees:
		return renderEmployees(w, th, e)
	default:
		// Lifecycle events have no text form.
		return nil
	}
}

func renderNotification(w io.Writer, th theme, e Event) error {
	if e.Level == string(store.LevelError) {
		_, err := th.failure.Fprintf(w, "✖ %s\n", e.Message)
		return err
	}
	_, err := th.success.Fprintf(w, "✔ %s\n", e.Message)
	return err
}

func renderDashboard(w io.Writer, th theme, d *employee.Dashboard) error {
	if d == nil {
		_, err := th.muted.Fprintln(w, "No dashboard data.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	section := func(title string) {
		_ = tw.Flush()
		th.heading.Fprintln(w, title)
	}

	section("Summary")
	fmt.Fprintf(tw, "  Total employees\t%d\t%s\n", d.Summary.TotalEmployees, delta(d.Summary.EmployeeGrowth))
	fmt.Fprintf(tw, "  Active employees\t%d\t%s\n", d.Summary.ActiveEmployees, delta(d.Summary.ActivePercentage))
	if d.Summary.OnLeaveEmployees > 0 {
		fmt.Fprintf(tw, "  On leave\t%d\t\n", d.Summary.OnLeaveEmployees)
	}
	if d.Summary.PendingReviews > 0 {
		fmt.Fprintf(tw, "  Pending reviews\t%d\t\n", d.Summary.PendingReviews)
	}

	section("Performance")
	p := d.PerformanceStats
	fmt.Fprintf(tw, "  Average score\t%s\t%s\n", strconv.FormatFloat(p.AverageScore, 'f', 1, 64), delta(p.ScoreTrend))
	fmt.Fprintf(tw, "  High (>= %d)\t%d\t\n", employee.HighScoreThreshold, p.HighPerformers)
	fmt.Fprintf(tw, "  Medium (>= %d)\t%d\t\n", employee.MediumScoreThreshold, p.MediumPerformers)
	fmt.Fprintf(tw, "  Low\t%d\t\n", p.LowPerformers)

	section("Departments")
	if len(d.DepartmentStats) == 0 {
		fmt.Fprintln(tw, "  (none)")
	}
	var counted int
	for _, s := range d.DepartmentStats {
		counted += s.Count
		fmt.Fprintf(tw, "  %s\t%d\t%s%%\n", s.Department, s.Count, strconv.FormatFloat(s.Percentage, 'f', 1, 64))
	}
	if len(d.DepartmentStats) > 1 {
		// Rows are rounded by the server, so this is close to 100, not exact.
		fmt.Fprintf(tw, "  Total\t%d\t%s%%\n", counted, strconv.FormatFloat(d.DepartmentPercentTotal(), 'f', 1, 64))
	}

	section("Recent employees")
	writeEmployeeRows(tw, d.RecentEmployees)

	section("Top performers")
	writeEmployeeRows(tw, d.TopPerformers)

	return tw.Flush()
}

func renderEmployees(w io.Writer, th theme, e Event) error {
	if len(e.Employees) == 0 {
		if _, err := th.muted.Fprintln(w, "No employees found."); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		writeEmployeeRows(tw, e.Employees)
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if e.Pagination == nil {
		return nil
	}
	p := *e.Pagination
	_, err := th.muted.Fprintf(w, "Page %d of %d (%d employees)\n", p.CurrentPage, max(p.TotalPages(), 1), p.TotalEmployees)
	return err
}

func writeEmployeeRows(tw *tabwriter.Writer, list []employee.Employee) {
	if len(list) == 0 {
		fmt.Fprintln(tw, "  (none)")
		return
	}
	fmt.Fprintln(tw, "  ID\tEMPLOYEE ID\tNAME\tDEPARTMENT\tROLE\tSTATUS\tJOINED\tSCORE\tARCHIVED")
	for _, e := range list {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\t%s\t%d (%s)\t%t\n",
			dash(e.ID), dash(e.EmployeeID), dash(e.Name), dash(e.Department), dash(e.Role),
			dash(string(e.Status)), joined(e), e.PerformanceScore, employee.BucketOf(e.PerformanceScore), e.IsArchived)
	}
}

func joined(e employee.Employee) string {
	if t, ok := e.Joined(); ok {
		return t.Format(employee.DateLayout)
	}
	return dash(e.JoiningDate)
}

func delta(d employee.Delta) string {
	if d == "" {
		return ""
	}
	return "(" + string(d) + ")"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
