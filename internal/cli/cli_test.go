package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"empadmin/internal/api"
	"empadmin/internal/config"
	"empadmin/internal/employee"
	"empadmin/internal/flags"
	"empadmin/internal/output"
	"empadmin/internal/store"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "plain error", err: errors.New("boom"), want: ExitFailure},
		{name: "usage", err: usageErrorf("bad flag"), want: ExitUsage},
		{name: "wrapped usage", err: fmt.Errorf("ctx: %w", usageError(errors.New("x"))), want: ExitUsage},
		{name: "reported", err: reported, want: ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitError_Message(t *testing.T) {
	if !reported.silent() {
		t.Fatalf("reported must be silent")
	}
	e := &ExitError{Code: ExitFailure, Message: "token verification failed", Err: api.ErrNoAccessToken}
	if e.silent() {
		t.Fatalf("error with message must not be silent")
	}
	if got := e.Error(); got != "token verification failed: No access token found" {
		t.Fatalf("unexpected message %q", got)
	}
	if !errors.Is(e, api.ErrNoAccessToken) {
		t.Fatalf("ExitError must unwrap")
	}
}

func newGlobalFlagsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	pf := cmd.Flags()
	pf.StringVar(&g.baseURL, flags.FlagBaseURL, config.DefaultBaseURL, "")
	pf.StringVar(&g.authScheme, flags.FlagAuthScheme, "accesstoken", "")
	pf.DurationVar(&g.timeout, flags.FlagTimeout, 30*time.Second, "")
	pf.StringVar(&g.token, flags.FlagToken, "", "")
	pf.StringVar(&g.sessionPath, flags.FlagSession, "", "")
	pf.StringVar(&g.format, flags.FlagFormat, "text", "")
	pf.StringVar(&g.out, flags.FlagOut, "", "")
	pf.BoolVar(&g.noColor, flags.FlagNoColor, false, "")
	pf.BoolVar(&g.verbose, flags.FlagVerbose, false, "")
	return cmd
}

func TestApplyGlobalFlags_OnlyExplicitFlagsOverrideConfig(t *testing.T) {
	var g globalFlags
	cmd := newGlobalFlagsCmd(&g)
	if err := cmd.Flags().Parse([]string{"--format", "json", "--verbose", "--token", "abc"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	c := config.New()
	c.API.BaseURL = "https://file.example.com/api/v1"
	c.API.Timeout = 5 * time.Second
	applyGlobalFlags(cmd, c, &g)

	if c.Output.Format != "json" || !c.Runtime.Verbose || c.API.Token != "abc" {
		t.Fatalf("explicit flags not applied: %+v", c)
	}
	// Flag defaults must not clobber values loaded from file or env.
	if c.API.BaseURL != "https://file.example.com/api/v1" {
		t.Fatalf("unset --base-url overrode config: %q", c.API.BaseURL)
	}
	if c.API.Timeout != 5*time.Second {
		t.Fatalf("unset --timeout overrode config: %s", c.API.Timeout)
	}
}

func newListFlagsCmd(lf *listFlags, oneShot bool) *cobra.Command {
	cmd := &cobra.Command{Use: "list"}
	addListFlags(cmd, lf, oneShot)
	return cmd
}

func TestListFilter(t *testing.T) {
	c := config.New()
	c.List.SortBy = "name"
	c.List.Order = "asc"

	var lf listFlags
	cmd := newListFlagsCmd(&lf, true)
	args := []string{"--search", "ada", "--department", "Engineering", "--archived", "--from", "2024-01-01", "--to", "2024-06-30", "--order", "DESC"}
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	f, err := listFilter(cmd.Flags(), c, &lf)
	if err != nil {
		t.Fatalf("listFilter: %v", err)
	}
	if f.Search != "ada" || f.Department != "Engineering" || !f.Archived {
		t.Fatalf("filters not applied: %+v", f)
	}
	if f.SortBy != "name" {
		t.Fatalf("config sort_by lost: %q", f.SortBy)
	}
	if f.Order != "desc" {
		t.Fatalf("order not normalized: %q", f.Order)
	}
	if f.DateRange == nil || f.DateRange.Start.Format(employee.DateLayout) != "2024-01-01" || f.DateRange.End.Format(employee.DateLayout) != "2024-06-30" {
		t.Fatalf("date range not applied: %+v", f.DateRange)
	}
}

func TestListFilter_Defaults(t *testing.T) {
	var lf listFlags
	cmd := newListFlagsCmd(&lf, true)
	if err := cmd.Flags().Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f, err := listFilter(cmd.Flags(), config.New(), &lf)
	if err != nil {
		t.Fatalf("listFilter: %v", err)
	}
	if f != employee.DefaultFilter() {
		t.Fatalf("expected default filter, got %+v", f)
	}
}

func TestListFilter_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "bad from", args: []string{"--from", "01/02/2024"}, want: "--from"},
		{name: "bad to", args: []string{"--to", "soon"}, want: "--to"},
		{name: "reversed range", args: []string{"--from", "2024-06-01", "--to", "2024-01-01"}, want: "end is before start"},
		{name: "bad order", args: []string{"--order", "sideways"}, want: "--order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lf listFlags
			cmd := newListFlagsCmd(&lf, true)
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err := listFilter(cmd.Flags(), config.New(), &lf)
			if err == nil {
				t.Fatalf("expected error")
			}
			if exitCode(err) != ExitUsage {
				t.Fatalf("expected usage exit code, got %d", exitCode(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestPageWindow(t *testing.T) {
	c := config.New()
	c.List.PageSize = 25

	var lf listFlags
	cmd := newListFlagsCmd(&lf, true)
	if err := cmd.Flags().Parse([]string{"--page", "3"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	page, limit, err := pageWindow(cmd.Flags(), c, &lf)
	if err != nil {
		t.Fatalf("pageWindow: %v", err)
	}
	if page != 3 || limit != 25 {
		t.Fatalf("got page=%d limit=%d", page, limit)
	}

	for _, args := range [][]string{{"--page", "0"}, {"--limit", "0"}} {
		var lf listFlags
		cmd := newListFlagsCmd(&lf, true)
		if err := cmd.Flags().Parse(args); err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if _, _, err := pageWindow(cmd.Flags(), c, &lf); exitCode(err) != ExitUsage {
			t.Fatalf("%v: expected usage error, got %v", args, err)
		}
	}
}

func TestSearchFlags_HaveNoSearchOrPage(t *testing.T) {
	var lf listFlags
	cmd := newListFlagsCmd(&lf, false)
	if cmd.Flags().Lookup(flags.FlagSearch) != nil || cmd.Flags().Lookup(flags.FlagPage) != nil {
		t.Fatalf("interactive search must not register --search or --page")
	}
}

func TestReadTerms(t *testing.T) {
	var got []string
	readTerms(context.Background(), strings.NewReader("ad\n  ada \n\n"), func(s string) { got = append(got, s) })
	want := []string{"ad", "ada", ""}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReadTerms_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	done := make(chan struct{})
	go func() {
		readTerms(ctx, r, func(string) {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("readTerms did not return after cancellation")
	}
}

type sinkFunc func(v any) error

func (f sinkFunc) Write(v any) error { return f(v) }
func (f sinkFunc) Close() error      { return nil }

func TestRenderListUpdates_OnlyAfterCompletedFetch(t *testing.T) {
	var events []output.Event
	out := output.NewManager()
	if err := out.AddSink(sinkFunc(func(v any) error {
		events = append(events, v.(output.Event))
		return nil
	})); err != nil {
		t.Fatalf("AddSink: %v", err)
	}

	fn := renderListUpdates(out)
	fn(store.State{ListStatus: store.StatusIdle})
	fn(store.State{ListStatus: store.StatusLoading})
	fn(store.State{ListStatus: store.StatusSuccess, Employees: []employee.Employee{{Name: "Ada"}}})
	// Unrelated changes after success do not re-render.
	fn(store.State{ListStatus: store.StatusSuccess})
	fn(store.State{ListStatus: store.StatusLoading})
	fn(store.State{ListStatus: store.StatusFailed})

	if len(events) != 1 {
		t.Fatalf("expected 1 render, got %d", len(events))
	}
	if events[0].Type != output.EventEmployees || events[0].Employees[0].Name != "Ada" {
		t.Fatalf("unexpected event: %#v", events[0])
	}
}

func TestReadUpload(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "ada.png")
	if err := os.WriteFile(png, []byte("\x89PNG\r\n\x1a\nrest"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	up, err := readUpload(png)
	if err != nil {
		t.Fatalf("readUpload: %v", err)
	}
	if up.Filename != "ada.png" || up.ContentType != "image/png" || len(up.Data) == 0 {
		t.Fatalf("unexpected upload: %+v", up)
	}

	noext := filepath.Join(dir, "picture")
	if err := os.WriteFile(noext, []byte("\x89PNG\r\n\x1a\nrest"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	up, err = readUpload(noext)
	if err != nil {
		t.Fatalf("readUpload: %v", err)
	}
	if up.ContentType != "image/png" {
		t.Fatalf("content type not sniffed: %q", up.ContentType)
	}

	if _, err := readUpload(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := readUpload(dir); err == nil {
		t.Fatalf("expected error for directory")
	}
}

func newFormStore(t *testing.T) *store.Store {
	t.Helper()
	client, err := api.NewClient("http://127.0.0.1:1", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	st, err := store.New(client)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newFormCmd(ff *formFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "create"}
	addFormFlags(cmd, ff)
	return cmd
}

func TestFillDraft(t *testing.T) {
	var ff formFlags
	cmd := newFormCmd(&ff)
	args := []string{"--employee-id", "E-1", "--name", "Ada", "--department", "Engineering", "--role", "Engineer", "--joining-date", "2024-03-01", "--score", "150", "--image-url", "https://img.example.com/a.png"}
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	d, err := fillDraft(cmd.Flags(), newFormStore(t), &ff)
	if err != nil {
		t.Fatalf("fillDraft: %v", err)
	}
	if d.EmployeeID != "E-1" || d.Name != "Ada" || d.Status != employee.StatusActive {
		t.Fatalf("unexpected draft: %+v", d)
	}
	if d.Score() != 100 {
		t.Fatalf("score not clamped: %d", d.Score())
	}
	if d.FormattedJoiningDate() != "2024-03-01" {
		t.Fatalf("joining date lost: %q", d.FormattedJoiningDate())
	}
	if d.Image.URL != "https://img.example.com/a.png" || d.Image.HasUpload() {
		t.Fatalf("image url not applied: %+v", d.Image)
	}
}

func TestFillDraft_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing required", args: []string{"--name", "Ada"}, want: "employeeID: is required"},
		{name: "bad status", args: []string{"--employee-id", "E", "--name", "A", "--department", "D", "--role", "R", "--status", "Gone"}, want: "status"},
		{name: "bad date", args: []string{"--employee-id", "E", "--name", "A", "--department", "D", "--role", "R", "--joining-date", "yesterday"}, want: "--joining-date"},
		{name: "both images", args: []string{"--image", "a.png", "--image-url", "https://x"}, want: "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ff formFlags
			cmd := newFormCmd(&ff)
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err := fillDraft(cmd.Flags(), newFormStore(t), &ff)
			if err == nil {
				t.Fatalf("expected error")
			}
			if exitCode(err) != ExitUsage {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestFindEmployee_PagesThroughActiveThenArchived(t *testing.T) {
	var requests []string
	mux := http.NewServeMux()
	mux.HandleFunc("/employees", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requests = append(requests, q.Get("archived")+":"+q.Get("page"))
		page, _ := strconv.Atoi(q.Get("page"))
		var list []employee.Employee
		total := 0
		if q.Get("archived") == "false" {
			total = lookupPageSize + 1
			if page == 1 {
				for i := 0; i < lookupPageSize; i++ {
					list = append(list, employee.Employee{ID: fmt.Sprintf("a%d", i)})
				}
			} else {
				list = []employee.Employee{{ID: "last-active"}}
			}
		} else {
			total = 1
			list = []employee.Employee{{ID: "target", Name: "Grace", IsArchived: true}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": list, "total": total})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := api.NewClient(srv.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	e, err := findEmployee(context.Background(), client, "target")
	if err != nil {
		t.Fatalf("findEmployee: %v", err)
	}
	if e.Name != "Grace" || !e.IsArchived {
		t.Fatalf("unexpected employee: %+v", e)
	}
	if strings.Join(requests, ",") != "false:1,false:2,true:1" {
		t.Fatalf("unexpected paging: %v", requests)
	}

	if _, err := findEmployee(context.Background(), client, "nobody"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindEmployee_KeepsPagingWhenServerSendsNoTotal(t *testing.T) {
	const rows = 2*lookupPageSize + 50
	var pages []string
	mux := http.NewServeMux()
	mux.HandleFunc("/employees", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		pages = append(pages, q.Get("archived")+":"+q.Get("page"))
		list := []employee.Employee{}
		if q.Get("archived") == "false" {
			page, _ := strconv.Atoi(q.Get("page"))
			for i := (page - 1) * lookupPageSize; i < page*lookupPageSize && i < rows; i++ {
				list = append(list, employee.Employee{ID: fmt.Sprintf("e%d", i), Name: fmt.Sprintf("Row %d", i)})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"employees": list})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := api.NewClient(srv.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	e, err := findEmployee(context.Background(), client, "e230")
	if err != nil {
		t.Fatalf("findEmployee: %v", err)
	}
	if e.Name != "Row 230" {
		t.Fatalf("unexpected employee: %+v", e)
	}
	if strings.Join(pages, ",") != "false:1,false:2,false:3" {
		t.Fatalf("unexpected paging: %v", pages)
	}
}
