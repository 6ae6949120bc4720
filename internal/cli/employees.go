package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"empadmin/internal/config"
	"empadmin/internal/employee"
	"empadmin/internal/flags"
	"empadmin/internal/output"
	"empadmin/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type listFlags struct {
	search     string
	department string
	role       string
	status     string
	archived   bool
	sortBy     string
	order      string
	from       string
	to         string
	page       int
	limit      int
}

var (
	listOpts   listFlags
	searchOpts listFlags
)

var employeesCmd = &cobra.Command{
	Use:     "employees",
	Aliases: []string{"employee", "emp"},
	Short:   "List, search, create, update and archive employees",
	Long: `Work with the employee list.

Examples:
  empadmin employees list --department Engineering
  empadmin employees create --employee-id E-100 --name "Ada Lovelace" \
    --department Engineering --role Engineer --joining-date 2024-03-01
  empadmin employees archive 65f0c2...
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of employees",
	Long: `List one page of employees matching the given filters.

Active and archived employees are separate views: --archived lists only the
archived ones. --from and --to bound the joining date (YYYY-MM-DD, inclusive).
Unset flags fall back to the list section of the config.

Examples:
  empadmin employees list
  empadmin employees list --search ada --status Active --page 2 --limit 20
  empadmin employees list --from 2024-01-01 --to 2024-06-30 --sort-by name --order asc
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := listFilter(cmd.Flags(), cfg, &listOpts)
		if err != nil {
			return err
		}
		page, limit, err := pageWindow(cmd.Flags(), cfg, &listOpts)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, cfg, withFilter(f))
		if err != nil {
			return err
		}
		run := func() error {
			if err := a.store.UpdatePagination(page, limit); err != nil {
				return usageError(err)
			}
			a.store.Wait()
			st := a.store.Snapshot()
			if st.ListStatus != store.StatusSuccess {
				return reported
			}
			return a.out.Write(output.EmployeesEvent(st))
		}
		return a.finish(run())
	},
}

var employeesSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search employees interactively from standard input",
	Long: `Read search terms from standard input, one per line, and print the
matching employees.

Input is debounced: a term is only searched once no newer line arrived for
runtime.debounce (default 500ms), so pasting or typing quickly triggers one
request for the last term. An empty line clears the search. The other list
filters can be fixed with flags.

Examples:
  empadmin employees search
  printf 'ad\nada\n' | empadmin employees search --department Engineering
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := listFilter(cmd.Flags(), cfg, &searchOpts)
		if err != nil {
			return err
		}
		_, limit, err := pageWindow(cmd.Flags(), cfg, &searchOpts)
		if err != nil {
			return err
		}
		c := *cfg
		c.List.PageSize = limit

		a, err := newApp(cmd, &c, withFilter(f))
		if err != nil {
			return err
		}
		run := func() error {
			stop := a.store.Subscribe(renderListUpdates(a.out))
			defer stop()

			ctx := cmd.Context()
			_ = a.store.FetchEmployees(ctx)
			readTerms(ctx, cmd.InOrStdin(), a.store.SearchWithDebounce)
			a.store.Wait()

			if a.store.Snapshot().ListStatus == store.StatusFailed {
				return reported
			}
			return nil
		}
		return a.finish(run())
	},
}

// renderListUpdates writes the list every time a fetch completes.
func renderListUpdates(out *output.Manager) func(store.State) {
	prev := store.StatusIdle
	return func(st store.State) {
		if prev == store.StatusLoading && st.ListStatus == store.StatusSuccess {
			_ = out.Write(output.EmployeesEvent(st))
		}
		prev = st.ListStatus
	}
}

// readTerms feeds every line of r to search until r is exhausted or ctx is
// done.
func readTerms(ctx context.Context, r io.Reader, search func(string)) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			search(line)
		}
	}
}

// listFilter builds the list filter from the config defaults and the
// explicitly set filter flags.
func listFilter(fs *pflag.FlagSet, c *config.Config, lf *listFlags) (employee.Filter, error) {
	f := defaultFilter(c)
	set := func(flag, field string, value any) error {
		if !fs.Changed(flag) {
			return nil
		}
		if err := f.Set(field, value); err != nil {
			return usageError(fmt.Errorf("--%s: %w", flag, err))
		}
		return nil
	}
	for _, s := range []struct {
		flag, field string
		value       any
	}{
		{flags.FlagSearch, employee.FilterSearch, lf.search},
		{flags.FlagDepartment, employee.FilterDepartment, lf.department},
		{flags.FlagRole, employee.FilterRole, lf.role},
		{flags.FlagStatus, employee.FilterStatus, lf.status},
		{flags.FlagArchived, employee.FilterArchived, lf.archived},
		{flags.FlagSortBy, employee.FilterSortBy, lf.sortBy},
		{flags.FlagOrder, employee.FilterOrder, lf.order},
	} {
		if err := set(s.flag, s.field, s.value); err != nil {
			return employee.Filter{}, err
		}
	}
	if f.Order != "asc" && f.Order != "desc" {
		return employee.Filter{}, usageErrorf("unsupported --%s: %s (must be one of: asc, desc)", flags.FlagOrder, f.Order)
	}

	var r employee.DateRange
	var err error
	if fs.Changed(flags.FlagFrom) {
		if r.Start, err = parseDay(flags.FlagFrom, lf.from); err != nil {
			return employee.Filter{}, err
		}
	}
	if fs.Changed(flags.FlagTo) {
		if r.End, err = parseDay(flags.FlagTo, lf.to); err != nil {
			return employee.Filter{}, err
		}
	}
	if err := f.Set(employee.FilterDateRange, r); err != nil {
		return employee.Filter{}, usageError(err)
	}
	return f, nil
}

// pageWindow returns the requested page and page size.
func pageWindow(fs *pflag.FlagSet, c *config.Config, lf *listFlags) (page, limit int, err error) {
	page, limit = 1, c.List.PageSize
	if fs.Changed(flags.FlagPage) {
		page = lf.page
	}
	if fs.Changed(flags.FlagLimit) {
		limit = lf.limit
	}
	if page < 1 {
		return 0, 0, usageErrorf("--%s must be >= 1", flags.FlagPage)
	}
	if limit < 1 {
		return 0, 0, usageErrorf("--%s must be >= 1", flags.FlagLimit)
	}
	return page, limit, nil
}

func parseDay(flag, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(employee.DateLayout, raw)
	if err != nil {
		return time.Time{}, usageErrorf("invalid --%s %q: expected YYYY-MM-DD", flag, raw)
	}
	return t, nil
}

// addListFlags registers the filter flags. One-shot listings also take the
// search term and page number; the interactive search reads terms from
// stdin and always starts at page 1.
func addListFlags(cmd *cobra.Command, lf *listFlags, oneShot bool) {
	fl := cmd.Flags()
	if oneShot {
		fl.StringVar(&lf.search, flags.FlagSearch, "", "Search term (name, employee ID)")
		fl.IntVar(&lf.page, flags.FlagPage, 1, "Page number, 1-based")
	}
	fl.StringVar(&lf.department, flags.FlagDepartment, "", "Only this department")
	fl.StringVar(&lf.role, flags.FlagRole, "", "Only this role")
	fl.StringVar(&lf.status, flags.FlagStatus, "", `Only this status ("Active" or "On Leave")`)
	fl.BoolVar(&lf.archived, flags.FlagArchived, false, "List archived employees instead of active ones")
	fl.StringVar(&lf.sortBy, flags.FlagSortBy, "", "Sort field (default: list.sort_by, joiningDate)")
	fl.StringVar(&lf.order, flags.FlagOrder, "", "Sort order: asc|desc (default: list.order, desc)")
	fl.StringVar(&lf.from, flags.FlagFrom, "", "Earliest joining date, YYYY-MM-DD")
	fl.StringVar(&lf.to, flags.FlagTo, "", "Latest joining date, YYYY-MM-DD")
	fl.IntVar(&lf.limit, flags.FlagLimit, 0, "Page size (default: list.page_size, 10)")
}

func init() {
	rootCmd.AddCommand(employeesCmd)
	employeesCmd.AddCommand(employeesListCmd)
	employeesCmd.AddCommand(employeesSearchCmd)
	addListFlags(employeesListCmd, &listOpts, true)
	addListFlags(employeesSearchCmd, &searchOpts, false)
}
