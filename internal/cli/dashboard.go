package cli

import (
	"empadmin/internal/output"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the employee dashboard",
	Long: `Show the dashboard: the headcount summary, performance statistics,
the department breakdown, the most recent hires and the top performers.

All five sections are fetched concurrently. If any of them fails, nothing
is shown and the command exits with code 1.

Examples:
  empadmin dashboard
  empadmin dashboard --format json
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, cfg)
		if err != nil {
			return err
		}
		run := func() error {
			if err := a.store.FetchDashboard(cmd.Context()); err != nil {
				return reported
			}
			return a.out.Write(output.DashboardEvent(a.store.Snapshot().Dashboard))
		}
		return a.finish(run())
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
