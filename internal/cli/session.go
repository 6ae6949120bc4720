package cli

import (
	"errors"
	"os"
	"strings"

	"empadmin/internal/api"
	"empadmin/internal/employee"
	"empadmin/internal/flags"
	"empadmin/internal/output"

	"github.com/spf13/cobra"
)

var loginEmail string
var loginVerify bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save an access token for later commands",
	Long: `Save an access token to the session file.

The token is read from --token, or from EMPADMIN_TOKEN when --token is not
given. --email is remembered alongside it. With --verify the token is
checked against the dashboard summary endpoint before the command returns;
a rejected token is removed again.

Examples:
  empadmin login --token "<token>"
  empadmin login --token "<token>" --email admin@example.com --verify
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := cfg.API.Token
		if token == "" {
			token = strings.TrimSpace(os.Getenv(api.TokenEnv))
		}
		if token == "" {
			return usageErrorf("login requires --%s (or %s)", flags.FlagToken, api.TokenEnv)
		}
		email := strings.TrimSpace(loginEmail)
		if email != "" && !employee.IsEmail(email) {
			return usageErrorf("Please enter a valid email address")
		}

		// Verify exactly the token being saved, whatever EMPADMIN_TOKEN holds.
		c := *cfg
		c.API.Token = token
		a, err := newApp(cmd, &c)
		if err != nil {
			return err
		}

		run := func() error {
			if err := a.session.SetAccessToken(token); err != nil {
				return usageError(err)
			}
			if email != "" {
				if err := a.session.RememberEmail(email); err != nil {
					return failure(err)
				}
			}
			if loginVerify {
				if _, err := a.client.DashboardSummary(cmd.Context()); err != nil {
					if errors.Is(err, api.ErrUnauthorized) {
						_ = a.session.Clear()
					}
					return &ExitError{Code: ExitFailure, Message: "token verification failed", Err: err}
				}
			}
			msg := "Logged in."
			if email != "" {
				msg = "Logged in as " + email + "."
			}
			return a.out.Write(output.MessageEvent(msg))
		}
		return a.finish(run())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session",
	Long: `Remove the saved access token and remembered email.

Examples:
  empadmin logout
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, cfg)
		if err != nil {
			return err
		}
		run := func() error {
			if err := a.session.Clear(); err != nil {
				return failure(err)
			}
			return a.out.Write(output.MessageEvent("Logged out."))
		}
		return a.finish(run())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved session",
	Long: `Show whether an access token is saved and which email is remembered.
The token itself is never printed.

Examples:
  empadmin status
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, cfg)
		if err != nil {
			return err
		}
		run := func() error {
			token, err := a.session.AccessToken()
			if err != nil {
				return failure(err)
			}
			email, err := a.session.Email()
			if err != nil {
				return failure(err)
			}
			msg := "Not logged in."
			if token != "" {
				msg = "Logged in."
				if email != "" {
					msg = "Logged in as " + email + "."
				}
			}
			if a.tokenOrigin != api.TokenOriginSession {
				msg += " This invocation uses the token from " + string(a.tokenOrigin) + "."
			}
			return a.out.Write(output.MessageEvent(msg))
		}
		return a.finish(run())
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	loginCmd.Flags().StringVar(&loginEmail, flags.FlagEmail, "", "Email address to remember with the session")
	loginCmd.Flags().BoolVar(&loginVerify, flags.FlagVerify, false, "Check the token against the API before saving the login")
}
