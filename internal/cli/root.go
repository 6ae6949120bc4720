package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"empadmin/internal/config"
	"empadmin/internal/flags"
	"empadmin/internal/logger"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var cfg = config.New()

// globalFlags holds the persistent flag values. They are applied over the
// file and environment config only when set explicitly.
type globalFlags struct {
	configPath  string
	baseURL     string
	authScheme  string
	timeout     time.Duration
	token       string
	sessionPath string
	format      string
	out         string
	noColor     bool
	verbose     bool
}

var global globalFlags

// skipConfig marks commands that run without loading configuration.
const skipConfig = "empadmin/skip-config"

var rootCmd = &cobra.Command{
	Use:   "empadmin",
	Short: "Administer employees through the employee API",
	Long: `empadmin is a command-line client for the employee administration API.

It shows the dashboard, lists and searches employees, and creates, updates
and archives them. Every data command needs an access token: log in once
with "empadmin login" or pass --token.

Examples:
	# Save an access token
	empadmin login --token "<token>" --email admin@example.com

	# Show the dashboard
	empadmin dashboard

	# List archived engineers, newest first
	empadmin employees list --department Engineering --archived

	# Print build info
	empadmin version

Configuration:
	Values are layered, lowest precedence first: built-in defaults, the YAML
	file given by --config, a .env file in the working directory, EMPADMIN_*
	environment variables, then flags.

Exit codes:
	0 = success
	1 = the operation failed
	2 = invalid flags, arguments or configuration`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&global.configPath, flags.FlagConfig, "", "YAML config file")
	pf.StringVar(&global.baseURL, flags.FlagBaseURL, cfg.API.BaseURL, "API base URL")
	pf.StringVar(&global.authScheme, flags.FlagAuthScheme, cfg.API.AuthScheme, "How the token is sent: accesstoken|bearer")
	pf.DurationVar(&global.timeout, flags.FlagTimeout, cfg.API.Timeout, "Per-request timeout")
	pf.StringVar(&global.token, flags.FlagToken, "", "Access token for this invocation (overrides EMPADMIN_TOKEN and the saved session)")
	pf.StringVar(&global.sessionPath, flags.FlagSession, "", "Session file (default: per-user config directory)")
	pf.StringVar(&global.format, flags.FlagFormat, cfg.Output.Format, "Console output format: text|json|ndjson")
	pf.StringVar(&global.out, flags.FlagOut, "", "Also write structured output to this path (.json or .ndjson)")
	pf.BoolVar(&global.noColor, flags.FlagNoColor, false, "Disable colored output")
	pf.BoolVar(&global.verbose, flags.FlagVerbose, false, "Enable verbose logging (prints every API call)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
}

// prepare loads configuration for the command about to run and installs
// the logger.
func prepare(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipConfig] != "" {
		return nil
	}
	next := config.New()
	if err := config.Load(next, global.configPath, config.DefaultEnvFile); err != nil {
		return usageError(err)
	}
	applyGlobalFlags(cmd, next, &global)
	if err := next.Validate(); err != nil {
		return usageError(err)
	}
	*cfg = *next

	logger.Init(cmd.ErrOrStderr(), cfg.Runtime.Verbose)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithLogger(ctx, map[string]interface{}{"command": cmd.CommandPath()}))
	return nil
}

// applyGlobalFlags copies explicitly set persistent flags onto c.
func applyGlobalFlags(cmd *cobra.Command, c *config.Config, g *globalFlags) {
	changed := func(name string) bool {
		return cmd != nil && cmd.Flags().Changed(name)
	}
	if changed(flags.FlagBaseURL) {
		c.API.BaseURL = g.baseURL
	}
	if changed(flags.FlagAuthScheme) {
		c.API.AuthScheme = g.authScheme
	}
	if changed(flags.FlagTimeout) {
		c.API.Timeout = g.timeout
	}
	if changed(flags.FlagToken) {
		c.API.Token = g.token
	}
	if changed(flags.FlagSession) {
		c.Session.Path = g.sessionPath
	}
	if changed(flags.FlagFormat) {
		c.Output.Format = g.format
	}
	if changed(flags.FlagOut) {
		c.Output.Out = g.out
	}
	if changed(flags.FlagNoColor) {
		c.Output.NoColor = g.noColor
	}
	if changed(flags.FlagVerbose) {
		c.Runtime.Verbose = g.verbose
	}
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || !exitErr.silent() {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
