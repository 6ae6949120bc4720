package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// config wiring. Keeping these as constants helps avoid drift between Cobra
// flag wiring and the code that applies explicitly set flags over file and
// environment config.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&v.department, flags.FlagDepartment, "", "...")
//	if cmd.Flags().Changed(flags.FlagDepartment) { ... }
const (
	// Global
	FlagConfig     = "config"
	FlagBaseURL    = "base-url"
	FlagAuthScheme = "auth-scheme"
	FlagTimeout    = "timeout"
	FlagToken      = "token"
	FlagSession    = "session"
	FlagFormat     = "format"
	FlagOut        = "out"
	FlagNoColor    = "no-color"
	FlagVerbose    = "verbose"

	// Login
	FlagEmail  = "email"
	FlagVerify = "verify"

	// Employee list filters
	FlagSearch     = "search"
	FlagDepartment = "department"
	FlagRole       = "role"
	FlagStatus     = "status"
	FlagArchived   = "archived"
	FlagSortBy     = "sort-by"
	FlagOrder      = "order"
	FlagFrom       = "from"
	FlagTo         = "to"
	FlagPage       = "page"
	FlagLimit      = "limit"

	// Employee form
	FlagEmployeeID  = "employee-id"
	FlagName        = "name"
	FlagJoiningDate = "joining-date"
	FlagScore       = "score"
	FlagImage       = "image"
	FlagImageURL    = "image-url"
	FlagIsArchived  = "is-archived"
)
