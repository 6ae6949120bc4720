package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"empadmin/internal/session"
)

// DefaultBaseURL is the hosted employee API.
const DefaultBaseURL = "https://admin-dashboard-server-phi.vercel.app/api/v1"

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep these in
	// sync:
	// - CLI flags in internal/cli/root.go and internal/cli/employees.go
	// - environment keys in internal/config/load.go
	API     API     `yaml:"api"`
	Session Session `yaml:"session"`
	List    List    `yaml:"list"`
	Output  Output  `yaml:"output"`
	Runtime Runtime `yaml:"runtime"`
}

type API struct {
	// BaseURL is the API root every endpoint path is appended to (see --base-url).
	BaseURL string `yaml:"base_url"`

	// AuthScheme selects how the access token is sent.
	// Allowed values: accesstoken (raw header), bearer (Authorization header).
	AuthScheme string `yaml:"auth_scheme"`

	// Timeout bounds every HTTP request (see --timeout). Must be > 0.
	Timeout time.Duration `yaml:"timeout"`

	// Token overrides the persisted session for one invocation (see --token).
	// It is never read from the config file.
	Token string `yaml:"-"`
}

type Session struct {
	// Path is the session file holding the access token and remembered
	// email. Empty means the per-user config directory.
	Path string `yaml:"path"`
}

type List struct {
	// PageSize is the default page size for employee listings (see --limit).
	PageSize int `yaml:"page_size"`

	// SortBy is the default sort field (see --sort-by).
	SortBy string `yaml:"sort_by"`

	// Order is the default sort order (see --order).
	// Allowed values: asc, desc.
	Order string `yaml:"order"`
}

type Output struct {
	// Format controls the console sink format (see --format).
	// Allowed values: text, json, ndjson.
	Format string `yaml:"format"`

	// Out additionally writes the command result to this path (see --out).
	// The format is inferred from the extension: .json or .ndjson/.jsonl.
	Out string `yaml:"out"`

	// NoColor disables ANSI colors in text output (see --no-color).
	NoColor bool `yaml:"no_color"`
}

type Runtime struct {
	// Debounce is the trailing delay applied to interactive search input.
	Debounce time.Duration `yaml:"debounce"`

	// RecentLimit is how many recent hires the dashboard shows.
	RecentLimit int `yaml:"recent_limit"`

	// Verbose enables debug logging of every API request (see --verbose).
	Verbose bool `yaml:"verbose"`
}

func New() *Config {
	return &Config{
		API: API{
			BaseURL:    DefaultBaseURL,
			AuthScheme: "accesstoken",
			Timeout:    30 * time.Second,
		},
		List: List{
			PageSize: 10,
			SortBy:   "joiningDate",
			Order:    "desc",
		},
		Output: Output{
			Format: "text",
		},
		Runtime: Runtime{
			Debounce:    500 * time.Millisecond,
			RecentLimit: 5,
		},
	}
}

func (c *Config) Validate() error {
	// API validation
	base, err := normalizeBaseURL(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid --base-url value: %w", err)
	}
	c.API.BaseURL = base

	c.API.AuthScheme = normalizeEnumValue(c.API.AuthScheme)
	if c.API.AuthScheme == "" {
		c.API.AuthScheme = "accesstoken"
	}
	if c.API.AuthScheme != "accesstoken" && c.API.AuthScheme != "bearer" {
		return fmt.Errorf("unsupported api.auth_scheme: %s (must be one of: accesstoken, bearer)", c.API.AuthScheme)
	}
	if c.API.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if strings.ContainsAny(c.API.Token, " \t\n\r") {
		return errors.New("--token must not contain whitespace")
	}

	// Session
	c.Session.Path = strings.TrimSpace(c.Session.Path)
	if c.Session.Path == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return err
		}
		c.Session.Path = p
	}

	// List validation
	if c.List.PageSize < 1 {
		return errors.New("--limit must be >= 1")
	}
	c.List.SortBy = strings.TrimSpace(c.List.SortBy)
	if c.List.SortBy == "" {
		c.List.SortBy = "joiningDate"
	}
	c.List.Order = normalizeEnumValue(c.List.Order)
	if c.List.Order == "" {
		c.List.Order = "desc"
	}
	if c.List.Order != "asc" && c.List.Order != "desc" {
		return fmt.Errorf("unsupported --order: %s (must be one of: asc, desc)", c.List.Order)
	}

	// Output validation
	c.Output.Format = normalizeEnumValue(c.Output.Format)
	if c.Output.Format == "" {
		return errors.New("--format must be one of: text, json, ndjson")
	}
	if c.Output.Format != "text" && c.Output.Format != "json" && c.Output.Format != "ndjson" {
		return fmt.Errorf("unsupported --format: %s (must be one of: text, json, ndjson)", c.Output.Format)
	}
	c.Output.Out = strings.TrimSpace(c.Output.Out)

	// Runtime validation
	if c.Runtime.Debounce < 0 {
		return errors.New("runtime.debounce must be >= 0")
	}
	if c.Runtime.RecentLimit < 1 {
		return errors.New("runtime.recent_limit must be >= 1")
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}
