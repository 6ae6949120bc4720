package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "EMPADMIN_"

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Load layers, in increasing precedence, the YAML file at file (skipped
// when empty), the dotenv file at envFile (skipped when missing) and
// EMPADMIN_* environment variables onto cfg. Variables already set in the
// environment win over the dotenv file. CLI flags are applied by the caller
// afterwards.
func Load(cfg *Config, file, envFile string) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	if strings.TrimSpace(file) != "" {
		if err := loadFile(cfg, file); err != nil {
			return err
		}
	}
	if strings.TrimSpace(envFile) != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	return applyEnv(cfg, os.LookupEnv)
}

func loadFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

type envBinding struct {
	key   string
	apply func(cfg *Config, raw string) error
}

var envBindings = []envBinding{
	{"BASE_URL", func(c *Config, v string) error { c.API.BaseURL = v; return nil }},
	{"AUTH_SCHEME", func(c *Config, v string) error { c.API.AuthScheme = v; return nil }},
	{"TIMEOUT", func(c *Config, v string) error { return setDuration(&c.API.Timeout, v) }},
	{"SESSION_PATH", func(c *Config, v string) error { c.Session.Path = v; return nil }},
	{"PAGE_SIZE", func(c *Config, v string) error { return setInt(&c.List.PageSize, v) }},
	{"SORT_BY", func(c *Config, v string) error { c.List.SortBy = v; return nil }},
	{"ORDER", func(c *Config, v string) error { c.List.Order = v; return nil }},
	{"FORMAT", func(c *Config, v string) error { c.Output.Format = v; return nil }},
	{"OUT", func(c *Config, v string) error { c.Output.Out = v; return nil }},
	{"NO_COLOR", func(c *Config, v string) error { return setBool(&c.Output.NoColor, v) }},
	{"DEBOUNCE", func(c *Config, v string) error { return setDuration(&c.Runtime.Debounce, v) }},
	{"RECENT_LIMIT", func(c *Config, v string) error { return setInt(&c.Runtime.RecentLimit, v) }},
	{"VERBOSE", func(c *Config, v string) error { return setBool(&c.Runtime.Verbose, v) }},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		raw, ok := lookup(EnvPrefix + b.key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		if err := b.apply(cfg, strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, b.key, err)
		}
	}
	return nil
}

func setDuration(dst *time.Duration, raw string) error {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func setInt(dst *int, raw string) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setBool(dst *bool, raw string) error {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
