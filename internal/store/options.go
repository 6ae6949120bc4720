package store

import (
	"context"
	"time"

	"empadmin/internal/api"
	"empadmin/internal/employee"
)

// DefaultDebounce is the trailing delay applied to search input.
const DefaultDebounce = 500 * time.Millisecond

type options struct {
	debounce    time.Duration
	recentLimit int
	pageSize    int
	filter      employee.Filter
	notifier    Notifier
	baseCtx     context.Context
}

type Option func(*options)

func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.debounce = d
		}
	}
}

// WithRecentLimit sets how many recent hires the dashboard asks for.
func WithRecentLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.recentLimit = n
		}
	}
}

func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithDefaultFilter sets the filter state that ClearFilters and Reset
// return to.
func WithDefaultFilter(f employee.Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithContext sets the parent context of fetches the store schedules on its
// own (filter, pagination and search changes).
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.baseCtx = ctx
		}
	}
}

func defaultOptions() *options {
	return &options{
		debounce:    DefaultDebounce,
		recentLimit: api.DefaultRecentLimit,
		pageSize:    employee.DefaultPageSize,
		filter:      employee.DefaultFilter(),
		notifier:    discardNotifier{},
		baseCtx:     context.Background(),
	}
}
