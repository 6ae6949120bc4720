package cli

import (
	"context"
	"errors"
	"fmt"

	"empadmin/internal/api"
	"empadmin/internal/config"
	"empadmin/internal/employee"
	"empadmin/internal/logger"
	"empadmin/internal/output"
	"empadmin/internal/session"
	"empadmin/internal/store"

	"github.com/spf13/cobra"
)

// app is everything one command invocation works with.
type app struct {
	cfg         *config.Config
	session     *session.Store
	client      *api.Client
	tokenOrigin api.TokenOrigin
	out         *output.Manager
	store       *store.Store
}

type appOptions struct {
	filter employee.Filter
}

type appOption func(*appOptions)

// withFilter sets the filter the store starts from (and returns to on
// ClearFilters).
func withFilter(f employee.Filter) appOption {
	return func(o *appOptions) { o.filter = f }
}

func newApp(cmd *cobra.Command, c *config.Config, opts ...appOption) (*app, error) {
	o := appOptions{filter: defaultFilter(c)}
	for _, apply := range opts {
		apply(&o)
	}

	sess, err := session.New(c.Session.Path)
	if err != nil {
		return nil, usageError(err)
	}

	out := output.NewManager()
	if err := out.AddSink(output.NewConsoleSink(cmd.OutOrStdout(), c.Output.Format, c.Output.NoColor)); err != nil {
		return nil, err
	}
	if c.Output.Out != "" {
		fs, err := output.NewFileSink(c.Output.Out, "")
		if err != nil {
			return nil, usageError(err)
		}
		if err := out.AddSink(fs); err != nil {
			return nil, err
		}
	}

	scheme, err := api.ParseAuthScheme(c.API.AuthScheme)
	if err != nil {
		_ = out.Close()
		return nil, usageError(err)
	}
	tokens, origin := api.ResolveTokenSource(c.API.Token, sess)
	client, err := api.NewClient(c.API.BaseURL, tokens,
		api.WithAuthScheme(scheme),
		api.WithTimeout(c.API.Timeout),
		api.WithVerbose(c.Runtime.Verbose),
		api.WithUnauthorizedHandler(func(ctx context.Context) {
			onUnauthorized(ctx, sess, origin)
		}),
	)
	if err != nil {
		_ = out.Close()
		return nil, usageError(err)
	}

	st, err := store.New(client,
		store.WithDebounce(c.Runtime.Debounce),
		store.WithRecentLimit(c.Runtime.RecentLimit),
		store.WithPageSize(c.List.PageSize),
		store.WithDefaultFilter(o.filter),
		store.WithNotifier(out),
		store.WithContext(cmd.Context()),
	)
	if err != nil {
		_ = out.Close()
		return nil, err
	}

	logger.FromContext(cmd.Context()).Debug().
		Str("base_url", c.API.BaseURL).
		Str("auth_scheme", string(scheme)).
		Str("token_origin", string(origin)).
		Msg("client ready")

	return &app{
		cfg:         c,
		session:     sess,
		client:      client,
		tokenOrigin: origin,
		out:         out,
		store:       st,
	}, nil
}

// onUnauthorized drops the saved session after the server rejected it. A
// token passed for one invocation leaves the saved session alone.
func onUnauthorized(ctx context.Context, sess *session.Store, origin api.TokenOrigin) {
	l := logger.FromContext(ctx)
	if origin != api.TokenOriginSession {
		l.Warn().Str("token_origin", string(origin)).Msg("access token rejected")
		return
	}
	if err := sess.Clear(); err != nil {
		l.Error().Err(err).Msg("failed to clear session")
		return
	}
	l.Warn().Msg("access token rejected; session cleared, run empadmin login")
}

// Close stops the store and flushes every sink.
func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.out.Close())
}

// finish writes the lifecycle event for err and closes the app. The
// command's own error wins over a close error.
func (a *app) finish(err error) error {
	_ = a.out.Write(output.FinishedEvent(exitCode(err)))
	if cerr := a.Close(); cerr != nil && err == nil {
		return failure(fmt.Errorf("write output: %w", cerr))
	}
	return err
}

func defaultFilter(c *config.Config) employee.Filter {
	f := employee.DefaultFilter()
	f.SortBy = c.List.SortBy
	f.Order = c.List.Order
	return f
}
