// Package store holds the client-side employee data store: the dashboard
// aggregate, the filtered and paginated employee list, the form draft and
// the request status shared by the views.
//
// A Store is built explicitly with New and owns all of that state. Views
// read snapshots and change state only through Store methods.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"empadmin/internal/api"
	"empadmin/internal/employee"
	"empadmin/internal/logger"
)

// ErrSuperseded is returned by a list fetch whose response was discarded
// because a newer fetch started before it completed.
var ErrSuperseded = errors.New("superseded by a newer fetch")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// API is the remote surface the store drives. *api.Client implements it.
type API interface {
	CheckToken() error
	DashboardSummary(ctx context.Context) (employee.Summary, error)
	RecentEmployees(ctx context.Context, limit int) ([]employee.Employee, error)
	DepartmentWise(ctx context.Context) ([]employee.DepartmentStat, error)
	TopPerformers(ctx context.Context) ([]employee.Employee, error)
	PerformanceStats(ctx context.Context) (employee.PerformanceStats, error)
	ListEmployees(ctx context.Context, q api.ListQuery) (api.Page, error)
	CreateEmployee(ctx context.Context, d employee.Draft) error
	UpdateEmployee(ctx context.Context, id string, d employee.Draft) error
	ArchiveEmployee(ctx context.Context, id string) error
}

type Store struct {
	api  API
	opts *options

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	inflight int
	closed   bool

	listSeq    uint64
	listCancel context.CancelFunc

	debounce  *time.Timer
	searchGen uint64

	// pending tracks fetches scheduled by filter, pagination and search
	// changes.
	pending sync.WaitGroup

	pubMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func New(client API, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("store: api client is nil")
	}
	o := defaultOptions()
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	ctx, cancel := context.WithCancel(o.baseCtx)
	s := &Store{
		api:    client,
		opts:   o,
		ctx:    ctx,
		cancel: cancel,
		subs:   map[int]func(State){},
	}
	s.state = s.initialState()
	return s, nil
}

func (s *Store) initialState() State {
	p := employee.DefaultPagination()
	p.PageSize = s.opts.pageSize
	return State{
		Employees:  []employee.Employee{},
		Filter:     s.opts.filter,
		Pagination: p,
		Draft:      employee.NewDraft(),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state.clone()
	st.Loading = s.inflight > 0
	return st
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs synchronously and must not call methods that change state.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.pubMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.pubMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.pubMu.Lock()
			delete(s.subs, id)
			s.pubMu.Unlock()
		})
	}
}

func (s *Store) publish() {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.subs {
		fn(snap)
	}
}

func (s *Store) notify(n Notification) {
	s.opts.notifier.Notify(n)
}

// begin marks a request as started and clears the previous error.
func (s *Store) beginLocked(status *Status) {
	s.inflight++
	s.state.Error = ""
	if status != nil {
		*status = StatusLoading
	}
}

func (s *Store) endLocked() {
	if s.inflight > 0 {
		s.inflight--
	}
}

// FetchDashboard loads the five dashboard sections concurrently and
// replaces the aggregate in one step. Any failure fails the whole fetch and
// discards the previous aggregate.
func (s *Store) FetchDashboard(ctx context.Context) error {
	ctx = logger.WithLogger(ctx, map[string]interface{}{"op": "dashboard"})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.beginLocked(&s.state.DashboardStatus)
	s.mu.Unlock()
	s.publish()

	d, err := s.loadDashboard(ctx)

	s.mu.Lock()
	s.endLocked()
	if err != nil {
		msg := errorMessage(err, MsgDashboardFailed)
		s.state.Dashboard = nil
		s.state.Error = msg
		s.state.DashboardStatus = StatusFailed
		s.mu.Unlock()
		logger.FromContext(ctx).Warn().Err(err).Msg("dashboard fetch failed")
		s.notify(Notification{Level: LevelError, Op: "dashboard", Message: msg})
		s.publish()
		return err
	}
	s.state.Dashboard = d
	s.state.DashboardStatus = StatusSuccess
	s.mu.Unlock()
	s.publish()
	return nil
}

func (s *Store) loadDashboard(ctx context.Context) (*employee.Dashboard, error) {
	if err := s.api.CheckToken(); err != nil {
		return nil, err
	}

	var d employee.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Summary, err = s.api.DashboardSummary(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.RecentEmployees, err = s.api.RecentEmployees(gctx, s.opts.recentLimit)
		return err
	})
	g.Go(func() (err error) {
		d.DepartmentStats, err = s.api.DepartmentWise(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TopPerformers, err = s.api.TopPerformers(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.PerformanceStats, err = s.api.PerformanceStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.RecentEmployees == nil {
		d.RecentEmployees = []employee.Employee{}
	}
	if d.TopPerformers == nil {
		d.TopPerformers = []employee.Employee{}
	}
	if d.DepartmentStats == nil {
		d.DepartmentStats = []employee.DepartmentStat{}
	}
	return &d, nil
}

// FetchEmployees loads the current page for the current filters. Each call
// supersedes any fetch still in flight: the older one is cancelled and its
// response, if it still arrives, is discarded with ErrSuperseded. On
// failure the previous list is kept.
func (s *Store) FetchEmployees(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.listSeq++
	seq := s.listSeq
	if s.listCancel != nil {
		s.listCancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	s.listCancel = cancel
	q := api.ListQuery{
		Page:   s.state.Pagination.CurrentPage,
		Limit:  s.state.Pagination.PageSize,
		Filter: s.state.Filter,
	}
	s.beginLocked(&s.state.ListStatus)
	s.mu.Unlock()
	s.publish()
	defer cancel()

	fctx = logger.WithLogger(fctx, map[string]interface{}{"op": "list", "seq": seq})
	page, err := s.api.ListEmployees(fctx, q)

	s.mu.Lock()
	s.endLocked()
	if seq != s.listSeq {
		s.mu.Unlock()
		logger.FromContext(fctx).Debug().Msg("discarding stale list response")
		s.publish()
		return ErrSuperseded
	}
	s.listCancel = nil
	if err != nil {
		msg := errorMessage(err, MsgListFailed)
		s.state.Error = msg
		s.state.ListStatus = StatusFailed
		s.mu.Unlock()
		logger.FromContext(fctx).Warn().Err(err).Msg("employee list fetch failed")
		s.notify(Notification{Level: LevelError, Op: "list", Message: msg})
		s.publish()
		return err
	}
	s.state.Employees = page.Employees
	s.state.Pagination.TotalEmployees = page.Total
	s.state.ListStatus = StatusSuccess
	s.mu.Unlock()
	s.publish()
	return nil
}

// CreateEmployee submits d as a new employee. On success the list is
// refetched and the draft is reset. It never returns an error: failures are
// recorded in State.Error and reported as false.
func (s *Store) CreateEmployee(ctx context.Context, d employee.Draft) bool {
	return s.mutate(ctx, "create", MsgCreateFailed, MsgCreated,
		func(ctx context.Context) error { return s.api.CreateEmployee(ctx, d) },
		s.ResetDraft)
}

// UpdateEmployee submits d for the employee with the given id. Multipart is
// used only when d carries a new image upload.
func (s *Store) UpdateEmployee(ctx context.Context, id string, d employee.Draft) bool {
	return s.mutate(ctx, "update", MsgUpdateFailed, MsgUpdated,
		func(ctx context.Context) error { return s.api.UpdateEmployee(ctx, id, d) },
		nil)
}

// ArchiveEmployee toggles the archived flag of one employee.
func (s *Store) ArchiveEmployee(ctx context.Context, id string) bool {
	return s.mutate(ctx, "archive", MsgArchiveFailed, MsgArchived,
		func(ctx context.Context) error { return s.api.ArchiveEmployee(ctx, id) },
		nil)
}

func (s *Store) mutate(ctx context.Context, op, fallback, success string, call func(context.Context) error, after func()) (ok bool) {
	ctx = logger.WithLogger(ctx, map[string]interface{}{"op": op})

	s.mu.Lock()
	if s.closed {
		s.state.Error = ErrClosed.Error()
		s.mu.Unlock()
		s.notify(Notification{Level: LevelError, Op: op, Message: ErrClosed.Error()})
		return false
	}
	s.beginLocked(nil)
	s.mu.Unlock()
	s.publish()

	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error().Interface("panic", r).Msg("mutation panicked")
			s.fail(op, fmt.Errorf("%v", r), fallback)
			ok = false
		}
	}()

	if err := call(ctx); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("mutation failed")
		s.fail(op, err, fallback)
		return false
	}

	s.notify(Notification{Level: LevelSuccess, Op: op, Message: success})
	if err := s.FetchEmployees(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		logger.FromContext(ctx).Debug().Err(err).Msg("refetch after mutation failed")
	}
	if after != nil {
		after()
	}

	s.mu.Lock()
	s.endLocked()
	s.mu.Unlock()
	s.publish()
	return true
}

func (s *Store) fail(op string, err error, fallback string) {
	msg := errorMessage(err, fallback)
	s.mu.Lock()
	s.endLocked()
	s.state.Error = msg
	s.mu.Unlock()
	s.notify(Notification{Level: LevelError, Op: op, Message: msg})
	s.publish()
}

// errorMessage picks the text shown for err: the server message, then the
// error's own text, then fallback.
func errorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	if api.IsBusinessFailure(err) {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
