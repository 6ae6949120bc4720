package store

import (
	"errors"
	"fmt"
	"time"

	"empadmin/internal/employee"
	"empadmin/internal/logger"
)

// UpdateFilter sets one filter field, returns to page 1 and schedules a
// refetch. A rejected value leaves the state unchanged.
func (s *Store) UpdateFilter(field string, value any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	f := s.state.Filter
	if err := f.Set(field, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state.Filter = f
	s.state.Pagination.CurrentPage = 1
	s.mu.Unlock()

	s.publish()
	s.scheduleFetch()
	return nil
}

// ClearFilters restores the default filters, returns to page 1 and
// schedules a refetch.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Filter = s.opts.filter
	s.state.Pagination.CurrentPage = 1
	s.mu.Unlock()

	s.publish()
	s.scheduleFetch()
}

// UpdatePagination moves to page with the given page size and schedules a
// refetch. Filters are untouched.
func (s *Store) UpdatePagination(page, pageSize int) error {
	if page < 1 {
		return fmt.Errorf("page must be >= 1 (got %d)", page)
	}
	if pageSize < 1 {
		return fmt.Errorf("page size must be >= 1 (got %d)", pageSize)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.state.Pagination.CurrentPage = page
	s.state.Pagination.PageSize = pageSize
	s.mu.Unlock()

	s.publish()
	s.scheduleFetch()
	return nil
}

// SearchWithDebounce applies term as the search filter once no further
// call has arrived for the debounce delay. Only the last term of a burst is
// fetched.
func (s *Store) SearchWithDebounce(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopDebounceLocked()
	s.searchGen++
	gen := s.searchGen

	s.pending.Add(1)
	s.debounce = time.AfterFunc(s.opts.debounce, func() {
		defer s.pending.Done()
		s.search(gen, term)
	})
}

// stopDebounceLocked cancels a pending search. A timer stopped before it
// fired never runs, so its pending slot is released here.
func (s *Store) stopDebounceLocked() {
	if s.debounce != nil && s.debounce.Stop() {
		s.pending.Done()
	}
	s.debounce = nil
}

func (s *Store) search(gen uint64, term string) {
	s.mu.Lock()
	if s.closed || gen != s.searchGen {
		s.mu.Unlock()
		return
	}
	s.debounce = nil
	s.state.Filter.Search = term
	s.state.Pagination.CurrentPage = 1
	s.mu.Unlock()

	s.publish()
	s.runFetch()
}

func (s *Store) scheduleFetch() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.pending.Done()
		s.runFetch()
	}()
}

func (s *Store) runFetch() {
	err := s.FetchEmployees(s.ctx)
	if err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrClosed) {
		logger.FromContext(s.ctx).Debug().Err(err).Msg("scheduled fetch failed")
	}
}

// Wait blocks until every scheduled fetch, including a pending debounced
// search, has completed.
func (s *Store) Wait() {
	s.pending.Wait()
}

// SetDraftField sets one field of the form draft.
func (s *Store) SetDraftField(field string, value any) error {
	s.mu.Lock()
	d := s.state.Draft
	if err := d.Set(field, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state.Draft = d
	s.mu.Unlock()
	s.publish()
	return nil
}

// SetDraftImage attaches a new image upload to the draft.
func (s *Store) SetDraftImage(up *employee.Upload) {
	s.mu.Lock()
	s.state.Draft.Image.Upload = up
	s.mu.Unlock()
	s.publish()
}

// EditDraft seeds the draft from an existing employee.
func (s *Store) EditDraft(e employee.Employee) {
	s.mu.Lock()
	s.state.Draft = employee.DraftFrom(e)
	s.mu.Unlock()
	s.publish()
}

func (s *Store) ResetDraft() {
	s.mu.Lock()
	s.state.Draft = employee.NewDraft()
	s.mu.Unlock()
	s.publish()
}

func (s *Store) Draft() employee.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Draft
}

// Reset cancels in-flight and pending work and restores the initial state.
// Subscribers stay registered.
func (s *Store) Reset() {
	s.mu.Lock()
	s.stopDebounceLocked()
	s.searchGen++
	s.listSeq++
	if s.listCancel != nil {
		s.listCancel()
		s.listCancel = nil
	}
	s.state = s.initialState()
	s.mu.Unlock()
	s.publish()
}

// Close cancels all work, waits for scheduled fetches to return and
// rejects further operations.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stopDebounceLocked()
	s.searchGen++
	if s.listCancel != nil {
		s.listCancel()
		s.listCancel = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.pending.Wait()
	return nil
}
