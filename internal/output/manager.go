package output

import (
	"errors"
	"fmt"
	"sync"

	"empadmin/internal/logger"
	"empadmin/internal/store"
)

// Sink defines a destination for command output.
type Sink interface {
	Write(v any) error
	Close() error
}

// Manager coordinates writing events to multiple sinks. It is safe for
// concurrent use; sinks see one call at a time.
type Manager struct {
	mu    sync.Mutex
	sinks []Sink
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	if s == nil {
		return fmt.Errorf("sink must not be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, s)
	return nil
}

func (m *Manager) Write(v any) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(v); err != nil {
			errs = append(errs, fmt.Errorf("write %T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors writing to sinks: %w", errors.Join(errs...))
	}
	return nil
}

// Notify implements store.Notifier. Toasts have no caller to report a sink
// failure to, so write errors are logged.
func (m *Manager) Notify(n store.Notification) {
	if err := m.Write(NotificationEvent(n)); err != nil {
		l := logger.Global()
		l.Warn().Err(err).Str("op", n.Op).Msg("failed to write notification")
	}
}

func (m *Manager) Close() error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sinks: %w", errors.Join(errs...))
	}
	return nil
}
