package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MaxCooldown bounds how long a single Retry-After can hold requests back.
const MaxCooldown = time.Minute

// Cooldown holds new requests back after the server answered 429 or 503
// with a Retry-After header. The failing request is not retried.
type Cooldown struct {
	mu    sync.Mutex
	until time.Time
	now   func() time.Time
}

func NewCooldown() *Cooldown {
	return &Cooldown{now: time.Now}
}

// Until returns the end of the current cooldown, or the zero time.
func (c *Cooldown) Until() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.until
}

// Wait blocks until the cooldown has elapsed or ctx is done.
func (c *Cooldown) Wait(ctx context.Context) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	wait := c.until.Sub(c.now())
	c.mu.Unlock()
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Observe extends the cooldown from resp's Retry-After header.
func (c *Cooldown) Observe(resp *http.Response) {
	if c == nil || resp == nil {
		return
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	d, ok := retryAfter(resp.Header.Get("Retry-After"), now)
	if !ok || d <= 0 {
		return
	}
	if d > MaxCooldown {
		d = MaxCooldown
	}
	if until := now.Add(d); until.After(c.until) {
		c.until = until
	}
}

// retryAfter accepts both delay-seconds and HTTP-date forms.
func retryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		return at.Sub(now), true
	}
	return 0, false
}
