package api

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestCooldown(t *testing.T) {
	fixedNow := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	newCooldown := func() *Cooldown {
		c := NewCooldown()
		c.now = func() time.Time { return fixedNow }
		return c
	}
	respWith := func(status int, retryAfter string) *http.Response {
		resp := &http.Response{StatusCode: status, Header: make(http.Header)}
		if retryAfter != "" {
			resp.Header.Set("Retry-After", retryAfter)
		}
		return resp
	}

	t.Run("Wait without cooldown returns immediately", func(t *testing.T) {
		c := newCooldown()
		if err := c.Wait(context.Background()); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	})

	t.Run("Retry-After seconds on 429", func(t *testing.T) {
		c := newCooldown()
		c.Observe(respWith(http.StatusTooManyRequests, "10"))
		if want := fixedNow.Add(10 * time.Second); !c.Until().Equal(want) {
			t.Fatalf("expected cooldown until %v, got %v", want, c.Until())
		}
	})

	t.Run("Retry-After HTTP date on 503", func(t *testing.T) {
		c := newCooldown()
		c.Observe(respWith(http.StatusServiceUnavailable, fixedNow.Add(20*time.Second).Format(http.TimeFormat)))
		if want := fixedNow.Add(20 * time.Second); !c.Until().Equal(want) {
			t.Fatalf("expected cooldown until %v, got %v", want, c.Until())
		}
	})

	t.Run("ignored on other statuses", func(t *testing.T) {
		c := newCooldown()
		c.Observe(respWith(http.StatusOK, "10"))
		c.Observe(respWith(http.StatusInternalServerError, "10"))
		if !c.Until().IsZero() {
			t.Fatalf("expected no cooldown, got %v", c.Until())
		}
	})

	t.Run("capped at MaxCooldown", func(t *testing.T) {
		c := newCooldown()
		c.Observe(respWith(http.StatusTooManyRequests, "3600"))
		if want := fixedNow.Add(MaxCooldown); !c.Until().Equal(want) {
			t.Fatalf("expected cap %v, got %v", want, c.Until())
		}
	})

	t.Run("shorter Retry-After does not shrink the cooldown", func(t *testing.T) {
		c := newCooldown()
		c.Observe(respWith(http.StatusTooManyRequests, "30"))
		c.Observe(respWith(http.StatusTooManyRequests, "5"))
		if want := fixedNow.Add(30 * time.Second); !c.Until().Equal(want) {
			t.Fatalf("expected %v, got %v", want, c.Until())
		}
	})

	t.Run("garbage Retry-After ignored", func(t *testing.T) {
		c := newCooldown()
		c.Observe(respWith(http.StatusTooManyRequests, "soon"))
		if !c.Until().IsZero() {
			t.Fatalf("expected no cooldown, got %v", c.Until())
		}
	})

	t.Run("Wait honours context", func(t *testing.T) {
		c := newCooldown()
		c.Observe(respWith(http.StatusTooManyRequests, "30"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := c.Wait(ctx); err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("nil cooldown is a no-op", func(t *testing.T) {
		var c *Cooldown
		c.Observe(respWith(http.StatusTooManyRequests, "10"))
		if err := c.Wait(context.Background()); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	})
}
