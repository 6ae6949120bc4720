package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"empadmin/internal/logger"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

type AuthScheme string

const (
	// AuthSchemeHeader sends the raw token in the "accesstoken" header.
	AuthSchemeHeader AuthScheme = "accesstoken"
	// AuthSchemeBearer sends "Authorization: Bearer <token>".
	AuthSchemeBearer AuthScheme = "bearer"
)

func ParseAuthScheme(s string) (AuthScheme, error) {
	switch AuthScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", AuthSchemeHeader:
		return AuthSchemeHeader, nil
	case AuthSchemeBearer:
		return AuthSchemeBearer, nil
	default:
		return "", fmt.Errorf("unknown auth scheme %q (want %s or %s)", s, AuthSchemeHeader, AuthSchemeBearer)
	}
}

// Client talks to the employee REST API. It is safe for concurrent use.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	tokens         requiredToken
	group          singleflight.Group
	writes         atomic.Uint64
	cooldown       *Cooldown
	onUnauthorized func(context.Context)
}

type options struct {
	verbose        bool
	scheme         AuthScheme
	transport      http.RoundTripper
	timeout        time.Duration
	onUnauthorized func(context.Context)
	cooldown       *Cooldown
}

type Option func(*options)

// WithVerbose logs every request and response at debug level.
func WithVerbose(enabled bool) Option {
	return func(o *options) {
		o.verbose = enabled
	}
}

func WithAuthScheme(scheme AuthScheme) Option {
	return func(o *options) {
		o.scheme = scheme
	}
}

// WithTransport replaces http.DefaultTransport as the innermost transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithUnauthorizedHandler registers fn to run after every 401 response.
func WithUnauthorizedHandler(fn func(context.Context)) Option {
	return func(o *options) {
		o.onUnauthorized = fn
	}
}

func WithCooldown(c *Cooldown) Option {
	return func(o *options) {
		o.cooldown = c
	}
}

// NewClient builds a client rooted at baseURL. tokens is consulted on every
// request; a nil source makes every call fail with ErrNoAccessToken.
func NewClient(baseURL string, tokens oauth2.TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("api client: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api client: base url must be http(s), got %q", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	o := &options{scheme: AuthSchemeHeader}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.cooldown == nil {
		o.cooldown = NewCooldown()
	}

	required := requiredToken{src: tokens}

	transport := o.transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if o.verbose {
		transport = &loggingRoundTripper{base: transport}
	}
	transport = &requestIDTransport{base: transport}
	switch o.scheme {
	case AuthSchemeBearer:
		transport = &oauth2.Transport{Source: required, Base: transport}
	case AuthSchemeHeader, "":
		transport = &headerTokenTransport{source: required, header: AccessTokenHeader, base: transport}
	default:
		return nil, fmt.Errorf("api client: unknown auth scheme %q", o.scheme)
	}

	return &Client{
		baseURL:        u,
		http:           &http.Client{Transport: transport, Timeout: o.timeout},
		tokens:         required,
		cooldown:       o.cooldown,
		onUnauthorized: o.onUnauthorized,
	}, nil
}

// CheckToken fails fast with ErrNoAccessToken when no credential is
// available. It never touches the network.
func (c *Client) CheckToken() error {
	_, err := c.tokens.Token()
	return err
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimPrefix(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

type response struct {
	status int
	body   []byte
}

// get issues a GET. Identical concurrent GETs share one round trip; a caller
// whose ctx ends stops waiting without cancelling the shared call. A GET
// started after a write never joins one started before it.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.endpoint(path, query)
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	key := strconv.FormatUint(c.writes.Load(), 10) + " " + target
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.send(context.WithoutCancel(ctx), http.MethodGet, target, nil, "")
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.FromContext(ctx).Debug().Str("url", target).Msg("shared in-flight request")
		}
		return res.Val.(*response).body, nil
	}
}

// getOwn issues a GET that belongs to the caller alone: it is never shared
// and cancelling ctx aborts it on the wire.
func (c *Client) getOwn(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	res, err := c.send(ctx, http.MethodGet, c.endpoint(path, query), nil, "")
	if err != nil {
		return nil, err
	}
	return res.body, nil
}

// mutate issues a write and enforces the "success": true contract.
func (c *Client) mutate(ctx context.Context, method, path string, body []byte, contentType string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	res, err := c.send(ctx, method, c.endpoint(path, nil), body, contentType)
	if err != nil {
		return err
	}
	c.writes.Add(1)
	return checkSuccess(res.status, res.body)
}

// ready fails fast on a missing credential, then waits out any cooldown.
func (c *Client) ready(ctx context.Context) error {
	if err := c.CheckToken(); err != nil {
		return err
	}
	return c.cooldown.Wait(ctx)
}

func (c *Client) send(ctx context.Context, method, target string, body []byte, contentType string) (*response, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, ErrNoAccessToken) {
			return nil, ErrNoAccessToken
		}
		return nil, err
	}
	defer resp.Body.Close()
	c.cooldown.Observe(resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errorFromResponse(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		logger.FromContext(ctx).Debug().
			Int("status", apiErr.Status).
			Str("message", apiErr.Message).
			Msg("api error response")
		return nil, apiErr
	}
	return &response{status: resp.StatusCode, body: data}, nil
}
