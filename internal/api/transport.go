package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"empadmin/internal/logger"
)

// RequestIDHeader carries a per-request id for correlating client and
// server logs.
const RequestIDHeader = "X-Request-ID"

// AccessTokenHeader is the header the API reads the credential from under
// the default scheme.
const AccessTokenHeader = "accesstoken"

// headerTokenTransport sends the raw token in a named header. The token is
// read from the source on every request.
type headerTokenTransport struct {
	source oauth2.TokenSource
	header string
	base   http.RoundTripper
}

func (t *headerTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.source.Token()
	if err != nil {
		closeBody(req)
		return nil, err
	}
	req2 := req.Clone(req.Context())
	req2.Header.Set(t.header, tok.AccessToken)
	return t.base.RoundTrip(req2)
}

type requestIDTransport struct {
	base http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.base.RoundTrip(req)
	}
	req2 := req.Clone(req.Context())
	req2.Header.Set(RequestIDHeader, uuid.NewString())
	return t.base.RoundTrip(req2)
}

// loggingRoundTripper emits one debug line per request and per response
// (including latency) when verbose logging is enabled.
type loggingRoundTripper struct {
	base http.RoundTripper
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	log := logger.FromContext(req.Context())
	id := req.Header.Get(RequestIDHeader)
	log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", id).
		Msg("api request")

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		log.Debug().Err(err).
			Str("request_id", id).
			Dur("latency", dur).
			Msg("api request failed")
		return resp, err
	}
	log.Debug().
		Int("status", resp.StatusCode).
		Str("request_id", id).
		Dur("latency", dur).
		Msg("api response")
	return resp, err
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
