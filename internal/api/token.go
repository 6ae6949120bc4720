package api

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"empadmin/internal/session"
)

// TokenEnv overrides the persisted session token when set.
const TokenEnv = "EMPADMIN_TOKEN"

type TokenOrigin string

const (
	TokenOriginExplicit TokenOrigin = "explicit"
	TokenOriginEnv      TokenOrigin = "env:" + TokenEnv
	TokenOriginSession  TokenOrigin = "session"
)

// ResolveTokenSource picks the credential source for a client.
//
// Precedence:
//  1. provided (if non-empty)
//  2. EMPADMIN_TOKEN env var
//  3. the persisted session, read on every request
//
// It never prints the token.
func ResolveTokenSource(provided string, persisted oauth2.TokenSource) (oauth2.TokenSource, TokenOrigin) {
	if tok := strings.TrimSpace(provided); tok != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok}), TokenOriginExplicit
	}
	if env := strings.TrimSpace(os.Getenv(TokenEnv)); env != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: env}), TokenOriginEnv
	}
	return persisted, TokenOriginSession
}

// requiredToken turns a missing or empty credential into ErrNoAccessToken.
type requiredToken struct {
	src oauth2.TokenSource
}

func (r requiredToken) Token() (*oauth2.Token, error) {
	if r.src == nil {
		return nil, ErrNoAccessToken
	}
	tok, err := r.src.Token()
	if err != nil {
		if errors.Is(err, session.ErrNoToken) {
			return nil, ErrNoAccessToken
		}
		return nil, fmt.Errorf("read access token: %w", err)
	}
	if tok == nil || strings.TrimSpace(tok.AccessToken) == "" {
		return nil, ErrNoAccessToken
	}
	return tok, nil
}
