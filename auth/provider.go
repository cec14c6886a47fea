// Package auth is the Credential Provider: it loads the cached OAuth token,
// runs the consent flow when there is none, refreshes on expiry and writes
// refreshed tokens back to disk.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// AuthError reports that no usable credential could be obtained.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("authentication failed: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// Authorizer obtains a fresh token from the user.
type Authorizer interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

// Provider hands out authorized HTTP clients backed by a file token cache.
type Provider struct {
	cfg        *oauth2.Config
	tokenPath  string
	authorizer Authorizer
}

// NewProvider reads the OAuth client secret file and returns a Provider
// requesting scopes.
func NewProvider(credentialsFile, tokenFile string, authorizer Authorizer, scopes ...string) (*Provider, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("unable to read client secret file: %w", err)}
	}
	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("unable to parse client secret file to config: %w", err)}
	}
	return NewProviderFromConfig(cfg, tokenFile, authorizer), nil
}

// NewProviderFromConfig returns a Provider for an already built config.
func NewProviderFromConfig(cfg *oauth2.Config, tokenFile string, authorizer Authorizer) *Provider {
	if authorizer == nil {
		authorizer = &LocalServerFlow{}
	}
	return &Provider{cfg: cfg, tokenPath: tokenFile, authorizer: authorizer}
}

// TokenSource loads the cached token, or authorizes when there is none or it
// can no longer be refreshed. The returned source persists every refreshed
// token to the cache file.
func (p *Provider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cached, err := tokenFromFile(p.tokenPath)
	switch {
	case err == nil:
		ts := p.persisting(ctx, cached)
		if _, err := ts.Token(); err == nil {
			log.Printf("Auth: using cached token from %s", p.tokenPath)
			return ts, nil
		}
		log.Printf("Auth: cached token unusable, re-authorizing: %v", err)
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("Auth: no cached token at %s", p.tokenPath)
	default:
		log.Printf("Auth: could not read cached token: %v", err)
	}

	tok, err := p.authorizer.Authorize(ctx, p.cfg)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	if err := saveToken(p.tokenPath, tok); err != nil {
		log.Printf("Auth: unable to cache token: %v", err)
	}
	ts := p.persisting(ctx, tok)
	if _, err := ts.Token(); err != nil {
		return nil, err
	}
	return ts, nil
}

// Client returns an HTTP client that authorizes every request.
func (p *Provider) Client(ctx context.Context) (*http.Client, error) {
	ts, err := p.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

func (p *Provider) persisting(ctx context.Context, tok *oauth2.Token) *persistingTokenSource {
	return &persistingTokenSource{
		base: p.cfg.TokenSource(ctx, tok),
		path: p.tokenPath,
		last: tok.AccessToken,
	}
}

// persistingTokenSource writes the token back whenever the access token changes.
type persistingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	path string
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			log.Printf("Auth: unable to persist refreshed token: %v", err)
		} else {
			log.Printf("Auth: refreshed token saved to %s", s.path)
		}
	}
	return tok, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("json.NewDecoder.Decode failed: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("os.OpenFile failed: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("json.NewEncoder.Encode failed: %w", err)
	}
	return nil
}
