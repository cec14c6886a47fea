package auth_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassamadnan/meetingmate/auth"
)

// visit plays the browser: it follows the consent URL straight to the
// redirect URI with the given query values.
func visit(t *testing.T, extra url.Values, tamperState bool) func(string) error {
	return func(consentURL string) error {
		u, err := url.Parse(consentURL)
		if err != nil {
			return err
		}
		q := u.Query()
		redirect, err := url.Parse(q.Get("redirect_uri"))
		if err != nil {
			return err
		}

		cb := url.Values{}
		cb.Set("state", q.Get("state"))
		if tamperState {
			cb.Set("state", "forged")
		}
		for k, v := range extra {
			cb[k] = v
		}
		redirect.RawQuery = cb.Encode()

		go func() {
			resp, err := http.Get(redirect.String())
			if err != nil {
				t.Logf("callback request failed: %v", err)
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()
		return nil
	}
}

func TestLocalServerFlow(t *testing.T) {
	srv, _ := newTokenServer(t, "exchanged")
	var out bytes.Buffer
	flow := &auth.LocalServerFlow{
		OpenBrowser: visit(t, url.Values{"code": {"auth-code"}}, false),
		Out:         &out,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tok, err := flow.Authorize(ctx, testConfig(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "exchanged", tok.AccessToken)
	assert.Contains(t, out.String(), "https://accounts.example.com/auth")
	assert.Contains(t, out.String(), "access_type=offline")
}

func TestLocalServerFlowDenied(t *testing.T) {
	srv, _ := newTokenServer(t, "unused")
	flow := &auth.LocalServerFlow{
		OpenBrowser: visit(t, url.Values{"error": {"access_denied"}}, false),
		Out:         io.Discard,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := flow.Authorize(ctx, testConfig(srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestLocalServerFlowRejectsForgedState(t *testing.T) {
	srv, _ := newTokenServer(t, "unused")
	flow := &auth.LocalServerFlow{
		OpenBrowser: visit(t, url.Values{"code": {"auth-code"}}, true),
		Out:         io.Discard,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := flow.Authorize(ctx, testConfig(srv.URL))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
