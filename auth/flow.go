package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"
)

// LocalServerFlow runs the installed-app consent flow: it serves the OAuth
// redirect on a loopback port, opens the consent page and exchanges the
// returned code.
type LocalServerFlow struct {
	// Addr is the listen address, "127.0.0.1:0" when empty.
	Addr string
	// OpenBrowser opens the consent URL; the platform opener when nil.
	OpenBrowser func(url string) error
	// Out receives the consent URL; os.Stdout when nil.
	Out io.Writer
}

type callbackResult struct {
	code string
	err  error
}

func (f *LocalServerFlow) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	addr := f.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.Listen failed: %w", err)
	}

	state, err := newState()
	if err != nil {
		_ = ln.Close()
		return nil, err
	}

	c := *cfg
	c.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           &callbackHandler{state: state, results: results},
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Auth: callback server failed: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Auth: callback server shutdown failed: %v", err)
		}
	}()

	authURL := c.AuthCodeURL(state, oauth2.AccessTypeOffline)
	out := f.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "Open the following link in your browser to authorize MeetingMate:\n%s\n", authURL)

	open := f.OpenBrowser
	if open == nil {
		open = openBrowser
	}
	if err := open(authURL); err != nil {
		log.Printf("Auth: could not open browser automatically: %v", err)
	}

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := c.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("cfg.Exchange failed: %w", err)
		}
		return tok, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type callbackHandler struct {
	state   string
	results chan<- callbackResult
}

func (h *callbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if subtle.ConstantTimeCompare([]byte(q.Get("state")), []byte(h.state)) != 1 {
		http.Error(w, "Invalid or expired state parameter", http.StatusBadRequest)
		return
	}

	var res callbackResult
	switch {
	case q.Get("error") != "":
		res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		http.Error(w, "Authorization was not granted, you can close this window.", http.StatusForbidden)
	case q.Get("code") != "":
		res.code = q.Get("code")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "Authorization complete, you can close this window and return to MeetingMate.")
	default:
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	select {
	case h.results <- res:
	default:
	}
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return fmt.Errorf("unsupported platform")
	}
}
