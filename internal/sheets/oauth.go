package sheets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// Google requires the redirect URI of an installed app to be registered
// ahead of time, so the callback listener binds a fixed local address.
const (
	callbackAddr = "localhost:8917"
	callbackPath = "/oauth2/callback"
	authTimeout  = 5 * time.Minute
)

// OAuth2Config carries the client credentials for the interactive
// browser flow and the file the resulting token is cached in.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
}

func (c OAuth2Config) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://" + callbackAddr + callbackPath,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

type callbackResult struct {
	err  error
	code string
}

// AuthenticateOAuth2Interactive walks the user through the browser
// consent flow: it prints the authorization URL, waits for Google to
// redirect back to a local listener, and exchanges the returned code
// for a token. The token is cached in TokenFile when one is set.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	oauthConfig := config.oauthConfig()

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		switch {
		case query.Get("state") != state:
			results <- callbackResult{err: errors.New("authorization response state mismatch")}
			writeCallbackPage(w, "Something went wrong",
				"The authorization response did not match this ledgermint session. Run the command again.")
		case query.Get("code") == "":
			results <- callbackResult{err: errors.New("authorization response carried no code")}
			writeCallbackPage(w, "Authorization denied",
				"Google sent back no authorization code. Run the command again to retry.")
		default:
			results <- callbackResult{code: query.Get("code")}
			writeCallbackPage(w, "ledgermint is connected",
				"You can close this tab and head back to the terminal.")
		}
	})

	server := &http.Server{
		Addr:              callbackAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			results <- callbackResult{err: fmt.Errorf("callback listener failed: %w", serveErr)}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	slog.Info("Authorize ledgermint to write to Google Sheets", "url", authURL)
	slog.Info("Waiting for the browser to finish...")

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("no authorization response within %s", authTimeout)
	}
	if result.err != nil {
		return nil, result.err
	}

	token, err := oauthConfig.Exchange(ctx, result.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if cacheErr := cacheToken(config.TokenFile, token); cacheErr != nil {
			slog.Warn("Failed to cache token", "file", config.TokenFile, "error", cacheErr)
		}
	}

	return token, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func writeCallbackPage(w http.ResponseWriter, heading, detail string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>ledgermint</title></head>
<body style="font-family: sans-serif; margin: 4em auto; max-width: 32em;">
<h1>%s</h1>
<p>%s</p>
</body></html>`, heading, detail)
}

// LoadToken reads a cached token from disk.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode cached token: %w", err)
	}
	return &token, nil
}

func cacheToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// RefreshTokenIfNeeded swaps an expired token for a fresh one. Google
// omits the refresh token on renewal responses, so the original one is
// carried forward before caching.
func RefreshTokenIfNeeded(ctx context.Context, config OAuth2Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	fresh, err := config.oauthConfig().TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = token.RefreshToken
	}

	if config.TokenFile != "" {
		if cacheErr := cacheToken(config.TokenFile, fresh); cacheErr != nil {
			slog.Warn("Failed to cache refreshed token", "file", config.TokenFile, "error", cacheErr)
		}
	}

	return fresh, nil
}

// GetOrCreateToken returns the cached token, refreshing it when stale,
// and falls back to the interactive flow when no cache exists.
func GetOrCreateToken(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	if config.TokenFile != "" {
		if token, err := LoadToken(config.TokenFile); err == nil {
			return RefreshTokenIfNeeded(ctx, config, token)
		}
	}
	return AuthenticateOAuth2Interactive(ctx, config)
}
