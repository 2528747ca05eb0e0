package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// ErrNoClientSecrets means uploads cannot be authorized
var ErrNoClientSecrets = errors.New("client secrets file not found")

// TokenStore persists an OAuth token as JSON
type TokenStore struct {
	Path string
}

// Load reads the stored token
func (s TokenStore) Load() (*oauth2.Token, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &tok, nil
}

// Save writes the token with owner-only permissions
func (s TokenStore) Save(tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token dir: %w", err)
		}
	}
	if err := os.WriteFile(s.Path, b, 0o600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Authenticator produces an authorized client for uploads
type Authenticator struct {
	SecretsFile string
	Store       TokenStore
	// Prompt shows the consent URL to the user
	Prompt func(authURL string)
}

// NewAuthenticator creates an authenticator that logs the consent URL
func NewAuthenticator(secretsFile, tokenFile string) *Authenticator {
	return &Authenticator{
		SecretsFile: secretsFile,
		Store:       TokenStore{Path: tokenFile},
		Prompt: func(authURL string) {
			log.Printf("🔑 Open this URL to authorize uploads:\n%s", authURL)
		},
	}
}

// Client returns an HTTP client with a valid token. A stored token is
// refreshed when possible; otherwise the loopback consent flow runs once.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	b, err := os.ReadFile(a.SecretsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoClientSecrets
		}
		return nil, fmt.Errorf("unable to read client secrets: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secrets: %w", err)
	}

	if stored, err := a.Store.Load(); err == nil {
		ts := cfg.TokenSource(ctx, stored)
		fresh, err := ts.Token()
		if err == nil {
			if fresh.AccessToken != stored.AccessToken {
				if err := a.Store.Save(fresh); err != nil {
					log.Printf("⚠️  %v", err)
				}
			}
			return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(fresh, ts)), nil
		}
		log.Printf("⚠️  Stored token could not be refreshed: %v", err)
	}

	tok, err := a.authorize(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := a.Store.Save(tok); err != nil {
		return nil, err
	}
	log.Printf("✅ Token saved to %s", a.Store.Path)
	return cfg.Client(ctx, tok), nil
}

type authResult struct {
	code string
	err  error
}

// authorize runs the consent flow against a loopback redirect
func (a *Authenticator) authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to open loopback listener: %w", err)
	}
	cfg.RedirectURL = "http://" + listener.Addr().String() + "/"
	state := uuid.NewString()

	results := make(chan authResult, 1)
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res authResult
		switch {
		case q.Get("state") != state:
			res.err = errors.New("oauth state mismatch")
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("authorization code missing")
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})}
	go server.Serve(listener)
	defer server.Close()

	a.Prompt(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := cfg.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		return tok, nil
	}
}
