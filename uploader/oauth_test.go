package uploader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func tokenServer(t *testing.T, access string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","refresh_token":"refresh-1","expires_in":3600}`, access)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeSecrets(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	path := filepath.Join(dir, "client_secrets.json")
	body := fmt.Sprintf(`{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"%s/auth","token_uri":%q,"redirect_uris":["http://localhost"]}}`, tokenURL, tokenURL+"/token")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAuthenticatorLoopbackFlow(t *testing.T) {
	dir := t.TempDir()
	srv := tokenServer(t, "access-1")
	auth := NewAuthenticator(writeSecrets(t, dir, srv.URL), filepath.Join(dir, "token.json"))

	prompted := 0
	auth.Prompt = func(authURL string) {
		prompted++
		u, err := url.Parse(authURL)
		if err != nil {
			t.Errorf("bad auth URL: %v", err)
			return
		}
		q := u.Query()
		if q.Get("access_type") != "offline" {
			t.Errorf("auth URL missing offline access: %s", authURL)
		}
		resp, err := http.Get(q.Get("redirect_uri") + "?code=abc&state=" + url.QueryEscape(q.Get("state")))
		if err != nil {
			t.Errorf("redirect failed: %v", err)
			return
		}
		resp.Body.Close()
	}

	if _, err := auth.Client(context.Background()); err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if prompted != 1 {
		t.Fatalf("prompted %d times; want 1", prompted)
	}
	tok, err := auth.Store.Load()
	if err != nil || tok.AccessToken != "access-1" {
		t.Fatalf("stored token = %+v, %v", tok, err)
	}

	auth.Prompt = func(string) { t.Error("should reuse the stored token") }
	if _, err := auth.Client(context.Background()); err != nil {
		t.Fatalf("second Client failed: %v", err)
	}
}

func TestAuthenticatorRefreshesStoredToken(t *testing.T) {
	dir := t.TempDir()
	srv := tokenServer(t, "access-2")
	auth := NewAuthenticator(writeSecrets(t, dir, srv.URL), filepath.Join(dir, "token.json"))
	auth.Prompt = func(string) { t.Error("refreshable token should not prompt") }

	expired := &oauth2.Token{AccessToken: "old", RefreshToken: "refresh-1", TokenType: "Bearer", Expiry: time.Now().Add(-time.Hour)}
	if err := auth.Store.Save(expired); err != nil {
		t.Fatal(err)
	}

	if _, err := auth.Client(context.Background()); err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	tok, err := auth.Store.Load()
	if err != nil || tok.AccessToken != "access-2" {
		t.Fatalf("refreshed token not saved: %+v, %v", tok, err)
	}
}

func TestAuthenticatorMissingSecrets(t *testing.T) {
	auth := NewAuthenticator(filepath.Join(t.TempDir(), "missing.json"), "token.json")
	if _, err := auth.Client(context.Background()); !errors.Is(err, ErrNoClientSecrets) {
		t.Fatalf("err = %v; want ErrNoClientSecrets", err)
	}
}

func TestAuthenticatorStateMismatch(t *testing.T) {
	dir := t.TempDir()
	srv := tokenServer(t, "access-1")
	auth := NewAuthenticator(writeSecrets(t, dir, srv.URL), filepath.Join(dir, "token.json"))
	auth.Prompt = func(authURL string) {
		u, _ := url.Parse(authURL)
		resp, err := http.Get(u.Query().Get("redirect_uri") + "?code=abc&state=forged")
		if err == nil {
			resp.Body.Close()
		}
	}
	if _, err := auth.Client(context.Background()); err == nil {
		t.Fatal("expected state mismatch error")
	}
}
