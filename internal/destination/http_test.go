package destination

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flicker-logs/flicker/internal/config"
	"github.com/flicker-logs/flicker/internal/entry"
)

func TestHTTPMissingEndpoint(t *testing.T) {
	if _, err := newHTTP(config.DestinationConfig{Type: "http"}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}

func TestHTTPRequireAuthWithoutCredentials(t *testing.T) {
	_, err := newHTTP(config.DestinationConfig{
		Type:        "http",
		Endpoint:    "http://example.com",
		RequireAuth: true,
	})
	if err == nil {
		t.Fatal("expected construction to fail fast when require_auth is set with no credentials")
	}
}

func TestHTTPSendBatchEmpty(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	dest, err := newHTTP(config.DestinationConfig{Type: "http", Endpoint: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if err := dest.SendBatch(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Fatal("empty batch must not perform any I/O")
	}
}

func TestHTTPSendBatchPostsJSONArray(t *testing.T) {
	var gotBody []entry.LogEntry
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dest, err := newHTTP(config.DestinationConfig{
		Type:     "http",
		Endpoint: srv.URL,
		APIKey:   "secret-key",
	})
	if err != nil {
		t.Fatal(err)
	}

	entries := []entry.LogEntry{
		{Path: "/var/log/a.log", Line: "line one"},
		{Path: "/var/log/a.log", Line: "line two"},
	}
	if err := dest.SendBatch(context.Background(), entries); err != nil {
		t.Fatal(err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want Bearer secret-key", gotAuth)
	}
	if len(gotBody) != 2 || gotBody[0].Line != "line one" {
		t.Errorf("got body %+v", gotBody)
	}
}

func TestHTTPBearerTakesPriorityOverBasic(t *testing.T) {
	dest, err := newHTTP(config.DestinationConfig{
		Type:     "http",
		Endpoint: "http://example.com",
		APIKey:   "bearer-token",
		Basic:    &config.BasicAuth{Username: "u", Password: "p"},
	})
	if err != nil {
		t.Fatal(err)
	}
	h := dest.(*httpDestination)
	if h.authHeader != "Bearer bearer-token" {
		t.Errorf("authHeader = %q, want bearer to take priority", h.authHeader)
	}
}

func TestHTTPBasicAuthEncoding(t *testing.T) {
	dest, err := newHTTP(config.DestinationConfig{
		Type:     "http",
		Endpoint: "http://example.com",
		Basic:    &config.BasicAuth{Username: "alice", Password: "wonderland"},
	})
	if err != nil {
		t.Fatal(err)
	}
	h := dest.(*httpDestination)
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:wonderland"))
	if h.authHeader != want {
		t.Errorf("authHeader = %q, want %q", h.authHeader, want)
	}
}

func TestHTTPNon2xxFailsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	dest, err := newHTTP(config.DestinationConfig{Type: "http", Endpoint: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	err = dest.SendBatch(context.Background(), []entry.LogEntry{{Path: "p", Line: "l"}})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
