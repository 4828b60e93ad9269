package destination

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/flicker-logs/flicker/internal/config"
	"github.com/flicker-logs/flicker/internal/entry"
)

// httpDestination POSTs batches as a JSON array to a fixed endpoint.
// Grounded on original_source/src/destinations/http.rs.
type httpDestination struct {
	client     *http.Client
	endpoint   string
	authHeader string // fully-formed "Bearer ..."/"Basic ..." value, or ""
}

func newHTTP(cfg config.DestinationConfig) (Destination, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("http destination requires an endpoint")
	}

	hasAuth := cfg.APIKey != "" || cfg.Basic != nil
	if cfg.RequireAuth && !hasAuth {
		return nil, fmt.Errorf("http destination requires auth, but no api_key or basic auth was configured")
	}

	var authHeader string
	switch {
	case cfg.APIKey != "":
		// Bearer takes priority over basic when both are configured.
		authHeader = "Bearer " + cfg.APIKey
	case cfg.Basic != nil:
		creds := cfg.Basic.Username + ":" + cfg.Basic.Password
		authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	}

	return &httpDestination{
		client:     cleanhttp.DefaultPooledClient(),
		endpoint:   cfg.Endpoint,
		authHeader: authHeader,
	}, nil
}

func (h *httpDestination) SendBatch(ctx context.Context, entries []entry.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling http batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.authHeader != "" {
		req.Header.Set("Authorization", h.authHeader)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting batch to %s: %w", h.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("http %d from %s: %s", resp.StatusCode, h.endpoint, respBody)
	}

	return nil
}
