package destination

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/flicker-logs/flicker/internal/config"
	"github.com/flicker-logs/flicker/internal/entry"
)

// elasticsearchDestination ships batches through the Bulk API's NDJSON
// wire format. Grounded on
// original_source/src/destinations/elasticsearch.rs.
type elasticsearchDestination struct {
	client *elasticsearch.Client
	index  string
}

type bulkIndexAction struct {
	Index bulkIndexTarget `json:"index"`
}

type bulkIndexTarget struct {
	Index string `json:"_index"`
}

type bulkDocument struct {
	Timestamp string `json:"@timestamp"`
	Path      string `json:"path"`
	Message   string `json:"message"`
}

func newElasticsearch(cfg config.DestinationConfig) (Destination, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("elasticsearch destination requires a url")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("elasticsearch destination requires an index")
	}

	url := strings.TrimRight(cfg.URL, "/")

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Transport: cleanhttp.DefaultPooledTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("constructing elasticsearch client: %w", err)
	}

	return &elasticsearchDestination{client: client, index: cfg.Index}, nil
}

func (e *elasticsearchDestination) buildBulkBody(entries []entry.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	now := time.Now().UTC().Format(time.RFC3339)

	for _, item := range entries {
		action := bulkIndexAction{Index: bulkIndexTarget{Index: e.index}}
		actionLine, err := json.Marshal(action)
		if err != nil {
			return nil, err
		}
		buf.Write(actionLine)
		buf.WriteByte('\n')

		doc := bulkDocument{Timestamp: now, Path: item.Path, Message: item.Line}
		docLine, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

func (e *elasticsearchDestination) SendBatch(ctx context.Context, entries []entry.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	body, err := e.buildBulkBody(entries)
	if err != nil {
		return fmt.Errorf("building bulk body: %w", err)
	}

	res, err := e.client.Bulk(bytes.NewReader(body), e.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sending bulk request: %w", err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading bulk response: %w", err)
	}

	if res.IsError() {
		return fmt.Errorf("elasticsearch http %d: %s", res.StatusCode, respBody)
	}

	var parsed struct {
		Errors bool `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("parsing bulk response: %w", err)
	}
	if parsed.Errors {
		return fmt.Errorf("elasticsearch bulk request contained errors: %s", respBody)
	}

	return nil
}
