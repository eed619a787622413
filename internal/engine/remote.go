package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/banshee-data/trackconsole/internal/httputil"
	"github.com/banshee-data/trackconsole/internal/tracks"
)

// Remote posts the request as JSON to an engine service and decodes the
// tracks document from a 200 response. The service must be able to read
// InputFile itself.
type Remote struct {
	URL    string
	Client httputil.HTTPClient
}

// Process sends one request. Cancelling ctx aborts it.
func (e Remote) Process(ctx context.Context, req Request) ([]tracks.Track, error) {
	if req.InputFile == "" {
		return nil, ErrNoInput
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode engine request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("engine %s: %w", e.URL, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("engine %s: %w", e.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxStderr))
		return nil, fmt.Errorf("engine %s: status %d: %s", e.URL, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	ts, err := tracks.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("engine %s: %w", e.URL, err)
	}
	return ts, nil
}
