// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// HTTPTransport implements LogTransport against the bytelog REST API.
type HTTPTransport struct {
	base   func() string
	client *http.Client
}

// NewHTTPTransport constructs a new HTTPTransport using the provided base URL source.
func NewHTTPTransport(base func() string) *HTTPTransport {
	return &HTTPTransport{base: base, client: http.DefaultClient}
}

func (t *HTTPTransport) do(req *http.Request) (*http.Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&body)
		if body.Error != "" {
			return nil, errors.Errorf("%s: %s", resp.Status, body.Error)
		}
		return nil, errors.Errorf("http error: %s", resp.Status)
	}
	return resp, nil
}

// Append posts payload to the log with the given offset hint.
func (t *HTTPTransport) Append(ctx context.Context, payload []byte, offset int64) (AppendResult, error) {
	url := fmt.Sprintf("%s/v1/log/append?offset=%d", t.base(), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return AppendResult{}, err
	}
	resp, err := t.do(req)
	if err != nil {
		return AppendResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	var out struct {
		Written int64 `json:"written"`
		Size    int64 `json:"size"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return AppendResult{}, err
	}
	return AppendResult{Written: out.Written, Size: out.Size}, nil
}

// Fetch reads at most length bytes starting at offset. An empty result
// means the offset is at or past the end of the log.
func (t *HTTPTransport) Fetch(ctx context.Context, offset, length int64) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/log/fetch?offset=%d&length=%d", t.base(), offset, length)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// Stats fetches the log stats snapshot.
func (t *HTTPTransport) Stats(ctx context.Context) (Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.base()+"/v1/log/stats", nil)
	if err != nil {
		return Stats{}, err
	}
	resp, err := t.do(req)
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	var out struct {
		SizeBytes    int64  `json:"size_bytes"`
		Chunks       int    `json:"chunks"`
		Appends      uint64 `json:"appends"`
		LastAppendMs int64  `json:"last_append_ms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Stats{}, err
	}
	return Stats{SizeBytes: out.SizeBytes, Chunks: out.Chunks, Appends: out.Appends, LastAppendMs: out.LastAppendMs}, nil
}

// Chunks lists the chunk layout.
func (t *HTTPTransport) Chunks(ctx context.Context, from, limit int) ([]Chunk, error) {
	url := fmt.Sprintf("%s/v1/log/chunks?from=%d&limit=%d", t.base(), from, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var out struct {
		Chunks []struct {
			Index int   `json:"index"`
			Start int64 `json:"start"`
			Size  int64 `json:"size"`
		} `json:"chunks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	chunks := make([]Chunk, 0, len(out.Chunks))
	for _, c := range out.Chunks {
		chunks = append(chunks, Chunk{Index: c.Index, Start: c.Start, Size: c.Size})
	}
	return chunks, nil
}

// Tail subscribes to the SSE tail stream and invokes onEvent for each
// event. A negative offset tails from the current end of the log; a
// limit of 0 tails until ctx is cancelled or the stream ends.
func (t *HTTPTransport) Tail(ctx context.Context, offset int64, limit int, onEvent func(TailEvent) error) error {
	url := t.base() + "/v1/log/tail"
	if offset >= 0 {
		url = fmt.Sprintf("%s?offset=%d", url, offset)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := t.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	seen := 0
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), 4<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue // blank separators and keep-alive comments
		}
		var ev struct {
			Offset  int64  `json:"offset"`
			Payload []byte `json:"payload"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			return errors.Wrap(err, "decode tail event")
		}
		if err := onEvent(TailEvent{Offset: ev.Offset, Payload: ev.Payload}); err != nil {
			return err
		}
		seen++
		if limit > 0 && seen >= limit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Health checks the health endpoint.
func (t *HTTPTransport) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.base()+"/v1/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := t.do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
