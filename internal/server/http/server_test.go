package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/bytelog/internal/config"
	"github.com/rzbill/bytelog/internal/runtime"
	logpkg "github.com/rzbill/bytelog/pkg/log"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { rt.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	return New(rt, logger)
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id")
	}
}

func TestAppendAndFetch(t *testing.T) {
	s := newTestServer(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/log/append?offset=0", strings.NewReader(body))
		w := httptest.NewRecorder()
		s.srv.Handler.ServeHTTP(w, req)
		return w
	}
	if w := post("hello"); w.Code != http.StatusOK {
		t.Fatalf("append hello: %d %s", w.Code, w.Body.String())
	}
	w := post("world!")
	if w.Code != http.StatusOK {
		t.Fatalf("append world!: %d", w.Code)
	}
	var resp struct {
		Written int64 `json:"written"`
		Size    int64 `json:"size"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Written != 6 || resp.Size != 11 {
		t.Fatalf("append resp: %+v", resp)
	}

	fetch := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/log/fetch?"+query, nil)
		w := httptest.NewRecorder()
		s.srv.Handler.ServeHTTP(w, req)
		return w
	}
	// Reads stop at the chunk boundary.
	if w := fetch("offset=0&length=10"); w.Body.String() != "hello" {
		t.Fatalf("fetch(10,0): %q", w.Body.String())
	}
	if w := fetch("offset=5&length=10"); w.Body.String() != "world!" {
		t.Fatalf("fetch(10,5): %q", w.Body.String())
	}
	if w := fetch("offset=2&length=3"); w.Body.String() != "llo" {
		t.Fatalf("fetch(3,2): %q", w.Body.String())
	}
	// Past-the-end fetch is an empty success.
	w = fetch("offset=11&length=5")
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("fetch(5,11): %d %q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Log-Count"); got != "0" {
		t.Fatalf("count header: %q", got)
	}
}

func TestAppendRejectsNegativeOffset(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/log/append?offset=-1", strings.NewReader("x"))
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestAppendEmptyBodyIsTransferFault(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/log/append", strings.NewReader(""))
	req.ContentLength = 4 // announced length the body cannot deliver
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: %d %s", w.Code, w.Body.String())
	}
}

func TestBudgetExhaustionIsInsufficientStorage(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Limits.MaxChunkBytes = 4
	cfg.Limits.MaxTotalBytes = 4
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	defer rt.Close()
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	s := New(rt, logger)
	req := httptest.NewRequest(http.MethodPost, "/v1/log/append", strings.NewReader("toolong"))
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusInsufficientStorage {
		t.Fatalf("status: %d %s", w.Code, w.Body.String())
	}
}

func TestTailStreamsNewAppends(t *testing.T) {
	rt, err := runtime.Open(runtime.Options{Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	defer rt.Close()
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	s := New(rt, logger)
	srv := httptest.NewServer(s.srv.Handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/log/tail", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %q", ct)
	}

	// Append after the subscription is established.
	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = rt.Log().WriteBytes(context.Background(), []byte("fresh"), 0)
	}()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev struct {
			Offset  int64  `json:"offset"`
			Payload []byte `json:"payload"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if ev.Offset != 0 || string(ev.Payload) != "fresh" {
			t.Fatalf("event: offset=%d payload=%q", ev.Offset, ev.Payload)
		}
		return
	}
	t.Fatalf("no tail event before deadline: %v", scanner.Err())
}

func TestStatsAndChunksHandlers(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/log/append", strings.NewReader("abc"))
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("append: %d", w.Code)
	}

	w = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/log/stats", nil))
	var stats struct {
		SizeBytes int64  `json:"size_bytes"`
		Chunks    int    `json:"chunks"`
		Appends   uint64 `json:"appends"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.SizeBytes != 3 || stats.Chunks != 1 || stats.Appends != 1 {
		t.Fatalf("stats: %+v", stats)
	}

	w = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/log/chunks", nil))
	var chunks struct {
		Chunks []struct {
			Index int   `json:"index"`
			Start int64 `json:"start"`
			Size  int64 `json:"size"`
		} `json:"chunks"`
		Size int64 `json:"size"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &chunks); err != nil {
		t.Fatalf("decode chunks: %v", err)
	}
	if chunks.Size != 3 || len(chunks.Chunks) != 1 || chunks.Chunks[0].Size != 3 {
		t.Fatalf("chunks: %+v", chunks)
	}
}
