package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// --- HTTP CLI tests ---

// startHTTPStub serves a canned bytelog API backed by an in-memory byte
// slice with a single chunk boundary at len(first).
func startHTTPStub(t *testing.T) (*httptest.Server, *stubState) {
	t.Helper()
	st := &stubState{first: []byte("hello"), second: []byte("world!")}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/v1/log/append", func(w http.ResponseWriter, r *http.Request) {
		b := new(bytes.Buffer)
		_, _ = b.ReadFrom(r.Body)
		st.appended = append(st.appended, b.Bytes()...)
		_ = json.NewEncoder(w).Encode(map[string]int64{
			"written": int64(b.Len()),
			"size":    st.size() + int64(len(st.appended)),
		})
	})
	mux.HandleFunc("/v1/log/fetch", func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		switch offset {
		case "0", "":
			_, _ = w.Write(st.first)
		case "5":
			_, _ = w.Write(st.second)
		default:
			// past the end
		}
	})
	mux.HandleFunc("/v1/log/stats", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"size_bytes": st.size(), "chunks": 2, "appends": 2, "last_append_ms": 42,
		})
	})
	mux.HandleFunc("/v1/log/chunks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"chunks": []map[string]any{
				{"index": 0, "start": 0, "size": len(st.first)},
				{"index": 1, "start": len(st.first), "size": len(st.second)},
			},
			"size": st.size(),
		})
	})
	mux.HandleFunc("/v1/log/tail", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(": keep-alive\n\n"))
		ev, _ := json.Marshal(map[string]any{"offset": st.size(), "payload": []byte("fresh")})
		_, _ = w.Write([]byte("data: " + string(ev) + "\n\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, st
}

type stubState struct {
	first    []byte
	second   []byte
	appended []byte
}

func (s *stubState) size() int64 { return int64(len(s.first) + len(s.second)) }

func TestAppendCommand(t *testing.T) {
	srv, st := startHTTPStub(t)
	cmd := newLogAppendCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--data", "hi"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if string(st.appended) != "hi" {
		t.Fatalf("appended: %q", st.appended)
	}
	if !strings.Contains(buf.String(), `"written":2`) {
		t.Fatalf("expected written count in output, got: %s", buf.String())
	}
}

func TestFetchCommandRaw(t *testing.T) {
	srv, _ := startHTTPStub(t)
	cmd := newLogFetchCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--offset", "0", "--raw"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	// One fetch returns one chunk only.
	if buf.String() != "hello" {
		t.Fatalf("output: %q", buf.String())
	}
}

func TestFetchCommandDrain(t *testing.T) {
	srv, _ := startHTTPStub(t)
	cmd := newLogFetchCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--offset", "0", "--drain", "--raw"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if buf.String() != "helloworld!" {
		t.Fatalf("output: %q", buf.String())
	}
}

func TestStatsCommand(t *testing.T) {
	srv, _ := startHTTPStub(t)
	cmd := newLogStatsCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), `"size_bytes": 11`) {
		t.Fatalf("expected size in output, got: %s", buf.String())
	}
}

func TestChunksCommand(t *testing.T) {
	srv, _ := startHTTPStub(t)
	cmd := newLogChunksCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 chunk lines, got %d: %s", len(lines), buf.String())
	}
}

func TestTailCommandLimit(t *testing.T) {
	srv, _ := startHTTPStub(t)
	cmd := newLogTailCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--limit", "1"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), `"payload_text":"fresh"`) {
		t.Fatalf("expected decoded payload, got: %s", buf.String())
	}
}

func TestHealthCommand(t *testing.T) {
	srv, _ := startHTTPStub(t)
	cmd := newLogHealthCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), "status: ok") {
		t.Fatalf("expected status in output, got: %s", buf.String())
	}
}
