package controllers

import (
	"context"
	"encoding/json"
	"net/http"
)

// sseSink formats tail events as Server-Sent Events.
type sseSink struct {
	w http.ResponseWriter
	r *http.Request
}

// Send JSON-encodes the event and writes it with the "data: " prefix
// followed by the blank line the SSE format requires.
func (s sseSink) Send(ev tailEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	_, err = s.w.Write([]byte("\n\n"))
	return err
}

// Comment writes an SSE comment line, used as a keep-alive.
func (s sseSink) Comment(text string) error {
	_, err := s.w.Write([]byte(": " + text + "\n\n"))
	return err
}

// Context returns the request context for cancellation.
func (s sseSink) Context() context.Context {
	return s.r.Context()
}

// Flush flushes the HTTP response writer if it supports flushing.
func (s sseSink) Flush() error {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
