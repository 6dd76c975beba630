package chunkstore

import (
	"bytes"
	"errors"
	"testing"
)

func TestAppendOrderAndTotal(t *testing.T) {
	s := New(Options{})
	payloads := [][]byte{[]byte("hello"), []byte("world!"), []byte("x")}
	want := int64(0)
	for _, p := range payloads {
		if err := s.Append(p); err != nil {
			t.Fatalf("append: %v", err)
		}
		want += int64(len(p))
	}
	if s.Size() != want {
		t.Fatalf("size: got %d want %d", s.Size(), want)
	}
	if s.Count() != len(payloads) {
		t.Fatalf("count: got %d want %d", s.Count(), len(payloads))
	}
	infos := s.Snapshot(0, 0)
	start := int64(0)
	for i, info := range infos {
		if info.Index != i || info.Start != start || info.Size != int64(len(payloads[i])) {
			t.Fatalf("snapshot[%d]: %+v", i, info)
		}
		start += info.Size
	}
}

func TestAppendEmptyRejected(t *testing.T) {
	s := New(Options{})
	if err := s.Append(nil); !errors.Is(err, ErrEmptyChunk) {
		t.Fatalf("expected ErrEmptyChunk, got %v", err)
	}
	if s.Size() != 0 {
		t.Fatalf("size changed: %d", s.Size())
	}
}

func TestAppendCopiesInput(t *testing.T) {
	s := New(Options{})
	p := []byte("abc")
	if err := s.Append(p); err != nil {
		t.Fatalf("append: %v", err)
	}
	p[0] = 'z' // caller's buffer stays the caller's

	var buf bytes.Buffer
	if _, err := s.ReadAt(&buf, 3, 0); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := buf.String(); got != "abc" {
		t.Fatalf("chunk aliased caller buffer: %q", got)
	}
}

func TestLocateBoundaries(t *testing.T) {
	s := New(Options{})
	if err := s.Append([]byte("hello")); err != nil { // [0,5)
		t.Fatalf("append: %v", err)
	}
	if err := s.Append([]byte("world!")); err != nil { // [5,11)
		t.Fatalf("append: %v", err)
	}

	cases := []struct {
		off   int64
		idx   int
		start int64
		ok    bool
	}{
		{0, 0, 0, true},
		{4, 0, 0, true},
		{5, 1, 5, true}, // first byte of the second chunk
		{10, 1, 5, true},
		{11, 0, 0, false}, // == total
		{100, 0, 0, false},
		{-1, 0, 0, false},
	}
	for _, c := range cases {
		idx, start, ok := s.Locate(c.off)
		if ok != c.ok || (ok && (idx != c.idx || start != c.start)) {
			t.Fatalf("locate(%d): got (%d,%d,%v) want (%d,%d,%v)",
				c.off, idx, start, ok, c.idx, c.start, c.ok)
		}
	}
}

func TestReadAtNeverSpansChunks(t *testing.T) {
	s := New(Options{})
	if err := s.Append([]byte("hello")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append([]byte("world!")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if s.Size() != 11 {
		t.Fatalf("size: %d", s.Size())
	}

	read := func(maxLen, off int64) string {
		var buf bytes.Buffer
		n, err := s.ReadAt(&buf, maxLen, off)
		if err != nil {
			t.Fatalf("readat(%d,%d): %v", maxLen, off, err)
		}
		if int64(buf.Len()) != n {
			t.Fatalf("readat(%d,%d): n=%d buf=%d", maxLen, off, n, buf.Len())
		}
		return buf.String()
	}

	if got := read(10, 0); got != "hello" { // bounded by first chunk
		t.Fatalf("fetch(10,0): %q", got)
	}
	if got := read(10, 5); got != "world!" {
		t.Fatalf("fetch(10,5): %q", got)
	}
	if got := read(3, 2); got != "llo" {
		t.Fatalf("fetch(3,2): %q", got)
	}
	if got := read(5, 11); got != "" { // past end: empty, success
		t.Fatalf("fetch(5,11): %q", got)
	}
	if got := read(0, 0); got != "" {
		t.Fatalf("fetch(0,0): %q", got)
	}
}

func TestBudgetLimits(t *testing.T) {
	s := New(Options{MaxChunkBytes: 4, MaxTotalBytes: 6})
	if err := s.Append([]byte("12345")); !errors.Is(err, ErrNoSpace) {
		t.Fatalf("oversized chunk: %v", err)
	}
	if err := s.Append([]byte("1234")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append([]byte("567")); !errors.Is(err, ErrNoSpace) {
		t.Fatalf("total budget: %v", err)
	}
	if s.Size() != 4 {
		t.Fatalf("failed append mutated store: %d", s.Size())
	}
	if err := s.Budget(3); !errors.Is(err, ErrNoSpace) {
		t.Fatalf("budget precheck: %v", err)
	}
	if err := s.Budget(2); err != nil {
		t.Fatalf("budget precheck within limits: %v", err)
	}
}

func TestClearResets(t *testing.T) {
	s := New(Options{})
	for i := 0; i < 3; i++ {
		if err := s.Append([]byte{byte(i + 1)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	s.Clear()
	if s.Size() != 0 || s.Count() != 0 {
		t.Fatalf("clear: size=%d count=%d", s.Size(), s.Count())
	}
	if _, _, ok := s.Locate(0); ok {
		t.Fatalf("locate after clear should miss")
	}
}
