package chunkstore

import (
	"errors"
	"io"
	"sync"
)

var (
	// ErrNoSpace is returned when appending would exceed the store's
	// configured memory budget. The store is left unchanged.
	ErrNoSpace = errors.New("chunkstore: memory budget exhausted")

	// ErrEmptyChunk is returned when an empty buffer is appended.
	ErrEmptyChunk = errors.New("chunkstore: chunk must be non-empty")
)

// chunk is one immutable buffer. It is never mutated or resized after it is
// linked into the sequence; it is released only by Clear.
type chunk struct {
	buf []byte
}

// Options bound the store's growth. Zero values mean unlimited.
type Options struct {
	// MaxChunkBytes caps the size of a single chunk.
	MaxChunkBytes int64
	// MaxTotalBytes caps the sum of all chunk sizes.
	MaxTotalBytes int64
}

// Store holds an ordered, append-only sequence of immutable chunks plus the
// running total of their sizes. The sequence and the total are guarded by a
// single readers-writer lock so neither is ever observed independently of
// the other.
type Store struct {
	opts Options

	mu     sync.RWMutex
	chunks []chunk
	total  int64
}

// New returns an empty Store.
func New(opts Options) *Store {
	return &Store{opts: opts}
}

// ChunkInfo describes one chunk's position in the logical concatenation.
type ChunkInfo struct {
	Index int   `json:"index"`
	Start int64 `json:"start"`
	Size  int64 `json:"size"`
}

// Budget reports whether a chunk of n bytes would fit under the configured
// limits right now. Append re-checks under the write lock; this exists so
// callers can reject oversized requests before staging them.
func (s *Store) Budget(n int64) error {
	if s.opts.MaxChunkBytes > 0 && n > s.opts.MaxChunkBytes {
		return ErrNoSpace
	}
	if s.opts.MaxTotalBytes > 0 {
		s.mu.RLock()
		total := s.total
		s.mu.RUnlock()
		if total+n > s.opts.MaxTotalBytes {
			return ErrNoSpace
		}
	}
	return nil
}

// Append copies p into a new chunk sized exactly to len(p) and links it at
// the tail, advancing the total. On any error the store is unchanged.
func (s *Store) Append(p []byte) error {
	if len(p) == 0 {
		return ErrEmptyChunk
	}
	n := int64(len(p))
	if s.opts.MaxChunkBytes > 0 && n > s.opts.MaxChunkBytes {
		return ErrNoSpace
	}

	// Copy outside the lock; linking is O(1) under exclusive access.
	buf := make([]byte, len(p))
	copy(buf, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.MaxTotalBytes > 0 && s.total+n > s.opts.MaxTotalBytes {
		return ErrNoSpace
	}
	s.chunks = append(s.chunks, chunk{buf: buf})
	s.total += n
	return nil
}

// Locate returns the index and start offset of the chunk whose
// [start, start+size) range covers off. ok is false iff off >= total.
// The scan is linear; chunks are create-once and the structure favors
// append throughput over read latency.
func (s *Store) Locate(off int64) (idx int, start int64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locateLocked(off)
}

func (s *Store) locateLocked(off int64) (int, int64, bool) {
	if off < 0 || off >= s.total {
		return 0, 0, false
	}
	pos := int64(0)
	for i := range s.chunks {
		next := pos + int64(len(s.chunks[i].buf))
		if off < next {
			return i, pos, true
		}
		pos = next
	}
	return 0, 0, false
}

// ReadAt copies up to maxLen bytes of the logical concatenation starting at
// absolute offset off into dst. The copy never crosses the boundary of the
// chunk containing off; callers continue at off+n. Locating the chunk and
// copying out happen in one shared-access critical section, so a read sees
// either the pre- or post-state of any concurrent append, never a torn one.
//
// Returns the bytes delivered to dst and dst's error, if any. off past the
// end or maxLen <= 0 yield (0, nil).
func (s *Store) ReadAt(dst io.Writer, maxLen, off int64) (int64, error) {
	if maxLen <= 0 {
		return 0, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, start, ok := s.locateLocked(off)
	if !ok {
		return 0, nil
	}
	buf := s.chunks[idx].buf
	avail := start + int64(len(buf)) - off
	toCopy := avail
	if maxLen < toCopy {
		toCopy = maxLen
	}
	lo := off - start
	n, err := dst.Write(buf[lo : lo+toCopy])
	return int64(n), err
}

// Size returns the current total of all chunk sizes.
func (s *Store) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Count returns the number of chunks.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Snapshot lists chunk metadata starting at chunk index from, up to limit
// entries (0 = no limit). Start offsets are accumulated by the same linear
// walk reads use.
func (s *Store) Snapshot(from, limit int) []ChunkInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if from < 0 {
		from = 0
	}
	out := make([]ChunkInfo, 0)
	pos := int64(0)
	for i := range s.chunks {
		size := int64(len(s.chunks[i].buf))
		if i >= from {
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, ChunkInfo{Index: i, Start: pos, Size: size})
		}
		pos += size
	}
	return out
}

// Clear releases every chunk and resets the total to zero. It is the only
// destruction path and is intended for teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.total = 0
}
