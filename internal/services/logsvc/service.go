package logsvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/ratelimit"

	"github.com/rzbill/bytelog/internal/chunkstore"
	logpkg "github.com/rzbill/bytelog/pkg/log"
)

// Options configure a Service.
type Options struct {
	// MaxChunkBytes caps a single append; 0 = unlimited.
	MaxChunkBytes int64
	// MaxTotalBytes caps the whole log; 0 = unlimited.
	MaxTotalBytes int64
	// WriteRateBytesPerSec paces append staging; 0 disables pacing.
	WriteRateBytesPerSec int64
}

// Service exposes the append/read contract over the chunk store. Both
// operations are synchronous, self-contained, and keep no session state;
// callers track their own position cursor across calls.
type Service struct {
	store      *chunkstore.Store
	opts       Options
	logger     logpkg.Logger
	writeLimit *ratelimit.Bucket

	notifyMu sync.Mutex
	notifyCh chan struct{}

	appends      atomic.Uint64
	lastAppendMs atomic.Int64
}

// New returns a Service using a default logger.
func New(opts Options) *Service {
	return NewWithLogger(opts, nil)
}

// NewWithLogger constructs the service with an injected logger.
func NewWithLogger(opts Options, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("logsvc"))
	}
	s := &Service{
		store: chunkstore.New(chunkstore.Options{
			MaxChunkBytes: opts.MaxChunkBytes,
			MaxTotalBytes: opts.MaxTotalBytes,
		}),
		opts:     opts,
		logger:   logger,
		notifyCh: make(chan struct{}),
	}
	if opts.WriteRateBytesPerSec > 0 {
		rate := opts.WriteRateBytesPerSec
		s.writeLimit = ratelimit.NewBucketWithRate(float64(rate), rate)
	}
	return s
}

// Write appends up to length bytes read from src as one new chunk at the
// tail of the log. The offset is validated but never used to seek; appends
// always go to the tail.
//
// Staging happens outside the lock. If src delivers only a prefix of the
// requested length, the prefix becomes the chunk; if it delivers nothing,
// the write fails with ErrShortTransfer. length < 0 means "read src to
// EOF" (unknown Content-Length on the HTTP boundary).
//
// Returns the number of bytes stored; the caller advances its own cursor
// by the same amount.
func (s *Service) Write(ctx context.Context, src io.Reader, length, offset int64) (int64, error) {
	if length == 0 {
		return 0, nil
	}
	if offset < 0 {
		return 0, ErrInvalidOffset
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if s.writeLimit != nil {
		src = &pacedReader{r: src, bucket: s.writeLimit}
	}

	buf, n, err := s.stage(src, length)
	if err != nil {
		return 0, err
	}
	if err := s.store.Append(buf[:n]); err != nil {
		return 0, err
	}

	s.appends.Add(1)
	s.lastAppendMs.Store(time.Now().UnixMilli())
	s.notifyAppend()

	s.logger.Debug("chunk appended",
		logpkg.Int64("bytes", int64(n)),
		logpkg.Int64("size", s.store.Size()),
	)
	return int64(n), nil
}

// stage reads the boundary bytes into a temporary buffer sized to what was
// actually transferred.
func (s *Service) stage(src io.Reader, length int64) ([]byte, int, error) {
	if length < 0 {
		// Unknown length (e.g. chunked transfer encoding): read to EOF,
		// bounded by the chunk budget when one is configured so a
		// misbehaving caller cannot stage unbounded memory.
		lr := src
		if s.opts.MaxChunkBytes > 0 {
			lr = io.LimitReader(src, s.opts.MaxChunkBytes+1)
		}
		buf, err := io.ReadAll(lr)
		if len(buf) == 0 {
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %v", ErrShortTransfer, err)
			}
			return nil, 0, ErrShortTransfer
		}
		if err != nil {
			return nil, 0, err
		}
		if s.opts.MaxChunkBytes > 0 && int64(len(buf)) > s.opts.MaxChunkBytes {
			return nil, 0, ErrNoSpace
		}
		return buf, len(buf), nil
	}

	// Reject a hopeless request before allocating the staging buffer.
	if err := s.store.Budget(length); err != nil {
		return nil, 0, err
	}
	buf := make([]byte, length)
	n, err := io.ReadFull(src, buf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return nil, 0, fmt.Errorf("%w: %v", ErrShortTransfer, err)
		}
		return nil, 0, ErrShortTransfer
	}
	// A short prefix is fine: the transferred bytes become the chunk.
	return buf, n, nil
}

// Read copies up to maxLen bytes of the logical concatenation, starting at
// offset, into dst. The result never crosses the boundary of the chunk
// containing offset; callers issue a follow-up read at offset+n to
// continue. maxLen == 0 or offset past the end yield (0, nil).
//
// A partial delivery to dst is a short success; zero delivery when bytes
// were available fails with ErrShortTransfer.
func (s *Service) Read(ctx context.Context, dst io.Writer, maxLen, offset int64) (int64, error) {
	if maxLen == 0 {
		return 0, nil
	}
	if offset < 0 {
		return 0, ErrInvalidOffset
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n, werr := s.store.ReadAt(dst, maxLen, offset)
	if werr != nil {
		if n == 0 {
			return 0, fmt.Errorf("%w: %v", ErrShortTransfer, werr)
		}
		// Short delivery: report what landed and let the caller resume.
		s.logger.Debug("short read delivery",
			logpkg.Int64("delivered", n),
			logpkg.Err(werr),
		)
	}
	return n, nil
}

// WriteBytes appends p as one chunk; convenience for in-process callers
// whose transfer cannot fail.
func (s *Service) WriteBytes(ctx context.Context, p []byte, offset int64) (int64, error) {
	return s.Write(ctx, bytes.NewReader(p), int64(len(p)), offset)
}

// ReadBytes reads up to maxLen bytes starting at offset into memory.
func (s *Service) ReadBytes(ctx context.Context, maxLen, offset int64) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.Read(ctx, &buf, maxLen, offset); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Size returns the total size of the logical concatenation.
func (s *Service) Size() int64 { return s.store.Size() }

// Stats returns a point-in-time snapshot.
func (s *Service) Stats() Stats {
	return Stats{
		SizeBytes:    s.store.Size(),
		Chunks:       s.store.Count(),
		Appends:      s.appends.Load(),
		LastAppendMs: s.lastAppendMs.Load(),
	}
}

// Chunks lists chunk metadata starting at index from, up to limit entries.
func (s *Service) Chunks(from, limit int) []chunkstore.ChunkInfo {
	return s.store.Snapshot(from, limit)
}

// Close tears the log down, releasing every chunk. There is no other
// destruction path.
func (s *Service) Close() error {
	st := s.Stats()
	s.store.Clear()
	s.logger.Info("log service closed",
		logpkg.Int64("released_bytes", st.SizeBytes),
		logpkg.Int("chunks", st.Chunks),
	)
	return nil
}

func (s *Service) notifyAppend() {
	s.notifyMu.Lock()
	ch := s.notifyCh
	s.notifyCh = make(chan struct{})
	s.notifyMu.Unlock()
	close(ch)
}

// pacedReader applies the write-rate bucket to staged bytes.
type pacedReader struct {
	r      io.Reader
	bucket *ratelimit.Bucket
}

func (p *pacedReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if p.bucket != nil && n > 0 {
		p.bucket.Wait(int64(n))
	}
	return n, err
}
