package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rzbill/bytelog/internal/runtime"
	"github.com/rzbill/bytelog/internal/services/logsvc"
	logpkg "github.com/rzbill/bytelog/pkg/log"
)

// keepAliveInterval is how often the tail endpoint emits an SSE comment
// when no appends arrive, so intermediaries keep the connection open.
const keepAliveInterval = 15 * time.Second

// maxTailEventBytes bounds a single tail event; larger appends are
// delivered as consecutive events.
const maxTailEventBytes = int64(1 << 20)

// LogController handles the byte-log HTTP endpoints.
//
// It exposes the append/fetch operations plus stats, chunk listing,
// and real-time tailing via Server-Sent Events.
type LogController struct {
	rt     *runtime.Runtime
	svc    *logsvc.Service
	logger logpkg.Logger
}

// NewLogController creates a new log controller.
func NewLogController(rt *runtime.Runtime, svc *logsvc.Service, logger logpkg.Logger) *LogController {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &LogController{rt: rt, svc: svc, logger: logger}
}

// RegisterRoutes registers all log routes with the given mux.
func (c *LogController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/log/append", c.handleAppend)
	mux.HandleFunc("/v1/log/fetch", c.handleFetch)
	mux.HandleFunc("/v1/log/stats", c.handleStats)
	mux.HandleFunc("/v1/log/chunks", c.handleChunks)
	mux.HandleFunc("/v1/log/tail", c.handleTailSSE)
}

// handleAppend appends the request body to the log.
//
// The offset query parameter is validated but the write always lands at
// the tail. The body length comes from Content-Length when known;
// chunked uploads are staged up to the chunk size limit.
func (c *LogController) handleAppend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	offset, ok := parseInt64(r.URL.Query().Get("offset"), 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}
	n, err := c.svc.Write(r.Context(), r.Body, r.ContentLength, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, appendResp{Written: n, Size: c.svc.Size()})
}

// handleFetch streams raw bytes starting at offset.
//
// A fetch returns at most length bytes and never crosses a chunk
// boundary; the caller advances its offset by the X-Log-Count it got
// back and fetches again.
func (c *LogController) handleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	q := r.URL.Query()
	offset, ok := parseInt64(q.Get("offset"), 0)
	if !ok || offset < 0 {
		writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}
	length, ok := parseInt64(q.Get("length"), 64<<10)
	if !ok || length < 0 {
		writeError(w, http.StatusBadRequest, "Invalid length")
		return
	}
	b, err := c.svc.ReadBytes(r.Context(), length, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Log-Offset", formatInt64(offset))
	w.Header().Set("X-Log-Count", formatInt64(int64(len(b))))
	if _, err := w.Write(b); err != nil {
		c.logger.WithContext(r.Context()).Debug("fetch delivery aborted", logpkg.Err(err))
	}
}

// handleStats returns a point-in-time stats snapshot.
func (c *LogController) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, c.svc.Stats())
}

// handleChunks lists chunk layout for inspection.
func (c *LogController) handleChunks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := parseLimit(q.Get("from"))
	limit := parseLimit(q.Get("limit"))
	writeJSON(w, chunksResp{
		Chunks: c.svc.Chunks(from, limit),
		Size:   c.svc.Size(),
	})
}

// handleTailSSE streams newly appended bytes as SSE events.
//
// By default tailing starts at the current end of the log; pass an
// explicit offset to replay existing bytes first.
func (c *LogController) handleTailSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	offset, ok := parseInt64(r.URL.Query().Get("offset"), c.svc.Size())
	if !ok || offset < 0 {
		writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sink := sseSink{w: w, r: r}
	_ = sink.Flush()
	ctx := r.Context()
	log := c.logger.WithContext(ctx)
	for {
		// Arm the signal before reading so an append landing between
		// the empty read and the wait still wakes us.
		sig := c.svc.AppendSignal()
		b, err := c.svc.ReadBytes(ctx, maxTailEventBytes, offset)
		if err != nil {
			if !errors.Is(err, logsvc.ErrShortTransfer) {
				log.Debug("tail read stopped", logpkg.Err(err))
			}
			return
		}
		if len(b) > 0 {
			if err := sink.Send(tailEvent{Offset: offset, Payload: b}); err != nil {
				return
			}
			_ = sink.Flush()
			offset += int64(len(b))
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-sig:
		case <-time.After(keepAliveInterval):
			if err := sink.Comment("keep-alive"); err != nil {
				return
			}
			_ = sink.Flush()
		}
	}
}
