package logsvc

import (
	"errors"

	"github.com/rzbill/bytelog/internal/chunkstore"
)

var (
	// ErrInvalidOffset is returned when a negative offset is supplied to
	// either operation. No state changes.
	ErrInvalidOffset = errors.New("logsvc: negative offset")

	// ErrShortTransfer is returned when the byte transfer across the
	// caller boundary moved zero bytes while a non-zero count was
	// expected. It signals a caller-side fault, not store corruption.
	ErrShortTransfer = errors.New("logsvc: boundary transfer made no progress")

	// ErrNoSpace mirrors the store's budget error for callers that only
	// import this package.
	ErrNoSpace = chunkstore.ErrNoSpace
)

// Stats is a point-in-time snapshot of the log.
type Stats struct {
	SizeBytes    int64  `json:"size_bytes"`
	Chunks       int    `json:"chunks"`
	Appends      uint64 `json:"appends"`
	LastAppendMs int64  `json:"last_append_ms"`
}
