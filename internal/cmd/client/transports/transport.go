package transports

import "context"

// AppendResult reports the outcome of an append call.
type AppendResult struct {
	Written int64
	Size    int64
}

// Stats aggregates log statistics.
type Stats struct {
	SizeBytes    int64
	Chunks       int
	Appends      uint64
	LastAppendMs int64
}

// Chunk describes one chunk in the log layout.
type Chunk struct {
	Index int
	Start int64
	Size  int64
}

// TailEvent is one event from a tail subscription.
type TailEvent struct {
	Offset  int64
	Payload []byte
}

// LogTransport abstracts the transport used by the CLI.
type LogTransport interface {
	Append(ctx context.Context, payload []byte, offset int64) (AppendResult, error)
	Fetch(ctx context.Context, offset, length int64) ([]byte, error)
	Stats(ctx context.Context) (Stats, error)
	Chunks(ctx context.Context, from, limit int) ([]Chunk, error)
	Tail(ctx context.Context, offset int64, limit int, onEvent func(TailEvent) error) error
	Health(ctx context.Context) error
}
