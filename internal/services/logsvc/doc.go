// Package logsvc implements bytelog's log service: the append/read
// contract over the in-memory chunk store.
//
// # Operations
//
// Write appends the bytes staged from the caller boundary as exactly one
// new chunk at the tail. The supplied offset is validated (negative fails
// with ErrInvalidOffset) but never used to seek: the log is append-only
// and the offset argument is a validity channel, not a seek target.
//
// Read copies bytes of the logical concatenation starting at an absolute
// offset, bounded both by the requested length and by the end of the chunk
// containing the start offset. Reads never span chunks; a caller drains
// the log by issuing follow-up reads at the advanced offset.
//
// # Boundary transfers
//
// Both operations move bytes across a caller boundary (an io.Reader on
// write, an io.Writer on read; over HTTP these are the request body and
// the response stream). A transfer that makes partial progress is a short
// success; a transfer that moves zero bytes when a non-zero count was
// expected fails with ErrShortTransfer.
//
// # Concurrency
//
// Many concurrent readers, one writer: the store's readers-writer lock
// covers the scan-plus-copy of a read and the O(1) link of an append.
// Write staging and rate pacing happen before the lock is taken.
//
// Example:
//
//	svc := logsvc.New(logsvc.Options{MaxTotalBytes: 64 << 20})
//	n, _ := svc.WriteBytes(ctx, []byte("hello"), 0)
//	b, _ := svc.ReadBytes(ctx, 10, 0) // "hello", never crossing into the next chunk
//	_ = n
//	_ = b
package logsvc
