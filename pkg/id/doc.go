// Package id provides 128-bit, lexicographically sortable identifiers used
// to tag HTTP requests in logs.
//
// # Format
//
// An ID is 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes sequence].
// Byte-wise comparison preserves chronological order, and IDs minted within
// the same millisecond remain strictly increasing by sequence, so request
// IDs sort in arrival order in log output.
//
// # Monotonicity
//
// The Generator ensures per-process monotonicity:
//   - If the system clock regresses, it pins to the last seen millisecond
//     and keeps incrementing the sequence.
//   - If the sequence would overflow within a millisecond, it waits for the
//     next millisecond before emitting the next ID.
//
// Usage
//
//	g := id.NewGenerator()
//	reqID := g.Next().String() // hex, attached via log.RequestID(reqID)
package id
