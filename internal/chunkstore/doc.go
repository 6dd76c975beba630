// Package chunkstore implements bytelog's in-memory chunk store.
//
// # Overview
//
// The store is an ordered, append-only sequence of immutable byte chunks
// plus a running total of their sizes. Each append creates exactly one
// chunk sized to the appended bytes; chunks are never mutated, resized, or
// removed individually. The whole store is released at teardown via Clear.
//
// Offsets address the logical concatenation of all chunks in append order.
// Locating the chunk covering an offset is a deliberate linear scan: chunks
// are create-once and the structure favors simplicity and append throughput
// over read latency.
//
// # Concurrency
//
// One sync.RWMutex guards the chunk sequence and the size total as a single
// unit. Any number of readers may scan and copy concurrently; an append
// takes exclusive access only for the O(1) link-and-advance step (the
// buffer copy happens before the lock is taken). A reader therefore sees
// either the pre- or post-state of a concurrent append, never a torn one.
//
// API surface (internal)
//
//	s := chunkstore.New(chunkstore.Options{MaxTotalBytes: 64 << 20})
//	_ = s.Append([]byte("hello"))
//	n, _ := s.ReadAt(dst, 10, 0) // bounded by the chunk containing offset 0
//	_ = s.Size()
//	s.Clear()
package chunkstore
