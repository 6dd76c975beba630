package controllers

import "github.com/rzbill/bytelog/internal/chunkstore"

// Common request/response types for HTTP controllers

// appendResp reports the outcome of an append.
type appendResp struct {
	Written int64 `json:"written"`
	Size    int64 `json:"size"`
}

// chunksResp lists the chunk layout of the log.
type chunksResp struct {
	Chunks []chunkstore.ChunkInfo `json:"chunks"`
	Size   int64                  `json:"size"`
}

// tailEvent is one SSE event on the tail stream. Payload is
// base64-encoded by the JSON marshaler.
type tailEvent struct {
	Offset  int64  `json:"offset"`
	Payload []byte `json:"payload"`
}
