// Package client provides the `bytelog` command-line client.
//
// The CLI talks to the bytelog HTTP endpoints to perform common log
// operations from a terminal. It is primarily intended for developers
// and operators.
//
// Installation
//
//	go install github.com/rzbill/bytelog/cmd/bytelog@latest
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:8080 and can be overridden with the
// BYTELOG_HTTP environment variable.
//
// Usage
//
//	bytelog log append --data 'hello'
//	echo -n 'world!' | bytelog log append
//
//	# One fetch never crosses a chunk boundary; drain walks the whole log
//	bytelog log fetch --offset 0 --length 64KB
//	bytelog log fetch --drain --raw > dump.bin
//
//	bytelog log stats
//	bytelog log chunks --from 0 --limit 10
//
//	# Follow new appends as they land
//	bytelog log tail
//	bytelog log tail --offset 0 --limit 5   # replay from the start first
//
// Notes
//
//   - append accepts --data, --file, or stdin. The --offset flag is
//     validated by the server but appends always land at the tail.
//   - fetch returns short reads at chunk boundaries; advance the offset
//     by the returned byte count and fetch again, or use --drain.
//   - tail connects to the SSE endpoint and prints one JSON object per
//     event with the payload decoded as JSON, text, or base64.
package client
