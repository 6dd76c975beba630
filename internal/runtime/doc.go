// Package runtime wires config and the log service into a single-node
// bytelog instance. It exposes Open/Close, basic health checks, and the
// Log() accessor used by higher-level servers.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	// Health
//	_ = rt.CheckHealth(context.Background())
//	// Append and read back
//	_, _ = rt.Log().WriteBytes(context.Background(), []byte("hello"), 0)
package runtime
