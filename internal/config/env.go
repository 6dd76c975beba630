package config

import (
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
)

// FromEnv overlays BYTELOG_* environment variables onto cfg.
//
// Size variables accept humanized values ("64MB", "1GiB") as well as
// plain byte counts.
func FromEnv(cfg *Config) {
	if v := os.Getenv("BYTELOG_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("BYTELOG_DEBUG_ADDR"); v != "" {
		cfg.DebugAddr = v
	}
	if v := os.Getenv("BYTELOG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BYTELOG_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if n, ok := sizeEnv("BYTELOG_MAX_CHUNK_BYTES"); ok {
		cfg.Limits.MaxChunkBytes = n
	}
	if n, ok := sizeEnv("BYTELOG_MAX_TOTAL_BYTES"); ok {
		cfg.Limits.MaxTotalBytes = n
	}
	if n, ok := sizeEnv("BYTELOG_WRITE_RATE_BYTES_PER_SEC"); ok {
		cfg.Limits.WriteRateBytesPerSec = n
	}
}

func sizeEnv(key string) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, true
	}
	if n, err := humanize.ParseBytes(v); err == nil {
		return int64(n), true
	}
	return 0, false
}
