package runtime

import (
	"context"
	"errors"

	cfgpkg "github.com/rzbill/bytelog/internal/config"
	"github.com/rzbill/bytelog/internal/services/logsvc"
	logpkg "github.com/rzbill/bytelog/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
}

// Runtime wires config and the log service for a single-node instance.
type Runtime struct {
	log    *logsvc.Service
	logger logpkg.Logger
	config cfgpkg.Config
}

// Open initializes the log service and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	svc := logsvc.NewWithLogger(logsvc.Options{
		MaxChunkBytes:        opts.Config.Limits.MaxChunkBytes,
		MaxTotalBytes:        opts.Config.Limits.MaxTotalBytes,
		WriteRateBytesPerSec: opts.Config.Limits.WriteRateBytesPerSec,
	}, logger)
	return &Runtime{log: svc, logger: logger, config: opts.Config}, nil
}

// Close releases the in-memory log.
func (r *Runtime) Close() error {
	if r.log == nil {
		return nil
	}
	err := r.log.Close()
	r.log = nil
	return err
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.log == nil {
		return errors.New("log service not open")
	}
	return nil
}

// Log exposes the log service for servers and CLI handlers.
func (r *Runtime) Log() *logsvc.Service { return r.log }

// Logger returns the runtime's logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
