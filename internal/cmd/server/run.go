package serverrun

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/gops/agent"

	cfgpkg "github.com/rzbill/bytelog/internal/config"
	"github.com/rzbill/bytelog/internal/runtime"
	httpserver "github.com/rzbill/bytelog/internal/server/http"
	logpkg "github.com/rzbill/bytelog/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := func() string { return getenv(key) }(); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	HTTPAddr  string
	DebugAddr string
	Config    cfgpkg.Config
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context
	// or if signal delivery needs to be observed here. We layer a
	// local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.HTTPAddr == "" {
		opts.HTTPAddr = opts.Config.HTTPAddr
	}
	if opts.DebugAddr == "" {
		opts.DebugAddr = opts.Config.DebugAddr
	}

	// Build process-wide logger using env/ApplyConfig; defaults come
	// from the loaded config.
	cfg := &logpkg.Config{
		Level:  getenvDefault("BYTELOG_LOG_LEVEL", opts.Config.Log.Level),
		Format: getenvDefault("BYTELOG_LOG_FORMAT", opts.Config.Log.Format),
	}
	procLogger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		// Fallback to a sane default
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g., net/http) to our logger
	logpkg.RedirectStdLog(procLogger)

	rt, err := runtime.Open(runtime.Options{Config: opts.Config, Logger: procLogger})
	if err != nil {
		return err
	}
	defer rt.Close()

	if opts.DebugAddr != "" {
		if err := agent.Listen(agent.Options{Addr: opts.DebugAddr}); err != nil {
			procLogger.Warn("debug agent failed to start", logpkg.Err(err))
		} else {
			defer agent.Close()
		}
	}

	procLogger.Info("Starting bytelog server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("debug", opts.DebugAddr),
		logpkg.Str("level", cfg.Level),
		logpkg.Str("format", cfg.Format),
		logpkg.Int64("max_chunk_bytes", opts.Config.Limits.MaxChunkBytes),
		logpkg.Int64("max_total_bytes", opts.Config.Limits.MaxTotalBytes),
	)

	hsrv := httpserver.New(rt, procLogger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			log.Printf("http error: %v", err)
		}
	}()

	<-sctx.Done()
	// Initiate graceful shutdown of the server before closing the runtime.
	hsrv.Close()
	wg.Wait()
	return nil
}
