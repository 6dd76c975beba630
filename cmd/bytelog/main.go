package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/bytelog/internal/cmd/client"
	serverrun "github.com/rzbill/bytelog/internal/cmd/server"
	cfgpkg "github.com/rzbill/bytelog/internal/config"
	logpkg "github.com/rzbill/bytelog/pkg/log"
)

func main() {
	// initialize logger for CLI
	// Respect BYTELOG_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("BYTELOG_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "bytelog",
		Short: "bytelog runtime CLI",
		Long:  "bytelog is a single-binary in-memory byte log. This CLI manages the server and basic operations.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start bytelog server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			httpAddr, _ := cmd.Flags().GetString("http")
			debugAddr, _ := cmd.Flags().GetString("debug")
			maxChunk, _ := cmd.Flags().GetString("max-chunk")
			maxTotal, _ := cmd.Flags().GetString("max-total")
			writeRate, _ := cmd.Flags().GetString("write-rate")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			if err := applySize(&cfg.Limits.MaxChunkBytes, maxChunk, "--max-chunk"); err != nil {
				return err
			}
			if err := applySize(&cfg.Limits.MaxTotalBytes, maxTotal, "--max-total"); err != nil {
				return err
			}
			if err := applySize(&cfg.Limits.WriteRateBytesPerSec, writeRate, "--write-rate"); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if logLevel != "" {
				_ = os.Setenv("BYTELOG_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("BYTELOG_LOG_FORMAT", logFormat)
			}
			if err := serverrun.Run(ctx, serverrun.Options{
				HTTPAddr:  httpAddr,
				DebugAddr: debugAddr,
				Config:    cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "Config file (JSON or YAML)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default :8080)")
	serverStartCmd.Flags().String("debug", os.Getenv("BYTELOG_DEBUG_ADDR"), "gops debug agent address (optional)")
	serverStartCmd.Flags().String("max-chunk", "", "Max bytes per chunk (accepts sizes like 16MB)")
	serverStartCmd.Flags().String("max-total", "", "Max total log bytes (accepts sizes like 256MB)")
	serverStartCmd.Flags().String("write-rate", "", "Append pacing in bytes/sec (accepts sizes like 4MB)")
	serverStartCmd.Flags().String("log-level", os.Getenv("BYTELOG_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("BYTELOG_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// log commands (implemented in internal/cmd/client)
	logCmd := clientcmd.NewLogCommand(apiURL)
	rootCmd.AddCommand(logCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applySize overrides *dst when the flag value is non-empty.
func applySize(dst *int64, v, flag string) error {
	if v == "" {
		return nil
	}
	n, err := humanize.ParseBytes(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", flag, err)
	}
	*dst = int64(n)
	return nil
}

func apiURL() string {
	if v := os.Getenv("BYTELOG_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
