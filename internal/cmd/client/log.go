// Package client contains Cobra CLI commands for bytelog.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	transports "github.com/rzbill/bytelog/internal/cmd/client/transports"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

func getTransport(baseURL BaseURLFunc) transports.LogTransport {
	return transports.NewHTTPTransport(baseURL)
}

// NewLogCommand constructs the `log` command group and subcommands.
func NewLogCommand(baseURL BaseURLFunc) *cobra.Command {
	logCmd := &cobra.Command{Use: "log", Short: "Log operations"}

	logCmd.AddCommand(
		newLogAppendCommand(baseURL),
		newLogFetchCommand(baseURL),
		newLogStatsCommand(baseURL),
		newLogChunksCommand(baseURL),
		newLogTailCommand(baseURL),
		newLogHealthCommand(baseURL),
	)

	return logCmd
}

// newLogAppendCommand constructs the `log append` subcommand.
func newLogAppendCommand(baseURL BaseURLFunc) *cobra.Command {
	appendCmd := &cobra.Command{
		Use:   "append",
		Short: "Append bytes to the log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, _ := cmd.Flags().GetString("data")
			file, _ := cmd.Flags().GetString("file")
			offset, _ := cmd.Flags().GetInt64("offset")

			payload, err := readPayload(cmd, data, file)
			if err != nil {
				return err
			}
			res, err := getTransport(baseURL).Append(cmd.Context(), payload, offset)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(map[string]any{
				"written": res.Written,
				"size":    res.Size,
			})
		},
	}
	appendCmd.Flags().StringP("data", "d", "", "Payload as a literal string")
	appendCmd.Flags().StringP("file", "f", "", "Read payload from file ('-' for stdin)")
	appendCmd.Flags().Int64("offset", 0, "Offset hint (validated; appends always land at the tail)")
	return appendCmd
}

// newLogFetchCommand constructs the `log fetch` subcommand.
func newLogFetchCommand(baseURL BaseURLFunc) *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch bytes from the log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			offset, _ := cmd.Flags().GetInt64("offset")
			lengthStr, _ := cmd.Flags().GetString("length")
			drain, _ := cmd.Flags().GetBool("drain")
			raw, _ := cmd.Flags().GetBool("raw")

			length := int64(64 << 10)
			if lengthStr != "" {
				n, err := humanize.ParseBytes(lengthStr)
				if err != nil {
					return fmt.Errorf("invalid --length: %w", err)
				}
				length = int64(n)
			}

			t := getTransport(baseURL)
			enc := json.NewEncoder(cmd.OutOrStdout())
			for {
				b, err := t.Fetch(cmd.Context(), offset, length)
				if err != nil {
					return err
				}
				if len(b) == 0 {
					return nil
				}
				if raw {
					if _, err := cmd.OutOrStdout().Write(b); err != nil {
						return err
					}
				} else {
					out := decodedPayload(b)
					out["offset"] = offset
					_ = enc.Encode(out)
				}
				if !drain {
					return nil
				}
				offset += int64(len(b))
			}
		},
	}
	fetchCmd.Flags().Int64("offset", 0, "Start offset")
	fetchCmd.Flags().String("length", "", "Max bytes per fetch (accepts sizes like 64KB)")
	fetchCmd.Flags().Bool("drain", false, "Keep fetching until the end of the log")
	fetchCmd.Flags().Bool("raw", false, "Write raw bytes instead of decoded JSON")
	return fetchCmd
}

// newLogStatsCommand constructs the `log stats` subcommand.
func newLogStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Get log stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := getTransport(baseURL).Stats(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"size_bytes":     stats.SizeBytes,
				"size_human":     humanize.Bytes(uint64(stats.SizeBytes)),
				"chunks":         stats.Chunks,
				"appends":        stats.Appends,
				"last_append_ms": stats.LastAppendMs,
			})
		},
	}
	return statsCmd
}

// newLogChunksCommand constructs the `log chunks` subcommand.
func newLogChunksCommand(baseURL BaseURLFunc) *cobra.Command {
	chunksCmd := &cobra.Command{
		Use:   "chunks",
		Short: "List chunk layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, _ := cmd.Flags().GetInt("from")
			limit, _ := cmd.Flags().GetInt("limit")
			chunks, err := getTransport(baseURL).Chunks(cmd.Context(), from, limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, c := range chunks {
				_ = enc.Encode(map[string]any{
					"index": c.Index,
					"start": c.Start,
					"size":  c.Size,
				})
			}
			return nil
		},
	}
	chunksCmd.Flags().Int("from", 0, "First chunk index")
	chunksCmd.Flags().Int("limit", 0, "Max chunks to list (0 = all)")
	return chunksCmd
}

// newLogTailCommand constructs the `log tail` subcommand.
func newLogTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail newly appended bytes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			offset, _ := cmd.Flags().GetInt64("offset")
			limit, _ := cmd.Flags().GetInt("limit")

			enc := json.NewEncoder(cmd.OutOrStdout())
			return getTransport(baseURL).Tail(cmd.Context(), offset, limit, func(ev transports.TailEvent) error {
				out := decodedPayload(ev.Payload)
				out["offset"] = ev.Offset
				_ = enc.Encode(out)
				return nil
			})
		},
	}
	tailCmd.Flags().Int64("offset", -1, "Start offset (-1 = current end of log)")
	tailCmd.Flags().Int("limit", 0, "Stop after N events (0 = infinite)")
	return tailCmd
}

// newLogHealthCommand constructs the `log health` subcommand.
func newLogHealthCommand(baseURL BaseURLFunc) *cobra.Command {
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := getTransport(baseURL).Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "status: ok")
			return nil
		},
	}
	return healthCmd
}

// readPayload resolves the append payload from --data, --file, or stdin.
func readPayload(cmd *cobra.Command, data, file string) ([]byte, error) {
	if data != "" && file != "" {
		return nil, fmt.Errorf("--data and --file are mutually exclusive")
	}
	if data != "" {
		return []byte(data), nil
	}
	if file == "" || file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(file)
}
