package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/adapters/file"
	"github.com/aretw0/parley/pkg/adapters/memory"
	redisstore "github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/persistence/middleware"
	"github.com/aretw0/parley/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley tests voice-agent conversation flows",
	Long: `Parley imports voice-agent configs from hosted platforms (Retell, VAPI,
Bland, Telnyx and others), simulates conversations against them with
persona-driven callers, and judges the transcripts.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	l, err := logging.ParseLevel(level)
	if err != nil {
		l = slog.LevelWarn
	}
	return logging.New(l)
}

// addStoreFlags registers the run-store selection flags shared by the run
// and serve commands.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", "file", "Run store backend (file, memory, redis)")
	cmd.Flags().String("store-path", "", "Directory for the file store (default .parley/runs)")
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address for the redis store")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database number")
	cmd.Flags().StringSlice("redact", nil, "Regex patterns redacted from transcripts before storage")
}

// openStore builds the selected store and wraps it with the configured
// persistence middleware. Redaction runs before encryption so the ciphertext
// never contains what --redact excludes. Setting PARLEY_ENCRYPTION_KEY to a
// base64 32-byte key enables encryption at rest.
func openStore(cmd *cobra.Command) (ports.RunStore, error) {
	backend, _ := cmd.Flags().GetString("store")

	var store ports.RunStore
	switch backend {
	case "file":
		path, _ := cmd.Flags().GetString("store-path")
		store = file.New(path)
	case "memory":
		store = memory.NewStore()
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		store = redisstore.New(addr, password, db)
	default:
		return nil, fmt.Errorf("unknown store backend %q (known: file, memory, redis)", backend)
	}

	if keyB64 := os.Getenv("PARLEY_ENCRYPTION_KEY"); keyB64 != "" {
		key, err := base64.StdEncoding.DecodeString(keyB64)
		if err != nil {
			return nil, fmt.Errorf("PARLEY_ENCRYPTION_KEY is not valid base64: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("PARLEY_ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
		}
		store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(store)
	}

	if patterns, _ := cmd.Flags().GetStringSlice("redact"); len(patterns) > 0 {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid --redact pattern %q: %w", p, err)
			}
		}
		store = middleware.NewPIIMiddleware(patterns)(store)
	}

	return store, nil
}
