// Package cli implements the coherence CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rcliao/coherence/internal/store"
)

var (
	dbPath  string
	verbose bool
	logger  = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "coherence",
	Short: "Session coherence metrics with a hash-linked memory chain",
	Long:  "Scores conversational text with keyword-frequency heuristics and records significant session events in an append-only, hash-linked memory chain. SQLite-backed, single binary.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			if l, err := config.Build(); err == nil {
				logger = l
			}
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $COHERENCE_DB or ~/.coherence/coherence.db)")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging to stderr")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("COHERENCE_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".coherence", "coherence.db")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath(), logger)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
