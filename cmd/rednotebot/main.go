package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rednotebot",
	Short: "A persona-driven RedNote content generator",
	Long: `RedNoteBot drafts RedNote posts for a fixed set of accounts, each written
in the voice of its assigned persona, and records them as PDF and text files
or keeps them in memory.`,
	SilenceUsage: true,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	slog.SetDefault(slog.New(newLogHandler(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))))
}

// newLogHandler writes text to a terminal and JSON everywhere else unless
// format forces one.
func newLogHandler(level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	switch strings.ToLower(format) {
	case "json":
		return slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		return slog.NewTextHandler(os.Stderr, opts)
	}

	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.NewJSONHandler(os.Stderr, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
