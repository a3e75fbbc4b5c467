package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/rednotebot/internal/config"
	"github.com/abdulachik/rednotebot/internal/db"
	"github.com/abdulachik/rednotebot/internal/library"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show generation statistics",
	Long:  `Display batch and post counts from the generation history, overall and per account.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	// Ensure migrations are run
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	sum, err := store.GetSummary(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("get summary: %w", err)
	}

	byAccount, err := store.CountByAccount(ctx)
	if err != nil {
		return fmt.Errorf("count by account: %w", err)
	}

	// Print stats
	fmt.Println("=== RedNoteBot Statistics ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	fmt.Println()
	fmt.Println("Posts:")
	fmt.Printf("  Total: %d in %d batches\n", sum.TotalPosts, sum.TotalBatches)
	fmt.Printf("  Fallback: %d\n", sum.FallbackPosts)
	fmt.Printf("  Today: %d\n", sum.Today)
	fmt.Printf("  Last 7 days: %d\n", sum.ThisWeek)
	fmt.Printf("  Last 30 days: %d\n", sum.ThisMonth)
	fmt.Println()

	if len(byAccount) > 0 {
		fmt.Println("  By account:")
		for _, row := range byAccount {
			fmt.Printf("    %s: %d posts, %d fallback, %d batches, last run %s\n",
				row.AccountID, row.Posts, row.FallbackPosts, row.Batches,
				time.Unix(row.LastRun, 0).Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}

	// Check the post library if configured
	if cfg.LibraryPath != "" {
		lib, err := library.New(library.Config{
			Path:       cfg.LibraryPath,
			ConfigPath: cfg.VecLiteConfig,
		})
		if err != nil {
			slog.Warn("failed to open post library", "error", err)
		} else {
			defer lib.Close()
			stats := lib.Stats()
			fmt.Println("Post library:")
			fmt.Printf("  Path: %s\n", cfg.LibraryPath)
			fmt.Printf("  Documents: %d\n", stats.Count)
			fmt.Printf("  Dimension: %d\n", stats.Dimension)
			fmt.Printf("  Distance: %s\n", stats.DistanceType)
			fmt.Printf("  Index: %s\n", stats.IndexType)
			fmt.Println()
		}
	}

	return nil
}
