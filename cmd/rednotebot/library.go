package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/rednotebot/internal/config"
	"github.com/abdulachik/rednotebot/internal/db"
	"github.com/abdulachik/rednotebot/internal/library"
	"github.com/abdulachik/rednotebot/internal/workflow"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Search and maintain the post library",
	Long: `The post library is a VecLite index of every generated (non-fallback)
post. It is enabled by setting LIBRARY_PATH.`,
}

var librarySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find generated posts similar to a query",
	Long: `Search the post library for posts similar to the query text.

Example:
  rednotebot library search "黄金 突破 复盘"`,
	Args: cobra.ExactArgs(1),
	RunE: runLibrarySearch,
}

var libraryRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the post library from the generation history",
	RunE:  runLibraryRebuild,
}

var librarySearchK int

func init() {
	librarySearchCmd.Flags().IntVarP(&librarySearchK, "limit", "k", 5, "Number of results")
	libraryCmd.AddCommand(librarySearchCmd, libraryRebuildCmd)
	rootCmd.AddCommand(libraryCmd)
}

func loadLibraryConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if cfg.LibraryPath == "" {
		return nil, errors.New("LIBRARY_PATH is required for library commands")
	}
	return cfg, nil
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := args[0]

	cfg, err := loadLibraryConfig()
	if err != nil {
		return err
	}

	lib, err := library.New(library.Config{Path: cfg.LibraryPath, ConfigPath: cfg.VecLiteConfig})
	if err != nil {
		return fmt.Errorf("open post library: %w", err)
	}
	defer lib.Close()

	slog.Info("searching post library", "query", query, "k", librarySearchK)

	matches, err := lib.Search(ctx, query, librarySearchK)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Println("No matching posts.")
		return nil
	}

	fmt.Printf("\n=== Top %d posts for %q ===\n\n", len(matches), query)
	for i, m := range matches {
		fmt.Printf("%d. [%.3f] Account %s, %s, batch %s #%d\n", i+1, m.Score, m.AccountID, m.PersonaID, m.BatchID, m.Number)
		fmt.Printf("   %s\n\n", workflow.Truncate(m.Content, 200))
	}
	return nil
}

func runLibraryRebuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadLibraryConfig()
	if err != nil {
		return err
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	posts, err := store.ListAllPosts(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	if err := os.Remove(cfg.LibraryPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove old library: %w", err)
	}

	lib, err := library.New(library.Config{Path: cfg.LibraryPath, ConfigPath: cfg.VecLiteConfig})
	if err != nil {
		return fmt.Errorf("open post library: %w", err)
	}
	defer lib.Close()

	start := time.Now()
	var indexed, skipped int
	for _, p := range posts {
		if p.Fallback {
			skipped++
			continue
		}
		post := workflow.Post{
			Number:      int(p.Number),
			Content:     p.Content,
			GeneratedAt: time.Unix(p.GeneratedAt, 0),
		}
		if err := lib.IndexPost(p.BatchID, p.AccountID, p.PersonaID, post); err != nil {
			return err
		}
		indexed++
	}

	if err := lib.Sync(); err != nil {
		return fmt.Errorf("sync library: %w", err)
	}

	slog.Info("library rebuilt",
		"indexed", indexed,
		"skipped_fallback", skipped,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
