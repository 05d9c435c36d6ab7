package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"isthatstilltrue/internal/config"
)

// NewCacheCmd creates the cache inspection command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the fact cache",
		Long:  `Inspect cached generation results, show cache statistics, or clear all entries.`,
	}

	cacheCmd.AddCommand(newCacheShowCmd())
	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheClearCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(cmd.Context())
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd.Context())
		},
	}
}

func runCacheStats(ctx context.Context) error {
	db, err := getDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Cache().Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	fmt.Println(titleStyle.Render("Cache statistics"))
	fmt.Printf("Fact generations: %d\n", stats.Generations)
	fmt.Printf("School memories:  %d\n", stats.SchoolMemories)
	return nil
}

func runCacheClear(ctx context.Context) error {
	db, err := getDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	deleted, err := db.Cache().Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Printf("Cleared %d cached entries\n", deleted)
	return nil
}

func newCacheShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <country> <graduation-year>",
		Short: "Show the cached entry for a country and year",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("graduation year must be a number: %s", args[1])
			}
			return runCacheShow(cmd.Context(), args[0], year)
		},
	}
}

func runCacheShow(ctx context.Context, country string, year int) error {
	cfg := config.Get()

	db, err := getDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	entry, err := db.Cache().GetGeneration(ctx, country, year)
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	if entry == nil {
		fmt.Printf("No cache entry for %s / %d\n", country, year)
		return nil
	}

	retention := config.Duration(cfg.Cache.Retention, 7*24*time.Hour)
	age := time.Since(entry.CreatedAt)
	state := "fresh"
	if age > retention {
		state = "stale (will regenerate on next request)"
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Cache entry for %s / %d", country, year)))
	fmt.Printf("Written: %s (%s)\n", entry.CreatedAt.Format(time.RFC3339), state)
	fmt.Printf("Facts: %d, education problems: %d\n\n", len(entry.Facts), len(entry.Problems))

	for i, f := range entry.Facts {
		fmt.Printf("%d. %s %s\n", i+1, categoryStyle.Render("["+f.Category+"]"), f.Statement)
		fmt.Println(dimStyle.Render(fmt.Sprintf("   debunked %d · score %.2f", f.YearDebunked, f.QualityScore)))
	}

	return nil
}
