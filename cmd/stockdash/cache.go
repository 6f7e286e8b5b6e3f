package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the snapshot and analysis caches",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached snapshots and analyses",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <code>",
	Short: "Drop every cached snapshot and analysis of a stock",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheClear,
}

var cacheTrack string

func init() {
	cacheListCmd.Flags().StringVar(&cacheTrack, "track", "", "Only list analyses of this track (value, tao, masters)")
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	var track models.Track
	if cacheTrack != "" {
		t, ok := models.ParseTrack(cacheTrack)
		if !ok {
			return fmt.Errorf("unknown analysis track %q (want value, tao or masters)", cacheTrack)
		}
		track = t
	}

	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := context.Background()
	snapshots, err := application.StockService.Snapshots(ctx)
	if err != nil {
		return err
	}
	analyses, err := application.AnalysisService.Cached(ctx, track)
	if err != nil {
		return err
	}
	renderCache(os.Stdout, snapshots, analyses, common.SystemClock())
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	code := common.NormalizeStockCode(args[0])
	if _, err := common.ResolveStockCode(code); err != nil {
		return err
	}

	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := context.Background()
	if err := application.StockService.InvalidateSnapshot(ctx, code); err != nil {
		return err
	}
	if err := application.AnalysisService.Invalidate(ctx, code); err != nil {
		return err
	}
	fmt.Printf("Cleared cached data for %s\n", code)
	return nil
}
