package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/stockdash/internal/common"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage the watchlist",
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched stocks with today's snapshot where available",
	Args:  cobra.NoArgs,
	RunE:  runWatchlistList,
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add <code>",
	Short: "Watch a stock, optionally with a target market value band (亿元)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTargetMutation(cmd, common.NormalizeStockCode(args[0]), false)
	},
}

var watchlistUpdateCmd = &cobra.Command{
	Use:   "update <code>",
	Short: "Replace the target market value band of a watched stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTargetMutation(cmd, common.NormalizeStockCode(args[0]), true)
	},
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove <code>",
	Short: "Stop watching a stock",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistRemove,
}

var watchlistImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Add or replace entries from a YAML watchlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistImport,
}

var watchlistExportCmd = &cobra.Command{
	Use:   "export <file.yaml>",
	Short: "Write the watchlist as YAML (use - for stdout)",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistExport,
}

var targetMin, targetMax float64

func init() {
	for _, c := range []*cobra.Command{watchlistAddCmd, watchlistUpdateCmd} {
		c.Flags().Float64Var(&targetMin, "min", 0, "Target market value lower bound (亿元)")
		c.Flags().Float64Var(&targetMax, "max", 0, "Target market value upper bound (亿元)")
	}
	watchlistCmd.AddCommand(watchlistListCmd, watchlistAddCmd, watchlistUpdateCmd,
		watchlistRemoveCmd, watchlistImportCmd, watchlistExportCmd)
}

// boundFlag returns nil when the flag was not given.
func boundFlag(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func runWatchlistList(cmd *cobra.Command, args []string) error {
	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	entries, err := application.WatchlistService.List(context.Background())
	if err != nil {
		return err
	}
	renderWatchlist(os.Stdout, entries)
	return nil
}

func runTargetMutation(cmd *cobra.Command, code string, update bool) error {
	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	min := boundFlag(cmd, "min", targetMin)
	max := boundFlag(cmd, "max", targetMax)

	ctx := context.Background()
	if update {
		err = application.WatchlistService.UpdateTarget(ctx, code, min, max)
	} else {
		err = application.WatchlistService.Add(ctx, code, min, max)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s saved\n", code)
	return nil
}

func runWatchlistRemove(cmd *cobra.Command, args []string) error {
	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	code := common.NormalizeStockCode(args[0])
	if err := application.WatchlistService.Remove(context.Background(), code); err != nil {
		return err
	}
	fmt.Printf("%s removed\n", code)
	return nil
}

func runWatchlistImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	n, err := application.WatchlistService.Import(context.Background(), f)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d entries\n", n)
	return nil
}

func runWatchlistExport(cmd *cobra.Command, args []string) error {
	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	if args[0] == "-" {
		return application.WatchlistService.Export(context.Background(), os.Stdout)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[0], err)
	}
	if err := application.WatchlistService.Export(context.Background(), f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
