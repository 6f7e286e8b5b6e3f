package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/stockdash/internal/common"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Query market data",
}

var stockInfoCmd = &cobra.Command{
	Use:   "info <code>",
	Short: "Show today's snapshot for a stock",
	Args:  cobra.ExactArgs(1),
	RunE:  runStockInfo,
}

var stockIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Show the major market indices",
	Args:  cobra.NoArgs,
	RunE:  runStockIndex,
}

var stockForce bool

func init() {
	stockInfoCmd.Flags().BoolVarP(&stockForce, "force", "f", false, "Bypass today's cached snapshot")
	stockCmd.AddCommand(stockInfoCmd, stockIndexCmd)
}

func runStockInfo(cmd *cobra.Command, args []string) error {
	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	resp, err := application.StockService.GetStockInfo(context.Background(), common.NormalizeStockCode(args[0]), stockForce)
	if err != nil {
		return err
	}
	renderStock(os.Stdout, resp)
	return nil
}

func runStockIndex(cmd *cobra.Command, args []string) error {
	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	quotes, err := application.StockService.GetIndexInfo(context.Background())
	if err != nil {
		return err
	}
	renderIndices(os.Stdout, quotes)
	return nil
}
