package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/stockdash/internal/app"
	"github.com/ternarybob/stockdash/internal/common"
)

func main() {
	configPath := os.Getenv("STOCKDASH_CONFIG")
	if configPath == "" {
		configPath = "stockdash.toml"
	}

	var paths []string
	if _, err := os.Stat(configPath); err == nil {
		paths = append(paths, configPath)
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so log to file only
	config.Logging.Output = []string{"file"}
	config.Logging.File = "stockdash-mcp.log"
	config.Scheduler.Enabled = false
	logger := common.InitLogger(config)

	application, err := app.New(config, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"stockdash",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Market data tools
	mcpServer.AddTool(createGetStockInfoTool(), handleGetStockInfo(application.StockService, logger))
	mcpServer.AddTool(createGetValueAnalysisTool(), handleGetValueAnalysis(application.StockService, logger))
	mcpServer.AddTool(createGetCompanyDetailTool(), handleGetCompanyDetail(application.StockService, logger))
	mcpServer.AddTool(createGetTopHoldersTool(), handleGetTopHolders(application.StockService, logger))
	mcpServer.AddTool(createGetIndexInfoTool(), handleGetIndexInfo(application.StockService, logger))

	// Watchlist and analysis tools
	mcpServer.AddTool(createGetWatchlistTool(), handleGetWatchlist(application.WatchlistService, logger))
	mcpServer.AddTool(createAnalyzeStockTool(), handleAnalyzeStock(application.AnalysisService, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error().Err(err).Msg("MCP server failed")
		os.Exit(1)
	}
}
