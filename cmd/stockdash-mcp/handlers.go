package main

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/models"
)

// jsonResult renders v as indented JSON text content.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// failed logs err and returns it as a tool error.
func failed(logger arbor.ILogger, tool string, err error) (*mcp.CallToolResult, error) {
	logger.Warn().Str("tool", tool).Err(err).Msg("Tool call failed")
	return mcp.NewToolResultError(common.ErrorMessage(err)), nil
}

// requireCode reads the code argument, accepting suffixed forms such as "600519.SH".
func requireCode(request mcp.CallToolRequest) (string, bool) {
	code, err := request.RequireString("code")
	if err != nil {
		return "", false
	}
	code = common.NormalizeStockCode(code)
	return code, code != ""
}

// codeTool adapts a per-code lookup into a tool handler.
func codeTool[T any](tool string, logger arbor.ILogger, fetch func(ctx context.Context, code string, request mcp.CallToolRequest) (T, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, ok := requireCode(request)
		if !ok {
			return mcp.NewToolResultError("Error: code parameter is required"), nil
		}
		ctx = common.WithTraceID(ctx, common.NewTraceID())

		v, err := fetch(ctx, code, request)
		if err != nil {
			return failed(logger, tool, err)
		}
		return jsonResult(v)
	}
}

// handleGetStockInfo implements the get_stock_info tool
func handleGetStockInfo(stocks interfaces.StockService, logger arbor.ILogger) server.ToolHandlerFunc {
	return codeTool("get_stock_info", logger, func(ctx context.Context, code string, request mcp.CallToolRequest) (*models.StockResponse, error) {
		return stocks.GetStockInfo(ctx, code, request.GetBool("force_refresh", false))
	})
}

// handleGetValueAnalysis implements the get_value_analysis tool
func handleGetValueAnalysis(stocks interfaces.StockService, logger arbor.ILogger) server.ToolHandlerFunc {
	return codeTool("get_value_analysis", logger, func(ctx context.Context, code string, _ mcp.CallToolRequest) (*models.ValueAnalysisData, error) {
		return stocks.GetValueAnalysisData(ctx, code, false)
	})
}

// handleGetCompanyDetail implements the get_company_detail tool
func handleGetCompanyDetail(stocks interfaces.StockService, logger arbor.ILogger) server.ToolHandlerFunc {
	return codeTool("get_company_detail", logger, func(ctx context.Context, code string, _ mcp.CallToolRequest) (*models.CompanyDetail, error) {
		return stocks.GetCompanyDetail(ctx, code)
	})
}

// handleGetTopHolders implements the get_top_holders tool
func handleGetTopHolders(stocks interfaces.StockService, logger arbor.ILogger) server.ToolHandlerFunc {
	return codeTool("get_top_holders", logger, func(ctx context.Context, code string, _ mcp.CallToolRequest) (*models.TopHolders, error) {
		return stocks.GetTopHolders(ctx, code)
	})
}

// handleGetIndexInfo implements the get_index_info tool
func handleGetIndexInfo(stocks interfaces.StockService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		quotes, err := stocks.GetIndexInfo(ctx)
		if err != nil {
			return failed(logger, "get_index_info", err)
		}
		return jsonResult(quotes)
	}
}

// handleGetWatchlist implements the get_watchlist tool
func handleGetWatchlist(watchlist interfaces.WatchlistService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := watchlist.List(ctx)
		if err != nil {
			return failed(logger, "get_watchlist", err)
		}
		return jsonResult(entries)
	}
}

// handleAnalyzeStock implements the analyze_stock tool. The payload is
// returned as-is, including the error envelope for an unparseable reply.
func handleAnalyzeStock(analysis interfaces.AnalysisService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("track")
		if err != nil {
			return mcp.NewToolResultError("Error: track parameter is required"), nil
		}
		track, ok := models.ParseTrack(name)
		if !ok {
			return mcp.NewToolResultError("不支持的分析类型: " + name), nil
		}
		code, ok := requireCode(request)
		if !ok {
			return mcp.NewToolResultError("Error: code parameter is required"), nil
		}
		ctx = common.WithTraceID(ctx, common.NewTraceID())

		result, err := analysis.Analyze(ctx, track, code, request.GetBool("force_refresh", false))
		if err != nil {
			return failed(logger, "analyze_stock", err)
		}
		return mcp.NewToolResultText(string(result.Payload)), nil
	}
}
