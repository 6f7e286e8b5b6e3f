package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func codeArgument() mcp.ToolOption {
	return mcp.WithString("code",
		mcp.Required(),
		mcp.Description("Six-digit A-share code, e.g. 600519 or 000001"),
	)
}

// createGetStockInfoTool returns the get_stock_info tool definition
func createGetStockInfoTool() mcp.Tool {
	return mcp.NewTool("get_stock_info",
		mcp.WithDescription("Today's valuation and fundamentals snapshot for one stock, with its watchlist target band"),
		codeArgument(),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Refetch instead of serving today's cached snapshot"),
		),
	)
}

// createGetValueAnalysisTool returns the get_value_analysis tool definition
func createGetValueAnalysisTool() mcp.Tool {
	return mcp.NewTool("get_value_analysis",
		mcp.WithDescription("Grouped financial indicators (valuation, profitability, growth, operation, solvency, cash flow, per share)"),
		codeArgument(),
	)
}

// createGetCompanyDetailTool returns the get_company_detail tool definition
func createGetCompanyDetailTool() mcp.Tool {
	return mcp.NewTool("get_company_detail",
		mcp.WithDescription("Company profile and latest financial summary"),
		codeArgument(),
	)
}

// createGetTopHoldersTool returns the get_top_holders tool definition
func createGetTopHoldersTool() mcp.Tool {
	return mcp.NewTool("get_top_holders",
		mcp.WithDescription("Top 10 shareholders for the latest reporting period"),
		codeArgument(),
	)
}

// createGetIndexInfoTool returns the get_index_info tool definition
func createGetIndexInfoTool() mcp.Tool {
	return mcp.NewTool("get_index_info",
		mcp.WithDescription("Latest close and recent daily bars of the major A-share indices"),
	)
}

// createGetWatchlistTool returns the get_watchlist tool definition
func createGetWatchlistTool() mcp.Tool {
	return mcp.NewTool("get_watchlist",
		mcp.WithDescription("Watched stocks with today's snapshot where one is cached"),
	)
}

// createAnalyzeStockTool returns the analyze_stock tool definition
func createAnalyzeStockTool() mcp.Tool {
	return mcp.NewTool("analyze_stock",
		mcp.WithDescription("Run an LLM analysis track. Results are cached per track and code until force_refresh"),
		mcp.WithString("track",
			mcp.Required(),
			mcp.Enum("value", "tao", "masters"),
			mcp.Description("value: value investing; tao: 道德经 perspective; masters: five value investors"),
		),
		codeArgument(),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Regenerate instead of returning the cached analysis"),
		),
	)
}
