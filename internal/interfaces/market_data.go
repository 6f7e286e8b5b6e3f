// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"

	"github.com/ternarybob/stockdash/internal/tushare"
)

// MarketDataProvider is the tabular market-data source. Rows may lack any
// field; callers read them through the null-safe tushare.Row accessors.
type MarketDataProvider interface {
	DailyBasic(ctx context.Context, tsCode string, fields []string, limit int) ([]tushare.Row, error)
	StockBasic(ctx context.Context, tsCode string, fields []string) ([]tushare.Row, error)
	FinaIndicator(ctx context.Context, tsCode, period string, fields []string, limit int) ([]tushare.Row, error)
	Daily(ctx context.Context, tsCode, startDate, endDate string, limit int) ([]tushare.Row, error)
	StockCompany(ctx context.Context, tsCode string) ([]tushare.Row, error)
	Top10Holders(ctx context.Context, tsCode string, limit int) ([]tushare.Row, error)
	IndexDaily(ctx context.Context, tsCode string, limit int) ([]tushare.Row, error)
	Forecast(ctx context.Context, tsCode string, limit int) ([]tushare.Row, error)
}
