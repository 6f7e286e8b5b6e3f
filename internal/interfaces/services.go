package interfaces

import (
	"context"

	"github.com/ternarybob/stockdash/internal/models"
)

// StockService assembles canonical stock records from the market-data provider.
type StockService interface {
	GetStockInfo(ctx context.Context, code string, forceRefresh bool) (*models.StockResponse, error)
	GetValueAnalysisData(ctx context.Context, code string, forceRefresh bool) (*models.ValueAnalysisData, error)
	GetCompanyDetail(ctx context.Context, code string) (*models.CompanyDetail, error)
	GetTopHolders(ctx context.Context, code string) (*models.TopHolders, error)
	GetIndexInfo(ctx context.Context) ([]models.IndexQuote, error)
	GetForecast(ctx context.Context, code string) (*models.PerformanceForecast, error)

	// PeekStockInfo returns today's cached snapshot without fetching, or nil.
	PeekStockInfo(ctx context.Context, code string) (*models.StockResponse, error)
	// StockName looks up the display name only.
	StockName(ctx context.Context, code string) (string, error)
	InvalidateSnapshot(ctx context.Context, code string) error
}

// TargetSource answers watchlist target lookups for the stock assembler.
type TargetSource interface {
	Target(ctx context.Context, code string) (models.WatchTarget, error)
}

// WatchlistService maintains the watchlist and its target market-value bands.
type WatchlistService interface {
	TargetSource
	List(ctx context.Context) ([]models.WatchlistEntry, error)
	Codes(ctx context.Context) ([]string, error)
	Add(ctx context.Context, code string, min, max *float64) error
	UpdateTarget(ctx context.Context, code string, min, max *float64) error
	Remove(ctx context.Context, code string) error
}

// AnalysisService runs one analysis track for one stock.
type AnalysisService interface {
	Analyze(ctx context.Context, track models.Track, code string, forceRefresh bool) (*models.AnalysisResult, error)
}
