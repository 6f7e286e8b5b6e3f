package scheduler

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/models"
)

// PrewarmJobName is the registered name of the snapshot prewarm job.
const PrewarmJobName = "watchlist_prewarm"

// CodeLister returns the watchlist codes in display order.
type CodeLister interface {
	Codes(ctx context.Context) ([]string, error)
}

// StockRefresher refetches and re-caches a stock snapshot.
type StockRefresher interface {
	GetStockInfo(ctx context.Context, code string, forceRefresh bool) (*models.StockResponse, error)
}

// NewPrewarmJob returns a handler that force-refreshes the daily snapshot of
// every watchlist code in turn. A failing code is logged and skipped; the job
// reports an error only after every code has been tried.
func NewPrewarmJob(watchlist CodeLister, stocks StockRefresher, logger arbor.ILogger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		codes, err := watchlist.Codes(ctx)
		if err != nil {
			return fmt.Errorf("failed to list watchlist codes: %w", err)
		}

		failed := 0
		for _, code := range codes {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := stocks.GetStockInfo(ctx, code, true); err != nil {
				failed++
				logger.Warn().Err(err).Str("code", code).Msg("Prewarm failed for code")
				continue
			}
			logger.Debug().Str("code", code).Msg("Snapshot prewarmed")
		}

		logger.Info().
			Int("codes", len(codes)).
			Int("failed", failed).
			Msg("Watchlist prewarm finished")

		if failed > 0 {
			return fmt.Errorf("%d of %d codes failed to refresh", failed, len(codes))
		}
		return nil
	}
}
