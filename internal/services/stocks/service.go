// Package stocks assembles canonical stock records from the market-data provider
// and keeps them in the daily snapshot cache.
package stocks

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/models"
	"github.com/ternarybob/stockdash/internal/tushare"
)

// Service implements interfaces.StockService.
type Service struct {
	provider interfaces.MarketDataProvider
	cache    *SnapshotCache
	clock    common.Clock
	locks    *common.KeyedMutex
	logger   arbor.ILogger

	mu      sync.RWMutex
	targets interfaces.TargetSource
}

// NewService creates the stock data assembler. A nil clock means the system clock.
func NewService(provider interfaces.MarketDataProvider, snapshots interfaces.SnapshotStorage, clock common.Clock, logger arbor.ILogger) *Service {
	if clock == nil {
		clock = common.SystemClock
	}
	return &Service{
		provider: provider,
		cache:    NewSnapshotCache(snapshots, clock, logger),
		clock:    clock,
		locks:    common.NewKeyedMutex(),
		logger:   logger,
	}
}

// SetTargetSource wires the watchlist in after construction; the watchlist
// itself depends on this service.
func (s *Service) SetTargetSource(targets interfaces.TargetSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = targets
}

// targetFor returns the watchlist target for code, or an empty target.
func (s *Service) targetFor(ctx context.Context, code string) models.WatchTarget {
	s.mu.RLock()
	targets := s.targets
	s.mu.RUnlock()
	if targets == nil {
		return models.WatchTarget{}
	}
	target, err := targets.Target(ctx, code)
	if err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("Failed to read watchlist target")
		return models.WatchTarget{}
	}
	return target
}

// InvalidateSnapshot drops the cached snapshots of code. It holds the lock of
// every snapshot kind so a concurrent fetch cannot write one back underneath it.
func (s *Service) InvalidateSnapshot(ctx context.Context, code string) error {
	unlockStock := s.locks.Lock(code)
	defer unlockStock()
	unlockValue := s.locks.Lock(valueLockKey(code))
	defer unlockValue()
	return s.cache.Invalidate(ctx, code)
}

// Snapshots lists every stored snapshot, including stale ones.
func (s *Service) Snapshots(ctx context.Context) ([]*models.SnapshotRecord, error) {
	return s.cache.List(ctx)
}

func valueLockKey(code string) string {
	return string(models.SnapshotValue) + ":" + code
}

// StockName looks up the display name of a stock.
func (s *Service) StockName(ctx context.Context, code string) (string, error) {
	sc, err := common.ResolveStockCode(code)
	if err != nil {
		return "", err
	}
	return s.stockName(ctx, sc)
}

func (s *Service) stockName(ctx context.Context, sc common.StockCode) (string, error) {
	rows, err := s.provider.StockBasic(ctx, sc.TSCode(), []string{"name"})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		s.logger.Warn().Str("ts_code", sc.TSCode()).Msg("stock_basic returned no name")
		return "", nil
	}
	return rows[0].String("name"), nil
}

// latestFina fetches the fundamental-indicator row for the current-date period,
// falling back to the most recent row. It returns nil when neither exists.
func (s *Service) latestFina(ctx context.Context, sc common.StockCode, fields []string) (*tushare.Row, error) {
	rows, err := s.provider.FinaIndicator(ctx, sc.TSCode(), common.ProviderDate(s.clock()), fields, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		s.logger.Debug().Str("ts_code", sc.TSCode()).Msg("No fundamentals for current period, using latest")
		rows, err = s.provider.FinaIndicator(ctx, sc.TSCode(), "", fields, 1)
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// latestDaily fetches today's trade row, falling back to the most recent one.
func (s *Service) latestDaily(ctx context.Context, sc common.StockCode) (*tushare.Row, error) {
	today := common.ProviderDate(s.clock())
	rows, err := s.provider.Daily(ctx, sc.TSCode(), today, today, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		rows, err = s.provider.Daily(ctx, sc.TSCode(), "", "", 1)
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// display rounds a display-mode value, zero when absent.
func display(v *float64, places int) float64 {
	return common.Round(common.ValueOrZero(v), places)
}
