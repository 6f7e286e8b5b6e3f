// Package watchlist maintains the watchlist document and its target market-value bands.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/models"
)

// StockLookup is the part of the stock service the watchlist view needs.
type StockLookup interface {
	PeekStockInfo(ctx context.Context, code string) (*models.StockResponse, error)
	StockName(ctx context.Context, code string) (string, error)
	InvalidateSnapshot(ctx context.Context, code string) error
}

// targetInput is validated before any mutation.
type targetInput struct {
	Code string   `validate:"required,len=6,numeric"`
	Min  *float64 `validate:"omitempty,gte=0"`
	Max  *float64 `validate:"omitempty,gte=0"`
}

// Service implements interfaces.WatchlistService. It owns the in-memory copy of
// the document; every mutation is flushed before it returns.
type Service struct {
	storage  interfaces.WatchlistStorage
	stocks   StockLookup
	validate *validator.Validate
	logger   arbor.ILogger

	mu      sync.Mutex
	entries map[string]models.WatchTarget
	loaded  bool
}

// NewService creates the watchlist service. Call Load before use; methods load lazily otherwise.
func NewService(storage interfaces.WatchlistStorage, stocks StockLookup, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		stocks:   stocks,
		validate: validator.New(),
		logger:   logger,
		entries:  map[string]models.WatchTarget{},
	}
}

// Load reads the document from storage, replacing the in-memory copy.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Service) loadLocked(ctx context.Context) error {
	entries, err := s.storage.Load(ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = map[string]models.WatchTarget{}
	}
	for code, target := range entries {
		// A watched code always carries a target object.
		if target.TargetMarketValue == nil {
			target.TargetMarketValue = &models.MarketValueTarget{}
			entries[code] = target
		}
	}
	s.entries = entries
	s.loaded = true
	s.logger.Debug().Int("entries", len(entries)).Msg("Watchlist loaded")
	return nil
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

// Flush writes the in-memory copy to storage.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Save(ctx, s.entries)
}

// Codes returns the watched codes in sorted order.
func (s *Service) Codes(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.sortedCodesLocked(), nil
}

func (s *Service) sortedCodesLocked() []string {
	codes := make([]string, 0, len(s.entries))
	for code := range s.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Target returns the target for code, or an empty target when code is not watched.
func (s *Service) Target(ctx context.Context, code string) (models.WatchTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return models.WatchTarget{}, err
	}
	target, ok := s.entries[code]
	if !ok {
		return models.WatchTarget{}, nil
	}
	return cloneTarget(target), nil
}

// List returns every watched code: today's snapshot when one exists, otherwise
// code and name. Codes that fail are logged and skipped.
func (s *Service) List(ctx context.Context) ([]models.WatchlistEntry, error) {
	s.mu.Lock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	codes := s.sortedCodesLocked()
	targets := make(map[string]models.WatchTarget, len(codes))
	for _, code := range codes {
		targets[code] = cloneTarget(s.entries[code])
	}
	s.mu.Unlock()

	result := make([]models.WatchlistEntry, 0, len(codes))
	for _, code := range codes {
		entry := models.WatchlistEntry{Code: code, Targets: targets[code]}

		snapshot, err := s.stocks.PeekStockInfo(ctx, code)
		if err != nil {
			s.logger.Warn().Err(err).Str("code", code).Msg("Snapshot lookup failed")
		}
		if snapshot != nil {
			entry.Snapshot = snapshot
			result = append(result, entry)
			continue
		}

		name, err := s.stocks.StockName(ctx, code)
		if err != nil {
			s.logger.Warn().Err(err).Str("code", code).Msg("Skipping watchlist entry")
			continue
		}
		entry.Summary = models.StockSummary{Code: code, Name: name}
		result = append(result, entry)
	}
	return result, nil
}

// Add watches code with the given band, replacing any existing band.
func (s *Service) Add(ctx context.Context, code string, min, max *float64) error {
	if err := s.check(code, min, max); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	next := maps.Clone(s.entries)
	next[code] = newTarget(min, max)
	if err := s.commitLocked(ctx, next); err != nil {
		return err
	}
	s.logger.Info().Str("code", code).Msg("Added to watchlist")
	return nil
}

// UpdateTarget replaces the band of a watched code.
func (s *Service) UpdateTarget(ctx context.Context, code string, min, max *float64) error {
	if err := s.check(code, min, max); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if _, ok := s.entries[code]; !ok {
		return common.DataUnavailable("股票不在自选列表中")
	}
	next := maps.Clone(s.entries)
	next[code] = newTarget(min, max)
	if err := s.commitLocked(ctx, next); err != nil {
		return err
	}
	s.logger.Info().Str("code", code).Msg("Watchlist target updated")
	return nil
}

// Remove stops watching code and drops its snapshots. Removing an unwatched code is a no-op.
func (s *Service) Remove(ctx context.Context, code string) error {
	s.mu.Lock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	_, ok := s.entries[code]
	if ok {
		next := maps.Clone(s.entries)
		delete(next, code)
		if err := s.commitLocked(ctx, next); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	if err := s.stocks.InvalidateSnapshot(ctx, code); err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("Failed to invalidate snapshot")
	}
	s.logger.Info().Str("code", code).Msg("Removed from watchlist")
	return nil
}

// commitLocked saves next and only then makes it the in-memory copy.
func (s *Service) commitLocked(ctx context.Context, next map[string]models.WatchTarget) error {
	if err := s.storage.Save(ctx, next); err != nil {
		return err
	}
	s.entries = next
	return nil
}

func (s *Service) check(code string, min, max *float64) error {
	if err := s.validate.Struct(targetInput{Code: code, Min: min, Max: max}); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Field() != "Code" {
			return common.InvalidFormat("目标市值不能为负数")
		}
		return common.InvalidFormat("股票代码格式错误")
	}
	if min != nil && max != nil && *min > *max {
		return common.InvalidFormat(fmt.Sprintf("目标市值下限(%g)不能大于上限(%g)", *min, *max))
	}
	return nil
}

func newTarget(min, max *float64) models.WatchTarget {
	t := &models.MarketValueTarget{}
	if min != nil {
		t.Min = common.Float64(*min)
	}
	if max != nil {
		t.Max = common.Float64(*max)
	}
	return models.WatchTarget{TargetMarketValue: t}
}

func cloneTarget(t models.WatchTarget) models.WatchTarget {
	if t.TargetMarketValue == nil {
		return t
	}
	return newTarget(t.TargetMarketValue.Min, t.TargetMarketValue.Max)
}
