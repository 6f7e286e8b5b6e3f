package stocks

import (
	"context"
	"time"

	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
	"github.com/ternarybob/stockdash/internal/tushare"
)

// GetStockInfo returns the dashboard view of code, from today's snapshot unless
// forceRefresh is set. A refresh always writes the new snapshot through.
func (s *Service) GetStockInfo(ctx context.Context, code string, forceRefresh bool) (*models.StockResponse, error) {
	sc, err := common.ResolveStockCode(code)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(sc.Code)
	defer unlock()

	if !forceRefresh {
		var cached models.StockResponse
		hit, err := s.cache.Get(ctx, models.SnapshotStock, sc.Code, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("code", sc.Code).Msg("Snapshot read failed, refetching")
		}
		if hit {
			cached.StockInfo.FromCache = true
			cached.Targets = s.targetFor(ctx, sc.Code)
			s.logger.Debug().Str("code", sc.Code).Str("trace_id", common.TraceID(ctx)).Msg("Stock info served from snapshot")
			return &cached, nil
		}
	}

	start := time.Now()
	info, err := s.fetchStockInfo(ctx, sc)
	if err != nil {
		return nil, err
	}

	resp := &models.StockResponse{
		StockInfo: *info,
		Targets:   s.targetFor(ctx, sc.Code),
	}
	if err := s.cache.Put(ctx, models.SnapshotStock, sc.Code, resp); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("code", sc.Code).
		Bool("force_refresh", forceRefresh).
		Dur("duration", time.Since(start)).
		Str("trace_id", common.TraceID(ctx)).
		Msg("Stock info fetched")

	return resp, nil
}

// PeekStockInfo returns today's snapshot of code without touching the provider, or nil.
func (s *Service) PeekStockInfo(ctx context.Context, code string) (*models.StockResponse, error) {
	var cached models.StockResponse
	hit, err := s.cache.Get(ctx, models.SnapshotStock, code, &cached)
	if err != nil || !hit {
		return nil, err
	}
	cached.StockInfo.FromCache = true
	return &cached, nil
}

func (s *Service) fetchStockInfo(ctx context.Context, sc common.StockCode) (*models.StockInfo, error) {
	basics, err := s.provider.DailyBasic(ctx, sc.TSCode(), []string{"ts_code", "total_mv"}, 1)
	if err != nil {
		return nil, err
	}
	if len(basics) == 0 {
		return nil, common.DataUnavailable("股票代码不存在")
	}

	name, err := s.stockName(ctx, sc)
	if err != nil {
		return nil, err
	}

	fina, err := s.latestFina(ctx, sc, tushare.StockInfoFinaFields)
	if err != nil {
		return nil, err
	}
	if fina == nil {
		// Fundamentals are optional here; every ratio zero-fills below.
		s.logger.Warn().Str("ts_code", sc.TSCode()).Msg("No fundamental indicators available")
		empty := tushare.NewRow(nil)
		fina = &empty
	}

	daily, err := s.latestDaily(ctx, sc)
	if err != nil {
		return nil, err
	}
	if daily == nil {
		return nil, common.DataUnavailable("无法获取股票行情数据")
	}

	ratios, err := s.provider.DailyBasic(ctx, sc.TSCode(), []string{"ts_code", "trade_date", "pe", "pb", "ps", "dv_ratio"}, 1)
	if err != nil {
		return nil, err
	}
	if len(ratios) == 0 {
		return nil, common.DataUnavailable("无法获取股票基础数据")
	}

	return buildStockInfo(sc.Code, name, basics[0], *fina, *daily, ratios[0]), nil
}

// buildStockInfo normalizes provider rows in DisplayMode: absent values become 0.
func buildStockInfo(code, name string, basic, fina, daily, ratios tushare.Row) *models.StockInfo {
	m := common.DisplayMode
	return &models.StockInfo{
		Code:              code,
		Name:              name,
		MarketValue:       display(m.Decimal(basic.Float("total_mv"), common.TenThousandToHundredMillion), common.PlacesDisplay),
		PERatio:           display(m.Plain(ratios.Float("pe")), common.PlacesDisplay),
		PBRatio:           display(m.Plain(ratios.Float("pb")), common.PlacesDisplay),
		PSRatio:           display(m.Plain(ratios.Float("ps")), common.PlacesDisplay),
		DividendYield:     display(m.Fraction(ratios.Float("dv_ratio"), true), common.PlacesRatio),
		Price:             display(m.Plain(daily.Float("close")), common.PlacesDisplay),
		ChangePercent:     display(m.Fraction(daily.Float("pct_chg"), true), common.PlacesRatio),
		ROE:               display(m.Fraction(fina.Float("roe"), true), common.PlacesRatio),
		GrossProfitMargin: display(m.Fraction(fina.Float("grossprofit_margin"), true), common.PlacesRatio),
		NetProfitMargin:   display(m.Fraction(fina.Float("netprofit_margin"), true), common.PlacesRatio),
		DebtToAssets:      display(m.Fraction(fina.Float("debt_to_assets"), true), common.PlacesRatio),
		RevenueYoY:        display(m.Fraction(fina.Float("op_income_yoy"), true), common.PlacesRatio),
		NetProfitYoY:      display(m.Fraction(fina.Float("netprofit_yoy"), true), common.PlacesRatio),
		BPS:               display(m.Plain(fina.Float("bps")), common.PlacesPerShare),
		OCFPS:             display(m.Plain(fina.Float("ocfps")), common.PlacesPerShare),
	}
}
