package stocks

import (
	"context"
	"time"

	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
	"github.com/ternarybob/stockdash/internal/tushare"
)

var valueBasicFields = []string{"pe", "pb", "ps", "dv_ratio", "total_mv", "circ_mv", "turnover_rate"}

// GetValueAnalysisData returns the analysis-path record of code. Absent provider
// values stay nil (AnalysisMode) and nothing is rounded.
func (s *Service) GetValueAnalysisData(ctx context.Context, code string, forceRefresh bool) (*models.ValueAnalysisData, error) {
	sc, err := common.ResolveStockCode(code)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(valueLockKey(sc.Code))
	defer unlock()

	if !forceRefresh {
		var cached models.ValueAnalysisData
		hit, err := s.cache.Get(ctx, models.SnapshotValue, sc.Code, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("code", sc.Code).Msg("Snapshot read failed, refetching")
		}
		if hit {
			cached.StockInfo.FromCache = true
			return &cached, nil
		}
	}

	start := time.Now()
	data, err := s.fetchValueAnalysisData(ctx, sc)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, models.SnapshotValue, sc.Code, data); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("code", sc.Code).
		Bool("force_refresh", forceRefresh).
		Dur("duration", time.Since(start)).
		Str("trace_id", common.TraceID(ctx)).
		Msg("Value analysis data fetched")

	return data, nil
}

func (s *Service) fetchValueAnalysisData(ctx context.Context, sc common.StockCode) (*models.ValueAnalysisData, error) {
	basics, err := s.provider.DailyBasic(ctx, sc.TSCode(), valueBasicFields, 1)
	if err != nil {
		return nil, err
	}
	if len(basics) == 0 {
		return nil, common.DataUnavailable("无法获取股票估值数据")
	}

	finas, err := s.provider.FinaIndicator(ctx, sc.TSCode(), "", tushare.ValueFinaFields, 1)
	if err != nil {
		return nil, err
	}
	if len(finas) == 0 {
		return nil, common.DataUnavailable("无法获取财务指标数据")
	}

	dailies, err := s.provider.Daily(ctx, sc.TSCode(), "", "", 1)
	if err != nil {
		return nil, err
	}
	if len(dailies) == 0 {
		return nil, common.DataUnavailable("无法获取股票行情数据")
	}

	name, err := s.stockName(ctx, sc)
	if err != nil {
		return nil, err
	}

	return buildValueAnalysisData(sc.Code, name, basics[0], finas[0], dailies[0]), nil
}

// buildValueAnalysisData normalizes provider rows in AnalysisMode.
func buildValueAnalysisData(code, name string, basic, fina, daily tushare.Row) *models.ValueAnalysisData {
	m := common.AnalysisMode

	total := m.Decimal(basic.Float("total_mv"), common.TenThousandToHundredMillion)
	circ := m.Decimal(basic.Float("circ_mv"), common.TenThousandToHundredMillion)
	var circRatio *float64
	if total != nil && circ != nil && *total != 0 {
		circRatio = common.Float64(*circ / *total)
	}

	return &models.ValueAnalysisData{
		StockInfo: models.ValueStockInfo{
			Code:          code,
			Name:          name,
			CurrentPrice:  m.Plain(daily.Float("close")),
			TradeDate:     daily.String("trade_date"),
			TurnoverRatio: m.Fraction(basic.Float("turnover_rate"), true),
		},
		Valuation: models.Valuation{
			PERatio:                m.Plain(basic.Float("pe")),
			PBRatio:                m.Plain(basic.Float("pb")),
			PSRatio:                m.Plain(basic.Float("ps")),
			DividendYield:          m.Fraction(basic.Float("dv_ratio"), true),
			TotalMarketValue:       total,
			CirculatingMarketValue: circ,
			CirculatingRatio:       circRatio,
		},
		Profitability: models.Profitability{
			ROE:         m.Fraction(fina.Float("roe"), true),
			DeductedROE: m.Fraction(fina.Float("roe_dt"), true),
			ROA:         m.Fraction(fina.Float("roa"), true),
			GrossMargin: m.Fraction(fina.Float("grossprofit_margin"), true),
			NetMargin:   m.Fraction(fina.Float("netprofit_margin"), true),
		},
		Growth: models.Growth{
			NetProfitGrowth:         m.Fraction(fina.Float("netprofit_yoy"), true),
			DeductedNetProfitGrowth: m.Fraction(fina.Float("dt_netprofit_yoy"), true),
			RevenueGrowth:           m.Fraction(fina.Float("tr_yoy"), true),
			OperatingRevenueGrowth:  m.Fraction(fina.Float("or_yoy"), true),
		},
		Operation: models.Operation{
			AssetTurnover:        m.Plain(fina.Float("assets_turn")),
			InventoryTurnover:    m.Plain(fina.Float("inv_turn")),
			ReceivablesTurnover:  m.Plain(fina.Float("ar_turn")),
			CurrentAssetTurnover: m.Plain(fina.Float("ca_turn")),
		},
		Solvency: models.Solvency{
			CurrentRatio: m.Plain(fina.Float("current_ratio")),
			QuickRatio:   m.Plain(fina.Float("quick_ratio")),
			DebtToAssets: m.Fraction(fina.Float("debt_to_assets"), true),
			EquityRatio:  m.Plain(fina.Float("debt_to_eqt")),
		},
		CashFlow: models.CashFlow{
			OCFToRevenue:         m.Fraction(fina.Float("ocf_to_or"), true),
			OCFToOperatingProfit: m.Fraction(fina.Float("ocf_to_opincome"), true),
			OCFGrowth:            m.Fraction(fina.Float("ocf_yoy"), true),
		},
		PerShare: models.PerShare{
			EPS:         m.Plain(fina.Float("eps")),
			DeductedEPS: m.Plain(fina.Float("dt_eps")),
			BPS:         m.Plain(fina.Float("bps")),
			CFPS:        m.Plain(fina.Float("cfps")),
			OCFPS:       m.Plain(fina.Float("ocfps")),
			RetainedEPS: m.Plain(fina.Float("retainedps")),
			EBITPS:      m.Plain(fina.Float("ebit_ps")),
		},
	}
}
