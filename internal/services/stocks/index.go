package stocks

import (
	"context"

	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
)

// MarketIndex is one index shown on the overview.
type MarketIndex struct {
	TSCode string
	Name   string
}

// MarketIndices is the fixed overview list, in display order.
var MarketIndices = []MarketIndex{
	{"000001.SH", "上证指数"},
	{"399001.SZ", "深证成指"},
	{"399006.SZ", "创业板指"},
	{"000016.SH", "上证50"},
	{"000300.SH", "沪深300"},
	{"000905.SH", "中证500"},
	{"000852.SH", "中证1000"},
	{"899050.BJ", "北证50"},
}

// klineDays is the number of recent bars attached to each index.
const klineDays = 20

// GetIndexInfo returns the overview indices. An index that fails is logged and skipped.
func (s *Service) GetIndexInfo(ctx context.Context) ([]models.IndexQuote, error) {
	result := make([]models.IndexQuote, 0, len(MarketIndices))
	for _, idx := range MarketIndices {
		rows, err := s.provider.IndexDaily(ctx, idx.TSCode, klineDays)
		if err != nil {
			s.logger.Warn().Err(err).Str("ts_code", idx.TSCode).Msg("Failed to fetch index data")
			continue
		}
		if len(rows) == 0 {
			s.logger.Warn().Str("ts_code", idx.TSCode).Msg("No index data")
			continue
		}

		quote := models.IndexQuote{
			Code:      idx.TSCode,
			Name:      idx.Name,
			Price:     common.ValueOrZero(rows[0].Float("close")),
			Change:    common.ValueOrZero(rows[0].Float("pct_chg")),
			KLineData: make([]models.KLine, 0, len(rows)),
		}
		for _, row := range rows {
			quote.KLineData = append(quote.KLineData, models.KLine{
				Date:  row.String("trade_date"),
				Open:  common.ValueOrZero(row.Float("open")),
				Close: common.ValueOrZero(row.Float("close")),
				High:  common.ValueOrZero(row.Float("high")),
				Low:   common.ValueOrZero(row.Float("low")),
				Vol:   common.ValueOrZero(row.Float("vol")),
			})
		}
		result = append(result, quote)
	}
	return result, nil
}
