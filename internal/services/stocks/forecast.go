package stocks

import (
	"context"

	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
)

// GetForecast returns the performance forecasts (业绩预告) of code, newest first.
func (s *Service) GetForecast(ctx context.Context, code string) (*models.PerformanceForecast, error) {
	sc, err := common.ResolveStockCode(code)
	if err != nil {
		return nil, err
	}

	rows, err := s.provider.Forecast(ctx, sc.TSCode(), 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.DataUnavailable("暂无业绩预告数据")
	}

	result := &models.PerformanceForecast{
		Code:      sc.Code,
		Forecasts: make([]models.Forecast, 0, len(rows)),
	}
	for _, row := range rows {
		result.Forecasts = append(result.Forecasts, models.Forecast{
			AnnDate:      row.String("ann_date"),
			EndDate:      row.String("end_date"),
			Type:         row.String("type"),
			PChangeMin:   row.Float("p_change_min"),
			PChangeMax:   row.Float("p_change_max"),
			NetProfitMin: row.Float("net_profit_min"),
			NetProfitMax: row.Float("net_profit_max"),
			Summary:      row.String("summary"),
			ChangeReason: row.String("change_reason"),
		})
	}
	return result, nil
}
