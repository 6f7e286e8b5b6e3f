package stocks

import (
	"context"
	"sort"

	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
)

// GetTopHolders returns the top-10 shareholders of the latest report period,
// largest holding first.
func (s *Service) GetTopHolders(ctx context.Context, code string) (*models.TopHolders, error) {
	sc, err := common.ResolveStockCode(code)
	if err != nil {
		return nil, err
	}

	rows, err := s.provider.Top10Holders(ctx, sc.TSCode(), 10)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.DataUnavailable("暂无股东数据")
	}

	latest := ""
	for _, row := range rows {
		if d := row.String("end_date"); d > latest {
			latest = d
		}
	}

	result := &models.TopHolders{
		Holders:    []models.Holder{},
		ReportDate: latest,
	}
	for _, row := range rows {
		if row.String("end_date") != latest {
			continue
		}
		h := models.Holder{
			HolderName: row.String("holder_name"),
			HoldAmount: common.ValueOrZero(row.Float("hold_amount")),
			HoldRatio:  common.ValueOrZero(row.Float("hold_ratio")),
			HoldChange: common.ValueOrZero(row.Float("hold_change")),
			AnnDate:    row.String("ann_date"),
			EndDate:    latest,
		}
		result.Holders = append(result.Holders, h)
		result.TotalRatio += h.HoldRatio
	}

	sort.SliceStable(result.Holders, func(i, j int) bool {
		return result.Holders[i].HoldRatio > result.Holders[j].HoldRatio
	})

	return result, nil
}
