package tushare

import (
	"context"
	"strconv"
)

// Field lists requested from each API.
var (
	StockInfoFinaFields = []string{
		"roe", "grossprofit_margin", "netprofit_margin", "debt_to_assets",
		"op_income_yoy", "netprofit_yoy", "bps", "ocfps",
	}

	ValueFinaFields = []string{
		"roe", "roe_dt", "roa", "grossprofit_margin", "netprofit_margin",
		"netprofit_yoy", "dt_netprofit_yoy", "tr_yoy", "or_yoy",
		"assets_turn", "inv_turn", "ar_turn", "ca_turn",
		"current_ratio", "quick_ratio", "debt_to_assets", "debt_to_eqt",
		"ocf_to_or", "ocf_to_opincome", "ocf_yoy",
		"eps", "dt_eps", "bps", "cfps", "ocfps", "retainedps", "ebit_ps",
	}

	CompanyFinaFields = append(append([]string{}, ValueFinaFields...), "fcff_ps", "fcfe_ps")
)

func limitParam(limit int) string {
	if limit <= 0 {
		return ""
	}
	return strconv.Itoa(limit)
}

// DailyBasic returns daily valuation indicators, newest first.
func (c *Client) DailyBasic(ctx context.Context, tsCode string, fields []string, limit int) ([]Row, error) {
	return c.Query(ctx, "daily_basic", Params{"ts_code": tsCode, "limit": limitParam(limit)}, fields...)
}

// StockBasic returns listing metadata (name, industry, area, list_date).
func (c *Client) StockBasic(ctx context.Context, tsCode string, fields []string) ([]Row, error) {
	return c.Query(ctx, "stock_basic", Params{"ts_code": tsCode}, fields...)
}

// FinaIndicator returns fundamental indicator rows. period is YYYYMMDD, or empty for the latest rows.
func (c *Client) FinaIndicator(ctx context.Context, tsCode, period string, fields []string, limit int) ([]Row, error) {
	return c.Query(ctx, "fina_indicator", Params{
		"ts_code": tsCode,
		"period":  period,
		"limit":   limitParam(limit),
	}, fields...)
}

// Daily returns daily trade bars. Dates are YYYYMMDD and may be empty.
func (c *Client) Daily(ctx context.Context, tsCode, startDate, endDate string, limit int) ([]Row, error) {
	return c.Query(ctx, "daily", Params{
		"ts_code":    tsCode,
		"start_date": startDate,
		"end_date":   endDate,
		"limit":      limitParam(limit),
	})
}

// StockCompany returns the company profile.
func (c *Client) StockCompany(ctx context.Context, tsCode string) ([]Row, error) {
	return c.Query(ctx, "stock_company", Params{"ts_code": tsCode})
}

// Top10Holders returns top-ten shareholder rows across recent report periods.
func (c *Client) Top10Holders(ctx context.Context, tsCode string, limit int) ([]Row, error) {
	return c.Query(ctx, "top10_holders", Params{"ts_code": tsCode, "limit": limitParam(limit)})
}

// IndexDaily returns daily index bars, newest first.
func (c *Client) IndexDaily(ctx context.Context, tsCode string, limit int) ([]Row, error) {
	return c.Query(ctx, "index_daily", Params{"ts_code": tsCode, "limit": limitParam(limit)})
}

// Forecast returns performance forecast announcements, newest first.
func (c *Client) Forecast(ctx context.Context, tsCode string, limit int) ([]Row, error) {
	return c.Query(ctx, "forecast", Params{"ts_code": tsCode, "limit": limitParam(limit)})
}
