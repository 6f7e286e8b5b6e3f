// Package models holds the records exchanged between services, storage and handlers.
package models

import (
	"encoding/json"
)

// MarketValueTarget is an optional target band for total market value (亿元).
// Either bound may be nil.
type MarketValueTarget struct {
	Min *float64 `json:"min" yaml:"min"`
	Max *float64 `json:"max" yaml:"max"`
}

// WatchTarget is the per-code watchlist payload. A code present in the
// watchlist always carries a non-nil TargetMarketValue; an empty WatchTarget
// (code not watched) serialises as {}.
type WatchTarget struct {
	TargetMarketValue *MarketValueTarget `json:"target_market_value,omitempty" yaml:"target_market_value,omitempty"`
}

// IsEmpty reports whether no target is set.
func (t WatchTarget) IsEmpty() bool {
	return t.TargetMarketValue == nil
}

// StockInfo is the dashboard view of a stock. Rate-like fields are canonical
// fractions (0.0534, not 5.34); market value is in 亿元.
//
// Absent provider values are zero-filled here (DisplayMode), so a missing
// indicator cannot be told apart from a genuine zero.
type StockInfo struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	MarketValue       float64 `json:"market_value"`
	PERatio           float64 `json:"pe_ratio"`
	PBRatio           float64 `json:"pb_ratio"`
	PSRatio           float64 `json:"ps_ratio"`
	DividendYield     float64 `json:"dividend_yield"`
	Price             float64 `json:"price"`
	ChangePercent     float64 `json:"change_percent"`
	ROE               float64 `json:"roe"`
	GrossProfitMargin float64 `json:"gross_profit_margin"`
	NetProfitMargin   float64 `json:"net_profit_margin"`
	DebtToAssets      float64 `json:"debt_to_assets"`
	RevenueYoY        float64 `json:"revenue_yoy"`
	NetProfitYoY      float64 `json:"net_profit_yoy"`
	BPS               float64 `json:"bps"`
	OCFPS             float64 `json:"ocfps"`
	FromCache         bool    `json:"from_cache"`
}

// StockResponse is what get_stock_info returns and what the snapshot cache holds.
type StockResponse struct {
	StockInfo StockInfo   `json:"stock_info"`
	Targets   WatchTarget `json:"targets"`
}

// StockSummary is the minimal identity shown for a watchlist code without a fresh snapshot.
type StockSummary struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// WatchlistEntry is one row of the watchlist view: the full same-day snapshot
// when one exists, otherwise just code and name.
type WatchlistEntry struct {
	Code     string
	Summary  StockSummary
	Snapshot *StockResponse
	Targets  WatchTarget
}

// MarshalJSON renders {stock_info, targets} from whichever view is available.
func (e WatchlistEntry) MarshalJSON() ([]byte, error) {
	if e.Snapshot != nil {
		resp := *e.Snapshot
		resp.Targets = e.Targets
		return json.Marshal(resp)
	}
	return json.Marshal(struct {
		StockInfo StockSummary `json:"stock_info"`
		Targets   WatchTarget  `json:"targets"`
	}{e.Summary, e.Targets})
}
