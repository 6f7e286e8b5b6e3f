package models

// KLine is one daily bar of an index.
type KLine struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	Close float64 `json:"close"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Vol   float64 `json:"vol"`
}

// IndexQuote is the latest close of a market index plus its recent bars.
// Change is pct_chg as the provider reports it (percent, not a fraction).
type IndexQuote struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	KLineData []KLine `json:"kline_data"`
}
