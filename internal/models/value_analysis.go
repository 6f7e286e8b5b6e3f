package models

// Every numeric field below is nil when the provider lacks it (AnalysisMode).
// Nil must reach the prompt as "indicator unavailable", never as zero.

// ValueStockInfo identifies the stock and its last trade.
type ValueStockInfo struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	CurrentPrice  *float64 `json:"current_price"`
	TradeDate     string   `json:"trade_date"`
	TurnoverRatio *float64 `json:"turnover_ratio"`
	FromCache     bool     `json:"from_cache"`
}

// Valuation: multiples, dividend yield as a fraction, market values in 亿元.
type Valuation struct {
	PERatio                *float64 `json:"pe_ratio"`
	PBRatio                *float64 `json:"pb_ratio"`
	PSRatio                *float64 `json:"ps_ratio"`
	DividendYield          *float64 `json:"dividend_yield"`
	TotalMarketValue       *float64 `json:"total_market_value"`
	CirculatingMarketValue *float64 `json:"circulating_market_value"`
	CirculatingRatio       *float64 `json:"circulating_ratio"`
}

type Profitability struct {
	ROE         *float64 `json:"roe"`
	DeductedROE *float64 `json:"deducted_roe"`
	ROA         *float64 `json:"roa"`
	GrossMargin *float64 `json:"gross_margin"`
	NetMargin   *float64 `json:"net_margin"`
}

type Growth struct {
	NetProfitGrowth         *float64 `json:"net_profit_growth"`
	DeductedNetProfitGrowth *float64 `json:"deducted_net_profit_growth"`
	RevenueGrowth           *float64 `json:"revenue_growth"`
	OperatingRevenueGrowth  *float64 `json:"operating_revenue_growth"`
}

// Operation: turnover counts per year, not fractions.
type Operation struct {
	AssetTurnover        *float64 `json:"asset_turnover"`
	InventoryTurnover    *float64 `json:"inventory_turnover"`
	ReceivablesTurnover  *float64 `json:"receivables_turnover"`
	CurrentAssetTurnover *float64 `json:"current_asset_turnover"`
}

type Solvency struct {
	CurrentRatio *float64 `json:"current_ratio"`
	QuickRatio   *float64 `json:"quick_ratio"`
	DebtToAssets *float64 `json:"debt_to_assets"`
	EquityRatio  *float64 `json:"equity_ratio"`
}

type CashFlow struct {
	OCFToRevenue         *float64 `json:"ocf_to_revenue"`
	OCFToOperatingProfit *float64 `json:"ocf_to_operating_profit"`
	OCFGrowth            *float64 `json:"ocf_growth"`
}

// PerShare values are in 元.
type PerShare struct {
	EPS         *float64 `json:"eps"`
	DeductedEPS *float64 `json:"deducted_eps"`
	BPS         *float64 `json:"bps"`
	CFPS        *float64 `json:"cfps"`
	OCFPS       *float64 `json:"ocfps"`
	RetainedEPS *float64 `json:"retained_eps"`
	EBITPS      *float64 `json:"ebit_ps"`
}

// ValueAnalysisData is the analysis-path record: identity plus seven financial dimensions.
type ValueAnalysisData struct {
	StockInfo     ValueStockInfo `json:"stock_info"`
	Valuation     Valuation      `json:"valuation"`
	Profitability Profitability  `json:"profitability"`
	Growth        Growth         `json:"growth"`
	Operation     Operation      `json:"operation"`
	Solvency      Solvency       `json:"solvency"`
	CashFlow      CashFlow       `json:"cash_flow"`
	PerShare      PerShare       `json:"per_share"`
}

// Groups returns the top-level groups keyed by their JSON names, in declaration order.
func (v *ValueAnalysisData) Groups() []Group {
	return []Group{
		{"stock_info", v.StockInfo},
		{"valuation", v.Valuation},
		{"profitability", v.Profitability},
		{"growth", v.Growth},
		{"operation", v.Operation},
		{"solvency", v.Solvency},
		{"cash_flow", v.CashFlow},
		{"per_share", v.PerShare},
	}
}

// Groups returns basic_info and financial_info.
func (c *CompanyDetail) Groups() []Group {
	return []Group{
		{"basic_info", c.BasicInfo},
		{"financial_info", c.FinancialInfo},
	}
}

// Group is one named top-level section of an analysis input.
type Group struct {
	Name  string
	Value interface{}
}
