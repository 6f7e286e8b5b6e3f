package models

// CompanyBasicInfo merges stock_basic and stock_company. Every stock_company
// field defaults to empty/zero when the provider has no row.
type CompanyBasicInfo struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Industry      string  `json:"industry"`
	ListDate      string  `json:"list_date"`
	Area          string  `json:"area"`
	ComName       string  `json:"com_name"`
	Chairman      string  `json:"chairman"`
	Manager       string  `json:"manager"`
	Secretary     string  `json:"secretary"`
	RegCapital    float64 `json:"reg_capital"` // 万元
	SetupDate     string  `json:"setup_date"`
	Province      string  `json:"province"`
	City          string  `json:"city"`
	Introduction  string  `json:"introduction"`
	Website       string  `json:"website"`
	Email         string  `json:"email"`
	Office        string  `json:"office"`
	Employees     int64   `json:"employees"`
	MainBusiness  string  `json:"main_business"`
	BusinessScope string  `json:"business_scope"`
}

// CompanyFinancialInfo carries fina_indicator values in provider units
// (percent-coded where Tushare is), zero-filled. Only dividend_yield is a fraction.
type CompanyFinancialInfo struct {
	PERatio       float64 `json:"pe_ratio"`
	PBRatio       float64 `json:"pb_ratio"`
	PSRatio       float64 `json:"ps_ratio"`
	DividendYield float64 `json:"dividend_yield"`

	ROE               float64 `json:"roe"`
	ROEDt             float64 `json:"roe_dt"`
	ROA               float64 `json:"roa"`
	GrossProfitMargin float64 `json:"grossprofit_margin"`
	NetProfitMargin   float64 `json:"netprofit_margin"`

	NetProfitYoY   float64 `json:"netprofit_yoy"`
	DtNetProfitYoY float64 `json:"dt_netprofit_yoy"`
	TrYoY          float64 `json:"tr_yoy"`
	OrYoY          float64 `json:"or_yoy"`

	AssetsTurn float64 `json:"assets_turn"`
	InvTurn    float64 `json:"inv_turn"`
	ArTurn     float64 `json:"ar_turn"`
	CaTurn     float64 `json:"ca_turn"`

	CurrentRatio float64 `json:"current_ratio"`
	QuickRatio   float64 `json:"quick_ratio"`
	DebtToAssets float64 `json:"debt_to_assets"`
	DebtToEqt    float64 `json:"debt_to_eqt"`

	OCFToOr       float64 `json:"ocf_to_or"`
	OCFToOpIncome float64 `json:"ocf_to_opincome"`
	OCFYoY        float64 `json:"ocf_yoy"`

	EPS        float64 `json:"eps"`
	DtEPS      float64 `json:"dt_eps"`
	BPS        float64 `json:"bps"`
	OCFPS      float64 `json:"ocfps"`
	RetainedPS float64 `json:"retainedps"`
	CFPS       float64 `json:"cfps"`
	EBITPS     float64 `json:"ebit_ps"`
	FCFFPS     float64 `json:"fcff_ps"`
	FCFEPS     float64 `json:"fcfe_ps"`
}

// CompanyDetail is the company profile used by the dashboard and the
// philosophical and multi-expert analysis tracks.
type CompanyDetail struct {
	BasicInfo     CompanyBasicInfo     `json:"basic_info"`
	FinancialInfo CompanyFinancialInfo `json:"financial_info"`
}

// Holder is one top-10 shareholder row.
type Holder struct {
	HolderName string  `json:"holder_name"`
	HoldAmount float64 `json:"hold_amount"`
	HoldRatio  float64 `json:"hold_ratio"`
	HoldChange float64 `json:"hold_change"`
	AnnDate    string  `json:"ann_date"`
	EndDate    string  `json:"end_date"`
}

// TopHolders is the latest reporting period of the top-10 shareholder list.
type TopHolders struct {
	Holders    []Holder `json:"holders"`
	TotalRatio float64  `json:"total_ratio"`
	ReportDate string   `json:"report_date"`
}

// Forecast is one performance forecast (业绩预告) announcement. Absent numbers are nil.
type Forecast struct {
	AnnDate      string   `json:"ann_date"`
	EndDate      string   `json:"end_date"`
	Type         string   `json:"type"`
	PChangeMin   *float64 `json:"p_change_min"`
	PChangeMax   *float64 `json:"p_change_max"`
	NetProfitMin *float64 `json:"net_profit_min"`
	NetProfitMax *float64 `json:"net_profit_max"`
	Summary      string   `json:"summary"`
	ChangeReason string   `json:"change_reason"`
}

// PerformanceForecast groups forecasts for one code, newest first.
type PerformanceForecast struct {
	Code      string     `json:"code"`
	Forecasts []Forecast `json:"forecasts"`
}
