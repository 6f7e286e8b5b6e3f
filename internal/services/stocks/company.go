package stocks

import (
	"context"
	"strings"

	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
	"github.com/ternarybob/stockdash/internal/tushare"
)

// GetCompanyDetail merges the listing record, the company profile, the latest
// fundamentals and the latest valuation ratios. Not cached.
func (s *Service) GetCompanyDetail(ctx context.Context, code string) (*models.CompanyDetail, error) {
	sc, err := common.ResolveStockCode(code)
	if err != nil {
		return nil, err
	}

	basics, err := s.provider.StockBasic(ctx, sc.TSCode(), []string{"name", "industry", "area", "list_date"})
	if err != nil {
		return nil, err
	}
	if len(basics) == 0 {
		return nil, common.DataUnavailable("无法获取公司信息")
	}

	// A missing profile leaves every profile field empty.
	profile := tushare.NewRow(nil)
	companies, err := s.provider.StockCompany(ctx, sc.TSCode())
	if err != nil {
		s.logger.Warn().Err(err).Str("ts_code", sc.TSCode()).Msg("Failed to fetch company profile")
	} else if len(companies) > 0 {
		profile = companies[0]
	}

	fina, err := s.latestFina(ctx, sc, tushare.CompanyFinaFields)
	if err != nil {
		return nil, err
	}
	if fina == nil {
		return nil, common.DataUnavailable("无法获取财务数据")
	}

	ratios := tushare.NewRow(nil)
	rows, err := s.provider.DailyBasic(ctx, sc.TSCode(), []string{"pe", "pb", "ps", "dv_ratio"}, 1)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Str("ts_code", sc.TSCode()).Msg("Failed to fetch valuation ratios, using zero")
	case len(rows) == 0:
		s.logger.Warn().Str("ts_code", sc.TSCode()).Msg("No valuation ratios, using zero")
	default:
		ratios = rows[0]
	}

	return &models.CompanyDetail{
		BasicInfo:     buildCompanyBasicInfo(sc.Code, basics[0], profile),
		FinancialInfo: buildCompanyFinancialInfo(*fina, ratios),
	}, nil
}

func buildCompanyBasicInfo(code string, basic, profile tushare.Row) models.CompanyBasicInfo {
	var employees int64
	if v := profile.Int("employees"); v != nil {
		employees = *v
	}
	return models.CompanyBasicInfo{
		Code:          code,
		Name:          basic.String("name"),
		Industry:      basic.String("industry"),
		ListDate:      basic.String("list_date"),
		Area:          basic.String("area"),
		ComName:       profile.String("com_name"),
		Chairman:      profile.String("chairman"),
		Manager:       profile.String("manager"),
		Secretary:     profile.String("secretary"),
		RegCapital:    common.ValueOrZero(profile.Float("reg_capital")),
		SetupDate:     profile.String("setup_date"),
		Province:      profile.String("province"),
		City:          profile.String("city"),
		Introduction:  profile.String("introduction"),
		Website:       NormalizeWebsite(profile.String("website")),
		Email:         profile.String("email"),
		Office:        profile.String("office"),
		Employees:     employees,
		MainBusiness:  profile.String("main_business"),
		BusinessScope: profile.String("business_scope"),
	}
}

// buildCompanyFinancialInfo keeps provider units (percent-coded fields stay
// percent) and zero-fills absences. dividend_yield is the one fraction.
func buildCompanyFinancialInfo(fina, ratios tushare.Row) models.CompanyFinancialInfo {
	m := common.DisplayMode
	f := func(field string) float64 { return *m.Plain(fina.Float(field)) }
	return models.CompanyFinancialInfo{
		PERatio:       *m.Plain(ratios.Float("pe")),
		PBRatio:       *m.Plain(ratios.Float("pb")),
		PSRatio:       *m.Plain(ratios.Float("ps")),
		DividendYield: *m.Fraction(ratios.Float("dv_ratio"), true),

		ROE:               f("roe"),
		ROEDt:             f("roe_dt"),
		ROA:               f("roa"),
		GrossProfitMargin: f("grossprofit_margin"),
		NetProfitMargin:   f("netprofit_margin"),

		NetProfitYoY:   f("netprofit_yoy"),
		DtNetProfitYoY: f("dt_netprofit_yoy"),
		TrYoY:          f("tr_yoy"),
		OrYoY:          f("or_yoy"),

		AssetsTurn: f("assets_turn"),
		InvTurn:    f("inv_turn"),
		ArTurn:     f("ar_turn"),
		CaTurn:     f("ca_turn"),

		CurrentRatio: f("current_ratio"),
		QuickRatio:   f("quick_ratio"),
		DebtToAssets: f("debt_to_assets"),
		DebtToEqt:    f("debt_to_eqt"),

		OCFToOr:       f("ocf_to_or"),
		OCFToOpIncome: f("ocf_to_opincome"),
		OCFYoY:        f("ocf_yoy"),

		EPS:        f("eps"),
		DtEPS:      f("dt_eps"),
		BPS:        f("bps"),
		OCFPS:      f("ocfps"),
		RetainedPS: f("retainedps"),
		CFPS:       f("cfps"),
		EBITPS:     f("ebit_ps"),
		FCFFPS:     f("fcff_ps"),
		FCFEPS:     f("fcfe_ps"),
	}
}

// NormalizeWebsite returns "http://host..." for a bare or schemed address, or "" when empty.
func NormalizeWebsite(website string) string {
	w := strings.TrimSpace(website)
	if w == "" {
		return ""
	}
	w = strings.TrimPrefix(w, "https://")
	w = strings.TrimPrefix(w, "http://")
	w = strings.TrimRight(w, "/")
	if w == "" {
		return ""
	}
	return "http://" + w
}
