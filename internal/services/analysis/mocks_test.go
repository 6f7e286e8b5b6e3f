package analysis

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/ternarybob/stockdash/internal/models"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	args := m.Called(ctx, model, prompt)
	if fn, ok := args.Get(0).(func(context.Context) (string, error)); ok {
		return fn(ctx)
	}
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) Name() string {
	return "mock"
}

type mockData struct {
	mock.Mock
}

func (m *mockData) GetValueAnalysisData(ctx context.Context, code string, forceRefresh bool) (*models.ValueAnalysisData, error) {
	args := m.Called(ctx, code, forceRefresh)
	if v := args.Get(0); v != nil {
		return v.(*models.ValueAnalysisData), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockData) GetCompanyDetail(ctx context.Context, code string) (*models.CompanyDetail, error) {
	args := m.Called(ctx, code)
	if v := args.Get(0); v != nil {
		return v.(*models.CompanyDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

// memoryAnalyses is an in-memory interfaces.AnalysisStorage.
type memoryAnalyses struct {
	mu      sync.Mutex
	records map[string]*models.AnalysisRecord
	saves   int
}

func newMemoryAnalyses() *memoryAnalyses {
	return &memoryAnalyses{records: make(map[string]*models.AnalysisRecord)}
}

func analysesKey(track models.Track, code string) string {
	return string(track) + ":" + code
}

func (m *memoryAnalyses) GetAnalysis(ctx context.Context, track models.Track, code string) (*models.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[analysesKey(track, code)]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memoryAnalyses) SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.records[analysesKey(record.Track, record.Code)] = &cp
	m.saves++
	return nil
}

func (m *memoryAnalyses) DeleteAnalysis(ctx context.Context, track models.Track, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, analysesKey(track, code))
	return nil
}

func (m *memoryAnalyses) ListAnalyses(ctx context.Context, track models.Track) ([]*models.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AnalysisRecord
	for _, r := range m.records {
		if r.Track == track {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryAnalyses) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func f(v float64) *float64 {
	return &v
}

func sampleValueData() *models.ValueAnalysisData {
	return &models.ValueAnalysisData{
		StockInfo: models.ValueStockInfo{
			Code:          "600519",
			Name:          "贵州茅台",
			CurrentPrice:  f(1688.5),
			TradeDate:     "20240105",
			TurnoverRatio: f(0.0032),
		},
		Valuation: models.Valuation{
			PERatio:                f(28.1234),
			PBRatio:                f(9.5),
			PSRatio:                f(14.2),
			DividendYield:          f(0.0175),
			TotalMarketValue:       f(21211.3),
			CirculatingMarketValue: f(21211.3),
			CirculatingRatio:       f(1),
		},
		Profitability: models.Profitability{
			ROE:         f(0.3412),
			DeductedROE: f(0.3398),
			ROA:         f(0.2611),
			GrossMargin: f(0.9163),
			NetMargin:   f(0.5271),
		},
		Growth: models.Growth{
			NetProfitGrowth:         f(0.1908),
			DeductedNetProfitGrowth: f(0.1915),
			RevenueGrowth:           f(0.1801),
			OperatingRevenueGrowth:  f(0.1788),
		},
		Operation: models.Operation{
			AssetTurnover:       f(0.4861),
			InventoryTurnover:   f(0.3012),
			ReceivablesTurnover: nil,
		},
		Solvency: models.Solvency{
			CurrentRatio: f(4.2),
			QuickRatio:   f(3.4),
			DebtToAssets: f(0.1932),
			EquityRatio:  f(0.2395),
		},
		CashFlow: models.CashFlow{
			OCFToRevenue: f(0.4321),
			OCFGrowth:    nil,
		},
		PerShare: models.PerShare{
			EPS:         f(59.49),
			BPS:         f(185.6),
			CFPS:        f(3.1),
			OCFPS:       f(53.2),
			RetainedEPS: f(145.3),
		},
	}
}

func sampleCompany() *models.CompanyDetail {
	return &models.CompanyDetail{
		BasicInfo: models.CompanyBasicInfo{
			Code:          "600519",
			Name:          "贵州茅台",
			Industry:      "白酒",
			ListDate:      "20010827",
			Chairman:      "张德芹",
			Manager:       "王莉",
			RegCapital:    125620,
			SetupDate:     "19991120",
			Employees:     33302,
			MainBusiness:  "茅台酒及系列酒的生产与销售",
			BusinessScope: "茅台酒系列产品的生产与销售",
			Introduction:  "公司是国内白酒行业的标志性企业",
		},
		FinancialInfo: models.CompanyFinancialInfo{
			PERatio: 28.12,
			ROE:     34.12,
		},
	}
}
