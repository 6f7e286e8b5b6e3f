package stocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestService(provider *mockProvider, storage *memorySnapshots, clock *testClock) *Service {
	return NewService(provider, storage, clock.Now, arbor.NewLogger())
}

// expectStockInfoCalls wires the five provider calls behind GetStockInfo for tsCode.
func expectStockInfoCalls(p *mockProvider, tsCode string) {
	p.On("DailyBasic", mock.Anything, tsCode, hasField("total_mv"), 1).
		Return(rows(map[string]interface{}{"ts_code": tsCode, "total_mv": 21345678.9}), nil)
	p.On("StockBasic", mock.Anything, tsCode, []string{"name"}).
		Return(rows(map[string]interface{}{"name": "浦发银行"}), nil)
	p.On("FinaIndicator", mock.Anything, tsCode, "20240506", mock.Anything, 0).
		Return(rows(), nil)
	p.On("FinaIndicator", mock.Anything, tsCode, "", mock.Anything, 1).
		Return(rows(map[string]interface{}{
			"roe": 12.5, "grossprofit_margin": nil, "netprofit_margin": 35.123456,
			"debt_to_assets": 91.8, "op_income_yoy": -3.2, "netprofit_yoy": 0.5,
			"bps": 21.98765, "ocfps": nil,
		}), nil)
	p.On("Daily", mock.Anything, tsCode, "20240506", "20240506", 0).
		Return(rows(), nil)
	p.On("Daily", mock.Anything, tsCode, "", "", 1).
		Return(rows(map[string]interface{}{"close": 7.256, "pct_chg": 1.23, "trade_date": "20240503"}), nil)
	p.On("DailyBasic", mock.Anything, tsCode, hasField("pe"), 1).
		Return(rows(map[string]interface{}{"pe": 15.2, "pb": 0.4123, "ps": nil, "dv_ratio": 5.34}), nil)
}

func TestGetStockInfo_Normalizes(t *testing.T) {
	provider := &mockProvider{}
	expectStockInfoCalls(provider, "600000.SH")
	clock := &testClock{now: time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)}
	svc := newTestService(provider, newMemorySnapshots(), clock)

	resp, err := svc.GetStockInfo(context.Background(), "600000", false)
	require.NoError(t, err)

	info := resp.StockInfo
	assert.Equal(t, "600000", info.Code)
	assert.Equal(t, "浦发银行", info.Name)
	assert.Equal(t, 15.2, info.PERatio)
	assert.Equal(t, 0.41, info.PBRatio)
	assert.Equal(t, 0.0, info.PSRatio, "absent ratio is zero-filled on the display path")
	assert.Equal(t, 0.125, info.ROE)
	assert.Equal(t, 0.0534, info.DividendYield)
	assert.Equal(t, 2134.57, info.MarketValue)
	assert.Equal(t, 7.26, info.Price)
	assert.Equal(t, 0.0123, info.ChangePercent)
	assert.Equal(t, 0.0, info.GrossProfitMargin)
	assert.Equal(t, 0.3512, info.NetProfitMargin)
	assert.Equal(t, 0.918, info.DebtToAssets)
	assert.Equal(t, -0.032, info.RevenueYoY)
	assert.Equal(t, 0.005, info.NetProfitYoY)
	assert.Equal(t, 21.988, info.BPS)
	assert.Equal(t, 0.0, info.OCFPS)
	assert.False(t, info.FromCache)

	provider.AssertExpectations(t)
}

func TestGetStockInfo_NoWatchTargetIsEmptyObject(t *testing.T) {
	provider := &mockProvider{}
	expectStockInfoCalls(provider, "000001.SZ")
	clock := &testClock{now: time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)}
	svc := newTestService(provider, newMemorySnapshots(), clock)
	svc.SetTargetSource(staticTargets{})

	resp, err := svc.GetStockInfo(context.Background(), "000001", false)
	require.NoError(t, err)
	assert.True(t, resp.Targets.IsEmpty())

	body, err := jsonMarshal(resp)
	require.NoError(t, err)
	assert.Contains(t, body, `"targets":{}`)
}

func TestGetStockInfo_CacheHitSkipsProvider(t *testing.T) {
	provider := &mockProvider{}
	expectStockInfoCalls(provider, "600000.SH")
	storage := newMemorySnapshots()
	clock := &testClock{now: time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)}
	svc := newTestService(provider, storage, clock)

	first, err := svc.GetStockInfo(context.Background(), "600000", false)
	require.NoError(t, err)
	callsAfterFirst := len(provider.Calls)

	clock.now = clock.now.Add(5 * time.Hour)
	second, err := svc.GetStockInfo(context.Background(), "600000", false)
	require.NoError(t, err)

	assert.True(t, second.StockInfo.FromCache)
	assert.Equal(t, first.StockInfo.PERatio, second.StockInfo.PERatio)
	assert.Len(t, provider.Calls, callsAfterFirst, "no provider call on a same-day hit")
	provider.AssertNumberOfCalls(t, "DailyBasic", 2)
}

func TestGetStockInfo_CacheHitRereadsTargets(t *testing.T) {
	provider := &mockProvider{}
	expectStockInfoCalls(provider, "600000.SH")
	clock := &testClock{now: time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)}
	svc := newTestService(provider, newMemorySnapshots(), clock)

	_, err := svc.GetStockInfo(context.Background(), "600000", false)
	require.NoError(t, err)

	svc.SetTargetSource(staticTargets{"600000": {TargetMarketValue: &models.MarketValueTarget{Min: common.Float64(1500)}}})
	resp, err := svc.GetStockInfo(context.Background(), "600000", false)
	require.NoError(t, err)
	require.NotNil(t, resp.Targets.TargetMarketValue)
	assert.Equal(t, 1500.0, *resp.Targets.TargetMarketValue.Min)
}

func TestGetStockInfo_ForceRefreshRefetchesAndPersists(t *testing.T) {
	provider := &mockProvider{}
	expectStockInfoCalls(provider, "600000.SH")
	storage := newMemorySnapshots()
	clock := &testClock{now: time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)}
	svc := newTestService(provider, storage, clock)

	_, err := svc.GetStockInfo(context.Background(), "600000", false)
	require.NoError(t, err)
	resp, err := svc.GetStockInfo(context.Background(), "600000", true)
	require.NoError(t, err)

	assert.False(t, resp.StockInfo.FromCache)
	provider.AssertNumberOfCalls(t, "DailyBasic", 4)
	assert.Equal(t, 2, storage.saves)
}

func TestGetStockInfo_DayRolloverRefetches(t *testing.T) {
	provider := &mockProvider{}
	expectStockInfoCalls(provider, "600000.SH")
	provider.On("FinaIndicator", mock.Anything, "600000.SH", "20240507", mock.Anything, 0).Return(rows(), nil)
	provider.On("Daily", mock.Anything, "600000.SH", "20240507", "20240507", 0).Return(rows(), nil)
	clock := &testClock{now: time.Date(2024, 5, 6, 23, 59, 0, 0, time.Local)}
	svc := newTestService(provider, newMemorySnapshots(), clock)

	_, err := svc.GetStockInfo(context.Background(), "600000", false)
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Minute)
	resp, err := svc.GetStockInfo(context.Background(), "600000", false)
	require.NoError(t, err)
	assert.False(t, resp.StockInfo.FromCache)
	provider.AssertNumberOfCalls(t, "DailyBasic", 4)
}

func TestGetStockInfo_Errors(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)}

	t.Run("invalid format", func(t *testing.T) {
		provider := &mockProvider{}
		_, err := newTestService(provider, newMemorySnapshots(), clock).GetStockInfo(context.Background(), "60000", false)
		assert.True(t, errors.Is(err, common.ErrInvalidFormat))
		provider.AssertNotCalled(t, "DailyBasic", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unsupported code", func(t *testing.T) {
		provider := &mockProvider{}
		_, err := newTestService(provider, newMemorySnapshots(), clock).GetStockInfo(context.Background(), "830001", false)
		assert.True(t, errors.Is(err, common.ErrUnsupportedCode))
	})

	t.Run("unknown code", func(t *testing.T) {
		provider := &mockProvider{}
		provider.On("DailyBasic", mock.Anything, "600999.SH", hasField("total_mv"), 1).Return(rows(), nil)
		storage := newMemorySnapshots()
		_, err := newTestService(provider, storage, clock).GetStockInfo(context.Background(), "600999", false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrDataUnavailable))
		assert.Equal(t, "股票代码不存在", common.ErrorMessage(err))
		assert.Zero(t, storage.saves, "no partial record is cached")
	})

	t.Run("no trade data", func(t *testing.T) {
		provider := &mockProvider{}
		provider.On("DailyBasic", mock.Anything, "600000.SH", hasField("total_mv"), 1).
			Return(rows(map[string]interface{}{"total_mv": 100.0}), nil)
		provider.On("StockBasic", mock.Anything, "600000.SH", mock.Anything).
			Return(rows(map[string]interface{}{"name": "浦发银行"}), nil)
		provider.On("FinaIndicator", mock.Anything, "600000.SH", mock.Anything, mock.Anything, mock.Anything).
			Return(rows(), nil)
		provider.On("Daily", mock.Anything, "600000.SH", mock.Anything, mock.Anything, mock.Anything).
			Return(rows(), nil)
		_, err := newTestService(provider, newMemorySnapshots(), clock).GetStockInfo(context.Background(), "600000", false)
		assert.Equal(t, "无法获取股票行情数据", common.ErrorMessage(err))
	})

	t.Run("provider timeout propagates", func(t *testing.T) {
		provider := &mockProvider{}
		provider.On("DailyBasic", mock.Anything, "600000.SH", mock.Anything, 1).
			Return(nil, common.ProviderTimeout("行情数据服务请求超时", context.DeadlineExceeded))
		_, err := newTestService(provider, newMemorySnapshots(), clock).GetStockInfo(context.Background(), "600000", false)
		assert.True(t, errors.Is(err, common.ErrProviderTimeout))
	})
}

func TestGetValueAnalysisData_PropagatesAbsence(t *testing.T) {
	provider := &mockProvider{}
	provider.On("DailyBasic", mock.Anything, "600519.SH", hasField("circ_mv"), 1).
		Return(rows(map[string]interface{}{
			"pe": 28.1, "pb": 9.2, "ps": nil, "dv_ratio": 1.5,
			"total_mv": 21000000.0, "circ_mv": 21000000.0, "turnover_rate": 0.25,
		}), nil)
	provider.On("FinaIndicator", mock.Anything, "600519.SH", "", mock.Anything, 1).
		Return(rows(map[string]interface{}{"roe": 30.5, "grossprofit_margin": 91.5, "inv_turn": nil, "eps": 49.93}), nil)
	provider.On("Daily", mock.Anything, "600519.SH", "", "", 1).
		Return(rows(map[string]interface{}{"close": 1680.5, "trade_date": "20240506"}), nil)
	provider.On("StockBasic", mock.Anything, "600519.SH", []string{"name"}).
		Return(rows(map[string]interface{}{"name": "贵州茅台"}), nil)

	clock := &testClock{now: time.Date(2024, 5, 6, 16, 0, 0, 0, time.Local)}
	svc := newTestService(provider, newMemorySnapshots(), clock)

	data, err := svc.GetValueAnalysisData(context.Background(), "600519", false)
	require.NoError(t, err)

	assert.Equal(t, "贵州茅台", data.StockInfo.Name)
	assert.Equal(t, "20240506", data.StockInfo.TradeDate)
	require.NotNil(t, data.Valuation.PERatio)
	assert.Equal(t, 28.1, *data.Valuation.PERatio)
	assert.Nil(t, data.Valuation.PSRatio)
	assert.InDelta(t, 0.015, *data.Valuation.DividendYield, 1e-12)
	assert.InDelta(t, 2100.0, *data.Valuation.TotalMarketValue, 1e-9)
	assert.InDelta(t, 1.0, *data.Valuation.CirculatingRatio, 1e-12)
	assert.InDelta(t, 0.0025, *data.StockInfo.TurnoverRatio, 1e-12)
	assert.InDelta(t, 0.305, *data.Profitability.ROE, 1e-12)
	assert.Nil(t, data.Profitability.NetMargin)
	assert.Nil(t, data.Operation.InventoryTurnover)
	assert.Nil(t, data.Growth.RevenueGrowth)
	assert.Equal(t, 49.93, *data.PerShare.EPS)

	cached, err := svc.GetValueAnalysisData(context.Background(), "600519", false)
	require.NoError(t, err)
	assert.True(t, cached.StockInfo.FromCache)
	assert.Nil(t, cached.Valuation.PSRatio, "absence survives the cache round trip")
	provider.AssertNumberOfCalls(t, "DailyBasic", 1)
}

func TestGetValueAnalysisData_MissingFundamentals(t *testing.T) {
	provider := &mockProvider{}
	provider.On("DailyBasic", mock.Anything, "000001.SZ", mock.Anything, 1).
		Return(rows(map[string]interface{}{"pe": 5.0}), nil)
	provider.On("FinaIndicator", mock.Anything, "000001.SZ", "", mock.Anything, 1).Return(rows(), nil)

	clock := &testClock{now: time.Date(2024, 5, 6, 16, 0, 0, 0, time.Local)}
	_, err := newTestService(provider, newMemorySnapshots(), clock).GetValueAnalysisData(context.Background(), "000001", false)
	assert.True(t, errors.Is(err, common.ErrDataUnavailable))
	assert.Equal(t, "无法获取财务指标数据", common.ErrorMessage(err))
	provider.AssertNotCalled(t, "StockBasic", mock.Anything, mock.Anything, mock.Anything)
}

func TestSnapshotCache_RoundTripAndRollover(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 6, 9, 30, 0, 0, time.Local)}
	cache := NewSnapshotCache(newMemorySnapshots(), clock.Now, arbor.NewLogger())
	ctx := context.Background()

	in := models.StockResponse{StockInfo: models.StockInfo{Code: "600000", PERatio: 15.2, ROE: 0.125}}
	require.NoError(t, cache.Put(ctx, models.SnapshotStock, "600000", in))

	var out models.StockResponse
	hit, err := cache.Get(ctx, models.SnapshotStock, "600000", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, in, out)

	clock.now = time.Date(2024, 5, 7, 0, 0, 1, 0, time.Local)
	hit, err = cache.Get(ctx, models.SnapshotStock, "600000", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Put(ctx, models.SnapshotStock, "600000", in))
	require.NoError(t, cache.Invalidate(ctx, "600000"))
	hit, err = cache.Get(ctx, models.SnapshotStock, "600000", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInvalidateSnapshot_WaitsForValueFetch(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)}
	storage := newMemorySnapshots()
	svc := newTestService(&mockProvider{}, storage, clock)
	ctx := context.Background()

	require.NoError(t, svc.cache.Put(ctx, models.SnapshotStock, "600000", models.StockResponse{}))
	require.NoError(t, svc.cache.Put(ctx, models.SnapshotValue, "600000", models.ValueAnalysisData{}))

	listed, err := svc.Snapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	// hold the lock a value fetch would hold
	unlockValue := svc.locks.Lock(valueLockKey("600000"))
	done := make(chan error, 1)
	go func() {
		done <- svc.InvalidateSnapshot(ctx, "600000")
	}()

	select {
	case <-done:
		t.Fatal("invalidate ran while a value fetch held its lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlockValue()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("invalidate did not finish after the lock was released")
	}

	listed, err = svc.Snapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
