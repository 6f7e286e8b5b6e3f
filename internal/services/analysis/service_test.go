package analysis

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
	"github.com/tidwall/gjson"
)

const validValueReply = `{"investment_suggestion":{"summary":"持有"},"analysis":{},"price_analysis":{}}`

type fixture struct {
	data      *mockData
	generator *mockGenerator
	storage   *memoryAnalyses
	service   *Service
}

func newFixture(timeout time.Duration) *fixture {
	fx := &fixture{
		data:      &mockData{},
		generator: &mockGenerator{},
		storage:   newMemoryAnalyses(),
	}
	logger := arbor.NewLogger()
	cache := NewCache(fx.storage, nil, logger)
	fx.service = NewService(fx.data, fx.generator, cache, timeout, logger)
	return fx
}

func TestAnalyze_ValueTrackCachesParsedResult(t *testing.T) {
	fx := newFixture(time.Second)
	ctx := context.Background()

	fx.data.On("GetValueAnalysisData", mock.Anything, "600519", false).Return(sampleValueData(), nil)
	fx.generator.On("Generate", mock.Anything, "", mock.AnythingOfType("string")).Return(validValueReply, nil).Once()

	first, err := fx.service.Analyze(ctx, models.TrackValue, "600519", false)
	require.NoError(t, err)
	assert.False(t, first.Malformed)
	assert.False(t, first.FromCache)
	assert.JSONEq(t, validValueReply, string(first.Payload))

	second, err := fx.service.Analyze(ctx, models.TrackValue, "600519", false)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.JSONEq(t, validValueReply, string(second.Payload))

	fx.generator.AssertNumberOfCalls(t, "Generate", 1)
	fx.data.AssertNumberOfCalls(t, "GetValueAnalysisData", 1)
	assert.Equal(t, 1, fx.storage.saveCount())
}

func TestAnalyze_EnvelopeIsNotCached(t *testing.T) {
	fx := newFixture(time.Second)
	ctx := context.Background()
	data := sampleValueData()

	fx.data.On("GetValueAnalysisData", mock.Anything, "600519", false).Return(data, nil)
	fx.generator.On("Generate", mock.Anything, "", mock.Anything).Return("这不是JSON", nil).Once()
	fx.generator.On("Generate", mock.Anything, "", mock.Anything).Return(validValueReply, nil).Once()

	result, err := fx.service.Analyze(ctx, models.TrackValue, "600519", false)
	require.NoError(t, err)
	assert.True(t, result.Malformed)

	payload := gjson.ParseBytes(result.Payload)
	assert.Equal(t, MalformedOutputMessage, payload.Get("analysis_result.error").String())
	assert.Equal(t, "这不是JSON", payload.Get("analysis_result.raw_text").String())
	assert.Equal(t, "贵州茅台", payload.Get("stock_info.name").String())
	assert.InDelta(t, 28.1234, payload.Get("valuation.pe_ratio").Float(), 1e-9)
	assert.True(t, payload.Get("profitability").Exists())
	assert.Equal(t, 0, fx.storage.saveCount())

	// no force refresh, yet the generator runs again because nothing was cached
	retry, err := fx.service.Analyze(ctx, models.TrackValue, "600519", false)
	require.NoError(t, err)
	assert.False(t, retry.Malformed)
	assert.False(t, retry.FromCache)
	fx.generator.AssertNumberOfCalls(t, "Generate", 2)
	assert.Equal(t, 1, fx.storage.saveCount())
}

func TestAnalyze_ForceRefreshRegenerates(t *testing.T) {
	fx := newFixture(time.Second)
	ctx := context.Background()

	fx.data.On("GetCompanyDetail", mock.Anything, "600519").Return(sampleCompany(), nil)
	fx.data.On("GetValueAnalysisData", mock.Anything, "600519", mock.Anything).Return(sampleValueData(), nil)
	fx.generator.On("Generate", mock.Anything, "", mock.Anything).Return(`{"buffett_analysis":"a"}`, nil).Once()
	fx.generator.On("Generate", mock.Anything, "", mock.Anything).Return(`{"buffett_analysis":"b"}`, nil).Once()

	_, err := fx.service.Analyze(ctx, models.TrackMasters, "600519", false)
	require.NoError(t, err)

	refreshed, err := fx.service.Analyze(ctx, models.TrackMasters, "600519", true)
	require.NoError(t, err)
	assert.Equal(t, "b", gjson.GetBytes(refreshed.Payload, "buffett_analysis").String())

	cached, err := fx.service.Analyze(ctx, models.TrackMasters, "600519", false)
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.Equal(t, "b", gjson.GetBytes(cached.Payload, "buffett_analysis").String())

	fx.data.AssertCalled(t, "GetValueAnalysisData", mock.Anything, "600519", true)
	fx.generator.AssertNumberOfCalls(t, "Generate", 2)
}

func TestAnalyze_TracksAreIndependent(t *testing.T) {
	fx := newFixture(time.Second)
	ctx := context.Background()

	fx.data.On("GetCompanyDetail", mock.Anything, "600519").Return(sampleCompany(), nil)
	fx.data.On("GetValueAnalysisData", mock.Anything, "600519", false).Return(sampleValueData(), nil)
	fx.generator.On("Generate", mock.Anything, "", mock.Anything).Return(`{"tao_philosophy":"x"}`, nil)

	_, err := fx.service.Analyze(ctx, models.TrackTao, "600519", false)
	require.NoError(t, err)
	_, err = fx.service.Analyze(ctx, models.TrackValue, "600519", false)
	require.NoError(t, err)

	fx.generator.AssertNumberOfCalls(t, "Generate", 2)
	fx.data.AssertNotCalled(t, "GetValueAnalysisData", mock.Anything, "600519", true)
}

func TestAnalyze_UpstreamErrorShortCircuits(t *testing.T) {
	tests := []struct {
		name  string
		track models.Track
		setup func(*mockData)
	}{
		{
			name:  "tao without company",
			track: models.TrackTao,
			setup: func(d *mockData) {
				d.On("GetCompanyDetail", mock.Anything, "600519").Return(nil, common.DataUnavailable("无法获取公司信息"))
			},
		},
		{
			name:  "masters without value data",
			track: models.TrackMasters,
			setup: func(d *mockData) {
				d.On("GetCompanyDetail", mock.Anything, "600519").Return(sampleCompany(), nil)
				d.On("GetValueAnalysisData", mock.Anything, "600519", false).Return(nil, common.DataUnavailable("无法获取财务指标数据"))
			},
		},
		{
			name:  "value provider timeout",
			track: models.TrackValue,
			setup: func(d *mockData) {
				d.On("GetValueAnalysisData", mock.Anything, "600519", false).Return(nil, common.ProviderTimeout("行情数据服务请求超时", context.DeadlineExceeded))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(time.Second)
			tt.setup(fx.data)

			result, err := fx.service.Analyze(context.Background(), tt.track, "600519", false)
			require.Error(t, err)
			assert.Nil(t, result)
			fx.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, 0, fx.storage.saveCount())
		})
	}
}

func TestAnalyze_GeneratorFailurePrefixes(t *testing.T) {
	tests := []struct {
		track  models.Track
		prefix string
	}{
		{models.TrackValue, "AI分析失败: "},
		{models.TrackTao, "道德经分析失败: "},
		{models.TrackMasters, "价值投资大咖分析失败: "},
	}

	for _, tt := range tests {
		t.Run(string(tt.track), func(t *testing.T) {
			fx := newFixture(time.Second)
			fx.data.On("GetCompanyDetail", mock.Anything, "600519").Return(sampleCompany(), nil)
			fx.data.On("GetValueAnalysisData", mock.Anything, "600519", false).Return(sampleValueData(), nil)
			fx.generator.On("Generate", mock.Anything, "", mock.Anything).Return("", errors.New("upstream 502"))

			_, err := fx.service.Analyze(context.Background(), tt.track, "600519", false)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrGeneratorFailure)
			assert.Equal(t, tt.prefix+"upstream 502", common.ErrorMessage(err))
		})
	}
}

func TestAnalyze_GeneratorTimeout(t *testing.T) {
	fx := newFixture(20 * time.Millisecond)
	fx.data.On("GetValueAnalysisData", mock.Anything, "600519", false).Return(sampleValueData(), nil)
	fx.generator.On("Generate", mock.Anything, "", mock.Anything).Return(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}, nil)

	_, err := fx.service.Analyze(context.Background(), models.TrackValue, "600519", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrGeneratorTimeout)
	assert.Equal(t, 0, fx.storage.saveCount())
}

func TestAnalyze_PanicBecomesError(t *testing.T) {
	fx := newFixture(time.Second)
	fx.data.On("GetValueAnalysisData", mock.Anything, "600519", false).Return(sampleValueData(), nil)
	fx.generator.On("Generate", mock.Anything, "", mock.Anything).Return(func(ctx context.Context) (string, error) {
		panic("boom")
	}, nil)

	result, err := fx.service.Analyze(context.Background(), models.TrackValue, "600519", false)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, common.ErrGeneratorFailure)

	// the per-key lock was released
	fx.generator.ExpectedCalls = nil
	fx.generator.On("Generate", mock.Anything, "", mock.Anything).Return(validValueReply, nil)
	_, err = fx.service.Analyze(context.Background(), models.TrackValue, "600519", false)
	require.NoError(t, err)
}

func TestAnalyze_InvalidInput(t *testing.T) {
	fx := newFixture(time.Second)

	_, err := fx.service.Analyze(context.Background(), models.TrackValue, "12345", false)
	assert.ErrorIs(t, err, common.ErrInvalidFormat)

	_, err = fx.service.Analyze(context.Background(), models.TrackValue, "900001", false)
	assert.ErrorIs(t, err, common.ErrUnsupportedCode)

	_, err = fx.service.Analyze(context.Background(), models.Track("astrology"), "600519", false)
	assert.ErrorIs(t, err, common.ErrInvalidFormat)

	fx.data.AssertNotCalled(t, "GetValueAnalysisData", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvalidate_DropsEveryTrack(t *testing.T) {
	fx := newFixture(time.Second)
	ctx := context.Background()

	fx.data.On("GetCompanyDetail", mock.Anything, "600519").Return(sampleCompany(), nil)
	fx.data.On("GetValueAnalysisData", mock.Anything, "600519", false).Return(sampleValueData(), nil)
	fx.generator.On("Generate", mock.Anything, "", mock.Anything).Return(`{"summary":"ok"}`, nil)

	for _, track := range models.Tracks() {
		_, err := fx.service.Analyze(ctx, track, "600519", false)
		require.NoError(t, err)
	}

	all, err := fx.service.Cached(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	tao, err := fx.service.Cached(ctx, models.TrackTao)
	require.NoError(t, err)
	require.Len(t, tao, 1)
	assert.Equal(t, "600519", tao[0].Code)

	require.NoError(t, fx.service.Invalidate(ctx, "600519"))

	all, err = fx.service.Cached(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)

	result, err := fx.service.Analyze(ctx, models.TrackValue, "600519", false)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	fx.generator.AssertNumberOfCalls(t, "Generate", 4)
}
