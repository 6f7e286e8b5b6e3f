package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
)

type mockCodes struct {
	mock.Mock
}

func (m *mockCodes) Codes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStocks struct {
	mock.Mock
}

func (m *mockStocks) GetStockInfo(ctx context.Context, code string, forceRefresh bool) (*models.StockResponse, error) {
	args := m.Called(ctx, code, forceRefresh)
	if v := args.Get(0); v != nil {
		return v.(*models.StockResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRegisterJob_RejectsBadSchedule(t *testing.T) {
	s := NewService(arbor.NewLogger())
	err := s.RegisterJob("bad", "not a cron", "", func(context.Context) error { return nil })
	assert.Error(t, err)

	require.NoError(t, s.RegisterJob("ok", "35 15 * * 1-5", "", func(context.Context) error { return nil }))
	assert.Error(t, s.RegisterJob("ok", "35 15 * * 1-5", "", func(context.Context) error { return nil }))
}

func TestTriggerJob_TracksStatus(t *testing.T) {
	s := NewService(arbor.NewLogger())
	calls := 0
	require.NoError(t, s.RegisterJob("count", "0 * * * *", "counts runs", func(ctx context.Context) error {
		calls++
		assert.NotEqual(t, "-", common.TraceID(ctx))
		if calls == 2 {
			return errors.New("second run fails")
		}
		return nil
	}))

	require.NoError(t, s.TriggerJob("count"))
	status, err := s.GetJobStatus("count")
	require.NoError(t, err)
	assert.NotNil(t, status.LastRun)
	assert.Empty(t, status.LastError)
	assert.False(t, status.IsRunning)

	assert.Error(t, s.TriggerJob("count"))
	status, err = s.GetJobStatus("count")
	require.NoError(t, err)
	assert.Equal(t, "second run fails", status.LastError)

	assert.Error(t, s.TriggerJob("missing"))
	assert.Len(t, s.GetAllJobStatuses(), 1)
}

func TestTriggerJob_RecoversPanic(t *testing.T) {
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterJob("panics", "0 * * * *", "", func(context.Context) error {
		panic("boom")
	}))

	err := s.TriggerJob("panics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: boom")
}

func TestStartStop(t *testing.T) {
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterJob("noop", "0 * * * *", "", func(context.Context) error { return nil }))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())

	status, err := s.GetJobStatus("noop")
	require.NoError(t, err)
	assert.NotNil(t, status.NextRun)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}

func TestPrewarmJob_ContinuesPastFailures(t *testing.T) {
	codes := &mockCodes{}
	stocks := &mockStocks{}
	codes.On("Codes", mock.Anything).Return([]string{"000001", "600519", "300750"}, nil)
	stocks.On("GetStockInfo", mock.Anything, "000001", true).Return(&models.StockResponse{}, nil)
	stocks.On("GetStockInfo", mock.Anything, "600519", true).Return(nil, common.DataUnavailable("无法获取股票行情数据"))
	stocks.On("GetStockInfo", mock.Anything, "300750", true).Return(&models.StockResponse{}, nil)

	job := NewPrewarmJob(codes, stocks, arbor.NewLogger())
	err := job(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")
	stocks.AssertNumberOfCalls(t, "GetStockInfo", 3)
	stocks.AssertNotCalled(t, "GetStockInfo", mock.Anything, mock.Anything, false)
}

func TestPrewarmJob_EmptyWatchlist(t *testing.T) {
	codes := &mockCodes{}
	stocks := &mockStocks{}
	codes.On("Codes", mock.Anything).Return([]string{}, nil)

	require.NoError(t, NewPrewarmJob(codes, stocks, arbor.NewLogger())(context.Background()))
	stocks.AssertNotCalled(t, "GetStockInfo", mock.Anything, mock.Anything, mock.Anything)
}
