package stocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/ternarybob/stockdash/internal/models"
	"github.com/ternarybob/stockdash/internal/tushare"
)

type mockProvider struct {
	mock.Mock
}

func rowsArg(args mock.Arguments) ([]tushare.Row, error) {
	rows, _ := args.Get(0).([]tushare.Row)
	return rows, args.Error(1)
}

func (m *mockProvider) DailyBasic(ctx context.Context, tsCode string, fields []string, limit int) ([]tushare.Row, error) {
	return rowsArg(m.Called(ctx, tsCode, fields, limit))
}

func (m *mockProvider) StockBasic(ctx context.Context, tsCode string, fields []string) ([]tushare.Row, error) {
	return rowsArg(m.Called(ctx, tsCode, fields))
}

func (m *mockProvider) FinaIndicator(ctx context.Context, tsCode, period string, fields []string, limit int) ([]tushare.Row, error) {
	return rowsArg(m.Called(ctx, tsCode, period, fields, limit))
}

func (m *mockProvider) Daily(ctx context.Context, tsCode, startDate, endDate string, limit int) ([]tushare.Row, error) {
	return rowsArg(m.Called(ctx, tsCode, startDate, endDate, limit))
}

func (m *mockProvider) StockCompany(ctx context.Context, tsCode string) ([]tushare.Row, error) {
	return rowsArg(m.Called(ctx, tsCode))
}

func (m *mockProvider) Top10Holders(ctx context.Context, tsCode string, limit int) ([]tushare.Row, error) {
	return rowsArg(m.Called(ctx, tsCode, limit))
}

func (m *mockProvider) IndexDaily(ctx context.Context, tsCode string, limit int) ([]tushare.Row, error) {
	return rowsArg(m.Called(ctx, tsCode, limit))
}

func (m *mockProvider) Forecast(ctx context.Context, tsCode string, limit int) ([]tushare.Row, error) {
	return rowsArg(m.Called(ctx, tsCode, limit))
}

// hasField matches a field list containing name.
func hasField(name string) interface{} {
	return mock.MatchedBy(func(fields []string) bool {
		for _, f := range fields {
			if f == name {
				return true
			}
		}
		return false
	})
}

func rows(values ...map[string]interface{}) []tushare.Row {
	out := make([]tushare.Row, len(values))
	for i, v := range values {
		out[i] = tushare.NewRow(v)
	}
	return out
}

// memorySnapshots is an in-memory SnapshotStorage.
type memorySnapshots struct {
	mu      sync.Mutex
	records map[string]models.SnapshotRecord
	saves   int
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{records: map[string]models.SnapshotRecord{}}
}

func (m *memorySnapshots) GetSnapshot(ctx context.Context, kind models.SnapshotKind, code string) (*models.SnapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[string(kind)+":"+code]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memorySnapshots) SaveSnapshot(ctx context.Context, record *models.SnapshotRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[string(record.Kind)+":"+record.Code] = *record
	m.saves++
	return nil
}

func (m *memorySnapshots) DeleteSnapshots(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, string(models.SnapshotStock)+":"+code)
	delete(m.records, string(models.SnapshotValue)+":"+code)
	return nil
}

func (m *memorySnapshots) ListSnapshots(ctx context.Context) ([]*models.SnapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.SnapshotRecord, 0, len(m.records))
	for _, r := range m.records {
		r := r
		out = append(out, &r)
	}
	return out, nil
}

type staticTargets map[string]models.WatchTarget

func (s staticTargets) Target(ctx context.Context, code string) (models.WatchTarget, error) {
	return s[code], nil
}
