package interfaces

import (
	"context"

	"github.com/ternarybob/stockdash/internal/models"
)

// SnapshotStorage persists daily snapshot records. Get returns (nil, nil) when absent.
type SnapshotStorage interface {
	GetSnapshot(ctx context.Context, kind models.SnapshotKind, code string) (*models.SnapshotRecord, error)
	SaveSnapshot(ctx context.Context, record *models.SnapshotRecord) error
	DeleteSnapshots(ctx context.Context, code string) error
	ListSnapshots(ctx context.Context) ([]*models.SnapshotRecord, error)
}

// AnalysisStorage persists parsed analysis results, one entry per track and code.
// Get returns (nil, nil) when absent.
type AnalysisStorage interface {
	GetAnalysis(ctx context.Context, track models.Track, code string) (*models.AnalysisRecord, error)
	SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	DeleteAnalysis(ctx context.Context, track models.Track, code string) error
	ListAnalyses(ctx context.Context, track models.Track) ([]*models.AnalysisRecord, error)
}

// WatchlistStorage loads and flushes the whole watchlist document.
type WatchlistStorage interface {
	Load(ctx context.Context) (map[string]models.WatchTarget, error)
	Save(ctx context.Context, entries map[string]models.WatchTarget) error
}

// StorageManager owns the cache database and the storages on top of it.
type StorageManager interface {
	SnapshotStorage() SnapshotStorage
	AnalysisStorage() AnalysisStorage
	Close() error
}
