package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AnalysisStorage implements interfaces.AnalysisStorage for Badger. All tracks share
// one record type; the track is part of the key so each track keeps its own entries.
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new AnalysisStorage instance
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

func analysisKey(track models.Track, code string) string {
	return "analysis:" + string(track) + ":" + code
}

func (s *AnalysisStorage) GetAnalysis(ctx context.Context, track models.Track, code string) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	err := s.db.Store().Get(analysisKey(track, code), &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s analysis for %s: %w", track, code, err)
	}
	return &record, nil
}

func (s *AnalysisStorage) SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	if record.Code == "" || record.Track == "" {
		return fmt.Errorf("analysis record requires track and code")
	}
	record.Key = analysisKey(record.Track, record.Code)
	if err := s.db.Store().Upsert(record.Key, record); err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", record.Key, err)
	}
	return nil
}

func (s *AnalysisStorage) DeleteAnalysis(ctx context.Context, track models.Track, code string) error {
	err := s.db.Store().Delete(analysisKey(track, code), &models.AnalysisRecord{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete %s analysis for %s: %w", track, code, err)
	}
	return nil
}

func (s *AnalysisStorage) ListAnalyses(ctx context.Context, track models.Track) ([]*models.AnalysisRecord, error) {
	var records []models.AnalysisRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("Track").Eq(track).SortBy("Code")); err != nil {
		return nil, fmt.Errorf("failed to list %s analyses: %w", track, err)
	}
	result := make([]*models.AnalysisRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}
