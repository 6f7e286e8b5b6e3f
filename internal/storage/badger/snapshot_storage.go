package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SnapshotStorage implements interfaces.SnapshotStorage for Badger
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

func snapshotKey(kind models.SnapshotKind, code string) string {
	return string(kind) + ":" + code
}

func (s *SnapshotStorage) GetSnapshot(ctx context.Context, kind models.SnapshotKind, code string) (*models.SnapshotRecord, error) {
	var record models.SnapshotRecord
	err := s.db.Store().Get(snapshotKey(kind, code), &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s/%s: %w", kind, code, err)
	}
	return &record, nil
}

// SaveSnapshot replaces the record for (kind, code). With sync writes enabled the
// write is on disk before this returns.
func (s *SnapshotStorage) SaveSnapshot(ctx context.Context, record *models.SnapshotRecord) error {
	if record.Code == "" || record.Kind == "" {
		return fmt.Errorf("snapshot record requires kind and code")
	}
	record.Key = snapshotKey(record.Kind, record.Code)
	if err := s.db.Store().Upsert(record.Key, record); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", record.Key, err)
	}
	return nil
}

// DeleteSnapshots removes every kind of snapshot held for code in one transaction.
func (s *SnapshotStorage) DeleteSnapshots(ctx context.Context, code string) error {
	store := s.db.Store()
	err := store.Badger().Update(func(tx *badger.Txn) error {
		for _, kind := range []models.SnapshotKind{models.SnapshotStock, models.SnapshotValue} {
			err := store.TxDelete(tx, snapshotKey(kind, code), &models.SnapshotRecord{})
			if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshots for %s: %w", code, err)
	}
	s.logger.Debug().Str("code", code).Msg("Snapshots invalidated")
	return nil
}

func (s *SnapshotStorage) ListSnapshots(ctx context.Context) ([]*models.SnapshotRecord, error) {
	var records []models.SnapshotRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("Key").Ne("").SortBy("Key")); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	result := make([]*models.SnapshotRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}
