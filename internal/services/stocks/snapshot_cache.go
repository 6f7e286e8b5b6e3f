package stocks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/models"
)

// SnapshotCache is the daily snapshot cache. An entry is fresh only on the
// calendar day it was written, in the clock's local time zone.
type SnapshotCache struct {
	storage interfaces.SnapshotStorage
	clock   common.Clock
	logger  arbor.ILogger
}

// NewSnapshotCache creates a cache over storage. A nil clock means the system clock.
func NewSnapshotCache(storage interfaces.SnapshotStorage, clock common.Clock, logger arbor.ILogger) *SnapshotCache {
	if clock == nil {
		clock = common.SystemClock
	}
	return &SnapshotCache{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Get decodes today's entry for (kind, code) into out. It reports false when
// the entry is absent or from an earlier day.
func (c *SnapshotCache) Get(ctx context.Context, kind models.SnapshotKind, code string, out interface{}) (bool, error) {
	record, err := c.storage.GetSnapshot(ctx, kind, code)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	if !common.IsFresh(record.AsOfDate, c.clock()) {
		c.logger.Debug().
			Str("kind", string(kind)).
			Str("code", code).
			Str("as_of_date", record.AsOfDate).
			Msg("Snapshot is stale")
		return false, nil
	}
	if err := json.Unmarshal(record.Payload, out); err != nil {
		// An unreadable entry is treated as a miss and will be overwritten.
		c.logger.Warn().Err(err).Str("kind", string(kind)).Str("code", code).Msg("Discarding unreadable snapshot")
		return false, nil
	}
	return true, nil
}

// Put stamps payload with today's date and writes it through to storage.
func (c *SnapshotCache) Put(ctx context.Context, kind models.SnapshotKind, code string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot for %s: %w", kind, code, err)
	}
	now := c.clock()
	return c.storage.SaveSnapshot(ctx, &models.SnapshotRecord{
		Kind:      kind,
		Code:      code,
		AsOfDate:  common.AsOfDate(now),
		Payload:   data,
		UpdatedAt: now,
	})
}

// List returns every stored snapshot, fresh or not.
func (c *SnapshotCache) List(ctx context.Context) ([]*models.SnapshotRecord, error) {
	return c.storage.ListSnapshots(ctx)
}

// Invalidate drops every snapshot held for code.
func (c *SnapshotCache) Invalidate(ctx context.Context, code string) error {
	return c.storage.DeleteSnapshots(ctx, code)
}
