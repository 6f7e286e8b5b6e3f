package analysis

import (
	"context"
	"encoding/json"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/models"
)

// Cache keeps one parsed result per track and code. Entries do not expire;
// only a forced refresh replaces them.
type Cache struct {
	storage interfaces.AnalysisStorage
	clock   common.Clock
	logger  arbor.ILogger
}

func NewCache(storage interfaces.AnalysisStorage, clock common.Clock, logger arbor.ILogger) *Cache {
	if clock == nil {
		clock = common.SystemClock
	}
	return &Cache{storage: storage, clock: clock, logger: logger}
}

// Get returns the cached payload for track and code, if any.
func (c *Cache) Get(ctx context.Context, track models.Track, code string) (json.RawMessage, bool, error) {
	record, err := c.storage.GetAnalysis(ctx, track, code)
	if err != nil {
		return nil, false, err
	}
	if record == nil || len(record.Payload) == 0 {
		return nil, false, nil
	}
	if !json.Valid(record.Payload) {
		c.logger.Warn().
			Str("track", string(track)).
			Str("code", code).
			Msg("Discarding unreadable analysis cache entry")
		return nil, false, nil
	}
	return json.RawMessage(record.Payload), true, nil
}

// Put stores a successfully parsed payload. ErrorEnvelopes must never reach here.
func (c *Cache) Put(ctx context.Context, track models.Track, code string, payload json.RawMessage) error {
	return c.storage.SaveAnalysis(ctx, &models.AnalysisRecord{
		Track:     track,
		Code:      code,
		Payload:   []byte(payload),
		CreatedAt: c.clock(),
	})
}

// Invalidate drops the entry for track and code.
func (c *Cache) Invalidate(ctx context.Context, track models.Track, code string) error {
	return c.storage.DeleteAnalysis(ctx, track, code)
}

// List returns every cached entry of track.
func (c *Cache) List(ctx context.Context, track models.Track) ([]*models.AnalysisRecord, error) {
	return c.storage.ListAnalyses(ctx, track)
}
