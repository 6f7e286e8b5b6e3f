package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/models"
)

// document is the on-disk shape: {"watchlist": {code: {target_market_value: {min, max}}}}
type document struct {
	Watchlist map[string]models.WatchTarget `json:"watchlist"`
}

// WatchlistStorage keeps the watchlist in a single JSON document.
type WatchlistStorage struct {
	path   string
	logger arbor.ILogger
	mu     sync.Mutex
}

// NewWatchlistStorage creates a storage over the document at path. The file is created on first Save.
func NewWatchlistStorage(path string, logger arbor.ILogger) interfaces.WatchlistStorage {
	return &WatchlistStorage{
		path:   path,
		logger: logger,
	}
}

// Load reads the document. A missing file is an empty watchlist.
func (s *WatchlistStorage) Load(ctx context.Context) (map[string]models.WatchTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]models.WatchTarget{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist %s: %w", s.path, err)
	}

	var doc document
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse watchlist %s: %w", s.path, err)
		}
	}
	if doc.Watchlist == nil {
		doc.Watchlist = map[string]models.WatchTarget{}
	}
	return doc.Watchlist, nil
}

// Save writes the whole document through a temp file and rename.
func (s *WatchlistStorage) Save(ctx context.Context, entries map[string]models.WatchTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries == nil {
		entries = map[string]models.WatchTarget{}
	}
	data, err := json.MarshalIndent(document{Watchlist: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create watchlist directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".watchlist-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write watchlist: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync watchlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close watchlist: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace watchlist: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Int("entries", len(entries)).Msg("Watchlist flushed")
	return nil
}
