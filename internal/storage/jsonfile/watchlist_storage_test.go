package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
)

func TestWatchlistStorage_MissingFileIsEmpty(t *testing.T) {
	s := NewWatchlistStorage(filepath.Join(t.TempDir(), "watchlist.json"), arbor.NewLogger())

	entries, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWatchlistStorage_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "watchlist.json")
	s := NewWatchlistStorage(path, arbor.NewLogger())
	ctx := context.Background()

	entries := map[string]models.WatchTarget{
		"600000": {TargetMarketValue: &models.MarketValueTarget{Min: common.Float64(1000), Max: common.Float64(2000)}},
		"000001": {TargetMarketValue: &models.MarketValueTarget{}},
	}
	require.NoError(t, s.Save(ctx, entries))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"watchlist": {
			"600000": {"target_market_value": {"min": 1000, "max": 2000}},
			"000001": {"target_market_value": {"min": null, "max": null}}
		}
	}`, string(raw))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.NotNil(t, loaded["600000"].TargetMarketValue)
	assert.Equal(t, 1000.0, *loaded["600000"].TargetMarketValue.Min)
	assert.Nil(t, loaded["000001"].TargetMarketValue.Max)
}

func TestWatchlistStorage_ReadsLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"watchlist":{"300750":{"target_market_value":{"min":8000,"max":null}}}}`), 0644))

	loaded, err := NewWatchlistStorage(path, arbor.NewLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Contains(t, loaded, "300750")
	assert.Equal(t, 8000.0, *loaded["300750"].TargetMarketValue.Min)
	assert.Nil(t, loaded["300750"].TargetMarketValue.Max)
}

func TestWatchlistStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := NewWatchlistStorage(path, arbor.NewLogger()).Load(context.Background())
	assert.Error(t, err)
}
