package watchlist

import (
	"context"
	"fmt"
	"io"
	"maps"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the import/export shape:
//
//	watchlist:
//	  - code: "600000"
//	    target_market_value: {min: 1000, max: 2000}
type yamlDocument struct {
	Watchlist []yamlEntry `yaml:"watchlist"`
}

type yamlEntry struct {
	Code              string      `yaml:"code"`
	TargetMarketValue *yamlTarget `yaml:"target_market_value,omitempty"`
}

type yamlTarget struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// Export writes the watchlist as YAML in code order.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	doc := yamlDocument{Watchlist: []yamlEntry{}}
	for _, code := range s.sortedCodesLocked() {
		entry := yamlEntry{Code: code}
		if t := s.entries[code].TargetMarketValue; t != nil {
			entry.TargetMarketValue = &yamlTarget{Min: t.Min, Max: t.Max}
		}
		doc.Watchlist = append(doc.Watchlist, entry)
	}
	s.mu.Unlock()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode watchlist yaml: %w", err)
	}
	return enc.Close()
}

// Import reads a YAML watchlist and adds or replaces each entry. Entries are
// validated up front; nothing is written if any entry is invalid.
func (s *Service) Import(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read watchlist yaml: %w", err)
	}
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse watchlist yaml: %w", err)
	}

	for _, entry := range doc.Watchlist {
		var min, max *float64
		if entry.TargetMarketValue != nil {
			min, max = entry.TargetMarketValue.Min, entry.TargetMarketValue.Max
		}
		if err := s.check(entry.Code, min, max); err != nil {
			return 0, fmt.Errorf("watchlist entry %q: %w", entry.Code, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	next := maps.Clone(s.entries)
	for _, entry := range doc.Watchlist {
		var min, max *float64
		if entry.TargetMarketValue != nil {
			min, max = entry.TargetMarketValue.Min, entry.TargetMarketValue.Max
		}
		next[entry.Code] = newTarget(min, max)
	}
	if err := s.commitLocked(ctx, next); err != nil {
		return 0, err
	}
	s.logger.Info().Int("imported", len(doc.Watchlist)).Msg("Watchlist imported")
	return len(doc.Watchlist), nil
}
