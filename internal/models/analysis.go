package models

import (
	"encoding/json"
	"time"
)

// Track identifies one analysis persona. Each track has its own prompt, output schema and cache.
type Track string

const (
	// TrackValue is the value-investment analysis.
	TrackValue Track = "value"
	// TrackTao is the philosophical (道德经) analysis.
	TrackTao Track = "tao"
	// TrackMasters is the five-investor multi-expert analysis.
	TrackMasters Track = "masters"
)

// Tracks lists every track.
func Tracks() []Track {
	return []Track{TrackValue, TrackTao, TrackMasters}
}

// ParseTrack accepts a track name or one of its aliases.
func ParseTrack(s string) (Track, bool) {
	switch s {
	case "value", "ai", "ai_analysis":
		return TrackValue, true
	case "tao", "dao", "tao_analysis":
		return TrackTao, true
	case "masters", "master", "daka", "master_analysis":
		return TrackMasters, true
	}
	return "", false
}

// AnalysisResult is a terminal analysis state: either the parsed structured
// payload or an ErrorEnvelope. Payload is JSON in both cases.
type AnalysisResult struct {
	Track     Track           `json:"track"`
	Code      string          `json:"code"`
	Payload   json.RawMessage `json:"payload"`
	Malformed bool            `json:"malformed"`  // Payload is an ErrorEnvelope
	FromCache bool            `json:"from_cache"` // served from the analysis cache
}

// EnvelopeError is the analysis_result member of an ErrorEnvelope.
type EnvelopeError struct {
	Error   string `json:"error"`
	RawText string `json:"raw_text"`
}

// AnalysisRecord is the persisted form of a successfully parsed analysis.
type AnalysisRecord struct {
	Key       string    `json:"key"`
	Track     Track     `json:"track" badgerhold:"index"`
	Code      string    `json:"code"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotKind separates the record types held in the daily snapshot cache.
type SnapshotKind string

const (
	// SnapshotStock holds StockResponse values.
	SnapshotStock SnapshotKind = "stock"
	// SnapshotValue holds ValueAnalysisData values.
	SnapshotValue SnapshotKind = "value"
)

// SnapshotRecord is one daily snapshot cache entry.
type SnapshotRecord struct {
	Key       string       `json:"key"`
	Kind      SnapshotKind `json:"kind"`
	Code      string       `json:"code" badgerhold:"index"`
	AsOfDate  string       `json:"as_of_date"` // YYYY-MM-DD, local time
	Payload   []byte       `json:"payload"`
	UpdatedAt time.Time    `json:"updated_at"`
}
