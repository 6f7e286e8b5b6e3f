// Package analysis runs the LLM analysis tracks: build a prompt from assembled
// stock data, call the generator, parse the reply and cache parsed results.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/models"
)

// DataSource supplies the assembled inputs each track depends on.
type DataSource interface {
	GetValueAnalysisData(ctx context.Context, code string, forceRefresh bool) (*models.ValueAnalysisData, error)
	GetCompanyDetail(ctx context.Context, code string) (*models.CompanyDetail, error)
}

// failurePrefix is prepended to generator errors per track.
var failurePrefix = map[models.Track]string{
	models.TrackValue:   "AI分析失败",
	models.TrackTao:     "道德经分析失败",
	models.TrackMasters: "价值投资大咖分析失败",
}

// Service implements interfaces.AnalysisService.
type Service struct {
	data      DataSource
	generator interfaces.Generator
	cache     *Cache
	model     string
	timeout   time.Duration
	locks     *common.KeyedMutex
	logger    arbor.ILogger
}

// NewService creates the orchestrator. timeout bounds each generator call;
// zero means 30s.
func NewService(data DataSource, generator interfaces.Generator, cache *Cache, timeout time.Duration, logger arbor.ILogger) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		data:      data,
		generator: generator,
		cache:     cache,
		timeout:   timeout,
		locks:     common.NewKeyedMutex(),
		logger:    logger,
	}
}

// SetModel pins the model passed to the generator. Empty uses the provider default.
func (s *Service) SetModel(model string) {
	s.model = model
}

// Analyze returns the cached result for track and code unless forceRefresh is set,
// otherwise generates a fresh one. A reply that does not parse comes back as an
// ErrorEnvelope with Malformed set and is not cached.
func (s *Service) Analyze(ctx context.Context, track models.Track, code string, forceRefresh bool) (result *models.AnalysisResult, err error) {
	prefix, ok := failurePrefix[track]
	if !ok {
		return nil, common.InvalidFormat(fmt.Sprintf("不支持的分析类型: %s", track))
	}

	sc, err := common.ResolveStockCode(code)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("trace_id", common.TraceID(ctx)).
				Str("track", string(track)).
				Str("code", sc.Code).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Recovered from panic in analysis")
			result = nil
			err = common.GeneratorFailure(prefix, fmt.Errorf("panic: %v", r))
		}
	}()

	unlock := s.locks.Lock(string(track) + ":" + sc.Code)
	defer unlock()

	if !forceRefresh {
		payload, hit, cacheErr := s.cache.Get(ctx, track, sc.Code)
		if cacheErr != nil {
			s.logger.Warn().Err(cacheErr).Str("track", string(track)).Str("code", sc.Code).Msg("Analysis cache read failed")
		}
		if hit {
			s.logger.Debug().Str("track", string(track)).Str("code", sc.Code).Msg("Analysis served from cache")
			return &models.AnalysisResult{Track: track, Code: sc.Code, Payload: payload, FromCache: true}, nil
		}
	}

	inputs, err := s.gatherInputs(ctx, track, sc.Code, forceRefresh)
	if err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(track, inputs)
	if err != nil {
		return nil, common.GeneratorFailure(prefix, err)
	}

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Error().
			Str("trace_id", common.TraceID(ctx)).
			Str("track", string(track)).
			Str("code", sc.Code).
			Err(err).
			Msg("Generator call failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, common.GeneratorTimeout(prefix, err)
		}
		return nil, common.GeneratorFailure(prefix, err)
	}

	payload, parsed, err := Parse(raw, inputs.Groups(track))
	if err != nil {
		return nil, common.GeneratorFailure(prefix, err)
	}

	if !parsed {
		s.logger.Warn().
			Str("trace_id", common.TraceID(ctx)).
			Str("track", string(track)).
			Str("code", sc.Code).
			Int("raw_length", len(raw)).
			Msg("Generator reply is not a JSON object, returning error envelope")
		return &models.AnalysisResult{Track: track, Code: sc.Code, Payload: payload, Malformed: true}, nil
	}

	if err := s.cache.Put(ctx, track, sc.Code, payload); err != nil {
		s.logger.Warn().Err(err).Str("track", string(track)).Str("code", sc.Code).Msg("Failed to save analysis cache")
	}

	s.logger.Info().
		Str("trace_id", common.TraceID(ctx)).
		Str("track", string(track)).
		Str("code", sc.Code).
		Bool("force_refresh", forceRefresh).
		Msg("Analysis generated")

	return &models.AnalysisResult{Track: track, Code: sc.Code, Payload: payload}, nil
}

// Invalidate drops the cached results of code on every track.
func (s *Service) Invalidate(ctx context.Context, code string) error {
	sc, err := common.ResolveStockCode(code)
	if err != nil {
		return err
	}
	for _, track := range models.Tracks() {
		unlock := s.locks.Lock(string(track) + ":" + sc.Code)
		err := s.cache.Invalidate(ctx, track, sc.Code)
		unlock()
		if err != nil {
			return fmt.Errorf("failed to drop %s analysis for %s: %w", track, sc.Code, err)
		}
	}
	s.logger.Info().Str("code", sc.Code).Msg("Cached analyses dropped")
	return nil
}

// Cached lists the cached results of track, or of every track when track is empty.
func (s *Service) Cached(ctx context.Context, track models.Track) ([]*models.AnalysisRecord, error) {
	tracks := models.Tracks()
	if track != "" {
		tracks = []models.Track{track}
	}
	var records []*models.AnalysisRecord
	for _, t := range tracks {
		found, err := s.cache.List(ctx, t)
		if err != nil {
			return nil, err
		}
		records = append(records, found...)
	}
	return records, nil
}

// gatherInputs fetches what track needs. Any upstream error stops the run
// before the generator is called.
func (s *Service) gatherInputs(ctx context.Context, track models.Track, code string, forceRefresh bool) (Inputs, error) {
	var in Inputs

	if track == models.TrackTao || track == models.TrackMasters {
		company, err := s.data.GetCompanyDetail(ctx, code)
		if err != nil {
			return Inputs{}, err
		}
		in.Company = company
	}

	if track == models.TrackValue || track == models.TrackMasters {
		value, err := s.data.GetValueAnalysisData(ctx, code, forceRefresh)
		if err != nil {
			return Inputs{}, err
		}
		in.Value = value
	}

	return in, nil
}

// generate calls the generator under the configured timeout.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.generator.Generate(genCtx, s.model, prompt)
	s.logger.Debug().
		Str("generator", s.generator.Name()).
		Dur("elapsed", time.Since(start)).
		Int("prompt_length", len(prompt)).
		Msg("Generator call finished")

	if err != nil {
		if genCtx.Err() == context.DeadlineExceeded && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return "", err
	}
	return text, nil
}
