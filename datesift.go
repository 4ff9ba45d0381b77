// Package datesift extracts, scores, and cross-checks medical record
// dates for insurance claim review. It is a library: the embedding
// service owns transport and presentation.
package datesift

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/vnexsus/datesift/domain"
	"github.com/vnexsus/datesift/internal/cache"
	"github.com/vnexsus/datesift/internal/collector"
	"github.com/vnexsus/datesift/internal/config"
	"github.com/vnexsus/datesift/internal/dateparse"
	"github.com/vnexsus/datesift/internal/evaluate"
	"github.com/vnexsus/datesift/internal/events"
	"github.com/vnexsus/datesift/internal/pipeline"
	"github.com/vnexsus/datesift/internal/proximity"
	"github.com/vnexsus/datesift/internal/reader"
	"github.com/vnexsus/datesift/internal/risk"
	"github.com/vnexsus/datesift/internal/scoring"
)

// Version identifies the processing semantics; it feeds the case
// fingerprint, so bumping it invalidates cached results.
const Version = "1.0.0"

// Service is the wired processing facade. Construct with New; a zero
// Service is not usable.
type Service struct {
	cfg      *domain.Config
	cache    domain.Cache
	bus      *events.Bus
	scorer   *scoring.Engine
	pipeline *pipeline.Pipeline
}

// LoadConfig reads configuration from the YAML file at path (or the
// DATESIFT_CONFIG variable when path is empty) with environment
// overrides applied.
func LoadConfig(path string) (*domain.Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() *domain.Config {
	return domain.DefaultConfig()
}

// New wires a Service from the configuration. A nil cfg uses the
// defaults.
func New(cfg *domain.Config) (*Service, error) {
	if cfg == nil {
		cfg = domain.DefaultConfig()
	}

	slog.SetDefault(newLogger(cfg.Logging))

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("initialize cache: %w", err)
	}

	engine, err := scoring.NewEngine(cfg.Scoring, cfg.Keywords)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initialize scoring engine: %w", err)
	}
	if len(cfg.CustomRules) > 0 {
		if err := engine.LoadRules(cfg.CustomRules); err != nil {
			store.Close()
			return nil, fmt.Errorf("load custom rules: %w", err)
		}
	}

	rdr, err := reader.New(cfg.Reader, cfg.Keywords)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initialize reader: %w", err)
	}

	bus := events.New(cfg.Events.BufferSize)

	pipe := pipeline.New(pipeline.Deps{
		Reader:      rdr,
		Collector:   collector.New(dateparse.New(cfg.Normalize)),
		Scorer:      engine,
		Flagger:     proximity.New(cfg.Proximity),
		Aggregator:  risk.New(cfg.Risk),
		Cache:       store,
		Bus:         bus,
		Concurrency: cfg.Pipeline.Concurrency,
		CacheTTL:    time.Duration(cfg.Cache.TTLSecs) * time.Second,
		Version:     Version,
	})

	slog.Info("datesift initialized",
		"version", Version,
		"cache", cfg.Cache.Type,
		"strategies", cfg.Reader.Strategies,
		"custom_rules", engine.CustomRuleCount(),
	)

	return &Service{
		cfg:      cfg,
		cache:    store,
		bus:      bus,
		scorer:   engine,
		pipeline: pipe,
	}, nil
}

// ProcessCase runs one case through the full pipeline.
func (s *Service) ProcessCase(ctx context.Context, input domain.CaseInput) (*domain.CaseResult, error) {
	return s.pipeline.Process(ctx, input)
}

// ProcessCases runs independent cases concurrently. Results and errors
// are positional with the inputs.
func (s *Service) ProcessCases(ctx context.Context, inputs []domain.CaseInput) ([]*domain.CaseResult, []error) {
	return s.pipeline.ProcessAll(ctx, inputs)
}

// EvaluateCase runs a case and returns its ground-truth comparison.
// The input must carry reference text.
func (s *Service) EvaluateCase(ctx context.Context, input domain.CaseInput) (*domain.MatchResult, error) {
	if input.ReferenceText == "" {
		return nil, fmt.Errorf("case %s has no reference text", input.CaseID)
	}
	result, err := s.pipeline.Process(ctx, input)
	if err != nil {
		return nil, err
	}
	return result.Evaluation, nil
}

// AggregateEvaluations pools per-case comparisons into corpus-level
// rates. Numerators and denominators are summed before dividing;
// per-case rates are never averaged.
func AggregateEvaluations(results []domain.MatchResult) domain.MatchSummary {
	return evaluate.Aggregate(results)
}

// ReloadRules replaces the operator-authored scoring rules. The swap is
// atomic: a compile failure keeps the previous set.
func (s *Service) ReloadRules(rules []domain.CustomRuleConfig) error {
	return s.scorer.LoadRules(rules)
}

// Events returns the case lifecycle stream.
func (s *Service) Events() domain.EventStream {
	return s.bus
}

// Close releases the cache and event resources.
func (s *Service) Close() error {
	var first error
	if err := s.bus.Close(); err != nil {
		first = err
	}
	if err := s.cache.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// newLogger builds the handler for the configured level and format.
func newLogger(cfg domain.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
