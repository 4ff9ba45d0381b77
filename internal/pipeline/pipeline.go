// Package pipeline orchestrates case runs through the reader,
// collector, scoring, proximity, and risk stages.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vnexsus/datesift/domain"
	"github.com/vnexsus/datesift/internal/collector"
	"github.com/vnexsus/datesift/internal/evaluate"
	"github.com/vnexsus/datesift/internal/events"
	"github.com/vnexsus/datesift/internal/proximity"
	"github.com/vnexsus/datesift/internal/reader"
	"github.com/vnexsus/datesift/internal/risk"
	"github.com/vnexsus/datesift/internal/scoring"
)

var tracer = otel.Tracer("datesift")

// Pipeline runs cases through the processing stages. Per-case work is
// sequential; independent cases may run concurrently because the stages
// share no mutable state beyond the result cache.
type Pipeline struct {
	reader     *reader.Client
	collector  *collector.Collector
	scorer     *scoring.Engine
	flagger    *proximity.Flagger
	aggregator *risk.Aggregator
	cache      domain.Cache
	bus        *events.Bus

	concurrency int
	cacheTTL    time.Duration
	version     string
}

// Deps holds the wired stage components. Cache and Bus may be nil;
// caching and event publication are then skipped.
type Deps struct {
	Reader     *reader.Client
	Collector  *collector.Collector
	Scorer     *scoring.Engine
	Flagger    *proximity.Flagger
	Aggregator *risk.Aggregator
	Cache      domain.Cache
	Bus        *events.Bus

	Concurrency int
	CacheTTL    time.Duration
	Version     string
}

// New creates a pipeline from wired components.
func New(deps Deps) *Pipeline {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Pipeline{
		reader:      deps.Reader,
		collector:   deps.Collector,
		scorer:      deps.Scorer,
		flagger:     deps.Flagger,
		aggregator:  deps.Aggregator,
		cache:       deps.Cache,
		bus:         deps.Bus,
		concurrency: concurrency,
		cacheTTL:    deps.CacheTTL,
		version:     deps.Version,
	}
}

// Process runs one case end to end. Payload input bypasses the reader;
// segment input goes through the configured strategy chain first.
func (p *Pipeline) Process(ctx context.Context, input domain.CaseInput) (*domain.CaseResult, error) {
	start := time.Now()
	runID := uuid.New().String()
	caseID := input.CaseID
	if caseID == "" {
		caseID = runID
	}

	ctx, span := tracer.Start(ctx, "case.process",
		trace.WithAttributes(
			attribute.String("case.id", caseID),
			attribute.String("run.id", runID),
		),
	)
	defer span.End()

	p.publish(ctx, domain.TopicCaseStarted, caseID, nil)

	// Cached result short-circuits the whole run
	key := Fingerprint(&input, p.version)
	if p.cache != nil {
		if cached, err := p.cache.GetResult(ctx, key); err == nil && cached != nil {
			cached.CacheHit = true
			cached.ElapsedMs = time.Since(start).Milliseconds()
			slog.Debug("case served from cache",
				"case_id", caseID,
				"run_id", cached.RunID,
			)
			p.publishResult(ctx, caseID, cached)
			return cached, nil
		}
	}

	// 1. Read segments unless payloads were supplied directly
	payloads := input.Payloads
	var readResult *reader.Result
	if len(payloads) == 0 && len(input.Segments) > 0 {
		if p.reader == nil {
			err := fmt.Errorf("no reader configured for segment input")
			p.failCase(ctx, caseID, err)
			return nil, err
		}
		var err error
		readResult, err = p.reader.Read(ctx, input.Segments)
		if err != nil {
			wrapped := fmt.Errorf("read case %s: %w", caseID, err)
			p.failCase(ctx, caseID, wrapped)
			return nil, wrapped
		}
		payloads = readResult.Payloads
	}

	// 2. Collect, dedup, classify
	candidates := p.collector.Collect(payloads)
	deduped, frequency := collector.Dedup(candidates)
	classified := collector.Classify(deduped)

	// 3. Score
	scored := p.scorer.Evaluate(&scoring.Input{
		Candidates: classified,
		Frequency:  frequency,
		Reference:  input.ClaimDate,
	})

	// 4. Proximity flags over the full candidate set
	var external *domain.Date
	if !input.EnrollmentDate.IsZero() {
		external = &input.EnrollmentDate
	}
	flags := p.flagger.Summarize(scored.Candidates, external)

	// 5. Risk verdict
	verdict := p.aggregator.Assess(ctx, input.Signals, flags)

	result := &domain.CaseResult{
		CaseID:     caseID,
		RunID:      runID,
		Candidates: scored.Candidates,
		Accepted:   scored.Accepted,
		Frequency:  frequency,
		Proximity:  flags,
		Risk:       verdict,
		Version:    p.version,
	}
	if readResult != nil {
		result.Strategy = readResult.Strategy
		result.Degraded = readResult.Degraded
		result.DegradedReason = readResult.DegradedReason
	}

	// 6. Offline evaluation when reference text accompanies the case
	if input.ReferenceText != "" {
		extracted := make([]string, len(scored.Accepted))
		for i, cand := range scored.Accepted {
			extracted[i] = cand.Date.ISO()
		}
		eval := evaluate.Evaluate(input.ReferenceText, extracted)
		result.Evaluation = &eval
	}

	result.ElapsedMs = time.Since(start).Milliseconds()

	if p.cache != nil {
		if err := p.cache.SetResult(ctx, key, result, p.cacheTTL); err != nil {
			slog.Error("failed to cache case result",
				"case_id", caseID,
				"error", err,
			)
		}
	}

	p.publishResult(ctx, caseID, result)

	slog.Info("case processed",
		"case_id", caseID,
		"run_id", runID,
		"candidates", len(result.Candidates),
		"accepted", len(result.Accepted),
		"risk_level", verdict.Level,
		"degraded", result.Degraded,
		"duration_ms", result.ElapsedMs,
	)

	return result, nil
}

// failCase logs and publishes a case failure.
func (p *Pipeline) failCase(ctx context.Context, caseID string, err error) {
	slog.Error("case failed",
		"case_id", caseID,
		"error", err,
	)
	p.publish(ctx, domain.TopicCaseFailed, caseID, []byte(err.Error()))
}

// publishResult emits the completed event with the JSON-encoded result.
func (p *Pipeline) publishResult(ctx context.Context, caseID string, result *domain.CaseResult) {
	if p.bus == nil {
		return
	}
	payload, _ := json.Marshal(result)
	p.publish(ctx, domain.TopicCaseCompleted, caseID, payload)
}

func (p *Pipeline) publish(ctx context.Context, topic, caseID string, payload []byte) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(ctx, topic, caseID, payload); err != nil {
		slog.Error("failed to publish case event",
			"topic", topic,
			"case_id", caseID,
			"error", err,
		)
	}
}
