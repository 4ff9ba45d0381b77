package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vnexsus/datesift/domain"
	"github.com/vnexsus/datesift/internal/cache"
	"github.com/vnexsus/datesift/internal/collector"
	"github.com/vnexsus/datesift/internal/dateparse"
	"github.com/vnexsus/datesift/internal/events"
	"github.com/vnexsus/datesift/internal/proximity"
	"github.com/vnexsus/datesift/internal/reader"
	"github.com/vnexsus/datesift/internal/risk"
	"github.com/vnexsus/datesift/internal/scoring"
)

// stubStrategy implements reader.Strategy for pipeline tests.
type stubStrategy struct {
	name string
	err  error
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(_ context.Context, _ domain.Segment) (domain.BatchPayload, error) {
	if s.err != nil {
		return domain.BatchPayload{}, s.err
	}
	return domain.BatchPayload{
		Dates: []domain.BatchEntry{
			{Date: "2024-05-01", Context: "수술 시행", Category: domain.CategorySurgery},
		},
	}, nil
}

func newTestPipeline(t *testing.T, rdr *reader.Client, store domain.Cache, bus *events.Bus) *Pipeline {
	t.Helper()
	cfg := domain.DefaultConfig()
	engine, err := scoring.NewEngine(cfg.Scoring, cfg.Keywords)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return New(Deps{
		Reader:      rdr,
		Collector:   collector.New(dateparse.New(cfg.Normalize)),
		Scorer:      engine,
		Flagger:     proximity.New(cfg.Proximity),
		Aggregator:  risk.New(cfg.Risk),
		Cache:       store,
		Bus:         bus,
		Concurrency: 2,
		CacheTTL:    time.Minute,
		Version:     "test",
	})
}

func samplePayloads() []domain.BatchPayload {
	return []domain.BatchPayload{{
		Dates: []domain.BatchEntry{
			{Date: "2024-05-01", Context: "복강경 수술 시행", Category: domain.CategorySurgery, Importance: domain.ImportanceHigh},
			{Date: "2024-06-01", Context: "발행일", Category: domain.CategoryMetadata},
		},
		Ranges: []domain.BatchRange{
			{Start: "2020-01-01", End: "2030-01-01", Kind: domain.RangeKindInsurancePeriod, Context: "보험기간"},
		},
	}}
}

func sampleInput(caseID string) domain.CaseInput {
	claim, _ := domain.ParseISO("2024-06-01")
	return domain.CaseInput{
		CaseID:    caseID,
		Payloads:  samplePayloads(),
		ClaimDate: claim,
	}
}

func TestProcessPayloadCase(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	result, err := p.Process(context.Background(), sampleInput("case-001"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if result.CaseID != "case-001" {
		t.Errorf("caseID = %s, want case-001", result.CaseID)
	}
	if result.RunID == "" {
		t.Error("runID must be assigned")
	}
	if result.Version != "test" {
		t.Errorf("version = %s, want test", result.Version)
	}
	if result.Strategy != "" || result.Degraded {
		t.Error("payload input must not involve a reader strategy")
	}

	if len(result.Candidates) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(result.Candidates))
	}
	if len(result.Accepted) != 2 {
		t.Fatalf("expected 2 accepted, got %+v", result.Accepted)
	}
	if result.Accepted[0].Category != domain.CategorySurgery {
		t.Errorf("top candidate category = %s, want surgery", result.Accepted[0].Category)
	}
	for i := 1; i < len(result.Accepted); i++ {
		if result.Accepted[i].Score > result.Accepted[i-1].Score {
			t.Error("accepted candidates must be ranked by descending score")
		}
	}

	if result.Proximity == nil || result.Proximity.Skipped {
		t.Fatal("proximity must resolve from the insurance-period candidate")
	}
	if result.Proximity.Source != domain.EnrollmentSourceCandidate {
		t.Errorf("enrollment source = %s, want candidate", result.Proximity.Source)
	}
	if result.Proximity.Enrollment.ISO() != "2020-01-01" {
		t.Errorf("enrollment = %s, want 2020-01-01", result.Proximity.Enrollment.ISO())
	}
	if len(result.Proximity.Flags) != 0 {
		t.Errorf("no medical event precedes enrollment, got flags %+v", result.Proximity.Flags)
	}

	if result.Risk == nil {
		t.Fatal("risk verdict missing")
	}
	if result.Risk.Level != domain.RiskLow {
		t.Errorf("risk level = %s, want LOW without signals", result.Risk.Level)
	}

	if result.Evaluation != nil {
		t.Error("evaluation must be absent without reference text")
	}
	if result.CacheHit {
		t.Error("first run must not be a cache hit")
	}
}

func TestProcessIdempotent(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)
	ctx := context.Background()

	first, err := p.Process(ctx, sampleInput("case-002"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	second, err := p.Process(ctx, sampleInput("case-002"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(first.Candidates) != len(second.Candidates) {
		t.Fatal("identical input must yield identical candidate sets")
	}
	for i := range first.Candidates {
		if first.Candidates[i].Score != second.Candidates[i].Score {
			t.Errorf("candidate %d scored %d then %d", i,
				first.Candidates[i].Score, second.Candidates[i].Score)
		}
		if first.Candidates[i].Accepted != second.Candidates[i].Accepted {
			t.Errorf("candidate %d acceptance changed between runs", i)
		}
	}
}

func TestProcessSegmentsViaReader(t *testing.T) {
	rdr := reader.NewWithStrategies(2, &stubStrategy{name: "stub-extract"})
	p := newTestPipeline(t, rdr, nil, nil)

	claim, _ := domain.ParseISO("2024-06-01")
	input := domain.CaseInput{
		CaseID:    "case-003",
		Segments:  []domain.Segment{{Index: 0, Text: "수술 기록"}},
		ClaimDate: claim,
	}

	result, err := p.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Strategy != "stub-extract" {
		t.Errorf("strategy = %s, want stub-extract", result.Strategy)
	}
	if result.Degraded {
		t.Error("single successful strategy must not be degraded")
	}
	if len(result.Candidates) != 1 || result.Candidates[0].Date.ISO() != "2024-05-01" {
		t.Errorf("unexpected candidates %+v", result.Candidates)
	}
}

func TestProcessReaderFailure(t *testing.T) {
	rdr := reader.NewWithStrategies(2, &stubStrategy{name: "stub-extract", err: errors.New("scan broke")})
	bus := events.New(8)
	defer bus.Close()
	p := newTestPipeline(t, rdr, nil, bus)

	failed := make(chan *domain.Event, 1)
	bus.Subscribe(context.Background(), domain.TopicCaseFailed, func(ctx context.Context, ev *domain.Event) error {
		select {
		case failed <- ev:
		default:
		}
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	input := domain.CaseInput{
		CaseID:   "case-004",
		Segments: []domain.Segment{{Index: 0, Text: "수술 기록"}},
	}

	result, err := p.Process(context.Background(), input)
	if err == nil {
		t.Fatal("expected case failure when every strategy fails")
	}
	if result != nil {
		t.Error("failed case must not return a result")
	}

	var se *reader.StrategyError
	if !errors.As(err, &se) {
		t.Fatalf("expected wrapped StrategyError, got %v", err)
	}
	if !strings.Contains(err.Error(), "case-004") {
		t.Errorf("error %q must name the case", err)
	}

	select {
	case ev := <-failed:
		if ev.CaseID != "case-004" {
			t.Errorf("failed event caseID = %s, want case-004", ev.CaseID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for failed event")
	}
}

func TestProcessCacheHit(t *testing.T) {
	store := cache.NewLRUCache(16)
	defer store.Close()
	p := newTestPipeline(t, nil, store, nil)
	ctx := context.Background()

	first, err := p.Process(ctx, sampleInput("case-005"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if first.CacheHit {
		t.Fatal("first run must compute")
	}

	second, err := p.Process(ctx, sampleInput("case-005"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second identical run must be served from cache")
	}
	if second.RunID != first.RunID {
		t.Errorf("cached result runID = %s, want original %s", second.RunID, first.RunID)
	}
	if len(second.Candidates) != len(first.Candidates) {
		t.Error("cached result must carry the original candidates")
	}
}

func TestProcessEvaluation(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	input := sampleInput("case-006")
	input.ReferenceText = "수술일 2024-05-01\n계약일 2020-01-01"

	result, err := p.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Evaluation == nil {
		t.Fatal("evaluation missing despite reference text")
	}
	eval := result.Evaluation
	if !eval.CoverageDefined || eval.CoverageRate != 100 {
		t.Errorf("coverage = %.1f defined=%v, want 100 defined", eval.CoverageRate, eval.CoverageDefined)
	}
	if eval.Grade != domain.GradeGood {
		t.Errorf("grade = %s, want good", eval.Grade)
	}
}

func TestProcessCompletedEvent(t *testing.T) {
	bus := events.New(8)
	defer bus.Close()
	p := newTestPipeline(t, nil, nil, bus)

	completed := make(chan *domain.Event, 1)
	bus.Subscribe(context.Background(), domain.TopicCaseCompleted, func(ctx context.Context, ev *domain.Event) error {
		select {
		case completed <- ev:
		default:
		}
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	if _, err := p.Process(context.Background(), sampleInput("case-007")); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	select {
	case ev := <-completed:
		if ev.CaseID != "case-007" {
			t.Errorf("event caseID = %s, want case-007", ev.CaseID)
		}
		var result domain.CaseResult
		if err := json.Unmarshal(ev.Payload, &result); err != nil {
			t.Fatalf("event payload must decode as a case result: %v", err)
		}
		if result.CaseID != "case-007" {
			t.Errorf("payload caseID = %s, want case-007", result.CaseID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for completed event")
	}
}

func TestProcessAll(t *testing.T) {
	rdr := reader.NewWithStrategies(2, &stubStrategy{name: "stub-extract", err: errors.New("scan broke")})
	p := newTestPipeline(t, rdr, nil, nil)

	inputs := []domain.CaseInput{
		sampleInput("case-a"),
		sampleInput("case-b"),
		{CaseID: "case-c", Segments: []domain.Segment{{Index: 0, Text: "검사 기록"}}},
		sampleInput("case-d"),
	}

	results, errs := p.ProcessAll(context.Background(), inputs)
	if len(results) != 4 || len(errs) != 4 {
		t.Fatalf("expected positional slices of 4, got %d/%d", len(results), len(errs))
	}

	for _, i := range []int{0, 1, 3} {
		if errs[i] != nil {
			t.Errorf("case %d failed: %v", i, errs[i])
		}
		if results[i] == nil || results[i].CaseID != inputs[i].CaseID {
			t.Errorf("result %d does not match input order", i)
		}
	}

	if errs[2] == nil {
		t.Error("segment case with a broken reader must fail")
	}
	if results[2] != nil {
		t.Error("failed case must have a nil result")
	}
}

func TestProcessAllCancelled(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := p.ProcessAll(ctx, []domain.CaseInput{sampleInput("case-e")})
	if errs[0] == nil {
		t.Error("cancelled context must surface per-case errors")
	}
}
