// Package scoring ranks date candidates through an ordered chain of
// built-in phases, optionally extended with compiled CEL rules.
package scoring

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/vnexsus/datesift/domain"
)

// Engine scores candidates with the built-in phases followed by any
// loaded custom rules. The phase chain is fixed at construction; custom
// rules can be swapped at runtime.
type Engine struct {
	mu       sync.RWMutex
	custom   []*compiledRule
	phases   []Phase
	env      *cel.Env
	config   domain.ScoringConfig
	keywords domain.KeywordConfig
}

// Input carries the per-case scoring context.
type Input struct {
	Candidates []domain.DateCandidate
	Frequency  map[string]int
	Reference  domain.Date // claim or filing date; falls back to Today
	Today      domain.Date // current UTC date when zero
}

// Output separates the full scored set from the ranked accepted subset.
type Output struct {
	Candidates []domain.ScoredCandidate
	Accepted   []domain.ScoredCandidate
}

// NewEngine creates a scoring engine with the built-in phase chain.
func NewEngine(cfg domain.ScoringConfig, keywords domain.KeywordConfig) (*Engine, error) {
	env, err := newCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Engine{
		phases:   BuiltinPhases(),
		env:      env,
		config:   cfg,
		keywords: keywords,
	}, nil
}

// LoadRules compiles and installs custom scoring rules, replacing any
// previously loaded set. A single compile error rejects the whole set so
// the engine never runs a partially loaded configuration.
func (e *Engine) LoadRules(rules []domain.CustomRuleConfig) error {
	compiled := make([]*compiledRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		cr, err := compileRule(e.env, rule)
		if err != nil {
			return fmt.Errorf("failed to compile rule %s: %w", rule.ID, err)
		}
		compiled = append(compiled, cr)
	}

	e.mu.Lock()
	e.custom = compiled
	e.mu.Unlock()

	slog.Info("custom scoring rules loaded", "count", len(compiled))
	return nil
}

// CustomRuleCount returns the number of loaded custom rules.
func (e *Engine) CustomRuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.custom)
}

// Threshold returns the acceptance threshold the engine applies.
func (e *Engine) Threshold() int {
	return e.config.AcceptThreshold
}

// Evaluate scores every candidate, marks acceptance against the
// threshold and returns the accepted subset ranked by descending score,
// ties broken by ascending date. Deterministic: the same input and
// configuration always produce the same output.
func (e *Engine) Evaluate(in *Input) *Output {
	today := in.Today
	if today.IsZero() {
		today = domain.Today()
	}
	reference := in.Reference
	if reference.IsZero() {
		reference = today
	}
	sc := &Context{
		Reference: reference,
		Today:     today,
		Frequency: in.Frequency,
		Config:    &e.config,
		Keywords:  &e.keywords,
	}

	e.mu.RLock()
	custom := e.custom
	e.mu.RUnlock()

	scored := make([]domain.ScoredCandidate, 0, len(in.Candidates))
	for _, cand := range in.Candidates {
		scored = append(scored, e.score(cand, sc, custom))
	}
	return &Output{Candidates: scored, Accepted: Rank(scored)}
}

func (e *Engine) score(cand domain.DateCandidate, sc *Context, custom []*compiledRule) domain.ScoredCandidate {
	out := domain.ScoredCandidate{DateCandidate: cand}
	for _, phase := range e.phases {
		res := phase.Eval(cand, sc)
		out.Breakdown = append(out.Breakdown, domain.PhaseContribution{
			Phase: phase.Name,
			Delta: res.Delta,
			Note:  res.Note,
		})
		if res.Drop {
			return out
		}
		out.Score += res.Delta
	}

	for _, rule := range custom {
		delta, err := rule.eval(cand, sc)
		if err != nil {
			slog.Warn("custom rule evaluation failed",
				"ruleId", rule.config.ID,
				"date", cand.Date.ISO(),
				"error", err)
			out.Breakdown = append(out.Breakdown, domain.PhaseContribution{
				Phase: "rule:" + rule.config.ID,
				Note:  "evaluation failed",
			})
			continue
		}
		out.Breakdown = append(out.Breakdown, domain.PhaseContribution{
			Phase: "rule:" + rule.config.ID,
			Delta: delta,
			Note:  rule.config.Name,
		})
		out.Score += delta
	}

	out.Accepted = out.Score >= e.config.AcceptThreshold
	return out
}

// Rank filters to accepted candidates and orders them by descending
// score, breaking ties by ascending chronological date.
func Rank(scored []domain.ScoredCandidate) []domain.ScoredCandidate {
	accepted := make([]domain.ScoredCandidate, 0, len(scored))
	for _, s := range scored {
		if s.Accepted {
			accepted = append(accepted, s)
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		if accepted[i].Score != accepted[j].Score {
			return accepted[i].Score > accepted[j].Score
		}
		return accepted[i].Date.Before(accepted[j].Date)
	})
	return accepted
}
