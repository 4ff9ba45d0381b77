package scoring

import (
	"fmt"
	"strings"

	"github.com/vnexsus/datesift/domain"
)

// Result is one phase's verdict for a candidate. Drop rejects the
// candidate outright and stops the remaining phases.
type Result struct {
	Delta int
	Drop  bool
	Note  string
}

// Phase is a pure scoring rule: same candidate and context, same result.
type Phase struct {
	Name string
	Eval func(cand domain.DateCandidate, sc *Context) Result
}

// Context carries the per-case state the phases read. Built once per
// evaluation and never mutated by the phases.
type Context struct {
	Reference domain.Date // recency anchor: claim date, else processing date
	Today     domain.Date // upper bound for plausibility
	Frequency map[string]int
	Config    *domain.ScoringConfig
	Keywords  *domain.KeywordConfig
}

// BuiltinPhases returns the scoring phases in their fixed evaluation
// order. Reordering or removing a phase is an engine-construction
// decision, never something a phase does itself.
func BuiltinPhases() []Phase {
	return []Phase{
		{Name: "range-validity", Eval: rangeValidity},
		{Name: "type-priority", Eval: typePriority},
		{Name: "recency", Eval: recency},
		{Name: "insurance-period-role", Eval: insurancePeriodRole},
		{Name: "metadata-penalty", Eval: metadataPenalty},
		{Name: "context-keywords", Eval: contextKeywords},
		{Name: "frequency", Eval: frequencyBonus},
	}
}

// rangeValidity drops candidates whose year falls outside the plausible
// window. Expiry dates are exempt from the upper bound: policies
// legitimately end decades in the future.
func rangeValidity(cand domain.DateCandidate, sc *Context) Result {
	if cand.Date.Year < sc.Config.MinYear {
		return Result{Drop: true, Note: fmt.Sprintf("year %d before minimum %d", cand.Date.Year, sc.Config.MinYear)}
	}
	if cand.Category == domain.CategoryExpiry {
		return Result{}
	}
	limit := sc.Today.AddYears(sc.Config.FutureYears)
	if cand.Date.After(limit) {
		return Result{Drop: true, Note: "beyond future bound " + limit.ISO()}
	}
	return Result{}
}

// typePriority sets the base score from the candidate's category.
func typePriority(cand domain.DateCandidate, sc *Context) Result {
	return Result{Delta: sc.Config.TypePoints[cand.Category]}
}

// recency rewards dates close to the reference anchor in discrete tiers.
func recency(cand domain.DateCandidate, sc *Context) Result {
	days := domain.DaysBetween(cand.Date, sc.Reference)
	if days < 0 {
		days = -days
	}
	for _, tier := range sc.Config.Recency {
		if days <= tier.WithinDays {
			return Result{Delta: tier.Bonus, Note: fmt.Sprintf("%d days from reference", days)}
		}
	}
	return Result{}
}

// insurancePeriodRole rescores range boundaries from provenance rather
// than the classified tag; upstream tagging is not consistent enough to
// carry the whole signal.
func insurancePeriodRole(cand domain.DateCandidate, sc *Context) Result {
	if !cand.InsurancePeriod {
		return Result{}
	}
	switch cand.RangeRole {
	case domain.RangeRoleStart:
		return Result{Delta: sc.Config.RangeStartBonus, Note: "coverage start"}
	case domain.RangeRoleEnd:
		return Result{Delta: sc.Config.RangeEndPenalty, Note: "coverage end"}
	}
	return Result{}
}

// metadataPenalty penalizes candidates whose context reads like document
// administration: issuance, print and form-generation phrasing.
func metadataPenalty(cand domain.DateCandidate, sc *Context) Result {
	if cand.Context == "" {
		return Result{}
	}
	if kw := firstMatch(cand.Context, sc.Keywords.Metadata); kw != "" {
		return Result{Delta: sc.Config.MetadataPenalty, Note: "metadata phrasing: " + kw}
	}
	return Result{}
}

// contextKeywords applies at most one positive and one negative
// adjustment no matter how many keywords match, bounding the effect of
// keyword-dense snippets.
func contextKeywords(cand domain.DateCandidate, sc *Context) Result {
	if cand.Context == "" {
		return Result{}
	}
	delta := 0
	var notes []string
	if kw := firstMatch(cand.Context, sc.Keywords.Positive); kw != "" {
		delta += sc.Config.KeywordBonus
		notes = append(notes, "positive: "+kw)
	}
	if kw := firstMatch(cand.Context, sc.Keywords.Negative); kw != "" {
		delta += sc.Config.KeywordPenalty
		notes = append(notes, "negative: "+kw)
	}
	if len(notes) == 0 {
		return Result{}
	}
	return Result{Delta: delta, Note: strings.Join(notes, ", ")}
}

// frequencyBonus escalates with repeat sightings of the same date,
// capped so one date echoed through a document cannot dominate.
func frequencyBonus(cand domain.DateCandidate, sc *Context) Result {
	f := sc.Frequency[cand.Date.ISO()]
	if f < 2 {
		return Result{}
	}
	bonus := sc.Config.FrequencyStep * (f - 1)
	if bonus > sc.Config.FrequencyCap {
		bonus = sc.Config.FrequencyCap
	}
	return Result{Delta: bonus, Note: fmt.Sprintf("seen %d times", f)}
}

func firstMatch(text string, keywords []string) string {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw
		}
	}
	return ""
}
