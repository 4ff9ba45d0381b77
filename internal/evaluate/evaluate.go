// Package evaluate measures extraction quality against reference
// annotations using set semantics over canonical dates.
package evaluate

import (
	"sort"
	"strings"

	"github.com/vnexsus/datesift/domain"
	"github.com/vnexsus/datesift/internal/dateparse"
)

// ExtractReference pulls the canonical date set out of reference plain
// text, applying the same normalization the collector applies to
// payload values.
func ExtractReference(text string) []string {
	return dateparse.ScanText(text)
}

// Match compares the reference and extracted date sets. Matched and
// Missed partition the reference set; Matched and Extra partition the
// extracted set. All output slices are sorted ascending.
//
// Coverage is the share of reference dates found. An empty reference
// with a non-empty extraction counts as full coverage; with nothing on
// either side the rate is not applicable. Precision is the share of
// extracted dates that belong, not applicable when nothing was
// extracted.
func Match(reference, extracted []string) domain.MatchResult {
	refSet := toSet(reference)
	extSet := toSet(extracted)

	matched := make([]string, 0)
	missed := make([]string, 0)
	extra := make([]string, 0)
	for iso := range refSet {
		if extSet[iso] {
			matched = append(matched, iso)
		} else {
			missed = append(missed, iso)
		}
	}
	for iso := range extSet {
		if !refSet[iso] {
			extra = append(extra, iso)
		}
	}
	sort.Strings(matched)
	sort.Strings(missed)
	sort.Strings(extra)

	result := domain.MatchResult{
		Reference: sortedKeys(refSet),
		Extracted: sortedKeys(extSet),
		Matched:   matched,
		Missed:    missed,
		Extra:     extra,
	}

	switch {
	case len(refSet) > 0:
		result.CoverageRate = float64(len(matched)) / float64(len(refSet)) * 100
		result.CoverageDefined = true
	case len(extSet) > 0:
		result.CoverageRate = 100.0
		result.CoverageDefined = true
	}
	if len(extSet) > 0 {
		result.PrecisionRate = float64(len(matched)) / float64(len(extSet)) * 100
		result.PrecisionDefined = true
	}
	result.Grade = gradeFor(result)
	return result
}

// Evaluate runs the full offline comparison for one case: reference
// extraction, set matching and context lookup for every missed date.
func Evaluate(referenceText string, extracted []string) domain.MatchResult {
	result := Match(ExtractReference(referenceText), extracted)
	result.MissedContexts = missedContexts(referenceText, result.Missed)
	return result
}

func gradeFor(r domain.MatchResult) domain.Grade {
	if !r.CoverageDefined {
		return domain.GradeNone
	}
	switch {
	case r.CoverageRate >= 80:
		return domain.GradeGood
	case r.CoverageRate >= 60:
		return domain.GradeFair
	default:
		return domain.GradePoor
	}
}

// missedContexts finds the first reference-text line mentioning each
// missed date, in any accepted literal form.
func missedContexts(text string, missed []string) []domain.MissedContext {
	if len(missed) == 0 || text == "" {
		return nil
	}
	want := make(map[string]bool, len(missed))
	for _, iso := range missed {
		want[iso] = true
	}

	var out []domain.MissedContext
	found := make(map[string]bool, len(want))
	for i, line := range strings.Split(text, "\n") {
		if len(found) == len(want) {
			break
		}
		for _, occ := range dateparse.ScanOccurrences(line) {
			iso := occ.Date.ISO()
			if want[iso] && !found[iso] {
				found[iso] = true
				out = append(out, domain.MissedContext{
					Date: iso,
					Line: i + 1,
					Text: strings.TrimSpace(line),
				})
			}
		}
	}
	return out
}

func toSet(dates []string) map[string]bool {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
