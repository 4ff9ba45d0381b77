package evaluate

import "github.com/vnexsus/datesift/domain"

// Aggregate pools results across cases. Cases with undefined coverage
// contribute nothing to the coverage pool, and likewise for precision.
func Aggregate(results []domain.MatchResult) domain.MatchSummary {
	summary := domain.MatchSummary{
		Cases:  len(results),
		Grades: make(map[domain.Grade]int),
	}

	for _, r := range results {
		summary.Grades[r.Grade]++
		summary.MatchedTotal += len(r.Matched)
		summary.MissedTotal += len(r.Missed)
		summary.ExtraTotal += len(r.Extra)

		// A matched date implies both sets are non-empty, so the pools
		// share one numerator.
		if r.CoverageDefined {
			summary.ReferenceTotal += len(r.Reference)
		}
		if r.PrecisionDefined {
			summary.ExtractedTotal += len(r.Extracted)
		}
	}

	if summary.ReferenceTotal > 0 {
		summary.Coverage = float64(summary.MatchedTotal) / float64(summary.ReferenceTotal) * 100
		summary.CoverageDefined = true
	}
	if summary.ExtractedTotal > 0 {
		summary.Precision = float64(summary.MatchedTotal) / float64(summary.ExtractedTotal) * 100
		summary.PrecisionDefined = true
	}
	return summary
}
