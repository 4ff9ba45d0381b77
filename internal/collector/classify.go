package collector

import "github.com/vnexsus/datesift/domain"

// Classify applies the range-boundary override and the default tags.
// Boundaries of an insurance-period range are pinned regardless of
// upstream tags or confidence: the start anchors disclosure-risk
// analysis, the end carries no underwriting relevance. Untagged or
// out-of-vocabulary candidates fall back to other/medium. Runs once per
// case and is deterministic.
func Classify(candidates []domain.DateCandidate) []domain.DateCandidate {
	out := make([]domain.DateCandidate, len(candidates))
	for i, cand := range candidates {
		if cand.InsurancePeriod {
			switch cand.RangeRole {
			case domain.RangeRoleStart:
				cand.Category = domain.CategoryEnrollment
				cand.Importance = domain.ImportanceCritical
			case domain.RangeRoleEnd:
				cand.Category = domain.CategoryExpiry
				cand.Importance = domain.ImportanceLow
			}
		}
		if !cand.Category.Known() {
			cand.Category = domain.CategoryOther
		}
		if !cand.Importance.Known() {
			cand.Importance = domain.ImportanceMedium
		}
		out[i] = cand
	}
	return out
}
