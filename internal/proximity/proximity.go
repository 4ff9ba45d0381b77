// Package proximity flags medical events that predate the insurance
// enrollment date, the anchor for disclosure-risk analysis.
package proximity

import (
	"log/slog"

	"github.com/vnexsus/datesift/domain"
)

// Flagger buckets pre-enrollment events by their distance to the
// enrollment date. Pure given its configuration.
type Flagger struct {
	cfg domain.ProximityConfig
}

// New creates a flagger with the given bucket bounds.
func New(cfg domain.ProximityConfig) *Flagger {
	return &Flagger{cfg: cfg}
}

// ResolveEnrollment picks the enrollment anchor: the earliest
// critical-importance insurance-enrollment candidate wins, else the
// externally supplied date. The second return names the source, the
// third reports whether any anchor exists. Never guesses.
func ResolveEnrollment(candidates []domain.ScoredCandidate, external *domain.Date) (domain.Date, string, bool) {
	var earliest domain.Date
	for _, cand := range candidates {
		if cand.Category != domain.CategoryEnrollment || cand.Importance != domain.ImportanceCritical {
			continue
		}
		if earliest.IsZero() || cand.Date.Before(earliest) {
			earliest = cand.Date
		}
	}
	if !earliest.IsZero() {
		return earliest, domain.EnrollmentSourceCandidate, true
	}
	if external != nil && !external.IsZero() {
		return *external, domain.EnrollmentSourceExternal, true
	}
	return domain.Date{}, "", false
}

// Summarize resolves the enrollment anchor and flags every medical
// event strictly before it. Without an anchor the summary is skipped
// and reports the reason instead of flags.
func (f *Flagger) Summarize(candidates []domain.ScoredCandidate, external *domain.Date) *domain.FlagSummary {
	enrollment, source, ok := ResolveEnrollment(candidates, external)
	if !ok {
		slog.Debug("proximity flagging skipped", "reason", "no enrollment date")
		return &domain.FlagSummary{Skipped: true, SkipReason: "insufficient data"}
	}

	summary := &domain.FlagSummary{
		Enrollment: enrollment,
		Source:     source,
		Buckets:    make(map[domain.Bucket]int),
	}
	for _, cand := range candidates {
		if !cand.Category.MedicalEvent() {
			continue
		}
		daysBefore := domain.DaysBetween(cand.Date, enrollment)
		if daysBefore <= 0 {
			continue
		}
		bucket := f.bucketFor(daysBefore)
		summary.Flags = append(summary.Flags, domain.EnrollmentFlag{
			Date:       cand.Date.ISO(),
			Category:   cand.Category,
			DaysBefore: daysBefore,
			Bucket:     bucket,
		})
		summary.Buckets[bucket]++
	}
	return summary
}

// bucketFor assigns the most specific bucket for a positive day delta.
func (f *Flagger) bucketFor(daysBefore int) domain.Bucket {
	switch {
	case daysBefore <= f.cfg.Within3MonthsDays:
		return domain.BucketWithin3Months
	case daysBefore <= f.cfg.Within1YearDays:
		return domain.BucketWithin1Year
	case daysBefore <= f.cfg.Within5YearsDays:
		return domain.BucketWithin5Years
	default:
		return domain.BucketOutside
	}
}
