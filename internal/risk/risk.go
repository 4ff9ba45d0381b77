// Package risk combines external fraud-detector signals with
// enrollment-proximity flags into a categorical investigation verdict.
package risk

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vnexsus/datesift/domain"
)

// Aggregator weighs detector signals and assigns a risk level. The
// detectors themselves are opaque collaborators; only their outputs
// enter the score.
type Aggregator struct {
	cfg domain.RiskConfig
}

// New creates an aggregator with the given weights and thresholds.
func New(cfg domain.RiskConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Assess computes the weighted risk score and the evidence trail for
// one case. Every assessment gets its own ID. A zero score yields
// exactly one "no findings" statement.
func (a *Aggregator) Assess(ctx context.Context, signals domain.RiskSignals, flags *domain.FlagSummary) *domain.InvestigationRisk {
	result := &domain.InvestigationRisk{
		ID: uuid.New().String(),
	}

	if signals.DisclosureViolations > 0 {
		delta := a.cfg.DisclosureWeight * signals.DisclosureViolations
		result.Score += delta
		result.Evidence = append(result.Evidence, fmt.Sprintf(
			"%d undisclosed pre-enrollment findings (+%d)", signals.DisclosureViolations, delta))
	}
	if signals.DoctorShopping {
		result.Score += a.cfg.DoctorShoppingWeight
		result.Evidence = append(result.Evidence, fmt.Sprintf(
			"doctor shopping suspected across %d providers within 30 days (+%d)",
			signals.DoctorShoppingProviders, a.cfg.DoctorShoppingWeight))
	}
	if a.progressive(signals.Progressivity) {
		result.Score += a.cfg.ProgressivityWeight
		result.Evidence = append(result.Evidence, fmt.Sprintf(
			"disease progression classified %s (+%d)", signals.Progressivity, a.cfg.ProgressivityWeight))
	}

	if result.Score > 0 && flags != nil && !flags.Skipped && len(flags.Flags) > 0 {
		result.Evidence = append(result.Evidence, flagLine(flags))
	}
	if result.Score == 0 {
		result.Evidence = []string{"no findings"}
	}

	result.Level = a.level(result.Score)
	return result
}

func (a *Aggregator) progressive(class string) bool {
	for _, c := range a.cfg.ProgressiveClasses {
		if strings.EqualFold(class, c) {
			return true
		}
	}
	return false
}

func (a *Aggregator) level(score int) string {
	switch {
	case score >= a.cfg.HighThreshold:
		return domain.RiskHigh
	case score >= a.cfg.MediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// flagLine renders the proximity summary as one evidence bullet with
// buckets in fixed order.
func flagLine(flags *domain.FlagSummary) string {
	order := []domain.Bucket{
		domain.BucketWithin3Months,
		domain.BucketWithin1Year,
		domain.BucketWithin5Years,
		domain.BucketOutside,
	}
	parts := make([]string, 0, len(order))
	for _, bucket := range order {
		if n := flags.Buckets[bucket]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, bucket))
		}
	}
	return fmt.Sprintf("%d medical events precede enrollment %s (%s)",
		len(flags.Flags), flags.Enrollment.ISO(), strings.Join(parts, ", "))
}
