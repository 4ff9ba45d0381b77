// Package collector turns raw reader payloads into a deduplicated,
// classified candidate set.
package collector

import (
	"log/slog"

	"github.com/vnexsus/datesift/domain"
	"github.com/vnexsus/datesift/internal/dateparse"
)

// Collector flattens per-batch payloads into normalized candidates.
type Collector struct {
	norm *dateparse.Normalizer
}

// New returns a Collector using the given normalizer.
func New(norm *dateparse.Normalizer) *Collector {
	return &Collector{norm: norm}
}

// Collect merges all batches into a flat candidate sequence. Batches are
// independent; within each batch the sub-collections are visited in a
// fixed order so output order is deterministic. Values that fail
// normalization are dropped silently and only counted.
func (c *Collector) Collect(batches []domain.BatchPayload) []domain.DateCandidate {
	var out []domain.DateCandidate
	dropped := 0
	for i, batch := range batches {
		for _, e := range batch.Dates {
			if cand, ok := c.entry(e, i); ok {
				out = append(out, cand)
			} else {
				dropped++
			}
		}
		for _, r := range batch.Ranges {
			cands, miss := c.rangeEntries(r, i)
			out = append(out, cands...)
			dropped += miss
		}
		for _, e := range batch.InsuranceDates {
			if cand, ok := c.entry(e, i); ok {
				out = append(out, cand)
			} else {
				dropped++
			}
		}
		for _, e := range batch.TableDates {
			if cand, ok := c.entry(e, i); ok {
				out = append(out, cand)
			} else {
				dropped++
			}
		}
		for _, raw := range batch.ExtractedDates {
			d, ok := c.norm.Parse(raw)
			if !ok {
				dropped++
				continue
			}
			out = append(out, domain.DateCandidate{RawText: raw, Date: d, SourceBatch: i})
		}
	}
	if dropped > 0 {
		slog.Debug("dropped unparseable date values",
			"dropped", dropped,
			"kept", len(out),
			"batches", len(batches),
		)
	}
	return out
}

func (c *Collector) entry(e domain.BatchEntry, batch int) (domain.DateCandidate, bool) {
	d, ok := c.norm.Parse(e.Date)
	if !ok {
		return domain.DateCandidate{}, false
	}
	return domain.DateCandidate{
		RawText:     e.Date,
		Date:        d,
		SourceBatch: batch,
		Category:    e.Category,
		Importance:  e.Importance,
		Context:     e.Context,
		Confidence:  e.Confidence,
	}, true
}

// rangeEntries emits both boundaries as independent candidates carrying
// the range's tags. Boundary roles follow chronological order, not field
// position; with only one parseable boundary the field decides.
func (c *Collector) rangeEntries(r domain.BatchRange, batch int) ([]domain.DateCandidate, int) {
	insurance := r.Kind == domain.RangeKindInsurancePeriod
	start, okStart := c.norm.Parse(r.Start)
	end, okEnd := c.norm.Parse(r.End)

	missed := 0
	if !okStart && r.Start != "" {
		missed++
	}
	if !okEnd && r.End != "" {
		missed++
	}

	build := func(raw string, d domain.Date, role domain.RangeRole) domain.DateCandidate {
		return domain.DateCandidate{
			RawText:         raw,
			Date:            d,
			SourceBatch:     batch,
			RangeRole:       role,
			InsurancePeriod: insurance,
			Category:        r.Category,
			Importance:      r.Importance,
			Context:         r.Context,
			Confidence:      r.Confidence,
		}
	}

	switch {
	case okStart && okEnd:
		startRole, endRole := domain.RangeRoleStart, domain.RangeRoleEnd
		if end.Before(start) {
			startRole, endRole = domain.RangeRoleEnd, domain.RangeRoleStart
		}
		return []domain.DateCandidate{
			build(r.Start, start, startRole),
			build(r.End, end, endRole),
		}, missed
	case okStart:
		return []domain.DateCandidate{build(r.Start, start, domain.RangeRoleStart)}, missed
	case okEnd:
		return []domain.DateCandidate{build(r.End, end, domain.RangeRoleEnd)}, missed
	}
	return nil, missed
}
