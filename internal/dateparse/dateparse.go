// Package dateparse normalizes the date formats found in Korean medical
// and insurance paperwork into validated calendar dates.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vnexsus/datesift/domain"
)

// Raw forms accepted during normalization. Month and day may be one or
// two digits; each form allows an optional time-of-day suffix, which is
// truncated.
var (
	isoForm    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[T ].*)?$`)
	dottedForm = regexp.MustCompile(`^(\d{4})\.(\d{1,2})\.(\d{1,2})(?:[T ].*)?$`)
	slashForm  = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})(?:[T ].*)?$`)
	koreanForm = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일(?:\s.*)?$`)
)

var valueForms = []*regexp.Regexp{isoForm, dottedForm, slashForm, koreanForm}

// Normalizer converts raw date strings into validated calendar dates
// bounded by a syntactic year window.
type Normalizer struct {
	minYear int
	maxYear int
}

// New returns a Normalizer for the configured year window. Zero bounds
// fall back to the documented defaults.
func New(cfg domain.NormalizeConfig) *Normalizer {
	n := &Normalizer{minYear: cfg.MinYear, maxYear: cfg.MaxYear}
	if n.minYear == 0 {
		n.minYear = 1950
	}
	if n.maxYear == 0 {
		n.maxYear = 2100
	}
	return n
}

// defaultNormalizer backs the package-level functions with the
// documented default window.
var defaultNormalizer = New(domain.NormalizeConfig{})

// Parse normalizes one raw value with the default year window.
func Parse(raw string) (domain.Date, bool) {
	return defaultNormalizer.Parse(raw)
}

// Parse normalizes one raw value. Returns false for anything that does
// not resolve to a real calendar date inside the year window; callers
// drop such values silently.
func (n *Normalizer) Parse(raw string) (domain.Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Date{}, false
	}
	for _, form := range valueForms {
		m := form.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		return n.build(m[1], m[2], m[3])
	}
	return domain.Date{}, false
}

func (n *Normalizer) build(year, month, day string) (domain.Date, bool) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if y < n.minYear || y > n.maxYear {
		return domain.Date{}, false
	}
	return domain.NewDate(y, mo, d)
}
