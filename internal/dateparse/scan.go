package dateparse

import (
	"regexp"
	"sort"

	"github.com/vnexsus/datesift/domain"
)

// Scan forms match anywhere in free text. Boundary bytes are checked
// manually because RE2 has no lookaround; without the check a digit
// glued to a match would produce phantom dates.
var scanForms = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`),
	regexp.MustCompile(`(\d{4})\.(\d{1,2})\.(\d{1,2})`),
	regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`),
	regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`),
}

// Occurrence is one date found in free text, with byte offsets into the
// scanned string.
type Occurrence struct {
	Date  domain.Date
	Start int
	End   int
}

// ScanOccurrences finds every valid date in the text, ordered by
// position. Overlapping matches collapse to the earliest.
func (n *Normalizer) ScanOccurrences(text string) []Occurrence {
	var occs []Occurrence
	for _, form := range scanForms {
		for _, idx := range form.FindAllStringSubmatchIndex(text, -1) {
			start, end := idx[0], idx[1]
			if start > 0 && isDigit(text[start-1]) {
				continue
			}
			if end < len(text) && isDigit(text[end]) {
				continue
			}
			d, ok := n.build(text[idx[2]:idx[3]], text[idx[4]:idx[5]], text[idx[6]:idx[7]])
			if !ok {
				continue
			}
			occs = append(occs, Occurrence{Date: d, Start: start, End: end})
		}
	}
	sort.Slice(occs, func(i, j int) bool {
		if occs[i].Start != occs[j].Start {
			return occs[i].Start < occs[j].Start
		}
		return occs[i].End > occs[j].End
	})

	var out []Occurrence
	lastEnd := -1
	for _, o := range occs {
		if o.Start < lastEnd {
			continue
		}
		out = append(out, o)
		lastEnd = o.End
	}
	return out
}

// ScanText returns the unique ISO dates in the text, first-seen order.
// This is the extraction applied to reference documents.
func (n *Normalizer) ScanText(text string) []string {
	seen := make(map[string]struct{})
	var dates []string
	for _, occ := range n.ScanOccurrences(text) {
		iso := occ.Date.ISO()
		if _, ok := seen[iso]; ok {
			continue
		}
		seen[iso] = struct{}{}
		dates = append(dates, iso)
	}
	return dates
}

// ScanOccurrences scans with the default year window.
func ScanOccurrences(text string) []Occurrence {
	return defaultNormalizer.ScanOccurrences(text)
}

// ScanText scans with the default year window.
func ScanText(text string) []string {
	return defaultNormalizer.ScanText(text)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
