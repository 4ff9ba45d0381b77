package reader

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/vnexsus/datesift/domain"
	"github.com/vnexsus/datesift/internal/dateparse"
)

// categoryHints maps context keywords to a guessed category, first
// match wins. The guess is coarse; the classifier and scorer treat
// pattern-scan output as low confidence anyway.
var categoryHints = []struct {
	keywords []string
	category domain.Category
}{
	{[]string{"수술"}, domain.CategorySurgery},
	{[]string{"입원"}, domain.CategoryAdmission},
	{[]string{"퇴원"}, domain.CategoryDischarge},
	{[]string{"진단"}, domain.CategoryDiagnosis},
	{[]string{"검사", "CT", "MRI", "초음파", "내시경"}, domain.CategoryExam},
	{[]string{"외래", "내원", "통원"}, domain.CategoryOutpatient},
	{[]string{"발행", "출력", "작성", "발급"}, domain.CategoryMetadata},
}

// patternStrategy is the offline fallback: fixed-pattern scanning with
// keyword-based tagging. It needs no network and never fails.
type patternStrategy struct {
	radius   int
	keywords domain.KeywordConfig
}

func newPatternStrategy(cfg domain.ReaderConfig, keywords domain.KeywordConfig) *patternStrategy {
	radius := cfg.SnippetRadius
	if radius <= 0 {
		radius = 40
	}
	return &patternStrategy{radius: radius, keywords: keywords}
}

func (s *patternStrategy) Name() string { return domain.StrategyPatternScan }

// Extract scans the segment for date literals. Two dates joined only by
// range punctuation become one range; everything else becomes a single
// entry routed to the insurance collection when policy keywords appear
// nearby.
func (s *patternStrategy) Extract(ctx context.Context, segment domain.Segment) (domain.BatchPayload, error) {
	occurrences := dateparse.ScanOccurrences(segment.Text)

	var payload domain.BatchPayload
	for i := 0; i < len(occurrences); i++ {
		occ := occurrences[i]

		if i+1 < len(occurrences) && rangeSeparator(segment.Text[occ.End:occurrences[i+1].Start]) {
			next := occurrences[i+1]
			snip := s.snippet(segment.Text, occ.Start, next.End)
			kind := ""
			if containsAny(snip, s.keywords.Insurance) {
				kind = domain.RangeKindInsurancePeriod
			}
			payload.Ranges = append(payload.Ranges, domain.BatchRange{
				Start:      occ.Date.ISO(),
				End:        next.Date.ISO(),
				Kind:       kind,
				Context:    snip,
				Confidence: "low",
			})
			i++
			continue
		}

		snip := s.snippet(segment.Text, occ.Start, occ.End)
		entry := domain.BatchEntry{
			Date:       occ.Date.ISO(),
			Context:    snip,
			Category:   guessCategory(snip),
			Confidence: "low",
		}
		if containsAny(snip, s.keywords.Insurance) {
			payload.InsuranceDates = append(payload.InsuranceDates, entry)
		} else {
			payload.Dates = append(payload.Dates, entry)
		}
	}
	return payload, nil
}

// snippet returns up to radius runes of context on each side of the
// match, collapsed to one line.
func (s *patternStrategy) snippet(text string, start, end int) string {
	lo := start
	for r := 0; r < s.radius && lo > 0; r++ {
		_, size := utf8.DecodeLastRuneInString(text[:lo])
		lo -= size
	}
	hi := end
	for r := 0; r < s.radius && hi < len(text); r++ {
		_, size := utf8.DecodeRuneInString(text[hi:])
		hi += size
	}
	return strings.Join(strings.Fields(text[lo:hi]), " ")
}

// rangeSeparator reports whether the text between two dates is pure
// range punctuation, as in "2020-01-01 ~ 2030-01-01".
func rangeSeparator(between string) bool {
	trimmed := strings.TrimSpace(between)
	if trimmed == "" || len(trimmed) > 12 {
		return false
	}
	for _, r := range trimmed {
		switch r {
		case '~', '-', '–', '—':
		default:
			return false
		}
	}
	return true
}

func guessCategory(snippet string) domain.Category {
	for _, hint := range categoryHints {
		if containsAny(snippet, hint.keywords) {
			return hint.category
		}
	}
	return ""
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
