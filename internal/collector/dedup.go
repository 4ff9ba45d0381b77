package collector

import "github.com/vnexsus/datesift/domain"

// Dedup collapses candidates sharing a calendar date into one retained
// entry and counts every occurrence across all sub-collections and
// batches. The date value alone is the key; category deliberately is
// not part of it. Retained metadata comes from the first occurrence,
// later ones only increment the counter.
func Dedup(candidates []domain.DateCandidate) ([]domain.DateCandidate, map[string]int) {
	freq := make(map[string]int, len(candidates))
	var unique []domain.DateCandidate
	for _, cand := range candidates {
		key := cand.Date.ISO()
		freq[key]++
		if freq[key] == 1 {
			unique = append(unique, cand)
		}
	}
	return unique, freq
}
