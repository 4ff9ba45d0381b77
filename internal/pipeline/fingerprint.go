package pipeline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/vnexsus/datesift/domain"
)

// Fingerprint derives the result-cache key for a case: SHA-256 over the
// canonical JSON of the input plus the processing version. Identical
// inputs map to identical keys; any change to segments, payloads,
// anchor dates, signals, or the library version produces a new one.
func Fingerprint(input *domain.CaseInput, version string) string {
	h := sha256.New()
	raw, _ := json.Marshal(input)
	h.Write(raw)
	h.Write([]byte(version))
	return fmt.Sprintf("case:%x", h.Sum(nil))
}
