package pipeline

import (
	"strings"
	"testing"

	"github.com/vnexsus/datesift/domain"
)

func TestFingerprint(t *testing.T) {
	base := sampleInput("case-fp")

	t.Run("Stable", func(t *testing.T) {
		a := sampleInput("case-fp")
		first := Fingerprint(&a, "1.0.0")
		b := sampleInput("case-fp")
		second := Fingerprint(&b, "1.0.0")
		if first != second {
			t.Errorf("identical inputs fingerprinted %s and %s", first, second)
		}
	})

	t.Run("Prefixed", func(t *testing.T) {
		if !strings.HasPrefix(Fingerprint(&base, "1.0.0"), "case:") {
			t.Error("fingerprint must carry the case key prefix")
		}
	})

	t.Run("VersionSensitive", func(t *testing.T) {
		if Fingerprint(&base, "1.0.0") == Fingerprint(&base, "1.0.1") {
			t.Error("version change must produce a new fingerprint")
		}
	})

	t.Run("PayloadSensitive", func(t *testing.T) {
		changed := sampleInput("case-fp")
		changed.Payloads[0].Dates[0].Date = "2024-05-02"
		if Fingerprint(&base, "1.0.0") == Fingerprint(&changed, "1.0.0") {
			t.Error("payload change must produce a new fingerprint")
		}
	})

	t.Run("SignalSensitive", func(t *testing.T) {
		changed := sampleInput("case-fp")
		changed.Signals.DisclosureViolations = 2
		if Fingerprint(&base, "1.0.0") == Fingerprint(&changed, "1.0.0") {
			t.Error("signal change must produce a new fingerprint")
		}
	})
}
