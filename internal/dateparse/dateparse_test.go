package dateparse

import (
	"testing"

	"github.com/vnexsus/datesift/domain"
)

func TestParse(t *testing.T) {
	n := New(domain.NormalizeConfig{MinYear: 1950, MaxYear: 2100})

	t.Run("AcceptedForms", func(t *testing.T) {
		cases := []struct {
			raw  string
			want string
		}{
			{"2024-05-01", "2024-05-01"},
			{"2024-5-1", "2024-05-01"},
			{"2024.05.01", "2024-05-01"},
			{"2024/5/1", "2024-05-01"},
			{"2007년 3월 15일", "2007-03-15"},
			{"2007년3월15일", "2007-03-15"},
			{"  2024-05-01  ", "2024-05-01"},
		}
		for _, tc := range cases {
			d, ok := n.Parse(tc.raw)
			if !ok {
				t.Errorf("Parse(%q) failed, want %s", tc.raw, tc.want)
				continue
			}
			if d.ISO() != tc.want {
				t.Errorf("Parse(%q) = %s, want %s", tc.raw, d.ISO(), tc.want)
			}
		}
	})

	t.Run("TimeSuffixTruncated", func(t *testing.T) {
		cases := []string{
			"2024-05-01 14:30:22",
			"2024-05-01T09:00:00Z",
			"2024.05.01 08:15",
		}
		for _, raw := range cases {
			d, ok := n.Parse(raw)
			if !ok {
				t.Fatalf("Parse(%q) failed", raw)
			}
			if d.ISO() != "2024-05-01" {
				t.Errorf("Parse(%q) = %s, want 2024-05-01", raw, d.ISO())
			}
		}
	})

	t.Run("RejectedValues", func(t *testing.T) {
		cases := []string{
			"",
			"not a date",
			"2024-13-01", // month out of range
			"2024-04-31", // day past month end
			"2023-02-29", // not a leap year
			"1949-12-31", // below year window
			"2101-01-01", // above year window
			"05-01-2024", // day-first
			"2024-05",    // incomplete
			"2024-05-0123",
		}
		for _, raw := range cases {
			if d, ok := n.Parse(raw); ok {
				t.Errorf("Parse(%q) = %s, want rejection", raw, d.ISO())
			}
		}
	})

	t.Run("LeapYears", func(t *testing.T) {
		if _, ok := n.Parse("2024-02-29"); !ok {
			t.Error("Parse(2024-02-29) failed, 2024 is a leap year")
		}
		if _, ok := n.Parse("2000-02-29"); !ok {
			t.Error("Parse(2000-02-29) failed, div-400 years are leap years")
		}
		if _, ok := n.Parse("2100-02-29"); ok {
			t.Error("Parse(2100-02-29) passed, century years are not leap years")
		}
	})

	t.Run("DefaultWindow", func(t *testing.T) {
		def := New(domain.NormalizeConfig{})
		if _, ok := def.Parse("1950-01-01"); !ok {
			t.Error("expected 1950 accepted by default window")
		}
		if _, ok := def.Parse("1949-12-31"); ok {
			t.Error("expected 1949 rejected by default window")
		}
	})
}

func TestScanText(t *testing.T) {
	n := New(domain.NormalizeConfig{})

	t.Run("FindsAllForms", func(t *testing.T) {
		text := "입원일: 2024-03-10, 퇴원일 2024.03.15 / 수술 2024/3/12, 계약 2020년 1월 5일"
		got := n.ScanText(text)
		want := []string{"2024-03-10", "2024-03-15", "2024-03-12", "2020-01-05"}
		if len(got) != len(want) {
			t.Fatalf("expected %d dates, got %d: %v", len(want), len(got), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("dates[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("DeduplicatesPreservingOrder", func(t *testing.T) {
		got := n.ScanText("기준일 2024-03-10 및 2024.3.10, 다음날 2024-03-11")
		want := []string{"2024-03-10", "2024-03-11"}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("dates[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("DigitBoundaries", func(t *testing.T) {
		// Digits glued to either side must not produce a date.
		got := n.ScanText("증서번호 12024-05-01 금액 2024-05-012")
		if len(got) != 0 {
			t.Errorf("expected no dates, got %v", got)
		}
	})

	t.Run("InvalidCalendarSkipped", func(t *testing.T) {
		got := n.ScanText("오류 2024-02-30 정상 2024-02-28")
		if len(got) != 1 || got[0] != "2024-02-28" {
			t.Errorf("expected [2024-02-28], got %v", got)
		}
	})

	t.Run("EmptyText", func(t *testing.T) {
		if got := n.ScanText(""); len(got) != 0 {
			t.Errorf("expected no dates, got %v", got)
		}
	})
}

func TestScanOccurrences(t *testing.T) {
	n := New(domain.NormalizeConfig{})

	t.Run("Offsets", func(t *testing.T) {
		text := "발행일 2024-01-05 입원 2024-02-10"
		occs := n.ScanOccurrences(text)
		if len(occs) != 2 {
			t.Fatalf("expected 2 occurrences, got %d", len(occs))
		}
		if text[occs[0].Start:occs[0].End] != "2024-01-05" {
			t.Errorf("offset slice = %q, want 2024-01-05", text[occs[0].Start:occs[0].End])
		}
		if occs[0].Date.ISO() != "2024-01-05" || occs[1].Date.ISO() != "2024-02-10" {
			t.Errorf("unexpected dates: %s, %s", occs[0].Date.ISO(), occs[1].Date.ISO())
		}
		if occs[1].Start < occs[0].End {
			t.Error("occurrences not ordered by position")
		}
	})
}
