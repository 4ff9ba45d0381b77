package scoring

import (
	"testing"

	"github.com/vnexsus/datesift/domain"
)

func testContext() *Context {
	cfg := domain.DefaultConfig()
	return &Context{
		Reference: domain.Date{Year: 2024, Month: 6, Day: 1},
		Today:     domain.Date{Year: 2024, Month: 6, Day: 1},
		Frequency: map[string]int{},
		Config:    &cfg.Scoring,
		Keywords:  &cfg.Keywords,
	}
}

func TestRangeValidity(t *testing.T) {
	sc := testContext()

	t.Run("DropsYearsBeforeMinimum", func(t *testing.T) {
		cand := domain.DateCandidate{
			Date:     domain.Date{Year: 1989, Month: 12, Day: 31},
			Category: domain.CategorySurgery,
		}
		res := rangeValidity(cand, sc)
		if !res.Drop {
			t.Errorf("expected drop for year 1989, got %+v", res)
		}
	})

	t.Run("DropsFarFutureDates", func(t *testing.T) {
		cand := domain.DateCandidate{
			Date:     domain.Date{Year: 2030, Month: 1, Day: 1},
			Category: domain.CategorySurgery,
		}
		res := rangeValidity(cand, sc)
		if !res.Drop {
			t.Errorf("expected drop beyond future bound, got %+v", res)
		}
	})

	t.Run("ExpiryExemptFromFutureBound", func(t *testing.T) {
		cand := domain.DateCandidate{
			Date:     domain.Date{Year: 2030, Month: 1, Day: 1},
			Category: domain.CategoryExpiry,
		}
		res := rangeValidity(cand, sc)
		if res.Drop {
			t.Errorf("expiry date should survive the future bound, got %+v", res)
		}
	})

	t.Run("ExpiryStillBoundedBelow", func(t *testing.T) {
		cand := domain.DateCandidate{
			Date:     domain.Date{Year: 1989, Month: 1, Day: 1},
			Category: domain.CategoryExpiry,
		}
		res := rangeValidity(cand, sc)
		if !res.Drop {
			t.Errorf("expected drop for pre-minimum expiry year, got %+v", res)
		}
	})

	t.Run("ExactFutureLimitAccepted", func(t *testing.T) {
		cand := domain.DateCandidate{
			Date:     domain.Date{Year: 2029, Month: 6, Day: 1},
			Category: domain.CategorySurgery,
		}
		res := rangeValidity(cand, sc)
		if res.Drop {
			t.Errorf("date exactly at the future limit should pass, got %+v", res)
		}
	})
}

func TestTypePriority(t *testing.T) {
	sc := testContext()

	tests := []struct {
		name     string
		category domain.Category
		want     int
	}{
		{"Surgery", domain.CategorySurgery, 25},
		{"Diagnosis", domain.CategoryDiagnosis, 25},
		{"Admission", domain.CategoryAdmission, 20},
		{"Enrollment", domain.CategoryEnrollment, 18},
		{"Expiry", domain.CategoryExpiry, 4},
		{"Metadata", domain.CategoryMetadata, -15},
		{"Unknown", domain.Category("unknown"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := domain.DateCandidate{
				Date:     domain.Date{Year: 2024, Month: 1, Day: 1},
				Category: tt.category,
			}
			res := typePriority(cand, sc)
			if res.Delta != tt.want {
				t.Errorf("expected delta %d for %s, got %d", tt.want, tt.category, res.Delta)
			}
		})
	}
}

func TestRecency(t *testing.T) {
	sc := testContext()

	tests := []struct {
		name string
		date domain.Date
		want int
	}{
		{"WithinThreeMonths", domain.Date{Year: 2024, Month: 5, Day: 1}, 15},
		{"ExactlyNinetyDays", domain.Date{Year: 2024, Month: 3, Day: 3}, 15},
		{"WithinOneYear", domain.Date{Year: 2024, Month: 1, Day: 1}, 10},
		{"WithinFiveYears", domain.Date{Year: 2021, Month: 6, Day: 1}, 5},
		{"BeyondFiveYears", domain.Date{Year: 2010, Month: 1, Day: 1}, 0},
		{"FutureCountsByDistance", domain.Date{Year: 2024, Month: 6, Day: 20}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := domain.DateCandidate{Date: tt.date, Category: domain.CategoryExam}
			res := recency(cand, sc)
			if res.Delta != tt.want {
				t.Errorf("expected delta %d for %s, got %d", tt.want, tt.date.ISO(), res.Delta)
			}
		})
	}
}

func TestInsurancePeriodRole(t *testing.T) {
	sc := testContext()

	t.Run("CoverageStartBonus", func(t *testing.T) {
		cand := domain.DateCandidate{
			Date:            domain.Date{Year: 2020, Month: 1, Day: 1},
			RangeRole:       domain.RangeRoleStart,
			InsurancePeriod: true,
		}
		if res := insurancePeriodRole(cand, sc); res.Delta != 12 {
			t.Errorf("expected +12 for coverage start, got %d", res.Delta)
		}
	})

	t.Run("CoverageEndPenalty", func(t *testing.T) {
		cand := domain.DateCandidate{
			Date:            domain.Date{Year: 2030, Month: 1, Day: 1},
			RangeRole:       domain.RangeRoleEnd,
			InsurancePeriod: true,
		}
		if res := insurancePeriodRole(cand, sc); res.Delta != -8 {
			t.Errorf("expected -8 for coverage end, got %d", res.Delta)
		}
	})

	t.Run("NonInsuranceRangeIgnored", func(t *testing.T) {
		cand := domain.DateCandidate{
			Date:      domain.Date{Year: 2024, Month: 1, Day: 1},
			RangeRole: domain.RangeRoleStart,
		}
		if res := insurancePeriodRole(cand, sc); res.Delta != 0 {
			t.Errorf("expected no adjustment without provenance, got %d", res.Delta)
		}
	})
}

func TestMetadataPenalty(t *testing.T) {
	sc := testContext()

	tests := []struct {
		name    string
		context string
		want    int
	}{
		{"KoreanIssuanceLabel", "발행일: 2024-05-01", -12},
		{"EnglishCaseInsensitive", "Issued on 2024-05-01", -12},
		{"ClinicalContextUntouched", "수술일 2024-05-01", 0},
		{"EmptyContext", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := domain.DateCandidate{
				Date:    domain.Date{Year: 2024, Month: 5, Day: 1},
				Context: tt.context,
			}
			res := metadataPenalty(cand, sc)
			if res.Delta != tt.want {
				t.Errorf("expected delta %d for context %q, got %d", tt.want, tt.context, res.Delta)
			}
		})
	}
}

func TestContextKeywords(t *testing.T) {
	sc := testContext()

	t.Run("SinglePositiveBonus", func(t *testing.T) {
		cand := domain.DateCandidate{Context: "진단 및 수술 기록"}
		res := contextKeywords(cand, sc)
		if res.Delta != 6 {
			t.Errorf("expected +6 despite two positive keywords, got %d", res.Delta)
		}
	})

	t.Run("NegativePenalty", func(t *testing.T) {
		cand := domain.DateCandidate{Context: "페이지 3"}
		res := contextKeywords(cand, sc)
		if res.Delta != -6 {
			t.Errorf("expected -6 for layout keyword, got %d", res.Delta)
		}
	})

	t.Run("MixedContextCancelsOut", func(t *testing.T) {
		cand := domain.DateCandidate{Context: "진단 페이지"}
		res := contextKeywords(cand, sc)
		if res.Delta != 0 {
			t.Errorf("expected net 0 for mixed context, got %d", res.Delta)
		}
		if res.Note == "" {
			t.Error("expected both matches recorded in the note")
		}
	})

	t.Run("EmptyContext", func(t *testing.T) {
		cand := domain.DateCandidate{}
		res := contextKeywords(cand, sc)
		if res.Delta != 0 || res.Note != "" {
			t.Errorf("expected empty result, got %+v", res)
		}
	})
}

func TestFrequencyBonus(t *testing.T) {
	tests := []struct {
		name string
		freq int
		want int
	}{
		{"SingleSighting", 1, 0},
		{"TwoSightings", 2, 4},
		{"FourSightingsReachesCap", 4, 12},
		{"CapHolds", 7, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := testContext()
			sc.Frequency["2024-05-01"] = tt.freq
			cand := domain.DateCandidate{Date: domain.Date{Year: 2024, Month: 5, Day: 1}}
			res := frequencyBonus(cand, sc)
			if res.Delta != tt.want {
				t.Errorf("expected delta %d for frequency %d, got %d", tt.want, tt.freq, res.Delta)
			}
		})
	}
}
