package domain

// PhaseContribution traces one scoring phase's effect on a candidate.
type PhaseContribution struct {
	Phase string `json:"phase"`
	Delta int    `json:"delta"`
	Note  string `json:"note,omitempty"`
}

// ScoredCandidate is a DateCandidate after relevance scoring. Created
// once per case after all batches are collected; immutable afterward.
type ScoredCandidate struct {
	DateCandidate

	Score    int  `json:"score"`
	Accepted bool `json:"accepted"`

	// Per-phase trace, in evaluation order
	Breakdown []PhaseContribution `json:"breakdown,omitempty"`
}

// Grade buckets per-case coverage into quality tiers.
type Grade string

const (
	GradeGood Grade = "good" // coverage >= 80
	GradeFair Grade = "fair" // coverage >= 60
	GradePoor Grade = "poor"
	GradeNone Grade = "n/a" // reference unavailable
)

// MissedContext locates a missed reference date in the source text.
type MissedContext struct {
	Date string `json:"date"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// MatchResult compares a case's extracted dates against reference
// annotations using set semantics. Matched and Missed partition the
// reference set; Matched and Extra partition the extracted set.
type MatchResult struct {
	Reference []string `json:"reference"`
	Extracted []string `json:"extracted"`
	Matched   []string `json:"matched"`
	Missed    []string `json:"missed"`
	Extra     []string `json:"extra"`

	// Rates are percentages. A false Defined flag means the rate is not
	// applicable for this case, never that it is zero.
	CoverageRate     float64 `json:"coverageRate"`
	CoverageDefined  bool    `json:"coverageDefined"`
	PrecisionRate    float64 `json:"precisionRate"`
	PrecisionDefined bool    `json:"precisionDefined"`

	Grade          Grade           `json:"grade"`
	MissedContexts []MissedContext `json:"missedContexts,omitempty"`
}

// MatchSummary pools match results across a corpus of cases. Rates are
// computed from summed numerators and denominators, never by averaging
// per-case rates, so large cases weigh more than small ones.
type MatchSummary struct {
	Cases int `json:"cases"`

	ReferenceTotal int `json:"referenceTotal"`
	ExtractedTotal int `json:"extractedTotal"`
	MatchedTotal   int `json:"matchedTotal"`
	MissedTotal    int `json:"missedTotal"`
	ExtraTotal     int `json:"extraTotal"`

	Coverage         float64 `json:"coverage"`
	CoverageDefined  bool    `json:"coverageDefined"`
	Precision        float64 `json:"precision"`
	PrecisionDefined bool    `json:"precisionDefined"`

	Grades map[Grade]int `json:"grades"`
}

// Bucket places a flagged event by its distance before enrollment.
type Bucket string

const (
	BucketWithin3Months Bucket = "within3MonthsBefore"
	BucketWithin1Year   Bucket = "within1YearBefore"
	BucketWithin5Years  Bucket = "within5YearsBefore"
	BucketOutside       Bucket = "outside"
)

// EnrollmentFlag marks a medical event that predates enrollment.
type EnrollmentFlag struct {
	Date       string   `json:"date"`
	Category   Category `json:"category"`
	DaysBefore int      `json:"daysBefore"`
	Bucket     Bucket   `json:"bucket"`
}

// Enrollment date sources.
const (
	EnrollmentSourceCandidate = "candidate"
	EnrollmentSourceExternal  = "external"
)

// FlagSummary is the proximity flagger's output for one case. When no
// enrollment date can be resolved the summary is skipped and carries the
// reason instead of flags.
type FlagSummary struct {
	Enrollment Date             `json:"enrollment"`
	Source     string           `json:"source,omitempty"`
	Flags      []EnrollmentFlag `json:"flags,omitempty"`
	Buckets    map[Bucket]int   `json:"buckets,omitempty"`

	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skipReason,omitempty"`
}

// Risk levels ordered by severity.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// InvestigationRisk is the final categorical verdict for a case.
// Ephemeral: it lives only until the caller reports it.
type InvestigationRisk struct {
	ID       string   `json:"id"`
	Score    int      `json:"score"`
	Level    string   `json:"level"`
	Evidence []string `json:"evidence"`
}

// CaseResult is the complete output of one pipeline run. Each result is
// owned by the run that produced it; runs never share or mutate another
// run's artifacts.
type CaseResult struct {
	CaseID string `json:"caseId"`
	RunID  string `json:"runId"`

	// Which reader strategy produced the payloads, and whether a
	// fallback past the preferred strategy was taken
	Strategy       string `json:"strategy,omitempty"`
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degradedReason,omitempty"`

	Candidates []ScoredCandidate `json:"candidates"`
	Accepted   []ScoredCandidate `json:"accepted"`
	Frequency  map[string]int    `json:"frequency,omitempty"`

	Proximity  *FlagSummary       `json:"proximity,omitempty"`
	Risk       *InvestigationRisk `json:"risk,omitempty"`
	Evaluation *MatchResult       `json:"evaluation,omitempty"`

	CacheHit  bool   `json:"cacheHit,omitempty"`
	ElapsedMs int64  `json:"elapsedMs"`
	Version   string `json:"version"`
}
