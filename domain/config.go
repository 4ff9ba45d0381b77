package domain

// Config holds the complete datesift configuration. Keyword tables and
// point values are loaded once and passed by reference into the pure
// scoring functions; nothing here is mutated after New.
type Config struct {
	Normalize NormalizeConfig `json:"normalize" yaml:"normalize"`
	Scoring   ScoringConfig   `json:"scoring" yaml:"scoring"`
	Keywords  KeywordConfig   `json:"keywords" yaml:"keywords"`
	Proximity ProximityConfig `json:"proximity" yaml:"proximity"`
	Risk      RiskConfig      `json:"risk" yaml:"risk"`
	Reader    ReaderConfig    `json:"reader" yaml:"reader"`
	Pipeline  PipelineConfig  `json:"pipeline" yaml:"pipeline"`

	// Component configurations
	Cache  CacheConfig  `json:"cache" yaml:"cache"`
	Events EventsConfig `json:"events" yaml:"events"`

	// Observability
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Operator-authored CEL scoring rules, applied after the built-in
	// phases
	CustomRules []CustomRuleConfig `json:"customRules,omitempty" yaml:"customRules"`
}

// NormalizeConfig bounds the syntactic year window accepted during date
// normalization. This is a sanity filter; the narrower plausibility
// window applied during scoring lives in ScoringConfig.
type NormalizeConfig struct {
	MinYear int `json:"minYear" yaml:"minYear"`
	MaxYear int `json:"maxYear" yaml:"maxYear"`
}

// RecencyTier maps a maximum day distance to a score bonus.
type RecencyTier struct {
	WithinDays int `json:"withinDays" yaml:"withinDays"`
	Bonus      int `json:"bonus" yaml:"bonus"`
}

// ScoringConfig holds every point value and threshold used by the
// relevance scorer. The defaults are documented starting points, not
// final numbers; deployments tune them per portfolio.
type ScoringConfig struct {
	AcceptThreshold int `json:"acceptThreshold" yaml:"acceptThreshold"`

	// Plausible-year window. FutureYears bounds how far past the
	// processing date a non-expiry date may lie.
	MinYear     int `json:"minYear" yaml:"minYear"`
	FutureYears int `json:"futureYears" yaml:"futureYears"`

	// Base points per category
	TypePoints map[Category]int `json:"typePoints" yaml:"typePoints"`

	// Recency tiers, ordered nearest first
	Recency []RecencyTier `json:"recency" yaml:"recency"`

	// Range-boundary deltas, applied from provenance independent of the
	// classified tags
	RangeStartBonus int `json:"rangeStartBonus" yaml:"rangeStartBonus"`
	RangeEndPenalty int `json:"rangeEndPenalty" yaml:"rangeEndPenalty"`

	// Administrative-metadata context penalty
	MetadataPenalty int `json:"metadataPenalty" yaml:"metadataPenalty"`

	// Context keyword deltas, each applied at most once per candidate
	KeywordBonus   int `json:"keywordBonus" yaml:"keywordBonus"`
	KeywordPenalty int `json:"keywordPenalty" yaml:"keywordPenalty"`

	// Frequency bonus: Step per extra occurrence, capped
	FrequencyStep int `json:"frequencyStep" yaml:"frequencyStep"`
	FrequencyCap  int `json:"frequencyCap" yaml:"frequencyCap"`
}

// KeywordConfig holds the lookup vocabularies used by scoring and the
// pattern reader. Immutable after load.
type KeywordConfig struct {
	// Positive marks treatment-side context, Negative marks paperwork
	// noise, Metadata marks issuance/print phrasing, Insurance marks
	// policy-period context.
	Positive  []string `json:"positive" yaml:"positive"`
	Negative  []string `json:"negative" yaml:"negative"`
	Metadata  []string `json:"metadata" yaml:"metadata"`
	Insurance []string `json:"insurance" yaml:"insurance"`
}

// ProximityConfig sets the day bounds of the pre-enrollment buckets.
type ProximityConfig struct {
	Within3MonthsDays int `json:"within3MonthsDays" yaml:"within3MonthsDays"`
	Within1YearDays   int `json:"within1YearDays" yaml:"within1YearDays"`
	Within5YearsDays  int `json:"within5YearsDays" yaml:"within5YearsDays"`
}

// RiskConfig holds the aggregator's signal weights and level thresholds.
type RiskConfig struct {
	DisclosureWeight     int `json:"disclosureWeight" yaml:"disclosureWeight"`
	DoctorShoppingWeight int `json:"doctorShoppingWeight" yaml:"doctorShoppingWeight"`
	ProgressivityWeight  int `json:"progressivityWeight" yaml:"progressivityWeight"`

	// Progressivity classes that trigger the weight
	ProgressiveClasses []string `json:"progressiveClasses" yaml:"progressiveClasses"`

	HighThreshold   int `json:"highThreshold" yaml:"highThreshold"`
	MediumThreshold int `json:"mediumThreshold" yaml:"mediumThreshold"`
}

// ReaderConfig controls the document reader client.
type ReaderConfig struct {
	// Strategies in priority order; the first to succeed wins and any
	// fallback marks the result degraded
	Strategies []string `json:"strategies" yaml:"strategies"`

	// Model settings for the extraction strategy
	Model     string `json:"model" yaml:"model"`
	MaxTokens int    `json:"maxTokens" yaml:"maxTokens"`
	APIKey    string `json:"-" yaml:"-"`

	// Retry and concurrency bounds
	MaxAttempts   int `json:"maxAttempts" yaml:"maxAttempts"`
	BackoffBaseMs int `json:"backoffBaseMs" yaml:"backoffBaseMs"`
	Concurrency   int `json:"concurrency" yaml:"concurrency"`
	TimeoutSecs   int `json:"timeoutSecs" yaml:"timeoutSecs"`

	// Characters of surrounding text kept as a context snippet by the
	// pattern strategy
	SnippetRadius int `json:"snippetRadius" yaml:"snippetRadius"`
}

// PipelineConfig bounds concurrent case processing. Cases share no
// mutable state beyond the result cache, so the bound exists to cap
// reader load, not for correctness.
type PipelineConfig struct {
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings. Span export is owned by
// the embedding service; when disabled the library still records spans
// against the global no-op provider.
type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"serviceName" yaml:"serviceName"`
}

// CustomRuleConfig defines an operator-authored CEL scoring rule.
type CustomRuleConfig struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`

	// Expression evaluates over the candidate fields. An int result is
	// added to the score directly; a bool result adds Weight when true.
	Expression string `json:"expression" yaml:"expression"`
	Weight     int    `json:"weight" yaml:"weight"`
	Enabled    bool   `json:"enabled" yaml:"enabled"`
}

// Reader strategy names.
const (
	StrategyAnthropic   = "anthropic-extract"
	StrategyPatternScan = "pattern-scan"
)

// DefaultConfig returns the documented default configuration.
func DefaultConfig() *Config {
	return &Config{
		Normalize: NormalizeConfig{
			MinYear: 1950,
			MaxYear: 2100,
		},
		Scoring: ScoringConfig{
			AcceptThreshold: 20,
			MinYear:         1990,
			FutureYears:     5,
			TypePoints: map[Category]int{
				CategorySurgery:    25,
				CategoryDiagnosis:  25,
				CategoryAdmission:  20,
				CategoryEnrollment: 18,
				CategoryDischarge:  16,
				CategoryExam:       14,
				CategoryOutpatient: 12,
				CategoryOther:      5,
				CategoryExpiry:     4,
				CategoryMetadata:   -15,
			},
			Recency: []RecencyTier{
				{WithinDays: 90, Bonus: 15},
				{WithinDays: 365, Bonus: 10},
				{WithinDays: 1825, Bonus: 5},
			},
			RangeStartBonus: 12,
			RangeEndPenalty: -8,
			MetadataPenalty: -12,
			KeywordBonus:    6,
			KeywordPenalty:  -6,
			FrequencyStep:   4,
			FrequencyCap:    12,
		},
		Keywords: KeywordConfig{
			Positive: []string{
				"진단", "검사", "수술", "처방", "입원", "퇴원", "외래",
				"내원", "통원", "치료", "진료", "발병", "증상",
				"CT", "MRI", "X-ray", "초음파", "내시경",
			},
			Negative: []string{
				"페이지", "문서번호", "접수번호", "발행번호", "팩스",
				"page", "fax",
			},
			Metadata: []string{
				"발행일", "출력일", "작성일", "발급일", "서식",
				"issued", "printed",
			},
			Insurance: []string{
				"보험기간", "계약일", "계약", "가입", "담보", "청약",
			},
		},
		Proximity: ProximityConfig{
			Within3MonthsDays: 90,
			Within1YearDays:   365,
			Within5YearsDays:  1825,
		},
		Risk: RiskConfig{
			DisclosureWeight:     2,
			DoctorShoppingWeight: 3,
			ProgressivityWeight:  1,
			ProgressiveClasses:   []string{"progressive", "chronic"},
			HighThreshold:        3,
			MediumThreshold:      1,
		},
		Reader: ReaderConfig{
			Strategies:    []string{StrategyAnthropic, StrategyPatternScan},
			Model:         "claude-sonnet-4-5",
			MaxTokens:     2048,
			MaxAttempts:   3,
			BackoffBaseMs: 1000,
			Concurrency:   4,
			TimeoutSecs:   60,
			SnippetRadius: 40,
		},
		Pipeline: PipelineConfig{
			Concurrency: 4,
		},
		Cache: CacheConfig{
			Type:     "memory",
			Capacity: 10000,
			TTLSecs:  300, // 5 minutes
		},
		Events: EventsConfig{
			BufferSize: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "datesift",
		},
	}
}
