package domain

// BatchEntry is one extracted date inside a reader batch payload.
type BatchEntry struct {
	Date       string     `json:"date"`
	Context    string     `json:"context,omitempty"`
	Category   Category   `json:"category,omitempty"`
	Importance Importance `json:"importance,omitempty"`
	Confidence string     `json:"confidence,omitempty"`
}

// BatchRange is an extracted date range with explicit boundaries.
type BatchRange struct {
	Start      string     `json:"start"`
	End        string     `json:"end"`
	Kind       string     `json:"kind,omitempty"`
	Context    string     `json:"context,omitempty"`
	Category   Category   `json:"category,omitempty"`
	Importance Importance `json:"importance,omitempty"`
	Confidence string     `json:"confidence,omitempty"`
}

// RangeKindInsurancePeriod marks ranges the reader labeled as a policy
// coverage period. The classifier pins their boundaries to
// enrollment/expiry roles regardless of upstream tags.
const RangeKindInsurancePeriod = "insurance-period"

// BatchPayload is the structured reader output for one batch of pages.
// Newer readers fill the four sub-collections; older ones emit only
// ExtractedDates. The collector accepts both.
type BatchPayload struct {
	Dates          []BatchEntry `json:"dates,omitempty"`
	Ranges         []BatchRange `json:"dateRanges,omitempty"`
	InsuranceDates []BatchEntry `json:"insuranceDates,omitempty"`
	TableDates     []BatchEntry `json:"tableDates,omitempty"`

	// Legacy single-collection variant
	ExtractedDates []string `json:"extractedDates,omitempty"`
}

// Segment is one chunk of document text submitted to the reader.
type Segment struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// RiskSignals carries external risk-detector outputs. The aggregator
// treats them as opaque; it never recomputes them.
type RiskSignals struct {
	DisclosureViolations    int    `json:"disclosureViolations"`
	DoctorShopping          bool   `json:"doctorShopping"`
	DoctorShoppingProviders int    `json:"doctorShoppingProviders"` // max distinct providers within 30 days
	Progressivity           string `json:"progressivity,omitempty"`
}

// CaseInput is everything the pipeline needs to process one claim case.
// When Payloads is non-empty the reader is bypassed; otherwise Segments
// are sent through the configured reader strategies.
type CaseInput struct {
	CaseID   string         `json:"caseId"`
	Segments []Segment      `json:"segments,omitempty"`
	Payloads []BatchPayload `json:"payloads,omitempty"`

	// ClaimDate anchors recency scoring; the processing date is used
	// when unset. EnrollmentDate is the external fallback for proximity
	// flagging when no critical enrollment candidate exists.
	ClaimDate      Date `json:"claimDate"`
	EnrollmentDate Date `json:"enrollmentDate"`

	Signals RiskSignals `json:"signals"`

	// Plain reference text for offline quality evaluation
	ReferenceText string `json:"referenceText,omitempty"`
}
