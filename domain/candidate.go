package domain

// Category classifies what kind of event a date candidate refers to.
type Category string

const (
	CategoryEnrollment Category = "insurance-enrollment"
	CategoryExpiry     Category = "insurance-expiry"
	CategoryAdmission  Category = "admission"
	CategoryDischarge  Category = "discharge"
	CategorySurgery    Category = "surgery"
	CategoryExam       Category = "exam"
	CategoryDiagnosis  Category = "diagnosis"
	CategoryOutpatient Category = "outpatient-visit"
	CategoryMetadata   Category = "document-metadata"
	CategoryOther      Category = "other"
)

// MedicalEvent reports whether the category describes a treatment-side
// event rather than a policy or paperwork date. Only medical events are
// eligible for enrollment-proximity flagging.
func (c Category) MedicalEvent() bool {
	switch c {
	case CategoryAdmission, CategoryDischarge, CategorySurgery,
		CategoryExam, CategoryDiagnosis, CategoryOutpatient:
		return true
	}
	return false
}

// Known reports whether c is one of the fixed vocabulary values.
// Extraction may emit free-form labels; anything outside the vocabulary
// is folded to CategoryOther before scoring.
func (c Category) Known() bool {
	switch c {
	case CategoryEnrollment, CategoryExpiry, CategoryAdmission,
		CategoryDischarge, CategorySurgery, CategoryExam,
		CategoryDiagnosis, CategoryOutpatient, CategoryMetadata,
		CategoryOther:
		return true
	}
	return false
}

// Importance ranks how much weight downstream analysis gives a candidate.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// Known reports whether i is one of the fixed vocabulary values.
func (i Importance) Known() bool {
	switch i {
	case ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow:
		return true
	}
	return false
}

// RangeRole records which boundary of a date range a candidate came from.
// Roles are assigned by chronological order of the boundaries, not by
// payload field position.
type RangeRole string

const (
	RangeRoleNone  RangeRole = ""
	RangeRoleStart RangeRole = "start"
	RangeRoleEnd   RangeRole = "end"
)

// DateCandidate is a single date proposed by the extraction pipeline.
// Date always holds a validated calendar date; raw values that fail
// normalization never reach this type.
type DateCandidate struct {
	RawText string `json:"rawText"`
	Date    Date   `json:"date"`

	// Provenance
	SourceBatch     int       `json:"sourceBatch"`
	RangeRole       RangeRole `json:"rangeRole,omitempty"`
	InsurancePeriod bool      `json:"insurancePeriod,omitempty"`

	// Classification
	Category   Category   `json:"category"`
	Importance Importance `json:"importance"`

	// Extraction context
	Context    string `json:"context,omitempty"`
	Confidence string `json:"confidence,omitempty"`
}
