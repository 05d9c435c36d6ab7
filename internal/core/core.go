package core

import "time"

// ConfidenceLevel classifies a fact's quality score into a coarse bucket.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"   // qualityScore > 0.7
	ConfidenceMedium ConfidenceLevel = "medium" // qualityScore > 0.5
	ConfidenceLow    ConfidenceLevel = "low"    // everything else
)

// FactValidation carries the result of an encyclopedia cross-check for one fact.
type FactValidation struct {
	IsValid         bool     `json:"isValid"`           // Cross-check corroborated the correction
	ConfidenceScore float64  `json:"confidenceScore"`   // [0,1] confidence reported by the cross-check
	Sources         []string `json:"sources"`           // Source names consulted
	Context         string   `json:"context,omitempty"` // Optional supporting extract
}

// FactRecord represents one "debunked school fact".
type FactRecord struct {
	Category        string          `json:"category"`             // Short label, e.g. "Biology", "Physics"
	Statement       string          `json:"statement"`            // The claim as it was taught
	Correction      string          `json:"correction"`           // Current understanding
	YearDebunked    int             `json:"yearDebunked"`         // Must be > the graduation year it is scoped to
	Salience        string          `json:"salience"`             // Why the fact is surprising
	SourceURL       string          `json:"sourceUrl,omitempty"`  // Optional provenance
	SourceName      string          `json:"sourceName,omitempty"` // Optional provenance
	QualityScore    float64         `json:"qualityScore"`         // Derived, [0,1]
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`      // Derived from QualityScore
	Validation      *FactValidation `json:"validation,omitempty"` // Attached by the validator, nil if never checked
}

// EducationProblem describes a systemic issue of the education system of the era.
// Generated and cached alongside facts but never validated or deduplicated.
type EducationProblem struct {
	Problem     string `json:"problem"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// CachedGeneration is a prior pipeline result keyed by (country, graduationYear).
// At most one entry exists per key; stale entries are superseded, never deleted.
type CachedGeneration struct {
	Country        string             `json:"country"`
	GraduationYear int                `json:"graduation_year"`
	Facts          []FactRecord       `json:"facts"`
	Problems       []EducationProblem `json:"education_problems"`
	CreatedAt      time.Time          `json:"created_at"`
}

// AgeDays returns the whole days elapsed since the entry was written.
func (c *CachedGeneration) AgeDays(now time.Time) int {
	return int(now.Sub(c.CreatedAt).Hours() / 24)
}

// FactCheckVerdict is the response of the single-statement fact-check endpoint.
type FactCheckVerdict struct {
	IsStillValid bool     `json:"isStillValid"`
	Correction   string   `json:"correction,omitempty"`
	YearDebunked int      `json:"yearDebunked,omitempty"`
	Explanation  string   `json:"explanation"`
	Confidence   float64  `json:"confidence"` // [0,1]
	Sources      []string `json:"sources,omitempty"`
}

// SchoolFinding is one provenance-tagged sub-record of a school research bundle.
// Findings without both SourceURL and SourceName are considered invalid and dropped.
type SchoolFinding struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	SourceURL  string `json:"sourceUrl"`
	SourceName string `json:"sourceName"`
}

// SchoolMemories is the bundle returned by the school research endpoint.
type SchoolMemories struct {
	SchoolName     string          `json:"schoolName"`
	City           string          `json:"city"`
	Country        string          `json:"country"`
	GraduationYear int             `json:"graduationYear"`
	Summary        string          `json:"summary"`         // Narrative school-era overview
	Findings       []SchoolFinding `json:"findings"`        // Provenance-validated sub-records
	HistoricalFact string          `json:"historicalFact"`  // One era-specific anecdote
	Facts          []FactRecord    `json:"facts,omitempty"` // Debunked facts scoped to the era
}

// CachedSchoolMemories is a stored school research result.
type CachedSchoolMemories struct {
	SchoolName     string         `json:"school_name"`
	City           string         `json:"city"`
	GraduationYear int            `json:"graduation_year"`
	Memories       SchoolMemories `json:"memories"`
	CreatedAt      time.Time      `json:"created_at"`
}

// FactReport is a user-submitted report that a served fact is wrong or offensive.
// Identity is the natural key (FactHash, Country, GraduationYear, Fingerprint).
type FactReport struct {
	FactHash       string    `json:"fact_hash"` // Content hash of the reported fact
	Country        string    `json:"country"`
	GraduationYear int       `json:"graduation_year"`
	Reason         string    `json:"reason"`      // Free-text reason
	Fingerprint    string    `json:"fingerprint"` // Anonymous client fingerprint
	CreatedAt      time.Time `json:"created_at"`
}
