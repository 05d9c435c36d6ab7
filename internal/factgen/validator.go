package factgen

import (
	"isthatstilltrue/internal/core"
	"isthatstilltrue/internal/wiki"
)

// Structural filter thresholds.
const (
	minStatementLen  = 20
	minCorrectionLen = 10
)

// Scoring weights. The final quality score is the mean of three sub-scores
// (accuracy, source quality, relevance), each clamped to [0,1]. The
// confidence cutoffs are the contract: > 0.7 high, > 0.5 medium, else low.
const (
	baseAccuracy  = 0.45
	baseSource    = 0.35
	baseRelevance = 0.5

	plausibleYearBonus = 0.15 // yearDebunked in the modern era (post-1950)
	crossCheckWeight   = 0.35 // scaled by the cross-check's own confidence

	sourceNameBonus    = 0.25
	crossCheckSrcBonus = 0.2

	richStatementLen    = 60
	richCorrectionLen   = 40
	richStatementBonus  = 0.2
	richCorrectionBonus = 0.2

	plausibleYearFloor = 1950
)

// StructurallyValid reports whether a candidate fact meets the structural
// constraints: non-empty texts above minimum lengths, and a debunk year
// strictly after the graduation year.
func StructurallyValid(f core.FactRecord, graduationYear int) bool {
	if len(f.Statement) <= minStatementLen {
		return false
	}
	if len(f.Correction) <= minCorrectionLen {
		return false
	}
	if f.YearDebunked <= graduationYear {
		return false
	}
	return true
}

// FilterStructural keeps only structurally valid candidates. Rejects are
// dropped silently.
func FilterStructural(facts []core.FactRecord, graduationYear int) []core.FactRecord {
	var kept []core.FactRecord
	for _, f := range facts {
		if StructurallyValid(f, graduationYear) {
			kept = append(kept, f)
		}
	}
	return kept
}

// Score computes the quality score and confidence level for a fact, folding
// in an encyclopedia cross-check when one was attempted. The heuristic is
// deterministic: same fact and same check always produce the same score.
func Score(f *core.FactRecord, check *wiki.CheckResult) {
	accuracy := baseAccuracy
	if f.YearDebunked >= plausibleYearFloor {
		accuracy += plausibleYearBonus
	}

	source := baseSource
	if f.SourceName != "" {
		source += sourceNameBonus
	}

	relevance := baseRelevance
	if len(f.Statement) > richStatementLen {
		relevance += richStatementBonus
	}
	if len(f.Correction) > richCorrectionLen {
		relevance += richCorrectionBonus
	}

	if check != nil {
		validation := &core.FactValidation{
			IsValid:         check.Found,
			ConfidenceScore: check.Confidence,
		}
		if check.Found {
			accuracy += crossCheckWeight * check.Confidence
			source += crossCheckSrcBonus
			validation.Sources = []string{"Wikipedia"}
			validation.Context = check.Extract
		}
		f.Validation = validation
	}

	f.QualityScore = (clamp01(accuracy) + clamp01(source) + clamp01(relevance)) / 3
	f.ConfidenceLevel = confidenceFor(f.QualityScore)
}

func confidenceFor(score float64) core.ConfidenceLevel {
	switch {
	case score > 0.7:
		return core.ConfidenceHigh
	case score > 0.5:
		return core.ConfidenceMedium
	default:
		return core.ConfidenceLow
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
