package factgen

import (
	"strings"
	"testing"

	"isthatstilltrue/internal/core"
	"isthatstilltrue/internal/wiki"
)

func validCandidate() core.FactRecord {
	return core.FactRecord{
		Category:     "Astronomy",
		Statement:    "Pluto is the ninth planet of our solar system.",
		Correction:   "Pluto was reclassified as a dwarf planet.",
		YearDebunked: 2006,
	}
}

func TestStructurallyValid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.FactRecord)
		want   bool
	}{
		{"well formed", func(f *core.FactRecord) {}, true},
		{"empty statement", func(f *core.FactRecord) { f.Statement = "" }, false},
		{"short statement", func(f *core.FactRecord) { f.Statement = strings.Repeat("x", 20) }, false},
		{"statement just long enough", func(f *core.FactRecord) { f.Statement = strings.Repeat("x", 21) }, true},
		{"short correction", func(f *core.FactRecord) { f.Correction = "too short!" }, false},
		{"year equals graduation", func(f *core.FactRecord) { f.YearDebunked = 1995 }, false},
		{"year before graduation", func(f *core.FactRecord) { f.YearDebunked = 1980 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validCandidate()
			tt.mutate(&f)
			if got := StructurallyValid(f, 1995); got != tt.want {
				t.Errorf("StructurallyValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterStructuralDropsSilently(t *testing.T) {
	facts := []core.FactRecord{
		validCandidate(),
		{Statement: "short", Correction: "also short", YearDebunked: 2000},
		validCandidate(),
	}
	kept := FilterStructural(facts, 1995)
	if len(kept) != 2 {
		t.Errorf("expected 2 survivors, got %d", len(kept))
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	check := wiki.CheckResult{Found: true, Confidence: 0.8, Extract: "corroborating text"}

	a := validCandidate()
	b := validCandidate()
	Score(&a, &check)
	Score(&b, &check)

	if a.QualityScore != b.QualityScore {
		t.Errorf("same inputs produced different scores: %v vs %v", a.QualityScore, b.QualityScore)
	}
	if a.ConfidenceLevel != b.ConfidenceLevel {
		t.Errorf("same inputs produced different confidence levels")
	}
}

func TestScoreWithinBounds(t *testing.T) {
	cases := []*wiki.CheckResult{
		nil,
		{},
		{Found: true, Confidence: 1.0},
	}
	for _, check := range cases {
		f := validCandidate()
		f.SourceName = "IAU"
		f.Statement = strings.Repeat("long statement text ", 10)
		f.Correction = strings.Repeat("long correction ", 10)
		Score(&f, check)
		if f.QualityScore < 0 || f.QualityScore > 1 {
			t.Errorf("score %v outside [0,1]", f.QualityScore)
		}
	}
}

func TestScoreCrossCheckRaisesScore(t *testing.T) {
	plain := validCandidate()
	Score(&plain, nil)

	checked := validCandidate()
	check := wiki.CheckResult{Found: true, Confidence: 0.9}
	Score(&checked, &check)

	if checked.QualityScore <= plain.QualityScore {
		t.Errorf("cross-checked score %v not above unchecked %v", checked.QualityScore, plain.QualityScore)
	}
	if checked.Validation == nil || !checked.Validation.IsValid {
		t.Error("expected validation record marked valid")
	}
	if plain.Validation != nil {
		t.Error("expected no validation record when no check was attempted")
	}
}

func TestScoreFailedCheckStillScores(t *testing.T) {
	f := validCandidate()
	check := wiki.CheckResult{}
	Score(&f, &check)

	if f.QualityScore <= 0 {
		t.Error("failed cross-check must still yield a defined score")
	}
	if f.Validation == nil {
		t.Fatal("expected validation record for attempted check")
	}
	if f.Validation.IsValid {
		t.Error("not-found check must not be marked valid")
	}
}

func TestConfidenceThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  core.ConfidenceLevel
	}{
		{0.71, core.ConfidenceHigh},
		{0.7, core.ConfidenceMedium},
		{0.51, core.ConfidenceMedium},
		{0.5, core.ConfidenceLow},
		{0.0, core.ConfidenceLow},
	}
	for _, tt := range tests {
		if got := confidenceFor(tt.score); got != tt.want {
			t.Errorf("confidenceFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
