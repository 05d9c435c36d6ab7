package store

import (
	"context"
	"testing"
	"time"

	"isthatstilltrue/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleFacts() []core.FactRecord {
	return []core.FactRecord{
		{
			Category:        "Astronomy",
			Statement:       "Pluto is the ninth planet of our solar system.",
			Correction:      "Pluto was reclassified as a dwarf planet.",
			YearDebunked:    2006,
			QualityScore:    0.8,
			ConfidenceLevel: core.ConfidenceHigh,
		},
	}
}

func TestGenerationCacheMiss(t *testing.T) {
	s := newTestStore(t)

	entry, err := s.Cache().GetGeneration(context.Background(), "Germany", 1995)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry != nil {
		t.Errorf("expected nil for missing entry, got %+v", entry)
	}
}

func TestGenerationCacheRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	problems := []core.EducationProblem{{Problem: "p", Description: "d", Impact: "i"}}
	if err := s.Cache().UpsertGeneration(ctx, "Germany", 1995, sampleFacts(), problems); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	entry, err := s.Cache().GetGeneration(ctx, "Germany", 1995)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if entry == nil {
		t.Fatal("expected entry after upsert")
	}
	if len(entry.Facts) != 1 || entry.Facts[0].YearDebunked != 2006 {
		t.Errorf("unexpected facts: %+v", entry.Facts)
	}
	if entry.Facts[0].ConfidenceLevel != core.ConfidenceHigh {
		t.Errorf("confidence level lost in roundtrip: %v", entry.Facts[0].ConfidenceLevel)
	}
	if len(entry.Problems) != 1 {
		t.Errorf("expected 1 problem, got %d", len(entry.Problems))
	}
	if time.Since(entry.CreatedAt) > time.Minute {
		t.Errorf("created_at not recent: %v", entry.CreatedAt)
	}
}

func TestGenerationCacheUpsertSupersedes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Cache().UpsertGeneration(ctx, "Germany", 1995, sampleFacts(), nil); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	replacement := sampleFacts()
	replacement[0].Statement = "The tongue has dedicated regions for each basic taste."
	if err := s.Cache().UpsertGeneration(ctx, "Germany", 1995, replacement, nil); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	entry, err := s.Cache().GetGeneration(ctx, "Germany", 1995)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(entry.Facts) != 1 {
		t.Fatalf("expected exactly one row per key, got %d facts", len(entry.Facts))
	}
	if entry.Facts[0].Statement != replacement[0].Statement {
		t.Error("expected last write to win")
	}
}

func TestSchoolMemoriesRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	memories := core.SchoolMemories{
		SchoolName:     "Goethe-Gymnasium",
		City:           "Frankfurt",
		GraduationYear: 1995,
		Summary:        "A summary",
		Findings: []core.SchoolFinding{
			{Title: "t", Content: "c", SourceURL: "https://example.org", SourceName: "archive"},
		},
	}
	if err := s.Cache().UpsertSchoolMemories(ctx, "Goethe-Gymnasium", "Frankfurt", 1995, memories); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	entry, err := s.Cache().GetSchoolMemories(ctx, "Goethe-Gymnasium", "Frankfurt", 1995)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if entry == nil {
		t.Fatal("expected entry after upsert")
	}
	if entry.Memories.Summary != "A summary" || len(entry.Memories.Findings) != 1 {
		t.Errorf("unexpected memories: %+v", entry.Memories)
	}

	missing, err := s.Cache().GetSchoolMemories(ctx, "Other School", "Frankfurt", 1995)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for different school")
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.Cache().Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Generations != 0 || stats.SchoolMemories != 0 {
		t.Errorf("expected empty cache, got %+v", stats)
	}

	if err := s.Cache().UpsertGeneration(ctx, "Germany", 1995, sampleFacts(), nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.Cache().UpsertGeneration(ctx, "France", 1988, sampleFacts(), nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.Cache().UpsertSchoolMemories(ctx, "Goethe-Gymnasium", "Frankfurt", 1995, core.SchoolMemories{Summary: "s"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	stats, err = s.Cache().Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Generations != 2 || stats.SchoolMemories != 1 {
		t.Errorf("expected 2 generations and 1 school entry, got %+v", stats)
	}

	deleted, err := s.Cache().Clear(ctx)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted rows, got %d", deleted)
	}

	entry, err := s.Cache().GetGeneration(ctx, "Germany", 1995)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if entry != nil {
		t.Error("expected cleared cache to miss")
	}
}

func TestFactReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	report := &core.FactReport{
		FactHash:       "abc123",
		Country:        "Germany",
		GraduationYear: 1995,
		Reason:         "This fact is wrong",
		Fingerprint:    "fp-1",
	}
	if err := s.Reports().Create(ctx, report); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Same reporter again: ignored, not duplicated.
	if err := s.Reports().Create(ctx, report); err != nil {
		t.Fatalf("duplicate create failed: %v", err)
	}

	other := *report
	other.Fingerprint = "fp-2"
	if err := s.Reports().Create(ctx, &other); err != nil {
		t.Fatalf("second reporter create failed: %v", err)
	}

	count, err := s.Reports().CountForFact(ctx, "abc123")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 reports, got %d", count)
	}

	zero, err := s.Reports().CountForFact(ctx, "unknown")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if zero != 0 {
		t.Errorf("expected 0 reports for unknown hash, got %d", zero)
	}
}
