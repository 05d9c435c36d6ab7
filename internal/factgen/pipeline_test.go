package factgen

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"isthatstilltrue/internal/config"
	"isthatstilltrue/internal/core"
	"isthatstilltrue/internal/llm"
	"isthatstilltrue/internal/wiki"
)

type stubProvider struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) GenerateText(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type stubWiki struct {
	checks int
}

func (s *stubWiki) CountryContext(ctx context.Context, country string, year int) string {
	return "generic schooling context"
}

func (s *stubWiki) CrossCheck(ctx context.Context, statement string) wiki.CheckResult {
	s.checks++
	return wiki.CheckResult{Found: true, Confidence: 0.8, Extract: "supporting text"}
}

type memCache struct {
	entry   *core.CachedGeneration
	upserts int
}

func (m *memCache) GetGeneration(ctx context.Context, country string, year int) (*core.CachedGeneration, error) {
	return m.entry, nil
}

func (m *memCache) UpsertGeneration(ctx context.Context, country string, year int, facts []core.FactRecord, problems []core.EducationProblem) error {
	m.upserts++
	m.entry = &core.CachedGeneration{
		Country:        country,
		GraduationYear: year,
		Facts:          facts,
		Problems:       problems,
		CreatedAt:      time.Now(),
	}
	return nil
}

var testStatements = []string{
	"Pluto is the ninth planet of the solar system",
	"The tongue has dedicated regions for each taste",
	"Humans use only ten percent of their brains",
	"Dinosaurs were slow cold blooded scaly reptiles",
	"The Great Wall of China is visible from space",
	"Blood inside your veins is blue until oxygenated",
	"Chameleons change color to match their background",
	"Goldfish have a memory span of three seconds",
	"Shaving makes hair grow back thicker and darker",
	"Bats are completely blind and navigate by sound alone",
}

func generationJSON(t *testing.T, n int) string {
	t.Helper()
	var facts []core.FactRecord
	for i := 0; i < n; i++ {
		facts = append(facts, core.FactRecord{
			Category:     "Biology",
			Statement:    testStatements[i%len(testStatements)],
			Correction:   fmt.Sprintf("Updated understanding number %d", i),
			YearDebunked: 2000 + i,
			Salience:     "surprising",
		})
	}
	payload := map[string]any{
		"facts": facts,
		"educationProblems": []core.EducationProblem{
			{Problem: "rote learning", Description: "memorization over method", Impact: "facts never revisited"},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to build test payload: %v", err)
	}
	return string(b)
}

func testPipeline(provider *stubProvider, cache *memCache) (*Pipeline, *stubWiki) {
	w := &stubWiki{}
	cfg := config.Pipeline{
		TargetFacts:    8,
		MinFacts:       5,
		FanOut:         1,
		MaxValidations: 12,
		ValidationGap:  "1ms",
	}
	return NewPipeline(provider, w, cache, cfg, 7*24*time.Hour), w
}

func TestGenerateRejectsMissingInput(t *testing.T) {
	p, _ := testPipeline(&stubProvider{}, &memCache{})

	if _, err := p.Generate(context.Background(), "", 1995, "en"); err == nil {
		t.Error("expected error for missing country")
	}
	if _, err := p.Generate(context.Background(), "Germany", 0, "en"); err == nil {
		t.Error("expected error for missing year")
	}
}

func TestGenerateCacheHitShortCircuits(t *testing.T) {
	provider := &stubProvider{response: generationJSON(t, 6)}
	cache := &memCache{entry: &core.CachedGeneration{
		Country:        "Germany",
		GraduationYear: 1995,
		Facts:          Localized("en")[:5],
		CreatedAt:      time.Now().Add(-48 * time.Hour),
	}}
	p, _ := testPipeline(provider, cache)

	result, err := p.Generate(context.Background(), "Germany", 1995, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Cached {
		t.Error("expected cached=true for a fresh entry")
	}
	if result.CacheAge != 2 {
		t.Errorf("expected cacheAge 2 days, got %d", result.CacheAge)
	}
	if provider.calls != 0 {
		t.Errorf("cache hit must not call the provider, got %d calls", provider.calls)
	}
}

func TestGenerateStaleCacheRegenerates(t *testing.T) {
	provider := &stubProvider{response: generationJSON(t, 6)}
	cache := &memCache{entry: &core.CachedGeneration{
		CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
	}}
	p, _ := testPipeline(provider, cache)

	result, err := p.Generate(context.Background(), "Germany", 1995, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cached {
		t.Error("stale entry must be treated as a miss")
	}
	if provider.calls == 0 {
		t.Error("expected regeneration after stale cache entry")
	}
}

func TestGenerateProducesScoredFacts(t *testing.T) {
	provider := &stubProvider{response: generationJSON(t, 6)}
	cache := &memCache{}
	p, w := testPipeline(provider, cache)

	result, err := p.Generate(context.Background(), "Germany", 1995, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cached || result.Fallback {
		t.Errorf("expected a fresh non-fallback result, got %+v", result)
	}
	if len(result.Facts) == 0 {
		t.Fatal("expected facts in result")
	}
	for i, f := range result.Facts {
		if f.YearDebunked <= 1995 {
			t.Errorf("fact %d violates year invariant: %d", i, f.YearDebunked)
		}
		if f.QualityScore <= 0 || f.QualityScore > 1 {
			t.Errorf("fact %d score %v outside (0,1]", i, f.QualityScore)
		}
		if f.ConfidenceLevel == "" {
			t.Errorf("fact %d missing confidence level", i)
		}
	}
	if w.checks == 0 {
		t.Error("expected cross-checks during enrichment")
	}
	if cache.upserts != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.upserts)
	}
	if len(result.EducationProblems) == 0 {
		t.Error("expected education problems carried through")
	}
}

func TestGenerateRanksByScoreDescending(t *testing.T) {
	provider := &stubProvider{response: generationJSON(t, 10)}
	p, _ := testPipeline(provider, &memCache{})

	result, err := p.Generate(context.Background(), "Germany", 1995, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Facts) > 8 {
		t.Errorf("expected at most 8 facts, got %d", len(result.Facts))
	}
	for i := 1; i < len(result.Facts); i++ {
		if result.Facts[i].QualityScore > result.Facts[i-1].QualityScore {
			t.Errorf("facts not sorted by score at index %d", i)
		}
	}
}

func TestGenerateFillsFromBankWhenShort(t *testing.T) {
	provider := &stubProvider{response: generationJSON(t, 1)}
	p, _ := testPipeline(provider, &memCache{})

	result, err := p.Generate(context.Background(), "Germany", 1995, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Facts) < 5 {
		t.Errorf("expected bank fill up to minimum of 5, got %d", len(result.Facts))
	}
	for i, f := range result.Facts {
		if f.YearDebunked <= 1995 {
			t.Errorf("bank-filled fact %d violates year invariant: %d", i, f.YearDebunked)
		}
	}
}

func TestGenerateProviderFailureFallsBack(t *testing.T) {
	provider := &stubProvider{err: fmt.Errorf("gateway unreachable")}
	cache := &memCache{}
	p, _ := testPipeline(provider, cache)

	result, err := p.Generate(context.Background(), "Germany", 1995, "en")
	if err != nil {
		t.Fatalf("expected degraded response, got error: %v", err)
	}
	if !result.Fallback {
		t.Error("expected fallback=true")
	}
	if result.Stage != "generation" {
		t.Errorf("expected stage 'generation', got %q", result.Stage)
	}
	if len(result.Facts) == 0 {
		t.Error("expected fallback facts")
	}
	for i, f := range result.Facts {
		if f.YearDebunked <= 1995 {
			t.Errorf("fallback fact %d violates year invariant: %d", i, f.YearDebunked)
		}
	}
	if cache.upserts != 0 {
		t.Error("degraded responses must not be cached")
	}
}

func TestGenerateUnparseableResponseFallsBack(t *testing.T) {
	provider := &stubProvider{response: "I refuse to answer in JSON."}
	p, _ := testPipeline(provider, &memCache{})

	result, err := p.Generate(context.Background(), "Germany", 1995, "en")
	if err != nil {
		t.Fatalf("expected degraded response, got error: %v", err)
	}
	if !result.Fallback || result.Stage != "generation" {
		t.Errorf("expected generation-stage fallback, got %+v", result)
	}
}

func TestGenerateFatalWhenNoFallbackApplies(t *testing.T) {
	provider := &stubProvider{err: fmt.Errorf("down")}
	p, _ := testPipeline(provider, &memCache{})

	// Graduation year after every curated debunk year.
	if _, err := p.Generate(context.Background(), "Germany", 2020, "en"); err == nil {
		t.Error("expected fatal error when even the fallback bank has nothing to offer")
	}
}
