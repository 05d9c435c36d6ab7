// Package factgen implements the fact-generation pipeline: cache lookup,
// concurrent prompt fan-out, defensive response parsing, validation and
// quality scoring, duplicate removal, ranking, and fallback fill.
package factgen

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"isthatstilltrue/internal/config"
	"isthatstilltrue/internal/core"
	"isthatstilltrue/internal/llm"
	"isthatstilltrue/internal/logger"
	"isthatstilltrue/internal/wiki"
)

// CacheStore is the slice of the persistence layer the pipeline needs.
type CacheStore interface {
	GetGeneration(ctx context.Context, country string, year int) (*core.CachedGeneration, error)
	UpsertGeneration(ctx context.Context, country string, year int, facts []core.FactRecord, problems []core.EducationProblem) error
}

// Encyclopedia provides context retrieval and per-fact cross-checking.
type Encyclopedia interface {
	CountryContext(ctx context.Context, country string, year int) string
	CrossCheck(ctx context.Context, statement string) wiki.CheckResult
}

// Result is the outcome of one generation request.
type Result struct {
	Facts             []core.FactRecord       `json:"facts"`
	EducationProblems []core.EducationProblem `json:"educationProblems"`
	Cached            bool                    `json:"cached"`
	CacheAge          int                     `json:"cacheAge,omitempty"` // Days since the cached entry was written
	Fallback          bool                    `json:"fallback,omitempty"`
	Stage             string                  `json:"stage,omitempty"` // Pipeline phase that failed, on degraded responses
}

// Pipeline orchestrates one fact-generation request end to end.
type Pipeline struct {
	provider llm.Provider
	wiki     Encyclopedia
	cache    CacheStore

	targetFacts    int
	minFacts       int
	fanOut         int
	maxValidations int
	validationGap  time.Duration
	retention      time.Duration

	now func() time.Time
}

// NewPipeline wires a pipeline from its collaborators and tuning knobs.
func NewPipeline(provider llm.Provider, encyclopedia Encyclopedia, cache CacheStore, cfg config.Pipeline, retention time.Duration) *Pipeline {
	fanOut := cfg.FanOut
	if fanOut < 1 {
		fanOut = 1
	}
	if fanOut > 2 {
		fanOut = 2
	}

	return &Pipeline{
		provider:       provider,
		wiki:           encyclopedia,
		cache:          cache,
		targetFacts:    cfg.TargetFacts,
		minFacts:       cfg.MinFacts,
		fanOut:         fanOut,
		maxValidations: cfg.MaxValidations,
		validationGap:  config.Duration(cfg.ValidationGap, 300*time.Millisecond),
		retention:      retention,
		now:            time.Now,
	}
}

// Generate runs the full pipeline for (country, graduationYear). A fresh
// cache entry short-circuits generation. Internal failures degrade to the
// curated fallback bank; only an empty fallback is a hard error.
func (p *Pipeline) Generate(ctx context.Context, country string, graduationYear int, language string) (*Result, error) {
	if country == "" || graduationYear == 0 {
		return nil, fmt.Errorf("country and graduationYear are required")
	}

	if entry, err := p.cache.GetGeneration(ctx, country, graduationYear); err != nil {
		logger.Warn("cache lookup failed, generating fresh", "country", country, "year", graduationYear, "error", err.Error())
	} else if entry != nil && p.now().Sub(entry.CreatedAt) <= p.retention {
		logger.Info("cache hit", "country", country, "year", graduationYear, "age_days", entry.AgeDays(p.now()))
		return &Result{
			Facts:             entry.Facts,
			EducationProblems: entry.Problems,
			Cached:            true,
			CacheAge:          entry.AgeDays(p.now()),
		}, nil
	}

	facts, problems, stage := p.generate(ctx, country, graduationYear, language)
	if stage != "" {
		logger.Warn("pipeline degraded to fallback", "country", country, "year", graduationYear, "stage", stage)
		return p.fallbackOnly(graduationYear, language, stage)
	}

	if err := p.cache.UpsertGeneration(ctx, country, graduationYear, facts, problems); err != nil {
		logger.Error("cache write failed", err, "country", country, "year", graduationYear)
	}

	return &Result{Facts: facts, EducationProblems: problems}, nil
}

// generate runs steps 2 through 8. A non-empty stage return means the phase
// named failed and the caller should serve fallback content instead.
func (p *Pipeline) generate(ctx context.Context, country string, graduationYear int, language string) ([]core.FactRecord, []core.EducationProblem, string) {
	contextText := p.wiki.CountryContext(ctx, country, graduationYear)

	candidates, problems := p.fanOutGenerate(ctx, country, graduationYear, language, contextText)
	if len(candidates) == 0 {
		return nil, nil, "generation"
	}

	candidates = FilterStructural(candidates, graduationYear)
	if len(candidates) == 0 {
		return nil, nil, "validation"
	}

	p.enrich(ctx, candidates)

	candidates = Deduplicate(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].QualityScore > candidates[j].QualityScore
	})
	if len(candidates) > p.targetFacts {
		candidates = candidates[:p.targetFacts]
	}

	candidates = p.fillFromBank(candidates, graduationYear, language)

	return candidates, problems, ""
}

// fanOutGenerate issues the concurrent generation branches and merges their
// parsed output. A failed branch contributes nothing; only all branches
// failing leaves the candidate set empty.
func (p *Pipeline) fanOutGenerate(ctx context.Context, country string, graduationYear int, language, contextText string) ([]core.FactRecord, []core.EducationProblem) {
	var (
		mu         sync.Mutex
		candidates []core.FactRecord
		problems   []core.EducationProblem
		wg         sync.WaitGroup
	)

	for branch := 0; branch < p.fanOut; branch++ {
		wg.Add(1)
		go func(branch int) {
			defer wg.Done()

			prompt := GenerationPrompt(country, graduationYear, language, contextText, branch)
			raw, err := p.provider.GenerateText(ctx, prompt, llm.Options{
				Temperature: BranchTemperature(branch),
			})
			if err != nil {
				logger.Warn("generation branch failed", "branch", branch, "error", err.Error())
				return
			}

			facts, probs := ParseResponse(raw)
			logger.Debug("generation branch parsed", "branch", branch, "facts", len(facts), "problems", len(probs))

			mu.Lock()
			candidates = append(candidates, facts...)
			problems = append(problems, probs...)
			mu.Unlock()
		}(branch)
	}
	wg.Wait()

	return candidates, problems
}

// enrich cross-checks up to maxValidations candidates with a fixed delay
// between lookups, then scores every candidate. Candidates past the cap are
// scored without a cross-check.
func (p *Pipeline) enrich(ctx context.Context, candidates []core.FactRecord) {
	for i := range candidates {
		if i >= p.maxValidations {
			Score(&candidates[i], nil)
			continue
		}
		if i > 0 {
			select {
			case <-time.After(p.validationGap):
			case <-ctx.Done():
				Score(&candidates[i], nil)
				continue
			}
		}
		check := p.wiki.CrossCheck(ctx, candidates[i].Statement)
		Score(&candidates[i], &check)
	}
}

// fillFromBank tops the list up from the curated bank, in authored order,
// until the minimum is met. Bank facts whose debunk year does not postdate
// the graduation year are skipped.
func (p *Pipeline) fillFromBank(facts []core.FactRecord, graduationYear int, language string) []core.FactRecord {
	if len(facts) >= p.minFacts {
		return facts
	}
	for _, f := range Localized(language) {
		if len(facts) >= p.minFacts {
			break
		}
		if f.YearDebunked <= graduationYear {
			continue
		}
		facts = append(facts, f)
	}
	return facts
}

// fallbackOnly serves a degraded response built entirely from the curated
// bank. Shuffled so repeated failures do not always show the same facts.
func (p *Pipeline) fallbackOnly(graduationYear int, language, stage string) (*Result, error) {
	var facts []core.FactRecord
	for _, f := range Shuffled(language) {
		if f.YearDebunked <= graduationYear {
			continue
		}
		facts = append(facts, f)
		if len(facts) >= p.targetFacts {
			break
		}
	}
	if len(facts) == 0 {
		return nil, fmt.Errorf("generation failed at stage %s and no fallback facts apply", stage)
	}

	return &Result{
		Facts:             facts,
		EducationProblems: LocalizedProblems(language),
		Fallback:          true,
		Stage:             stage,
	}, nil
}
