// Package memories researches school-specific nostalgia content: what a
// school and its surroundings were like around a graduation year, with
// provenance-tagged findings.
package memories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"isthatstilltrue/internal/core"
	"isthatstilltrue/internal/llm"
	"isthatstilltrue/internal/logger"
)

// SchoolCache is the slice of the persistence layer the researcher needs.
type SchoolCache interface {
	GetSchoolMemories(ctx context.Context, schoolName, city string, year int) (*core.CachedSchoolMemories, error)
	UpsertSchoolMemories(ctx context.Context, schoolName, city string, year int, memories core.SchoolMemories) error
}

// Request identifies one school research query.
type Request struct {
	SchoolName     string `json:"schoolName"`
	City           string `json:"city"`
	Country        string `json:"country"`
	GraduationYear int    `json:"graduationYear"`
}

// Result is the outcome of one research request.
type Result struct {
	Memories core.SchoolMemories `json:"memories"`
	Cached   bool                `json:"cached"`
	CacheAge int                 `json:"cacheAge,omitempty"`
}

// Researcher produces school memory bundles.
type Researcher struct {
	provider  llm.Provider
	cache     SchoolCache
	retention time.Duration
	now       func() time.Time
}

// NewResearcher creates a researcher from its collaborators.
func NewResearcher(provider llm.Provider, cache SchoolCache, retention time.Duration) *Researcher {
	return &Researcher{
		provider:  provider,
		cache:     cache,
		retention: retention,
		now:       time.Now,
	}
}

// Research returns the memory bundle for a school and era, serving a fresh
// cached bundle when one exists. Findings that lack full provenance are
// dropped before the bundle is returned or cached.
func (r *Researcher) Research(ctx context.Context, req Request) (*Result, error) {
	if req.SchoolName == "" || req.City == "" || req.GraduationYear == 0 {
		return nil, fmt.Errorf("schoolName, city, and graduationYear are required")
	}

	if entry, err := r.cache.GetSchoolMemories(ctx, req.SchoolName, req.City, req.GraduationYear); err != nil {
		logger.Warn("school cache lookup failed", "school", req.SchoolName, "error", err.Error())
	} else if entry != nil && r.now().Sub(entry.CreatedAt) <= r.retention {
		age := int(r.now().Sub(entry.CreatedAt).Hours() / 24)
		return &Result{Memories: entry.Memories, Cached: true, CacheAge: age}, nil
	}

	raw, err := r.provider.GenerateText(ctx, researchPrompt(req), llm.Options{Temperature: 0.7})
	if err != nil {
		return nil, fmt.Errorf("school research generation failed: %w", err)
	}

	memories, err := parseMemories(raw)
	if err != nil {
		return nil, fmt.Errorf("school research returned no usable content: %w", err)
	}

	memories.SchoolName = req.SchoolName
	memories.City = req.City
	memories.Country = req.Country
	memories.GraduationYear = req.GraduationYear
	memories.Findings = filterProvenance(memories.Findings)

	if err := r.cache.UpsertSchoolMemories(ctx, req.SchoolName, req.City, req.GraduationYear, *memories); err != nil {
		logger.Error("school cache write failed", err, "school", req.SchoolName)
	}

	return &Result{Memories: *memories}, nil
}

func researchPrompt(req Request) string {
	return fmt.Sprintf(`You are a local history researcher. Describe what attending "%s" in %s, %s around %d was likely like, based on publicly documented history of the school, the city, and that era.

Respond with ONLY a JSON object, no commentary, in this exact shape:
{
  "summary": "a warm narrative paragraph about school life in that era",
  "findings": [
    {
      "title": "short headline",
      "content": "one documented detail about the school or city in that era",
      "sourceUrl": "https://...",
      "sourceName": "name of the source"
    }
  ],
  "historicalFact": "one surprising era-specific anecdote"
}

Rules:
- Every finding must cite a real, publicly accessible source with both sourceUrl and sourceName.
- Omit findings you cannot source rather than inventing citations.
- Provide 3 to 6 findings.
`, req.SchoolName, req.City, req.Country, req.GraduationYear)
}

// parseMemories decodes the AI response defensively.
func parseMemories(raw string) (*core.SchoolMemories, error) {
	clean := strings.TrimSpace(raw)
	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```json")
		clean = strings.TrimPrefix(clean, "```")
		clean = strings.TrimSuffix(clean, "```")
		clean = strings.TrimSpace(clean)
	}

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("response contains no JSON object")
	}

	var memories core.SchoolMemories
	if err := json.Unmarshal([]byte(clean[start:end+1]), &memories); err != nil {
		return nil, fmt.Errorf("failed to parse research response: %w", err)
	}
	if memories.Summary == "" && len(memories.Findings) == 0 {
		return nil, fmt.Errorf("research response is empty")
	}

	return &memories, nil
}

// filterProvenance drops findings missing either a source URL or name.
func filterProvenance(findings []core.SchoolFinding) []core.SchoolFinding {
	var kept []core.SchoolFinding
	for _, f := range findings {
		if f.SourceURL == "" || f.SourceName == "" {
			logger.Debug("dropping finding without provenance", "title", f.Title)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
