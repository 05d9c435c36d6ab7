// Package factcheck evaluates a single free-text statement against current
// knowledge, combining an AI verdict with an encyclopedia cross-check.
package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"isthatstilltrue/internal/core"
	"isthatstilltrue/internal/llm"
	"isthatstilltrue/internal/logger"
	"isthatstilltrue/internal/wiki"
)

// minStatementLen guards against fragments that cannot be meaningfully checked.
const minStatementLen = 10

// Encyclopedia is the lookup the checker uses to corroborate verdicts.
type Encyclopedia interface {
	CrossCheck(ctx context.Context, statement string) wiki.CheckResult
}

// Checker produces fact-check verdicts.
type Checker struct {
	provider llm.Provider
	wiki     Encyclopedia
}

// NewChecker creates a checker from its collaborators.
func NewChecker(provider llm.Provider, encyclopedia Encyclopedia) *Checker {
	return &Checker{provider: provider, wiki: encyclopedia}
}

// Check evaluates whether a statement is still considered true. The AI
// verdict is authoritative; the encyclopedia cross-check only adjusts
// confidence and contributes sources.
func (c *Checker) Check(ctx context.Context, statement string) (*core.FactCheckVerdict, error) {
	statement = strings.TrimSpace(statement)
	if len(statement) < minStatementLen {
		return nil, fmt.Errorf("statement is too short to check")
	}

	raw, err := c.provider.GenerateText(ctx, checkPrompt(statement), llm.Options{Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("fact check generation failed: %w", err)
	}

	verdict, err := parseVerdict(raw)
	if err != nil {
		return nil, fmt.Errorf("fact check returned no usable verdict: %w", err)
	}

	check := c.wiki.CrossCheck(ctx, statement)
	if check.Found {
		verdict.Sources = append(verdict.Sources, check.Source)
		verdict.Confidence = (verdict.Confidence + check.Confidence) / 2
	}
	if verdict.Confidence < 0 {
		verdict.Confidence = 0
	}
	if verdict.Confidence > 1 {
		verdict.Confidence = 1
	}

	logger.Info("fact check completed", "still_valid", verdict.IsStillValid, "confidence", verdict.Confidence)
	return verdict, nil
}

func checkPrompt(statement string) string {
	return fmt.Sprintf(`You are a careful fact checker. Evaluate whether this statement, as it might have been taught in school, is still considered true today:

"%s"

Respond with ONLY a JSON object, no commentary, in this exact shape:
{
  "isStillValid": false,
  "correction": "what we know today, empty if the statement still holds",
  "yearDebunked": 2006,
  "explanation": "a short explanation of the current understanding",
  "confidence": 0.8,
  "sources": ["name of a reputable source"]
}

Use yearDebunked 0 and an empty correction if the statement is still valid.
`, statement)
}

// parseVerdict decodes the AI response. Unlike fact generation there is no
// fallback bank for arbitrary statements, so an unusable response is an error.
func parseVerdict(raw string) (*core.FactCheckVerdict, error) {
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

	var verdict core.FactCheckVerdict
	if err := json.Unmarshal([]byte(clean[start:end+1]), &verdict); err != nil {
		return nil, fmt.Errorf("failed to parse verdict: %w", err)
	}
	if verdict.Explanation == "" {
		return nil, fmt.Errorf("verdict missing explanation")
	}

	return &verdict, nil
}
