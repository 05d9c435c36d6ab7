package factgen

import (
	"encoding/json"
	"strings"

	"isthatstilltrue/internal/core"
	"isthatstilltrue/internal/logger"
)

// ParseResponse extracts fact records and education problems from raw AI
// output. Models wrap JSON in markdown fences or chat around it, so the
// parser strips fences, carves out the outermost object, and decodes
// defensively. It never fails; anything unusable yields empty lists.
func ParseResponse(raw string) ([]core.FactRecord, []core.EducationProblem) {
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
		logger.Debug("response contains no JSON object", "length", len(raw))
		return nil, nil
	}
	clean = clean[start : end+1]

	var parsed struct {
		Facts             []core.FactRecord       `json:"facts"`
		EducationProblems []core.EducationProblem `json:"educationProblems"`
	}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		logger.Debug("failed to parse generation response", "error", err.Error(), "length", len(clean))
		return nil, nil
	}

	return parsed.Facts, parsed.EducationProblems
}
