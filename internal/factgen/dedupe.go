package factgen

import (
	"regexp"
	"strings"

	"isthatstilltrue/internal/core"
)

// similarityThreshold is the Jaccard similarity above which two statements
// are considered duplicates.
const similarityThreshold = 0.7

var wordSplit = regexp.MustCompile(`\W+`)

// Deduplicate drops near-identical facts. For every pair whose statements
// exceed the similarity threshold, the higher-indexed fact is removed, so
// earlier candidates always win. Quadratic, but the candidate set is small.
func Deduplicate(facts []core.FactRecord) []core.FactRecord {
	if len(facts) < 2 {
		return facts
	}

	tokens := make([]map[string]struct{}, len(facts))
	for i, f := range facts {
		tokens[i] = tokenize(f.Statement)
	}

	dropped := make([]bool, len(facts))
	for i := 0; i < len(facts); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(facts); j++ {
			if dropped[j] {
				continue
			}
			if jaccard(tokens[i], tokens[j]) > similarityThreshold {
				dropped[j] = true
			}
		}
	}

	kept := make([]core.FactRecord, 0, len(facts))
	for i, f := range facts {
		if !dropped[i] {
			kept = append(kept, f)
		}
	}
	return kept
}

// tokenize lowercases and splits on non-word characters, returning the set
// of distinct tokens.
func tokenize(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range wordSplit.Split(strings.ToLower(s), -1) {
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

// jaccard computes intersection over union of two token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
