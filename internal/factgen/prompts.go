package factgen

import (
	"fmt"
	"strings"
)

// topicFocuses steer each concurrent generation branch toward a different
// slice of the curriculum so the branches overlap as little as possible.
var topicFocuses = []string{
	"biology, medicine, physics, chemistry, and astronomy",
	"geography, history, technology, nutrition, and social studies",
}

// branchTemperatures pairs with topicFocuses; the second branch runs hotter
// to diversify phrasing.
var branchTemperatures = []float32{0.7, 0.9}

// TopicFocus returns the topic emphasis for a generation branch.
func TopicFocus(branch int) string {
	return topicFocuses[branch%len(topicFocuses)]
}

// BranchTemperature returns the sampling temperature for a generation branch.
func BranchTemperature(branch int) float32 {
	return branchTemperatures[branch%len(branchTemperatures)]
}

// GenerationPrompt builds the prompt for one generation branch.
func GenerationPrompt(country string, graduationYear int, language, contextText string, branch int) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a careful research assistant. A person graduated from school in %s in %d.
List facts that were taught as true in %s schools up to %d but have since been debunked, revised, or proven wrong.

Focus on: %s.

`, country, graduationYear, country, graduationYear, TopicFocus(branch))

	if contextText != "" {
		fmt.Fprintf(&b, "Background on schooling in %s:\n%s\n\n", country, contextText)
	}

	if language == "de" {
		b.WriteString("Write all statement, correction, salience, problem, description, and impact values in German.\n\n")
	}

	fmt.Fprintf(&b, `Respond with ONLY a JSON object, no commentary, in this exact shape:
{
  "facts": [
    {
      "category": "Biology",
      "statement": "what was taught as true",
      "correction": "what we know today",
      "yearDebunked": 2006,
      "salience": "why this is surprising",
      "sourceName": "name of a reputable source",
      "sourceUrl": "https://..."
    }
  ],
  "educationProblems": [
    {
      "problem": "short label",
      "description": "what was wrong with the education system of that era",
      "impact": "how it affected students"
    }
  ]
}

Rules:
- Every yearDebunked must be strictly after %d.
- Each statement must describe what was actually taught, not a myth nobody believed.
- Provide 6 to 10 facts and 2 to 3 educationProblems.
`, graduationYear)

	return b.String()
}
