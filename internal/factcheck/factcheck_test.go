package factcheck

import (
	"context"
	"fmt"
	"testing"

	"isthatstilltrue/internal/llm"
	"isthatstilltrue/internal/wiki"
)

type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) GenerateText(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return s.response, s.err
}

type stubWiki struct {
	result wiki.CheckResult
}

func (s *stubWiki) CrossCheck(ctx context.Context, statement string) wiki.CheckResult {
	return s.result
}

const verdictJSON = `{"isStillValid":false,"correction":"Pluto is a dwarf planet","yearDebunked":2006,"explanation":"Reclassified by the IAU","confidence":0.8,"sources":["IAU"]}`

func TestCheckRejectsShortStatement(t *testing.T) {
	c := NewChecker(&stubProvider{}, &stubWiki{})
	if _, err := c.Check(context.Background(), "short"); err == nil {
		t.Error("expected error for too-short statement")
	}
	if _, err := c.Check(context.Background(), "   "); err == nil {
		t.Error("expected error for blank statement")
	}
}

func TestCheckParsesVerdict(t *testing.T) {
	c := NewChecker(&stubProvider{response: "```json\n" + verdictJSON + "\n```"}, &stubWiki{})

	verdict, err := c.Check(context.Background(), "Pluto is the ninth planet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.IsStillValid {
		t.Error("expected isStillValid=false")
	}
	if verdict.YearDebunked != 2006 {
		t.Errorf("expected yearDebunked 2006, got %d", verdict.YearDebunked)
	}
	if verdict.Confidence != 0.8 {
		t.Errorf("expected unadjusted confidence 0.8, got %v", verdict.Confidence)
	}
}

func TestCheckBlendsCrossCheckConfidence(t *testing.T) {
	c := NewChecker(
		&stubProvider{response: verdictJSON},
		&stubWiki{result: wiki.CheckResult{Found: true, Confidence: 0.6, Source: "https://en.wikipedia.org/wiki/Pluto"}},
	)

	verdict, err := c.Check(context.Background(), "Pluto is the ninth planet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := verdict.Confidence - 0.7; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("expected blended confidence 0.7, got %v", verdict.Confidence)
	}
	found := false
	for _, s := range verdict.Sources {
		if s == "https://en.wikipedia.org/wiki/Pluto" {
			found = true
		}
	}
	if !found {
		t.Error("expected cross-check source appended")
	}
}

func TestCheckProviderFailure(t *testing.T) {
	c := NewChecker(&stubProvider{err: fmt.Errorf("gateway down")}, &stubWiki{})
	if _, err := c.Check(context.Background(), "Pluto is the ninth planet"); err == nil {
		t.Error("expected error when the gateway fails")
	}
}

func TestCheckUnusableResponse(t *testing.T) {
	cases := []string{
		"I cannot answer that.",
		`{"isStillValid": true}`,
		`{"broken`,
	}
	for _, response := range cases {
		c := NewChecker(&stubProvider{response: response}, &stubWiki{})
		if _, err := c.Check(context.Background(), "Pluto is the ninth planet"); err == nil {
			t.Errorf("expected error for response %q", response)
		}
	}
}
