package factgen

import (
	"testing"

	"isthatstilltrue/internal/core"
)

func factWith(statement string) core.FactRecord {
	return core.FactRecord{Statement: statement}
}

func TestDeduplicateDropsNearIdentical(t *testing.T) {
	facts := []core.FactRecord{
		factWith("Pluto is the ninth planet of the solar system"),
		factWith("pluto is the ninth planet of the solar system!"),
		factWith("Humans use only ten percent of their brains"),
	}

	kept := Deduplicate(facts)
	if len(kept) != 2 {
		t.Fatalf("expected 2 facts after dedupe, got %d", len(kept))
	}
	if kept[0].Statement != facts[0].Statement {
		t.Error("earlier-indexed duplicate must win")
	}
	if kept[1].Statement != facts[2].Statement {
		t.Error("unrelated fact must survive")
	}
}

func TestDeduplicateKeepsDistinctFacts(t *testing.T) {
	facts := []core.FactRecord{
		factWith("The tongue has separate taste regions for sweet and bitter"),
		factWith("Dinosaurs were slow cold blooded reptiles"),
		factWith("The Great Wall is visible from space"),
	}
	if kept := Deduplicate(facts); len(kept) != 3 {
		t.Errorf("expected all distinct facts kept, got %d", len(kept))
	}
}

func TestDeduplicateSmallInputs(t *testing.T) {
	if kept := Deduplicate(nil); kept != nil {
		t.Error("nil input should pass through")
	}
	one := []core.FactRecord{factWith("only one fact here")}
	if kept := Deduplicate(one); len(kept) != 1 {
		t.Error("single fact should pass through")
	}
}

func TestJaccard(t *testing.T) {
	a := tokenize("the quick brown fox")
	b := tokenize("The Quick Brown Fox")
	if got := jaccard(a, b); got != 1.0 {
		t.Errorf("case-insensitive identical sets: expected 1.0, got %v", got)
	}

	c := tokenize("entirely different words here")
	if got := jaccard(a, c); got != 0 {
		t.Errorf("disjoint sets: expected 0, got %v", got)
	}

	if got := jaccard(tokenize(""), tokenize("")); got != 0 {
		t.Errorf("empty sets: expected 0, got %v", got)
	}
}

func TestTokenizeSplitsOnNonWordCharacters(t *testing.T) {
	set := tokenize("Pluto, the ninth-planet (debunked)!")
	for _, want := range []string{"pluto", "the", "ninth", "planet", "debunked"} {
		if _, ok := set[want]; !ok {
			t.Errorf("expected token %q in set", want)
		}
	}
	if len(set) != 5 {
		t.Errorf("expected 5 tokens, got %d", len(set))
	}
}
