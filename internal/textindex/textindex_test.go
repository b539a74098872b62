package textindex

import (
	"context"
	"testing"
)

func TestWordDocIDs(t *testing.T) {
	idx := New()
	idx.AddDocument(1, map[string]string{"name": "Batman Returns"})
	idx.AddDocument(2, map[string]string{"name": "Badman"})

	d, err := idx.WordDocIDs(context.Background(), "batman")
	if err != nil {
		t.Fatalf("WordDocIDs: %v", err)
	}
	if d.Len() != 1 || !d.Contains(1) {
		t.Fatalf("expected {1}, got %v", d.ToSlice())
	}
}

func TestProximityDocIDs(t *testing.T) {
	idx := New()
	idx.AddDocument(1, map[string]string{"name": "batman returns"})
	idx.AddDocument(2, map[string]string{"name": "batman the dark knight returns"})

	d, err := idx.ProximityDocIDs(context.Background(), "batman", "returns", 1)
	if err != nil {
		t.Fatalf("ProximityDocIDs: %v", err)
	}
	if d.Len() != 1 || !d.Contains(1) {
		t.Fatalf("expected proximity-1 match only in doc 1, got %v", d.ToSlice())
	}

	d4, err := idx.ProximityDocIDs(context.Background(), "batman", "returns", 4)
	if err != nil {
		t.Fatalf("ProximityDocIDs: %v", err)
	}
	if d4.Len() != 1 || !d4.Contains(2) {
		t.Fatalf("expected proximity-4 match only in doc 2, got %v", d4.ToSlice())
	}
}

func TestCandidatesAtDistance(t *testing.T) {
	idx := New()
	idx.AddDocument(1, map[string]string{"name": "batman"})
	idx.AddDocument(2, map[string]string{"name": "badman"})

	candidates, err := idx.CandidatesAtDistance(context.Background(), "batman", 1)
	if err != nil {
		t.Fatalf("CandidatesAtDistance: %v", err)
	}
	found := false
	for _, c := range candidates {
		if c == "badman" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected badman at distance 1 from batman, got %v", candidates)
	}

	exact, err := idx.CandidatesAtDistance(context.Background(), "batman", 0)
	if err != nil {
		t.Fatalf("CandidatesAtDistance exact: %v", err)
	}
	if len(exact) != 1 || exact[0] != "batman" {
		t.Fatalf("expected exact match [batman], got %v", exact)
	}
}

func TestPhraseDocIDs(t *testing.T) {
	idx := New()
	idx.AddDocument(1, map[string]string{"name": "Batman Returns"})
	idx.AddDocument(2, map[string]string{"name": "Batman"})

	d, err := idx.PhraseDocIDs(context.Background(), []string{"batman", "returns"})
	if err != nil {
		t.Fatalf("PhraseDocIDs: %v", err)
	}
	if d.Len() != 1 || !d.Contains(1) {
		t.Fatalf("expected phrase match only in doc 1, got %v", d.ToSlice())
	}
}

func TestBM25Stats(t *testing.T) {
	idx := New()
	idx.AddDocument(1, map[string]string{"name": "batman batman returns"})
	idx.AddDocument(2, map[string]string{"name": "batman"})

	if got := idx.DocFrequency("batman"); got != 2 {
		t.Errorf("DocFrequency(batman) = %d, want 2", got)
	}
	if got := idx.TermFrequency("batman", 1); got != 2 {
		t.Errorf("TermFrequency(batman, 1) = %d, want 2", got)
	}
	if got := idx.DocLength(1); got != 3 {
		t.Errorf("DocLength(1) = %d, want 3", got)
	}
	if got := idx.NumDocs(); got != 2 {
		t.Errorf("NumDocs = %d, want 2", got)
	}
	if got := idx.AverageDocLength(); got != 2 {
		t.Errorf("AverageDocLength = %v, want 2", got)
	}
}
