package docindex

import (
	"testing"
)

func TestFuseRRF(t *testing.T) {
	bodyResults := []Result{
		{Key: "doc1", Title: "Doc 1", Score: 10.0, Rank: 1},
		{Key: "doc2", Title: "Doc 2", Score: 8.0, Rank: 2},
		{Key: "doc3", Title: "Doc 3", Score: 5.0, Rank: 3},
	}

	titleResults := []Result{
		{Key: "doc2", Title: "Doc 2", Score: 4.0, Rank: 1},
		{Key: "doc4", Title: "Doc 4", Score: 3.0, Rank: 2},
		{Key: "doc1", Title: "Doc 1", Score: 2.0, Rank: 3},
	}

	results := FuseRRF(bodyResults, titleResults, DefaultBodyWeight, 10)

	if len(results) != 4 {
		t.Fatalf("FuseRRF() returned %d results, want 4", len(results))
	}

	// doc1 ranks first in the body list and appears in both, so it
	// should win with the default body-heavy weighting
	if results[0].Key != "doc1" {
		t.Errorf("FuseRRF() top result = %s, want doc1", results[0].Key)
	}

	topKeys := make(map[string]bool)
	for i := 0; i < 2; i++ {
		topKeys[results[i].Key] = true
	}
	if !topKeys["doc1"] || !topKeys["doc2"] {
		t.Errorf("FuseRRF() top 2 = %v, want doc1 and doc2 (appear in both lists)", topKeys)
	}

	// doc4 only appears in the lighter title list
	if results[len(results)-1].Key != "doc4" {
		t.Errorf("FuseRRF() last result = %s, want doc4", results[len(results)-1].Key)
	}
}

func TestFuseRRF_BodyOnly(t *testing.T) {
	bodyResults := []Result{
		{Key: "doc1", Title: "Doc 1", Score: 10.0, Rank: 1},
		{Key: "doc2", Title: "Doc 2", Score: 8.0, Rank: 2},
	}

	results := FuseRRF(bodyResults, nil, DefaultBodyWeight, 10)

	if len(results) != 2 {
		t.Fatalf("FuseRRF() with body only returned %d results, want 2", len(results))
	}

	// Order should match body order
	if results[0].Key != "doc1" {
		t.Errorf("FuseRRF() first result = %s, want doc1", results[0].Key)
	}
}

func TestFuseRRF_Empty(t *testing.T) {
	results := FuseRRF(nil, nil, DefaultBodyWeight, 10)

	if len(results) != 0 {
		t.Errorf("FuseRRF() with empty inputs returned %d results, want 0", len(results))
	}
}

func TestFuseRRF_TopN(t *testing.T) {
	bodyResults := make([]Result, 20)
	for i := range bodyResults {
		bodyResults[i] = Result{
			Key:   "doc" + string(rune('A'+i)),
			Score: float64(20 - i),
			Rank:  i + 1,
		}
	}

	results := FuseRRF(bodyResults, nil, DefaultBodyWeight, 5)

	if len(results) != 5 {
		t.Errorf("FuseRRF() with topN=5 returned %d results, want 5", len(results))
	}
}

func TestFuseRRF_WeightBalance(t *testing.T) {
	bodyResults := []Result{
		{Key: "body_top", Title: "Body Top", Score: 10.0, Rank: 1},
	}

	titleResults := []Result{
		{Key: "title_top", Title: "Title Top", Score: 4.0, Rank: 1},
	}

	// With the default body weight (0.7), body_top should rank first
	results := FuseRRF(bodyResults, titleResults, DefaultBodyWeight, 10)

	if len(results) != 2 {
		t.Fatalf("FuseRRF() returned %d results, want 2", len(results))
	}
	if results[0].Key != "body_top" {
		t.Errorf("FuseRRF() with default weights: first result = %s, want body_top", results[0].Key)
	}

	// With body weight 0.2, title_top should rank first
	results = FuseRRF(bodyResults, titleResults, 0.2, 10)

	if results[0].Key != "title_top" {
		t.Errorf("FuseRRF() with body weight=0.2: first result = %s, want title_top", results[0].Key)
	}
}

func TestFuseRRF_ReassignsRanks(t *testing.T) {
	bodyResults := []Result{
		{Key: "doc1", Rank: 1, Confidence: 0.95},
		{Key: "doc2", Rank: 2, Confidence: 0.9},
	}
	titleResults := []Result{
		{Key: "doc2", Rank: 1, Confidence: 0.95},
	}

	results := FuseRRF(bodyResults, titleResults, DefaultBodyWeight, 10)

	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("results[%d].Rank = %d, want %d", i, r.Rank, i+1)
		}
		if r.Confidence <= 0 {
			t.Errorf("results[%d].Confidence = %v, want > 0", i, r.Confidence)
		}
	}
}

func TestFuseRRF_FillsMissingMetadata(t *testing.T) {
	bodyResults := []Result{
		{Key: "doc1", Score: 10.0, Rank: 1}, // No title from a body-only hit
	}
	titleResults := []Result{
		{Key: "doc1", Title: "Doc 1", Program: "derecho", Score: 4.0, Rank: 1},
	}

	results := FuseRRF(bodyResults, titleResults, DefaultBodyWeight, 10)

	if len(results) != 1 {
		t.Fatalf("FuseRRF() returned %d results, want 1", len(results))
	}
	if results[0].Title != "Doc 1" {
		t.Errorf("FuseRRF() title = %q, want Doc 1", results[0].Title)
	}
	if results[0].Program != "derecho" {
		t.Errorf("FuseRRF() program = %q, want derecho", results[0].Program)
	}
}
