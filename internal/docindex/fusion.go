package docindex

import (
	"sort"
)

const (
	// RRFConstant is the constant used in RRF formula: 1 / (k + rank)
	// Standard value is 60, which provides a good balance between
	// giving weight to top-ranked documents while not ignoring
	// lower-ranked ones
	RRFConstant = 60

	// DefaultBodyWeight is the default weight for body-chunk results
	// in RRF fusion. 0.7 means body content contributes 70% and title
	// matches contribute 30%.
	DefaultBodyWeight = 0.7

	// DefaultTitleWeight is the default weight for title results
	DefaultTitleWeight = 0.3
)

// FuseRRF combines body and title rankings using Reciprocal Rank Fusion
//
// RRF formula: score(d) = Σ (w_i / (k + rank_i))
// where k is RRFConstant (60), rank_i is the rank in each source,
// and w_i is the weight for each source.
//
// Both inputs must be sorted by rank ascending. The returned results
// carry the fused RRF score, with ranks and confidences reassigned
// from the fused order.
func FuseRRF(bodyResults, titleResults []Result, bodyWeight float64, topN int) []Result {
	if bodyWeight < 0 {
		bodyWeight = 0
	}
	if bodyWeight > 1 {
		bodyWeight = 1
	}
	titleWeight := 1.0 - bodyWeight

	// Map to store combined results by document key
	resultMap := make(map[string]*Result)

	for i, r := range bodyResults {
		rank := i + 1 // 1-indexed rank
		score := bodyWeight / float64(RRFConstant+rank)

		if existing, ok := resultMap[r.Key]; ok {
			existing.Score += score
		} else {
			resultMap[r.Key] = &Result{
				Key:     r.Key,
				Title:   r.Title,
				Program: r.Program,
				Score:   score,
			}
		}
	}

	for i, r := range titleResults {
		rank := i + 1 // 1-indexed rank
		score := titleWeight / float64(RRFConstant+rank)

		if existing, ok := resultMap[r.Key]; ok {
			existing.Score += score
			if existing.Title == "" {
				existing.Title = r.Title
			}
			if existing.Program == "" {
				existing.Program = r.Program
			}
		} else {
			resultMap[r.Key] = &Result{
				Key:     r.Key,
				Title:   r.Title,
				Program: r.Program,
				Score:   score,
			}
		}
	}

	// Convert map to slice and sort by fused score descending
	results := make([]Result, 0, len(resultMap))
	for _, r := range resultMap {
		results = append(results, *r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Key < results[j].Key
	})

	for i := range results {
		results[i].Rank = i + 1
		results[i].Confidence = computeRankConfidence(i + 1)
	}

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}

	return results
}
