package relevance

import (
	"sort"
	"strings"
	"unicode"

	"github.com/admibot/admibot-go/internal/stringutil"
	"github.com/admibot/admibot-go/internal/textnorm"
)

// ScoringConfig gathers every scoring weight in one table so they can be
// tuned and tested independently. Zero values are not meaningful; start
// from DefaultScoringConfig.
type ScoringConfig struct {
	// KeywordWeight is added once per keyword occurrence; repeats compound
	// linearly.
	KeywordWeight int

	// ProximityBonus is added once when two different keywords occur
	// within ProximityWindow normalized characters of each other. It is
	// the dominant term: concept co-occurrence beats raw frequency.
	ProximityBonus  int
	ProximityWindow int

	// CoverageBonus is added when the segment matches at least
	// min(CoverageTarget, total keywords) distinct keywords.
	// PartialCoverageBonus is added when it matches at least
	// PartialCoverageRatio of all keywords.
	CoverageBonus        int
	CoverageTarget       int
	PartialCoverageBonus int
	PartialCoverageRatio float64

	// ReadableBonus rewards segments of comfortable reading length,
	// SubstantiveBonus rewards segments with enough body to answer with.
	ReadableBonus       int
	ReadableMinChars    int
	ReadableMaxChars    int
	SubstantiveBonus    int
	SubstantiveMinChars int

	// IndexPenalty (negative) demotes short digit-heavy segments that look
	// like a table of contents rather than prose.
	IndexPenalty    int
	IndexMaxChars   int
	IndexDigitRatio float64

	// MinOversizeScore gates the budget override: a segment larger than
	// the whole budget is only admitted (truncated) when it scores at
	// least this much.
	MinOversizeScore int
}

// DefaultScoringConfig returns the tuned weights.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		KeywordWeight:        10,
		ProximityBonus:       1000,
		ProximityWindow:      50,
		CoverageBonus:        200,
		CoverageTarget:       3,
		PartialCoverageBonus: 100,
		PartialCoverageRatio: 0.6,
		ReadableBonus:        30,
		ReadableMinChars:     200,
		ReadableMaxChars:     2000,
		SubstantiveBonus:     20,
		SubstantiveMinChars:  300,
		IndexPenalty:         -100,
		IndexMaxChars:        400,
		IndexDigitRatio:      0.5,
		MinOversizeScore:     20,
	}
}

// Score rates one segment against the expanded keyword set and reports
// which keywords matched, in keyword order. Pure function: same inputs,
// same result.
func (sc ScoringConfig) Score(text string, keywords []string) (int, []string) {
	if len(keywords) == 0 {
		return 0, nil
	}
	norm := ocrNormalize(text)
	if norm == "" {
		return 0, nil
	}

	type hit struct {
		pos int
		kw  int
	}

	score := 0
	var matched []string
	var hits []hit
	for ki, kw := range keywords {
		count := 0
		off := 0
		for {
			i := strings.Index(norm[off:], kw)
			if i < 0 {
				break
			}
			pos := off + i
			hits = append(hits, hit{pos: pos, kw: ki})
			count++
			off = pos + len(kw)
		}
		if count == 0 {
			continue
		}
		score += count * sc.KeywordWeight
		matched = append(matched, kw)
	}
	if len(matched) == 0 {
		return 0, nil
	}

	// Closest pair of different keywords. Tracking the two most recent
	// distinct-keyword hits over the sorted positions finds the true
	// minimum gap in one pass.
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	bestGap := -1
	lastPos, lastKw := -1, -1
	prevPos, prevKw := -1, -1
	for _, h := range hits {
		switch {
		case lastKw >= 0 && h.kw != lastKw:
			if gap := h.pos - lastPos; bestGap < 0 || gap < bestGap {
				bestGap = gap
			}
		case prevKw >= 0 && h.kw != prevKw:
			if gap := h.pos - prevPos; bestGap < 0 || gap < bestGap {
				bestGap = gap
			}
		}
		if h.kw != lastKw {
			prevPos, prevKw = lastPos, lastKw
			lastPos, lastKw = h.pos, h.kw
		} else {
			lastPos = h.pos
		}
	}
	if bestGap >= 0 && bestGap <= sc.ProximityWindow {
		score += sc.ProximityBonus
	}

	target := min(sc.CoverageTarget, len(keywords))
	if len(matched) >= target {
		score += sc.CoverageBonus
	}
	if float64(len(matched)) >= sc.PartialCoverageRatio*float64(len(keywords)) {
		score += sc.PartialCoverageBonus
	}

	length := len([]rune(text))
	if length >= sc.ReadableMinChars && length <= sc.ReadableMaxChars {
		score += sc.ReadableBonus
	}
	if length > sc.SubstantiveMinChars {
		score += sc.SubstantiveBonus
	}

	if length < sc.IndexMaxChars {
		words := len(strings.Fields(norm))
		digits := 0
		for _, r := range norm {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if words > 0 && float64(digits)/float64(words) > sc.IndexDigitRatio {
			score += sc.IndexPenalty
		}
	}

	return score, matched
}

// ocrNormalize prepares text for matching: normalize, then flatten every
// non-alphanumeric rune to a space and collapse runs. Scanned documents
// come back from OCR with stray punctuation inside words; this keeps such
// noise from breaking keyword hits.
func ocrNormalize(s string) string {
	norm := textnorm.Normalize(s)
	var b strings.Builder
	b.Grow(len(norm))
	for _, r := range norm {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return stringutil.CollapseWhitespace(b.String())
}
