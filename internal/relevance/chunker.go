package relevance

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/admibot/admibot-go/internal/stringutil"
)

// DefaultBudget is the excerpt budget when the caller passes none.
const DefaultBudget = 4000

// chunkSeparator joins selected segments so the generation model can see
// where material was elided.
const chunkSeparator = "\n\n---\n\n"

// ScoredChunk is one selected segment of the source document.
type ScoredChunk struct {
	Text            string
	Score           int
	MatchedKeywords []string
}

// Excerpt is the chunker's result: the selected chunks concatenated in
// source order, the matched keywords in expansion order, and how many
// chunks were used.
type Excerpt struct {
	Text       string
	Keywords   []string
	ChunkCount int
	Chunks     []ScoredChunk
}

// IsEmpty reports whether nothing relevant was found at all.
func (e *Excerpt) IsEmpty() bool {
	return e == nil || e.Text == ""
}

// Config tunes the chunker.
type Config struct {
	// Scoring holds the weight table, zero value selects the defaults.
	Scoring ScoringConfig

	// DefaultBudget replaces non-positive budgets, zero selects the
	// package default.
	DefaultBudget int
}

// Chunker extracts relevant excerpts. Stateless and safe for concurrent
// use.
type Chunker struct {
	cfg Config
}

// NewChunker builds a Chunker.
func NewChunker(cfg Config) *Chunker {
	if cfg.Scoring == (ScoringConfig{}) {
		cfg.Scoring = DefaultScoringConfig()
	}
	if cfg.DefaultBudget <= 0 {
		cfg.DefaultBudget = DefaultBudget
	}
	return &Chunker{cfg: cfg}
}

// Extract selects the most relevant parts of document for query under a
// budget of characters. A document that already fits is returned verbatim.
// When no segment scores above zero the leading part of the document is
// returned instead, with no keywords reported, so the caller always gets
// something to ground on.
func (c *Chunker) Extract(document, query string, budget int) *Excerpt {
	doc := strings.TrimSpace(document)
	if doc == "" {
		return &Excerpt{}
	}
	if budget <= 0 {
		budget = c.cfg.DefaultBudget
	}

	if utf8.RuneCountInString(doc) <= budget {
		return &Excerpt{
			Text:       doc,
			ChunkCount: 1,
			Chunks:     []ScoredChunk{{Text: doc}},
		}
	}

	keywords := QueryKeywords(query)
	if len(keywords) == 0 {
		return c.leadingFallback(doc, budget)
	}

	segments := segmentDocument(doc)
	if len(segments) == 0 {
		return c.leadingFallback(doc, budget)
	}

	type scored struct {
		segment
		score   int
		matched []string
	}
	ranked := make([]scored, 0, len(segments))
	for _, seg := range segments {
		score, matched := c.cfg.Scoring.Score(seg.text, keywords)
		ranked = append(ranked, scored{segment: seg, score: score, matched: matched})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].start < ranked[j].start
	})

	// Budget walk. The first admitted segment may be truncated into the
	// budget even when it alone exceeds it, so one substantive excerpt
	// beats many fragments; everything after must fit whole.
	sepLen := utf8.RuneCountInString(chunkSeparator)
	var selected []scored
	used := 0
	for _, s := range ranked {
		if s.score <= 0 {
			break
		}
		segLen := utf8.RuneCountInString(s.text)
		if len(selected) == 0 {
			if segLen > budget {
				if s.score < c.cfg.Scoring.MinOversizeScore {
					continue
				}
				s.text = stringutil.Truncate(s.text, budget)
				segLen = utf8.RuneCountInString(s.text)
			}
			selected = append(selected, s)
			used = segLen
			continue
		}
		if used+sepLen+segLen > budget {
			break
		}
		selected = append(selected, s)
		used += sepLen + segLen
	}

	if len(selected) == 0 {
		return c.leadingFallback(doc, budget)
	}

	// Back to source order so the excerpt reads coherently even though
	// selection was score-driven.
	sort.Slice(selected, func(i, j int) bool { return selected[i].start < selected[j].start })

	parts := make([]string, 0, len(selected))
	chunks := make([]ScoredChunk, 0, len(selected))
	matchedSet := map[string]bool{}
	for _, s := range selected {
		parts = append(parts, s.text)
		chunks = append(chunks, ScoredChunk{Text: s.text, Score: s.score, MatchedKeywords: s.matched})
		for _, kw := range s.matched {
			matchedSet[kw] = true
		}
	}
	var union []string
	for _, kw := range keywords {
		if matchedSet[kw] {
			union = append(union, kw)
		}
	}

	return &Excerpt{
		Text:       strings.Join(parts, chunkSeparator),
		Keywords:   union,
		ChunkCount: len(selected),
		Chunks:     chunks,
	}
}

// leadingFallback returns the document's opening under the budget.
func (c *Chunker) leadingFallback(doc string, budget int) *Excerpt {
	text := stringutil.Truncate(doc, budget)
	return &Excerpt{
		Text:       text,
		ChunkCount: 1,
		Chunks:     []ScoredChunk{{Text: text}},
	}
}
