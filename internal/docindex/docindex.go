// Package docindex provides BM25 retrieval over ingested institutional
// documents (admission guides, program descriptions). It selects the
// best source document for a turn; excerpting the document itself is
// left to the relevance chunker.
package docindex

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	bm25 "github.com/iwilltry42/bm25-go/bm25"

	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/storage"
	"github.com/admibot/admibot-go/internal/textnorm"
)

const (
	// Standard BM25 Okapi parameters
	bm25K1 = 1.5
	bm25B  = 0.75

	// maxChunkChars bounds indexed chunk size so BM25 length
	// normalization stays meaningful across documents of very
	// different lengths
	maxChunkChars = 1200
)

// Result represents one ranked document.
// Confidence is derived from rank position, not from the raw score:
// BM25 scores are unbounded and query-dependent.
type Result struct {
	Key        string  // Document key in storage
	Title      string  // Document title
	Program    string  // Associated program ID, may be empty
	Score      float64 // BM25 score for single-field results, RRF score when fused
	Rank       int     // Rank position (1-indexed)
	Confidence float32 // Rank-based confidence (0-1), higher = more relevant
}

// Index provides keyword search over ingested documents. Document
// bodies and titles are indexed separately and fused with RRF, so
// short title-like queries and content queries both rank well.
type Index struct {
	bodyOkapi   *bm25.BM25Okapi
	titleOkapi  *bm25.BM25Okapi
	bodyCorpus  []string
	chunkToKey  map[int]string // body corpus position -> document key
	titleKeys   []string       // title corpus position -> document key
	metadata    map[string]docMeta
	logger      *logger.Logger
	mu          sync.RWMutex
	initialized bool
}

// docMeta stores per-document metadata for results
type docMeta struct {
	Title   string
	Program string
}

// New creates an empty document index
func New(log *logger.Logger) *Index {
	return &Index{
		chunkToKey: make(map[int]string),
		metadata:   make(map[string]docMeta),
		logger:     log,
	}
}

// Initialize builds the index from the full document set. BM25 needs
// the whole corpus for IDF, so updates are full rebuilds; callers pass
// everything currently in storage.
func (idx *Index) Initialize(docs []*storage.Document) error {
	if idx == nil {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.bodyOkapi = nil
	idx.titleOkapi = nil
	idx.bodyCorpus = nil
	idx.titleKeys = nil
	idx.chunkToKey = make(map[int]string)
	idx.metadata = make(map[string]docMeta)

	if len(docs) == 0 {
		idx.initialized = true
		return nil
	}

	var bodyCorpus []string
	var titleCorpus []string
	var titleKeys []string

	chunkIndex := 0
	for _, doc := range docs {
		if doc == nil || doc.Key == "" {
			continue
		}
		idx.metadata[doc.Key] = docMeta{
			Title:   doc.Title,
			Program: doc.Program,
		}

		for _, chunk := range chunkDocument(doc) {
			bodyCorpus = append(bodyCorpus, chunk)
			idx.chunkToKey[chunkIndex] = doc.Key
			chunkIndex++
		}

		if title := strings.TrimSpace(doc.Title + " " + doc.Program); title != "" {
			titleCorpus = append(titleCorpus, title)
			titleKeys = append(titleKeys, doc.Key)
		}
	}

	if len(bodyCorpus) > 0 {
		okapi, err := bm25.NewBM25Okapi(bodyCorpus, tokenizeSpanish, bm25K1, bm25B, nil)
		if err != nil {
			return fmt.Errorf("failed to build body index: %w", err)
		}
		idx.bodyOkapi = okapi
		idx.bodyCorpus = bodyCorpus
	}

	if len(titleCorpus) > 0 {
		okapi, err := bm25.NewBM25Okapi(titleCorpus, tokenizeSpanish, bm25K1, bm25B, nil)
		if err != nil {
			return fmt.Errorf("failed to build title index: %w", err)
		}
		idx.titleOkapi = okapi
		idx.titleKeys = titleKeys
	}

	idx.initialized = true
	idx.logger.WithFields(map[string]any{
		"documents": len(idx.metadata),
		"chunks":    len(idx.bodyCorpus),
	}).Info("BM25 document index initialized")
	return nil
}

// Search ranks documents for a query. Body and title rankings run in
// parallel and are fused with RRF; if only one field produced matches,
// that ranking is returned alone.
func (idx *Index) Search(query string, topN int) ([]Result, error) {
	if idx == nil {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.initialized {
		return nil, nil
	}

	tokens := tokenizeSpanish(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	var (
		bodyResults  []Result
		titleResults []Result
		bodyErr      error
		titleErr     error
		wg           sync.WaitGroup
	)

	if idx.bodyOkapi != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bodyResults, bodyErr = idx.searchBody(tokens)
		}()
	}

	if idx.titleOkapi != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			titleResults, titleErr = idx.searchTitles(tokens)
		}()
	}

	wg.Wait()

	// Continue with whatever field produced results
	if bodyErr != nil {
		idx.logger.WithError(bodyErr).Warn("Body scoring failed")
	}
	if titleErr != nil {
		idx.logger.WithError(titleErr).Warn("Title scoring failed")
	}

	if len(bodyResults) == 0 {
		return capResults(titleResults, topN), nil
	}
	if len(titleResults) == 0 {
		return capResults(bodyResults, topN), nil
	}

	return FuseRRF(bodyResults, titleResults, DefaultBodyWeight, topN), nil
}

// BestMatch returns the top-ranked document for a query, or false when
// nothing matched
func (idx *Index) BestMatch(query string) (*Result, bool) {
	results, err := idx.Search(query, 1)
	if err != nil || len(results) == 0 {
		return nil, false
	}
	return &results[0], true
}

// searchBody scores body chunks and deduplicates to one result per
// document, keeping the best chunk score. Caller holds the read lock.
func (idx *Index) searchBody(tokens []string) ([]Result, error) {
	scores, err := idx.bodyOkapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring failed: %w", err)
	}

	keyBest := make(map[string]float64)
	for chunkID, score := range scores {
		if score <= 0 {
			continue
		}
		key := idx.chunkToKey[chunkID]
		if key == "" {
			continue
		}
		if score > keyBest[key] {
			keyBest[key] = score
		}
	}

	return idx.rankedResults(keyBest), nil
}

// searchTitles scores the title corpus. Caller holds the read lock.
func (idx *Index) searchTitles(tokens []string) ([]Result, error) {
	scores, err := idx.titleOkapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring failed: %w", err)
	}

	keyBest := make(map[string]float64)
	for docID, score := range scores {
		if score <= 0 {
			continue
		}
		keyBest[idx.titleKeys[docID]] = score
	}

	return idx.rankedResults(keyBest), nil
}

// rankedResults converts per-document scores into results sorted by
// score descending with ranks and confidences assigned
func (idx *Index) rankedResults(keyBest map[string]float64) []Result {
	results := make([]Result, 0, len(keyBest))
	for key, score := range keyBest {
		meta := idx.metadata[key]
		results = append(results, Result{
			Key:     key,
			Title:   meta.Title,
			Program: meta.Program,
			Score:   score,
		})
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

	return results
}

// IsEnabled returns true if the index is initialized and has content
func (idx *Index) IsEnabled() bool {
	if idx == nil {
		return false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.initialized && (idx.bodyOkapi != nil || idx.titleOkapi != nil)
}

// Count returns the number of indexed body chunks
func (idx *Index) Count() int {
	if idx == nil {
		return 0
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.bodyCorpus)
}

// computeRankConfidence calculates confidence from rank position.
//
// Formula: 1 / (1 + 0.05 * rank)
//   - rank 1 → 0.95
//   - rank 5 → 0.80
//   - rank 10 → 0.67
func computeRankConfidence(rank int) float32 {
	if rank <= 0 {
		return 0
	}
	return float32(1.0 / (1.0 + 0.05*float64(rank)))
}

func capResults(results []Result, topN int) []Result {
	if topN > 0 && len(results) > topN {
		return results[:topN]
	}
	return results
}

// chunkDocument splits a document body into indexable chunks. Whole
// paragraphs are grouped up to maxChunkChars; oversized paragraphs are
// hard-split. Each chunk carries the document title as context prefix
// so title terms also score against body chunks.
func chunkDocument(doc *storage.Document) []string {
	text := strings.ReplaceAll(doc.Text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	prefix := ""
	if strings.TrimSpace(doc.Title) != "" {
		prefix = "«" + doc.Title + "»\n"
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, prefix+current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		paraLen := utf8.RuneCountInString(para)
		if paraLen > maxChunkChars {
			flush()
			for _, piece := range splitRunes(para, maxChunkChars) {
				chunks = append(chunks, prefix+piece)
			}
			continue
		}

		if currentLen > 0 && currentLen+2+paraLen > maxChunkChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(para)
		currentLen += paraLen
	}
	flush()

	return chunks
}

func splitRunes(s string, size int) []string {
	runes := []rune(s)
	var parts []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

// tokenizeSpanish tokenizes Spanish text for BM25.
// Strategy:
//  1. Normalize: lowercase and strip diacritics, so "admisión" and
//     "ADMISION" produce the same token
//  2. Split on anything that is not a letter or digit
//  3. Drop single-letter tokens (conjunctions like "y", "o", "a"
//     carry no signal); single digits are kept for semester numbers
func tokenizeSpanish(text string) []string {
	text = textnorm.Normalize(text)

	var tokens []string
	var current []rune
	hasLetter := false

	flush := func() {
		if len(current) == 0 {
			return
		}
		if len(current) >= 2 || !hasLetter {
			tokens = append(tokens, string(current))
		}
		current = current[:0]
		hasLetter = false
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current = append(current, r)
			if unicode.IsLetter(r) {
				hasLetter = true
			}
		} else {
			flush()
		}
	}
	flush()

	return tokens
}
