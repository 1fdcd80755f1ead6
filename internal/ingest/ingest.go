// Package ingest keeps the admissions document cache current. It downloads
// each configured source, extracts its text and persists it for retrieval:
// HTML pages are reduced to readable text with goquery, PDFs go through a
// TextExtractor, normally an OCR call to Gemini. Unchanged documents are
// detected by content hash and skipped, so a run against fresh sources is
// close to free.
package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/admibot/admibot-go/internal/data"
	"github.com/admibot/admibot-go/internal/docindex"
	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/metrics"
	"github.com/admibot/admibot-go/internal/storage"
)

// Content types a source can declare.
const (
	ContentTypePDF  = "pdf"
	ContentTypeHTML = "html"
)

// Ingest outcome labels recorded per document.
const (
	statusSuccess   = "success"
	statusUnchanged = "unchanged"
	statusError     = "error"
)

// Source describes one document to ingest. Key is the object storage key of
// the original; the extracted text is archived under Key + ".txt" and stored
// in the document cache under Key.
type Source struct {
	Key         string
	URL         string
	Title       string
	Program     string
	ContentType string
}

// Sources returns the built-in source table with object keys under prefix.
func Sources(prefix string) []Source {
	sources := make([]Source, 0, len(data.AllSources))
	for _, s := range data.AllSources {
		sources = append(sources, Source{
			Key:         prefix + s.Slug,
			URL:         s.URL,
			Title:       s.Title,
			Program:     s.Program,
			ContentType: s.ContentType,
		})
	}
	return sources
}

// objectStore is the slice of the object client the pipeline uses to archive
// originals and extracted text. A nil store turns archiving off, which is
// the case when object storage is not configured.
type objectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Report summarizes one ingest run.
type Report struct {
	Ingested  int
	Unchanged int
	Failed    int
}

// Pipeline ingests source documents end to end: fetch, change detection,
// text extraction, archival and index rebuild.
type Pipeline struct {
	fetcher   *Fetcher
	extractor TextExtractor
	documents storage.DocumentRepository
	index     *docindex.Index
	objects   objectStore
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// New creates an ingest pipeline. extractor may be nil, in which case PDF
// sources fail with an error and only HTML sources ingest. index and objects
// may be nil to skip index rebuilds and archival respectively.
func New(fetcher *Fetcher, extractor TextExtractor, documents storage.DocumentRepository, index *docindex.Index, objects objectStore, m *metrics.Metrics, log *logger.Logger) (*Pipeline, error) {
	if fetcher == nil {
		return nil, errors.New("ingest: fetcher is required")
	}
	if documents == nil {
		return nil, errors.New("ingest: document repository is required")
	}
	if m == nil {
		return nil, errors.New("ingest: metrics is required")
	}
	if log == nil {
		log = logger.New("info")
	}

	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		documents: documents,
		index:     index,
		objects:   objects,
		metrics:   m,
		logger:    log.WithModule("ingest"),
	}, nil
}

// Run ingests every source in order and rebuilds the document index when
// anything changed. Individual source failures are logged and counted, not
// fatal: one unreachable page must not block the rest of the cycle. Run
// returns an error only when the context ends or the index rebuild fails.
func (p *Pipeline) Run(ctx context.Context, sources []Source) (*Report, error) {
	report := &Report{}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		switch p.ingestOne(ctx, src) {
		case statusSuccess:
			report.Ingested++
		case statusUnchanged:
			report.Unchanged++
		default:
			report.Failed++
		}
	}

	if report.Ingested > 0 {
		if err := p.RebuildIndex(ctx); err != nil {
			return report, err
		}
	}

	p.logger.Info("Ingest run completed",
		"sources", len(sources),
		"ingested", report.Ingested,
		"unchanged", report.Unchanged,
		"failed", report.Failed)
	return report, nil
}

// ingestOne processes a single source and records its outcome.
func (p *Pipeline) ingestOne(ctx context.Context, src Source) string {
	start := time.Now()
	status, err := p.process(ctx, src)
	p.metrics.RecordIngest(src.ContentType, status, time.Since(start).Seconds())
	if err != nil {
		p.logger.Error("Document ingest failed", "key", src.Key, "url", src.URL, "error", err)
	}
	return status
}

func (p *Pipeline) process(ctx context.Context, src Source) (string, error) {
	raw, err := p.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return statusError, fmt.Errorf("failed to fetch source: %w", err)
	}

	hash := contentHash(raw)
	prev, err := p.documents.GetDocumentHash(ctx, src.Key)
	if err != nil {
		return statusError, fmt.Errorf("failed to load stored hash: %w", err)
	}
	if prev == hash {
		p.logger.Debug("Document unchanged, skipping", "key", src.Key)
		return statusUnchanged, nil
	}

	text, err := p.extract(ctx, src, raw)
	if err != nil {
		return statusError, err
	}
	if text == "" {
		return statusError, fmt.Errorf("document %s produced no text", src.Key)
	}

	if err := p.archive(ctx, src, raw, text); err != nil {
		return statusError, err
	}

	doc := &storage.Document{
		Key:         src.Key,
		Program:     src.Program,
		Title:       src.Title,
		SourceURL:   src.URL,
		ContentType: src.ContentType,
		Text:        text,
		ContentHash: hash,
	}
	if err := p.documents.SaveDocument(ctx, doc); err != nil {
		return statusError, fmt.Errorf("failed to save document: %w", err)
	}

	p.logger.Info("Document ingested",
		"key", src.Key,
		"content_type", src.ContentType,
		"chars", len(text))
	return statusSuccess, nil
}

// extract turns raw source bytes into clean text.
func (p *Pipeline) extract(ctx context.Context, src Source, raw []byte) (string, error) {
	switch src.ContentType {
	case ContentTypeHTML:
		text, err := ReduceHTML(raw)
		if err != nil {
			return "", fmt.Errorf("failed to reduce HTML: %w", err)
		}
		return text, nil
	case ContentTypePDF:
		if p.extractor == nil {
			return "", fmt.Errorf("no text extractor configured for %s", src.Key)
		}
		text, err := p.extractor.ExtractText(ctx, raw, "application/pdf")
		if err != nil {
			return "", fmt.Errorf("failed to extract text: %w", err)
		}
		return cleanText(text), nil
	default:
		return "", fmt.Errorf("unknown content type %q", src.ContentType)
	}
}

// archive stores the original bytes and the extracted text in object storage
// so a reviewer can audit what a cited answer was grounded on.
func (p *Pipeline) archive(ctx context.Context, src Source, raw []byte, text string) error {
	if p.objects == nil {
		return nil
	}
	if _, err := p.objects.Upload(ctx, src.Key, bytes.NewReader(raw), mimeFor(src.ContentType)); err != nil {
		return fmt.Errorf("failed to archive original: %w", err)
	}
	if _, err := p.objects.Upload(ctx, src.Key+".txt", strings.NewReader(text), "text/plain; charset=utf-8"); err != nil {
		return fmt.Errorf("failed to archive extracted text: %w", err)
	}
	return nil
}

// RebuildIndex reindexes every stored document. Run calls it after a cycle
// that changed anything; it is safe to call against an empty store.
func (p *Pipeline) RebuildIndex(ctx context.Context) error {
	if p.index == nil {
		return nil
	}
	docs, err := p.documents.GetAllDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load documents for indexing: %w", err)
	}
	ptrs := make([]*storage.Document, len(docs))
	for i := range docs {
		ptrs[i] = &docs[i]
	}
	if err := p.index.Initialize(ptrs); err != nil {
		return fmt.Errorf("failed to rebuild document index: %w", err)
	}
	p.logger.Info("Document index rebuilt", "documents", len(docs))
	return nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func mimeFor(contentType string) string {
	if contentType == ContentTypePDF {
		return "application/pdf"
	}
	return "text/html; charset=utf-8"
}
