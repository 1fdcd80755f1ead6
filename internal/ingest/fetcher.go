package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/corpix/uarand"

	"github.com/admibot/admibot-go/internal/academic"
)

// maxDocumentBytes caps the size of a fetched source. It matches the inline
// request ceiling of the OCR provider, so anything larger could not be
// extracted anyway.
const maxDocumentBytes = 20 << 20

// Fetcher downloads source documents over HTTP. The university site runs
// behind an aggressive WAF, so requests rotate the User-Agent and back off
// on 429 and 5xx responses.
type Fetcher struct {
	httpClient   *http.Client
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewFetcher creates a fetcher with the given per-request timeout and retry
// budget.
func NewFetcher(timeout time.Duration, maxRetries int) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Fetcher{
		httpClient:   &http.Client{Timeout: timeout},
		maxRetries:   maxRetries,
		initialDelay: 1 * time.Second,
		maxDelay:     30 * time.Second,
	}
}

// Fetch downloads one document and returns its raw bytes. 429 and 5xx
// responses are retried with exponential backoff; other non-2xx responses
// fail at once.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte

	err := academic.RetryWithBackoff(ctx, f.maxRetries, f.initialDelay, f.maxDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return academic.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", uarand.GetRandom())
		req.Header.Set("Accept", "*/*")
		req.Header.Set("Accept-Language", "es-CO,es;q=0.9")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			// fall through to the body read
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
		default:
			return academic.Permanent(fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode))
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}
		if len(data) > maxDocumentBytes {
			return academic.Permanent(fmt.Errorf("fetch %s: document exceeds %d bytes", rawURL, maxDocumentBytes))
		}

		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
