package academic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/corpix/uarand"

	domerrors "github.com/admibot/admibot-go/internal/errors"
	"github.com/admibot/admibot-go/internal/ratelimit"
	"github.com/admibot/admibot-go/internal/storage"
	"github.com/admibot/admibot-go/internal/textnorm"
)

// Academic API paths
const (
	facultiesPath  = "/api/v1/facultades"
	programsPath   = "/api/v1/programas"
	curriculumPath = "/api/v1/pensum"
)

// Default client tuning
const (
	DefaultTimeout           = 15 * time.Second
	DefaultMaxRetries        = 3
	DefaultInitialRetryDelay = 1 * time.Second
	DefaultMaxRetryDelay     = 30 * time.Second
)

// ClientConfig configures the upstream API client.
type ClientConfig struct {
	// BaseURLs lists API endpoints in preference order; the client fails
	// over to the next one when a request cannot reach the current.
	BaseURLs []string

	Timeout           time.Duration
	MaxRetries        int
	InitialRetryDelay time.Duration
	MaxRetryDelay     time.Duration

	// RequestsPerMinute bounds the request rate against the upstream.
	RequestsPerMinute float64
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.InitialRetryDelay <= 0 {
		c.InitialRetryDelay = DefaultInitialRetryDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = DefaultMaxRetryDelay
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = 120
	}
	return c
}

// Client is the JSON client for the university's academic-information API
// with rate limiting, retry and base-URL failover.
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
	cfg         ClientConfig

	mu        sync.RWMutex
	activeURL int
}

var _ Provider = (*Client)(nil)

// NewClient creates an API client from the given configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg = cfg.withDefaults()
	if len(cfg.BaseURLs) == 0 {
		return nil, errors.New("academic: at least one base URL is required")
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter: ratelimit.NewPerMinute(cfg.RequestsPerMinute),
		cfg:         cfg,
	}, nil
}

// Upstream JSON shapes. The API speaks Spanish field names.
type facultyDTO struct {
	Code        string `json:"codigo"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Website     string `json:"sitio_web"`
}

type programDTO struct {
	Code        string   `json:"codigo"`
	Name        string   `json:"nombre"`
	Faculty     string   `json:"facultad"`
	Degree      string   `json:"titulo"`
	Semesters   int      `json:"semestres"`
	Credits     int      `json:"creditos"`
	Tracks      []string `json:"jornadas"`
	Description string   `json:"descripcion"`
}

type courseDTO struct {
	Program  string `json:"programa"`
	Semester int    `json:"semestre"`
	Name     string `json:"nombre"`
	Credits  int    `json:"creditos"`
	Track    string `json:"jornada"`
}

// ListFaculties fetches faculties, optionally narrowed by a name fragment.
func (c *Client) ListFaculties(ctx context.Context, f Filter) ([]storage.Faculty, error) {
	query := url.Values{}
	if f.Name != "" {
		query.Set("nombre", f.Name)
	}

	var dtos []facultyDTO
	if err := c.getJSON(ctx, facultiesPath, query, &dtos); err != nil {
		return nil, err
	}

	faculties := make([]storage.Faculty, 0, len(dtos))
	for _, dto := range dtos {
		faculties = append(faculties, storage.Faculty{
			ID:          CanonicalFacultyID(dto.Name),
			Name:        dto.Name,
			Description: dto.Description,
			Website:     dto.Website,
		})
	}
	return capResults(faculties, f.Limit), nil
}

// ListPrograms fetches programs, optionally narrowed by name fragment and
// faculty.
func (c *Client) ListPrograms(ctx context.Context, f Filter) ([]storage.Program, error) {
	query := url.Values{}
	if f.Name != "" {
		query.Set("nombre", f.Name)
	}
	if f.Faculty != "" {
		query.Set("facultad", f.Faculty)
	}

	var dtos []programDTO
	if err := c.getJSON(ctx, programsPath, query, &dtos); err != nil {
		return nil, err
	}

	programs := make([]storage.Program, 0, len(dtos))
	for _, dto := range dtos {
		programs = append(programs, storage.Program{
			ID:          textnorm.Normalize(dto.Name),
			Name:        dto.Name,
			Faculty:     CanonicalFacultyID(dto.Faculty),
			Degree:      dto.Degree,
			Semesters:   dto.Semesters,
			Credits:     dto.Credits,
			Tracks:      dto.Tracks,
			Description: dto.Description,
		})
	}
	return capResults(programs, f.Limit), nil
}

// ListCurriculum fetches curriculum rows for the filter's program, semester,
// course fragment and track.
func (c *Client) ListCurriculum(ctx context.Context, f Filter) ([]storage.CourseEntry, error) {
	query := url.Values{}
	if f.Program != "" {
		query.Set("programa", f.Program)
	}
	if f.Semester > 0 {
		query.Set("semestre", strconv.Itoa(f.Semester))
	}
	if f.Course != "" {
		query.Set("materia", f.Course)
	}
	if f.Track != "" {
		query.Set("jornada", f.Track)
	}

	var dtos []courseDTO
	if err := c.getJSON(ctx, curriculumPath, query, &dtos); err != nil {
		return nil, err
	}

	entries := make([]storage.CourseEntry, 0, len(dtos))
	for _, dto := range dtos {
		programID := textnorm.Normalize(dto.Program)
		entries = append(entries, storage.CourseEntry{
			UID:      courseUID(programID, dto.Semester, dto.Name, dto.Track),
			Program:  programID,
			Semester: dto.Semester,
			Name:     dto.Name,
			Credits:  dto.Credits,
			Track:    textnorm.Normalize(dto.Track),
		})
	}
	return capResults(entries, f.Limit), nil
}

// getJSON performs a GET with rate limiting, retry with backoff and
// base-URL failover, decoding the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	err := RetryWithBackoff(ctx, c.cfg.MaxRetries, c.cfg.InitialRetryDelay, c.cfg.MaxRetryDelay, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return &permanentError{err: err}
		}

		reqURL := c.currentBaseURL() + path
		if len(query) > 0 {
			reqURL += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return &permanentError{err: fmt.Errorf("failed to create request: %w", err)}
		}

		req.Header.Set("User-Agent", uarand.GetRandom())
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Language", "es-CO,es;q=0.9")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isNetworkError(err) {
				c.failover()
			}
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			switch resp.StatusCode {
			case http.StatusTooManyRequests: // Rate limited, retry with backoff
				return domerrors.NewProviderError(path, resp.StatusCode, errors.New("rate limited"))
			case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
				c.failover()
				return domerrors.NewProviderError(path, resp.StatusCode, errors.New("server error"))
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return &permanentError{err: domerrors.NewProviderError(path, resp.StatusCode, errors.New("client error"))}
			default:
				return domerrors.NewProviderError(path, resp.StatusCode, errors.New("unexpected status"))
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
	if err == nil {
		return nil
	}

	// Final failures surface as typed provider errors unless they already
	// are, or the caller's context ended.
	var perr *domerrors.ProviderError
	if errors.As(err, &perr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domerrors.NewProviderError(path, 0, err)
}

// currentBaseURL returns the base URL requests currently target.
func (c *Client) currentBaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.TrimRight(c.cfg.BaseURLs[c.activeURL], "/")
}

// failover advances to the next configured base URL. With a single URL it
// is a no-op.
func (c *Client) failover() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cfg.BaseURLs) > 1 {
		c.activeURL = (c.activeURL + 1) % len(c.cfg.BaseURLs)
	}
}

// isNetworkError reports whether err is a transport-level failure worth
// switching base URLs for, as opposed to an HTTP status or decode error.
func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// CanonicalFacultyID converts an API faculty display name into the
// canonical key used across extraction and storage: normalized, with the
// "facultad de" prefix removed. "Facultad de Ciencias de la Salud" and
// "ciencias de la salud" map to the same key.
func CanonicalFacultyID(name string) string {
	id := textnorm.Normalize(name)
	id = strings.TrimPrefix(id, "facultad de ")
	return strings.TrimSpace(id)
}

func courseUID(programID string, semester int, name, track string) string {
	return fmt.Sprintf("%s|%d|%s|%s", programID, semester, textnorm.Normalize(name), textnorm.Normalize(track))
}
