// Package engine runs the turn pipeline: entity extraction, session
// enrichment, query planning, catalog and document retrieval, context
// assembly and answer generation. The engine is transport-agnostic; the
// HTTP layer calls ProcessTurn and maps the typed errors it returns onto
// status codes and user-facing messages.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/admibot/admibot-go/internal/academic"
	"github.com/admibot/admibot-go/internal/assembler"
	"github.com/admibot/admibot-go/internal/config"
	"github.com/admibot/admibot-go/internal/ctxutil"
	"github.com/admibot/admibot-go/internal/docindex"
	domerrors "github.com/admibot/admibot-go/internal/errors"
	"github.com/admibot/admibot-go/internal/genai"
	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/metrics"
	"github.com/admibot/admibot-go/internal/nlu"
	"github.com/admibot/admibot-go/internal/planner"
	"github.com/admibot/admibot-go/internal/ratelimit"
	"github.com/admibot/admibot-go/internal/relevance"
	"github.com/admibot/admibot-go/internal/session"
	"github.com/admibot/admibot-go/internal/storage"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultHistoryLimit is the transcript page size when the caller
	// does not ask for one.
	DefaultHistoryLimit = 20

	// MaxHistoryLimit caps one transcript read.
	MaxHistoryLimit = 100

	// transcriptSaveTimeout bounds the detached transcript write.
	transcriptSaveTimeout = 5 * time.Second
)

// Engine orchestrates one conversational turn. All collaborators are
// injected; the engine owns sequencing, degradation, and the canned
// replies sent when a stage resolves nothing.
type Engine struct {
	extractor   *nlu.Extractor
	sessions    session.Store
	planner     *planner.Planner
	catalog     academic.Provider
	index       *docindex.Index
	chunker     *relevance.Chunker
	assembler   *assembler.Assembler
	responder   genai.Responder
	llmLimiter  *ratelimit.KeyedLimiter
	transcripts storage.ChatRepository
	documents   storage.DocumentRepository
	logger      *logger.Logger
	metrics     *metrics.Metrics

	// Configuration
	turnTimeout   time.Duration
	minUtterance  int
	maxUtterance  int
	excerptBudget int
	historyTurns  int
}

// Config holds everything needed to build an Engine.
type Config struct {
	Extractor    *nlu.Extractor
	Sessions     session.Store
	Planner      *planner.Planner
	Catalog      academic.Provider
	Index        *docindex.Index // optional, nil disables document grounding
	Chunker      *relevance.Chunker
	Assembler    *assembler.Assembler
	Responder    genai.Responder         // optional, nil selects data-only replies
	LLMLimiter   *ratelimit.KeyedLimiter // optional, nil means unlimited generation
	Transcripts  storage.ChatRepository
	Documents    storage.DocumentRepository
	Logger       *logger.Logger
	Metrics      *metrics.Metrics
	EngineConfig *config.EngineConfig
}

// New creates a turn engine. Nil logger, metrics, engine config, chunker,
// and assembler select defaults; nil index and responder disable document
// grounding and generated answers.
func New(cfg Config) *Engine {
	ec := cfg.EngineConfig
	if ec == nil {
		ec = config.DefaultEngineConfig()
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logger.New("info")
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	chunker := cfg.Chunker
	if chunker == nil {
		chunker = relevance.NewChunker(relevance.Config{DefaultBudget: ec.ExcerptBudget})
	}
	asm := cfg.Assembler
	if asm == nil {
		asm = assembler.New(assembler.Config{
			MaxContextChars:  ec.MaxContextChars,
			FactsPerCategory: ec.FactsPerCategory,
			HistoryTurns:     ec.HistoryTurns,
			TurnMaxChars:     ec.TurnMaxChars,
		})
	}
	return &Engine{
		extractor:   cfg.Extractor,
		sessions:    cfg.Sessions,
		planner:     cfg.Planner,
		catalog:     cfg.Catalog,
		index:       cfg.Index,
		chunker:     chunker,
		assembler:   asm,
		responder:   cfg.Responder,
		llmLimiter:  cfg.LLMLimiter,
		transcripts: cfg.Transcripts,
		documents:   cfg.Documents,
		logger:      lg,
		metrics:     m,

		turnTimeout:   ec.TurnTimeout,
		minUtterance:  ec.MinUtteranceChars,
		maxUtterance:  ec.MaxUtteranceChars,
		excerptBudget: ec.ExcerptBudget,
		historyTurns:  ec.HistoryTurns,
	}
}

// TurnResult is everything one processed turn produced. The HTTP layer
// serializes a subset; the rest is there for logging and tests.
type TurnResult struct {
	SessionID string
	TurnID    string
	Reply     string

	Entities    *nlu.ExtractedEntities
	Plan        *planner.QueryPlan
	Context     *assembler.AssembledContext
	DocumentKey string // key of the document the excerpt came from, if any

	Generated bool // reply came from the LLM responder
	Duration  time.Duration
}

// ProcessTurn handles one utterance end to end. Greetings and farewells
// short-circuit to canned replies; everything else goes through planning,
// retrieval, assembly, and generation. Collaborator failures degrade the
// turn where a degraded answer is still meaningful; a typed error comes
// back only when the turn produced nothing usable.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, utterance string) (*TurnResult, error) {
	start := time.Now()

	if strings.TrimSpace(sessionID) == "" {
		e.metrics.RecordTurn("invalid_input", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: empty session id", domerrors.ErrInvalidInput)
	}
	utterance = strings.TrimSpace(utterance)
	if n := utf8.RuneCountInString(utterance); n < e.minUtterance || n > e.maxUtterance {
		e.metrics.RecordTurn("invalid_input", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: utterance length %d outside %d-%d", domerrors.ErrInvalidInput, n, e.minUtterance, e.maxUtterance)
	}

	turnID := uuid.NewString()
	ctx = ctxutil.WithSessionID(ctx, sessionID)
	ctx = ctxutil.WithTurnID(ctx, turnID)

	// The whole turn runs under one deadline. The context stays chained to
	// the request, so a disconnecting client cancels the turn.
	processCtx, cancel := context.WithTimeout(ctx, e.turnTimeout)
	defer cancel()

	entities := e.extractor.Extract(processCtx, utterance)
	for _, intent := range entities.Intents {
		e.metrics.RecordIntent(string(intent))
	}

	// Greetings and farewells never reach the planner; a farewell also
	// closes the session's memory.
	if entities.HasIntent(nlu.IntentGreeting) {
		return e.cannedTurn(processCtx, start, sessionID, turnID, utterance, config.GreetingMessage, entities)
	}
	if entities.HasIntent(nlu.IntentFarewell) {
		e.sessions.Delete(sessionID)
		return e.cannedTurn(processCtx, start, sessionID, turnID, utterance, config.FarewellMessage, entities)
	}

	sc, _ := e.sessions.Get(sessionID)
	enriched := session.Enrich(entities, sc)

	plan := e.planner.Plan(processCtx, enriched)

	data, dataErr := e.executePlan(processCtx, plan)
	if err := processCtx.Err(); err != nil {
		e.metrics.RecordTurn("error", time.Since(start).Seconds())
		return nil, turnContextError(err)
	}

	excerpt, docKey := e.documentExcerpt(processCtx, utterance)

	// A catalog outage with no document to fall back on is the one case
	// the engine cannot degrade out of.
	if dataErr != nil && data.isEmpty() && excerpt.IsEmpty() {
		e.metrics.RecordTurn("provider_error", time.Since(start).Seconds())
		return nil, dataErr
	}

	history, err := e.transcripts.GetHistory(processCtx, sessionID, e.historyTurns)
	if err != nil {
		e.logger.WithError(err).Warn("Chat history unavailable for this turn")
	}

	assembled := e.assembler.Assemble(assembler.Input{
		Faculties: data.faculties,
		Programs:  data.programs,
		Courses:   data.courses,
		Excerpt:   excerpt,
		History:   history,
	})

	reply := ""
	generated := false
	if data.isEmpty() && excerpt.IsEmpty() {
		reply = emptyReply(enriched)
	} else if e.responder != nil && e.responder.IsEnabled() && e.allowGeneration(sessionID) {
		req := &genai.ResponseRequest{
			Utterance: utterance,
			Context:   assembled.Render(),
			History:   renderHistory(history),
		}
		if answer, respondErr := e.responder.Respond(processCtx, req); respondErr != nil {
			if ctxErr := processCtx.Err(); ctxErr != nil {
				e.metrics.RecordTurn("error", time.Since(start).Seconds())
				return nil, turnContextError(ctxErr)
			}
			e.logger.WithError(respondErr).Warn("Answer generation failed, replying with gathered data")
		} else if trimmed := strings.TrimSpace(answer); trimmed != "" {
			reply = trimmed
			generated = true
		}
	}
	if reply == "" {
		reply = e.dataReply(data, excerpt)
	}

	// Memory keeps what the user asked about even when nothing resolved,
	// so "¿y los requisitos?" still lands on the same program.
	if sc == nil {
		sc = &session.Context{}
	}
	sc.Update(enriched, time.Now())
	e.sessions.Set(sessionID, sc)

	e.saveTranscript(processCtx, sessionID, utterance, reply, enriched.FirstNonGeneralIntent())

	e.metrics.RecordTurn("success", time.Since(start).Seconds())
	return &TurnResult{
		SessionID:   sessionID,
		TurnID:      turnID,
		Reply:       reply,
		Entities:    enriched,
		Plan:        plan,
		Context:     assembled,
		DocumentKey: docKey,
		Generated:   generated,
		Duration:    time.Since(start),
	}, nil
}

// ResetSession drops a session's conversational memory and transcript.
func (e *Engine) ResetSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: empty session id", domerrors.ErrInvalidInput)
	}
	e.sessions.Delete(sessionID)
	deleted, err := e.transcripts.DeleteSessionHistory(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear session transcript: %w", err)
	}
	e.logger.WithFields(map[string]any{
		"session_id": sessionID,
		"messages":   deleted,
	}).Info("Session reset")
	return nil
}

// History returns the session's transcript tail in chronological order.
// A non-positive limit selects DefaultHistoryLimit.
func (e *Engine) History(ctx context.Context, sessionID string, limit int) ([]storage.ChatMessage, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: empty session id", domerrors.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return e.transcripts.GetHistory(ctx, sessionID, limit)
}

// allowGeneration charges one token of the session's LLM budget. The
// charge happens only on turns that would actually generate, so greetings
// and empty turns never touch the budget. An exhausted budget degrades
// the turn to the data-built reply instead of failing it.
func (e *Engine) allowGeneration(sessionID string) bool {
	if e.llmLimiter == nil {
		return true
	}
	if e.llmLimiter.Allow(sessionID) {
		return true
	}
	e.logger.WithField("session_id", sessionID).Warn("LLM budget exhausted, replying with gathered data")
	return false
}

// cannedTurn finishes a short-circuited turn: persist the exchange,
// record the turn, skip planning and retrieval entirely.
func (e *Engine) cannedTurn(ctx context.Context, start time.Time, sessionID, turnID, utterance, reply string, entities *nlu.ExtractedEntities) (*TurnResult, error) {
	e.saveTranscript(ctx, sessionID, utterance, reply, entities.FirstNonGeneralIntent())
	e.metrics.RecordTurn("success", time.Since(start).Seconds())
	return &TurnResult{
		SessionID: sessionID,
		TurnID:    turnID,
		Reply:     reply,
		Entities:  entities,
		Duration:  time.Since(start),
	}, nil
}

// documentExcerpt finds the best-matching ingested document and cuts the
// parts relevant to the utterance. Index and document misses degrade to
// no excerpt, never to an error.
func (e *Engine) documentExcerpt(ctx context.Context, utterance string) (*relevance.Excerpt, string) {
	if !e.index.IsEnabled() {
		return nil, ""
	}
	match, ok := e.index.BestMatch(utterance)
	if !ok {
		return nil, ""
	}
	doc, err := e.documents.GetDocumentByKey(ctx, match.Key)
	if err != nil {
		e.logger.WithError(err).WithField("document", match.Key).Warn("Matched document failed to load")
		return nil, ""
	}
	if doc == nil {
		e.logger.WithField("document", match.Key).Warn("Indexed document missing from storage")
		return nil, ""
	}

	excerpt := e.chunker.Extract(doc.Text, utterance, e.excerptBudget)
	e.metrics.RecordChunkerRun(excerptOutcome(excerpt, doc.Text))
	if excerpt.IsEmpty() {
		return nil, ""
	}
	return excerpt, match.Key
}

// dataReply renders the gathered facts directly when generation is off or
// down. Conversation history stays out; the user already saw it.
func (e *Engine) dataReply(data *fetched, excerpt *relevance.Excerpt) string {
	facts := e.assembler.Assemble(assembler.Input{
		Faculties: data.faculties,
		Programs:  data.programs,
		Courses:   data.courses,
		Excerpt:   excerpt,
	})
	if facts.IsEmpty() {
		return config.NoDataMessage
	}
	return config.FallbackReplyIntro + "\n\n" + facts.Render()
}

// saveTranscript appends the user and assistant rows. Failures are logged
// and swallowed; a lost transcript row never fails the turn. The write
// runs on a detached context so it finishes even when the turn spent its
// whole deadline.
func (e *Engine) saveTranscript(ctx context.Context, sessionID, utterance, reply string, intent nlu.Intent) {
	saveCtx, cancel := context.WithTimeout(ctxutil.PreserveTracing(ctx), transcriptSaveTimeout)
	defer cancel()

	userMsg := &storage.ChatMessage{
		SessionID: sessionID,
		Role:      storage.RoleUser,
		Content:   utterance,
		Intent:    string(intent),
	}
	if err := e.transcripts.SaveChatMessage(saveCtx, userMsg); err != nil {
		e.logger.WithError(err).Warn("Failed to persist user message")
	}

	botMsg := &storage.ChatMessage{
		SessionID: sessionID,
		Role:      storage.RoleAssistant,
		Content:   reply,
	}
	if err := e.transcripts.SaveChatMessage(saveCtx, botMsg); err != nil {
		e.logger.WithError(err).Warn("Failed to persist assistant message")
	}
}

// emptyReply picks the canned message for a turn that resolved nothing.
// The most specific miss wins: a semester question names the semester, a
// named program names the program.
func emptyReply(entities *nlu.ExtractedEntities) string {
	if len(entities.Semesters) > 0 && entities.HasIntent(nlu.IntentCurriculumInfo) {
		return fmt.Sprintf(config.SemesterRangeMessage, entities.Semesters[0])
	}
	if len(entities.Programs) > 0 {
		return fmt.Sprintf(config.NoProgramFoundMessage, entities.Programs[0])
	}
	return config.NoDataMessage
}

// renderHistory flattens transcript rows into the responder's history
// lines, oldest first.
func renderHistory(history []storage.ChatMessage) []string {
	if len(history) == 0 {
		return nil
	}
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	return lines
}

// excerptOutcome classifies a chunker run for metrics.
func excerptOutcome(excerpt *relevance.Excerpt, docText string) string {
	switch {
	case excerpt.IsEmpty():
		return "empty"
	case len(excerpt.Keywords) > 0:
		return "excerpt"
	case excerpt.Text == strings.TrimSpace(docText):
		return "verbatim"
	default:
		return "fallback"
	}
}

// turnContextError maps a dead turn context onto the matching sentinel.
func turnContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("turn processing: %w", domerrors.ErrTimeout)
	}
	return fmt.Errorf("turn processing: %w", domerrors.ErrContextCanceled)
}
