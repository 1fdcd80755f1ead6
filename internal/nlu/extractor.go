// Package nlu turns raw user utterances into structured intents and
// entities. A deterministic rule pass over normalized text does the bulk of
// the work; an optional LLM extractor backs it up when the rules find
// nothing concrete, and its output is merged by set union so the rule pass
// is never overridden.
package nlu

import (
	"context"
	"strings"
	"time"

	"github.com/admibot/admibot-go/internal/data"
	"github.com/admibot/admibot-go/internal/genai"
	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/stringutil"
	"github.com/admibot/admibot-go/internal/textnorm"
)

// defaultAITimeout bounds the LLM fallback so a slow provider cannot stall
// the whole turn. The rule result is always available as the answer.
const defaultAITimeout = 2 * time.Second

// Extractor runs the extraction pipeline. Safe for concurrent use: the
// rule tables are compiled once and never mutated.
type Extractor struct {
	rules     *ruleSet
	ai        genai.EntityExtractor
	aiTimeout time.Duration
	lg        *logger.Logger
}

// NewExtractor builds an Extractor. ai may be nil to disable the LLM
// fallback entirely. A non-positive aiTimeout selects the default.
func NewExtractor(ai genai.EntityExtractor, aiTimeout time.Duration, lg *logger.Logger) *Extractor {
	if aiTimeout <= 0 {
		aiTimeout = defaultAITimeout
	}
	if lg == nil {
		lg = logger.New("info")
	}
	return &Extractor{
		rules:     newRuleSet(),
		ai:        ai,
		aiTimeout: aiTimeout,
		lg:        lg.WithModule("nlu"),
	}
}

// Extract analyzes one utterance. It always returns a usable result: the
// intent list is never empty (GENERAL is the fallback) and pure greetings
// and farewells short-circuit with exactly one intent and no entities.
func (e *Extractor) Extract(ctx context.Context, utterance string) *ExtractedEntities {
	entities := &ExtractedEntities{RawQuery: strings.TrimSpace(utterance)}

	norm := textnorm.Normalize(utterance)
	if norm == "" {
		entities.addIntent(IntentGeneral)
		return entities
	}

	if e.rules.matchGreeting(norm) {
		entities.addIntent(IntentGreeting)
		return entities
	}
	if e.rules.matchFarewell(norm) {
		entities.addIntent(IntentFarewell)
		return entities
	}

	if program, ok := e.rules.resolveProgram(norm); ok {
		entities.Programs = append(entities.Programs, program)
	}
	if semester, ok := e.rules.resolveSemester(norm); ok {
		entities.Semesters = append(entities.Semesters, semester)
	}
	entities.ScheduleTracks = append(entities.ScheduleTracks, e.rules.resolveTracks(norm)...)
	if faculty, ok := e.rules.resolveFaculty(norm); ok {
		entities.Faculties = append(entities.Faculties, faculty)
	}
	if e.rules.matchAdmissions(norm) {
		entities.addIntent(IntentAdmissionsInfo)
	}
	for _, intent := range e.rules.topicIntents(norm) {
		entities.addIntent(intent)
	}

	// A listing question scoped to a faculty often trips a program alias on
	// the faculty wording itself. The faculty scope governs there.
	if entities.HasListingIntent() && len(entities.Faculties) > 0 && len(entities.Programs) > 0 {
		entities.Programs = nil
	}

	if !entities.HasSpecificEntities() && !entities.HasListingIntent() {
		e.mergeAIExtraction(ctx, entities)
	}

	if len(entities.Intents) == 0 {
		entities.addIntent(IntentGeneral)
	}

	entities.dedupe()
	return entities
}

// mergeAIExtraction asks the LLM extractor for entities the rules missed
// and folds the validated result into entities. Failures are logged and
// swallowed; the rule result stands on its own.
func (e *Extractor) mergeAIExtraction(ctx context.Context, entities *ExtractedEntities) {
	if e.ai == nil || !e.ai.IsEnabled() {
		return
	}

	aiCtx, cancel := context.WithTimeout(ctx, e.aiTimeout)
	defer cancel()

	result, err := e.ai.ExtractEntities(aiCtx, entities.RawQuery)
	if err != nil {
		e.lg.Warn("ai entity extraction failed, keeping rule result",
			"provider", e.ai.Provider().String(),
			"error", err,
			"utterance", stringutil.Truncate(entities.RawQuery, 80),
		)
		return
	}
	if result == nil {
		return
	}

	for _, f := range result.Faculties {
		if n := textnorm.Normalize(f); n != "" {
			entities.Faculties = append(entities.Faculties, n)
		}
	}
	for _, p := range result.Programs {
		n := textnorm.Normalize(p)
		if n == "" {
			continue
		}
		if info := data.FindProgram(n); info != nil {
			n = info.Name
		}
		entities.Programs = append(entities.Programs, n)
	}
	for _, c := range result.Courses {
		if n := textnorm.Normalize(c); n != "" {
			entities.Courses = append(entities.Courses, n)
		}
	}
	for _, s := range result.Semesters {
		n := textnorm.Normalize(s)
		if digit, ok := data.SemesterOrdinals[n]; ok {
			entities.Semesters = append(entities.Semesters, digit)
			continue
		}
		if validSemester(n) {
			entities.Semesters = append(entities.Semesters, n)
		}
	}
	for _, tr := range result.ScheduleTracks {
		n := textnorm.Normalize(tr)
		for _, info := range data.AllScheduleTracks {
			if n == info.Name {
				entities.ScheduleTracks = append(entities.ScheduleTracks, info.Name)
				break
			}
		}
	}
	for _, raw := range result.Intents {
		intent, ok := ParseIntent(raw)
		if !ok {
			continue
		}
		// Greeting and farewell are full-utterance judgments the rules
		// already made; the LLM cannot reintroduce them.
		if intent == IntentGreeting || intent == IntentFarewell {
			continue
		}
		entities.addIntent(intent)
	}
}

// validSemester reports whether n is a plain semester number from 1 to 10.
func validSemester(n string) bool {
	if !stringutil.IsNumeric(n) {
		return false
	}
	if len(n) == 1 {
		return n != "0"
	}
	return n == "10"
}
