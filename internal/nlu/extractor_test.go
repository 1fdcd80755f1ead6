package nlu

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admibot/admibot-go/internal/genai"
	"github.com/admibot/admibot-go/internal/logger"
)

type stubAIExtractor struct {
	result  *genai.ExtractionResult
	err     error
	enabled bool
	calls   int
}

func (s *stubAIExtractor) ExtractEntities(_ context.Context, _ string) (*genai.ExtractionResult, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubAIExtractor) IsEnabled() bool          { return s.enabled }
func (s *stubAIExtractor) Close() error             { return nil }
func (s *stubAIExtractor) Provider() genai.Provider { return genai.ProviderGemini }

func newTestExtractor(ai genai.EntityExtractor) *Extractor {
	return NewExtractor(ai, 0, logger.NewWithWriter("error", io.Discard))
}

func TestExtractGreetingShortCircuits(t *testing.T) {
	e := newTestExtractor(nil)

	got := e.Extract(context.Background(), "hola buenos días")

	assert.Equal(t, []Intent{IntentGreeting}, got.Intents)
	assert.Empty(t, got.Faculties)
	assert.Empty(t, got.Programs)
	assert.Empty(t, got.Courses)
	assert.Empty(t, got.Semesters)
	assert.Empty(t, got.ScheduleTracks)
	assert.Equal(t, "hola buenos días", got.RawQuery)
}

func TestExtractFarewellShortCircuits(t *testing.T) {
	e := newTestExtractor(nil)

	got := e.Extract(context.Background(), "¡Muchas gracias!")

	assert.Equal(t, []Intent{IntentFarewell}, got.Intents)
	assert.False(t, got.HasSpecificEntities())
}

func TestExtractEmptyUtterance(t *testing.T) {
	e := newTestExtractor(nil)

	for _, utterance := range []string{"", "   ", "\n\t"} {
		got := e.Extract(context.Background(), utterance)
		assert.Equal(t, []Intent{IntentGeneral}, got.Intents)
		assert.False(t, got.HasSpecificEntities())
	}
}

func TestExtractCurriculumQuery(t *testing.T) {
	e := newTestExtractor(nil)

	got := e.Extract(context.Background(), "materias de quinto semestre de sistemas")

	assert.Equal(t, []string{"ingenieria de sistemas"}, got.Programs)
	assert.Equal(t, []string{"5"}, got.Semesters)
	assert.True(t, got.HasIntent(IntentCurriculumInfo))
	assert.False(t, got.HasIntent(IntentGeneral))
}

func TestExtractGreetingPlusQuestionIsNotAGreeting(t *testing.T) {
	e := newTestExtractor(nil)

	got := e.Extract(context.Background(), "hola, quiero el pensum de ingeniería de sistemas")

	assert.False(t, got.HasIntent(IntentGreeting))
	assert.True(t, got.HasIntent(IntentCurriculumInfo))
	assert.Equal(t, []string{"ingenieria de sistemas"}, got.Programs)
}

func TestExtractListingByFacultyDropsIncidentalProgram(t *testing.T) {
	e := newTestExtractor(nil)

	// "ingenieria civil" trips a program phrase inside a faculty-scoped
	// listing question; the faculty scope must win.
	got := e.Extract(context.Background(), "¿qué programas tiene la facultad de ingeniería civil?")

	assert.True(t, got.HasListingIntent())
	assert.Equal(t, []string{"ingenieria"}, got.Faculties)
	assert.Empty(t, got.Programs)
}

func TestExtractAdmissions(t *testing.T) {
	e := newTestExtractor(nil)

	got := e.Extract(context.Background(), "¿cuándo abren las inscripciones?")

	assert.True(t, got.HasIntent(IntentAdmissionsInfo))
}

func TestExtractScheduleTrack(t *testing.T) {
	e := newTestExtractor(nil)

	got := e.Extract(context.Background(), "¿derecho tiene jornada nocturna?")

	assert.Equal(t, []string{"nocturna"}, got.ScheduleTracks)
	assert.True(t, got.HasIntent(IntentScheduleTrack))
	assert.Equal(t, []string{"derecho"}, got.Programs)
}

func TestExtractDeterminism(t *testing.T) {
	e := newTestExtractor(nil)
	utterance := "créditos de quinto semestre de ingeniería industrial en jornada diurna"

	first := e.Extract(context.Background(), utterance)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, e.Extract(context.Background(), utterance))
	}
}

func TestExtractAIFallbackMergesValidatedResult(t *testing.T) {
	stub := &stubAIExtractor{
		enabled: true,
		result: &genai.ExtractionResult{
			Faculties:      []string{"Facultad de Ingeniería"},
			Programs:       []string{"Ingeniería de Sistemas"},
			Courses:        []string{"Cálculo Diferencial"},
			Semesters:      []string{"quinto", "99"},
			ScheduleTracks: []string{"nocturna", "madrugada"},
			Intents:        []string{"curriculum_info", "GREETING", "NOT_A_THING"},
		},
	}
	e := newTestExtractor(stub)

	got := e.Extract(context.Background(), "quiero información sobre becas")

	require.Equal(t, 1, stub.calls)
	assert.Equal(t, []string{"facultad de ingenieria"}, got.Faculties)
	assert.Equal(t, []string{"ingenieria de sistemas"}, got.Programs)
	assert.Equal(t, []string{"calculo diferencial"}, got.Courses)
	assert.Equal(t, []string{"5"}, got.Semesters)
	assert.Equal(t, []string{"nocturna"}, got.ScheduleTracks)
	assert.Equal(t, []Intent{IntentCurriculumInfo}, got.Intents)
}

func TestExtractAIFallbackSkippedWhenRulesFindEntities(t *testing.T) {
	stub := &stubAIExtractor{enabled: true, result: &genai.ExtractionResult{}}
	e := newTestExtractor(stub)

	e.Extract(context.Background(), "pensum de sistemas")

	assert.Zero(t, stub.calls)
}

func TestExtractAIFallbackSkippedForListing(t *testing.T) {
	stub := &stubAIExtractor{enabled: true, result: &genai.ExtractionResult{}}
	e := newTestExtractor(stub)

	e.Extract(context.Background(), "¿qué facultades hay?")

	assert.Zero(t, stub.calls)
}

func TestExtractAIFallbackSkippedForGreeting(t *testing.T) {
	stub := &stubAIExtractor{enabled: true, result: &genai.ExtractionResult{}}
	e := newTestExtractor(stub)

	e.Extract(context.Background(), "hola")

	assert.Zero(t, stub.calls)
}

func TestExtractAIErrorFallsBackSilently(t *testing.T) {
	stub := &stubAIExtractor{enabled: true, err: errors.New("provider down")}
	e := newTestExtractor(stub)

	got := e.Extract(context.Background(), "algo que las reglas no entienden")

	require.Equal(t, 1, stub.calls)
	assert.Equal(t, []Intent{IntentGeneral}, got.Intents)
	assert.False(t, got.HasSpecificEntities())
}

func TestExtractAIDisabledNeverCalled(t *testing.T) {
	stub := &stubAIExtractor{enabled: false}
	e := newTestExtractor(stub)

	got := e.Extract(context.Background(), "algo que las reglas no entienden")

	assert.Zero(t, stub.calls)
	assert.Equal(t, []Intent{IntentGeneral}, got.Intents)
}

func TestExtractNilAI(t *testing.T) {
	e := newTestExtractor(nil)

	got := e.Extract(context.Background(), "algo que las reglas no entienden")

	assert.Equal(t, []Intent{IntentGeneral}, got.Intents)
}

func TestExtractTrimsRawQuery(t *testing.T) {
	e := newTestExtractor(nil)

	got := e.Extract(context.Background(), "  pensum de sistemas  ")

	assert.Equal(t, "pensum de sistemas", got.RawQuery)
}
