package genai

import (
	"strings"
	"testing"
)

func TestSystemPrompts(t *testing.T) {
	t.Parallel()

	// Each system prompt must name the function the model is forced to call
	if !strings.Contains(ExtractorSystemPrompt, ExtractFunctionName) {
		t.Error("extractor prompt should name the extraction function")
	}
	if !strings.Contains(PlanOptimizerSystemPrompt, PlanFunctionName) {
		t.Error("optimizer prompt should name the plan function")
	}

	// The extractor prompt must list the full intent vocabulary
	intents := []string{
		"GREETING", "FAREWELL", "ADMISSIONS_INFO", "FACULTY_INFO", "PROGRAM_INFO",
		"COURSE_INFO", "CURRICULUM_INFO", "LIST_FACULTIES", "LIST_PROGRAMS",
		"LIST_COURSES", "CREDITS", "SCHEDULE_TRACK", "GENERAL",
	}
	for _, intent := range intents {
		if !strings.Contains(ExtractorSystemPrompt, intent) {
			t.Errorf("extractor prompt missing intent %s", intent)
		}
	}

	// Schedule tracks use their canonical names
	for _, track := range []string{"diurna", "nocturna", "distancia"} {
		if !strings.Contains(ExtractorSystemPrompt, track) {
			t.Errorf("extractor prompt missing track %s", track)
		}
	}

	// The responder must be told where to send people when the context runs dry
	if !strings.Contains(ResponderSystemPrompt, "ufps.edu.co") {
		t.Error("responder prompt should mention the official site")
	}
}

func TestPlanReviewPrompt(t *testing.T) {
	t.Parallel()
	req := &PlanRequest{
		Utterance: "¿qué materias tiene quinto de enfermería?",
		Calls:     []string{"programs?name=enferm", "curriculum?program=enfermeria&semester=5"},
		Strategy:  "PARALLEL",
	}

	prompt := PlanReviewPrompt(req)

	if !strings.Contains(prompt, req.Utterance) {
		t.Error("prompt should contain the utterance")
	}
	for _, call := range req.Calls {
		if !strings.Contains(prompt, call) {
			t.Errorf("prompt should contain call %q", call)
		}
	}
	if !strings.Contains(prompt, "PARALLEL") {
		t.Error("prompt should contain the drafted strategy")
	}
	if !strings.Contains(prompt, "llamada 1") || !strings.Contains(prompt, "llamada 2") {
		t.Error("prompt should number the drafted calls")
	}
}

func TestResponsePrompt(t *testing.T) {
	t.Parallel()

	t.Run("with history and context", func(t *testing.T) {
		t.Parallel()
		req := &ResponseRequest{
			Utterance: "¿y en la nocturna?",
			Context:   "Derecho: jornadas diurna y nocturna.",
			History: []string{
				"user: ¿qué jornadas tiene derecho?",
				"assistant: Derecho se ofrece en jornada diurna y nocturna.",
			},
		}

		prompt := ResponsePrompt(req)

		if !strings.Contains(prompt, "Conversación previa") {
			t.Error("prompt should include the history section")
		}
		for _, line := range req.History {
			if !strings.Contains(prompt, line) {
				t.Errorf("prompt should contain history line %q", line)
			}
		}
		if !strings.Contains(prompt, req.Context) {
			t.Error("prompt should contain the context")
		}
		if !strings.Contains(prompt, req.Utterance) {
			t.Error("prompt should contain the utterance")
		}

		// History must come before context, context before the question
		histIdx := strings.Index(prompt, "Conversación previa")
		ctxIdx := strings.Index(prompt, "## Contexto")
		qIdx := strings.Index(prompt, "## Pregunta")
		if !(histIdx < ctxIdx && ctxIdx < qIdx) {
			t.Error("prompt sections out of order")
		}
	})

	t.Run("empty context placeholder", func(t *testing.T) {
		t.Parallel()
		prompt := ResponsePrompt(&ResponseRequest{Utterance: "hola"})

		if strings.Contains(prompt, "Conversación previa") {
			t.Error("prompt should omit the history section when empty")
		}
		if !strings.Contains(prompt, "(sin resultados)") {
			t.Error("prompt should mark the empty context")
		}
	})
}
