package assembler

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admibot/admibot-go/internal/relevance"
	"github.com/admibot/admibot-go/internal/storage"
)

func fullInput() Input {
	return Input{
		Faculties: []storage.Faculty{
			{ID: "ingenieria", Name: "Facultad de Ingeniería", Website: "https://ufps.edu.co/ingenieria"},
		},
		Programs: []storage.Program{
			{ID: "ingenieria de sistemas", Name: "Ingeniería de Sistemas", Faculty: "ingenieria", Degree: "Ingeniero de Sistemas", Semesters: 10, Credits: 160, Tracks: []string{"diurna", "nocturna"}},
		},
		Courses: []storage.CourseEntry{
			{Name: "Cálculo Avanzado", Program: "ingenieria de sistemas", Semester: 5, Credits: 4},
		},
		Excerpt: &relevance.Excerpt{Text: "El programa forma profesionales en computación."},
		History: []storage.ChatMessage{
			{Role: storage.RoleUser, Content: "¿qué programas tienen?"},
			{Role: storage.RoleAssistant, Content: "Tenemos 17 programas de pregrado."},
		},
	}
}

func TestAssembleOrdersSections(t *testing.T) {
	a := New(Config{})
	got := a.Assemble(fullInput())

	require.Len(t, got.Sections, 3)
	assert.True(t, strings.HasPrefix(got.Sections[0], "Datos académicos:"))
	assert.True(t, strings.HasPrefix(got.Sections[1], "Documento relevante:"))
	assert.True(t, strings.HasPrefix(got.Sections[2], "Conversación reciente:"))
	assert.False(t, got.Truncated)

	rendered := got.Render()
	assert.Equal(t, utf8.RuneCountInString(rendered), got.TotalChars)
	assert.Contains(t, rendered, "programa: Ingeniería de Sistemas")
	assert.Contains(t, rendered, "usuario: ¿qué programas tienen?")

	again := a.Assemble(fullInput())
	assert.Equal(t, got, again, "assembly must be deterministic")
}

func TestAssembleFactLines(t *testing.T) {
	a := New(Config{})
	got := a.Assemble(fullInput())

	require.NotEmpty(t, got.Sections)
	lines := strings.Split(got.Sections[0], "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "facultad: Facultad de Ingeniería; sitio web: https://ufps.edu.co/ingenieria", lines[1])
	assert.Equal(t, "programa: Ingeniería de Sistemas; facultad: ingenieria; título: Ingeniero de Sistemas; semestres: 10; créditos: 160; jornadas: diurna, nocturna", lines[2])
	assert.Equal(t, "materia: Cálculo Avanzado; programa: ingenieria de sistemas; semestre: 5; créditos: 4", lines[3])
}

func TestAssembleCapsFactsPerCategory(t *testing.T) {
	in := Input{}
	for _, name := range []string{"Derecho", "Enfermería", "Arquitectura", "Contaduría", "Trabajo Social"} {
		in.Programs = append(in.Programs, storage.Program{Name: name})
	}

	a := New(Config{FactsPerCategory: 2})
	got := a.Assemble(in)

	require.Len(t, got.Sections, 1)
	lines := strings.Split(got.Sections[0], "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Derecho")
	assert.Contains(t, lines[2], "Enfermería")
}

func TestAssembleTruncatesAtBudget(t *testing.T) {
	in := Input{
		Excerpt: &relevance.Excerpt{Text: strings.Repeat("requisitos de admisión ", 40)},
	}

	a := New(Config{MaxContextChars: 60})
	got := a.Assemble(in)

	assert.True(t, got.Truncated)
	assert.LessOrEqual(t, got.TotalChars, 60)
	assert.True(t, strings.HasSuffix(got.Render(), "..."))
}

func TestAssembleDropsSectionsBeyondBudget(t *testing.T) {
	in := Input{
		Faculties: []storage.Faculty{{Name: "Facultad de Ingeniería"}},
		History: []storage.ChatMessage{
			{Role: storage.RoleUser, Content: "hola, quiero información de admisiones"},
		},
	}

	// Measure the facts section alone, then allow exactly that much.
	factsOnly := New(Config{}).Assemble(Input{Faculties: in.Faculties})
	require.Len(t, factsOnly.Sections, 1)

	a := New(Config{MaxContextChars: factsOnly.TotalChars})
	got := a.Assemble(in)

	require.Len(t, got.Sections, 1)
	assert.Equal(t, factsOnly.Sections[0], got.Sections[0], "the fitting section survives whole")
	assert.True(t, got.Truncated)
}

func TestAssembleHistoryTail(t *testing.T) {
	in := Input{
		History: []storage.ChatMessage{
			{Role: storage.RoleUser, Content: "pregunta 1"},
			{Role: storage.RoleAssistant, Content: "respuesta 1"},
			{Role: storage.RoleUser, Content: "pregunta 2"},
			{Role: storage.RoleAssistant, Content: "respuesta 2"},
			{Role: storage.RoleUser, Content: "pregunta    con   espacios y una cola bastante larga"},
			{Role: "sistema", Content: "aviso"},
		},
	}

	a := New(Config{HistoryTurns: 4, TurnMaxChars: 30})
	got := a.Assemble(in)

	require.Len(t, got.Sections, 1)
	lines := strings.Split(got.Sections[0], "\n")
	require.Len(t, lines, 5, "header plus the last four messages")
	assert.Equal(t, "usuario: pregunta 2", lines[1])
	assert.Equal(t, "asistente: respuesta 2", lines[2])
	assert.Equal(t, "usuario: pregunta con espacios y una...", lines[3], "whitespace collapsed, then truncated")
	assert.Equal(t, "sistema: aviso", lines[4], "unknown roles pass through")
}

func TestAssembleEmptyInput(t *testing.T) {
	a := New(Config{})

	got := a.Assemble(Input{})

	assert.True(t, got.IsEmpty())
	assert.Empty(t, got.Render())
	assert.Zero(t, got.TotalChars)
	assert.False(t, got.Truncated)
}

func TestAssembleSkipsEmptyExcerpt(t *testing.T) {
	a := New(Config{})

	for _, excerpt := range []*relevance.Excerpt{nil, {}} {
		got := a.Assemble(Input{Excerpt: excerpt})
		assert.True(t, got.IsEmpty())
	}
}
