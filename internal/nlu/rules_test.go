package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admibot/admibot-go/internal/textnorm"
)

func TestMatchGreeting(t *testing.T) {
	rs := newRuleSet()

	tests := []struct {
		name      string
		utterance string
		want      bool
	}{
		{"bare hola", "hola", true},
		{"hola with punctuation", "¡Hola!", true},
		{"buenos dias", "Buenos días", true},
		{"hola buenos dias", "hola buenos días", true},
		{"buenas tardes", "buenas tardes", true},
		{"que tal", "¿Qué tal?", true},
		{"greeting followed by a question", "hola quiero el pensum de sistemas", false},
		{"buenos dias followed by a question", "buenos días, ¿qué carreras hay?", false},
		{"unrelated text", "cuanto cuesta la matricula", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.matchGreeting(textnorm.Normalize(tt.utterance)))
		})
	}
}

func TestMatchFarewell(t *testing.T) {
	rs := newRuleSet()

	tests := []struct {
		name      string
		utterance string
		want      bool
	}{
		{"gracias", "gracias", true},
		{"muchas gracias", "¡Muchas gracias!", true},
		{"mil gracias", "mil gracias", true},
		{"chao", "chao", true},
		{"adios", "adiós", true},
		{"hasta luego", "hasta luego", true},
		{"gracias chao", "gracias, chao", true},
		{"thanks followed by a question", "gracias, y ¿cuántos créditos tiene?", false},
		{"gracias inside a sentence", "gracias por la información sobre el pensum", false},
		{"unrelated text", "quiero inscribirme", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.matchFarewell(textnorm.Normalize(tt.utterance)))
		})
	}
}

func TestResolveProgram(t *testing.T) {
	rs := newRuleSet()

	tests := []struct {
		name      string
		utterance string
		want      string
		found     bool
	}{
		{"full phrase", "quiero estudiar ingeniería de sistemas", "ingenieria de sistemas", true},
		{"phrase variant", "ingenieria en sistemas", "ingenieria de sistemas", true},
		{"partial form", "pensum de ing sistemas", "ingenieria de sistemas", true},
		{"bare keyword", "materias de quinto semestre de sistemas", "ingenieria de sistemas", true},
		{"keyword needs word boundary", "el sistema de admisión", "", false},
		{"another program", "créditos de contaduría", "contaduria publica", true},
		{"no program", "¿cuándo abren inscripciones?", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := rs.resolveProgram(textnorm.Normalize(tt.utterance))
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveProgramTierPrecedence(t *testing.T) {
	rs := newRuleSet()

	// "ingenieria civil" is a phrase hit and "sistemas" only a keyword hit:
	// the phrase tier must win even though sistemas appears first in the text.
	got, found := rs.resolveProgram(textnorm.Normalize("diferencia entre sistemas e ingeniería civil"))
	require.True(t, found)
	assert.Equal(t, "ingenieria civil", got)
}

func TestResolveSemester(t *testing.T) {
	rs := newRuleSet()

	tests := []struct {
		name      string
		utterance string
		want      string
		found     bool
	}{
		{"ordinal word", "materias de quinto semestre", "5", true},
		{"ordinal primer", "primer semestre de sistemas", "1", true},
		{"ordinal ultimo", "qué veo en el último semestre", "10", true},
		{"digit suffix form", "pensum de 5to semestre", "5", true},
		{"number after", "semestre 7", "7", true},
		{"number before", "3 semestre de civil", "3", true},
		{"nivel variant", "nivel 2", "2", true},
		{"out of range", "semestre 15", "", false},
		{"zero", "semestre 0", "", false},
		{"no semester", "pensum de sistemas", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := rs.resolveSemester(textnorm.Normalize(tt.utterance))
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTracks(t *testing.T) {
	rs := newRuleSet()

	tests := []struct {
		name      string
		utterance string
		want      []string
	}{
		{"nocturna", "¿hay derecho en jornada nocturna?", []string{"nocturna"}},
		{"diurna masculine", "horario diurno de sistemas", []string{"diurna"}},
		{"distancia", "¿se puede estudiar a distancia?", []string{"distancia"}},
		{"multiple tracks", "¿sistemas es diurna o nocturna?", []string{"diurna", "nocturna"}},
		{"none", "pensum de sistemas", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.resolveTracks(textnorm.Normalize(tt.utterance)))
		})
	}
}

func TestResolveFaculty(t *testing.T) {
	rs := newRuleSet()

	tests := []struct {
		name      string
		utterance string
		want      string
		found     bool
	}{
		{"facultad de prefix", "carreras de la facultad de ingeniería", "ingenieria", true},
		{"plural form", "¿qué ingenierías tienen?", "ingenieria", true},
		{"salud", "programas de ciencias de la salud", "ciencias de la salud", true},
		{"program mention does not fire", "pensum de ingeniería de sistemas", "", false},
		{"no faculty", "cuántos créditos tiene cálculo", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := rs.resolveFaculty(textnorm.Normalize(tt.utterance))
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopicIntents(t *testing.T) {
	rs := newRuleSet()

	tests := []struct {
		name      string
		utterance string
		want      []Intent
	}{
		{"pensum", "pensum de sistemas", []Intent{IntentCurriculumInfo}},
		{"malla curricular", "malla curricular de civil", []Intent{IntentCurriculumInfo}},
		{"carrera info", "¿de qué trata la carrera?", []Intent{IntentProgramInfo}},
		{"list programs", "¿qué carreras ofrecen?", []Intent{IntentProgramInfo, IntentListPrograms}},
		{"list faculties", "¿cuáles facultades hay?", []Intent{IntentListFaculties}},
		{"credits", "¿cuántos créditos tiene cálculo?", []Intent{IntentCredits}},
		{"schedule track", "¿qué jornadas manejan?", []Intent{IntentScheduleTrack}},
		{"none", "hola necesito ayuda", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.topicIntents(textnorm.Normalize(tt.utterance)))
		})
	}
}

func TestMatchAdmissions(t *testing.T) {
	rs := newRuleSet()

	assert.True(t, rs.matchAdmissions(textnorm.Normalize("¿cuándo abren inscripciones?")))
	assert.True(t, rs.matchAdmissions(textnorm.Normalize("requisitos de ingreso para sistemas")))
	assert.True(t, rs.matchAdmissions(textnorm.Normalize("puntaje de corte del año pasado")))
	assert.False(t, rs.matchAdmissions(textnorm.Normalize("pensum de sistemas")))
}
