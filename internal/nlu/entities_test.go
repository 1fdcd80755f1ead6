package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitiesClone(t *testing.T) {
	original := &ExtractedEntities{
		Faculties:      []string{"ingenieria"},
		Programs:       []string{"ingenieria de sistemas"},
		Courses:        []string{"calculo diferencial"},
		Semesters:      []string{"5"},
		ScheduleTracks: []string{"nocturna"},
		Intents:        []Intent{IntentCurriculumInfo},
		RawQuery:       "materias de quinto semestre de sistemas",
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Programs[0] = "mutated"
	clone.Intents[0] = IntentGeneral
	clone.Semesters = append(clone.Semesters, "6")

	assert.Equal(t, "ingenieria de sistemas", original.Programs[0])
	assert.Equal(t, IntentCurriculumInfo, original.Intents[0])
	assert.Len(t, original.Semesters, 1)
}

func TestEntitiesCloneNil(t *testing.T) {
	var e *ExtractedEntities
	assert.Nil(t, e.Clone())
}

func TestHasIntent(t *testing.T) {
	e := &ExtractedEntities{Intents: []Intent{IntentCredits, IntentCurriculumInfo}}

	assert.True(t, e.HasIntent(IntentCredits))
	assert.True(t, e.HasIntent(IntentCurriculumInfo))
	assert.False(t, e.HasIntent(IntentGreeting))
}

func TestHasListingIntent(t *testing.T) {
	assert.True(t, (&ExtractedEntities{Intents: []Intent{IntentListPrograms}}).HasListingIntent())
	assert.True(t, (&ExtractedEntities{Intents: []Intent{IntentGeneral, IntentListCourses}}).HasListingIntent())
	assert.False(t, (&ExtractedEntities{Intents: []Intent{IntentProgramInfo}}).HasListingIntent())
}

func TestHasSpecificEntities(t *testing.T) {
	assert.True(t, (&ExtractedEntities{Programs: []string{"derecho"}}).HasSpecificEntities())
	assert.True(t, (&ExtractedEntities{Faculties: []string{"ingenieria"}}).HasSpecificEntities())
	assert.True(t, (&ExtractedEntities{Courses: []string{"calculo"}}).HasSpecificEntities())
	assert.False(t, (&ExtractedEntities{Semesters: []string{"5"}}).HasSpecificEntities())
	assert.False(t, (&ExtractedEntities{ScheduleTracks: []string{"diurna"}}).HasSpecificEntities())
	assert.False(t, (&ExtractedEntities{}).HasSpecificEntities())
}

func TestFirstNonGeneralIntent(t *testing.T) {
	tests := []struct {
		name    string
		intents []Intent
		want    Intent
	}{
		{"skips general", []Intent{IntentGeneral, IntentCredits}, IntentCredits},
		{"first wins", []Intent{IntentCurriculumInfo, IntentCredits}, IntentCurriculumInfo},
		{"only general", []Intent{IntentGeneral}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, (&ExtractedEntities{Intents: tt.intents}).FirstNonGeneralIntent())
		})
	}
}

func TestAddIntentDeduplicates(t *testing.T) {
	e := &ExtractedEntities{}
	e.addIntent(IntentCredits)
	e.addIntent(IntentCurriculumInfo)
	e.addIntent(IntentCredits)

	assert.Equal(t, []Intent{IntentCredits, IntentCurriculumInfo}, e.Intents)
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in    string
		want  Intent
		valid bool
	}{
		{"CURRICULUM_INFO", IntentCurriculumInfo, true},
		{"curriculum_info", IntentCurriculumInfo, true},
		{"  credits ", IntentCredits, true},
		{"NOT_A_THING", Intent("NOT_A_THING"), false},
		{"", Intent(""), false},
	}

	for _, tt := range tests {
		got, valid := ParseIntent(tt.in)
		assert.Equal(t, tt.valid, valid, tt.in)
		if valid {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
