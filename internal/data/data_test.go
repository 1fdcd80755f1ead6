package data

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admibot/admibot-go/internal/textnorm"
)

func TestAllPrograms_CanonicalNamesNormalized(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range AllPrograms {
		assert.Equal(t, textnorm.Normalize(p.Name), p.Name,
			"program name %q must already be normalized", p.Name)
		assert.False(t, seen[p.Name], "duplicate program name %q", p.Name)
		seen[p.Name] = true
	}
}

func TestAllPrograms_FacultiesExist(t *testing.T) {
	for _, p := range AllPrograms {
		require.NotNil(t, FindFaculty(p.Faculty),
			"program %q references unknown faculty %q", p.Name, p.Faculty)
	}
}

func TestAllPrograms_AliasesNormalizedAndUnique(t *testing.T) {
	type owner struct {
		program string
		tier    string
	}
	seen := make(map[string]owner)

	check := func(t *testing.T, program, tier string, aliases []string) {
		t.Helper()
		for _, alias := range aliases {
			assert.Equal(t, textnorm.Normalize(alias), alias,
				"alias %q of %q must already be normalized", alias, program)
			if prev, dup := seen[tier+"|"+alias]; dup {
				t.Errorf("alias %q in tier %s claimed by both %q and %q",
					alias, tier, prev.program, program)
			}
			seen[tier+"|"+alias] = owner{program: program, tier: tier}
		}
	}

	for _, p := range AllPrograms {
		check(t, p.Name, "phrase", p.Phrases)
		check(t, p.Name, "partial", p.Partials)
		check(t, p.Name, "keyword", p.Keywords)
	}
}

func TestAllFaculties_PatternsCompile(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range AllFaculties {
		_, err := regexp.Compile(f.Pattern)
		require.NoError(t, err, "faculty %q pattern must compile", f.Name)
		assert.False(t, seen[f.Name], "duplicate faculty %q", f.Name)
		seen[f.Name] = true
	}
}

func TestFindProgram(t *testing.T) {
	assert.NotNil(t, FindProgram("ingenieria de sistemas"))
	assert.Nil(t, FindProgram("astrofisica"))
}

func TestSemesterOrdinals_ValidDigits(t *testing.T) {
	valid := map[string]bool{
		"1": true, "2": true, "3": true, "4": true, "5": true,
		"6": true, "7": true, "8": true, "9": true, "10": true,
	}
	for word, digit := range SemesterOrdinals {
		assert.True(t, valid[digit], "ordinal %q maps to invalid semester %q", word, digit)
		assert.Equal(t, textnorm.Normalize(word), word, "ordinal %q must be normalized", word)
	}
}

func TestAllScheduleTracks_Normalized(t *testing.T) {
	for _, track := range AllScheduleTracks {
		assert.Equal(t, textnorm.Normalize(track.Name), track.Name)
		assert.NotEmpty(t, track.Matches)
		for _, m := range track.Matches {
			assert.Equal(t, textnorm.Normalize(m), m,
				"track match %q must be normalized", m)
		}
	}
}
