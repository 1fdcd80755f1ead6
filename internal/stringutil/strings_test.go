package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"5", true},
		{"10", true},
		{"0042", true},
		{"", false},
		{"5a", false},
		{"quinto", false},
		{"-3", false},
		{"3.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNumeric(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxChars int
		expected string
	}{
		{"short string untouched", "hola", 10, "hola"},
		{"exact length untouched", "hola", 4, "hola"},
		{"cut with marker", "ingenieria de sistemas", 10, "ingenie..."},
		{"zero budget", "hola", 0, ""},
		{"budget smaller than marker", "hola mundo", 2, ".."},
		{"multibyte runes", "Ingeniería Electrónica", 13, "Ingeniería..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.maxChars)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len([]rune(got)), tt.maxChars)
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "hola buenos dias", CollapseWhitespace("  hola \t buenos\n\ndias  "))
	assert.Equal(t, "", CollapseWhitespace("   \n\t "))
}

func TestFirstToken(t *testing.T) {
	assert.Equal(t, "materias", FirstToken("  materias de quinto"))
	assert.Equal(t, "", FirstToken("   "))
	assert.Equal(t, "", FirstToken(""))
}
