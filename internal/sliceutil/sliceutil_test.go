package sliceutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicate(t *testing.T) {
	t.Run("removes duplicates preserving order", func(t *testing.T) {
		input := []string{"sistemas", "industrial", "sistemas", "civil", "industrial"}
		got := Deduplicate(input, func(s string) string { return s })
		assert.Equal(t, []string{"sistemas", "industrial", "civil"}, got)
	})

	t.Run("empty slice", func(t *testing.T) {
		got := Deduplicate([]string{}, func(s string) string { return s })
		assert.Empty(t, got)
	})

	t.Run("struct key extraction", func(t *testing.T) {
		type call struct {
			Endpoint string
			Priority int
		}
		input := []call{
			{Endpoint: "programs", Priority: 1},
			{Endpoint: "programs", Priority: 2},
			{Endpoint: "curriculum", Priority: 3},
		}
		got := Deduplicate(input, func(c call) string { return c.Endpoint })
		assert.Len(t, got, 2)
		assert.Equal(t, 1, got[0].Priority, "first occurrence kept")
	})
}

func TestFirstN(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2, 3}, FirstN(items, 3))
	assert.Equal(t, items, FirstN(items, 10))
	assert.Empty(t, FirstN(items, 0))
	assert.Empty(t, FirstN(items, -1))
}
