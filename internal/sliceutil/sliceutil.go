// Package sliceutil provides generic slice manipulation utilities.
package sliceutil

// Deduplicate removes duplicate items from a slice while preserving order.
// The keyFunc extracts a unique key from each item for comparison.
// Only the first occurrence of each key is kept.
//
// Example:
//
//	programs := []storage.Program{{ID: "derecho"}, {ID: "enfermeria"}, {ID: "derecho"}}
//	unique := sliceutil.Deduplicate(programs, func(p storage.Program) string { return p.ID })
//	// Result: [{ID: "derecho"}, {ID: "enfermeria"}]
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]bool, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		key := keyFunc(item)
		if !seen[key] {
			seen[key] = true
			result = append(result, item)
		}
	}

	return result
}

// FirstN returns at most the first n items of the slice. The original
// backing array is shared; callers must not mutate the result.
func FirstN[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) <= n {
		return items
	}
	return items[:n]
}
