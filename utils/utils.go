// Package utils implements small generic helpers shared across the module.
package utils

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Min returns the minimum of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a <= b {
		return a
	}
	return b
}

// Max returns the maximum of a and b.
func Max[T constraints.Ordered](a, b T) T {
	if a >= b {
		return a
	}
	return b
}

// GetKeys returns the keys of the input map.
// Order is not guaranteed.
func GetKeys[K constraints.Ordered, V any](m map[K]V) (keys []K) {

	keys = make([]K, len(m))

	var i int
	for key := range m {
		keys[i] = key
		i++
	}

	return
}

// GetSortedKeys returns the sorted keys of a map.
func GetSortedKeys[K constraints.Ordered, V any](m map[K]V) (keys []K) {
	keys = GetKeys(m)
	SortSlice(keys)
	return
}

// SortSlice sorts a slice in place.
func SortSlice[T constraints.Ordered](s []T) {
	sort.Slice(s, func(i, j int) bool {
		return s[i] < s[j]
	})
}

// IsInSlice checks if x is in slice.
func IsInSlice[T comparable](x T, slice []T) (v bool) {
	for i := range slice {
		v = v || (slice[i] == x)
	}
	return
}

// AllDistinct returns true if all elements in s are distinct, and false otherwise.
func AllDistinct[T comparable](s []T) bool {
	m := make(map[T]struct{}, len(s))
	for _, si := range s {
		if _, exists := m[si]; exists {
			return false
		}
		m[si] = struct{}{}
	}
	return true
}
