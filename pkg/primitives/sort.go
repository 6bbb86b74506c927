package primitives

import "sort"

// SortStrings sorts items lexicographically by code point. The order is
// identical on every platform and run.
func SortStrings(items []string) {
	sort.Strings(items)
}

// SortedStrings returns a sorted copy of items, leaving the input untouched.
func SortedStrings(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	sort.Strings(out)
	return out
}

// StableSortBy sorts items with a stable sort under less. Equal elements keep
// their relative order.
func StableSortBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
