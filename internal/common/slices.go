package common

// IsEmpty reports whether s has no elements.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// IsMultiple reports whether s has more than one element, as when several
// variants of a union are selected.
func IsMultiple[S ~[]E, E any](s S) bool {
	return len(s) > 1
}

// First returns the first element of s. ok is false for an empty slice.
func First[S ~[]E, E any](s S) (first E, ok bool) {
	if IsEmpty(s) {
		return first, false
	}

	return s[0], true
}
