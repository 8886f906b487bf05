// Package ptr has small helpers for the optional fields of request inputs.
package ptr

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// NonZero reports whether p is set to something other than T's zero value.
func NonZero[T comparable](p *T) bool {
	var zero T
	return p != nil && *p != zero
}
