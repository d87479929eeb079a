package utils

import "github.com/tiendc/go-deepcopy"

// Clone returns a deep copy of v. Every value crossing the store boundary is
// cloned so callers can never mutate store-internal state by reference.
func Clone[T any](v T) T {
	var out T
	if err := deepcopy.Copy(&out, &v); err != nil {
		panic(err)
	}
	return out
}

// CloneSlice deep-copies a slice, returning nil for nil input.
func CloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i := range in {
		out[i] = Clone(in[i])
	}
	return out
}
