package models

import "gorm.io/datatypes"

// Entry is an embedded list element addressable by its own id.
type Entry interface {
	EntryID() string
}

// Prepend returns s with v inserted at the head.
func Prepend[T any](s datatypes.JSONSlice[T], v T) datatypes.JSONSlice[T] {
	out := make(datatypes.JSONSlice[T], 0, len(s)+1)
	out = append(out, v)
	return append(out, s...)
}

// IndexFunc returns the index of the first element matching match, or -1.
func IndexFunc[T any](s datatypes.JSONSlice[T], match func(T) bool) int {
	for i, v := range s {
		if match(v) {
			return i
		}
	}
	return -1
}

// RemoveFunc removes the first element matching match.
// The second result reports whether anything was removed.
func RemoveFunc[T any](s datatypes.JSONSlice[T], match func(T) bool) (datatypes.JSONSlice[T], bool) {
	i := IndexFunc(s, match)
	if i < 0 {
		return s, false
	}
	out := make(datatypes.JSONSlice[T], 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...), true
}

// RemoveByID removes the entry with the given id.
func RemoveByID[T Entry](s datatypes.JSONSlice[T], id string) (datatypes.JSONSlice[T], bool) {
	return RemoveFunc(s, func(v T) bool { return v.EntryID() == id })
}

func nonNil[T any](s datatypes.JSONSlice[T]) datatypes.JSONSlice[T] {
	if s == nil {
		return datatypes.JSONSlice[T]{}
	}
	return s
}
