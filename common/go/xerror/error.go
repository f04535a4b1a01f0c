// Package xerror provides small error-handling helpers for tests and
// initialization code.
package xerror

// Unwrap returns t and panics when e is not nil. It keeps fixtures free
// of repetitive error plumbing; never use it on errors a caller could
// recover from.
func Unwrap[T any](t T, e error) T {
	if e != nil {
		panic(e)
	}
	return t
}
