package fp

import (
	"github.com/IBM/fp-go/option"
)

// Option is a value that may be absent.
type Option[T any] = option.Option[T]

// Some wraps a present value.
func Some[T any](value T) Option[T] {
	return option.Some(value)
}

// None is the absent value.
func None[T any]() Option[T] {
	return option.None[T]()
}

// Lookup reads key from m as an Option.
func Lookup[K comparable, V any](m map[K]V, key K) Option[V] {
	v, ok := m[key]
	if !ok {
		return None[V]()
	}
	return Some(v)
}

// FoldOpt applies onNone or onSome depending on whether a value is present.
func FoldOpt[T, U any](onNone func() U, onSome func(T) U) func(Option[T]) U {
	return option.Fold(onNone, onSome)
}
