package fp

// Pipe applies a sequence of checks or transformations, stopping at the first failure.
func Pipe[T any](value T, transforms ...func(T) Result[T]) Result[T] {
	result := Success(value)
	for _, t := range transforms {
		if IsFailure(result) {
			return result
		}
		result = FlatMap(t)(result)
	}
	return result
}

// Then chains a transformation that returns a new type.
func Then[A, B any](result Result[A], f func(A) Result[B]) Result[B] {
	return FlatMap(f)(result)
}

// Check lifts a validator into a pipeline step that keeps the value unchanged.
func Check[T any](v Validator[T]) func(T) Result[T] {
	return func(value T) Result[T] {
		if err := v(value); err != nil {
			return Failure[T](err)
		}
		return Success(value)
	}
}
