package decompose

// Optional is a value that may be absent.
type Optional[T any] struct {
	Value T
	Found bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Found: true}
}

// None is the absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Ptr returns a pointer to the value, or nil when absent.
func (o Optional[T]) Ptr() *T {
	if !o.Found {
		return nil
	}
	v := o.Value
	return &v
}
