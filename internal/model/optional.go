package model

// Optional distinguishes "not provided by this layer" from "provided as the
// zero value", which the layered merge in ConfigResolver (§4.1, P1) depends
// on: a later layer only wins when it explicitly set the field.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Merge returns o if it is set, else fallback.
func (o Optional[T]) Merge(fallback Optional[T]) Optional[T] {
	if o.Set {
		return o
	}
	return fallback
}

// Or returns the set value, or def if unset.
func (o Optional[T]) Or(def T) T {
	if o.Set {
		return o.Value
	}
	return def
}
