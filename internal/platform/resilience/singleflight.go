package resilience

import "golang.org/x/sync/singleflight"

// Group collapses concurrent calls that share a key into one execution whose
// result every caller receives. The zero value is ready to use.
type Group[T any] struct {
	g singleflight.Group
}

// Do runs fn once per key at a time. shared reports whether the result was
// handed to more than one caller.
func (g *Group[T]) Do(key string, fn func() (T, error)) (val T, shared bool, err error) {
	v, err, shared := g.g.Do(key, func() (any, error) {
		return fn()
	})
	if v != nil {
		val = v.(T)
	}
	return val, shared, err
}

// Forget drops an in-flight key so the next caller starts a fresh execution.
func (g *Group[T]) Forget(key string) {
	g.g.Forget(key)
}
