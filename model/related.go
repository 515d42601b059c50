package model

import "context"

// Related marks a one-to-one or many-to-one relationship field (spec
// §4.5 point 4). It holds the related row once resolved; the metadata
// compiler recognizes this wrapper by its generic instantiation name
// ("model.Related[...]") when walking a struct's fields.
type Related[T any] struct {
	value  *T
	loaded bool
}

// Get returns the related value and whether it has been resolved.
func (r *Related[T]) Get() (*T, bool) { return r.value, r.loaded }

// Set stores a resolved related value.
func (r *Related[T]) Set(v *T) { r.value = v; r.loaded = true }

// Loaded reports whether Set has been called.
func (r *Related[T]) Loaded() bool { return r.loaded }

// RelatedMany marks a one-to-many or many-to-many relationship field.
type RelatedMany[T any] struct {
	values []T
	loaded bool
}

// Get returns the related collection and whether it has been resolved.
func (r *RelatedMany[T]) Get() ([]T, bool) { return r.values, r.loaded }

// Set stores a resolved related collection.
func (r *RelatedMany[T]) Set(v []T) { r.values = v; r.loaded = true }

// Loaded reports whether Set has been called.
func (r *RelatedMany[T]) Loaded() bool { return r.loaded }

// Loader resolves a Lazy[T] field's value on demand. Generated query
// helpers assign this before returning a hydrated row; application code
// never constructs one directly.
type Loader[T any] func(ctx context.Context) (*T, error)

// Lazy marks a relationship field resolved on first access rather than
// at hydration time (spec §3.5 relationship "loading strategy").
type Lazy[T any] struct {
	loader Loader[T]
	value  *T
	loaded bool
}

// SetLoader installs the function used to resolve this field on demand;
// called by generated hydration code, not application code.
func (l *Lazy[T]) SetLoader(fn Loader[T]) { l.loader = fn }

// Load resolves and caches the related value, calling the installed
// loader at most once.
func (l *Lazy[T]) Load(ctx context.Context) (*T, error) {
	if l.loaded {
		return l.value, nil
	}
	if l.loader == nil {
		return nil, nil
	}
	v, err := l.loader(ctx)
	if err != nil {
		return nil, err
	}
	l.value = v
	l.loaded = true
	return v, nil
}

// Loaded reports whether Load has resolved a value.
func (l *Lazy[T]) Loaded() bool { return l.loaded }
