package docstore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/goccy/go-json"
)

// Collection is a typed view over one collection of a Store.
type Collection[T any] struct {
	store Store
	name  string
}

func NewCollection[T any](store Store, name string) Collection[T] {
	return Collection[T]{
		store: store,
		name:  name,
	}
}

func (c Collection[T]) Name() string {
	return c.name
}

func (c Collection[T]) Create(ctx context.Context, id string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s document: %w", c.name, err)
	}
	return c.store.Create(ctx, c.name, id, body)
}

func (c Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var v T
	body, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decoding %s document %q: %w", c.name, id, err)
	}
	return v, nil
}

func (c Collection[T]) List(ctx context.Context) ([]T, error) {
	bodies, err := c.store.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return c.decodeAll(bodies)
}

func (c Collection[T]) Update(ctx context.Context, id string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s document: %w", c.name, err)
	}
	return c.store.Update(ctx, c.name, id, body)
}

func (c Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

func (c Collection[T]) Query(ctx context.Context, field string, value any) ([]T, error) {
	bodies, err := c.store.Query(ctx, c.name, field, value)
	if err != nil {
		return nil, err
	}
	return c.decodeAll(bodies)
}

func (c Collection[T]) decodeAll(bodies [][]byte) ([]T, error) {
	out := make([]T, 0, len(bodies))
	for _, body := range bodies {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("decoding %s document: %w", c.name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// FieldEquals reports whether the top-level field of a JSON document
// equals value once both are JSON encoded. Backends without native
// equality predicates use it to filter documents.
func FieldEquals(body []byte, field string, value any) (bool, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return false, fmt.Errorf("decoding document: %w", err)
	}
	got, ok := doc[field]
	if !ok {
		return false, nil
	}
	want, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encoding value: %w", err)
	}

	var a, b any
	if err := json.Unmarshal(got, &a); err != nil {
		return false, fmt.Errorf("decoding field %q: %w", field, err)
	}
	if err := json.Unmarshal(want, &b); err != nil {
		return false, fmt.Errorf("decoding value: %w", err)
	}
	return reflect.DeepEqual(a, b), nil
}
