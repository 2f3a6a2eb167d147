// Package memory is an in-process document store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/matt-dz/recetario/internal/docstore"
)

type collection struct {
	order []string
	docs  map[string][]byte
}

type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

var _ docstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		collections: make(map[string]*collection),
	}
}

func (s *Store) collection(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string][]byte)}
		s.collections[name] = c
	}
	return c
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

func (s *Store) Create(ctx context.Context, name, id string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	if _, ok := c.docs[id]; ok {
		return fmt.Errorf("%s/%s: %w", name, id, docstore.ErrConflict)
	}
	c.docs[id] = clone(body)
	c.order = append(c.order, id)
	return nil
}

func (s *Store) Get(ctx context.Context, name, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", name, id, docstore.ErrNotFound)
	}
	body, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", name, id, docstore.ErrNotFound)
	}
	return clone(body), nil
}

func (s *Store) List(ctx context.Context, name string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return [][]byte{}, nil
	}
	out := make([][]byte, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.docs[id]))
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, name, id string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("%s/%s: %w", name, id, docstore.ErrNotFound)
	}
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%s/%s: %w", name, id, docstore.ErrNotFound)
	}
	c.docs[id] = clone(body)
	return nil
}

func (s *Store) Delete(ctx context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Query(ctx context.Context, name, field string, value any) ([][]byte, error) {
	docs, err := s.List(ctx, name)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0)
	for _, body := range docs {
		ok, err := docstore.FieldEquals(body, field, value)
		if err != nil {
			return nil, fmt.Errorf("querying %s: %w", name, err)
		}
		if ok {
			out = append(out, body)
		}
	}
	return out, nil
}
