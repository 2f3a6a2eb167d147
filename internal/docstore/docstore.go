// Package docstore defines the document collections the application reads
// and writes, independent of the backend holding them.
package docstore

//go:generate mockgen -destination=../docmock/store.go -package=docmock . Store

import (
	"context"
	"errors"
)

// Collection names.
const (
	Users       = "users"
	Recipes     = "recipes"
	Ratings     = "ratings"
	Credentials = "credentials"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document already exists")
)

// Store holds JSON documents grouped in collections. Documents within a
// collection are returned in insertion order.
type Store interface {
	// Create stores a new document. It returns ErrConflict if the id is taken.
	Create(ctx context.Context, collection, id string, body []byte) error
	// Get returns ErrNotFound if the document does not exist.
	Get(ctx context.Context, collection, id string) ([]byte, error)
	List(ctx context.Context, collection string) ([][]byte, error)
	// Update replaces an existing document. It returns ErrNotFound if the
	// document does not exist.
	Update(ctx context.Context, collection, id string, body []byte) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Query returns the documents whose top-level field equals value.
	Query(ctx context.Context, collection, field string, value any) ([][]byte, error)
}
