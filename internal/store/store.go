package store

import (
	"context"
	"errors"
)

// ErrNoDocument is returned when an id does not resolve in a collection, or
// when an update/delete matches nothing.
var ErrNoDocument = errors.New("store: no matching document")

// Update describes a single-document mutation. Every populated map is applied
// atomically to one document in one store round trip. Paths are top-level
// field names.
//
//   - Set replaces field values.
//   - Push appends a value to an array field.
//   - AddToSet appends only when the value is not already present, so a
//     retried link never duplicates.
//   - Pull removes matching array elements; a scalar matcher removes elements
//     equal to it, a map matcher removes embedded documents whose fields all
//     match. Pulling an absent element is a no-op, so a retried unlink never
//     errors.
type Update struct {
	Set      map[string]interface{}
	Push     map[string]interface{}
	Pull     map[string]interface{}
	AddToSet map[string]interface{}
}

// Query is a conjunction of field predicates for Find.
type Query struct {
	Eq       map[string]interface{} // field equals value
	Contains map[string]interface{} // array field contains value
}

// Sort orders Find results by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// Store is the minimal document-database surface the repositories and the
// relationship coordinator are written against. Implementations guarantee
// atomicity per document only; there are no multi-document transactions.
type Store interface {
	// Get decodes the document with the given id into out, or ErrNoDocument.
	Get(ctx context.Context, collection, id string, out interface{}) error

	// Find decodes all matching documents into out, a pointer to a slice.
	Find(ctx context.Context, collection string, q Query, sort *Sort, out interface{}) error

	// Insert persists a new document. The caller assigns the id.
	Insert(ctx context.Context, collection string, doc interface{}) error

	// UpdateByID applies u to the document with the given id, or ErrNoDocument.
	UpdateByID(ctx context.Context, collection, id string, u Update) error

	// DeleteByID removes the document with the given id, or ErrNoDocument.
	DeleteByID(ctx context.Context, collection, id string) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
