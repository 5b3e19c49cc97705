package port

import "context"

// Collection names shared by every store backend.
const (
	CollectionProducts    = "products"
	CollectionSales       = "sales"
	CollectionUsers       = "users"
	CollectionCurrentUser = "current_user"
)

type CollectionStore interface {
	// Get returns the serialized collection, ok is false when the key was never written
	Get(ctx context.Context, name string) (value string, ok bool, err error)

	// Set replaces the whole collection
	Set(ctx context.Context, name string, value string) error

	// Delete removes the collection; deleting a missing key is not an error
	Delete(ctx context.Context, name string) error

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
}
