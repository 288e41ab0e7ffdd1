package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks manualrag/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata. ID is the chunk identifier;
// adapters that need a different key format derive it from ID.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// Record is a stored point returned by listing operations, without its vector.
type Record struct {
	PointID string
	Meta    map[string]any
}

// Filters restricts an operation to points whose payload field equals the given value.
// A []string value matches any of its elements and must not be empty.
// Multiple entries are combined with AND.
type Filters map[string]any

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search with optional filters.
	Search(ctx context.Context, collection string, query []float32, k int, filters Filters) ([]SearchResult, error)

	// Scroll returns every point matching filters, payload only.
	Scroll(ctx context.Context, collection string, filters Filters) ([]Record, error)

	// ScrollFields is Scroll with each payload trimmed to fields.
	ScrollFields(ctx context.Context, collection string, filters Filters, fields []string) ([]Record, error)

	// Count returns the number of points matching filters.
	Count(ctx context.Context, collection string, filters Filters) (int, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// DeleteByFilter removes every point matching filters. Empty filters are rejected.
	DeleteByFilter(ctx context.Context, collection string, filters Filters) error

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// EnsureCollection creates the collection if needed and validates its vector size.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// Close releases the underlying connection.
	Close() error
}
