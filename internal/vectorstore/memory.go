package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore using brute-force cosine similarity.
// It backs VECTOR_BACKEND=memory and the pipeline tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	dimension int
	order     []string
	points    map[string]Point
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (s *MemoryStore) collection(name string) (*memCollection, error) {
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", name)
	}
	return c, nil
}

// Upsert inserts or replaces points. Vectors must match the collection dimension.
func (s *MemoryStore) Upsert(_ context.Context, collection string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	for _, p := range points {
		if len(p.Vec) != c.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", c.dimension, len(p.Vec))
		}
	}
	for _, p := range points {
		if _, exists := c.points[p.ID]; !exists {
			c.order = append(c.order, p.ID)
		}
		c.points[p.ID] = Point{ID: p.ID, Vec: append([]float32(nil), p.Vec...), Meta: copyMeta(p.Meta)}
	}
	return nil
}

// Search ranks matching points by cosine similarity to query.
func (s *MemoryStore) Search(_ context.Context, collection string, query []float32, k int, filters Filters) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(c.order))
	for _, id := range c.order {
		p := c.points[id]
		if !matches(p.Meta, filters) {
			continue
		}
		results = append(results, SearchResult{PointID: id, Score: cosine(query, p.Vec), Meta: copyMeta(p.Meta)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Scroll returns matching points in insertion order.
func (s *MemoryStore) Scroll(_ context.Context, collection string, filters Filters) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	var records []Record
	for _, id := range c.order {
		p := c.points[id]
		if matches(p.Meta, filters) {
			records = append(records, Record{PointID: id, Meta: copyMeta(p.Meta)})
		}
	}
	return records, nil
}

// ScrollFields returns matching points in insertion order with payloads trimmed to fields.
func (s *MemoryStore) ScrollFields(ctx context.Context, collection string, filters Filters, fields []string) ([]Record, error) {
	records, err := s.Scroll(ctx, collection, filters)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Meta = pick(records[i].Meta, fields)
	}
	return records, nil
}

// Count returns the number of matching points.
func (s *MemoryStore) Count(ctx context.Context, collection string, filters Filters) (int, error) {
	records, err := s.Scroll(ctx, collection, filters)
	return len(records), err
}

// Delete removes points by ID. Unknown IDs are ignored.
func (s *MemoryStore) Delete(_ context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	c.remove(func(p Point) bool {
		_, ok := drop[p.ID]
		return ok
	})
	return nil
}

// DeleteByFilter removes every point matching filters.
func (s *MemoryStore) DeleteByFilter(_ context.Context, collection string, filters Filters) error {
	if len(filters) == 0 {
		return errors.New("refusing to delete with empty filter")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	c.remove(func(p Point) bool { return matches(p.Meta, filters) })
	return nil
}

// CollectionExists checks if a collection exists.
func (s *MemoryStore) CollectionExists(_ context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok, nil
}

// EnsureCollection creates the collection or validates its dimension.
func (s *MemoryStore) EnsureCollection(_ context.Context, collection string, vectorSize int) error {
	if vectorSize <= 0 {
		return errors.New("invalid dimension")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[collection]; ok {
		if c.dimension != vectorSize {
			return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, c.dimension)
		}
		return nil
	}
	s.collections[collection] = &memCollection{dimension: vectorSize, points: make(map[string]Point)}
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func (c *memCollection) remove(drop func(Point) bool) {
	kept := c.order[:0]
	for _, id := range c.order {
		if p := c.points[id]; drop(p) {
			delete(c.points, id)
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
}

func matches(meta map[string]any, filters Filters) bool {
	for k, want := range filters {
		got, ok := meta[k]
		if !ok {
			return false
		}
		if values, isSet := want.([]string); isSet {
			if !slices.Contains(values, fmt.Sprint(got)) {
				return false
			}
			continue
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// pick keeps only the named entries of meta.
func pick(meta map[string]any, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := meta[f]; ok {
			out[f] = v
		}
	}
	return out
}

func copyMeta(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
