package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"manualrag/internal/contextutil"
)

// PayloadText is the metadata key carried as the Chroma document body instead of metadata.
const PayloadText = "text"

// ChromaStore implements VectorStore on a Chroma server.
type ChromaStore struct {
	client chromago.Client

	mu          sync.Mutex
	collections map[string]chromago.Collection
}

// NewChromaStore connects to the Chroma HTTP API at baseURL.
func NewChromaStore(baseURL string) (*ChromaStore, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}
	return &ChromaStore{
		client:      client,
		collections: make(map[string]chromago.Collection),
	}, nil
}

func (s *ChromaStore) collection(ctx context.Context, name string) (chromago.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	c, err := s.client.GetOrCreateCollection(ctx, name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("hnsw:space", "cosine"),
				chromago.NewStringAttribute("created_by", "manualrag"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %s: %w", name, err)
	}
	s.collections[name] = c
	return c, nil
}

// Upsert adds points; the "text" metadata entry becomes the Chroma document.
func (s *ChromaStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}
	c, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	ids := make([]chromago.DocumentID, 0, len(points))
	texts := make([]string, 0, len(points))
	embs := make([]embeddings.Embedding, 0, len(points))
	metas := make([]chromago.DocumentMetadata, 0, len(points))
	for _, p := range points {
		text, _ := p.Meta[PayloadText].(string)
		ids = append(ids, chromago.DocumentID(p.ID))
		texts = append(texts, text)
		embs = append(embs, embeddings.NewEmbeddingFromFloat32(p.Vec))
		metas = append(metas, toChromaMetadata(p.Meta))
	}

	err = c.Upsert(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert documents", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert documents: %w", err)
	}
	logger.DebugContext(ctx, "upserted documents", "collection", collection, "count", len(points))
	return nil
}

// Search queries by embedding. Chroma returns cosine distance; Score is 1 - distance.
func (s *ChromaStore) Search(ctx context.Context, collection string, query []float32, k int, filters Filters) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	c, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	opts := []chromago.CollectionQueryOption{
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(query)),
		chromago.WithNResults(k),
	}
	if where := buildWhere(filters); where != nil {
		opts = append(opts, chromago.WithWhereQuery(where))
	}

	res, err := c.Query(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chroma: %w", err)
	}

	idGroups := res.GetIDGroups()
	if len(idGroups) == 0 {
		return nil, nil
	}
	docs := res.GetDocumentsGroups()
	metas := res.GetMetadatasGroups()
	dists := res.GetDistancesGroups()

	results := make([]SearchResult, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		meta := map[string]any{}
		if len(metas) > 0 && i < len(metas[0]) {
			meta = fromChromaMetadata(metas[0][i])
		}
		if len(docs) > 0 && i < len(docs[0]) && docs[0][i] != nil {
			meta[PayloadText] = docs[0][i].ContentString()
		}
		var score float32
		if len(dists) > 0 && i < len(dists[0]) {
			score = 1 - float32(dists[0][i])
		}
		results = append(results, SearchResult{PointID: string(id), Score: score, Meta: meta})
	}
	return results, nil
}

// Scroll fetches every matching document.
func (s *ChromaStore) Scroll(ctx context.Context, collection string, filters Filters) ([]Record, error) {
	return s.get(ctx, collection, filters, chromago.WithIncludeGet(chromago.IncludeDocuments, chromago.IncludeMetadatas))
}

// ScrollFields fetches matching metadata only and keeps the named fields.
func (s *ChromaStore) ScrollFields(ctx context.Context, collection string, filters Filters, fields []string) ([]Record, error) {
	records, err := s.get(ctx, collection, filters, chromago.WithIncludeGet(chromago.IncludeMetadatas))
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Meta = pick(records[i].Meta, fields)
	}
	return records, nil
}

func (s *ChromaStore) get(ctx context.Context, collection string, filters Filters, opts ...chromago.CollectionGetOption) ([]Record, error) {
	c, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	if where := buildWhere(filters); where != nil {
		opts = append(opts, chromago.WithWhereGet(where))
	}
	res, err := c.Get(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chroma: %w", err)
	}

	ids := res.GetIDs()
	docs := res.GetDocuments()
	metas := res.GetMetadatas()
	records := make([]Record, 0, len(ids))
	for i, id := range ids {
		meta := map[string]any{}
		if i < len(metas) {
			meta = fromChromaMetadata(metas[i])
		}
		if i < len(docs) && docs[i] != nil {
			meta[PayloadText] = docs[i].ContentString()
		}
		records = append(records, Record{PointID: string(id), Meta: meta})
	}
	return records, nil
}

// Count returns the number of matching documents.
func (s *ChromaStore) Count(ctx context.Context, collection string, filters Filters) (int, error) {
	if len(filters) == 0 {
		c, err := s.collection(ctx, collection)
		if err != nil {
			return 0, err
		}
		n, err := c.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count items in collection: %w", err)
		}
		return int(n), nil
	}
	records, err := s.Scroll(ctx, collection, filters)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Delete removes documents by ID.
func (s *ChromaStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	c, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}
	docIDs := make([]chromago.DocumentID, 0, len(ids))
	for _, id := range ids {
		docIDs = append(docIDs, chromago.DocumentID(id))
	}
	if err := c.Delete(ctx, chromago.WithIDsDelete(docIDs...)); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// DeleteByFilter removes every document matching filters.
func (s *ChromaStore) DeleteByFilter(ctx context.Context, collection string, filters Filters) error {
	where := buildWhere(filters)
	if where == nil {
		return errors.New("refusing to delete with empty filter")
	}
	c, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}
	if err := c.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete documents by filter: %w", err)
	}
	return nil
}

// CollectionExists checks server reachability and whether the collection exists.
func (s *ChromaStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	if err := s.client.Heartbeat(ctx); err != nil {
		return false, fmt.Errorf("chroma heartbeat failed: %w", err)
	}
	if _, err := s.client.GetCollection(ctx, collection); err != nil {
		return false, nil
	}
	return true, nil
}

// EnsureCollection creates the collection. Chroma fixes the dimension on first
// insert, so vectorSize is not checked up front.
func (s *ChromaStore) EnsureCollection(ctx context.Context, collection string, _ int) error {
	_, err := s.collection(ctx, collection)
	return err
}

// Close closes the HTTP client.
func (s *ChromaStore) Close() error {
	return s.client.Close()
}

func buildWhere(filters Filters) chromago.WhereClause {
	if len(filters) == 0 {
		return nil
	}
	clauses := make([]chromago.WhereClause, 0, len(filters))
	for k, v := range filters {
		if values, ok := v.([]string); ok {
			clauses = append(clauses, chromago.InString(k, values...))
			continue
		}
		clauses = append(clauses, chromago.EqString(k, fmt.Sprint(v)))
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return chromago.And(clauses...)
}

func toChromaMetadata(meta map[string]any) chromago.DocumentMetadata {
	attrs := make([]*chromago.MetaAttribute, 0, len(meta))
	for k, v := range meta {
		if k == PayloadText {
			continue
		}
		switch val := v.(type) {
		case string:
			attrs = append(attrs, chromago.NewStringAttribute(k, val))
		case int:
			attrs = append(attrs, chromago.NewIntAttribute(k, int64(val)))
		case int64:
			attrs = append(attrs, chromago.NewIntAttribute(k, val))
		case float64:
			attrs = append(attrs, chromago.NewFloatAttribute(k, val))
		case bool:
			attrs = append(attrs, chromago.NewBoolAttribute(k, val))
		default:
			attrs = append(attrs, chromago.NewStringAttribute(k, fmt.Sprint(val)))
		}
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// fromChromaMetadata converts metadata through its JSON form; DocumentMetadata
// has no exported map accessor.
func fromChromaMetadata(md chromago.DocumentMetadata) map[string]any {
	out := map[string]any{}
	if md == nil {
		return out
	}
	raw, err := json.Marshal(md)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}
