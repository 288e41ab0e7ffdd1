package indexer

import "time"

// Chunk is a contiguous window of extracted manual text.
type Chunk struct {
	Index int    // position within the upload, starting at 0
	Start int    // rune offset of the first rune in the source text
	Text  string // chunk text content
}

// Payload keys written with every stored chunk.
const (
	MetaTitle      = "title"
	MetaChunkID    = "chunk_id"
	MetaText       = "text"
	MetaChunkIndex = "chunk_index"
	MetaUploadID   = "upload_id"
	MetaIngestedAt = "ingested_at"
)

// ingestedAtLayout is fixed width so stored timestamps sort lexically.
const ingestedAtLayout = "2006-01-02T15:04:05.000000000Z"

// StoredChunk is a chunk as read back from the vector index.
type StoredChunk struct {
	ID         string
	Title      string
	Text       string
	Index      int
	UploadID   string
	IngestedAt string
}

// StoredChunkFromMeta decodes a payload written by the Ingestor. Numeric fields
// come back as int64 from Qdrant and float64 from Chroma, so both are accepted.
func StoredChunkFromMeta(id string, meta map[string]any) StoredChunk {
	sc := StoredChunk{ID: id}
	sc.Title, _ = meta[MetaTitle].(string)
	sc.Text, _ = meta[MetaText].(string)
	sc.UploadID, _ = meta[MetaUploadID].(string)
	sc.IngestedAt, _ = meta[MetaIngestedAt].(string)
	if s, ok := meta[MetaChunkID].(string); ok && s != "" {
		sc.ID = s
	}

	switch v := meta[MetaChunkIndex].(type) {
	case int:
		sc.Index = v
	case int64:
		sc.Index = int(v)
	case float64:
		sc.Index = int(v)
	}
	return sc
}

func formatIngestedAt(t time.Time) string {
	return t.UTC().Format(ingestedAtLayout)
}

