package indexer

import (
	"math"
	"sort"
	"unicode/utf8"
)

// ChunkStats summarizes chunk lengths in runes.
type ChunkStats struct {
	Count int     `json:"count"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Mean  float64 `json:"mean"`
	P95   int     `json:"p95"`
}

// ComputeChunkStats returns length statistics for chunks.
func ComputeChunkStats(chunks []Chunk) ChunkStats {
	if len(chunks) == 0 {
		return ChunkStats{}
	}

	lengths := make([]int, len(chunks))
	total := 0
	for i, c := range chunks {
		lengths[i] = utf8.RuneCountInString(c.Text)
		total += lengths[i]
	}
	sort.Ints(lengths)

	return ChunkStats{
		Count: len(lengths),
		Min:   lengths[0],
		Max:   lengths[len(lengths)-1],
		Mean:  math.Round(float64(total)/float64(len(lengths))*100) / 100,
		P95:   percentile(lengths, 0.95),
	}
}

// percentile uses nearest-rank on sorted values.
func percentile(sorted []int, p float64) int {
	rank := int(math.Ceil(p * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
