package indexer

import "testing"

func TestComputeChunkStats(t *testing.T) {
	tests := []struct {
		name   string
		chunks []Chunk
		want   ChunkStats
	}{
		{name: "empty", want: ChunkStats{}},
		{
			name:   "single",
			chunks: []Chunk{{Text: "héllo"}},
			want:   ChunkStats{Count: 1, Min: 5, Max: 5, Mean: 5, P95: 5},
		},
		{
			name:   "several",
			chunks: []Chunk{{Text: "aaaa"}, {Text: "a"}, {Text: "aaaaaaaaaa"}, {Text: "aa"}},
			want:   ChunkStats{Count: 4, Min: 1, Max: 10, Mean: 4.25, P95: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeChunkStats(tt.chunks); got != tt.want {
				t.Errorf("ComputeChunkStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
