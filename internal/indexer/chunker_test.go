package indexer

import (
	"errors"
	"strings"
	"testing"

	"manualrag/internal/apperr"
)

func TestNewChunker(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "defaults", size: 10000, overlap: 1000},
		{name: "no overlap", size: 10, overlap: 0},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative overlap", size: 10, overlap: -1, wantErr: true},
		{name: "overlap equals size", size: 10, overlap: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChunker(tt.size, tt.overlap)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrChunking) {
					t.Fatalf("NewChunker() error = %v, want ErrChunking", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewChunker() unexpected error: %v", err)
			}
			if c.Size() != tt.size || c.Overlap() != tt.overlap {
				t.Errorf("NewChunker() = (%d, %d), want (%d, %d)", c.Size(), c.Overlap(), tt.size, tt.overlap)
			}
		})
	}
}

func mustChunker(t *testing.T, size, overlap int) *Chunker {
	t.Helper()
	c, err := NewChunker(size, overlap)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// reassemble undoes the overlap and must reproduce the source text.
func reassemble(chunks []Chunk, overlap int) string {
	var sb strings.Builder
	for i, c := range chunks {
		r := []rune(c.Text)
		if i > 0 {
			r = r[overlap:]
		}
		sb.WriteString(string(r))
	}
	return sb.String()
}

func TestChunker_Split_WorkedExample(t *testing.T) {
	c := mustChunker(t, 10000, 1000)
	text := strings.Repeat("x", 25000)

	chunks := c.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("Split() produced %d chunks, want 3", len(chunks))
	}

	wantStarts := []int{0, 9000, 18000}
	wantLens := []int{10000, 10000, 7000}
	for i, ch := range chunks {
		if ch.Index != i || ch.Start != wantStarts[i] || len([]rune(ch.Text)) != wantLens[i] {
			t.Errorf("chunk %d = {Index:%d Start:%d len:%d}, want {%d %d %d}",
				i, ch.Index, ch.Start, len([]rune(ch.Text)), i, wantStarts[i], wantLens[i])
		}
	}
}

func TestChunker_Split(t *testing.T) {
	prose := strings.Repeat("The pump must be primed before use. Check the seal.\n", 40) +
		"\n\n" + strings.Repeat("Tighten each bolt firmly! Then verify torque? ", 60)

	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
		want    int // expected chunk count, -1 to skip
	}{
		{name: "empty", size: 100, overlap: 10, text: "", want: 0},
		{name: "whitespace", size: 100, overlap: 10, text: " \n\t", want: 0},
		{name: "shorter than window", size: 100, overlap: 10, text: "short manual", want: 1},
		{name: "exactly one window", size: 5, overlap: 1, text: "abcde", want: 1},
		{name: "prose with boundaries", size: 500, overlap: 50, text: prose, want: -1},
		{name: "no overlap", size: 300, overlap: 0, text: prose, want: -1},
		{name: "multibyte runes", size: 7, overlap: 2, text: strings.Repeat("ÄÖÜ日本語", 9), want: -1},
		{name: "tiny window", size: 2, overlap: 1, text: "a b c d e f", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustChunker(t, tt.size, tt.overlap)
			chunks := c.Split(tt.text)

			if tt.want >= 0 && len(chunks) != tt.want {
				t.Fatalf("Split() produced %d chunks, want %d", len(chunks), tt.want)
			}
			if len(chunks) == 0 {
				return
			}

			for i, ch := range chunks {
				if n := len([]rune(ch.Text)); n > tt.size {
					t.Errorf("chunk %d has %d runes, exceeds %d", i, n, tt.size)
				}
				if ch.Index != i {
					t.Errorf("chunk %d has Index %d", i, ch.Index)
				}
				if i > 0 {
					prev := []rune(chunks[i-1].Text)
					cur := []rune(ch.Text)
					if string(prev[len(prev)-tt.overlap:]) != string(cur[:tt.overlap]) {
						t.Errorf("chunks %d and %d do not overlap by %d runes", i-1, i, tt.overlap)
					}
					if ch.Start <= chunks[i-1].Start {
						t.Errorf("chunk %d does not advance: start %d after %d", i, ch.Start, chunks[i-1].Start)
					}
				}
			}

			if got := reassemble(chunks, tt.overlap); got != tt.text {
				t.Errorf("reassembled text differs from source (len %d vs %d)", len(got), len(tt.text))
			}
		})
	}
}

func TestChunker_Split_PrefersBoundaries(t *testing.T) {
	c := mustChunker(t, 40, 5)

	tests := []struct {
		name    string
		text    string
		wantEnd string
	}{
		{name: "paragraph", text: "Intro line one.\nline two here\n\nNext section starts here and goes on.", wantEnd: "\n\n"},
		{name: "line", text: "Step one is to open the top lid\nStep two is to drain the tank fully.", wantEnd: "\n"},
		{name: "sentence", text: "Open the drain valve very slowly. Then wait for the gauge to settle.", wantEnd: ". "},
		{name: "word", text: "remove the cover plate then disconnect the battery terminal", wantEnd: " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := c.Split(tt.text)
			if len(chunks) < 2 {
				t.Fatalf("Split() produced %d chunks, want at least 2", len(chunks))
			}
			if !strings.HasSuffix(chunks[0].Text, tt.wantEnd) {
				t.Errorf("first chunk %q does not end at %q boundary", chunks[0].Text, tt.wantEnd)
			}
		})
	}
}

func TestChunker_Split_Deterministic(t *testing.T) {
	c := mustChunker(t, 64, 16)
	text := strings.Repeat("Replace the filter every 200 hours. Inspect hoses.\n\n", 25)

	first := c.Split(text)
	for i := 0; i < 5; i++ {
		again := c.Split(text)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d chunks, first run %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d chunk %d differs", i, j)
			}
		}
	}
}
