package indexer

import (
	"fmt"
	"strings"
	"unicode"

	"manualrag/internal/apperr"
)

// Chunker splits text into overlapping windows measured in runes.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a Chunker producing windows of at most size runes where
// consecutive windows share exactly overlap runes.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, apperr.Chunking("new chunker", fmt.Errorf("chunk size must be positive, got %d", size))
	}
	if overlap < 0 || overlap >= size {
		return nil, apperr.Chunking("new chunker", fmt.Errorf("overlap must be in [0, %d), got %d", size, overlap))
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the maximum chunk length in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of runes shared by consecutive chunks.
func (c *Chunker) Overlap() int { return c.overlap }

// Split returns the ordered chunks of text. Blank text yields no chunks.
//
// Each window ends at the last paragraph break it can, then line break, then
// sentence end, then word boundary, searching only the tail of the window so
// chunks stay close to full size. The next window starts exactly overlap runes
// before the previous end, so dropping the first overlap runes of every chunk
// after the first and concatenating reproduces text.
func (c *Chunker) Split(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)

	var chunks []Chunk
	start := 0
	for {
		end := start + c.size
		if end >= n {
			chunks = append(chunks, Chunk{Index: len(chunks), Start: start, Text: string(runes[start:n])})
			return chunks
		}

		cut := c.findCut(runes, start, end)
		chunks = append(chunks, Chunk{Index: len(chunks), Start: start, Text: string(runes[start:cut])})
		start = cut - c.overlap
	}
}

// findCut picks the exclusive end of the window [start, end). The cut is kept
// above start+overlap so the following window always advances.
func (c *Chunker) findCut(runes []rune, start, end int) int {
	lo := start + c.overlap + 1
	if tail := end - c.lookback(); tail > lo {
		lo = tail
	}
	if lo > end {
		return end
	}

	for _, boundary := range []func([]rune, int) bool{
		isParagraphEnd,
		isLineEnd,
		isSentenceEnd,
		isWordEnd,
	} {
		for p := end; p >= lo; p-- {
			if boundary(runes, p) {
				return p
			}
		}
	}
	return end
}

// lookback is how far back from the window end a boundary may be taken.
func (c *Chunker) lookback() int {
	if lb := c.size / 4; lb > 0 {
		return lb
	}
	return 1
}

// The predicates below report whether a cut at p (exclusive) lands right after
// the given kind of boundary.

func isParagraphEnd(r []rune, p int) bool {
	return p >= 2 && r[p-1] == '\n' && r[p-2] == '\n'
}

func isLineEnd(r []rune, p int) bool {
	return p >= 1 && r[p-1] == '\n'
}

func isSentenceEnd(r []rune, p int) bool {
	if p < 2 || !unicode.IsSpace(r[p-1]) {
		return false
	}
	switch r[p-2] {
	case '.', '!', '?':
		return true
	}
	return false
}

func isWordEnd(r []rune, p int) bool {
	return p >= 1 && unicode.IsSpace(r[p-1])
}
