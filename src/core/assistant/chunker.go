package assistant

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// DefaultChunkSize is the number of words per chunk.
const DefaultChunkSize = 100

// Chunker splits document text into index-ready segments.
type Chunker interface {
	Split(text string) ([]string, error)
}

// SplitWords splits text into chunks of exactly size whitespace-delimited
// words, except the final chunk which holds the remainder. Rejoining the
// chunks in order with single spaces reproduces the original word sequence.
// Empty or whitespace-only input yields nil.
func SplitWords(text string, size int) []string {
	if size < 1 {
		size = DefaultChunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}

	return chunks
}

// WordChunker is the default chunking strategy: fixed word-count segments in
// original order.
type WordChunker struct {
	Size int
}

func (c WordChunker) Split(text string) ([]string, error) {
	return SplitWords(text, c.Size), nil
}

// RecursiveChunker splits text with langchaingo's recursive character
// splitter. Chunks may overlap, so the word-exact reassembly property of
// WordChunker does not hold; it is an opt-in strategy for prose where
// overlapping context helps retrieval.
type RecursiveChunker struct {
	Size    int
	Overlap int
}

func (c RecursiveChunker) Split(text string) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.Size),
		textsplitter.WithChunkOverlap(c.Overlap),
	)

	return splitter.SplitText(text)
}
