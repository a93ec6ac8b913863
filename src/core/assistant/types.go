package assistant

import "time"

// Chunk is the unit of indexing and retrieval: a bounded span of words from
// one document, stored with its embedding vector. Chunks are immutable once
// written; replacing a document deletes its chunks and writes a new set.
type Chunk struct {
	Source   string    `json:"source"`
	Sequence int       `json:"sequence"`
	Content  string    `json:"content"`
	Vector   []float32 `json:"-"`
}

// ScoredChunk is a chunk returned from search with its blended relevance score.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// DocumentInfo describes one indexed document in a user's namespace.
type DocumentInfo struct {
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunkCount"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Answer is the generated response to a question. Grounded is false when no
// indexed material was available to condition the model on.
type Answer struct {
	Text     string   `json:"text"`
	Grounded bool     `json:"grounded"`
	Sources  []string `json:"sources"`
}
