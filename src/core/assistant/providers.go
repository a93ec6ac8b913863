package assistant

import "context"

// LLMProvider defines operations for language model interactions
type LLMProvider interface {
	// GetEmbedding generates an embedding vector for the given input text
	GetEmbedding(ctx context.Context, input string) ([]float32, error)
	// Generate generates a text completion for the given system and user prompt
	Generate(ctx context.Context, system string, prompt string) (string, error)
}

// IndexStore defines operations against the per-user index namespaces of the
// search engine. Implementations must treat a missing namespace on Search and
// DeleteBySource as "no results", not an error.
type IndexStore interface {
	// EnsureNamespace creates the user's namespace if absent; no-op otherwise
	EnsureNamespace(ctx context.Context, userID string) error
	// DeleteNamespace removes the user's namespace; no-op if it does not exist
	DeleteNamespace(ctx context.Context, userID string) error
	// PutChunks writes the given chunks into the user's namespace
	PutChunks(ctx context.Context, userID string, chunks []Chunk) error
	// DeleteBySource removes all chunks whose source matches; no-op if none
	DeleteBySource(ctx context.Context, userID, source string) error
	// Search returns up to topK chunks ranked by a blend of lexical match on
	// query and vector similarity to vector
	Search(ctx context.Context, userID, query string, vector []float32, topK int) ([]ScoredChunk, error)
}

// DocumentRegistry keeps per-user document metadata. The registry is
// advisory: the index engine owns the durable record of chunks.
type DocumentRegistry interface {
	Save(ctx context.Context, userID, filename string, chunkCount int, sizeBytes int64) error
	List(ctx context.Context, userID string) ([]DocumentInfo, error)
	Delete(ctx context.Context, userID, filename string) error
	DeleteAll(ctx context.Context, userID string) error
}

// BlobStore archives raw uploaded files.
type BlobStore interface {
	Put(ctx context.Context, userID, filename string, data []byte) error
	Delete(ctx context.Context, userID, filename string) error
	DeleteAll(ctx context.Context, userID string) error
}
