package assistant

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docchat/src/infrastructure/log"
)

// MaxUploadBytes is the upload size limit.
const MaxUploadBytes = 5 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".md":   true,
}

// ValidateUpload checks filename extension and size before any external call.
func ValidateUpload(filename string, size int64) error {
	if filename == "" {
		return fmt.Errorf("%w: missing filename", ErrInvalidUpload)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: unsupported file type %q, send a plain text file", ErrInvalidUpload, ext)
	}
	if size == 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}
	if size > MaxUploadBytes {
		return fmt.Errorf("%w: file exceeds the 5 MB limit", ErrInvalidUpload)
	}
	return nil
}

// IndexerService runs the upload pipeline: validate, chunk, embed, then
// replace the document's chunks in the index store. It also maintains the
// document registry and the raw upload archive, both best-effort.
type IndexerService struct {
	store    IndexStore
	llm      LLMProvider
	chunker  Chunker
	registry DocumentRegistry
	blobs    BlobStore
}

func NewIndexerService(store IndexStore, llm LLMProvider, chunker Chunker, registry DocumentRegistry, blobs BlobStore) *IndexerService {
	if chunker == nil {
		chunker = WordChunker{Size: DefaultChunkSize}
	}
	return &IndexerService{
		store:    store,
		llm:      llm,
		chunker:  chunker,
		registry: registry,
		blobs:    blobs,
	}
}

// UpsertDocument indexes an uploaded file for a user, replacing any previous
// document with the same filename. Returns the number of chunks written.
//
// All embeddings are computed before the index is touched, so an embedding
// failure leaves the previous document intact. The replace itself is the
// documented delete-then-write sequence: a write failure after the delete
// leaves the document absent, surfaced as an indexing failure so the user
// can retry.
func (s *IndexerService) UpsertDocument(ctx context.Context, userID, filename string, data []byte) (int, error) {
	if err := ValidateUpload(filename, int64(len(data))); err != nil {
		return 0, err
	}
	if !utf8.Valid(data) {
		return 0, fmt.Errorf("%w: file is not valid UTF-8 text", ErrInvalidUpload)
	}

	parts, err := s.chunker.Split(string(data))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	if len(parts) == 0 {
		return 0, fmt.Errorf("%w: file contains no text", ErrInvalidUpload)
	}

	chunks := make([]Chunk, len(parts))
	for i, part := range parts {
		vector, err := s.llm.GetEmbedding(ctx, part)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
		}
		chunks[i] = Chunk{
			Source:   filename,
			Sequence: i,
			Content:  part,
			Vector:   vector,
		}
	}

	if err := s.store.EnsureNamespace(ctx, userID); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if err := s.store.DeleteBySource(ctx, userID, filename); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if err := s.store.PutChunks(ctx, userID, chunks); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	if s.registry != nil {
		if err := s.registry.Save(ctx, userID, filename, len(chunks), int64(len(data))); err != nil {
			log.Error(err, "failed to record document metadata", "user", userID, "filename", filename)
		}
	}
	if s.blobs != nil {
		if err := s.blobs.Put(ctx, userID, filename, data); err != nil {
			log.Error(err, "failed to archive upload", "user", userID, "filename", filename)
		}
	}

	log.Info("document indexed", "user", userID, "filename", filename, "chunks", len(chunks))

	return len(chunks), nil
}

// DeleteDocument removes all chunks of one document. Deleting a document
// that was never indexed is a no-op, not an error.
func (s *IndexerService) DeleteDocument(ctx context.Context, userID, filename string) error {
	if err := s.store.DeleteBySource(ctx, userID, filename); err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	if s.registry != nil {
		if err := s.registry.Delete(ctx, userID, filename); err != nil {
			log.Error(err, "failed to delete document metadata", "user", userID, "filename", filename)
		}
	}
	if s.blobs != nil {
		if err := s.blobs.Delete(ctx, userID, filename); err != nil {
			log.Error(err, "failed to delete archived upload", "user", userID, "filename", filename)
		}
	}

	return nil
}

// DeleteAll removes the user's entire namespace.
func (s *IndexerService) DeleteAll(ctx context.Context, userID string) error {
	if err := s.store.DeleteNamespace(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	if s.registry != nil {
		if err := s.registry.DeleteAll(ctx, userID); err != nil {
			log.Error(err, "failed to delete document metadata", "user", userID)
		}
	}
	if s.blobs != nil {
		if err := s.blobs.DeleteAll(ctx, userID); err != nil {
			log.Error(err, "failed to delete archived uploads", "user", userID)
		}
	}

	return nil
}

// ListDocuments returns the registry entries for a user.
func (s *IndexerService) ListDocuments(ctx context.Context, userID string) ([]DocumentInfo, error) {
	if s.registry == nil {
		return nil, nil
	}
	return s.registry.List(ctx, userID)
}
