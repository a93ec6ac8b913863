package assistant_test

import (
	"context"
	"errors"
	"testing"

	"docchat/src/core/assistant"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{
			name:     "plain text file",
			filename: "notes.txt",
			size:     1024,
			wantErr:  false,
		},
		{
			name:     "markdown file",
			filename: "README.md",
			size:     2048,
			wantErr:  false,
		},
		{
			name:     "uppercase extension",
			filename: "NOTES.TXT",
			size:     10,
			wantErr:  false,
		},
		{
			name:     "missing filename",
			filename: "",
			size:     10,
			wantErr:  true,
		},
		{
			name:     "binary extension",
			filename: "report.pdf",
			size:     10,
			wantErr:  true,
		},
		{
			name:     "no extension",
			filename: "notes",
			size:     10,
			wantErr:  true,
		},
		{
			name:     "empty file",
			filename: "notes.txt",
			size:     0,
			wantErr:  true,
		},
		{
			name:     "at the size limit",
			filename: "notes.txt",
			size:     assistant.MaxUploadBytes,
			wantErr:  false,
		},
		{
			name:     "over the size limit",
			filename: "notes.txt",
			size:     assistant.MaxUploadBytes + 1,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assistant.ValidateUpload(tt.filename, tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpload(%q, %d) error = %v, wantErr %v", tt.filename, tt.size, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, assistant.ErrInvalidUpload) {
				t.Errorf("ValidateUpload(%q, %d) error = %v, want ErrInvalidUpload", tt.filename, tt.size, err)
			}
		})
	}
}

func TestUpsertDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("writes ordered chunks sharing the source", func(t *testing.T) {
		store := newFakeStore()
		indexer := assistant.NewIndexerService(store, &fakeLLM{}, assistant.WordChunker{Size: 3}, nil, nil)

		count, err := indexer.UpsertDocument(ctx, "alice", "notes.txt", []byte("a b c d e f g"))
		if err != nil {
			t.Fatalf("UpsertDocument() error = %v", err)
		}
		if count != 3 {
			t.Errorf("UpsertDocument() count = %d, want 3", count)
		}

		chunks := store.chunks["alice"]
		if len(chunks) != 3 {
			t.Fatalf("stored %d chunks, want 3", len(chunks))
		}
		for i, chunk := range chunks {
			if chunk.Source != "notes.txt" {
				t.Errorf("chunk %d source = %q, want notes.txt", i, chunk.Source)
			}
			if chunk.Sequence != i {
				t.Errorf("chunk %d sequence = %d, want %d", i, chunk.Sequence, i)
			}
			if len(chunk.Vector) == 0 {
				t.Errorf("chunk %d has no embedding", i)
			}
		}
	})

	t.Run("replaces previous chunks before writing", func(t *testing.T) {
		store := newFakeStore()
		indexer := assistant.NewIndexerService(store, &fakeLLM{}, assistant.WordChunker{Size: 100}, nil, nil)

		if _, err := indexer.UpsertDocument(ctx, "alice", "notes.txt", []byte("old content here")); err != nil {
			t.Fatalf("first UpsertDocument() error = %v", err)
		}
		if _, err := indexer.UpsertDocument(ctx, "alice", "notes.txt", []byte("new content")); err != nil {
			t.Fatalf("second UpsertDocument() error = %v", err)
		}

		chunks := store.chunks["alice"]
		if len(chunks) != 1 {
			t.Fatalf("stored %d chunks after re-upload, want 1", len(chunks))
		}
		if chunks[0].Content != "new content" {
			t.Errorf("stored content = %q, want the re-uploaded text", chunks[0].Content)
		}
		if len(store.deletedSources) != 2 {
			t.Errorf("delete-by-source ran %d times, want 2 (once per upsert)", len(store.deletedSources))
		}
	})

	t.Run("embedding failure leaves the index untouched", func(t *testing.T) {
		store := newFakeStore()
		llm := &fakeLLM{embedErr: errors.New("connection refused")}
		indexer := assistant.NewIndexerService(store, llm, assistant.WordChunker{Size: 2}, nil, nil)

		_, err := indexer.UpsertDocument(ctx, "alice", "notes.txt", []byte("a b c d"))
		if !errors.Is(err, assistant.ErrEmbeddingUnavailable) {
			t.Fatalf("UpsertDocument() error = %v, want ErrEmbeddingUnavailable", err)
		}

		if len(store.chunks["alice"]) != 0 {
			t.Errorf("chunks were written despite embedding failure")
		}
		if len(store.deletedSources) != 0 {
			t.Errorf("delete-by-source ran despite embedding failure")
		}
	})

	t.Run("write failure surfaces as index unavailable", func(t *testing.T) {
		store := newFakeStore()
		store.putErr = errors.New("bulk rejected")
		indexer := assistant.NewIndexerService(store, &fakeLLM{}, assistant.WordChunker{Size: 100}, nil, nil)

		_, err := indexer.UpsertDocument(ctx, "alice", "notes.txt", []byte("some text"))
		if !errors.Is(err, assistant.ErrIndexUnavailable) {
			t.Errorf("UpsertDocument() error = %v, want ErrIndexUnavailable", err)
		}
	})

	t.Run("invalid uploads never reach the store", func(t *testing.T) {
		store := newFakeStore()
		llm := &fakeLLM{}
		indexer := assistant.NewIndexerService(store, llm, assistant.WordChunker{Size: 100}, nil, nil)

		_, err := indexer.UpsertDocument(ctx, "alice", "binary.exe", []byte("whatever"))
		if !errors.Is(err, assistant.ErrInvalidUpload) {
			t.Fatalf("UpsertDocument() error = %v, want ErrInvalidUpload", err)
		}
		if llm.embedCalls != 0 {
			t.Errorf("embedding was requested for a rejected upload")
		}
	})
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	indexer := assistant.NewIndexerService(store, &fakeLLM{}, assistant.WordChunker{Size: 100}, nil, nil)

	if _, err := indexer.UpsertDocument(ctx, "alice", "a.txt", []byte("alpha text")); err != nil {
		t.Fatalf("UpsertDocument(a.txt) error = %v", err)
	}
	if _, err := indexer.UpsertDocument(ctx, "alice", "b.txt", []byte("beta text")); err != nil {
		t.Fatalf("UpsertDocument(b.txt) error = %v", err)
	}

	if err := indexer.DeleteDocument(ctx, "alice", "a.txt"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}

	for _, chunk := range store.chunks["alice"] {
		if chunk.Source == "a.txt" {
			t.Errorf("chunk from deleted document survived: %+v", chunk)
		}
	}
	if len(store.chunks["alice"]) == 0 {
		t.Errorf("delete removed chunks belonging to another document")
	}

	// Deleting a document that does not exist is a no-op.
	if err := indexer.DeleteDocument(ctx, "alice", "missing.txt"); err != nil {
		t.Errorf("DeleteDocument(missing) error = %v, want nil", err)
	}
}

func TestRegistryAndArchiveAreAdvisory(t *testing.T) {
	ctx := context.Background()

	t.Run("registry failure does not fail the upsert", func(t *testing.T) {
		store := newFakeStore()
		registry := newFakeRegistry()
		registry.saveErr = errors.New("registry down")
		indexer := assistant.NewIndexerService(store, &fakeLLM{}, assistant.WordChunker{Size: 100}, registry, nil)

		count, err := indexer.UpsertDocument(ctx, "alice", "notes.txt", []byte("some text"))
		if err != nil {
			t.Fatalf("UpsertDocument() error = %v, want success despite registry failure", err)
		}
		if count != 1 {
			t.Errorf("UpsertDocument() count = %d, want 1", count)
		}
		if len(store.chunks["alice"]) != 1 {
			t.Errorf("chunks were not written")
		}
	})

	t.Run("archive failure does not fail the upsert", func(t *testing.T) {
		store := newFakeStore()
		blobs := newFakeBlobs()
		blobs.putErr = errors.New("bucket gone")
		indexer := assistant.NewIndexerService(store, &fakeLLM{}, assistant.WordChunker{Size: 100}, nil, blobs)

		if _, err := indexer.UpsertDocument(ctx, "alice", "notes.txt", []byte("some text")); err != nil {
			t.Fatalf("UpsertDocument() error = %v, want success despite archive failure", err)
		}
		if len(store.chunks["alice"]) != 1 {
			t.Errorf("chunks were not written")
		}
	})

	t.Run("registry failure does not fail a delete", func(t *testing.T) {
		store := newFakeStore()
		registry := newFakeRegistry()
		indexer := assistant.NewIndexerService(store, &fakeLLM{}, assistant.WordChunker{Size: 100}, registry, nil)

		if _, err := indexer.UpsertDocument(ctx, "alice", "notes.txt", []byte("some text")); err != nil {
			t.Fatalf("UpsertDocument() error = %v", err)
		}

		registry.deleteErr = errors.New("registry down")
		if err := indexer.DeleteDocument(ctx, "alice", "notes.txt"); err != nil {
			t.Errorf("DeleteDocument() error = %v, want success despite registry failure", err)
		}
		if len(store.chunks["alice"]) != 0 {
			t.Errorf("chunks survived the delete")
		}
	})
}

func TestListDocuments(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	registry := newFakeRegistry()
	blobs := newFakeBlobs()
	indexer := assistant.NewIndexerService(store, &fakeLLM{}, assistant.WordChunker{Size: 2}, registry, blobs)

	if _, err := indexer.UpsertDocument(ctx, "alice", "a.txt", []byte("one two three four")); err != nil {
		t.Fatalf("UpsertDocument(a.txt) error = %v", err)
	}
	if _, err := indexer.UpsertDocument(ctx, "alice", "b.txt", []byte("five six")); err != nil {
		t.Fatalf("UpsertDocument(b.txt) error = %v", err)
	}

	docs, err := indexer.ListDocuments(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("ListDocuments() returned %d documents, want 2", len(docs))
	}
	if docs[0].Filename != "a.txt" || docs[0].ChunkCount != 2 {
		t.Errorf("first entry = %+v, want a.txt with 2 chunks", docs[0])
	}
	if docs[1].Filename != "b.txt" || docs[1].ChunkCount != 1 {
		t.Errorf("second entry = %+v, want b.txt with 1 chunk", docs[1])
	}

	// A re-upload replaces the entry instead of duplicating it.
	if _, err := indexer.UpsertDocument(ctx, "alice", "a.txt", []byte("one two")); err != nil {
		t.Fatalf("re-upload error = %v", err)
	}
	docs, err = indexer.ListDocuments(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDocuments() after re-upload error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("ListDocuments() after re-upload returned %d documents, want 2", len(docs))
	}
	for _, doc := range docs {
		if doc.Filename == "a.txt" && doc.ChunkCount != 1 {
			t.Errorf("a.txt chunk count = %d after re-upload, want 1", doc.ChunkCount)
		}
	}

	if err := indexer.DeleteDocument(ctx, "alice", "a.txt"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	docs, err = indexer.ListDocuments(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDocuments() after delete error = %v", err)
	}
	if len(docs) != 1 || docs[0].Filename != "b.txt" {
		t.Errorf("ListDocuments() after delete = %+v, want only b.txt", docs)
	}

	if err := indexer.DeleteAll(ctx, "alice"); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	docs, err = indexer.ListDocuments(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDocuments() after reset error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("ListDocuments() after reset = %+v, want empty", docs)
	}

	// The archive follows the registry through the lifecycle.
	if len(blobs.objects) != 0 {
		t.Errorf("archived uploads survived the reset: %v", blobs.objects)
	}
}

func TestListDocumentsWithoutRegistry(t *testing.T) {
	indexer := assistant.NewIndexerService(newFakeStore(), &fakeLLM{}, assistant.WordChunker{Size: 100}, nil, nil)

	docs, err := indexer.ListDocuments(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if docs != nil {
		t.Errorf("ListDocuments() = %v, want nil without a registry", docs)
	}
}
