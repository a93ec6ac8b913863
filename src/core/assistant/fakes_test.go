package assistant_test

import (
	"context"
	"fmt"

	"docchat/src/core/assistant"
)

// fakeLLM is a scripted LLMProvider.
type fakeLLM struct {
	embedErr    error
	generateErr error
	response    string

	embedCalls int
	lastSystem string
	lastPrompt string
}

func (f *fakeLLM) GetEmbedding(ctx context.Context, input string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	f.embedCalls++
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeLLM) Generate(ctx context.Context, system string, prompt string) (string, error) {
	if f.generateErr != nil {
		return "", f.generateErr
	}
	f.lastSystem = system
	f.lastPrompt = prompt
	if f.response == "" {
		return "fake answer", nil
	}
	return f.response, nil
}

// fakeStore is an in-memory IndexStore recording mutations.
type fakeStore struct {
	ensureErr error
	putErr    error
	deleteErr error
	searchErr error

	searchResults []assistant.ScoredChunk

	namespaces        map[string]bool
	chunks            map[string][]assistant.Chunk
	deletedSources    []string
	deletedNamespaces []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		namespaces: make(map[string]bool),
		chunks:     make(map[string][]assistant.Chunk),
	}
}

func (f *fakeStore) EnsureNamespace(ctx context.Context, userID string) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.namespaces[userID] = true
	return nil
}

func (f *fakeStore) DeleteNamespace(ctx context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.namespaces, userID)
	delete(f.chunks, userID)
	f.deletedNamespaces = append(f.deletedNamespaces, userID)
	return nil
}

func (f *fakeStore) PutChunks(ctx context.Context, userID string, chunks []assistant.Chunk) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.chunks[userID] = append(f.chunks[userID], chunks...)
	return nil
}

func (f *fakeStore) DeleteBySource(ctx context.Context, userID, source string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedSources = append(f.deletedSources, fmt.Sprintf("%s/%s", userID, source))

	kept := f.chunks[userID][:0]
	for _, chunk := range f.chunks[userID] {
		if chunk.Source != source {
			kept = append(kept, chunk)
		}
	}
	f.chunks[userID] = kept
	return nil
}

func (f *fakeStore) Search(ctx context.Context, userID, query string, vector []float32, topK int) ([]assistant.ScoredChunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.searchResults) > topK {
		return f.searchResults[:topK], nil
	}
	return f.searchResults, nil
}

// fakeRegistry is an in-memory DocumentRegistry with scriptable failures.
type fakeRegistry struct {
	saveErr   error
	listErr   error
	deleteErr error

	docs map[string][]assistant.DocumentInfo
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{docs: make(map[string][]assistant.DocumentInfo)}
}

func (f *fakeRegistry) Save(ctx context.Context, userID, filename string, chunkCount int, sizeBytes int64) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	info := assistant.DocumentInfo{Filename: filename, ChunkCount: chunkCount, SizeBytes: sizeBytes}
	for i, doc := range f.docs[userID] {
		if doc.Filename == filename {
			f.docs[userID][i] = info
			return nil
		}
	}
	f.docs[userID] = append(f.docs[userID], info)
	return nil
}

func (f *fakeRegistry) List(ctx context.Context, userID string) ([]assistant.DocumentInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.docs[userID], nil
}

func (f *fakeRegistry) Delete(ctx context.Context, userID, filename string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}

	kept := f.docs[userID][:0]
	for _, doc := range f.docs[userID] {
		if doc.Filename != filename {
			kept = append(kept, doc)
		}
	}
	f.docs[userID] = kept
	return nil
}

func (f *fakeRegistry) DeleteAll(ctx context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.docs, userID)
	return nil
}

// fakeBlobs is an in-memory BlobStore with scriptable failures.
type fakeBlobs struct {
	putErr    error
	deleteErr error

	objects map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) key(userID, filename string) string {
	return fmt.Sprintf("%s/%s", userID, filename)
}

func (f *fakeBlobs) Put(ctx context.Context, userID, filename string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[f.key(userID, filename)] = data
	return nil
}

func (f *fakeBlobs) Delete(ctx context.Context, userID, filename string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, f.key(userID, filename))
	return nil
}

func (f *fakeBlobs) DeleteAll(ctx context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	prefix := userID + "/"
	for key := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(f.objects, key)
		}
	}
	return nil
}
