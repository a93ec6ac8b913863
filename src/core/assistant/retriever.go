package assistant

import (
	"context"
	"fmt"
)

// DefaultTopK is the number of chunks returned to ground an answer.
const DefaultTopK = 7

// RetrieverService answers "which chunks are relevant to this question" by
// embedding the question and running a blended lexical+vector search in the
// user's namespace.
type RetrieverService struct {
	store IndexStore
	llm   LLMProvider
	topK  int
}

func NewRetrieverService(store IndexStore, llm LLMProvider, topK int) *RetrieverService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrieverService{
		store: store,
		llm:   llm,
		topK:  topK,
	}
}

// Retrieve returns up to topK ranked chunks for the question. A user with
// nothing indexed gets an empty result, not an error.
func (s *RetrieverService) Retrieve(ctx context.Context, userID, question string) ([]ScoredChunk, error) {
	vector, err := s.llm.GetEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	results, err := s.store.Search(ctx, userID, question, vector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	return results, nil
}
