package weaviate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"

	"docchat/src/core/assistant"
)

// DefaultAlpha is the vector weight of the hybrid query.
// 75% vector search, 25% BM25.
const DefaultAlpha = 0.75

// Search performs Weaviate's native hybrid search combining vector
// similarity and BM25 over the user's class. A user whose class was never
// created gets empty results, not an error.
func (w *SDK) Search(ctx context.Context, userID, query string, vector []float32, topK int) ([]assistant.ScoredChunk, error) {
	class := className(userID)

	exists, err := w.classExists(ctx, class)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []assistant.ScoredChunk{}, nil
	}

	if topK <= 0 {
		topK = assistant.DefaultTopK
	}

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "sequence"},
		{Name: "_additional { score }"},
	}

	hybrid := w.client.GraphQL().HybridArgumentBuilder().
		WithVector(vector).
		WithQuery(query).
		WithAlpha(DefaultAlpha)

	result, err := w.client.GraphQL().Get().
		WithClassName(class).
		WithFields(fields...).
		WithHybrid(hybrid).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run hybrid query: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("hybrid query failed: %s", result.Errors[0].Message)
	}

	chunks := make([]assistant.ScoredChunk, 0, topK)
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return chunks, nil
	}
	objects, ok := data[class].([]interface{})
	if !ok {
		return chunks, nil
	}

	for _, obj := range objects {
		objMap, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}

		chunk := assistant.ScoredChunk{}
		if content, ok := objMap["content"].(string); ok {
			chunk.Content = content
		}
		if source, ok := objMap["source"].(string); ok {
			chunk.Source = source
		}
		if sequence, ok := objMap["sequence"].(float64); ok {
			chunk.Sequence = int(sequence)
		}
		if additional, ok := objMap["_additional"].(map[string]interface{}); ok {
			chunk.Score = parseScore(additional["score"])
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// parseScore handles the hybrid score, which Weaviate returns as a string.
func parseScore(v interface{}) float64 {
	switch score := v.(type) {
	case float64:
		return score
	case string:
		parsed, err := strconv.ParseFloat(score, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
