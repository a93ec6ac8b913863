package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"docchat/src/core/assistant"
)

// DefaultAlpha is the vector-search weight in the blended score.
// 75% vector similarity, 25% lexical match.
const DefaultAlpha = 0.75

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				Content  string `json:"content"`
				Source   string `json:"source"`
				Sequence int    `json:"sequence"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a lexical match query and a cosine-similarity query against
// the user's index and blends the two result sets into one ranking. A user
// whose index was never created gets empty results, not an error.
func (s *SDK) Search(ctx context.Context, userID, query string, vector []float32, topK int) ([]assistant.ScoredChunk, error) {
	if topK <= 0 {
		topK = assistant.DefaultTopK
	}

	lexicalQuery := map[string]interface{}{
		"size": topK,
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"content": query,
			},
		},
	}

	vectorQuery := map[string]interface{}{
		"size": topK,
		"query": map[string]interface{}{
			"script_score": map[string]interface{}{
				"query": map[string]interface{}{"match_all": map[string]interface{}{}},
				"script": map[string]interface{}{
					"source": "cosineSimilarity(params.query_vector, 'embedding') + 1.0",
					"params": map[string]interface{}{"query_vector": vector},
				},
			},
		},
	}

	lexical, found, err := s.runSearch(ctx, userID, lexicalQuery)
	if err != nil {
		return nil, err
	}
	if !found {
		return []assistant.ScoredChunk{}, nil
	}

	similar, _, err := s.runSearch(ctx, userID, vectorQuery)
	if err != nil {
		return nil, err
	}

	return blendResults(lexical, similar, DefaultAlpha, topK), nil
}

// runSearch executes one query. The second return value is false when the
// index does not exist.
func (s *SDK) runSearch(ctx context.Context, userID string, query map[string]interface{}) ([]assistant.ScoredChunk, bool, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(indexName(userID)),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, false, nil
	}
	if res.IsError() {
		return nil, false, fmt.Errorf("search failed: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, false, fmt.Errorf("failed to decode search response: %w", err)
	}

	chunks := make([]assistant.ScoredChunk, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		chunks = append(chunks, assistant.ScoredChunk{
			Chunk: assistant.Chunk{
				Content:  hit.Source.Content,
				Source:   hit.Source.Source,
				Sequence: hit.Source.Sequence,
			},
			Score: hit.Score,
		})
	}

	return chunks, true, nil
}

type chunkKey struct {
	source   string
	sequence int
}

// blendResults unions the lexical and vector result lists into a single
// ranking. Scores are normalized per list by the list maximum, then combined
// as alpha*vector + (1-alpha)*lexical, which keeps the order monotonic in
// both inputs. Ties are broken by insertion order: source, then sequence.
func blendResults(lexical, similar []assistant.ScoredChunk, alpha float64, topK int) []assistant.ScoredChunk {
	lexicalMax := maxScore(lexical)
	similarMax := maxScore(similar)

	blended := make(map[chunkKey]assistant.ScoredChunk)

	for _, chunk := range lexical {
		key := chunkKey{chunk.Source, chunk.Sequence}
		chunk.Score = (1 - alpha) * chunk.Score / lexicalMax
		blended[key] = chunk
	}

	for _, chunk := range similar {
		key := chunkKey{chunk.Source, chunk.Sequence}
		score := alpha * chunk.Score / similarMax
		if existing, ok := blended[key]; ok {
			score += existing.Score
		}
		chunk.Score = score
		blended[key] = chunk
	}

	results := make([]assistant.ScoredChunk, 0, len(blended))
	for _, chunk := range blended {
		results = append(results, chunk)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Source != results[j].Source {
			return results[i].Source < results[j].Source
		}
		return results[i].Sequence < results[j].Sequence
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results
}

func maxScore(chunks []assistant.ScoredChunk) float64 {
	max := 0.0
	for _, chunk := range chunks {
		if chunk.Score > max {
			max = chunk.Score
		}
	}
	if max == 0 {
		return 1
	}
	return max
}
