package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"docchat/src/core/assistant"
	"docchat/src/infrastructure/log"
)

const (
	// DefaultVectorDims matches the embedding length of the default model.
	DefaultVectorDims = 4096

	indexPrefix = "docchat-"
)

// SDK encapsulates all Elasticsearch operations. Each user owns one index
// named after their identifier; chunks are stored as documents with content,
// source, sequence and a dense_vector embedding.
type SDK struct {
	client     *elasticsearch.Client
	vectorDims int
}

// NewSDK creates a new instance of SDK
func NewSDK(client *elasticsearch.Client, vectorDims int) *SDK {
	if vectorDims <= 0 {
		vectorDims = DefaultVectorDims
	}
	return &SDK{
		client:     client,
		vectorDims: vectorDims,
	}
}

// indexName returns the Elasticsearch index for a user's namespace.
// Index names must be lowercase.
func indexName(userID string) string {
	return indexPrefix + strings.ToLower(userID)
}

// Ping checks that the cluster is reachable.
func (s *SDK) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.String())
	}

	return nil
}

// EnsureNamespace creates the user's index if it does not exist yet.
func (s *SDK) EnsureNamespace(ctx context.Context, userID string) error {
	name := indexName(userID)

	res, err := s.client.Indices.Exists(
		[]string{name},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"content":  map[string]interface{}{"type": "text"},
				"source":   map[string]interface{}{"type": "keyword"},
				"sequence": map[string]interface{}{"type": "integer"},
				"embedding": map[string]interface{}{
					"type": "dense_vector",
					"dims": s.vectorDims,
				},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal index mapping: %w", err)
	}

	createRes, err := s.client.Indices.Create(
		name,
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		// A concurrent create is fine, the index is there either way.
		if strings.Contains(createRes.String(), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("failed to create index %s: %s", name, createRes.String())
	}

	log.Info("index created", "index", name)
	return nil
}

// DeleteNamespace removes the user's index. Missing index is a no-op.
func (s *SDK) DeleteNamespace(ctx context.Context, userID string) error {
	res, err := s.client.Indices.Delete(
		[]string{indexName(userID)},
		s.client.Indices.Delete.WithContext(ctx),
		s.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to delete index %s: %s", indexName(userID), res.String())
	}

	return nil
}

// PutChunks writes the chunks into the user's index in one bulk request.
// The refresh makes the chunks searchable as soon as the call returns.
func (s *SDK) PutChunks(ctx context.Context, userID string, chunks []assistant.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, chunk := range chunks {
		meta := map[string]interface{}{"index": map[string]interface{}{}}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return fmt.Errorf("failed to encode bulk action: %w", err)
		}

		doc := map[string]interface{}{
			"content":   chunk.Content,
			"source":    chunk.Source,
			"sequence":  chunk.Sequence,
			"embedding": chunk.Vector,
		}
		if err := json.NewEncoder(&buf).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode chunk: %w", err)
		}
	}

	res, err := s.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithIndex(indexName(userID)),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk index chunks: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk indexing failed: %s", res.String())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if bulkRes.Errors {
		return fmt.Errorf("bulk indexing reported item failures for index %s", indexName(userID))
	}

	return nil
}

// DeleteBySource removes all chunks whose source matches the filename.
// Missing index or no matching chunks is a no-op.
func (s *SDK) DeleteBySource(ctx context.Context, userID, source string) error {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"source": source,
			},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("failed to marshal delete query: %w", err)
	}

	res, err := s.client.DeleteByQuery(
		[]string{indexName(userID)},
		bytes.NewReader(body),
		s.client.DeleteByQuery.WithContext(ctx),
		s.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("failed to delete by source: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("delete by source failed: %s", res.String())
	}

	return nil
}
