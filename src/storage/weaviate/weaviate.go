package weaviate

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate/entities/models"

	"docchat/src/core/assistant"
)

// SDK encapsulates all Weaviate operations. Each user owns one class; chunks
// are objects with content, source and sequence properties plus the
// embedding vector.
type SDK struct {
	client *weaviate.Client
}

// NewSDK creates a new instance of SDK
func NewSDK(client *weaviate.Client) *SDK {
	return &SDK{
		client: client,
	}
}

// className returns the Weaviate class for a user's namespace. Class names
// must start with an uppercase letter and be alphanumeric.
func className(userID string) string {
	var b strings.Builder
	for _, r := range userID {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return fmt.Sprintf("DocchatUser_%s", b.String())
}

// Ping checks that the instance is reachable and ready.
func (w *SDK) Ping(ctx context.Context) error {
	ready, err := w.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping weaviate: %w", err)
	}
	if !ready {
		return fmt.Errorf("weaviate is not ready")
	}
	return nil
}

// classExists checks if a class exists in the schema
func (w *SDK) classExists(ctx context.Context, class string) (bool, error) {
	schema, err := w.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %w", err)
	}

	for _, c := range schema.Classes {
		if c.Class == class {
			return true, nil
		}
	}

	return false, nil
}

// EnsureNamespace creates the user's class if it does not exist yet.
func (w *SDK) EnsureNamespace(ctx context.Context, userID string) error {
	class := className(userID)

	exists, err := w.classExists(ctx, class)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	schema := &models.Class{
		Class: class,
		Properties: []*models.Property{
			{
				Name:     "content",
				DataType: []string{"text"},
			},
			{
				Name:     "source",
				DataType: []string{"text"},
			},
			{
				Name:     "sequence",
				DataType: []string{"int"},
			},
		},
		Vectorizer: "none",
	}

	if err := w.client.Schema().ClassCreator().WithClass(schema).Do(ctx); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("failed to create class %s: %w", class, err)
	}

	return nil
}

// DeleteNamespace removes the user's class. Missing class is a no-op.
func (w *SDK) DeleteNamespace(ctx context.Context, userID string) error {
	class := className(userID)

	exists, err := w.classExists(ctx, class)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if err := w.client.Schema().ClassDeleter().WithClassName(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to delete class %s: %w", class, err)
	}

	return nil
}

// PutChunks adds the chunks to the user's class in a single batch.
func (w *SDK) PutChunks(ctx context.Context, userID string, chunks []assistant.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]*models.Object, len(chunks))
	for i, chunk := range chunks {
		objects[i] = &models.Object{
			Class: className(userID),
			Properties: map[string]interface{}{
				"content":  chunk.Content,
				"source":   chunk.Source,
				"sequence": chunk.Sequence,
			},
			Vector: chunk.Vector,
		}
	}

	resp, err := w.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to batch add chunks: %w", err)
	}
	if len(resp) == 0 {
		return fmt.Errorf("batch operation returned no results")
	}

	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch item failed: %s", obj.Result.Errors.Error[0].Message)
		}
	}

	return nil
}

// DeleteBySource removes all chunks whose source matches the filename.
// Missing class or no matching chunks is a no-op.
func (w *SDK) DeleteBySource(ctx context.Context, userID, source string) error {
	class := className(userID)

	exists, err := w.classExists(ctx, class)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	where := filters.Where().
		WithPath([]string{"source"}).
		WithOperator(filters.Equal).
		WithValueText(source)

	_, err = w.client.Batch().ObjectsBatchDeleter().
		WithClassName(class).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete chunks by source: %w", err)
	}

	return nil
}
