package job

import (
	"context"
	"encoding/json"
	"fmt"

	"docchat/src/core/assistant"
	"docchat/src/infrastructure/log"
	"docchat/src/storage/minioctrl"
)

// IngestTask indexes an archived upload through the same pipeline the chat
// upload flow uses.
type IngestTask struct {
	indexer *assistant.IndexerService
	blobs   *minioctrl.MinioService
}

func NewIngestTask(indexer *assistant.IndexerService, blobs *minioctrl.MinioService) *IngestTask {
	return &IngestTask{
		indexer: indexer,
		blobs:   blobs,
	}
}

// HandleIngestTask fetches the archived file and upserts it into the user's
// namespace.
func (t *IngestTask) HandleIngestTask(ctx context.Context, payload json.RawMessage) error {
	var ingest IngestPayload
	if err := json.Unmarshal(payload, &ingest); err != nil {
		return fmt.Errorf("failed to unmarshal ingest payload: %w", err)
	}

	data, err := t.blobs.Get(ctx, ingest.UserID, ingest.Filename)
	if err != nil {
		return fmt.Errorf("failed to fetch archived upload: %w", err)
	}

	count, err := t.indexer.UpsertDocument(ctx, ingest.UserID, ingest.Filename, data)
	if err != nil {
		return fmt.Errorf("failed to index %s for user %s: %w", ingest.Filename, ingest.UserID, err)
	}

	log.Info("ingest job completed", "user", ingest.UserID, "filename", ingest.Filename, "chunks", count)
	return nil
}
