package assistant

import "errors"

var (
	// ErrInvalidUpload is returned when an uploaded file fails local validation.
	// The user is reprompted; no stored state is touched.
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrEmbeddingUnavailable is returned when the embedding endpoint is
	// unreachable or returns an unusable vector.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable is returned when the index engine cannot be reached
	// or a write against it fails.
	ErrIndexUnavailable = errors.New("index engine unavailable")

	// ErrGenerationUnavailable is returned when the generation endpoint is
	// unreachable or produces malformed output.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)
