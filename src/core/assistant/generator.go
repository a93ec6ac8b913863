package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

const answerSystemPrompt = "You are an assistant that answers questions using only the provided documents. " +
	"Use only facts from the documents. If the documents do not contain the answer, say you do not know."

const noContextNotice = "No documents are indexed for this user."

var answerPrompt = prompts.NewPromptTemplate(
	"Documents:\n{{.documents}}\n\nQuestion:\n{{.question}}",
	[]string{"documents", "question"},
)

// AnswerService turns a question and retrieved chunks into a single
// generated answer.
type AnswerService struct {
	llm LLMProvider
}

func NewAnswerService(llm LLMProvider) *AnswerService {
	return &AnswerService{llm: llm}
}

// Generate builds one prompt from the question and the chunks in the order
// received and requests a completion. With no chunks it still answers, but
// the result is flagged ungrounded so callers can signal low confidence.
func (s *AnswerService) Generate(ctx context.Context, question string, contextChunks []ScoredChunk) (*Answer, error) {
	documents := noContextNotice
	if len(contextChunks) > 0 {
		parts := make([]string, len(contextChunks))
		for i, chunk := range contextChunks {
			parts[i] = chunk.Content
		}
		documents = strings.Join(parts, "\n\n")
	}

	prompt, err := answerPrompt.Format(map[string]any{
		"documents": documents,
		"question":  strings.TrimSpace(question),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format prompt: %w", err)
	}

	completion, err := s.llm.Generate(ctx, answerSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	if strings.TrimSpace(completion) == "" {
		return nil, fmt.Errorf("%w: model returned an empty completion", ErrGenerationUnavailable)
	}

	return &Answer{
		Text:     completion,
		Grounded: len(contextChunks) > 0,
		Sources:  chunkSources(contextChunks),
	}, nil
}

// chunkSources returns the unique source filenames in rank order.
func chunkSources(chunks []ScoredChunk) []string {
	seen := make(map[string]bool, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if seen[chunk.Source] {
			continue
		}
		seen[chunk.Source] = true
		sources = append(sources, chunk.Source)
	}
	return sources
}
