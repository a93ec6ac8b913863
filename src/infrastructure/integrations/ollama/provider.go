package ollama

import (
	"context"
)

// Provider binds a Client to configured model names, satisfying the core
// LLMProvider interface.
type Provider struct {
	client          *Client
	embeddingModel  string
	generationModel string
}

func NewProvider(client *Client, embeddingModel, generationModel string) *Provider {
	return &Provider{
		client:          client,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
	}
}

func (p *Provider) GetEmbedding(ctx context.Context, input string) ([]float32, error) {
	return p.client.GetEmbedding(ctx, p.embeddingModel, input)
}

func (p *Provider) Generate(ctx context.Context, system string, prompt string) (string, error) {
	return p.client.Generate(ctx, p.generationModel, system, prompt, map[string]interface{}{
		"temperature": 0.7,
		"top_p":       0.9,
	})
}
