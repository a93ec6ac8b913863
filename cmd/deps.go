package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"docchat/src/core/assistant"
	"docchat/src/infrastructure/integrations/ollama"
	"docchat/src/storage/elastic"
	"docchat/src/storage/minioctrl"
	"docchat/src/storage/weaviate"
)

func openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	return db, nil
}

func newOllamaClient() *ollama.Client {
	timeout, err := time.ParseDuration(viper.GetString("ollama.timeout"))
	if err != nil {
		timeout = 120 * time.Second
	}

	return ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: timeout,
	})
}

func newOllamaProvider(client *ollama.Client) *ollama.Provider {
	return ollama.NewProvider(
		client,
		viper.GetString("ollama.embedding_model"),
		viper.GetString("ollama.generation_model"),
	)
}

// newIndexStore builds the configured index backend and a reachability check
// for the health endpoint.
func newIndexStore() (assistant.IndexStore, func(ctx context.Context) error, error) {
	switch backend := viper.GetString("index.backend"); backend {
	case "elastic":
		client, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{viper.GetString("elastic.url")},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create elasticsearch client: %v", err)
		}
		sdk := elastic.NewSDK(client, viper.GetInt("elastic.vector_dims"))
		return sdk, sdk.Ping, nil

	case "weaviate":
		client := weaviateClient.New(weaviateClient.Config{
			Host:   viper.GetString("weaviate.host"),
			Scheme: "http",
		})
		sdk := weaviate.NewSDK(client)
		return sdk, sdk.Ping, nil

	default:
		return nil, nil, fmt.Errorf("unknown index backend: %s", backend)
	}
}

func newMinioService() (*minioctrl.MinioService, error) {
	return minioctrl.NewMinioService(
		viper.GetString("minio.endpoint"),
		viper.GetString("minio.access_key"),
		viper.GetString("minio.secret_key"),
		viper.GetBool("minio.use_ssl"),
	)
}

func newChunker() assistant.Chunker {
	switch viper.GetString("chunk.strategy") {
	case "recursive":
		return assistant.RecursiveChunker{
			Size:    viper.GetInt("chunk.recursive_size"),
			Overlap: viper.GetInt("chunk.recursive_overlap"),
		}
	default:
		return assistant.WordChunker{Size: viper.GetInt("chunk.size")}
	}
}
