package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpHdlr "docchat/handler/http"
	"docchat/src/core/assistant"
	"docchat/src/infrastructure/log"
	"docchat/src/storage/postgres/documentctrl"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the docchat chat gateway",
	Long:  `The serve command starts an HTTP server exposing the chat, upload and document APIs.`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	// Initialize PostgreSQL connection
	db, err := openPostgres()
	if err != nil {
		log.Error(err, "Failed to connect to database")
		return
	}

	documentService, err := documentctrl.NewDocumentService(db)
	if err != nil {
		log.Error(err, "Failed to create document service")
		return
	}

	// Initialize Ollama client
	oc := newOllamaClient()
	provider := newOllamaProvider(oc)

	// Initialize index store
	store, storeCheck, err := newIndexStore()
	if err != nil {
		log.Error(err, "Failed to create index store")
		return
	}

	// Initialize MinIO upload archive
	minioService, err := newMinioService()
	if err != nil {
		log.Error(err, "Failed to create minio service")
		return
	}
	if err := minioService.EnsureBucketExists(context.Background()); err != nil {
		log.Error(err, "Failed to ensure uploads bucket")
		return
	}

	// Assemble the pipeline
	indexer := assistant.NewIndexerService(store, provider, newChunker(), documentService, minioService)
	retriever := assistant.NewRetrieverService(store, provider, viper.GetInt("search.top_k"))
	generator := assistant.NewAnswerService(provider)
	controller := assistant.NewController(indexer, retriever, generator)

	// Initialize HTTP handler
	handler := httpHdlr.NewHandler(controller, indexer, map[string]httpHdlr.ComponentChecker{
		"index": storeCheck,
		"ollama": func(ctx context.Context) error {
			_, err := oc.Models(ctx)
			return err
		},
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	// Setup gin router
	r := gin.Default()

	// Register routes
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Close database connection
	sqlDB, err := db.DB()
	if err != nil {
		log.Error(err, "Failed to get underlying *sql.DB")
	} else {
		if err := sqlDB.Close(); err != nil {
			log.Error(err, "Error closing database connection")
		}
	}

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
