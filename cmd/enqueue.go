package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	jobctrl "docchat/src/infrastructure/job"
)

var enqueueUser string

var enqueueIngestCmd = &cobra.Command{
	Use:   "enqueue-ingest [file]",
	Short: "Archive a file and enqueue an ingest job for the worker",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnqueueIngest,
}

func init() {
	enqueueIngestCmd.Flags().StringVar(&enqueueUser, "user", "", "user identifier owning the document")
	enqueueIngestCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(enqueueIngestCmd)
}

func runEnqueueIngest(cmd *cobra.Command, args []string) error {
	// Initialize logger
	logger := watermill.NewStdLogger(false, false)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	filename := filepath.Base(args[0])

	// Initialize PostgreSQL connection
	db, err := openPostgres()
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// Archive the file so the worker can fetch it
	minioService, err := newMinioService()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := minioService.EnsureBucketExists(ctx); err != nil {
		return err
	}
	if err := minioService.Put(ctx, enqueueUser, filename, data); err != nil {
		return err
	}

	// Initialize AMQP publisher
	amqpPublisher, err := amqp.NewPublisher(
		amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
		logger,
	)
	if err != nil {
		return err
	}
	defer amqpPublisher.Close()

	jobRepo, err := jobctrl.NewPostgresJobRepository(db)
	if err != nil {
		return err
	}
	jobService := jobctrl.NewJobService(amqpPublisher, jobRepo, logger, nil)

	job, err := jobService.EnqueueIngest(ctx, enqueueUser, filename)
	if err != nil {
		return err
	}

	fmt.Printf("enqueued ingest job %d for %s (user %s)\n", job.ID, filename, enqueueUser)
	return nil
}
