package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docchat/src/core/assistant"
	"docchat/src/infrastructure/log"
	"docchat/src/storage/postgres/documentctrl"
)

var ingestUser string

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Index local text files for a user",
	Long: `The ingest command indexes local files (or directories of files) into a
user's namespace, running the same pipeline as a chat upload.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestUser, "user", "", "user identifier owning the documents")
	ingestCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	files, err := collectTextFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no text files found under %s", strings.Join(args, ", "))
	}

	// Initialize PostgreSQL connection
	db, err := openPostgres()
	if err != nil {
		return err
	}

	documentService, err := documentctrl.NewDocumentService(db)
	if err != nil {
		return err
	}

	store, _, err := newIndexStore()
	if err != nil {
		return err
	}

	minioService, err := newMinioService()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := minioService.EnsureBucketExists(ctx); err != nil {
		return err
	}

	provider := newOllamaProvider(newOllamaClient())
	indexer := assistant.NewIndexerService(store, provider, newChunker(), documentService, minioService)

	bar := progressbar.Default(int64(len(files)), "indexing")

	var failed int
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Error(err, "failed to read file", "file", file)
			failed++
			bar.Add(1)
			continue
		}

		if _, err := indexer.UpsertDocument(ctx, ingestUser, filepath.Base(file), data); err != nil {
			log.Error(err, "failed to index file", "file", file)
			failed++
		}
		bar.Add(1)
	}

	fmt.Printf("indexed %d of %d files for user %s\n", len(files)-failed, len(files), ingestUser)

	if failed > 0 {
		return fmt.Errorf("%d files failed to index", failed)
	}
	return nil
}

// collectTextFiles expands the given paths into the list of indexable files.
func collectTextFiles(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(p)) {
			case ".txt", ".text", ".md":
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}
