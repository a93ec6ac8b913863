package documentctrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docchat/src/core/assistant"
)

// Document is the registry row for one indexed document. The index engine
// owns the chunks themselves; this table only powers listings and delete
// bookkeeping.
type Document struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"not null;index;uniqueIndex:idx_user_filename" json:"user_id"`
	Filename   string    `gorm:"not null;uniqueIndex:idx_user_filename" json:"filename"`
	ChunkCount int       `gorm:"not null" json:"chunk_count"`
	SizeBytes  int64     `gorm:"not null" json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type DocumentService struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewDocumentService(db *gorm.DB) (*DocumentService, error) {
	// Initialize snowflake node
	node, err := snowflake.NewNode(1) // Node number 1 for documents
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate documents table: %v", err)
	}

	return &DocumentService{
		db:        db,
		snowflake: node,
	}, nil
}

// Save records a document upload, replacing the row for a re-uploaded
// filename.
func (s *DocumentService) Save(ctx context.Context, userID, filename string, chunkCount int, sizeBytes int64) error {
	doc := &Document{
		ID:         s.snowflake.Generate().Int64(),
		UserID:     userID,
		Filename:   filename,
		ChunkCount: chunkCount,
		SizeBytes:  sizeBytes,
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "filename"}},
		DoUpdates: clause.AssignmentColumns([]string{"chunk_count", "size_bytes", "updated_at"}),
	}).Create(doc)
	if result.Error != nil {
		return fmt.Errorf("failed to save document: %v", result.Error)
	}

	return nil
}

// List returns the user's documents, oldest first.
func (s *DocumentService) List(ctx context.Context, userID string) ([]assistant.DocumentInfo, error) {
	var docs []Document
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&docs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list documents: %v", result.Error)
	}

	infos := make([]assistant.DocumentInfo, len(docs))
	for i, doc := range docs {
		infos[i] = assistant.DocumentInfo{
			Filename:   doc.Filename,
			ChunkCount: doc.ChunkCount,
			SizeBytes:  doc.SizeBytes,
			UploadedAt: doc.CreatedAt,
		}
	}

	return infos, nil
}

// Delete removes one document row; missing rows are not an error.
func (s *DocumentService) Delete(ctx context.Context, userID, filename string) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND filename = ?", userID, filename).
		Delete(&Document{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %v", result.Error)
	}

	return nil
}

// DeleteAll removes every document row for the user.
func (s *DocumentService) DeleteAll(ctx context.Context, userID string) error {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Document{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete documents: %v", result.Error)
	}

	return nil
}
