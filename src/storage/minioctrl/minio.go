package minioctrl

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	UploadsBucket = "docchat-uploads"
)

// MinioService archives the raw uploaded files. Objects are keyed
// <userID>/<filename> inside the uploads bucket.
type MinioService struct {
	client *minio.Client
	bucket string
}

func NewMinioService(endpoint, accessKeyID, secretAccessKey string, useSSL bool) (*MinioService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %v", err)
	}

	return &MinioService{
		client: client,
		bucket: UploadsBucket,
	}, nil
}

func (s *MinioService) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
	}

	return nil
}

func objectKey(userID, filename string) string {
	return fmt.Sprintf("%s/%s", userID, filename)
}

// Put stores the raw bytes of one uploaded file.
func (s *MinioService) Put(ctx context.Context, userID, filename string, data []byte) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, objectKey(userID, filename), reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %v", err)
	}

	return nil
}

// Get returns the raw bytes of one archived upload.
func (s *MinioService) Get(ctx context.Context, userID, filename string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(userID, filename), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %v", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %v", err)
	}

	return data, nil
}

// Delete removes one archived upload.
func (s *MinioService) Delete(ctx context.Context, userID, filename string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectKey(userID, filename), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %v", err)
	}

	return nil
}

// DeleteAll removes every archived upload belonging to the user.
func (s *MinioService) DeleteAll(ctx context.Context, userID string) error {
	objectsCh := make(chan minio.ObjectInfo)

	go func() {
		defer close(objectsCh)
		for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
			Prefix:    userID + "/",
			Recursive: true,
		}) {
			if obj.Err != nil {
				continue
			}
			objectsCh <- minio.ObjectInfo{Key: obj.Key}
		}
	}()

	for err := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if err.Err != nil {
			return fmt.Errorf("failed to delete object %s: %v", err.ObjectName, err.Err)
		}
	}

	return nil
}
