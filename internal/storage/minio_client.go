package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"marketplace/internal/config"
)

// MinIOClient keeps assets as objects under uploads/ in one bucket.
type MinIOClient struct {
	client *minio.Client
	bucket string
}

const objectPrefix = "uploads/"

func NewMinIOClient(ctx context.Context, cfg config.MinIO) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}
	}

	return &MinIOClient{client: client, bucket: cfg.BucketName}, nil
}

func (m *MinIOClient) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectPrefix+name, body, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"uploaded-at": time.Now().UTC().Format(time.RFC3339),
			},
		})
	if err != nil {
		return fmt.Errorf("put object %s: %w", name, err)
	}
	return nil
}

// Remove stats first because RemoveObject succeeds on missing keys.
func (m *MinIOClient) Remove(ctx context.Context, name string) error {
	if _, err := m.client.StatObject(ctx, m.bucket, objectPrefix+name, minio.StatObjectOptions{}); err != nil {
		return m.translate(name, err)
	}

	err := m.client.RemoveObject(ctx, m.bucket, objectPrefix+name, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove object %s: %w", name, err)
	}
	return nil
}

func (m *MinIOClient) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if _, err := m.client.StatObject(ctx, m.bucket, objectPrefix+name, minio.StatObjectOptions{}); err != nil {
		return nil, m.translate(name, err)
	}

	obj, err := m.client.GetObject(ctx, m.bucket, objectPrefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", name, err)
	}
	return obj, nil
}

func (m *MinIOClient) translate(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("object %s: %w", name, fs.ErrNotExist)
	}
	return fmt.Errorf("stat object %s: %w", name, err)
}
