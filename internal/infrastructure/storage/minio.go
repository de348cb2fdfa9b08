package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// MinIOClient archives insight documents in an S3-compatible bucket
type MinIOClient struct {
	client *minio.Client
	bucket string
}

// NewMinIOClient creates a new MinIO client and makes sure the bucket exists
func NewMinIOClient(ctx context.Context, cfg *config.StorageConfig) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client: minioClient,
		bucket: cfg.BucketName,
	}
	if err := client.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return client, nil
}

func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// UploadFile uploads an object
func (m *MinIOClient) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

// UploadJSON marshals v and uploads it as application/json
func (m *MinIOClient) UploadJSON(ctx context.Context, objectName string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", objectName, err)
	}
	return m.UploadFile(ctx, objectName, bytes.NewReader(b), int64(len(b)), "application/json")
}

// GetFileURL gets a presigned URL for accessing an object
func (m *MinIOClient) GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}

// LatestObject returns the greatest object key under prefix. Keys built by
// InsightsObjectName sort by processing time.
func (m *MinIOClient) LatestObject(ctx context.Context, prefix string) (string, bool, error) {
	var latest string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return "", false, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		if obj.Key > latest {
			latest = obj.Key
		}
	}
	return latest, latest != "", nil
}

// InsightsPrefix is the archive folder of a meeting
func InsightsPrefix(meetingID int64) string {
	return fmt.Sprintf("insights/%d/", meetingID)
}

// InsightsObjectName is the archive key of a meeting's insights document
func InsightsObjectName(meetingID int64, processedAt time.Time) string {
	return InsightsPrefix(meetingID) + processedAt.UTC().Format("20060102T150405Z") + ".json"
}
