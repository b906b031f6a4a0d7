package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/i474232898/point-forecast/internal/forecast"
)

// ObjectStorage is the write side of an object store.
type ObjectStorage interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64) error
}

// MinIOClient implements ObjectStorage using MinIO.
type MinIOClient struct {
	client     *minio.Client
	bucketName string
}

// MinIOConfig holds MinIO connection settings.
type MinIOConfig struct {
	Endpoint  string // e.g., "localhost:9000"
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinIOClient connects to MinIO and creates the bucket if it is missing.
func NewMinIOClient(ctx context.Context, cfg MinIOConfig) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOClient{
		client:     client,
		bucketName: cfg.Bucket,
	}, nil
}

// Put stores an object in MinIO.
func (m *MinIOClient) Put(ctx context.Context, key string, reader io.Reader, size int64) error {
	_, err := m.client.PutObject(ctx, m.bucketName, key, reader, size, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}
	return nil
}

// Archiver writes raw forecast payloads to object storage. It implements
// forecast.Archiver.
type Archiver struct {
	storage ObjectStorage
	newID   func() (uuid.UUID, error)
}

// NewArchiver creates an Archiver over storage.
func NewArchiver(storage ObjectStorage) *Archiver {
	return &Archiver{storage: storage, newID: uuid.NewV7}
}

// Archive stores payload under a fresh time-ordered run ID.
func (a *Archiver) Archive(ctx context.Context, key forecast.Key, fetchedAt time.Time, payload []byte) error {
	id, err := a.newID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	objectKey := NewObjectKey(key, fetchedAt, id.String()).Key()
	if err := a.storage.Put(ctx, objectKey, bytes.NewReader(payload), int64(len(payload))); err != nil {
		return fmt.Errorf("archive %s: %w", objectKey, err)
	}
	return nil
}
