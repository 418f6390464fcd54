package config

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BlobStore wraps MinIO/S3 for manuscript documents, copyediting files and
// galleys. The workflow engine only ever handles object keys; bytes never
// pass through the database.
type BlobStore struct {
	client *minio.Client
	bucket string
	region string
}

var Storage *BlobStore

// InitStorage builds the MinIO client from the environment and makes sure
// the bucket exists.
func InitStorage() {
	store, err := NewBlobStore()
	if err != nil {
		log.Fatal("Failed to initialize blob storage:", err)
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		log.Fatal("Failed to ensure storage bucket:", err)
	}
	Storage = store
	log.Println("Blob storage connected successfully")
}

func NewBlobStore() (*BlobStore, error) {
	endpoint := os.Getenv("S3_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		bucket = "editorial-files"
	}
	region := os.Getenv("S3_REGION")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_SECRET_KEY"), ""),
		Secure: os.Getenv("S3_USE_SSL") == "true",
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &BlobStore{client: client, bucket: bucket, region: region}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *BlobStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Store uploads one object and returns nothing beyond the error; the caller
// owns the key.
func (s *BlobStore) Store(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, opts); err != nil {
		return fmt.Errorf("store object: %w", err)
	}
	return nil
}

// Retrieve fetches the raw bytes for an object key.
func (s *BlobStore) Retrieve(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()
	buf, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return buf, nil
}

// PresignURL returns a signed GET URL so downloads bypass the API server.
func (s *BlobStore) PresignURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}
