package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dropzone/config"
)

// Minio stores upload records as objects in a single bucket.
type Minio struct {
	client     *minio.Client
	bucketName string
	location   string
}

func Init(cfg config.MinIOConfig) (*Minio, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Location,
	})
	if err != nil {
		slog.Error("failed to connect to MinIO", "error", err)
		return nil, fmt.Errorf("minio client: %w", err)
	}

	slog.Info("minio client connected", "endpoint", cfg.Endpoint, "bucket", cfg.BucketName)
	return &Minio{
		client:     minioClient,
		bucketName: cfg.BucketName,
		location:   cfg.Location,
	}, nil
}

// EnsureBucket creates the bucket unless it already exists.
func (m *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucketName)
	if err != nil {
		slog.Error("failed to check bucket", "bucket", m.bucketName, "error", err)
		return fmt.Errorf("checking bucket %s: %w", m.bucketName, err)
	}
	if exists {
		slog.Debug("bucket already exists", "bucket", m.bucketName)
		return nil
	}

	err = m.client.MakeBucket(ctx, m.bucketName, minio.MakeBucketOptions{Region: m.location})
	if err != nil {
		if isBucketAlreadyExists(err) {
			slog.Info("bucket was created concurrently", "bucket", m.bucketName)
			return nil
		}
		slog.Error("failed to create bucket", "bucket", m.bucketName, "error", err)
		return fmt.Errorf("creating bucket %s: %w", m.bucketName, err)
	}

	slog.Info("bucket created", "bucket", m.bucketName)
	return nil
}

func isBucketAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	code := minio.ToErrorResponse(err).Code
	return code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" ||
		strings.Contains(err.Error(), "BucketAlreadyExists")
}

func isNotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
