package backup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archiver stores a copy of imported FAQ CSV files in S3-compatible storage
// so an import can be audited or rolled back by hand.
type Archiver interface {
	ArchiveImport(ctx context.Context, companyID string, data []byte) (string, error)
}

// R2Archiver implements Archiver against Cloudflare R2 or any S3-compatible
// endpoint.
type R2Archiver struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewR2Archiver constructs the archiver.
func NewR2Archiver(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*R2Archiver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := strings.HasPrefix(strings.ToLower(endpoint), "https")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init backup client: %w", err)
	}
	return &R2Archiver{client: client, bucket: bucket, logger: logger.With("component", "backup.r2")}, nil
}

// ArchiveImport uploads the CSV under a timestamped key and returns the key.
func (a *R2Archiver) ArchiveImport(ctx context.Context, companyID string, data []byte) (string, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}
	key := fmt.Sprintf("imports/%s/%s.csv", companyID, time.Now().UTC().Format("20060102-150405"))
	reader := bytes.NewReader(data)
	_, err := a.client.PutObject(ctx, a.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType:      "text/csv",
		DisableMultipart: len(data) < 5*1024*1024, // small uploads as single part
	})
	if err != nil {
		return "", err
	}
	a.logger.Info("import archived", "company_id", companyID, "key", key, "bytes", len(data))
	return key, nil
}

func (a *R2Archiver) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err == nil && exists {
		return nil
	}
	err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		raw = parts[0]
	}
	return raw
}

var _ Archiver = (*R2Archiver)(nil)
