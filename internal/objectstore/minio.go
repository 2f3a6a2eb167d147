// Package objectstore stores blobs in S3-compatible object storage.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultURLExpiry is the lifetime of presigned download URLs. Seven days
// is the longest S3 accepts.
const DefaultURLExpiry = 7 * 24 * time.Hour

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	// PublicURL, when set, is used as the base of download URLs instead of
	// presigning.
	PublicURL string
}

type Minio struct {
	client    *minio.Client
	bucket    string
	publicURL string
	expiry    time.Duration
}

func NewMinio(conf MinioConfig) (*Minio, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
		Region: conf.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return &Minio{
		client:    client,
		bucket:    conf.Bucket,
		publicURL: strings.TrimRight(conf.PublicURL, "/"),
		expiry:    DefaultURLExpiry,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (m *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %q: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %q: %w", m.bucket, err)
	}
	return nil
}

func (m *Minio) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("putting object %q: %w", key, err)
	}
	return nil
}

func (m *Minio) URL(ctx context.Context, key string) (string, error) {
	if m.publicURL != "" {
		return publicObjectURL(m.publicURL, m.bucket, key), nil
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presigning object %q: %w", key, err)
	}
	return u.String(), nil
}

func (m *Minio) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing object %q: %w", key, err)
	}
	return nil
}

func publicObjectURL(base, bucket, key string) string {
	return base + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}
