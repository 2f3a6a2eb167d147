// Package setup is responsible for setting up components.
package setup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/matt-dz/recetario/internal/config"
	"github.com/matt-dz/recetario/internal/database"
	"github.com/matt-dz/recetario/internal/docstore"
	"github.com/matt-dz/recetario/internal/docstore/dynamo"
	"github.com/matt-dz/recetario/internal/docstore/memory"
	"github.com/matt-dz/recetario/internal/fileserver"
	"github.com/matt-dz/recetario/internal/filestore"
	"github.com/matt-dz/recetario/internal/garage"
	mHttp "github.com/matt-dz/recetario/internal/http"
	"github.com/matt-dz/recetario/internal/objectstore"
)

var ErrUnknownBackend = errors.New("unknown backend")

// DocumentStore connects the configured document backend. The returned
// close function releases its connections.
func DocumentStore(ctx context.Context, conf *config.Config, logger *slog.Logger) (docstore.Store, func(), error) {
	noop := func() {}
	switch conf.Documents.Backend {
	case config.DocumentBackendMemory, "":
		logger.WarnContext(ctx, "using in-memory document store, data will not survive restarts")
		return memory.New(), noop, nil

	case config.DocumentBackendPostgres:
		logger.DebugContext(ctx, "connecting to postgres", slog.String("host", conf.Documents.Postgres.Host))
		db, pool, err := database.Connect(ctx, conf.Documents.Postgres.ConnString())
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("initializing database: %w", err)
		}
		return db, pool.Close, nil

	case config.DocumentBackendDynamo:
		awsConf, err := loadAWSConfig(ctx, conf.Documents.Dynamo.Region)
		if err != nil {
			return nil, noop, err
		}
		client := dynamodb.NewFromConfig(awsConf, func(o *dynamodb.Options) {
			if conf.Documents.Dynamo.Endpoint != "" {
				o.BaseEndpoint = aws.String(conf.Documents.Dynamo.Endpoint)
			}
		})
		logger.DebugContext(ctx, "using dynamodb", slog.String("table", conf.Documents.Dynamo.Table))
		return dynamo.New(client, conf.Documents.Dynamo.Table), noop, nil
	}
	return nil, noop, fmt.Errorf("documents backend %q: %w", conf.Documents.Backend, ErrUnknownBackend)
}

// BlobBackend creates the configured blob backend. A minio backend gets
// its bucket created, and its Garage cluster laid out first when Garage
// admin access is configured.
func BlobBackend(
	ctx context.Context, conf *config.Config, client mHttp.HTTPDoer, logger *slog.Logger,
) (filestore.Backend, error) {
	switch conf.Blobs.Backend {
	case config.BlobBackendFileserver, "":
		volume, err := filepath.Abs(conf.Blobs.Fileserver.Volume)
		if err != nil {
			return nil, fmt.Errorf("creating fileserver path: %w", err)
		}
		urlPrefix := conf.Blobs.Fileserver.URLPrefix
		if urlPrefix == "" {
			urlPrefix = filestore.DefaultURLPrefix
		}
		logger.DebugContext(ctx, "using fileserver", slog.String("volume", volume))
		return fileserver.New(volume, conf.HostOrigin, urlPrefix), nil

	case config.BlobBackendMinio:
		if g := conf.Blobs.Garage; g.AdminHost != "" {
			logger.DebugContext(ctx, "initializing garage layout", slog.String("host", g.AdminHost))
			if err := garage.NewClient(client, g.AdminHost, g.AdminToken).InitializeLayout(ctx); err != nil {
				return nil, fmt.Errorf("initializing garage: %w", err)
			}
		}
		m := conf.Blobs.Minio
		store, err := objectstore.NewMinio(objectstore.MinioConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			UseSSL:    m.UseSSL,
			Region:    m.Region,
			PublicURL: m.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case config.BlobBackendS3:
		awsConf, err := loadAWSConfig(ctx, conf.Blobs.S3.Region)
		if err != nil {
			return nil, err
		}
		c := conf.Blobs.S3
		s3Client := s3.NewFromConfig(awsConf, func(o *s3.Options) {
			if c.Endpoint != "" {
				o.BaseEndpoint = aws.String(c.Endpoint)
			}
			o.UsePathStyle = c.UsePathStyle
		})
		logger.DebugContext(ctx, "using s3", slog.String("bucket", c.Bucket))
		return objectstore.NewS3(s3Client, objectstore.S3Config{Bucket: c.Bucket, PublicURL: c.PublicURL}), nil
	}
	return nil, fmt.Errorf("blobs backend %q: %w", conf.Blobs.Backend, ErrUnknownBackend)
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsConf, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading aws config: %w", err)
	}
	return awsConf, nil
}
