// Package minio uploads run artifacts (curated datasets, vocabularies,
// reports) to S3-compatible object storage.
package minio

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/chemforge/smiclean/internal/config"
	"github.com/chemforge/smiclean/internal/infrastructure/monitoring/logging"
	"github.com/chemforge/smiclean/pkg/errors"
)

// ArtifactStore implements curation.ArtifactStore on a MinIO bucket.
type ArtifactStore struct {
	client *minio.Client
	bucket string
	log    logging.Logger
}

// NewArtifactStore connects to the object store and ensures the artifact
// bucket exists.
func NewArtifactStore(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*ArtifactStore, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "cannot create object storage client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "cannot check artifact bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStorageError, "cannot create artifact bucket")
		}
	}
	return &ArtifactStore{client: client, bucket: cfg.Bucket, log: log.Named("minio")}, nil
}

// Upload stores the local file under objectName in the artifact bucket.
func (s *ArtifactStore) Upload(ctx context.Context, localPath, objectName string) error {
	info, err := s.client.FPutObject(ctx, s.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "artifact upload failed")
	}
	s.log.Debug("artifact uploaded",
		logging.String("object", objectName),
		logging.Int64("bytes", info.Size))
	return nil
}
