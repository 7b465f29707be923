package s3

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/consensuslabs/vodstream/internal/storage"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// Service implements storage.Mirror on an S3-compatible bucket
type Service struct {
	client *minio.Client
	bucket string
	prefix string
	logger storage.Logger
}

// NewService creates a new S3 service instance
func NewService(cfg *storage.S3Config, logger storage.Logger) (*Service, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %v", err)
	}

	return &Service{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

// UploadFile uploads a single file under key
func (s *Service) UploadFile(ctx context.Context, filePath, key string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file info: %v", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, file, info.Size(), minio.PutObjectOptions{
		ContentType: storage.ContentType(filePath),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %v", key, err)
	}
	return nil
}

// UploadDir implements storage.Mirror
func (s *Service) UploadDir(ctx context.Context, dir, keyPrefix string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := path.Join(s.prefix, keyPrefix, filepath.ToSlash(rel))
		if err := s.UploadFile(ctx, p, key); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, err
	}

	s.logger.LogInfo("Mirrored output directory", map[string]interface{}{
		"bucket":  s.bucket,
		"prefix":  path.Join(s.prefix, keyPrefix),
		"objects": uploaded,
	})
	return uploaded, nil
}
