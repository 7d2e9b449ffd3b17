package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"unilearn_backend/internal/config"
	"unilearn_backend/internal/util"
	"unilearn_backend/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ObjectStore keeps uploaded course assets such as cover images. Keys are
// slash separated, e.g. "covers/<uuid>.png".
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (url string, err error)
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

var errBadObjectKey = errors.New("object key escapes the storage root")

// NewObjectStore builds the backend named by cfg.Type and falls back to the
// local disk when a remote backend cannot be reached.
func NewObjectStore(ctx context.Context, cfg *config.StorageConfig) ObjectStore {
	switch cfg.Type {
	case util.StorageMinio:
		s, err := newMinioStore(ctx, cfg)
		if err == nil {
			return s
		}
		logger.Log.Error("minio storage unavailable, using local disk", zap.Error(err))
	case util.StorageOSS:
		s, err := newOSSStore(cfg)
		if err == nil {
			return s
		}
		logger.Log.Error("oss storage unavailable, using local disk", zap.Error(err))
	}
	return &diskStore{root: cfg.LocalPath}
}

// diskStore writes objects under root; the router serves root at /uploads.
type diskStore struct {
	root string
}

func (s *diskStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", errBadObjectKey
	}
	return filepath.Join(s.root, clean), nil
}

func (s *diskStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	dst, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *diskStore) Remove(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *diskStore) URL(key string) string {
	return "/uploads/" + key
}

type minioStore struct {
	client *minio.Client
	bucket string
	base   string
}

func newMinioStore(ctx context.Context, cfg *config.StorageConfig) (*minioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
	}

	scheme := "http"
	if cfg.MinioSecure {
		scheme = "https"
	}
	return &minioStore{
		client: client,
		bucket: cfg.MinioBucket,
		base:   fmt.Sprintf("%s://%s/%s/", scheme, cfg.MinioEndpoint, cfg.MinioBucket),
	}, nil
}

func (s *minioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *minioStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *minioStore) URL(key string) string {
	return s.base + key
}

type ossStore struct {
	bucket *oss.Bucket
	base   string
}

func newOSSStore(cfg *config.StorageConfig) (*ossStore, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &ossStore{
		bucket: bucket,
		base:   fmt.Sprintf("https://%s.%s/", cfg.OSSBucket, cfg.OSSEndpoint),
	}, nil
}

func (s *ossStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if err := s.bucket.PutObject(key, r, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *ossStore) Remove(ctx context.Context, key string) error {
	return s.bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (s *ossStore) URL(key string) string {
	return s.base + key
}
