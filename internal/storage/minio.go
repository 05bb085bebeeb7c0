package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/arzan03/campus-connect/internal/config"
)

// MaxImageSize bounds uploaded issue images to 5MB.
const MaxImageSize = 5 << 20

// allowedExtensions is the upload allow-list; checked together with the
// declared image/* content type.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// AllowedImage reports whether a filename and declared content type pass the
// upload allow-list.
func AllowedImage(filename, contentType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return allowedExtensions[ext] && strings.HasPrefix(contentType, "image/")
}

// ObjectName builds a collision-free object name for an upload: timestamp
// plus a random suffix, original extension preserved.
func ObjectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), suffix, ext)
}

// ImageStore keeps issue images in a MinIO bucket.
type ImageStore struct {
	client *minio.Client
	bucket string
}

// NewImageStore connects to MinIO and makes sure the bucket exists.
func NewImageStore(cfg config.Minio) (*ImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("created bucket")
	}

	log.Info().Str("endpoint", cfg.Endpoint).Msg("connected to MinIO")
	return &ImageStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *ImageStore) Save(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Open returns the object's reader and content type.
func (s *ImageStore) Open(ctx context.Context, objectName string) (io.ReadCloser, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, "", err
	}
	return obj, stat.ContentType, nil
}

func (s *ImageStore) Remove(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}
