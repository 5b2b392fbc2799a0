package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	applog "github.com/pageza/foodgram/backend/internal/logger"
)

// ImageStore persists uploaded images under opaque keys.
type ImageStore interface {
	Save(ctx context.Context, prefix string, img *Image) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeImage parses a "data:image/<type>;base64,<payload>" URI.
func DecodeImage(field, uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, invalid(field, "expected a base64 data URI")
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return nil, invalid(field, fmt.Sprintf("unsupported image type %q", contentType))
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, invalid(field, "image is not valid base64")
	}
	if len(data) == 0 {
		return nil, invalid(field, "image is empty")
	}
	return &Image{Data: data, ContentType: contentType, Ext: ext}, nil
}

func imageKey(prefix string, img *Image) string {
	return path.Join(prefix, uuid.NewString()+"."+img.Ext)
}

// LocalImageStore writes images below a directory served at /media/.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &LocalImageStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, prefix string, img *Image) (string, error) {
	key := imageKey(prefix, img)
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}
	if err := os.WriteFile(dst, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return key, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (s *LocalImageStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/media/" + key
}

type s3Client interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore keeps images in an S3 bucket.
type S3ImageStore struct {
	client    s3Client
	bucket    string
	publicURL string
}

func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	return &S3ImageStore{client: cfg.Client, bucket: cfg.BucketName, publicURL: cfg.PublicURL}
}

func (s *S3ImageStore) Save(ctx context.Context, prefix string, img *Image) (string, error) {
	key := imageKey(prefix, img)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	applog.Debug(ctx, "uploaded image", "bucket", s.bucket, "key", key)
	return key, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *S3ImageStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(s.publicURL, "/") + "/" + key
}

// discardImage removes an image that will not be referenced, logging failures.
func discardImage(ctx context.Context, store ImageStore, key string) {
	if key == "" {
		return
	}
	if err := store.Delete(ctx, key); err != nil {
		applog.Warn(ctx, "failed to delete image", "key", key, "error", err)
	}
}
