// Package storage wraps the object storage bucket that holds workspace
// and project images.
package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageStore is the handler-facing surface of the images bucket.
type ImageStore interface {
	Upload(ctx context.Context, prefix string, header *multipart.FileHeader) (string, error)
	PublicURL(imageID string) string
	Remove(ctx context.Context, imageIDs []string) error
}

// Config holds the object storage connection settings
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicURL is the externally reachable base URL of the bucket,
	// e.g. "https://cdn.example.com/images". Empty derives one from
	// the endpoint.
	PublicURL string
}

// MinioImageStore is a minio-backed ImageStore
type MinioImageStore struct {
	client *minio.Client
	config Config
}

// NewImageStore connects to object storage and ensures the bucket exists.
func NewImageStore(ctx context.Context, config Config) (*MinioImageStore, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object storage: %w", err)
	}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", config.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", config.Bucket, err)
		}
	}

	return &MinioImageStore{client: client, config: config}, nil
}

// Upload stores an uploaded file under "<prefix>/<uuid>.<ext>" and returns
// the object name, which is what gets persisted as an image id.
func (s *MinioImageStore) Upload(ctx context.Context, prefix string, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	ext := strings.TrimPrefix(path.Ext(header.Filename), ".")
	if ext == "" {
		ext = "png"
	}
	objectName := fmt.Sprintf("%s/%s.%s", prefix, uuid.NewString(), ext)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, s.config.Bucket, objectName, file, header.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %q: %w", objectName, err)
	}

	return objectName, nil
}

// PublicURL returns the public URL for a stored image id, or "" for none.
func (s *MinioImageStore) PublicURL(imageID string) string {
	if imageID == "" {
		return ""
	}
	if s.config.PublicURL != "" {
		return strings.TrimRight(s.config.PublicURL, "/") + "/" + imageID
	}

	scheme := "http"
	if s.config.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.config.Endpoint, s.config.Bucket, imageID)
}

// Remove deletes stored images. Missing objects are not an error.
func (s *MinioImageStore) Remove(ctx context.Context, imageIDs []string) error {
	for _, id := range imageIDs {
		if id == "" {
			continue
		}
		name := s.objectName(id)
		if err := s.client.RemoveObject(ctx, s.config.Bucket, name, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove %q: %w", name, err)
		}
	}
	return nil
}

// objectName maps a stored image id back to its bucket object name.
// Workspace and project images are persisted as bare object names, but
// task attachments arrive from clients as public URLs.
func (s *MinioImageStore) objectName(id string) string {
	if s.config.PublicURL != "" {
		base := strings.TrimRight(s.config.PublicURL, "/") + "/"
		if strings.HasPrefix(id, base) {
			return strings.TrimPrefix(id, base)
		}
	}
	for _, scheme := range []string{"https", "http"} {
		base := fmt.Sprintf("%s://%s/%s/", scheme, s.config.Endpoint, s.config.Bucket)
		if strings.HasPrefix(id, base) {
			return strings.TrimPrefix(id, base)
		}
	}
	return id
}
