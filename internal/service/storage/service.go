package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"blood-link/internal/config"
)

type Service interface {
	// Upload stores the object under folder and returns its public URL.
	Upload(ctx context.Context, folder, fileName string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

type service struct {
	minioClient *minio.Client
	cfg         *config.Config
}

func NewService(minioClient *minio.Client, cfg *config.Config) Service {
	return &service{
		minioClient: minioClient,
		cfg:         cfg,
	}
}

func (s *service) Upload(ctx context.Context, folder, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.minioClient == nil {
		return "", fmt.Errorf("object storage is not configured")
	}

	storagePath := fmt.Sprintf("%s/%s/%s%s", folder, time.Now().Format("2006/01"), uuid.NewString(), path.Ext(fileName))

	_, err := s.minioClient.PutObject(ctx, s.cfg.MinIOBucket, storagePath, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	return s.publicURL(storagePath), nil
}

func (s *service) Delete(ctx context.Context, publicURL string) error {
	if s.minioClient == nil {
		return nil
	}
	storagePath, ok := s.storagePath(publicURL)
	if !ok {
		return nil
	}
	return s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, storagePath, minio.RemoveObjectOptions{})
}

func (s *service) publicURL(storagePath string) string {
	segments := strings.Split(storagePath, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/%s", s.baseURL(), strings.Join(segments, "/"))
}

func (s *service) baseURL() string {
	scheme := "http"
	if s.cfg.MinIOPublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, s.cfg.MinIOPublicEndpoint, s.cfg.MinIOBucket)
}

// storagePath maps a URL produced by publicURL back to its object key.
func (s *service) storagePath(publicURL string) (string, bool) {
	rest, ok := strings.CutPrefix(publicURL, s.baseURL()+"/")
	if !ok || rest == "" {
		return "", false
	}
	p, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return p, true
}
