package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore persists assets onto the local filesystem. It is intended for
// development and test environments where an object storage service is not
// available.
type FileStore struct {
	basePath   string
	publicBase string
}

// NewFileStore initializes a FileStore rooted at basePath. publicBase is
// the URL prefix under which basePath is served, e.g. http://localhost:8080/assets.
func NewFileStore(basePath, publicBase string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{
		basePath:   basePath,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// Put stores data under key and returns its public URL.
func (s *FileStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	cleanKey, err := s.Write(ctx, key, data)
	if err != nil {
		return "", err
	}
	return s.PublicURL(cleanKey), nil
}

// PresignPut is unsupported for local storage; clients upload through the
// API process instead.
func (s *FileStore) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	return "", errors.New("storage: presigned uploads require s3 storage")
}

func (s *FileStore) PublicURL(key string) string {
	if s == nil || s.publicBase == "" {
		return "/" + strings.TrimLeft(key, "/")
	}
	return s.publicBase + "/" + strings.TrimLeft(key, "/")
}

var _ ObjectStore = (*FileStore)(nil)

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
