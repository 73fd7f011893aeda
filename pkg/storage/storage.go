// Package storage persists uploaded and generated image files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotFound is returned by Open when the key does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Store is a flat key/value file store. Keys use forward slashes.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// FromEnv selects the backend from STORAGE_BACKEND (local or s3).
func FromEnv(ctx context.Context) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND")))
	switch backend {
	case "", "local":
		root := strings.TrimSpace(os.Getenv("MEDIA_ROOT"))
		if root == "" {
			root = "media"
		}
		baseURL := strings.TrimSpace(os.Getenv("MEDIA_URL"))
		if baseURL == "" {
			baseURL = "/media/"
		}
		return NewLocalStore(root, baseURL)
	case "s3":
		return NewS3Store(ctx, S3ConfigFromEnv())
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}

func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("storage: empty key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("storage: invalid key %q", key)
		}
	}
	return key, nil
}
