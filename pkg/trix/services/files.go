package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/teris-io/shortid"
	"github.com/trix-studio/trix/pkg/storage"
	"go.uber.org/zap"
)

// Upload is a file received from a client.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// IsImage reports whether the declared content type is image/*.
func (u *Upload) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(u.ContentType)), "image/")
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// uploadKey builds "<dir>/<prefix><shortid>_<name>" with a sanitised base name.
func uploadKey(dir, prefix, name string) (string, error) {
	id, err := shortid.Generate()
	if err != nil {
		return "", fmt.Errorf("generate file id: %w", err)
	}
	base := unsafeName.ReplaceAllString(path.Base(strings.ReplaceAll(name, `\`, "/")), "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s/%s%s_%s", dir, prefix, id, base), nil
}

// saveUpload stores u under key and returns the number of bytes written.
func saveUpload(ctx context.Context, store storage.Store, key string, u *Upload) (int64, error) {
	size := u.Size
	body := u.Body
	if size <= 0 {
		data, err := io.ReadAll(u.Body)
		if err != nil {
			return 0, fmt.Errorf("read upload: %w", err)
		}
		size = int64(len(data))
		body = bytes.NewReader(data)
	}
	contentType := u.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := store.Save(ctx, key, body, size, contentType); err != nil {
		return 0, fmt.Errorf("store %s: %w", key, err)
	}
	return size, nil
}

// deleteQuietly removes a stored file; failures are only logged.
func deleteQuietly(ctx context.Context, store storage.Store, key string) {
	if key == "" {
		return
	}
	if err := store.Delete(ctx, key); err != nil {
		zap.L().Warn("failed to delete stored file", zap.String("key", key), zap.Error(err))
	}
}
