// Package storage keeps product, category and banner images in an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/slug"
	"go.uber.org/zap"
)

var ErrInvalidKey = errors.New("invalid storage key")

// ObjectStorage stores uploaded files and returns their public URL
type ObjectStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New selects the storage driver from configuration
func New(cfg config.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Storage(cfg, WithLogger(logger))
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// imageExts are stripped repeatedly so "photo.jpg.jpg" keeps a single extension
var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// NewKey builds "<prefix>/<unix-nanos>_<name><ext>" from an uploaded file name
func NewKey(prefix, filename string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	for imageExts[strings.ToLower(filepath.Ext(name))] {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	name = slug.Make(name)
	if name == "" {
		name = "file"
	}
	return path.Join(prefix, fmt.Sprintf("%d_%s%s", now.UnixNano(), name, ext))
}

// validKey rejects keys that could escape the storage root
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return false
		}
	}
	return true
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}
