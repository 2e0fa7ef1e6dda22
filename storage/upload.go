package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
)

var ErrNotImage = errors.New("only jpg, png, gif and webp images are accepted")

// IsImage reports whether filename has an accepted image extension
func IsImage(filename string) bool {
	return imageExts[strings.ToLower(filepath.Ext(filename))]
}

// PutUpload stores an uploaded image under prefix and returns its key and public URL
func PutUpload(ctx context.Context, store ObjectStorage, prefix string, file *multipart.FileHeader, now time.Time) (string, string, error) {
	if !IsImage(file.Filename) {
		return "", "", ErrNotImage
	}

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Filename)))
	}

	key := NewKey(prefix, file.Filename, now)
	url, err := store.Put(ctx, key, src, file.Size, contentType)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}
