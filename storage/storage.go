// Package storage persists uploaded files on local disk or an S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/intrafeed/intrafeed/config"
)

// ErrNotExist is returned by Remove when the object is already gone.
var ErrNotExist = errors.New("storage: object does not exist")

// Store saves and removes uploaded objects addressed by key.
type Store interface {
	// Put stores r under key and returns the public URL of the object.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Remove deletes the object, returning ErrNotExist if it is missing.
	Remove(ctx context.Context, key string) error
}

// New builds the store selected by configuration.
func New(ctx context.Context, cfg config.AppConfig) (Store, error) {
	switch cfg.StorageDriver {
	case "local", "":
		return NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix), nil
	case "minio":
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioUseSSL,
			PublicBaseURL: cfg.MinioPublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// NewKey returns a date-sharded object key (yyyy/mm/dd/<uuid><ext>).
func NewKey(now time.Time, ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(now.Format("2006"), now.Format("01"), now.Format("02"), uuid.NewString()+ext)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
