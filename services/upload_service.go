package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/storage"
	"github.com/intrafeed/intrafeed/utils"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".odt": true, ".ods": true, ".odp": true,
	".txt": true, ".csv": true, ".zip": true,
}

// UploadInput is one file received from a client.
type UploadInput struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// UploadService stores user files and tracks them until a post references them.
type UploadService struct {
	db       *gorm.DB
	store    storage.Store
	maxBytes int64
	now      func() time.Time
}

// NewUploadService limits uploads to maxMB megabytes.
func NewUploadService(db *gorm.DB, store storage.Store, maxMB int) *UploadService {
	if maxMB <= 0 {
		maxMB = 50
	}
	return &UploadService{db: db, store: store, maxBytes: int64(maxMB) << 20, now: time.Now}
}

// MaxBytes is the accepted upload size.
func (s *UploadService) MaxBytes() int64 { return s.maxBytes }

// Save validates and stores a file for owner.
func (s *UploadService) Save(ctx context.Context, owner *models.User, in UploadInput) (*models.UploadedFile, error) {
	if owner == nil {
		return nil, unauthenticatedError(40100, "authentication required")
	}
	if in.Size > s.maxBytes {
		return nil, validationError(40040, "file is too large")
	}
	name := filepath.Base(strings.TrimSpace(in.Filename))
	ext := strings.ToLower(filepath.Ext(name))
	kind := ""
	switch {
	case imageExtensions[ext]:
		kind = models.AttachmentImage
	case documentExtensions[ext]:
		kind = models.AttachmentDocument
	default:
		return nil, validationError(40041, "unsupported file type")
	}

	// Sniff the first bytes; images must really be images.
	head := make([]byte, 512)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if kind == models.AttachmentImage && !strings.HasPrefix(contentType, "image/") {
		return nil, validationError(40042, "file content is not an image")
	}

	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(in.Body, s.maxBytes-int64(n)+1))
	counted := &countingReader{r: body}
	size := in.Size
	if size <= 0 {
		size = -1
	}
	key := storage.NewKey(s.now(), ext)
	url, err := s.store.Put(ctx, key, counted, size, contentType)
	if err != nil {
		return nil, err
	}
	if counted.n > s.maxBytes {
		_ = s.store.Remove(ctx, key)
		return nil, validationError(40040, "file is too large")
	}

	rec := &models.UploadedFile{
		OwnerID:      owner.ID,
		StorageKey:   key,
		URL:          url,
		OriginalName: utils.StripTags(name),
		Kind:         kind,
		ContentType:  contentType,
		Size:         counted.n,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		_ = s.store.Remove(ctx, key)
		return nil, err
	}
	return rec, nil
}

// CleanOrphans removes uploads never attached to a post and older than grace.
func (s *UploadService) CleanOrphans(ctx context.Context, grace time.Duration) (int, error) {
	var items []models.UploadedFile
	cutoff := s.now().Add(-grace)
	if err := s.db.WithContext(ctx).
		Where("post_id IS NULL AND created_at <= ?", cutoff).
		Limit(100).
		Find(&items).Error; err != nil {
		return 0, err
	}
	removed := 0
	for _, it := range items {
		removeStored(ctx, s.store, it)
		// Drop the row regardless of the file outcome
		if err := s.db.WithContext(ctx).Delete(&models.UploadedFile{}, it.ID).Error; err != nil {
			utils.Logger.Warn("upload cleaner delete row failed", zap.Uint("id", it.ID), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

// StartCleaner runs CleanOrphans every interval until ctx is cancelled.
func (s *UploadService) StartCleaner(ctx context.Context, interval, grace time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.CleanOrphans(ctx, grace)
				if err != nil {
					utils.Logger.Warn("upload cleaner query failed", zap.Error(err))
					continue
				}
				if n > 0 {
					utils.Logger.Info("upload cleaner removed orphans", zap.Int("count", n))
				}
			}
		}
	}()
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
