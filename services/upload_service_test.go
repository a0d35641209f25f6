package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/storage"
)

// 1x1 transparent PNG.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestUploadSaveStoresAndRecords(t *testing.T) {
	gdb := setupServiceTestDB(t)
	owner := seedUser(t, gdb, "ada", models.ServiceRH, false)
	dir := t.TempDir()
	svc := NewUploadService(gdb, storage.NewLocalStore(dir, "/static/uploads"), 1)
	ctx := context.Background()

	rec, err := svc.Save(ctx, owner, UploadInput{Filename: "../../pic.PNG", Size: int64(len(tinyPNG)), Body: bytes.NewReader(tinyPNG)})
	if err != nil {
		t.Fatalf("save image: %v", err)
	}
	if rec.Kind != models.AttachmentImage || rec.ContentType != "image/png" || rec.Size != int64(len(tinyPNG)) || rec.OriginalName != "pic.PNG" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if !strings.HasPrefix(rec.URL, "/static/uploads/") || !strings.HasSuffix(rec.URL, ".png") {
		t.Fatalf("unexpected url %q", rec.URL)
	}
	onDisk, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rec.StorageKey)))
	if err != nil || !bytes.Equal(onDisk, tinyPNG) {
		t.Fatalf("stored bytes mismatch: %v", err)
	}

	doc, err := svc.Save(ctx, owner, UploadInput{Filename: "notes.txt", Body: strings.NewReader("meeting notes")})
	if err != nil {
		t.Fatalf("save document: %v", err)
	}
	if doc.Kind != models.AttachmentDocument || doc.Size != int64(len("meeting notes")) {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestUploadSaveRejections(t *testing.T) {
	gdb := setupServiceTestDB(t)
	owner := seedUser(t, gdb, "ada", models.ServiceRH, false)
	dir := t.TempDir()
	svc := NewUploadService(gdb, storage.NewLocalStore(dir, "/static/uploads"), 1)
	ctx := context.Background()

	_, err := svc.Save(ctx, nil, UploadInput{Filename: "a.txt", Body: strings.NewReader("x")})
	expectKind(t, err, KindUnauthenticated)

	_, err = svc.Save(ctx, owner, UploadInput{Filename: "run.exe", Body: strings.NewReader("MZ")})
	expectKind(t, err, KindValidation)

	_, err = svc.Save(ctx, owner, UploadInput{Filename: "fake.jpg", Body: strings.NewReader("plain text pretending")})
	expectKind(t, err, KindValidation)

	_, err = svc.Save(ctx, owner, UploadInput{Filename: "big.txt", Size: 2 << 20, Body: strings.NewReader("x")})
	expectKind(t, err, KindValidation)

	// Declared size lies: the stream is cut and the stored object removed.
	oversized := bytes.Repeat([]byte("a"), int(svc.MaxBytes())+10)
	_, err = svc.Save(ctx, owner, UploadInput{Filename: "sneaky.txt", Size: 10, Body: bytes.NewReader(oversized)})
	expectKind(t, err, KindValidation)

	var count int64
	gdb.Model(&models.UploadedFile{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no upload records, got %d", count)
	}
}

func TestCleanOrphans(t *testing.T) {
	gdb := setupServiceTestDB(t)
	owner := seedUser(t, gdb, "ada", models.ServiceRH, false)
	dir := t.TempDir()
	svc := NewUploadService(gdb, storage.NewLocalStore(dir, "/static/uploads"), 1)
	ctx := context.Background()

	orphan, err := svc.Save(ctx, owner, UploadInput{Filename: "old.txt", Body: strings.NewReader("old")})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	kept, err := svc.Save(ctx, owner, UploadInput{Filename: "kept.txt", Body: strings.NewReader("kept")})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	post := seedPost(t, gdb, owner, time.Now(), 0, models.PostApproved)
	gdb.Model(kept).Update("post_id", post.ID)

	n, err := svc.CleanOrphans(ctx, time.Hour)
	if err != nil || n != 0 {
		t.Fatalf("fresh orphans must survive the grace period: n=%d err=%v", n, err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err = svc.CleanOrphans(ctx, time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("expected one orphan removed: n=%d err=%v", n, err)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(orphan.StorageKey))); !os.IsNotExist(err) {
		t.Fatalf("orphan file still on disk: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(kept.StorageKey))); err != nil {
		t.Fatalf("attached file removed: %v", err)
	}
}
