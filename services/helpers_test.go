package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/intrafeed/intrafeed/config"
	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/utils"
)

func TestMain(m *testing.M) {
	config.Set(config.AppConfig{JWTSecret: "test-secret"})
	utils.SetRedis(nil)
	os.Exit(m.Run())
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, first string, service models.Service, admin bool) *models.User {
	t.Helper()
	u := &models.User{
		FirstName:            first,
		LastName:             "Test",
		Email:                fmt.Sprintf("%s.%d@corp.example", first, time.Now().UnixNano()),
		Service:              service,
		Role:                 models.DefaultRole,
		IsAdmin:              admin,
		NotificationsEnabled: true,
		PasswordHash:         "x",
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

type dispatchCall struct {
	postID     uint
	recipients []uint
}

type recordingDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
}

func (r *recordingDispatcher) Dispatch(_ context.Context, post models.Post, recipients []models.User) error {
	ids := make([]uint, 0, len(recipients))
	for _, u := range recipients {
		ids = append(ids, u.ID)
	}
	r.mu.Lock()
	r.calls = append(r.calls, dispatchCall{postID: post.ID, recipients: ids})
	r.mu.Unlock()
	return nil
}

func (r *recordingDispatcher) Calls() []dispatchCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dispatchCall(nil), r.calls...)
}

func expectKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if !IsKind(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}
