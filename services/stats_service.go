package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/utils"
)

// Stats is the admin dashboard summary.
type Stats struct {
	PostsByStatus  map[models.PostStatus]int64 `json:"posts_by_status"`
	PostsByService map[models.Service]int64    `json:"posts_by_service"`
	Users          int64                       `json:"users"`
	Admins         int64                       `json:"admins"`
	PendingUploads int64                       `json:"pending_uploads"`
	GeneratedAt    time.Time                   `json:"generated_at"`
}

// StatsService computes the dashboard summary, cached briefly in Redis when available.
type StatsService struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db, ttl: 30 * time.Second}
}

// Overview returns counts per status and service plus user totals.
func (s *StatsService) Overview(ctx context.Context) (*Stats, error) {
	key := StatsCachePrefix + "overview"
	var cached Stats
	if utils.CacheGetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	db := s.db.WithContext(ctx)
	stats := &Stats{
		PostsByStatus:  map[models.PostStatus]int64{},
		PostsByService: map[models.Service]int64{},
		GeneratedAt:    time.Now(),
	}
	for _, st := range []models.PostStatus{models.PostPending, models.PostApproved, models.PostRejected} {
		stats.PostsByStatus[st] = 0
	}
	for _, svc := range models.Services {
		stats.PostsByService[svc] = 0
	}

	type row struct {
		Bucket string
		Total  int64
	}
	var byStatus []row
	if err := db.Model(&models.Post{}).Select("status AS bucket, COUNT(*) AS total").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, r := range byStatus {
		stats.PostsByStatus[models.PostStatus(r.Bucket)] = r.Total
	}
	var byService []row
	if err := db.Model(&models.Post{}).Select("service AS bucket, COUNT(*) AS total").Group("service").Scan(&byService).Error; err != nil {
		return nil, err
	}
	for _, r := range byService {
		stats.PostsByService[models.Service(r.Bucket)] = r.Total
	}
	if err := db.Model(&models.User{}).Count(&stats.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("is_admin = ?", true).Count(&stats.Admins).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.UploadedFile{}).Where("post_id IS NULL").Count(&stats.PendingUploads).Error; err != nil {
		return nil, err
	}

	utils.CacheSetJSON(ctx, key, stats, s.ttl)
	return stats, nil
}
