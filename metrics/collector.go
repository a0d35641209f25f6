package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Collector periodically refreshes gauges that need a database query.
type Collector struct {
	DB       *gorm.DB
	Logger   *zap.Logger
	Interval time.Duration
}

// Run blocks until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) {
	interval := c.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Collect(ctx); err != nil && c.Logger != nil {
				c.Logger.Warn("metrics collection failed", zap.Error(err))
			}
		}
	}
}

// Collect runs one refresh.
func (c *Collector) Collect(ctx context.Context) error {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := c.DB.WithContext(ctx).
		Table("posts").
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	tableCount.Reset()
	for _, r := range rows {
		tableCount.WithLabelValues(r.Status).Set(float64(r.Count))
	}
	return nil
}
