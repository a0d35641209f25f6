package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/intrafeed/intrafeed/models"
)

// Log records approvals in the application log. It is the fallback when no transport is configured.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Dispatch(_ context.Context, post models.Post, recipients []models.User) error {
	l.logger.Info("post approved",
		zap.Uint("post_id", post.ID),
		zap.String("service", string(post.Service)),
		zap.Int("recipients", len(recipients)),
	)
	return nil
}
