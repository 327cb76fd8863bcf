package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/rmoralesf/vitalstack-backend/pkg/logger"
)

const defaultNotificationRetention = 30 * 24 * time.Hour

// NotificationCleanupJobParams configure the aged notification sweep.
type NotificationCleanupJobParams struct {
	Logger    *logger.Logger
	Cleaner   notificationCleaner
	Retention time.Duration
}

type notificationCleaner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewNotificationCleanupJob builds the cron job that purges admin
// notifications past the retention window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Cleaner == nil {
		return nil, fmt.Errorf("notification cleaner required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultNotificationRetention
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		cleaner:   params.Cleaner,
		retention: retention,
		now:       time.Now,
	}, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	cleaner   notificationCleaner
	retention time.Duration
	now       func() time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.cleaner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"retention":    j.retention.String(),
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
