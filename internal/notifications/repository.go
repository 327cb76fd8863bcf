package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

// NotificationListFilters narrows the admin notification feed.
type NotificationListFilters struct {
	UnreadOnly bool
}

// NotificationList wraps the paginated rows plus the next page cursor.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	NextCursor    string                `json:"next_cursor,omitempty"`
}

// Repository defines persistence operations for admin notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	FindByID(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, params pagination.Params, filters NotificationListFilters) (*NotificationList, error)
	CountUnread(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID, readAt time.Time) error
	Delete(ctx context.Context, notificationID uuid.UUID) error
	DeleteRead(ctx context.Context) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a notifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

func (r *repository) FindByID(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ?", notificationID).
		First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters NotificationListFilters) (*NotificationList, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{})

	if filters.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Notification
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &NotificationList{}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	list.Notifications = rows
	return list, nil
}

func (r *repository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("read_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *repository) MarkRead(ctx context.Context, notificationID uuid.UUID, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", notificationID).
		Update("read_at", readAt).Error
}

func (r *repository) Delete(ctx context.Context, notificationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", notificationID).
		Delete(&models.Notification{}).Error
}

func (r *repository) DeleteRead(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("read_at IS NOT NULL").
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
