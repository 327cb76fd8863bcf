package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

// Service defines the admin notification feed operations.
type Service interface {
	Notify(ctx context.Context, tx *gorm.DB, notificationType enums.NotificationType, message string, orderID *uuid.UUID) error
	List(ctx context.Context, params pagination.Params, filters NotificationListFilters) (*NotificationList, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error)
	Delete(ctx context.Context, notificationID uuid.UUID) error
	DeleteRead(ctx context.Context) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a notifications service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Notify writes the alert through tx so it shares the caller's transaction.
// Passing a nil tx records the notification outside any transaction.
func (s *service) Notify(ctx context.Context, tx *gorm.DB, notificationType enums.NotificationType, message string, orderID *uuid.UUID) error {
	if !notificationType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}
	if strings.TrimSpace(message) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification message required")
	}

	repo := s.repo.WithTx(tx)
	_, err := repo.Create(ctx, &models.Notification{
		Type:    notificationType,
		Message: strings.TrimSpace(message),
		OrderID: orderID,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters NotificationListFilters) (*NotificationList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return list, nil
}

func (s *service) UnreadCount(ctx context.Context) (int64, error) {
	count, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error) {
	if notificationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	if _, err := s.load(ctx, notificationID); err != nil {
		return nil, err
	}
	if err := s.repo.MarkRead(ctx, notificationID, s.now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	return s.load(ctx, notificationID)
}

func (s *service) Delete(ctx context.Context, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	if _, err := s.load(ctx, notificationID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, notificationID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	return nil
}

func (s *service) DeleteRead(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteRead(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete read notifications")
	}
	return deleted, nil
}

// DeleteOlderThan sweeps aged rows regardless of read state. The cron worker
// calls this with now minus the configured retention window.
func (s *service) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "cutoff required")
	}
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete aged notifications")
	}
	return deleted, nil
}

func (s *service) load(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	return notification, nil
}
