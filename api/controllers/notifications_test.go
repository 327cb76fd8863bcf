package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/internal/notifications"
	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

type testNotificationsService struct {
	listFn            func(ctx context.Context, params pagination.Params, filters notifications.NotificationListFilters) (*notifications.NotificationList, error)
	unreadCountFn     func(ctx context.Context) (int64, error)
	markReadFn        func(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error)
	deleteFn          func(ctx context.Context, notificationID uuid.UUID) error
	deleteReadFn      func(ctx context.Context) (int64, error)
	deleteOlderThanFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (s *testNotificationsService) Notify(ctx context.Context, tx *gorm.DB, notificationType enums.NotificationType, message string, orderID *uuid.UUID) error {
	return nil
}

func (s *testNotificationsService) List(ctx context.Context, params pagination.Params, filters notifications.NotificationListFilters) (*notifications.NotificationList, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params, filters)
	}
	return &notifications.NotificationList{}, nil
}

func (s *testNotificationsService) UnreadCount(ctx context.Context) (int64, error) {
	if s.unreadCountFn != nil {
		return s.unreadCountFn(ctx)
	}
	return 0, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error) {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, notificationID)
	}
	return nil, nil
}

func (s *testNotificationsService) Delete(ctx context.Context, notificationID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, notificationID)
	}
	return nil
}

func (s *testNotificationsService) DeleteRead(ctx context.Context) (int64, error) {
	if s.deleteReadFn != nil {
		return s.deleteReadFn(ctx)
	}
	return 0, nil
}

func (s *testNotificationsService) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.deleteOlderThanFn != nil {
		return s.deleteOlderThanFn(ctx, cutoff)
	}
	return 0, nil
}

func TestListNotificationsUnreadFilter(t *testing.T) {
	var got notifications.NotificationListFilters
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, params pagination.Params, filters notifications.NotificationListFilters) (*notifications.NotificationList, error) {
			got = filters
			return &notifications.NotificationList{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/notifications?unread_only=true", nil)
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !got.UnreadOnly {
		t.Fatal("expected unread filter")
	}
}

func TestListNotificationsBadUnreadFlag(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/notifications?unread_only=maybe", nil)
	resp := httptest.NewRecorder()
	ListNotifications(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUnreadNotificationCount(t *testing.T) {
	svc := &testNotificationsService{
		unreadCountFn: func(ctx context.Context) (int64, error) { return 7, nil },
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/notifications/unread-count", nil)
	resp := httptest.NewRecorder()
	UnreadNotificationCount(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["unread"] != 7 {
		t.Fatalf("expected unread=7 got %v", envelope.Data["unread"])
	}
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	notificationID := uuid.New()
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
			if id != notificationID {
				t.Fatalf("unexpected notification %s", id)
			}
			now := time.Now()
			return &models.Notification{ID: id, ReadAt: &now}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/notifications/"+notificationID.String()+"/read", nil)
	req = addRouteParam(req, "notificationId", notificationID.String())
	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestMarkNotificationReadInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/notifications/invalid/read", nil)
	req = addRouteParam(req, "notificationId", "invalid")
	resp := httptest.NewRecorder()
	MarkNotificationRead(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDeleteReadNotifications(t *testing.T) {
	svc := &testNotificationsService{
		deleteReadFn: func(ctx context.Context) (int64, error) { return 3, nil },
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/notifications/read", nil)
	resp := httptest.NewRecorder()
	DeleteReadNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["deleted"] != 3 {
		t.Fatalf("expected deleted=3 got %v", envelope.Data["deleted"])
	}
}
