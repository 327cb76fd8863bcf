package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

type fakeRepository struct {
	withTxCalled  bool
	createFn      func(ctx context.Context, n *models.Notification) (*models.Notification, error)
	findByIDFn    func(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	listFn        func(ctx context.Context, params pagination.Params, filters NotificationListFilters) (*NotificationList, error)
	countUnreadFn func(ctx context.Context) (int64, error)
	markReadFn    func(ctx context.Context, id uuid.UUID, readAt time.Time) error
	deleteFn      func(ctx context.Context, id uuid.UUID) error
	deleteReadFn  func(ctx context.Context) (int64, error)
	deleteOlderFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	if tx != nil {
		f.withTxCalled = true
	}
	return f
}

func (f *fakeRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	return f.createFn(ctx, n)
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeRepository) List(ctx context.Context, params pagination.Params, filters NotificationListFilters) (*NotificationList, error) {
	return f.listFn(ctx, params, filters)
}

func (f *fakeRepository) CountUnread(ctx context.Context) (int64, error) {
	return f.countUnreadFn(ctx)
}

func (f *fakeRepository) MarkRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	return f.markReadFn(ctx, id, readAt)
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeRepository) DeleteRead(ctx context.Context) (int64, error) {
	return f.deleteReadFn(ctx)
}

func (f *fakeRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.deleteOlderFn(ctx, cutoff)
}

func TestNotifyWritesThroughTransaction(t *testing.T) {
	var created *models.Notification
	repo := &fakeRepository{
		createFn: func(ctx context.Context, n *models.Notification) (*models.Notification, error) {
			created = n
			return n, nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatal(err)
	}

	orderID := uuid.New()
	if err := svc.Notify(context.Background(), &gorm.DB{}, enums.NotificationTypeNewOrder, "  New order placed  ", &orderID); err != nil {
		t.Fatal(err)
	}
	if !repo.withTxCalled {
		t.Fatal("notify must route through the caller's transaction")
	}
	if created.Message != "New order placed" {
		t.Fatalf("message not trimmed: %q", created.Message)
	}
	if created.OrderID == nil || *created.OrderID != orderID {
		t.Fatal("order id not carried")
	}
}

func TestNotifyValidation(t *testing.T) {
	svc, _ := NewService(&fakeRepository{})

	err := svc.Notify(context.Background(), nil, enums.NotificationType("PING"), "msg", nil)
	assertCode(t, err, pkgerrors.CodeValidation)

	err = svc.Notify(context.Background(), nil, enums.NotificationTypeSystemNotice, "   ", nil)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestMarkReadStampsTime(t *testing.T) {
	id := uuid.New()
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	var stamped time.Time
	stored := &models.Notification{ID: id, Type: enums.NotificationTypeNewOrder, Message: "m"}
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, nid uuid.UUID) (*models.Notification, error) {
			return stored, nil
		},
		markReadFn: func(ctx context.Context, nid uuid.UUID, readAt time.Time) error {
			stamped = readAt
			stored.ReadAt = &readAt
			return nil
		},
	}
	svc, _ := NewService(repo)
	svc.(*service).now = func() time.Time { return now }

	updated, err := svc.MarkRead(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if !stamped.Equal(now) {
		t.Fatalf("read_at = %v, want %v", stamped, now)
	}
	if updated.ReadAt == nil {
		t.Fatal("expected read_at on result")
	}
}

func TestMarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := NewService(repo)

	_, err := svc.MarkRead(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteOlderThanRequiresCutoff(t *testing.T) {
	svc, _ := NewService(&fakeRepository{})

	_, err := svc.DeleteOlderThan(context.Background(), time.Time{})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteOlderThanReturnsCount(t *testing.T) {
	repo := &fakeRepository{
		deleteOlderFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			return 7, nil
		},
	}
	svc, _ := NewService(repo)

	deleted, err := svc.DeleteOlderThan(context.Background(), time.Now().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 7 {
		t.Fatalf("deleted = %d, want 7", deleted)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
}
