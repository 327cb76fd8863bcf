package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
)

type fakeRepository struct {
	createFn         func(ctx context.Context, user *models.User) (*models.User, error)
	findByIDFn       func(ctx context.Context, userID uuid.UUID) (*models.User, error)
	findByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	updateFn         func(ctx context.Context, userID uuid.UUID, updates map[string]any) error
	touchLastLoginFn func(ctx context.Context, userID uuid.UUID, at time.Time) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return f.createFn(ctx, user)
}

func (f *fakeRepository) FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return f.findByIDFn(ctx, userID)
}

func (f *fakeRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.findByEmailFn(ctx, email)
}

func (f *fakeRepository) Update(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	return f.updateFn(ctx, userID, updates)
}

func (f *fakeRepository) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return f.touchLastLoginFn(ctx, userID, at)
}

func profileUser(id uuid.UUID) *models.User {
	return &models.User{
		ID:        id,
		Email:     "customer@example.com",
		FirstName: "Rosa",
		LastName:  "Ibarra",
		Role:      enums.UserRoleCustomer,
		IsActive:  true,
	}
}

func assertUserErrorCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestGetProfile(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepository{
		findByIDFn: func(_ context.Context, userID uuid.UUID) (*models.User, error) {
			if userID != id {
				t.Fatalf("unexpected user id %s", userID)
			}
			return profileUser(id), nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	user, err := svc.GetProfile(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if user.Email != "customer@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	repo := &fakeRepository{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := NewService(repo)
	_, err := svc.GetProfile(context.Background(), uuid.New())
	assertUserErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateProfilePatchesOnlyProvidedFields(t *testing.T) {
	id := uuid.New()
	var patched map[string]any
	repo := &fakeRepository{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return profileUser(id), nil
		},
		updateFn: func(_ context.Context, _ uuid.UUID, updates map[string]any) error {
			patched = updates
			return nil
		},
	}
	svc, _ := NewService(repo)

	first := "  Maria  "
	if _, err := svc.UpdateProfile(context.Background(), id, UpdateProfileInput{FirstName: &first}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if len(patched) != 1 || patched["first_name"] != "Maria" {
		t.Fatalf("unexpected patch %v", patched)
	}
}

func TestUpdateProfileClearsPhone(t *testing.T) {
	id := uuid.New()
	var patched map[string]any
	repo := &fakeRepository{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return profileUser(id), nil
		},
		updateFn: func(_ context.Context, _ uuid.UUID, updates map[string]any) error {
			patched = updates
			return nil
		},
	}
	svc, _ := NewService(repo)

	empty := ""
	if _, err := svc.UpdateProfile(context.Background(), id, UpdateProfileInput{Phone: &empty}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if value, ok := patched["phone"]; !ok || value != nil {
		t.Fatalf("expected phone cleared, got %v", patched)
	}
}

func TestUpdateProfileRejectsBlankNames(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepository{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return profileUser(id), nil
		},
	}
	svc, _ := NewService(repo)

	blank := "   "
	_, err := svc.UpdateProfile(context.Background(), id, UpdateProfileInput{FirstName: &blank})
	assertUserErrorCode(t, err, pkgerrors.CodeValidation)
	_, err = svc.UpdateProfile(context.Background(), id, UpdateProfileInput{LastName: &blank})
	assertUserErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateProfileEmptyPatchSkipsWrite(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepository{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return profileUser(id), nil
		},
		updateFn: func(_ context.Context, _ uuid.UUID, _ map[string]any) error {
			t.Fatal("unexpected write")
			return nil
		},
	}
	svc, _ := NewService(repo)

	if _, err := svc.UpdateProfile(context.Background(), id, UpdateProfileInput{}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
}
