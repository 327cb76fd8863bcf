package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
)

type fakeRepository struct {
	createFn       func(ctx context.Context, address *models.Address) (*models.Address, error)
	updateFn       func(ctx context.Context, addressID uuid.UUID, updates map[string]any) error
	deleteFn       func(ctx context.Context, addressID uuid.UUID) error
	findForUserFn  func(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error)
	listForUserFn  func(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	clearDefaultFn func(ctx context.Context, userID uuid.UUID) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, address *models.Address) (*models.Address, error) {
	return f.createFn(ctx, address)
}

func (f *fakeRepository) Update(ctx context.Context, addressID uuid.UUID, updates map[string]any) error {
	return f.updateFn(ctx, addressID, updates)
}

func (f *fakeRepository) Delete(ctx context.Context, addressID uuid.UUID) error {
	return f.deleteFn(ctx, addressID)
}

func (f *fakeRepository) FindForUser(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error) {
	return f.findForUserFn(ctx, addressID, userID)
}

func (f *fakeRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return f.listForUserFn(ctx, userID)
}

func (f *fakeRepository) ClearDefaultForUser(ctx context.Context, userID uuid.UUID) error {
	if f.clearDefaultFn != nil {
		return f.clearDefaultFn(ctx, userID)
	}
	return nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func validInput() CreateAddressInput {
	return CreateAddressInput{
		FullName:   "Rosa Martinez",
		Phone:      "555-0100",
		Street:     "12 Elm St",
		City:       "Austin",
		State:      "TX",
		PostalCode: "78701",
		Country:    "US",
	}
}

func TestCreateAddressClearsPreviousDefault(t *testing.T) {
	userID := uuid.New()
	cleared := false
	repo := &fakeRepository{
		createFn: func(ctx context.Context, address *models.Address) (*models.Address, error) {
			address.ID = uuid.New()
			return address, nil
		},
		clearDefaultFn: func(ctx context.Context, id uuid.UUID) error {
			cleared = true
			return nil
		},
	}
	svc, err := NewService(repo, fakeTx{})
	if err != nil {
		t.Fatal(err)
	}

	input := validInput()
	input.IsDefault = true
	address, err := svc.Create(context.Background(), userID, input)
	if err != nil {
		t.Fatal(err)
	}
	if !cleared {
		t.Fatal("existing default must be cleared before setting a new one")
	}
	if !address.IsDefault {
		t.Fatal("expected new address to be default")
	}
}

func TestCreateAddressRequiresAllFields(t *testing.T) {
	svc, _ := NewService(&fakeRepository{}, fakeTx{})

	input := validInput()
	input.City = "  "
	_, err := svc.Create(context.Background(), uuid.New(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateAddressScopedToOwner(t *testing.T) {
	repo := &fakeRepository{
		findForUserFn: func(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := NewService(repo, fakeTx{})

	street := "New Street 1"
	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateAddressInput{Street: &street})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateAddressPatchesOnlyProvidedFields(t *testing.T) {
	addressID := uuid.New()
	userID := uuid.New()
	var captured map[string]any
	repo := &fakeRepository{
		findForUserFn: func(ctx context.Context, id, uid uuid.UUID) (*models.Address, error) {
			return &models.Address{ID: addressID, UserID: userID, Street: "Old"}, nil
		},
		updateFn: func(ctx context.Context, id uuid.UUID, updates map[string]any) error {
			captured = updates
			return nil
		},
	}
	svc, _ := NewService(repo, fakeTx{})

	street := " New Street 1 "
	if _, err := svc.Update(context.Background(), addressID, userID, UpdateAddressInput{Street: &street}); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 1 || captured["street"] != "New Street 1" {
		t.Fatalf("unexpected updates %v", captured)
	}
}

func TestUpdateAddressRejectsEmptyField(t *testing.T) {
	repo := &fakeRepository{
		findForUserFn: func(ctx context.Context, id, uid uuid.UUID) (*models.Address, error) {
			return &models.Address{ID: id, UserID: uid}, nil
		},
	}
	svc, _ := NewService(repo, fakeTx{})

	blank := "   "
	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateAddressInput{Phone: &blank})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteAddressScopedToOwner(t *testing.T) {
	repo := &fakeRepository{
		findForUserFn: func(ctx context.Context, id, uid uuid.UUID) (*models.Address, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := NewService(repo, fakeTx{})

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
