package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateAddressInput carries a new shipping destination.
type CreateAddressInput struct {
	FullName   string
	Phone      string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
}

// UpdateAddressInput patches only the supplied fields.
type UpdateAddressInput struct {
	FullName   *string
	Phone      *string
	Street     *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
	IsDefault  *bool
}

// Service defines the customer address book operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*models.Address, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Get(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error)
	Update(ctx context.Context, addressID, userID uuid.UUID, input UpdateAddressInput) (*models.Address, error)
	Delete(ctx context.Context, addressID, userID uuid.UUID) error
	FindForUser(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an address service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := validateRequired(input); err != nil {
		return nil, err
	}

	address := &models.Address{
		UserID:     userID,
		FullName:   strings.TrimSpace(input.FullName),
		Phone:      strings.TrimSpace(input.Phone),
		Street:     strings.TrimSpace(input.Street),
		City:       strings.TrimSpace(input.City),
		State:      strings.TrimSpace(input.State),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Country:    strings.TrimSpace(input.Country),
		IsDefault:  input.IsDefault,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if address.IsDefault {
			if err := repo.ClearDefaultForUser(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
			}
		}
		if _, err := repo.Create(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	addresses, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addresses, nil
}

func (s *service) Get(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error) {
	return s.load(ctx, addressID, userID)
}

func (s *service) Update(ctx context.Context, addressID, userID uuid.UUID, input UpdateAddressInput) (*models.Address, error) {
	address, err := s.load(ctx, addressID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	applyTrimmed(updates, "full_name", input.FullName)
	applyTrimmed(updates, "phone", input.Phone)
	applyTrimmed(updates, "street", input.Street)
	applyTrimmed(updates, "city", input.City)
	applyTrimmed(updates, "state", input.State)
	applyTrimmed(updates, "postal_code", input.PostalCode)
	applyTrimmed(updates, "country", input.Country)
	for field, value := range updates {
		if value == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be empty", field))
		}
	}
	if input.IsDefault != nil {
		updates["is_default"] = *input.IsDefault
	}
	if len(updates) == 0 {
		return address, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.IsDefault != nil && *input.IsDefault {
			if err := repo.ClearDefaultForUser(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
			}
		}
		if err := repo.Update(ctx, address.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, addressID, userID)
}

func (s *service) Delete(ctx context.Context, addressID, userID uuid.UUID) error {
	address, err := s.load(ctx, addressID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, address.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

// FindForUser exposes the raw lookup for checkout. Unlike Get it surfaces
// gorm.ErrRecordNotFound untranslated so the caller decides the error shape.
func (s *service) FindForUser(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error) {
	return s.repo.FindForUser(ctx, addressID, userID)
}

func (s *service) load(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error) {
	if addressID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address and user ids required")
	}
	address, err := s.repo.FindForUser(ctx, addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return address, nil
}

func validateRequired(input CreateAddressInput) error {
	fields := map[string]string{
		"full_name":   input.FullName,
		"phone":       input.Phone,
		"street":      input.Street,
		"city":        input.City,
		"state":       input.State,
		"postal_code": input.PostalCode,
		"country":     input.Country,
	}
	for field, value := range fields {
		if strings.TrimSpace(value) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is required", field))
		}
	}
	return nil
}

func applyTrimmed(updates map[string]any, column string, value *string) {
	if value != nil {
		updates[column] = strings.TrimSpace(*value)
	}
}
