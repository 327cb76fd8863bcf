package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

const (
	minRating = 1
	maxRating = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier publishes admin notifications inside the review transaction.
type Notifier interface {
	Notify(ctx context.Context, tx *gorm.DB, notificationType enums.NotificationType, message string, orderID *uuid.UUID) error
}

// SubmitReviewInput carries a customer rating for a product. A second submit
// by the same customer replaces the earlier one.
type SubmitReviewInput struct {
	Rating  int
	Comment *string
}

// Service defines the review operations.
type Service interface {
	Submit(ctx context.Context, productID, userID uuid.UUID, input SubmitReviewInput) (*models.Review, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error)
	DeleteForUser(ctx context.Context, reviewID, userID uuid.UUID) error
	Delete(ctx context.Context, reviewID uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier Notifier
}

// NewService builds a review service with the required dependencies.
func NewService(repo Repository, tx txRunner, notifier Notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{repo: repo, tx: tx, notifier: notifier}, nil
}

func (s *service) Submit(ctx context.Context, productID, userID uuid.UUID, input SubmitReviewInput) (*models.Review, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}
	var comment *string
	if input.Comment != nil {
		trimmed := strings.TrimSpace(*input.Comment)
		if trimmed != "" {
			comment = &trimmed
		}
	}

	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available for review")
	}

	var result *models.Review
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindForUser(ctx, productID, userID)
		switch {
		case err == nil:
			updates := map[string]any{"rating": input.Rating, "comment": comment}
			if err := repo.Update(ctx, existing.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
			}
			existing.Rating = input.Rating
			existing.Comment = comment
			result = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			created, err := repo.Create(ctx, &models.Review{
				ProductID: productID,
				UserID:    userID,
				Rating:    input.Rating,
				Comment:   comment,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
			}
			result = created
			message := fmt.Sprintf("New %d-star review for %s", input.Rating, product.Name)
			if err := s.notifier.Notify(ctx, tx, enums.NotificationTypeNewReview, message, nil); err != nil {
				return err
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
		}

		return s.recompute(ctx, repo, productID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	list, err := s.repo.ListForProduct(ctx, productID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return list, nil
}

// DeleteForUser removes the caller's own review.
func (s *service) DeleteForUser(ctx context.Context, reviewID, userID uuid.UUID) error {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return s.remove(ctx, review)
}

// Delete removes any review, for admin moderation.
func (s *service) Delete(ctx context.Context, reviewID uuid.UUID) error {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return err
	}
	return s.remove(ctx, review)
}

func (s *service) load(ctx context.Context, reviewID uuid.UUID) (*models.Review, error) {
	if reviewID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review id required")
	}
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}

func (s *service) remove(ctx context.Context, review *models.Review) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Delete(ctx, review.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
		}
		return s.recompute(ctx, repo, review.ProductID)
	})
}

// recompute refreshes the product aggregate from the surviving reviews. The
// average is rounded to one decimal place to match the rating_avg column.
func (s *service) recompute(ctx context.Context, repo Repository, productID uuid.UUID) error {
	sum, count, err := repo.RatingSummary(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize ratings")
	}
	avg := 0.0
	if count > 0 {
		avg = decimal.NewFromInt(sum).
			Div(decimal.NewFromInt(count)).
			Round(1).
			InexactFloat64()
	}
	if err := repo.UpdateProductRating(ctx, productID, avg, int(count)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
	}
	return nil
}
