package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

// ReviewList is one page of reviews for a product.
type ReviewList struct {
	Reviews    []models.Review
	NextCursor string
}

// Repository persists customer reviews.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByID(ctx context.Context, reviewID uuid.UUID) (*models.Review, error)
	FindForUser(ctx context.Context, productID, userID uuid.UUID) (*models.Review, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error)
	Update(ctx context.Context, reviewID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, reviewID uuid.UUID) error
	RatingSummary(ctx context.Context, productID uuid.UUID) (sum int64, count int64, err error)
	FindProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	UpdateProductRating(ctx context.Context, productID uuid.UUID, avg float64, count int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Omit("User").Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *repository) FindByID(ctx context.Context, reviewID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).First(&review, "id = ?", reviewID).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repository) FindForUser(ctx context.Context, productID, userID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		First(&review, "product_id = ? AND user_id = ?", productID, userID).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repository) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Review
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &ReviewList{Reviews: rows}
	if len(rows) > limit {
		list.Reviews = rows[:limit]
		last := list.Reviews[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, reviewID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", reviewID).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, reviewID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", reviewID).
		Delete(&models.Review{}).Error
}

func (r *repository) RatingSummary(ctx context.Context, productID uuid.UUID) (int64, int64, error) {
	var row struct {
		Sum   int64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(SUM(rating), 0) AS sum, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Sum, row.Count, nil
}

func (r *repository) FindProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) UpdateProductRating(ctx context.Context, productID uuid.UUID, avg float64, count int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{"rating_avg": avg, "rating_count": count}).Error
}
