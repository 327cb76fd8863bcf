package bundles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
)

type fakeRepository struct {
	createFn          func(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error)
	findByIDFn        func(ctx context.Context, bundleID uuid.UUID) (*models.Bundle, error)
	listFn            func(ctx context.Context, activeOnly bool) ([]models.Bundle, error)
	updateFn          func(ctx context.Context, bundleID uuid.UUID, updates map[string]any) error
	replaceItemsFn    func(ctx context.Context, bundleID uuid.UUID, items []models.BundleItem) error
	findProductByIDFn func(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error) {
	return f.createFn(ctx, bundle)
}

func (f *fakeRepository) FindByID(ctx context.Context, bundleID uuid.UUID) (*models.Bundle, error) {
	return f.findByIDFn(ctx, bundleID)
}

func (f *fakeRepository) List(ctx context.Context, activeOnly bool) ([]models.Bundle, error) {
	return f.listFn(ctx, activeOnly)
}

func (f *fakeRepository) Update(ctx context.Context, bundleID uuid.UUID, updates map[string]any) error {
	return f.updateFn(ctx, bundleID, updates)
}

func (f *fakeRepository) ReplaceItems(ctx context.Context, bundleID uuid.UUID, items []models.BundleItem) error {
	return f.replaceItemsFn(ctx, bundleID, items)
}

func (f *fakeRepository) FindProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return f.findProductByIDFn(ctx, productID)
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	f.calls++
	return fn(nil)
}

func activeProduct(id uuid.UUID) *models.Product {
	return &models.Product{
		ID:         id,
		Name:       "Whey Protein",
		Brand:      "VitalStack",
		Category:   enums.ProductCategoryProtein,
		PriceCents: 4999,
		Stock:      10,
		IsActive:   true,
	}
}

func assertBundleErrorCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestBundleCreate(t *testing.T) {
	productA := uuid.New()
	productB := uuid.New()
	var created *models.Bundle
	repo := &fakeRepository{
		findProductByIDFn: func(_ context.Context, id uuid.UUID) (*models.Product, error) {
			return activeProduct(id), nil
		},
		createFn: func(_ context.Context, bundle *models.Bundle) (*models.Bundle, error) {
			bundle.ID = uuid.New()
			created = bundle
			return bundle, nil
		},
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Bundle, error) {
			return created, nil
		},
	}
	svc, err := NewService(repo, &fakeTx{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	bundle, err := svc.Create(context.Background(), CreateBundleInput{
		Name:       "  Starter Stack  ",
		PriceCents: 8999,
		Items: []BundleItemInput{
			{ProductID: productA, Qty: 1},
			{ProductID: productB, Qty: 2},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if bundle.Name != "Starter Stack" {
		t.Fatalf("expected trimmed name, got %q", bundle.Name)
	}
	if !bundle.IsActive {
		t.Fatal("expected new bundle to be active")
	}
	if len(bundle.Items) != 2 || bundle.Items[1].Qty != 2 {
		t.Fatalf("unexpected items %+v", bundle.Items)
	}
}

func TestBundleCreateValidation(t *testing.T) {
	product := uuid.New()
	cases := []struct {
		name  string
		input CreateBundleInput
		code  pkgerrors.Code
	}{
		{"blank name", CreateBundleInput{PriceCents: 100, Items: []BundleItemInput{{ProductID: product, Qty: 1}}}, pkgerrors.CodeValidation},
		{"zero price", CreateBundleInput{Name: "b", Items: []BundleItemInput{{ProductID: product, Qty: 1}}}, pkgerrors.CodeValidation},
		{"no items", CreateBundleInput{Name: "b", PriceCents: 100}, pkgerrors.CodeValidation},
		{"zero qty", CreateBundleInput{Name: "b", PriceCents: 100, Items: []BundleItemInput{{ProductID: product, Qty: 0}}}, pkgerrors.CodeValidation},
		{"duplicate product", CreateBundleInput{Name: "b", PriceCents: 100, Items: []BundleItemInput{{ProductID: product, Qty: 1}, {ProductID: product, Qty: 1}}}, pkgerrors.CodeValidation},
	}
	repo := &fakeRepository{
		findProductByIDFn: func(_ context.Context, id uuid.UUID) (*models.Product, error) {
			return activeProduct(id), nil
		},
	}
	svc, _ := NewService(repo, &fakeTx{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			assertBundleErrorCode(t, err, tc.code)
		})
	}
}

func TestBundleCreateRejectsInactiveProduct(t *testing.T) {
	repo := &fakeRepository{
		findProductByIDFn: func(_ context.Context, id uuid.UUID) (*models.Product, error) {
			product := activeProduct(id)
			product.IsActive = false
			return product, nil
		},
	}
	svc, _ := NewService(repo, &fakeTx{})
	_, err := svc.Create(context.Background(), CreateBundleInput{
		Name:       "b",
		PriceCents: 100,
		Items:      []BundleItemInput{{ProductID: uuid.New(), Qty: 1}},
	})
	assertBundleErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestBundleCreateUnknownProduct(t *testing.T) {
	repo := &fakeRepository{
		findProductByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Product, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := NewService(repo, &fakeTx{})
	_, err := svc.Create(context.Background(), CreateBundleInput{
		Name:       "b",
		PriceCents: 100,
		Items:      []BundleItemInput{{ProductID: uuid.New(), Qty: 1}},
	})
	assertBundleErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestBundleUpdateReplacesItemsInTransaction(t *testing.T) {
	id := uuid.New()
	product := uuid.New()
	var patched map[string]any
	var replaced []models.BundleItem
	repo := &fakeRepository{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Bundle, error) {
			return &models.Bundle{ID: id, Name: "Old", PriceCents: 100, IsActive: true}, nil
		},
		findProductByIDFn: func(_ context.Context, pid uuid.UUID) (*models.Product, error) {
			return activeProduct(pid), nil
		},
		updateFn: func(_ context.Context, _ uuid.UUID, updates map[string]any) error {
			patched = updates
			return nil
		},
		replaceItemsFn: func(_ context.Context, bundleID uuid.UUID, items []models.BundleItem) error {
			if bundleID != id {
				t.Fatalf("unexpected bundle id %s", bundleID)
			}
			replaced = items
			return nil
		},
	}
	tx := &fakeTx{}
	svc, _ := NewService(repo, tx)

	price := 7999
	_, err := svc.Update(context.Background(), id, UpdateBundleInput{
		PriceCents: &price,
		Items:      []BundleItemInput{{ProductID: product, Qty: 3}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if tx.calls != 1 {
		t.Fatalf("expected one transaction, got %d", tx.calls)
	}
	if patched["price_cents"] != 7999 {
		t.Fatalf("unexpected patch %v", patched)
	}
	if len(replaced) != 1 || replaced[0].BundleID != id || replaced[0].Qty != 3 {
		t.Fatalf("unexpected items %+v", replaced)
	}
}

func TestBundleUpdateEmptyItemListRejected(t *testing.T) {
	repo := &fakeRepository{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Bundle, error) {
			return &models.Bundle{ID: uuid.New()}, nil
		},
	}
	svc, _ := NewService(repo, &fakeTx{})
	_, err := svc.Update(context.Background(), uuid.New(), UpdateBundleInput{Items: []BundleItemInput{}})
	assertBundleErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestBundleDeactivate(t *testing.T) {
	id := uuid.New()
	var patched map[string]any
	repo := &fakeRepository{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Bundle, error) {
			return &models.Bundle{ID: id, IsActive: true}, nil
		},
		updateFn: func(_ context.Context, _ uuid.UUID, updates map[string]any) error {
			patched = updates
			return nil
		},
	}
	svc, _ := NewService(repo, &fakeTx{})

	if err := svc.Deactivate(context.Background(), id); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if len(patched) != 1 || patched["is_active"] != false {
		t.Fatalf("unexpected patch %v", patched)
	}
}

func TestBundleDeactivateNotFound(t *testing.T) {
	repo := &fakeRepository{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Bundle, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := NewService(repo, &fakeTx{})
	err := svc.Deactivate(context.Background(), uuid.New())
	assertBundleErrorCode(t, err, pkgerrors.CodeNotFound)
}
