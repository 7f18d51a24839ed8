package services

import (
	"context"
	"testing"
	"time"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newCatalog(store *repository.Store) *CatalogService {
	return NewCatalogService(store, NewReviewService(store, zap.NewNop(), nil), zap.NewNop())
}

func TestCatalogSearchMatchesNameOrDescription(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := newCatalog(store)

	for _, in := range []ProductInput{
		{Name: "Linen Shirt", Price: models.MoneyFromFloat(30)},
		{Name: "Summer Dress", Description: "Pairs well with a SHIRT", Price: models.MoneyFromFloat(45)},
		{Name: "Wide Trousers", Description: "High waist", Price: models.MoneyFromFloat(50)},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, "shirt")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.NotEqual(t, "Wide Trousers", p.Name)
	}

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalogSearchLimitAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := newCatalog(store)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < SearchLimit+3; i++ {
		require.NoError(t, store.Products.Create(ctx, &models.Product{
			Name:      "Top",
			Price:     models.MoneyFromFloat(10),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := svc.Search(ctx, "top")
	require.NoError(t, err)
	assert.Len(t, got, SearchLimit)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].CreatedAt.Before(got[i-1].CreatedAt))
	}
	assert.Equal(t, base.Add(time.Duration(SearchLimit+2)*time.Minute), got[0].CreatedAt)
}

func TestCatalogFeaturedOrdering(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := newCatalog(store)

	plain, err := svc.Create(ctx, ProductInput{Name: "Plain", Price: models.MoneyFromFloat(10)})
	require.NoError(t, err)
	first, err := svc.Create(ctx, ProductInput{Name: "First", Price: models.MoneyFromFloat(10), IsFeatured: true})
	require.NoError(t, err)
	second, err := svc.Create(ctx, ProductInput{Name: "Second", Price: models.MoneyFromFloat(10), IsFeatured: true})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 1, second.Order)

	require.NoError(t, svc.ReorderFeatured(ctx, []models.FeaturedOrder{
		{ID: first.ID, Order: 1},
		{ID: second.ID, Order: 0},
	}))

	list, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, plain.ID, list[2].ID)

	err = svc.ReorderFeatured(ctx, []models.FeaturedOrder{
		{ID: first.ID, Order: 5},
		{ID: primitive.NewObjectID(), Order: 6},
	})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	got, err := store.Products.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Order, "reorder is all or nothing")
}

func TestCatalogGetPopulates(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := newCatalog(store)
	cats := NewCategoryService(store, zap.NewNop())

	cat, err := cats.Create(ctx, CategoryInput{Name: "Dresses"})
	require.NoError(t, err)

	dress, err := svc.Create(ctx, ProductInput{
		Name:     "Maxi Dress",
		Price:    models.MoneyFromFloat(70),
		Category: models.CategoryRef{ID: cat.ID, Valid: true},
		Sizes:    []models.Size{{Name: "M", Stock: 2}},
	})
	require.NoError(t, err)
	require.NotNil(t, dress.Category)
	assert.Equal(t, "dresses", dress.Category.Slug)

	belt, err := svc.Create(ctx, ProductInput{Name: "Belt", Price: models.MoneyFromFloat(15)})
	require.NoError(t, err)

	_, err = svc.SetRelated(ctx, dress.ID, []primitive.ObjectID{belt.ID, belt.ID, dress.ID})
	require.NoError(t, err)

	u := seedUser(t, store, "r@example.com", models.RoleUser)
	_, err = NewReviewService(store, zap.NewNop(), nil).Add(ctx, dress.ID, u, ReviewInput{Rating: 5, Comment: "Perfect"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, dress.ID)
	require.NoError(t, err)
	require.Len(t, got.RelatedProducts, 1)
	assert.Equal(t, "Belt", got.RelatedProducts[0].Name)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, u.Name, got.Reviews[0].User.Name)
	assert.Equal(t, 5.0, got.Rating)

	_, err = svc.SetRelated(ctx, dress.ID, []primitive.ObjectID{primitive.NewObjectID()})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestCatalogCreateAndUpdateValidation(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := newCatalog(store)

	tests := []struct {
		name string
		in   ProductInput
	}{
		{"missing name", ProductInput{Price: models.MoneyFromFloat(1)}},
		{"negative price", ProductInput{Name: "x", Price: models.MoneyFromFloat(-1)}},
		{"negative stock", ProductInput{Name: "x", Stock: -1}},
		{"duplicate size", ProductInput{Name: "x", Sizes: []models.Size{{Name: "M"}, {Name: "M"}}}},
		{"unknown category", ProductInput{Name: "x", Category: models.CategoryRef{ID: primitive.NewObjectID(), Valid: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation), "%v", err)
		})
	}

	p, err := svc.Create(ctx, ProductInput{Name: "Skirt", Price: models.MoneyFromFloat(20), Stock: 3})
	require.NoError(t, err)

	price := models.MoneyFromFloat(25.5)
	featured := true
	updated, err := svc.Update(ctx, p.ID, ProductPatch{Price: &price, IsFeatured: &featured})
	require.NoError(t, err)
	assert.Equal(t, "25.50", updated.Price.StringFixed(2))
	assert.Equal(t, 3, updated.Stock)
	assert.True(t, updated.IsFeatured)

	_, err = svc.Update(ctx, primitive.NewObjectID(), ProductPatch{Price: &price})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestCatalogDeleteRemovesReviews(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := newCatalog(store)
	p := seedProduct(t, store, "Bag", "40.00", 1)
	u := seedUser(t, store, "r@example.com", models.RoleUser)

	_, err := NewReviewService(store, zap.NewNop(), nil).Add(ctx, p.ID, u, ReviewInput{Rating: 4, Comment: "Good"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	left, err := store.Reviews.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.True(t, apperror.IsKind(svc.Delete(ctx, p.ID), apperror.KindNotFound))
}

// interleavedProducts runs onGet once, right after the first Get returns.
type interleavedProducts struct {
	repository.Products
	onGet func()
}

func (p *interleavedProducts) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	got, err := p.Products.Get(ctx, id)
	if p.onGet != nil {
		hook := p.onGet
		p.onGet = nil
		hook()
	}
	return got, err
}

func TestCatalogUpdateKeepsConcurrentStockChanges(t *testing.T) {
	store := newStore()
	product := seedProduct(t, store, "Shirt", "25.00", 5, models.Size{Name: "M", Stock: 5})
	orders, _ := newOrderService(store, false)

	wrapped := *store
	products := &interleavedProducts{Products: store.Products}
	products.onGet = func() {
		_, err := orders.Place(context.Background(), validOrder(LineItem{ProductID: product.ID, Size: "M", Quantity: 3}))
		require.NoError(t, err)
	}
	wrapped.Products = products
	catalog := newCatalog(&wrapped)

	name := "Shirt v2"
	updated, err := catalog.Update(context.Background(), product.ID, ProductPatch{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Shirt v2", updated.Name)
	assert.Equal(t, 2, updated.Stock)
	require.Len(t, updated.Sizes, 1)
	assert.Equal(t, 2, updated.Sizes[0].Stock)
	assert.Equal(t, 2, stockOf(t, store, product))
}

func TestCatalogUpdateWritesExplicitStock(t *testing.T) {
	store := newStore()
	product := seedProduct(t, store, "Hat", "10.00", 5)
	catalog := newCatalog(store)

	stock := 9
	updated, err := catalog.Update(context.Background(), product.ID, ProductPatch{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, "Hat", updated.Name)
}
