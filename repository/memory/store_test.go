package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedProduct(t *testing.T, repos *repository.Store, name string, stock int, sizes ...models.Size) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:      name,
		Price:     models.MoneyFromFloat(20),
		Stock:     stock,
		Sizes:     sizes,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repos.Products.Create(context.Background(), p))
	return p
}

func TestDecrementStock(t *testing.T) {
	repos := New().Repositories()
	ctx := context.Background()
	p := seedProduct(t, repos, "Shirt", 5, models.Size{Name: "M", Stock: 2}, models.Size{Name: "L", Stock: 3})

	require.NoError(t, repos.Products.DecrementStock(ctx, p.ID, "M", 2))
	assert.ErrorIs(t, repos.Products.DecrementStock(ctx, p.ID, "M", 1), repository.ErrInsufficientStock)
	assert.ErrorIs(t, repos.Products.DecrementStock(ctx, p.ID, "XL", 1), repository.ErrInsufficientStock)
	assert.ErrorIs(t, repos.Products.DecrementStock(ctx, p.ID, "", 4), repository.ErrInsufficientStock)
	assert.ErrorIs(t, repos.Products.DecrementStock(ctx, primitive.NewObjectID(), "", 1), repository.ErrNotFound)

	got, err := repos.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
	m, _ := got.SizeStock("M")
	assert.Equal(t, 0, m)
}

func TestTransactionRollsBack(t *testing.T) {
	repos := New().Repositories()
	ctx := context.Background()
	a := seedProduct(t, repos, "A", 5)
	b := seedProduct(t, repos, "B", 1)

	boom := errors.New("boom")
	err := repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repos.Products.DecrementStock(ctx, a.ID, "", 2))
		require.NoError(t, repos.Orders.Create(ctx, &models.Order{OrderNumber: "ORD-1"}))
		require.NoError(t, repos.Products.DecrementStock(ctx, b.ID, "", 1))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := repos.Products.Get(ctx, a.ID)
	assert.Equal(t, 5, got.Stock)
	got, _ = repos.Products.Get(ctx, b.ID)
	assert.Equal(t, 1, got.Stock)

	orders, err := repos.Orders.List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestRollbackKeepsWritesMadeOutsideTheTransaction(t *testing.T) {
	repos := New().Repositories()
	ctx := context.Background()
	p := seedProduct(t, repos, "A", 5)

	renamed := make(chan error, 1)
	boom := errors.New("boom")
	err := repos.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, repos.Products.DecrementStock(txCtx, p.ID, "", 2))

		go func() {
			name := "A renamed"
			renamed <- repos.Products.Update(ctx, p.ID, repository.ProductUpdate{Name: &name})
		}()
		select {
		case <-renamed:
			t.Error("write outside the transaction finished before the transaction ended")
		case <-time.After(50 * time.Millisecond):
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, <-renamed)

	got, err := repos.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "A renamed", got.Name)
	assert.Equal(t, 5, got.Stock)
}

func TestPartialUpdate(t *testing.T) {
	repos := New().Repositories()
	ctx := context.Background()
	p := seedProduct(t, repos, "Shirt", 5, models.Size{Name: "M", Stock: 5})
	cat := primitive.NewObjectID()
	require.NoError(t, repos.Products.Update(ctx, p.ID, repository.ProductUpdate{SetCategory: true, CategoryID: &cat}))
	require.NoError(t, repos.Products.DecrementStock(ctx, p.ID, "M", 3))

	got, err := repos.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, cat, *got.CategoryID)

	name := "Shirt v2"
	require.NoError(t, repos.Products.Update(ctx, p.ID, repository.ProductUpdate{Name: &name, SetCategory: true}))

	got, err = repos.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shirt v2", got.Name)
	assert.Equal(t, 2, got.Stock)
	m, _ := got.SizeStock("M")
	assert.Equal(t, 2, m)
	assert.Nil(t, got.CategoryID)
	assert.Equal(t, models.MoneyFromFloat(20).StringFixed(2), got.Price.StringFixed(2))

	assert.ErrorIs(t, repos.Products.Update(ctx, primitive.NewObjectID(), repository.ProductUpdate{Name: &name}), repository.ErrNotFound)
}

func TestConcurrentDecrementOfLastUnit(t *testing.T) {
	repos := New().Repositories()
	ctx := context.Background()
	p := seedProduct(t, repos, "Dress", 1, models.Size{Name: "S", Stock: 1})

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
				return repos.Products.DecrementStock(ctx, p.ID, "S", 1)
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, repository.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, succeeded)

	got, _ := repos.Products.Get(ctx, p.ID)
	assert.Equal(t, 0, got.Stock)
}

func TestListSearchAndOrdering(t *testing.T) {
	repos := New().Repositories()
	ctx := context.Background()
	now := time.Now()

	create := func(name, desc string, featured bool, order int, age time.Duration) {
		require.NoError(t, repos.Products.Create(ctx, &models.Product{
			Name: name, Description: desc, IsFeatured: featured, Order: order, CreatedAt: now.Add(-age),
		}))
	}
	create("Linen Shirt", "", false, 0, time.Hour)
	create("Jeans", "goes with any SHIRT", true, 2, 2*time.Hour)
	create("Silk Shirt", "", true, 1, 3*time.Hour)
	create("Hat", "", false, 0, 0)

	found, err := repos.Products.List(ctx, repository.ProductFilter{Search: "shirt"})
	require.NoError(t, err)
	names := make([]string, len(found))
	for i, p := range found {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Silk Shirt", "Jeans", "Linen Shirt"}, names)

	newest, err := repos.Products.List(ctx, repository.ProductFilter{Newest: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, "Hat", newest[0].Name)
	assert.Equal(t, "Linen Shirt", newest[1].Name)
}

func TestUniqueEmail(t *testing.T) {
	repos := New().Repositories()
	ctx := context.Background()

	require.NoError(t, repos.Users.Create(ctx, &models.User{Email: "Jane@Example.com"}))
	err := repos.Users.Create(ctx, &models.User{Email: "jane@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	u, err := repos.Users.GetByEmail(ctx, " JANE@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	repos := New().Repositories()
	ctx := context.Background()
	p := seedProduct(t, repos, "Coat", 3, models.Size{Name: "M", Stock: 3})

	got, err := repos.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	got.Sizes[0].Stock = 99

	again, err := repos.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Sizes[0].Stock)
}
