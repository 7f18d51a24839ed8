package services

import (
	"context"
	"testing"
	"time"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"github.com/evacurves/storefront-backend-go/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	placed    map[string]int
	conflicts int
	reviews   int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{placed: map[string]int{}}
}

func (r *countingRecorder) OrderPlaced(pm string) { r.placed[pm]++ }
func (r *countingRecorder) StockConflict()        { r.conflicts++ }
func (r *countingRecorder) ReviewSubmitted()      { r.reviews++ }

func newStore() *repository.Store {
	return memory.New().Repositories()
}

func seedProduct(t *testing.T, store *repository.Store, name, price string, stock int, sizes ...models.Size) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       models.NewMoney(decimal.RequireFromString(price)),
		Stock:       stock,
		Images:      []string{"/img/" + name + ".jpg"},
		Sizes:       sizes,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, store.Products.Create(context.Background(), p))
	return p
}

func seedUser(t *testing.T, store *repository.Store, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Name:                    "Test " + string(role),
		Email:                   email,
		Password:                "x",
		Role:                    role,
		NotificationPreferences: models.DefaultNotificationPreferences(),
		CreatedAt:               time.Now(),
	}
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

func stockOf(t *testing.T, store *repository.Store, p *models.Product) int {
	t.Helper()
	got, err := store.Products.Get(context.Background(), p.ID)
	require.NoError(t, err)
	return got.Stock
}
