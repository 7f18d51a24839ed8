package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderRepository struct {
	s *Store
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	defer r.s.lock(ctx)()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	for _, existing := range r.s.orders {
		if existing.ID == o.ID || existing.OrderNumber == o.OrderNumber {
			return repository.ErrDuplicate
		}
	}
	remember(ctx, r.s.orders, o.ID)
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *OrderRepository) List(_ context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email := strings.ToLower(filter.Email)
	all := filter.UserID == nil && email == ""

	orders := []models.Order{}
	for _, o := range r.s.orders {
		match := all ||
			(filter.UserID != nil && o.UserID != nil && *o.UserID == *filter.UserID) ||
			(email != "" && strings.ToLower(o.CustomerInfo.Email) == email)
		if match {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, from ...models.OrderStatus) (*models.Order, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if len(from) > 0 && !slices.Contains(from, o.Status) {
		return nil, repository.ErrPreconditionFailed
	}
	o = cloneOrder(o)
	o.Status = status
	o.UpdatedAt = time.Now()

	remember(ctx, r.s.orders, id)
	r.s.orders[id] = o

	out := cloneOrder(o)
	return &out, nil
}
