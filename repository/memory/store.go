// Package memory is an in-process implementation of the repository
// contracts. It backs DB_DRIVER=memory for local runs and the test suites.
package memory

import (
	"context"
	"sync"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

// journal collects undo steps for the running transaction.
type journal struct {
	undo []func()
}

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products   map[primitive.ObjectID]models.Product
	reviews    map[primitive.ObjectID]models.Review
	categories map[primitive.ObjectID]models.Category
	orders     map[primitive.ObjectID]models.Order
	users      map[primitive.ObjectID]models.User
	heroes     map[primitive.ObjectID]models.Hero
	settings   *models.Settings
}

func New() *Store {
	return &Store{
		products:   map[primitive.ObjectID]models.Product{},
		reviews:    map[primitive.ObjectID]models.Review{},
		categories: map[primitive.ObjectID]models.Category{},
		orders:     map[primitive.ObjectID]models.Order{},
		users:      map[primitive.ObjectID]models.User{},
		heroes:     map[primitive.ObjectID]models.Hero{},
	}
}

// Repositories exposes the store through the repository contracts.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Products:   &ProductRepository{s: s},
		Reviews:    &ReviewRepository{s: s},
		Categories: &CategoryRepository{s: s},
		Orders:     &OrderRepository{s: s},
		Users:      &UserRepository{s: s},
		Settings:   &SettingsRepository{s: s},
		Heroes:     &HeroRepository{s: s},
		Tx:         s,
		Ping:       func(context.Context) error { return nil },
		Close:      func(context.Context) error { return nil },
	}
}

// WithTransaction serializes transactions and rolls back every write made
// through ctx when fn fails. Nested calls join the outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*journal); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	j := &journal{}
	if err := fn(context.WithValue(ctx, txKey{}, j)); err != nil {
		s.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// lock takes the write lock. Writes outside a transaction also wait for the
// running transaction to finish, so a rollback cannot overwrite them.
func (s *Store) lock(ctx context.Context) (unlock func()) {
	if _, ok := ctx.Value(txKey{}).(*journal); ok {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// record registers an undo step when ctx belongs to a transaction. Callers
// hold s.mu.
func record(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(txKey{}).(*journal); ok {
		j.undo = append(j.undo, undo)
	}
}

// remember snapshots m[id] so a rollback restores (or removes) it.
func remember[T any](ctx context.Context, m map[primitive.ObjectID]T, id primitive.ObjectID) {
	prev, existed := m[id]
	record(ctx, func() {
		if existed {
			m[id] = prev
		} else {
			delete(m, id)
		}
	})
}

func cloneProduct(p models.Product) models.Product {
	p.Images = append([]string(nil), p.Images...)
	p.Colors = append([]models.Color(nil), p.Colors...)
	p.Sizes = append([]models.Size(nil), p.Sizes...)
	p.RelatedProductIDs = append([]primitive.ObjectID(nil), p.RelatedProductIDs...)
	if p.CategoryID != nil {
		id := *p.CategoryID
		p.CategoryID = &id
	}
	p.Category = nil
	p.RelatedProducts = nil
	p.Reviews = nil
	return p
}

func cloneReview(r models.Review) models.Review {
	r.Photos = append([]string{}, r.Photos...)
	r.User = nil
	return r
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.UserID != nil {
		id := *o.UserID
		o.UserID = &id
	}
	return o
}
