// Package repository declares the persistence contracts the services depend
// on. mongorepo implements them on MongoDB, memory keeps everything in process.
package repository

import (
	"context"
	"errors"

	"github.com/evacurves/storefront-backend-go/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned by a conditional stock decrement that
	// matched no document.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrPreconditionFailed is returned by a guarded write whose document
	// exists but no longer matches the guard.
	ErrPreconditionFailed = errors.New("precondition failed")
)

type ProductFilter struct {
	// Search is a case-insensitive substring matched against name and
	// description.
	Search string
	// Limit caps the result; 0 means unlimited.
	Limit int64
	// Newest sorts by createdAt desc instead of the storefront order.
	Newest bool
}

// ProductUpdate names the fields of a partial product write; nil leaves a
// field untouched. Stock and Sizes are written only when set.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *models.Money
	Stock       *int
	Images      *[]string
	// SetCategory writes CategoryID, which may be nil to clear it.
	SetCategory bool
	CategoryID  *primitive.ObjectID
	Colors      *[]models.Color
	Sizes       *[]models.Size
	IsNew       *bool
	IsFeatured  *bool
	Order       *int
}

type Products interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, u ProductUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountFeatured(ctx context.Context) (int64, error)
	SetOrder(ctx context.Context, id primitive.ObjectID, order int) error
	SetRelated(ctx context.Context, id primitive.ObjectID, related []primitive.ObjectID) error
	// DecrementStock atomically lowers stock by qty if at least qty units are
	// available (and, when size is set, that size has qty units). It returns
	// ErrInsufficientStock when the condition does not hold.
	DecrementStock(ctx context.Context, id primitive.ObjectID, size string, qty int) error
	SetRating(ctx context.Context, id primitive.ObjectID, rating float64, count int) error
}

type Reviews interface {
	Create(ctx context.Context, r *models.Review) error
	Get(ctx context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error)
	ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
	ListAll(ctx context.Context) ([]models.Review, error)
	// Ratings returns the rating of every review of the product.
	Ratings(ctx context.Context, productID primitive.ObjectID) ([]int, error)
	IncrementHelpful(ctx context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error)
	SetReported(ctx context.Context, productID, reviewID primitive.ObjectID) error
	SetVerified(ctx context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error)
	Delete(ctx context.Context, productID, reviewID primitive.ObjectID) error
	DeleteByProduct(ctx context.Context, productID primitive.ObjectID) error
}

type Categories interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetOrder(ctx context.Context, id primitive.ObjectID, order int) error
}

type OrderFilter struct {
	UserID *primitive.ObjectID
	Email  string
}

type Orders interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	// List returns orders newest first. A zero filter returns every order;
	// UserID and Email are OR-ed.
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// UpdateStatus sets the status. When from is non-empty the write only
	// applies if the current status is one of from, and
	// ErrPreconditionFailed is returned otherwise.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, from ...models.OrderStatus) (*models.Order, error)
}

type Users interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AdminExists(ctx context.Context) (bool, error)
}

type Settings interface {
	// Get returns the singleton, or ErrNotFound before it is seeded.
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, s *models.Settings) error
}

type Heroes interface {
	Active(ctx context.Context) (*models.Hero, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Hero, error)
	Create(ctx context.Context, h *models.Hero) error
	Update(ctx context.Context, h *models.Hero) error
	// DeactivateOthers clears isActive on every hero except keep.
	DeactivateOthers(ctx context.Context, keep primitive.ObjectID) error
}

// Transactor runs fn as one all-or-nothing unit. Repository calls made with
// the ctx passed to fn take part in the unit.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles every repository of one backend.
type Store struct {
	Products   Products
	Reviews    Reviews
	Categories Categories
	Orders     Orders
	Users      Users
	Settings   Settings
	Heroes     Heroes
	Tx         Transactor

	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}
