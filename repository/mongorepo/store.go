// Package mongorepo implements the repository contracts on MongoDB.
package mongorepo

import (
	"context"
	"errors"

	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	colProducts   = "products"
	colReviews    = "reviews"
	colCategories = "categories"
	colOrders     = "orders"
	colUsers      = "users"
	colSettings   = "settings"
	colHeroes     = "heroes"
)

// NewStore wires every repository onto db.
func NewStore(client *mongo.Client, db *mongo.Database) *repository.Store {
	return &repository.Store{
		Products:   &ProductRepository{coll: db.Collection(colProducts)},
		Reviews:    &ReviewRepository{coll: db.Collection(colReviews)},
		Categories: &CategoryRepository{coll: db.Collection(colCategories)},
		Orders:     &OrderRepository{coll: db.Collection(colOrders)},
		Users:      &UserRepository{coll: db.Collection(colUsers)},
		Settings:   &SettingsRepository{coll: db.Collection(colSettings)},
		Heroes:     &HeroRepository{coll: db.Collection(colHeroes)},
		Tx:         &Transactor{client: client},
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		Close: client.Disconnect,
	}
}

// Transactor runs callbacks inside a MongoDB session transaction. The
// session travels in the callback's context, so repository calls made with
// it join the transaction.
type Transactor struct {
	client *mongo.Client
}

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	return err
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	}
	return err
}
