package mongorepo

import (
	"context"
	"time"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type HeroRepository struct {
	coll *mongo.Collection
}

func (r *HeroRepository) Active(ctx context.Context) (*models.Hero, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	var hero models.Hero
	if err := r.coll.FindOne(ctx, bson.M{"isActive": true}, opts).Decode(&hero); err != nil {
		return nil, mapErr(err)
	}
	return &hero, nil
}

func (r *HeroRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Hero, error) {
	var hero models.Hero
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&hero); err != nil {
		return nil, mapErr(err)
	}
	return &hero, nil
}

func (r *HeroRepository) Create(ctx context.Context, h *models.Hero) error {
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, h)
	return mapErr(err)
}

func (r *HeroRepository) Update(ctx context.Context, h *models.Hero) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": h.ID}, h)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *HeroRepository) DeactivateOthers(ctx context.Context, keep primitive.ObjectID) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$ne": keep}, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	return err
}
