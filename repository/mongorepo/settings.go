package mongorepo

import (
	"context"

	"github.com/evacurves/storefront-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SettingsRepository struct {
	coll *mongo.Collection
}

func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := r.coll.FindOne(ctx, bson.M{}).Decode(&settings); err != nil {
		return nil, mapErr(err)
	}
	return &settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *models.Settings) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, s, options.Replace().SetUpsert(true))
	return mapErr(err)
}
