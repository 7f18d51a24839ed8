package mongorepo

import (
	"context"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewRepository struct {
	coll *mongo.Collection
}

func key(productID, reviewID primitive.ObjectID) bson.M {
	return bson.M{"productId": productID, "_id": reviewID}
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if review.Photos == nil {
		review.Photos = []string{}
	}
	_, err := r.coll.InsertOne(ctx, review)
	return mapErr(err)
}

func (r *ReviewRepository) Get(ctx context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	if err := r.coll.FindOne(ctx, key(productID, reviewID)).Decode(&review); err != nil {
		return nil, mapErr(err)
	}
	return &review, nil
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	return r.find(ctx, bson.M{"productId": productID})
}

func (r *ReviewRepository) ListAll(ctx context.Context) ([]models.Review, error) {
	return r.find(ctx, bson.M{})
}

func (r *ReviewRepository) Ratings(ctx context.Context, productID primitive.ObjectID) ([]int, error) {
	opts := options.Find().SetProjection(bson.M{"rating": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"productId": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Rating int `bson:"rating"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	ratings := make([]int, len(rows))
	for i, row := range rows {
		ratings[i] = row.Rating
	}
	return ratings, nil
}

func (r *ReviewRepository) IncrementHelpful(ctx context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error) {
	return r.findAndUpdate(ctx, productID, reviewID, bson.M{"$inc": bson.M{"helpful": 1}})
}

func (r *ReviewRepository) SetReported(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	_, err := r.findAndUpdate(ctx, productID, reviewID, bson.M{"$set": bson.M{"reported": true}})
	return err
}

func (r *ReviewRepository) SetVerified(ctx context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error) {
	return r.findAndUpdate(ctx, productID, reviewID, bson.M{"$set": bson.M{"verified": true}})
}

func (r *ReviewRepository) Delete(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, key(productID, reviewID))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"productId": productID})
	return err
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) findAndUpdate(ctx context.Context, productID, reviewID primitive.ObjectID, update bson.M) (*models.Review, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review models.Review
	if err := r.coll.FindOneAndUpdate(ctx, key(productID, reviewID), update, opts).Decode(&review); err != nil {
		return nil, mapErr(err)
	}
	return &review, nil
}
