package mongorepo

import (
	"context"
	"regexp"
	"time"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepository struct {
	coll *mongo.Collection
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	opts := options.Find()
	if filter.Newest {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	} else {
		opts.SetSort(bson.D{
			{Key: "isFeatured", Value: -1},
			{Key: "order", Value: 1},
			{Key: "createdAt", Value: -1},
		})
	}
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, mapErr(err)
	}
	return &product, nil
}

func (r *ProductRepository) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	products := []models.Product{}
	if len(ids) == 0 {
		return products, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return mapErr(err)
}

// Update sets only the fields u names.
func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, u repository.ProductUpdate) error {
	return r.set(ctx, id, productUpdateFields(u))
}

func productUpdateFields(u repository.ProductUpdate) bson.M {
	fields := bson.M{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Price != nil {
		fields["price"] = *u.Price
	}
	if u.Stock != nil {
		fields["stock"] = *u.Stock
	}
	if u.Images != nil {
		fields["images"] = *u.Images
	}
	if u.SetCategory {
		fields["category"] = u.CategoryID
	}
	if u.Colors != nil {
		fields["colors"] = *u.Colors
	}
	if u.Sizes != nil {
		fields["sizes"] = *u.Sizes
	}
	if u.IsNew != nil {
		fields["isNew"] = *u.IsNew
	}
	if u.IsFeatured != nil {
		fields["isFeatured"] = *u.IsFeatured
	}
	if u.Order != nil {
		fields["order"] = *u.Order
	}
	return fields
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) CountFeatured(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"isFeatured": true})
}

func (r *ProductRepository) SetOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	return r.set(ctx, id, bson.M{"order": order})
}

func (r *ProductRepository) SetRelated(ctx context.Context, id primitive.ObjectID, related []primitive.ObjectID) error {
	if related == nil {
		related = []primitive.ObjectID{}
	}
	return r.set(ctx, id, bson.M{"relatedProducts": related})
}

func (r *ProductRepository) SetRating(ctx context.Context, id primitive.ObjectID, rating float64, count int) error {
	return r.set(ctx, id, bson.M{"rating": rating, "reviewCount": count})
}

// DecrementStock issues a single conditional update, so concurrent
// decrements can never take stock below zero.
func (r *ProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, size string, qty int) error {
	filter := bson.M{
		"_id":   id,
		"stock": bson.M{"$gte": qty},
	}
	inc := bson.M{"stock": -qty}
	if size != "" {
		filter["sizes"] = bson.M{"$elemMatch": bson.M{"name": size, "stock": bson.M{"$gte": qty}}}
		inc["sizes.$.stock"] = -qty
	}

	update := bson.M{
		"$inc": inc,
		"$set": bson.M{"updatedAt": time.Now()},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrInsufficientStock
}

func (r *ProductRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
