package memory

import (
	"context"
	"sort"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewRepository struct {
	s *Store
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	defer r.s.lock(ctx)()

	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if review.Photos == nil {
		review.Photos = []string{}
	}
	if _, ok := r.s.reviews[review.ID]; ok {
		return repository.ErrDuplicate
	}
	remember(ctx, r.s.reviews, review.ID)
	r.s.reviews[review.ID] = cloneReview(*review)
	return nil
}

func (r *ReviewRepository) Get(_ context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	review, ok := r.s.reviews[reviewID]
	if !ok || review.ProductID != productID {
		return nil, repository.ErrNotFound
	}
	review = cloneReview(review)
	return &review, nil
}

func (r *ReviewRepository) ListByProduct(_ context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	return r.list(func(rv models.Review) bool { return rv.ProductID == productID }), nil
}

func (r *ReviewRepository) ListAll(_ context.Context) ([]models.Review, error) {
	return r.list(func(models.Review) bool { return true }), nil
}

func (r *ReviewRepository) Ratings(_ context.Context, productID primitive.ObjectID) ([]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ratings := []int{}
	for _, rv := range r.s.reviews {
		if rv.ProductID == productID {
			ratings = append(ratings, rv.Rating)
		}
	}
	return ratings, nil
}

func (r *ReviewRepository) IncrementHelpful(ctx context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error) {
	return r.mutate(ctx, productID, reviewID, func(rv *models.Review) { rv.Helpful++ })
}

func (r *ReviewRepository) SetReported(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	_, err := r.mutate(ctx, productID, reviewID, func(rv *models.Review) { rv.Reported = true })
	return err
}

func (r *ReviewRepository) SetVerified(ctx context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error) {
	return r.mutate(ctx, productID, reviewID, func(rv *models.Review) { rv.Verified = true })
}

func (r *ReviewRepository) Delete(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	defer r.s.lock(ctx)()

	review, ok := r.s.reviews[reviewID]
	if !ok || review.ProductID != productID {
		return repository.ErrNotFound
	}
	remember(ctx, r.s.reviews, reviewID)
	delete(r.s.reviews, reviewID)
	return nil
}

func (r *ReviewRepository) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) error {
	defer r.s.lock(ctx)()

	for id, review := range r.s.reviews {
		if review.ProductID == productID {
			remember(ctx, r.s.reviews, id)
			delete(r.s.reviews, id)
		}
	}
	return nil
}

func (r *ReviewRepository) list(keep func(models.Review) bool) []models.Review {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	reviews := []models.Review{}
	for _, rv := range r.s.reviews {
		if keep(rv) {
			reviews = append(reviews, cloneReview(rv))
		}
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews
}

func (r *ReviewRepository) mutate(ctx context.Context, productID, reviewID primitive.ObjectID, fn func(*models.Review)) (*models.Review, error) {
	defer r.s.lock(ctx)()

	review, ok := r.s.reviews[reviewID]
	if !ok || review.ProductID != productID {
		return nil, repository.ErrNotFound
	}
	review = cloneReview(review)
	fn(&review)

	remember(ctx, r.s.reviews, reviewID)
	r.s.reviews[reviewID] = review

	out := cloneReview(review)
	return &out, nil
}
