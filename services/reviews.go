package services

import (
	"context"
	"strings"
	"time"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ReviewInput struct {
	Rating  int
	Comment string
	Photos  []string
}

type ReviewService struct {
	products repository.Products
	reviews  repository.Reviews
	users    repository.Users
	tx       repository.Transactor
	log      *zap.Logger
	metrics  Recorder
}

func NewReviewService(store *repository.Store, log *zap.Logger, rec Recorder) *ReviewService {
	return &ReviewService{
		products: store.Products,
		reviews:  store.Reviews,
		users:    store.Users,
		tx:       store.Tx,
		log:      log,
		metrics:  recorderOrNop(rec),
	}
}

// AverageRating is the unweighted mean rounded to two decimals, 0 for no
// ratings.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := decimal.NewFromInt(int64(sum)).DivRound(decimal.NewFromInt(int64(len(ratings))), 2)
	f, _ := mean.Float64()
	return f
}

// Add stores a review and recomputes the product rating in the same
// transaction. Reviews are marked verified on creation.
func (s *ReviewService) Add(ctx context.Context, productID primitive.ObjectID, author *models.User, in ReviewInput) (*models.Review, error) {
	if in.Rating < models.MinRating || in.Rating > models.MaxRating {
		return nil, apperror.Validation("Rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return nil, apperror.Validation("Comment is required")
	}

	photos := in.Photos
	if photos == nil {
		photos = []string{}
	}
	review := &models.Review{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		UserID:    author.ID,
		Rating:    in.Rating,
		Comment:   comment,
		Photos:    photos,
		Verified:  true,
		CreatedAt: time.Now(),
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.products.Get(ctx, productID); err != nil {
			return storeErr(err, "Product", "Failed to add review")
		}
		if err := s.reviews.Create(ctx, review); err != nil {
			return apperror.Internal(err, "Failed to add review")
		}
		return s.recompute(ctx, productID)
	})
	if err != nil {
		s.logFailure("Failed to add review", productID, err)
		return nil, err
	}

	s.metrics.ReviewSubmitted()
	review.User = author.Summary()
	return review, nil
}

// Delete removes a review and recomputes the product rating.
func (s *ReviewService) Delete(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.reviews.Delete(ctx, productID, reviewID); err != nil {
			return storeErr(err, "Review", "Failed to delete review")
		}
		return s.recompute(ctx, productID)
	})
	if err != nil {
		s.logFailure("Failed to delete review", productID, err)
	}
	return err
}

func (s *ReviewService) recompute(ctx context.Context, productID primitive.ObjectID) error {
	ratings, err := s.reviews.Ratings(ctx, productID)
	if err != nil {
		return apperror.Internal(err, "Failed to update product rating")
	}
	if err := s.products.SetRating(ctx, productID, AverageRating(ratings), len(ratings)); err != nil {
		return storeErr(err, "Product", "Failed to update product rating")
	}
	return nil
}

// MarkHelpful increments the helpful counter. Votes are not deduplicated.
func (s *ReviewService) MarkHelpful(ctx context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error) {
	review, err := s.reviews.IncrementHelpful(ctx, productID, reviewID)
	if err != nil {
		return nil, storeErr(err, "Review", "Failed to mark review as helpful")
	}
	return review, nil
}

// Report flags a review for moderation. Reported reviews stay visible.
func (s *ReviewService) Report(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	if err := s.reviews.SetReported(ctx, productID, reviewID); err != nil {
		return storeErr(err, "Review", "Failed to report review")
	}
	s.log.Info("Review reported", zap.String("product_id", productID.Hex()), zap.String("review_id", reviewID.Hex()))
	return nil
}

func (s *ReviewService) Verify(ctx context.Context, productID, reviewID primitive.ObjectID) (*models.Review, error) {
	review, err := s.reviews.SetVerified(ctx, productID, reviewID)
	if err != nil {
		return nil, storeErr(err, "Review", "Failed to verify review")
	}
	return review, nil
}

// ListForProduct returns a product's reviews with reviewer summaries.
func (s *ReviewService) ListForProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to fetch reviews")
	}
	if err := s.attachUsers(ctx, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListAll returns every review across the catalog for moderation, newest
// first, with product and reviewer summaries. Reviews of deleted products
// are skipped.
func (s *ReviewService) ListAll(ctx context.Context) ([]models.ModerationReview, error) {
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to fetch reviews")
	}
	if err := s.attachUsers(ctx, reviews); err != nil {
		return nil, err
	}

	ids := uniqueIDs(len(reviews), func(i int) primitive.ObjectID { return reviews[i].ProductID })
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to fetch reviews")
	}
	byID := make(map[primitive.ObjectID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	out := make([]models.ModerationReview, 0, len(reviews))
	for _, r := range reviews {
		p, ok := byID[r.ProductID]
		if !ok {
			continue
		}
		out = append(out, models.ModerationReview{Review: r, Product: p.Summary()})
	}
	return out, nil
}

func (s *ReviewService) attachUsers(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	ids := uniqueIDs(len(reviews), func(i int) primitive.ObjectID { return reviews[i].UserID })
	users, err := s.users.GetMany(ctx, ids)
	if err != nil {
		return apperror.Internal(err, "Failed to fetch reviewers")
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range reviews {
		if u, ok := byID[reviews[i].UserID]; ok {
			reviews[i].User = u.Summary()
		}
	}
	return nil
}

func (s *ReviewService) logFailure(msg string, productID primitive.ObjectID, err error) {
	if apperror.IsKind(err, apperror.KindInternal) {
		s.log.Error(msg, zap.String("product_id", productID.Hex()), zap.Error(err))
	}
}

func uniqueIDs(n int, at func(i int) primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, n)
	ids := make([]primitive.ObjectID, 0, n)
	for i := 0; i < n; i++ {
		id := at(i)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
