package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/repo"
	"github.com/Skotchmaster/bakery/pkg/apperr"
	"github.com/Skotchmaster/bakery/pkg/logging"
	"github.com/Skotchmaster/bakery/pkg/pagination"
)

type ReviewService struct {
	Repo *repo.GormRepo
}

type ReviewInput struct {
	ProductID uint
	// OrderID is optional; zero picks the most recent eligible order.
	OrderID uint
	Rating  int
	Comment string
}

type Eligibility struct {
	CanReview bool `json:"canReview"`
	OrderID   uint `json:"orderId,omitempty"`
}

// AddReview accepts a review only for a product the user received in a
// Delivered order, once per (product, order).
func (s *ReviewService) AddReview(ctx context.Context, userID uint, in ReviewInput) (*models.Review, error) {
	l := logging.FromContext(ctx).With("svc", "review.add", "user_id", userID, "product_id", in.ProductID)

	if in.ProductID == 0 {
		return nil, apperr.ErrValidation.Msg("product_id is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		l.Warn("add_review_error", "status", 400, "reason", "rating out of range", "rating", in.Rating)
		return nil, apperr.ErrValidation.Msg("rating must be between 1 and 5")
	}

	orderID := in.OrderID
	if orderID == 0 {
		id, err := s.Repo.FindEligibleOrder(ctx, userID, in.ProductID)
		if err != nil {
			l.Error("add_review_error", "status", 500, "error", err)
			return nil, apperr.Query(err)
		}
		if id == 0 {
			reviewed, err := s.Repo.HasReviewedProduct(ctx, userID, in.ProductID)
			if err != nil {
				l.Error("add_review_error", "status", 500, "error", err)
				return nil, apperr.Query(err)
			}
			if reviewed {
				l.Warn("add_review_error", "status", 409, "reason", "every delivered order already reviewed")
				return nil, ErrAlreadyReviewed
			}
			l.Warn("add_review_error", "status", 403, "reason", "no eligible order")
			return nil, ErrReviewNotAllowed
		}
		orderID = id
	} else {
		dup, err := s.Repo.HasReviewed(ctx, userID, in.ProductID, orderID)
		if err != nil {
			l.Error("add_review_error", "status", 500, "error", err)
			return nil, apperr.Query(err)
		}
		if dup {
			l.Warn("add_review_error", "status", 409, "reason", "already reviewed", "order_id", orderID)
			return nil, ErrAlreadyReviewed
		}
		ok, err := s.Repo.IsOrderEligible(ctx, userID, in.ProductID, orderID)
		if err != nil {
			l.Error("add_review_error", "status", 500, "error", err)
			return nil, apperr.Query(err)
		}
		if !ok {
			l.Warn("add_review_error", "status", 403, "reason", "order not eligible", "order_id", orderID)
			return nil, ErrReviewNotAllowed
		}
	}

	rv := &models.Review{
		UserID:    userID,
		ProductID: in.ProductID,
		OrderID:   orderID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := s.Repo.CreateReview(ctx, rv); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.Warn("add_review_error", "status", 409, "reason", "already reviewed", "order_id", orderID)
			return nil, ErrAlreadyReviewed
		}
		l.Error("add_review_error", "status", 500, "error", err)
		return nil, apperr.Query(err)
	}
	l.Info("add_review_success", "review_id", rv.ID, "order_id", orderID)
	return rv, nil
}

func (s *ReviewService) CanReview(ctx context.Context, userID, productID uint) (Eligibility, error) {
	id, err := s.Repo.FindEligibleOrder(ctx, userID, productID)
	if err != nil {
		logging.FromContext(ctx).Error("can_review_error", "status", 500, "user_id", userID, "error", err)
		return Eligibility{}, apperr.Query(err)
	}
	return Eligibility{CanReview: id != 0, OrderID: id}, nil
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID uint, page, limit int) (pagination.Page[models.Review], error) {
	items, total, err := s.Repo.ListProductReviews(ctx, productID, page, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list_reviews_error", "status", 500, "product_id", productID, "error", err)
		return pagination.Page[models.Review]{}, apperr.Query(err)
	}
	return pagination.New(items, page, limit, total), nil
}

func (s *ReviewService) ListMine(ctx context.Context, userID uint) ([]models.Review, error) {
	items, err := s.Repo.ListUserReviews(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("list_my_reviews_error", "status", 500, "user_id", userID, "error", err)
		return nil, apperr.Query(err)
	}
	if items == nil {
		items = []models.Review{}
	}
	return items, nil
}

func (s *ReviewService) Rating(ctx context.Context, productID uint) (models.Rating, error) {
	r, err := s.Repo.ProductRating(ctx, productID)
	if err != nil {
		logging.FromContext(ctx).Error("product_rating_error", "status", 500, "product_id", productID, "error", err)
		return models.Rating{}, apperr.Query(err)
	}
	return r, nil
}
