package reviews

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dibba-app/dibba-backend/internal/ids"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
	"github.com/shopspring/decimal"
)

type documentStore interface {
	Read(ctx context.Context, fn func(doc *models.Document) error) error
	WithTx(ctx context.Context, fn func(doc *models.Document) error) error
}

// Service records one review per delivered order and aggregates meal ratings.
type Service interface {
	Create(ctx context.Context, caller visibility.Caller, input CreateInput) (View, error)
	List(ctx context.Context, filter ListFilter) ([]View, error)
}

type service struct {
	store documentStore
	now   func() time.Time
}

// NewService builds the reviews service. A nil clock defaults to time.Now.
func NewService(store documentStore, now func() time.Time) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{store: store, now: now}, nil
}

func (s *service) Create(ctx context.Context, caller visibility.Caller, input CreateInput) (View, error) {
	if caller.Role != enums.RoleCustomer {
		return View{}, pkgerrors.New(pkgerrors.CodeForbidden, "only customers can leave reviews")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	var out View
	err := s.store.WithTx(ctx, func(doc *models.Document) error {
		order, ok := doc.OrderByID(input.OrderID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err := visibility.EnsureOwner(order.CustomerID, caller, "order"); err != nil {
			return err
		}
		if order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodePrecondition, "only delivered orders can be reviewed")
		}
		for _, existing := range doc.Reviews {
			if existing.OrderID == order.ID {
				return pkgerrors.New(pkgerrors.CodeConflict, "order has already been reviewed")
			}
		}

		mealID := strings.TrimSpace(input.MealID)
		if mealID != "" {
			if !orderContains(*order, mealID) {
				return pkgerrors.New(pkgerrors.CodeValidation, "meal is not part of this order")
			}
			if meal, ok := doc.MealByID(mealID); ok {
				meal.Rating = runningAverage(meal.Rating, meal.ReviewCount, input.Rating)
				meal.ReviewCount++
			}
		}

		rating := input.Rating
		order.Rating = &rating
		order.RatingDetails = input.RatingDetails

		review := models.Review{
			ID:            ids.NextReview(doc),
			OrderID:       order.ID,
			CustomerID:    caller.UserID,
			HomemakerID:   order.HomemakerID,
			MealID:        mealID,
			Rating:        input.Rating,
			Comment:       strings.TrimSpace(input.Comment),
			RatingDetails: input.RatingDetails,
			Date:          s.now(),
		}
		doc.Reviews = append(doc.Reviews, review)
		out = View{Review: review, CustomerName: doc.UserName(review.CustomerID)}
		return nil
	})
	return out, err
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]View, error) {
	out := []View{}
	err := s.store.Read(ctx, func(doc *models.Document) error {
		for _, review := range doc.Reviews {
			if filter.HomemakerID != "" && review.HomemakerID != filter.HomemakerID {
				continue
			}
			if filter.MealID != "" && review.MealID != filter.MealID {
				continue
			}
			if filter.OrderID != "" && review.OrderID != filter.OrderID {
				continue
			}
			out = append(out, View{Review: review, CustomerName: doc.UserName(review.CustomerID)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func orderContains(order models.Order, mealID string) bool {
	for _, item := range order.Items {
		if item.MealID == mealID {
			return true
		}
	}
	return false
}

// runningAverage folds one more rating into an average over count ratings.
// The stored mean keeps full precision; clients round for display.
func runningAverage(current float64, count, rating int) float64 {
	if count < 0 {
		count = 0
	}
	total := decimal.NewFromFloat(current).Mul(decimal.NewFromInt(int64(count))).Add(decimal.NewFromInt(int64(rating)))
	avg, _ := total.Div(decimal.NewFromInt(int64(count + 1))).Float64()
	return avg
}
