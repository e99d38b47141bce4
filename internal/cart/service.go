package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/dibba-app/dibba-backend/pkg/db/models"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
)

type documentStore interface {
	Read(ctx context.Context, fn func(doc *models.Document) error) error
	WithTx(ctx context.Context, fn func(doc *models.Document) error) error
}

// Service maintains the single-vendor cart of each customer.
type Service interface {
	Get(ctx context.Context, userID string) (View, error)
	Add(ctx context.Context, userID string, input AddItemInput) (View, error)
	SetQuantity(ctx context.Context, userID, mealID string, quantity int) (View, error)
	Remove(ctx context.Context, userID, mealID string) (View, error)
	Clear(ctx context.Context, userID string) (View, error)
}

type service struct {
	store documentStore
	now   func() time.Time
}

// NewService builds the cart service. A nil clock defaults to time.Now.
func NewService(store documentStore, now func() time.Time) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{store: store, now: now}, nil
}

// Get never creates a cart row.
func (s *service) Get(ctx context.Context, userID string) (View, error) {
	var view View
	err := s.store.Read(ctx, func(doc *models.Document) error {
		cart, _ := doc.CartFor(userID)
		view = viewOf(userID, cart)
		return nil
	})
	return view, err
}

// Add merges into an existing line, keeping its original unit price, or
// appends a new line priced at the meal's current price.
func (s *service) Add(ctx context.Context, userID string, input AddItemInput) (View, error) {
	if input.Quantity <= 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var view View
	err := s.store.WithTx(ctx, func(doc *models.Document) error {
		meal, ok := doc.MealByID(input.MealID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "meal not found")
		}
		if !meal.IsAvailable {
			return pkgerrors.New(pkgerrors.CodePrecondition, "meal is not available")
		}

		cart := cartFor(doc, userID)
		for _, item := range cart.Items {
			if item.HomemakerID != meal.HomemakerID {
				return pkgerrors.New(pkgerrors.CodePrecondition, "cart can only contain meals from one homemaker")
			}
		}

		merged := false
		for i := range cart.Items {
			if cart.Items[i].MealID == meal.ID {
				cart.Items[i].Quantity += input.Quantity
				merged = true
				break
			}
		}
		if !merged {
			cart.Items = append(cart.Items, models.CartItem{
				MealID:      meal.ID,
				Quantity:    input.Quantity,
				UnitPrice:   meal.Price,
				HomemakerID: meal.HomemakerID,
			})
		}
		cart.UpdatedAt = s.now()
		view = viewOf(userID, cart)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return view, nil
}

func (s *service) SetQuantity(ctx context.Context, userID, mealID string, quantity int) (View, error) {
	if quantity < 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if quantity == 0 {
		return s.Remove(ctx, userID, mealID)
	}

	var view View
	err := s.store.WithTx(ctx, func(doc *models.Document) error {
		cart, ok := doc.CartFor(userID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}
		for i := range cart.Items {
			if cart.Items[i].MealID == mealID {
				cart.Items[i].Quantity = quantity
				cart.UpdatedAt = s.now()
				view = viewOf(userID, cart)
				return nil
			}
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	})
	if err != nil {
		return View{}, err
	}
	return view, nil
}

// Remove is a no-op when the meal is not in the cart.
func (s *service) Remove(ctx context.Context, userID, mealID string) (View, error) {
	var view View
	err := s.store.WithTx(ctx, func(doc *models.Document) error {
		cart, ok := doc.CartFor(userID)
		if !ok {
			view = viewOf(userID, nil)
			return nil
		}
		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.MealID != mealID {
				kept = append(kept, item)
			}
		}
		cart.Items = kept
		cart.UpdatedAt = s.now()
		view = viewOf(userID, cart)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return view, nil
}

func (s *service) Clear(ctx context.Context, userID string) (View, error) {
	err := s.store.WithTx(ctx, func(doc *models.Document) error {
		if cart, ok := doc.CartFor(userID); ok {
			cart.Items = []models.CartItem{}
			cart.UpdatedAt = s.now()
		}
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return viewOf(userID, nil), nil
}

// cartFor returns the user's cart, creating the row on first use.
func cartFor(doc *models.Document, userID string) *models.Cart {
	if cart, ok := doc.CartFor(userID); ok {
		return cart
	}
	doc.Carts = append(doc.Carts, models.Cart{UserID: userID, Items: []models.CartItem{}})
	return &doc.Carts[len(doc.Carts)-1]
}
