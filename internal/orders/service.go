package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dibba-app/dibba-backend/internal/ids"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/money"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
	"github.com/shopspring/decimal"
)

// DeliveryFee is charged on every order with a positive subtotal.
var DeliveryFee = decimal.NewFromInt(30)

type documentStore interface {
	Read(ctx context.Context, fn func(doc *models.Document) error) error
	WithTx(ctx context.Context, fn func(doc *models.Document) error) error
}

// Service defines order creation, reads and lifecycle changes.
type Service interface {
	Create(ctx context.Context, customerID string, input CreateInput) (View, error)
	List(ctx context.Context, caller visibility.Caller, filter ListFilter) ([]View, error)
	Get(ctx context.Context, caller visibility.Caller, orderID string) (View, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID string, target enums.OrderStatus, opts StatusOptions) (View, error)
}

type service struct {
	store documentStore
	now   func() time.Time
}

// NewService builds the order service. A nil clock defaults to time.Now.
func NewService(store documentStore, now func() time.Time) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{store: store, now: now}, nil
}

func (s *service) Create(ctx context.Context, customerID string, input CreateInput) (View, error) {
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "paymentMethod must be one of COD, UPI, Card")
	}

	var view View
	err = s.store.WithTx(ctx, func(doc *models.Document) error {
		cart, hasCart := doc.CartFor(customerID)

		requested := input.Items
		if len(requested) == 0 && hasCart {
			for _, item := range cart.Items {
				requested = append(requested, CreateItemInput{MealID: item.MealID, Quantity: item.Quantity})
			}
		}
		if len(requested) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
		}

		cartPrices := map[string]float64{}
		if hasCart {
			for _, item := range cart.Items {
				cartPrices[item.MealID] = item.UnitPrice
			}
		}

		items, homemakerID, err := resolveItems(doc, requested, cartPrices)
		if err != nil {
			return err
		}

		if homemaker, ok := doc.UserByID(homemakerID); ok {
			if profile := homemaker.Profile().Homemaker; profile != nil && !profile.IsActive {
				return pkgerrors.New(pkgerrors.CodePrecondition, "homemaker is not accepting orders")
			}
		}

		subtotal := decimal.Zero
		for _, item := range items {
			subtotal = subtotal.Add(money.Line(item.Price, item.Quantity))
		}
		fee := decimal.Zero
		if subtotal.IsPositive() {
			fee = DeliveryFee
		}

		now := s.now()
		order := models.Order{
			ID:                  ids.NextOrder(doc),
			CustomerID:          customerID,
			HomemakerID:         homemakerID,
			Items:               items,
			Subtotal:            money.Float(subtotal),
			DeliveryFee:         money.Float(fee),
			TotalAmount:         money.Float(subtotal.Add(fee)),
			Status:              enums.OrderStatusPendingConfirmation,
			OrderDate:           now,
			DeliveryAddress:     input.DeliveryAddress,
			SpecialInstructions: input.SpecialInstructions,
			PaymentMethod:       method,
			PaymentStatus:       method.InitialPaymentStatus(),
			Timeline: []models.TimelineEntry{
				{Status: enums.OrderStatusPendingConfirmation, Timestamp: now},
			},
		}
		doc.Orders = append(doc.Orders, order)

		if hasCart {
			cart.Items = []models.CartItem{}
			cart.UpdatedAt = now
		}

		view = Enrich(doc, order)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return view, nil
}

// resolveItems validates every line against the catalogue and snapshots prices.
// Duplicate meal ids are merged.
func resolveItems(doc *models.Document, requested []CreateItemInput, cartPrices map[string]float64) ([]models.OrderItem, string, error) {
	var (
		items       []models.OrderItem
		index       = map[string]int{}
		homemakerID string
	)
	for _, line := range requested {
		if line.Quantity <= 0 {
			return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		meal, ok := doc.MealByID(line.MealID)
		if !ok {
			return nil, "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("meal %s not found", line.MealID))
		}
		if !meal.IsAvailable {
			return nil, "", pkgerrors.New(pkgerrors.CodePrecondition, fmt.Sprintf("meal %s is not available", meal.ID))
		}
		if homemakerID == "" {
			homemakerID = meal.HomemakerID
		} else if meal.HomemakerID != homemakerID {
			return nil, "", pkgerrors.New(pkgerrors.CodePrecondition, "all items must come from the same homemaker")
		}

		if at, seen := index[meal.ID]; seen {
			items[at].Quantity += line.Quantity
			continue
		}
		price, inCart := cartPrices[meal.ID]
		if !inCart {
			price = meal.Price
		}
		index[meal.ID] = len(items)
		items = append(items, models.OrderItem{
			MealID:   meal.ID,
			Name:     meal.Name,
			Quantity: line.Quantity,
			Price:    price,
		})
	}
	return items, homemakerID, nil
}

func (s *service) List(ctx context.Context, caller visibility.Caller, filter ListFilter) ([]View, error) {
	views := []View{}
	err := s.store.Read(ctx, func(doc *models.Document) error {
		for _, order := range doc.Orders {
			if !visibility.OrderVisible(order, caller) {
				continue
			}
			if filter.Status != nil && order.Status != *filter.Status {
				continue
			}
			views = append(views, Enrich(doc, order))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].OrderDate.After(views[j].OrderDate)
	})
	return views, nil
}

func (s *service) Get(ctx context.Context, caller visibility.Caller, orderID string) (View, error) {
	var view View
	err := s.store.Read(ctx, func(doc *models.Document) error {
		order, ok := doc.OrderByID(orderID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err := visibility.EnsureOrderVisible(*order, caller); err != nil {
			return err
		}
		view = Enrich(doc, *order)
		return nil
	})
	return view, err
}

func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID string, target enums.OrderStatus, opts StatusOptions) (View, error) {
	if opts.Distance != nil && *opts.Distance < 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "distance must not be negative")
	}

	var view View
	err := s.store.WithTx(ctx, func(doc *models.Document) error {
		order, ok := doc.OrderByID(orderID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err := Transition(order, target, actor, s.now()); err != nil {
			return err
		}
		if opts.Distance != nil {
			order.Route = &models.Route{Distance: *opts.Distance}
		}
		view = Enrich(doc, *order)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return view, nil
}
