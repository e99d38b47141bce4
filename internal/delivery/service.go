package delivery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dibba-app/dibba-backend/internal/earnings"
	"github.com/dibba-app/dibba-backend/internal/orders"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/money"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
)

type documentStore interface {
	Read(ctx context.Context, fn func(doc *models.Document) error) error
}

type statusUpdater interface {
	UpdateStatus(ctx context.Context, actor orders.Actor, orderID string, target enums.OrderStatus, opts orders.StatusOptions) (orders.View, error)
}

// Service is the delivery partner's view of the order board.
type Service interface {
	Available(ctx context.Context, caller visibility.Caller) ([]AvailableOrder, error)
	Current(ctx context.Context, caller visibility.Caller) (*orders.View, error)
	UpdateStatus(ctx context.Context, caller visibility.Caller, orderID string, input StatusInput) (orders.View, error)
}

type service struct {
	store  documentStore
	orders statusUpdater
}

// NewService builds the delivery service on top of the order service.
func NewService(store documentStore, ordersSvc statusUpdater) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	return &service{store: store, orders: ordersSvc}, nil
}

func (s *service) Available(ctx context.Context, caller visibility.Caller) ([]AvailableOrder, error) {
	if caller.Role != enums.RoleDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only delivery partners can view the order board")
	}
	out := []AvailableOrder{}
	err := s.store.Read(ctx, func(doc *models.Document) error {
		for _, order := range doc.Orders {
			if order.Status != enums.OrderStatusReadyForPickup || order.DeliveryPartnerID != "" {
				continue
			}
			out = append(out, available(doc, order))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderDate.Before(out[j].OrderDate)
	})
	return out, nil
}

func available(doc *models.Document, order models.Order) AvailableOrder {
	view := AvailableOrder{
		View: orders.Enrich(doc, order),
		Earnings: EarningsEstimate{
			Base:      money.Float(earnings.BaseDelivery),
			PerKm:     money.Float(earnings.PerKm),
			Distance:  order.Distance(),
			Estimated: money.Float(earnings.Earn(order, enums.RoleDelivery)),
		},
	}
	if homemaker, ok := doc.UserByID(order.HomemakerID); ok {
		view.PickupAddress = homemaker.Address
	}
	if customer, ok := doc.UserByID(order.CustomerID); ok {
		view.CustomerContact = Contact{Name: customer.Name, Phone: customer.Phone}
	}
	return view
}

// Current returns the caller's order that is out for delivery, or nil.
func (s *service) Current(ctx context.Context, caller visibility.Caller) (*orders.View, error) {
	if caller.Role != enums.RoleDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only delivery partners have a current delivery")
	}
	var current *orders.View
	err := s.store.Read(ctx, func(doc *models.Document) error {
		for _, order := range doc.Orders {
			if order.Status != enums.OrderStatusOutForDelivery || order.DeliveryPartnerID != caller.UserID {
				continue
			}
			if current == nil || order.LastTimestamp().After(current.LastTimestamp()) {
				view := orders.Enrich(doc, order)
				current = &view
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

func (s *service) UpdateStatus(ctx context.Context, caller visibility.Caller, orderID string, input StatusInput) (orders.View, error) {
	if caller.Role != enums.RoleDelivery {
		return orders.View{}, pkgerrors.New(pkgerrors.CodeForbidden, "only delivery partners can use this endpoint")
	}
	target, err := enums.ParseOrderStatus(strings.TrimSpace(input.Status))
	if err != nil {
		return orders.View{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status")
	}
	return s.orders.UpdateStatus(ctx,
		orders.Actor{UserID: caller.UserID, Role: caller.Role},
		orderID, target, orders.StatusOptions{Distance: input.Distance})
}
