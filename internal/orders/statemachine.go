package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/money"
)

// Actor is the authenticated caller attempting a transition.
type Actor struct {
	UserID string
	Role   enums.Role
}

// transition is one permitted (from, to, role) edge of the lifecycle.
type transition struct {
	From  enums.OrderStatus
	To    enums.OrderStatus
	Actor enums.Role
}

var transitions = []transition{
	{From: enums.OrderStatusPendingConfirmation, To: enums.OrderStatusConfirmed, Actor: enums.RoleHomemaker},
	{From: enums.OrderStatusPendingConfirmation, To: enums.OrderStatusDeclined, Actor: enums.RoleHomemaker},
	{From: enums.OrderStatusPendingConfirmation, To: enums.OrderStatusCancelled, Actor: enums.RoleCustomer},
	{From: enums.OrderStatusConfirmed, To: enums.OrderStatusCancelled, Actor: enums.RoleCustomer},
	{From: enums.OrderStatusConfirmed, To: enums.OrderStatusPreparing, Actor: enums.RoleHomemaker},
	{From: enums.OrderStatusPreparing, To: enums.OrderStatusReadyForPickup, Actor: enums.RoleHomemaker},
	{From: enums.OrderStatusReadyForPickup, To: enums.OrderStatusOutForDelivery, Actor: enums.RoleDelivery},
	{From: enums.OrderStatusOutForDelivery, To: enums.OrderStatusDelivered, Actor: enums.RoleDelivery},
}

var transitionTable = func() map[transition]struct{} {
	m := make(map[transition]struct{}, len(transitions))
	for _, t := range transitions {
		m[t] = struct{}{}
	}
	return m
}()

// CanTransition reports whether role may move an order from one status to another.
func CanTransition(from, to enums.OrderStatus, role enums.Role) bool {
	_, ok := transitionTable[transition{From: from, To: to, Actor: role}]
	return ok
}

// NextStatuses lists the statuses role may move an order in status to.
func NextStatuses(status enums.OrderStatus, role enums.Role) []enums.OrderStatus {
	var next []enums.OrderStatus
	for _, t := range transitions {
		if t.From == status && t.Actor == role {
			next = append(next, t.To)
		}
	}
	return next
}

// Transition applies target to order on behalf of actor. Checks run in a fixed
// order: ownership, then the delivery claim, then the transition table. On
// success the side effects of the edge are applied and one timeline entry is
// appended.
func Transition(order *models.Order, target enums.OrderStatus, actor Actor, now time.Time) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", target))
	}
	if err := checkOwnership(order, target, actor); err != nil {
		return err
	}
	if !CanTransition(order.Status, target, actor.Role) {
		return invalidTransition(order.Status, target, actor.Role)
	}

	switch target {
	case enums.OrderStatusCancelled:
		if order.PaymentStatus == enums.PaymentStatusCompleted {
			order.PaymentStatus = enums.PaymentStatusRefunded
			order.Refund = &models.Refund{
				Amount:      money.Float(money.FromFloat(order.TotalAmount)),
				Reason:      "cancelled by customer",
				RequestedAt: now,
			}
		}
	case enums.OrderStatusOutForDelivery:
		started := now
		order.DeliveryPartnerID = actor.UserID
		order.DeliveryStartTime = &started
	case enums.OrderStatusDelivered:
		delivered := now
		order.DeliveryDate = &delivered
		if order.PaymentMethod == enums.PaymentMethodCOD {
			order.PaymentStatus = enums.PaymentStatusCompleted
		}
	}

	stamp := now
	if last := order.LastTimestamp(); stamp.Before(last) {
		stamp = last
	}
	order.Status = target
	order.Timeline = append(order.Timeline, models.TimelineEntry{Status: target, Timestamp: stamp})
	return nil
}

func checkOwnership(order *models.Order, target enums.OrderStatus, actor Actor) error {
	switch actor.Role {
	case enums.RoleHomemaker:
		if order.HomemakerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another homemaker")
		}
	case enums.RoleCustomer:
		if order.CustomerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
		}
	case enums.RoleDelivery:
		if target == enums.OrderStatusOutForDelivery {
			if order.DeliveryPartnerID != "" && order.DeliveryPartnerID != actor.UserID {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already claimed by another delivery partner")
			}
			return nil
		}
		if order.DeliveryPartnerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is assigned to another delivery partner")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot change order status")
	}
	return nil
}

func invalidTransition(from, to enums.OrderStatus, role enums.Role) error {
	allowed := NextStatuses(from, role)
	names := make([]string, 0, len(allowed))
	for _, s := range allowed {
		names = append(names, string(s))
	}
	valid := "none"
	if len(names) > 0 {
		valid = strings.Join(names, ", ")
	}
	msg := fmt.Sprintf("cannot move order from %s to %s as %s (allowed: %s)", from, to, role, valid)
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, msg)
}
