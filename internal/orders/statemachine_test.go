package orders

import (
	"testing"
	"time"

	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
)

var (
	customer  = Actor{UserID: "c1", Role: enums.RoleCustomer}
	homemaker = Actor{UserID: "h1", Role: enums.RoleHomemaker}
	partner   = Actor{UserID: "d1", Role: enums.RoleDelivery}
	rival     = Actor{UserID: "d2", Role: enums.RoleDelivery}
)

func newOrder(method enums.PaymentMethod, created time.Time) *models.Order {
	return &models.Order{
		ID:            "o1",
		CustomerID:    "c1",
		HomemakerID:   "h1",
		TotalAmount:   230,
		Status:        enums.OrderStatusPendingConfirmation,
		OrderDate:     created,
		PaymentMethod: method,
		PaymentStatus: method.InitialPaymentStatus(),
		Timeline:      []models.TimelineEntry{{Status: enums.OrderStatusPendingConfirmation, Timestamp: created}},
	}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := pkgerrors.As(err).Code(); got != code {
		t.Fatalf("expected %s, got %s (%v)", code, got, err)
	}
}

func TestTransitionHappyPath(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	order := newOrder(enums.PaymentMethodCOD, now)

	steps := []struct {
		actor  Actor
		target enums.OrderStatus
	}{
		{homemaker, enums.OrderStatusConfirmed},
		{homemaker, enums.OrderStatusPreparing},
		{homemaker, enums.OrderStatusReadyForPickup},
		{partner, enums.OrderStatusOutForDelivery},
		{partner, enums.OrderStatusDelivered},
	}
	for i, step := range steps {
		at := now.Add(time.Duration(i+1) * time.Minute)
		if err := Transition(order, step.target, step.actor, at); err != nil {
			t.Fatalf("step %d to %s failed: %v", i, step.target, err)
		}
	}

	if order.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", order.Status)
	}
	if order.DeliveryPartnerID != "d1" {
		t.Fatalf("expected partner d1, got %q", order.DeliveryPartnerID)
	}
	if order.DeliveryStartTime == nil || order.DeliveryDate == nil {
		t.Fatal("delivery timestamps should be populated")
	}
	if order.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("COD should complete on delivery, got %s", order.PaymentStatus)
	}
	if len(order.Timeline) != 6 || order.Timeline[0].Status != enums.OrderStatusPendingConfirmation {
		t.Fatalf("unexpected timeline %+v", order.Timeline)
	}
	for i := 1; i < len(order.Timeline); i++ {
		if order.Timeline[i].Timestamp.Before(order.Timeline[i-1].Timestamp) {
			t.Fatalf("timeline went backwards at %d", i)
		}
	}
}

func TestTransitionRepeatedIsInvalid(t *testing.T) {
	now := time.Now()
	order := newOrder(enums.PaymentMethodCOD, now)
	if err := Transition(order, enums.OrderStatusConfirmed, homemaker, now); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	requireCode(t, Transition(order, enums.OrderStatusConfirmed, homemaker, now), pkgerrors.CodeInvalidTransition)
	if len(order.Timeline) != 2 {
		t.Fatalf("rejected transition must not append, got %d entries", len(order.Timeline))
	}
}

func TestTransitionOwnership(t *testing.T) {
	now := time.Now()
	order := newOrder(enums.PaymentMethodCOD, now)
	requireCode(t, Transition(order, enums.OrderStatusConfirmed, Actor{UserID: "h2", Role: enums.RoleHomemaker}, now), pkgerrors.CodeForbidden)
	requireCode(t, Transition(order, enums.OrderStatusCancelled, Actor{UserID: "c2", Role: enums.RoleCustomer}, now), pkgerrors.CodeForbidden)
	requireCode(t, Transition(order, enums.OrderStatusConfirmed, customer, now), pkgerrors.CodeInvalidTransition)
	requireCode(t, Transition(order, enums.OrderStatusDelivered, partner, now), pkgerrors.CodeForbidden)
}

func TestTransitionCompetingClaim(t *testing.T) {
	now := time.Now()
	order := newOrder(enums.PaymentMethodUPI, now)
	order.Status = enums.OrderStatusReadyForPickup

	if err := Transition(order, enums.OrderStatusOutForDelivery, partner, now); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	requireCode(t, Transition(order, enums.OrderStatusOutForDelivery, rival, now), pkgerrors.CodeConflict)
	if order.DeliveryPartnerID != partner.UserID {
		t.Fatalf("winner must be retained, got %s", order.DeliveryPartnerID)
	}
	requireCode(t, Transition(order, enums.OrderStatusOutForDelivery, partner, now), pkgerrors.CodeInvalidTransition)
}

func TestTransitionCancelAfterCaptureRefunds(t *testing.T) {
	now := time.Now()
	order := newOrder(enums.PaymentMethodCard, now)
	if err := Transition(order, enums.OrderStatusConfirmed, homemaker, now); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := Transition(order, enums.OrderStatusCancelled, customer, now); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if order.PaymentStatus != enums.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", order.PaymentStatus)
	}
	if order.Refund == nil || order.Refund.Amount != 230 {
		t.Fatalf("expected refund intent for 230, got %+v", order.Refund)
	}

	cod := newOrder(enums.PaymentMethodCOD, now)
	if err := Transition(cod, enums.OrderStatusCancelled, customer, now); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cod.PaymentStatus != enums.PaymentStatusPending || cod.Refund != nil {
		t.Fatal("uncaptured COD cancellation must not record a refund")
	}
}

func TestTransitionTerminalStates(t *testing.T) {
	for _, status := range []enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCancelled, enums.OrderStatusDeclined} {
		for _, role := range []enums.Role{enums.RoleCustomer, enums.RoleHomemaker, enums.RoleDelivery} {
			if next := NextStatuses(status, role); len(next) != 0 {
				t.Fatalf("terminal %s should have no exits for %s, got %v", status, role, next)
			}
		}
	}
}

func TestTransitionTimelineNeverGoesBackwards(t *testing.T) {
	now := time.Now()
	order := newOrder(enums.PaymentMethodCOD, now)
	if err := Transition(order, enums.OrderStatusConfirmed, homemaker, now.Add(-time.Hour)); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if order.Timeline[1].Timestamp.Before(order.Timeline[0].Timestamp) {
		t.Fatal("timeline timestamp regressed")
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	requireCode(t, Transition(newOrder(enums.PaymentMethodCOD, time.Now()), enums.OrderStatus("Shipped"), homemaker, time.Now()), pkgerrors.CodeValidation)
}
