package orders

import (
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
)

// CreateItemInput is one requested line. Price is accepted for client
// compatibility but never trusted.
type CreateItemInput struct {
	MealID   string   `json:"mealId" validate:"required"`
	Quantity int      `json:"quantity" validate:"required,gt=0,lte=100"`
	Price    *float64 `json:"price,omitempty"`
}

// CreateInput is the body of POST /api/orders. When Items is empty the
// caller's cart is ordered.
type CreateInput struct {
	Items               []CreateItemInput `json:"items" validate:"omitempty,max=50,dive"`
	DeliveryAddress     models.Address    `json:"deliveryAddress"`
	PaymentMethod       string            `json:"paymentMethod" validate:"required,oneof=COD UPI Card"`
	SpecialInstructions string            `json:"specialInstructions" validate:"max=500"`
}

// UpdateStatusInput is the body of PATCH /api/orders/{id}.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// StatusOptions carries extra data recorded with a transition.
type StatusOptions struct {
	Distance *float64
}

// ListFilter narrows order listings.
type ListFilter struct {
	Status *enums.OrderStatus
}

// View is an order with the names of the people involved attached.
type View struct {
	models.Order
	CustomerName        *string `json:"customerName"`
	HomemakerName       *string `json:"homemakerName"`
	DeliveryPartnerName *string `json:"deliveryPartnerName"`
}
