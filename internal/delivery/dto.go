package delivery

import (
	"github.com/dibba-app/dibba-backend/internal/orders"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
)

// StatusInput is the body of POST /api/delivery/orders/{id}/status.
// Distance is in kilometres.
type StatusInput struct {
	Status   string   `json:"status" validate:"required"`
	Distance *float64 `json:"distance" validate:"omitempty,gte=0,lte=1000"`
}

// Contact is how a partner reaches the customer.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// EarningsEstimate is what the partner would earn for the order.
type EarningsEstimate struct {
	Base      float64 `json:"base"`
	PerKm     float64 `json:"perKm"`
	Distance  float64 `json:"distance"`
	Estimated float64 `json:"estimated"`
}

// AvailableOrder is an unclaimed order ready for pickup.
type AvailableOrder struct {
	orders.View
	PickupAddress   *models.Address  `json:"pickupAddress"`
	CustomerContact Contact          `json:"customerContact"`
	Earnings        EarningsEstimate `json:"earnings"`
}
