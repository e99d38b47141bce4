package models

import (
	"time"

	"github.com/dibba-app/dibba-backend/pkg/enums"
)

// Order is mutated only through the order state machine after creation.
type Order struct {
	ID                  string              `json:"id"`
	CustomerID          string              `json:"customerId"`
	HomemakerID         string              `json:"homemakerId"`
	DeliveryPartnerID   string              `json:"deliveryPartnerId,omitempty"`
	Items               []OrderItem         `json:"items"`
	Subtotal            float64             `json:"subtotal"`
	DeliveryFee         float64             `json:"deliveryFee"`
	TotalAmount         float64             `json:"totalAmount"`
	Status              enums.OrderStatus   `json:"status"`
	OrderDate           time.Time           `json:"orderDate"`
	DeliveryAddress     Address             `json:"deliveryAddress"`
	SpecialInstructions string              `json:"specialInstructions,omitempty"`
	PaymentMethod       enums.PaymentMethod `json:"paymentMethod"`
	PaymentStatus       enums.PaymentStatus `json:"paymentStatus"`
	Timeline            []TimelineEntry     `json:"timeline"`
	DeliveryStartTime   *time.Time          `json:"deliveryStartTime,omitempty"`
	DeliveryDate        *time.Time          `json:"deliveryDate,omitempty"`
	Route               *Route              `json:"route,omitempty"`
	Refund              *Refund             `json:"refund,omitempty"`
	Rating              *int                `json:"rating,omitempty"`
	RatingDetails       map[string]int      `json:"ratingDetails,omitempty"`
}

// OrderItem is the price snapshot taken at order time.
type OrderItem struct {
	MealID   string  `json:"mealId"`
	Name     string  `json:"name,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type TimelineEntry struct {
	Status    enums.OrderStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
}

// Route carries the delivery distance reported by the partner, in km.
type Route struct {
	Distance float64 `json:"distance"`
}

// Refund records the intent to return a captured payment. Settlement is
// handled outside this service.
type Refund struct {
	Amount      float64   `json:"amount"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Distance returns the reported route distance, zero when absent.
func (o Order) Distance() float64 {
	if o.Route == nil {
		return 0
	}
	return o.Route.Distance
}

// LastTimestamp returns the timestamp of the newest timeline entry.
func (o Order) LastTimestamp() time.Time {
	if len(o.Timeline) == 0 {
		return o.OrderDate
	}
	return o.Timeline[len(o.Timeline)-1].Timestamp
}
