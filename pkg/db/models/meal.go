package models

import (
	"time"

	"github.com/dibba-app/dibba-backend/pkg/enums"
)

// Meal is a dish published by a homemaker.
type Meal struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Price           float64       `json:"price"`
	Category        string        `json:"category"`
	Dietary         enums.Dietary `json:"dietary,omitempty"`
	Image           string        `json:"image"`
	IsAvailable     bool          `json:"isAvailable"`
	HomemakerID     string        `json:"homemakerId"`
	Rating          float64       `json:"rating"`
	ReviewCount     int           `json:"reviewCount"`
	PreparationTime *int          `json:"preparationTime,omitempty"`
	ServingSize     *int          `json:"servingSize,omitempty"`
	Allergens       []string      `json:"allergens,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       *time.Time    `json:"updatedAt,omitempty"`
}
