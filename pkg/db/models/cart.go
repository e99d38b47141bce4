package models

import "time"

// Cart is the per-customer staging area. All items share one homemaker.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem keeps the unit price captured when the meal was first added.
type CartItem struct {
	MealID      string  `json:"mealId"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	HomemakerID string  `json:"homemakerId"`
}
