package models

import "time"

// Review is left once per delivered order.
type Review struct {
	ID            string         `json:"id"`
	OrderID       string         `json:"orderId"`
	CustomerID    string         `json:"customerId"`
	HomemakerID   string         `json:"homemakerId,omitempty"`
	MealID        string         `json:"mealId,omitempty"`
	Rating        int            `json:"rating"`
	Comment       string         `json:"comment"`
	RatingDetails map[string]int `json:"ratingDetails,omitempty"`
	Date          time.Time      `json:"date"`
}
