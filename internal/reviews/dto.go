package reviews

import "github.com/dibba-app/dibba-backend/pkg/db/models"

// CreateInput is the body of POST /api/reviews.
type CreateInput struct {
	OrderID       string         `json:"orderId" validate:"required"`
	Rating        int            `json:"rating" validate:"required,gte=1,lte=5"`
	Comment       string         `json:"comment" validate:"max=1000"`
	MealID        string         `json:"mealId"`
	RatingDetails map[string]int `json:"ratingDetails" validate:"omitempty,max=10,dive,keys,min=1,max=30,endkeys,gte=1,lte=5"`
}

// ListFilter narrows the public review listing.
type ListFilter struct {
	HomemakerID string
	MealID      string
	OrderID     string
}

// View is a review with the reviewer's display name.
type View struct {
	models.Review
	CustomerName *string `json:"customerName"`
}
