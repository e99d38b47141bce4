package cart

import "github.com/dibba-app/dibba-backend/pkg/db/models"

// AddItemInput is the body of POST /api/cart.
type AddItemInput struct {
	MealID   string `json:"mealId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0,lte=100"`
}

// SetQuantityInput is the body of PATCH /api/cart/{mealId}. Zero removes the item.
type SetQuantityInput struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,lte=100"`
}

// View is the cart as returned to clients.
type View struct {
	UserID string            `json:"userId"`
	Items  []models.CartItem `json:"items"`
}

func viewOf(userID string, cart *models.Cart) View {
	items := []models.CartItem{}
	if cart != nil {
		items = append(items, cart.Items...)
	}
	return View{UserID: userID, Items: items}
}
