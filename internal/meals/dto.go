package meals

import (
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	"github.com/dibba-app/dibba-backend/pkg/pagination"
)

// CreateInput is the payload a homemaker sends to publish a meal. The owner
// always comes from the token.
type CreateInput struct {
	Name            string   `json:"name" validate:"required,max=100"`
	Description     string   `json:"description" validate:"max=1000"`
	Price           *float64 `json:"price" validate:"required,gte=0,lte=100000"`
	Category        string   `json:"category" validate:"required,max=50"`
	Dietary         string   `json:"dietary" validate:"omitempty,oneof=Veg Non-Veg Vegan"`
	Image           string   `json:"image" validate:"max=2048"`
	IsAvailable     *bool    `json:"isAvailable"`
	PreparationTime *int     `json:"preparationTime" validate:"omitempty,gte=0,lte=1440"`
	ServingSize     *int     `json:"servingSize" validate:"omitempty,gte=1,lte=100"`
	Allergens       []string `json:"allergens" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateInput patches a meal. There is deliberately no homemakerId field.
type UpdateInput struct {
	Name            *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Description     *string   `json:"description" validate:"omitempty,max=1000"`
	Price           *float64  `json:"price" validate:"omitempty,gte=0,lte=100000"`
	Category        *string   `json:"category" validate:"omitempty,min=1,max=50"`
	Dietary         *string   `json:"dietary" validate:"omitempty,oneof=Veg Non-Veg Vegan"`
	Image           *string   `json:"image" validate:"omitempty,max=2048"`
	IsAvailable     *bool     `json:"isAvailable"`
	PreparationTime *int      `json:"preparationTime" validate:"omitempty,gte=0,lte=1440"`
	ServingSize     *int      `json:"servingSize" validate:"omitempty,gte=1,lte=100"`
	Allergens       *[]string `json:"allergens" validate:"omitempty,max=20,dive,max=50"`
}

// ListFilter narrows the public meal listing. Nil and empty values match everything.
type ListFilter struct {
	HomemakerID string
	Category    string
	Dietary     *enums.Dietary
	IsAvailable *bool
	Query       string
	Pagination  pagination.Params
}

// View is a meal with the owning homemaker's display name.
type View struct {
	models.Meal
	HomemakerName *string `json:"homemakerName"`
}

func viewOf(doc *models.Document, meal models.Meal) View {
	return View{Meal: meal, HomemakerName: doc.UserName(meal.HomemakerID)}
}
