package models

// Collection names as they appear in the persisted document.
const (
	CollectionUsers      = "users"
	CollectionMeals      = "meals"
	CollectionOrders     = "orders"
	CollectionCarts      = "carts"
	CollectionPayouts    = "payouts"
	CollectionReviews    = "reviews"
	CollectionCategories = "categories"
)

// Collections lists every top-level key of the document.
var Collections = []string{
	CollectionUsers,
	CollectionMeals,
	CollectionOrders,
	CollectionCarts,
	CollectionPayouts,
	CollectionReviews,
	CollectionCategories,
}

// Document is the whole persisted state.
type Document struct {
	Users      []User     `json:"users"`
	Meals      []Meal     `json:"meals"`
	Orders     []Order    `json:"orders"`
	Carts      []Cart     `json:"carts"`
	Payouts    []Payout   `json:"payouts"`
	Reviews    []Review   `json:"reviews"`
	Categories []Category `json:"categories"`
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Meals == nil {
		d.Meals = []Meal{}
	}
	if d.Orders == nil {
		d.Orders = []Order{}
	}
	if d.Carts == nil {
		d.Carts = []Cart{}
	}
	for i := range d.Carts {
		if d.Carts[i].Items == nil {
			d.Carts[i].Items = []CartItem{}
		}
	}
	if d.Payouts == nil {
		d.Payouts = []Payout{}
	}
	if d.Reviews == nil {
		d.Reviews = []Review{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
}

func (d *Document) UserByID(id string) (*User, bool) {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i], true
		}
	}
	return nil, false
}

func (d *Document) MealByID(id string) (*Meal, bool) {
	for i := range d.Meals {
		if d.Meals[i].ID == id {
			return &d.Meals[i], true
		}
	}
	return nil, false
}

func (d *Document) OrderByID(id string) (*Order, bool) {
	for i := range d.Orders {
		if d.Orders[i].ID == id {
			return &d.Orders[i], true
		}
	}
	return nil, false
}

// CartFor returns the cart row for a user, if one exists.
func (d *Document) CartFor(userID string) (*Cart, bool) {
	for i := range d.Carts {
		if d.Carts[i].UserID == userID {
			return &d.Carts[i], true
		}
	}
	return nil, false
}

// UserName returns the user's name, or nil when the user is missing.
func (d *Document) UserName(id string) *string {
	if id == "" {
		return nil
	}
	user, ok := d.UserByID(id)
	if !ok {
		return nil
	}
	name := user.Name
	return &name
}
