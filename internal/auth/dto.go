package auth

import "github.com/dibba-app/dibba-backend/pkg/db/models"

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=256"`
	Role     string `json:"role" validate:"required"`
}

// RegisterRequest carries the account and the optional role-specific profile.
// KitchenName is accepted at the top level for clients that send it flat.
type RegisterRequest struct {
	Email          string                 `json:"email" validate:"required,max=254"`
	Password       string                 `json:"password" validate:"required,max=256"`
	Name           string                 `json:"name" validate:"required,max=100"`
	Role           string                 `json:"role" validate:"required"`
	Phone          string                 `json:"phone" validate:"max=20"`
	Address        *models.Address        `json:"address"`
	KitchenName    string                 `json:"kitchenName" validate:"max=100"`
	KitchenDetails *models.KitchenDetails `json:"kitchenDetails"`
	VehicleDetails *models.VehicleDetails `json:"vehicleDetails"`
	BankDetails    *models.BankDetails    `json:"bankDetails"`
}

// Result is returned by login and register.
type Result struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}
