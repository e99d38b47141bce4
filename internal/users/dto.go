package users

import "github.com/dibba-app/dibba-backend/pkg/db/models"

// UpdateInput is the profile patch. Only non-nil fields are applied, and the
// role-specific blocks are only accepted for the role that owns them.
type UpdateInput struct {
	Name           *string                `json:"name" validate:"omitempty,min=1,max=100"`
	Phone          *string                `json:"phone" validate:"omitempty,max=20"`
	Address        *models.Address        `json:"address"`
	KitchenDetails *models.KitchenDetails `json:"kitchenDetails"`
	BankDetails    *models.BankDetails    `json:"bankDetails"`
	IsActive       *bool                  `json:"isActive"`
	VehicleDetails *models.VehicleDetails `json:"vehicleDetails"`
	IsAvailable    *bool                  `json:"isAvailable"`
}

// disallowedFor lists the json names of the set fields that the role may not change.
func (in UpdateInput) disallowedFor(profile models.Profile) []string {
	var out []string
	if profile.Homemaker == nil {
		if in.KitchenDetails != nil {
			out = append(out, "kitchenDetails")
		}
		if in.IsActive != nil {
			out = append(out, "isActive")
		}
	}
	if profile.Delivery == nil {
		if in.VehicleDetails != nil {
			out = append(out, "vehicleDetails")
		}
		if in.IsAvailable != nil {
			out = append(out, "isAvailable")
		}
	}
	if profile.Customer != nil && in.BankDetails != nil {
		out = append(out, "bankDetails")
	}
	return out
}
