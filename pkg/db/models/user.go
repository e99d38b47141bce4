package models

import (
	"time"

	"github.com/dibba-app/dibba-backend/pkg/enums"
)

// User is the persisted identity record for every role. Role-specific
// profile blocks are only meaningful for the role that owns them; see Profile.
type User struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	PasswordHash   string          `json:"passwordHash"`
	Name           string          `json:"name"`
	Role           enums.Role      `json:"role"`
	Phone          string          `json:"phone,omitempty"`
	Address        *Address        `json:"address,omitempty"`
	KitchenDetails *KitchenDetails `json:"kitchenDetails,omitempty"`
	VehicleDetails *VehicleDetails `json:"vehicleDetails,omitempty"`
	BankDetails    *BankDetails    `json:"bankDetails,omitempty"`
	IsActive       *bool           `json:"isActive,omitempty"`
	IsAvailable    *bool           `json:"isAvailable,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

// Address is a postal address used for kitchens, customers and deliveries.
type Address struct {
	Street      string       `json:"street" validate:"required"`
	City        string       `json:"city" validate:"required"`
	PostalCode  string       `json:"postalCode" validate:"required"`
	Landmark    string       `json:"landmark,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type KitchenDetails struct {
	KitchenName  string   `json:"kitchenName" validate:"required"`
	FSSAILicense string   `json:"fssaiLicense,omitempty"`
	Speciality   []string `json:"speciality,omitempty"`
}

type VehicleDetails struct {
	Type               string `json:"type" validate:"required,oneof=Bike Scooter Cycle Other"`
	RegistrationNumber string `json:"registrationNumber"`
	Model              string `json:"model,omitempty"`
}

type BankDetails struct {
	AccountNumber     string `json:"accountNumber" validate:"required"`
	IFSCCode          string `json:"ifscCode" validate:"required"`
	AccountHolderName string `json:"accountHolderName" validate:"required"`
	UPIID             string `json:"upiId,omitempty"`
}

// Profile is the role-specific view of a user. Exactly one of the pointer
// fields is non-nil, selected by the user's role.
type Profile struct {
	Customer  *CustomerProfile
	Homemaker *HomemakerProfile
	Delivery  *DeliveryProfile
}

type CustomerProfile struct {
	Address *Address
}

type HomemakerProfile struct {
	Kitchen     *KitchenDetails
	Address     *Address
	BankDetails *BankDetails
	IsActive    bool
}

type DeliveryProfile struct {
	Address     *Address
	Vehicle     *VehicleDetails
	BankDetails *BankDetails
	IsAvailable bool
}

// Profile projects the role-specific fields of the user.
func (u User) Profile() Profile {
	switch u.Role {
	case enums.RoleHomemaker:
		return Profile{Homemaker: &HomemakerProfile{
			Kitchen:     u.KitchenDetails,
			Address:     u.Address,
			BankDetails: u.BankDetails,
			IsActive:    u.IsActive == nil || *u.IsActive,
		}}
	case enums.RoleDelivery:
		return Profile{Delivery: &DeliveryProfile{
			Address:     u.Address,
			Vehicle:     u.VehicleDetails,
			BankDetails: u.BankDetails,
			IsAvailable: u.IsAvailable == nil || *u.IsAvailable,
		}}
	default:
		return Profile{Customer: &CustomerProfile{Address: u.Address}}
	}
}

// PublicUser is the client-facing projection of a User. It never carries the
// password hash and only exposes the profile blocks valid for the role.
type PublicUser struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	Role           enums.Role      `json:"role"`
	Phone          string          `json:"phone,omitempty"`
	Address        *Address        `json:"address,omitempty"`
	KitchenDetails *KitchenDetails `json:"kitchenDetails,omitempty"`
	VehicleDetails *VehicleDetails `json:"vehicleDetails,omitempty"`
	BankDetails    *BankDetails    `json:"bankDetails,omitempty"`
	IsActive       *bool           `json:"isActive,omitempty"`
	IsAvailable    *bool           `json:"isAvailable,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Public returns the projection a user sees of their own account, including
// contact and bank details.
func (u User) Public() PublicUser {
	out := PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Phone:     u.Phone,
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
	}
	profile := u.Profile()
	switch {
	case profile.Homemaker != nil:
		active := profile.Homemaker.IsActive
		out.KitchenDetails = profile.Homemaker.Kitchen
		out.BankDetails = profile.Homemaker.BankDetails
		out.IsActive = &active
	case profile.Delivery != nil:
		available := profile.Delivery.IsAvailable
		out.VehicleDetails = profile.Delivery.Vehicle
		out.BankDetails = profile.Delivery.BankDetails
		out.IsAvailable = &available
	}
	return out
}

// Directory is the projection other users see: identity, role and the
// storefront or vehicle blocks. Contact, address and bank details are dropped.
func (u User) Directory() PublicUser {
	out := u.Public()
	out.Email = ""
	out.Phone = ""
	out.Address = nil
	out.BankDetails = nil
	return out
}
