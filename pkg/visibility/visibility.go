package visibility

import (
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
)

// Caller is the authenticated identity a read is evaluated for.
type Caller struct {
	UserID string
	Role   enums.Role
}

// OrderVisible reports whether the caller may read the order. Customers and
// homemakers see their own orders; delivery partners see orders assigned to
// them and orders nobody has claimed yet.
func OrderVisible(order models.Order, caller Caller) bool {
	switch caller.Role {
	case enums.RoleCustomer:
		return order.CustomerID == caller.UserID
	case enums.RoleHomemaker:
		return order.HomemakerID == caller.UserID
	case enums.RoleDelivery:
		return order.DeliveryPartnerID == caller.UserID || order.DeliveryPartnerID == ""
	}
	return false
}

// EnsureOrderVisible is OrderVisible as an error.
func EnsureOrderVisible(order models.Order, caller Caller) error {
	if !OrderVisible(order, caller) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return nil
}

// OwnedBy reports whether a user-scoped row (cart, payout) belongs to the caller.
func OwnedBy(ownerID string, caller Caller) bool {
	return ownerID != "" && ownerID == caller.UserID
}

// EnsureOwner returns a forbidden error when the caller does not own the resource.
func EnsureOwner(ownerID string, caller Caller, resource string) error {
	if !OwnedBy(ownerID, caller) {
		return pkgerrors.New(pkgerrors.CodeForbidden, resource+" belongs to another user")
	}
	return nil
}

// UserView projects u for the caller: the full self view for the account
// owner, the directory view for everyone else.
func UserView(u models.User, caller Caller) models.PublicUser {
	if OwnedBy(u.ID, caller) {
		return u.Public()
	}
	return u.Directory()
}
