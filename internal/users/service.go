package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
)

type documentStore interface {
	Read(ctx context.Context, fn func(doc *models.Document) error) error
	WithTx(ctx context.Context, fn func(doc *models.Document) error) error
}

// Service exposes profile reads and owner-only profile updates.
type Service interface {
	Me(ctx context.Context, caller visibility.Caller) (models.PublicUser, error)
	Get(ctx context.Context, caller visibility.Caller, id string) (models.PublicUser, error)
	Update(ctx context.Context, caller visibility.Caller, id string, input UpdateInput) (models.PublicUser, error)
	VerifyUser(ctx context.Context, userID string, role enums.Role) (bool, error)
}

type service struct {
	store documentStore
	now   func() time.Time
}

// NewService builds the users service. A nil clock defaults to time.Now.
func NewService(store documentStore, now func() time.Time) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{store: store, now: now}, nil
}

func (s *service) Me(ctx context.Context, caller visibility.Caller) (models.PublicUser, error) {
	user, err := s.Get(ctx, caller, caller.UserID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return models.PublicUser{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user no longer exists")
	}
	return user, err
}

func (s *service) Get(ctx context.Context, caller visibility.Caller, id string) (models.PublicUser, error) {
	var out models.PublicUser
	err := s.store.Read(ctx, func(doc *models.Document) error {
		user, ok := doc.UserByID(id)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		out = visibility.UserView(*user, caller)
		return nil
	})
	return out, err
}

func (s *service) Update(ctx context.Context, caller visibility.Caller, id string, input UpdateInput) (models.PublicUser, error) {
	var out models.PublicUser
	err := s.store.WithTx(ctx, func(doc *models.Document) error {
		user, ok := doc.UserByID(id)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if err := visibility.EnsureOwner(user.ID, caller, "profile"); err != nil {
			return err
		}
		if bad := input.disallowedFor(user.Profile()); len(bad) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%s cannot be set for role %s", strings.Join(bad, ", "), user.Role))
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
			}
			user.Name = name
		}
		if input.Phone != nil {
			user.Phone = strings.TrimSpace(*input.Phone)
		}
		if input.Address != nil {
			user.Address = input.Address
		}
		if input.KitchenDetails != nil {
			user.KitchenDetails = input.KitchenDetails
		}
		if input.BankDetails != nil {
			user.BankDetails = input.BankDetails
		}
		if input.IsActive != nil {
			active := *input.IsActive
			user.IsActive = &active
		}
		if input.VehicleDetails != nil {
			user.VehicleDetails = input.VehicleDetails
		}
		if input.IsAvailable != nil {
			available := *input.IsAvailable
			user.IsAvailable = &available
		}
		now := s.now()
		user.UpdatedAt = &now
		out = user.Public()
		return nil
	})
	return out, err
}

// VerifyUser reports whether a token subject still maps to a user with that role.
func (s *service) VerifyUser(ctx context.Context, userID string, role enums.Role) (bool, error) {
	found := false
	err := s.store.Read(ctx, func(doc *models.Document) error {
		user, ok := doc.UserByID(userID)
		found = ok && user.Role == role
		return nil
	})
	return found, err
}
