package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dibba-app/dibba-backend/internal/ids"
	pkgauth "github.com/dibba-app/dibba-backend/pkg/auth"
	"github.com/dibba-app/dibba-backend/pkg/config"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
)

// InvalidCredentialsMessage is the only failure message login ever returns.
const InvalidCredentialsMessage = "Invalid credentials"

type documentStore interface {
	Read(ctx context.Context, fn func(doc *models.Document) error) error
	WithTx(ctx context.Context, fn func(doc *models.Document) error) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (Result, error)
	Register(ctx context.Context, req RegisterRequest) (Result, error)
}

type service struct {
	store  documentStore
	hasher passwordHasher
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Store     documentStore
	Hasher    passwordHasher
	JWTConfig config.JWTConfig
	Now       func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:  params.Store,
		hasher: params.Hasher,
		jwtCfg: params.JWTConfig,
		now:    now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Login(ctx context.Context, req LoginRequest) (Result, error) {
	email := normalizeEmail(req.Email)
	role, err := enums.ParseRole(strings.TrimSpace(req.Role))
	if err != nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeUnauthorized, InvalidCredentialsMessage)
	}

	var user models.User
	found := false
	err = s.store.Read(ctx, func(doc *models.Document) error {
		for _, u := range doc.Users {
			if normalizeEmail(u.Email) == email && u.Role == role {
				user = u
				found = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if !found || user.PasswordHash == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeUnauthorized, InvalidCredentialsMessage)
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return Result{}, pkgerrors.New(pkgerrors.CodeUnauthorized, InvalidCredentialsMessage)
	}
	return s.issue(user)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (Result, error) {
	role, err := enums.ParseRole(strings.TrimSpace(req.Role))
	if err != nil {
		return Result{}, pkgerrors.New(pkgerrors.CodePrecondition, "role must be one of customer, homemaker, delivery")
	}
	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := checkProfileForRole(role, req); err != nil {
		return Result{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "password is invalid")
	}

	var created models.User
	err = s.store.WithTx(ctx, func(doc *models.Document) error {
		for _, u := range doc.Users {
			if normalizeEmail(u.Email) == email {
				return pkgerrors.New(pkgerrors.CodeValidation, "email already registered")
			}
		}

		user := models.User{
			ID:           ids.NextUser(doc, role),
			Email:        email,
			PasswordHash: hash,
			Name:         name,
			Role:         role,
			Phone:        strings.TrimSpace(req.Phone),
			Address:      req.Address,
			CreatedAt:    s.now(),
		}
		switch role {
		case enums.RoleHomemaker:
			active := true
			user.KitchenDetails = kitchenDetails(req)
			user.BankDetails = req.BankDetails
			user.IsActive = &active
		case enums.RoleDelivery:
			available := true
			user.VehicleDetails = req.VehicleDetails
			user.BankDetails = req.BankDetails
			user.IsAvailable = &available
		}
		doc.Users = append(doc.Users, user)
		created = user
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return s.issue(created)
}

func (s *service) issue(user models.User) (Result, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue token")
	}
	return Result{User: user.Public(), Token: token}, nil
}

func kitchenDetails(req RegisterRequest) *models.KitchenDetails {
	if req.KitchenDetails != nil {
		return req.KitchenDetails
	}
	if name := strings.TrimSpace(req.KitchenName); name != "" {
		return &models.KitchenDetails{KitchenName: name}
	}
	return nil
}

// checkProfileForRole rejects profile blocks that belong to another role.
func checkProfileForRole(role enums.Role, req RegisterRequest) error {
	var invalid []string
	switch role {
	case enums.RoleCustomer:
		if req.KitchenDetails != nil || req.KitchenName != "" {
			invalid = append(invalid, "kitchenDetails")
		}
		if req.VehicleDetails != nil {
			invalid = append(invalid, "vehicleDetails")
		}
		if req.BankDetails != nil {
			invalid = append(invalid, "bankDetails")
		}
	case enums.RoleHomemaker:
		if req.VehicleDetails != nil {
			invalid = append(invalid, "vehicleDetails")
		}
	case enums.RoleDelivery:
		if req.KitchenDetails != nil || req.KitchenName != "" {
			invalid = append(invalid, "kitchenDetails")
		}
	}
	if len(invalid) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s not allowed for role %s", strings.Join(invalid, ", "), role))
	}
	return nil
}
