package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	pkgauth "github.com/dibba-app/dibba-backend/pkg/auth"
	"github.com/dibba-app/dibba-backend/pkg/config"
	"github.com/dibba-app/dibba-backend/pkg/db"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// Tokens are parsed against the wall clock, so mint them near it.
	testNow = time.Now().UTC().Truncate(time.Second)
	testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "dibba", ExpirationMinutes: 60}
)

func newTestService(t *testing.T) (Service, *db.Store) {
	t.Helper()
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "db.json"), nil, nil)
	require.NoError(t, err)
	hasher := security.NewHasher(config.PasswordConfig{
		ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32,
	})
	svc, err := NewService(ServiceParams{
		Store:     store,
		Hasher:    hasher,
		JWTConfig: testJWT,
		Now:       func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return svc, store
}

func TestRegisterThenLogin(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{
		Email: "Alice@X", Password: "pw", Name: "Alice", Role: "customer",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", reg.User.ID)
	assert.Equal(t, "alice@x", reg.User.Email)
	assert.NotEmpty(t, reg.Token)

	claims, err := pkgauth.ParseAccessToken(testJWT, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, "c1", claims.UserID)
	assert.Equal(t, enums.RoleCustomer, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, testNow.Add(testJWT.TTL()), claims.ExpiresAt.Time, time.Second)

	login, err := svc.Login(ctx, LoginRequest{Email: "alice@x", Password: "pw", Role: "customer"})
	require.NoError(t, err)
	assert.Equal(t, "c1", login.User.ID)

	require.NoError(t, store.Read(ctx, func(doc *models.Document) error {
		require.Len(t, doc.Users, 1)
		assert.NotEqual(t, "pw", doc.Users[0].PasswordHash)
		assert.Contains(t, doc.Users[0].PasswordHash, "$argon2id$")
		return nil
	}))
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "bob@x", Password: "secret", Name: "Bob", Role: "homemaker", KitchenName: "Bob's"})
	require.NoError(t, err)

	cases := map[string]LoginRequest{
		"unknown email":  {Email: "nobody@x", Password: "secret", Role: "homemaker"},
		"wrong password": {Email: "bob@x", Password: "nope", Role: "homemaker"},
		"wrong role":     {Email: "bob@x", Password: "secret", Role: "customer"},
		"unknown role":   {Email: "bob@x", Password: "secret", Role: "admin"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(ctx, req)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
			assert.Equal(t, InvalidCredentialsMessage, typed.Message())
		})
	}
}

func TestRegisterRoleProfiles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	home, err := svc.Register(ctx, RegisterRequest{
		Email: "h@x", Password: "pw", Name: "Hana", Role: "homemaker", KitchenName: "Hana's Kitchen",
	})
	require.NoError(t, err)
	assert.Equal(t, "h1", home.User.ID)
	require.NotNil(t, home.User.KitchenDetails)
	assert.Equal(t, "Hana's Kitchen", home.User.KitchenDetails.KitchenName)
	require.NotNil(t, home.User.IsActive)
	assert.True(t, *home.User.IsActive)

	rider, err := svc.Register(ctx, RegisterRequest{
		Email: "d@x", Password: "pw", Name: "Dev", Role: "delivery",
		VehicleDetails: &models.VehicleDetails{Type: "Bike", RegistrationNumber: "MH12"},
	})
	require.NoError(t, err)
	assert.Equal(t, "d1", rider.User.ID)
	require.NotNil(t, rider.User.VehicleDetails)
	assert.Nil(t, rider.User.KitchenDetails)
}

func TestRegisterRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "alice@x", Password: "pw", Name: "Alice", Role: "customer"})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  RegisterRequest
		code pkgerrors.Code
	}{
		{"duplicate email ignores case", RegisterRequest{Email: "ALICE@x", Password: "pw", Name: "A2", Role: "customer"}, pkgerrors.CodeValidation},
		{"unknown role", RegisterRequest{Email: "z@x", Password: "pw", Name: "Z", Role: "admin"}, pkgerrors.CodePrecondition},
		{"customer with kitchen", RegisterRequest{Email: "k@x", Password: "pw", Name: "K", Role: "customer", KitchenDetails: &models.KitchenDetails{KitchenName: "K"}}, pkgerrors.CodeValidation},
		{"delivery with kitchen", RegisterRequest{Email: "k2@x", Password: "pw", Name: "K", Role: "delivery", KitchenName: "K"}, pkgerrors.CodeValidation},
		{"homemaker with vehicle", RegisterRequest{Email: "v@x", Password: "pw", Name: "V", Role: "homemaker", VehicleDetails: &models.VehicleDetails{Type: "Bike"}}, pkgerrors.CodeValidation},
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "pw", Name: "N", Role: "customer"}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}
