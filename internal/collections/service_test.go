package collections

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/dibba-app/dibba-backend/pkg/db"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = visibility.Caller{UserID: "c1", Role: enums.RoleCustomer}
	carol = visibility.Caller{UserID: "c2", Role: enums.RoleCustomer}
	dan   = visibility.Caller{UserID: "d1", Role: enums.RoleDelivery}
)

func newTestService(t *testing.T) Service {
	t.Helper()
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "db.json"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.WithTx(context.Background(), func(doc *models.Document) error {
		doc.Users = []models.User{
			{ID: "c1", Name: "Alice", Role: enums.RoleCustomer, Email: "alice@x", PasswordHash: "hash"},
			{ID: "c2", Name: "Carol", Role: enums.RoleCustomer, Email: "carol@x", PasswordHash: "hash"},
			{ID: "h1", Name: "Bob", Role: enums.RoleHomemaker, Email: "bob@x", PasswordHash: "hash",
				BankDetails: &models.BankDetails{AccountNumber: "123456789", IFSCCode: "HDFC0001", AccountHolderName: "Bob"}},
		}
		doc.Meals = []models.Meal{
			{ID: "m1", Name: "Dal", Price: 100, HomemakerID: "h1", IsAvailable: true},
			{ID: "m2", Name: "Roti", Price: 15, HomemakerID: "h1", IsAvailable: false},
			{ID: "m3", Name: "Kheer", Price: 60, HomemakerID: "h1", IsAvailable: true},
		}
		doc.Orders = []models.Order{
			{ID: "o1", CustomerID: "c1", HomemakerID: "h1", Status: enums.OrderStatusDelivered, DeliveryPartnerID: "d2"},
			{ID: "o2", CustomerID: "c2", HomemakerID: "h1", Status: enums.OrderStatusReadyForPickup},
		}
		doc.Carts = []models.Cart{{UserID: "c1"}, {UserID: "c2"}}
		doc.Payouts = []models.Payout{{ID: "p1", UserID: "h1", Amount: 500}}
		doc.Categories = []models.Category{{ID: "cat1", Name: "Main"}, {ID: "cat2", Name: "Dessert"}}
		return nil
	}))
	svc, err := NewService(store)
	require.NoError(t, err)
	return svc
}

func ids(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		if id, ok := r["id"].(string); ok {
			out = append(out, id)
		} else if uid, ok := r["userId"].(string); ok {
			out = append(out, uid)
		}
	}
	return out
}

func TestListEqualityFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	homemakers, err := svc.List(ctx, alice, "users", url.Values{"role": {"homemaker"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"h1"}, ids(homemakers))

	available, err := svc.List(ctx, alice, "meals", url.Values{"isAvailable": {"true"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m3"}, ids(available))

	priced, err := svc.List(ctx, alice, "meals", url.Values{"price": {"15"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, ids(priced))

	either, err := svc.List(ctx, alice, "categories", url.Values{"name": {"Main", "Dessert"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat1", "cat2"}, ids(either))

	paged, err := svc.List(ctx, alice, "meals", url.Values{"_page": {"2"}, "_limit": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"m3"}, ids(paged))
}

func TestUsersNeverExposePasswordHash(t *testing.T) {
	svc := newTestService(t)

	all, err := svc.List(context.Background(), alice, "users", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, rec := range all {
		assert.NotContains(t, rec, "passwordHash")
	}

	one, err := svc.Get(context.Background(), alice, "users", "h1")
	require.NoError(t, err)
	assert.NotContains(t, one, "passwordHash")
	assert.NotContains(t, one, "bankDetails")
	assert.NotContains(t, one, "email")
}

func TestUsersShowPrivateFieldsOnlyToOwner(t *testing.T) {
	svc := newTestService(t)
	bob := visibility.Caller{UserID: "h1", Role: enums.RoleHomemaker}

	self, err := svc.Get(context.Background(), bob, "users", "h1")
	require.NoError(t, err)
	assert.Contains(t, self, "bankDetails")
	assert.Equal(t, "bob@x", self["email"])

	all, err := svc.List(context.Background(), alice, "users", nil)
	require.NoError(t, err)
	for _, rec := range all {
		assert.NotContains(t, rec, "bankDetails")
		if rec["id"] != "c1" {
			assert.NotContains(t, rec, "email")
		}
	}
}

func TestRowVisibility(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	orders, err := svc.List(ctx, alice, "orders", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, ids(orders))

	riderOrders, err := svc.List(ctx, dan, "orders", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"o2"}, ids(riderOrders), "delivery sees unclaimed orders only")

	carts, err := svc.List(ctx, carol, "carts", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, ids(carts))

	payouts, err := svc.List(ctx, alice, "payouts", nil)
	require.NoError(t, err)
	assert.Empty(t, payouts)

	_, err = svc.Get(ctx, carol, "orders", "o1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUnknownResource(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.List(context.Background(), alice, "secrets", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Get(context.Background(), alice, "secrets", "1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestBadPaging(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.List(context.Background(), alice, "meals", url.Values{"_limit": {"zero"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
