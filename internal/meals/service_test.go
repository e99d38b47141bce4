package meals

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dibba-app/dibba-backend/pkg/db"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/pagination"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	bob      = visibility.Caller{UserID: "h1", Role: enums.RoleHomemaker}
	hana     = visibility.Caller{UserID: "h2", Role: enums.RoleHomemaker}
	alice    = visibility.Caller{UserID: "c1", Role: enums.RoleCustomer}
)

func newTestService(t *testing.T) (Service, *db.Store) {
	t.Helper()
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "db.json"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.WithTx(context.Background(), func(doc *models.Document) error {
		doc.Users = []models.User{
			{ID: "c1", Name: "Alice", Role: enums.RoleCustomer, Email: "alice@x"},
			{ID: "h1", Name: "Bob", Role: enums.RoleHomemaker, Email: "bob@x"},
			{ID: "h2", Name: "Hana", Role: enums.RoleHomemaker, Email: "hana@x"},
		}
		doc.Meals = []models.Meal{
			{ID: "m1", Name: "Dal Tadka", Description: "Yellow lentils", Price: 100, Category: "Main", Dietary: enums.DietaryVeg, HomemakerID: "h1", IsAvailable: true},
			{ID: "m2", Name: "Chicken Curry", Price: 220, Category: "Main", Dietary: enums.DietaryNonVeg, HomemakerID: "h1", IsAvailable: false},
			{ID: "m3", Name: "Kheer", Description: "Rice pudding with dal-free milk", Price: 60, Category: "Dessert", Dietary: enums.DietaryVeg, HomemakerID: "h2", IsAvailable: true},
		}
		return nil
	}))
	svc, err := NewService(store, func() time.Time { return fixedNow })
	require.NoError(t, err)
	return svc, store
}

func ptr[T any](v T) *T { return &v }

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	veg := enums.DietaryVeg

	cases := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all", ListFilter{}, []string{"m1", "m2", "m3"}},
		{"by homemaker", ListFilter{HomemakerID: "h1"}, []string{"m1", "m2"}},
		{"by category ignores case", ListFilter{Category: "dessert"}, []string{"m3"}},
		{"by dietary", ListFilter{Dietary: &veg}, []string{"m1", "m3"}},
		{"available only", ListFilter{IsAvailable: ptr(true)}, []string{"m1", "m3"}},
		{"search name and description", ListFilter{Query: "DAL"}, []string{"m1", "m3"}},
		{"paged", ListFilter{Pagination: pagination.Params{Page: 2, Limit: 2}}, []string{"m3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), tc.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, v := range got {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestGetEnrichesHomemakerName(t *testing.T) {
	svc, _ := newTestService(t)

	view, err := svc.Get(context.Background(), "m3")
	require.NoError(t, err)
	require.NotNil(t, view.HomemakerName)
	assert.Equal(t, "Hana", *view.HomemakerName)

	_, err = svc.Get(context.Background(), "m404")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateAssignsOwnerFromCaller(t *testing.T) {
	svc, _ := newTestService(t)

	view, err := svc.Create(context.Background(), bob, CreateInput{Name: "Paneer", Price: ptr(180.0), Category: "Main", Dietary: "Veg"})
	require.NoError(t, err)
	assert.Equal(t, "m4", view.ID)
	assert.Equal(t, "h1", view.HomemakerID)
	assert.True(t, view.IsAvailable)
	assert.Equal(t, fixedNow, view.CreatedAt)

	_, err = svc.Create(context.Background(), alice, CreateInput{Name: "X", Price: ptr(1.0), Category: "Main"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestCreatePriceRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	free, err := svc.Create(ctx, bob, CreateInput{Name: "Sample", Price: ptr(0.0), Category: "Main"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, free.Price)

	_, err = svc.Create(ctx, bob, CreateInput{Name: "Missing", Category: "Main"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, bob, CreateInput{Name: "Negative", Price: ptr(-1.0), Category: "Main"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Update(ctx, bob, "m1", UpdateInput{Price: ptr(-5.0)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	zeroed, err := svc.Update(ctx, bob, "m1", UpdateInput{Price: ptr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, zeroed.Price)
}

func TestUpdateAndDeleteRequireOwner(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, hana, "m1", UpdateInput{Price: ptr(1.0)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, hana, "m1"), pkgerrors.CodeForbidden))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, alice, "m1"), pkgerrors.CodeForbidden))

	view, err := svc.Update(ctx, bob, "m1", UpdateInput{Price: ptr(120.0), IsAvailable: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 120.0, view.Price)
	assert.False(t, view.IsAvailable)
	assert.Equal(t, "h1", view.HomemakerID)

	require.NoError(t, svc.Delete(ctx, bob, "m1"))
	require.NoError(t, store.Read(ctx, func(doc *models.Document) error {
		_, ok := doc.MealByID("m1")
		assert.False(t, ok)
		assert.Len(t, doc.Meals, 2)
		return nil
	}))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, bob, "m1"), pkgerrors.CodeNotFound))
}

func TestUpdateRejectsBlankName(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), bob, "m1", UpdateInput{Name: ptr(" ")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
