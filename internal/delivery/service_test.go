package delivery

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dibba-app/dibba-backend/internal/orders"
	"github.com/dibba-app/dibba-backend/pkg/db"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	dan      = visibility.Caller{UserID: "d1", Role: enums.RoleDelivery}
	dev      = visibility.Caller{UserID: "d2", Role: enums.RoleDelivery}
)

func readyOrder(id string, at time.Time) models.Order {
	return models.Order{
		ID:            id,
		CustomerID:    "c1",
		HomemakerID:   "h1",
		Items:         []models.OrderItem{{MealID: "m1", Quantity: 2, Price: 100}},
		Subtotal:      200,
		DeliveryFee:   30,
		TotalAmount:   230,
		Status:        enums.OrderStatusReadyForPickup,
		OrderDate:     at,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusPending,
		Timeline:      []models.TimelineEntry{{Status: enums.OrderStatusReadyForPickup, Timestamp: at}},
	}
}

func newTestService(t *testing.T) (Service, *db.Store) {
	t.Helper()
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "db.json"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.WithTx(context.Background(), func(doc *models.Document) error {
		doc.Users = []models.User{
			{ID: "c1", Name: "Alice", Role: enums.RoleCustomer, Email: "alice@x", Phone: "98200"},
			{ID: "h1", Name: "Bob", Role: enums.RoleHomemaker, Email: "bob@x",
				Address: &models.Address{Street: "2 Hill Rd", City: "Pune", PostalCode: "411002"}},
			{ID: "d1", Name: "Dan", Role: enums.RoleDelivery, Email: "dan@x"},
			{ID: "d2", Name: "Dev", Role: enums.RoleDelivery, Email: "dev@x"},
		}
		claimed := readyOrder("o3", fixedNow.Add(-time.Hour))
		claimed.Status = enums.OrderStatusOutForDelivery
		claimed.DeliveryPartnerID = "d2"
		preparing := readyOrder("o4", fixedNow.Add(-time.Hour))
		preparing.Status = enums.OrderStatusPreparing
		doc.Orders = []models.Order{
			readyOrder("o2", fixedNow.Add(-10*time.Minute)),
			readyOrder("o1", fixedNow.Add(-30*time.Minute)),
			claimed,
			preparing,
		}
		return nil
	}))
	ordersSvc, err := orders.NewService(store, func() time.Time { return fixedNow })
	require.NoError(t, err)
	svc, err := NewService(store, ordersSvc)
	require.NoError(t, err)
	return svc, store
}

func TestAvailableListsUnclaimedReadyOrders(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Available(context.Background(), dan)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "o1", got[0].ID, "oldest first")
	assert.Equal(t, "o2", got[1].ID)

	first := got[0]
	require.NotNil(t, first.PickupAddress)
	assert.Equal(t, "2 Hill Rd", first.PickupAddress.Street)
	assert.Equal(t, Contact{Name: "Alice", Phone: "98200"}, first.CustomerContact)
	assert.Equal(t, EarningsEstimate{Base: 30, PerKm: 10, Distance: 0, Estimated: 30}, first.Earnings)
	require.NotNil(t, first.HomemakerName)
	assert.Equal(t, "Bob", *first.HomemakerName)
}

func TestAvailableRequiresDeliveryRole(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Available(context.Background(), visibility.Caller{UserID: "c1", Role: enums.RoleCustomer})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestCurrent(t *testing.T) {
	svc, _ := newTestService(t)

	none, err := svc.Current(context.Background(), dan)
	require.NoError(t, err)
	assert.Nil(t, none)

	cur, err := svc.Current(context.Background(), dev)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "o3", cur.ID)
}

func TestClaimAndDeliverRecordsDistance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	claimed, err := svc.UpdateStatus(ctx, dan, "o1", StatusInput{Status: "Out for Delivery"})
	require.NoError(t, err)
	assert.Equal(t, "d1", claimed.DeliveryPartnerID)
	require.NotNil(t, claimed.DeliveryStartTime)

	distance := 4.5
	delivered, err := svc.UpdateStatus(ctx, dan, "o1", StatusInput{Status: "Delivered", Distance: &distance})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.Route)
	assert.Equal(t, 4.5, delivered.Route.Distance)
	assert.Equal(t, enums.PaymentStatusCompleted, delivered.PaymentStatus)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.UpdateStatus(context.Background(), dan, "o1", StatusInput{Status: "Teleported"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestConcurrentClaimsHaveOneWinner(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, caller := range []visibility.Caller{dan, dev} {
		wg.Add(1)
		go func(i int, caller visibility.Caller) {
			defer wg.Done()
			_, errs[i] = svc.UpdateStatus(ctx, caller, "o2", StatusInput{Status: "Out for Delivery"})
		}(i, caller)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	require.NoError(t, store.Read(ctx, func(doc *models.Document) error {
		order, ok := doc.OrderByID("o2")
		require.True(t, ok)
		assert.Len(t, order.Timeline, 2)
		return nil
	}))
}
