package ordering

import (
	"context"
	"testing"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	bob    *auth.Principal
	alice  *auth.Principal
	chef   *auth.Principal
	waiter *auth.Principal
	editor *auth.Principal
	burger *models.MenuItem
	fries  *models.MenuItem
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	return &fixture{
		db:     db,
		bob:    auth.NewPrincipal(testutil.CreateUser(t, db, "bob", models.RoleCustomer)),
		alice:  auth.NewPrincipal(testutil.CreateUser(t, db, "alice", models.RoleCustomer)),
		chef:   auth.NewPrincipal(testutil.CreateUser(t, db, "carl", models.RoleChef)),
		waiter: auth.NewPrincipal(testutil.CreateUser(t, db, "wendy", models.RoleWaiter)),
		editor: auth.NewPrincipal(testutil.CreateUser(t, db, "ed", models.RoleEditor)),
		burger: testutil.CreateMenuItem(t, db, "Burger", "9.00"),
		fries:  testutil.CreateMenuItem(t, db, "Fries", "3.00"),
	}
}

func (f *fixture) order(t *testing.T, p *auth.Principal) *models.Order {
	t.Helper()
	o, err := Create(context.Background(), f.db, p, CreateInput{
		Items: []ItemInput{{MenuItemID: f.burger.ID, Quantity: 1}},
	}, time.Now())
	require.NoError(t, err)
	return o
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestOrderLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	o, err := Create(ctx, f.db, f.bob, CreateInput{Items: []ItemInput{
		{MenuItemID: f.burger.ID, Quantity: 2},
		{MenuItemID: f.fries.ID, Quantity: 1},
	}}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "21.00", o.Total().StringFixed(2))
	assert.Equal(t, models.OrderPending, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, *f.bob.CustomerID, *o.CustomerID)

	o, err = UpdateStatus(ctx, f.db, f.chef, o.ID, models.OrderPreparing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, o.Status)

	o, err = UpdateStatus(ctx, f.db, f.waiter, o.ID, models.OrderPaid)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, o.Status)

	_, err = UpdateStatus(ctx, f.db, f.chef, o.ID, models.OrderPreparing)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err := Get(ctx, f.db, f.bob, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, got.Status)

	var logs []models.AuditLog
	require.NoError(t, f.db.Where("entity_type = ? AND entity_id = ?", "order", o.ID).Find(&logs).Error)
	assert.Len(t, logs, 2)
}

func TestTotalFollowsPriceChanges(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.order(t, f.bob)
	assert.Equal(t, "9.00", o.Total().StringFixed(2))

	require.NoError(t, f.db.Model(f.burger).Update("price", decimal.RequireFromString("10.50")).Error)
	got, err := Get(ctx, f.db, f.bob, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.50", got.Total().StringFixed(2))
}

func TestUpdateStatusRejectsUnknownTarget(t *testing.T) {
	f := setup(t)
	o := f.order(t, f.bob)

	for _, target := range []models.OrderStatus{"pending", "shipped", ""} {
		_, err := UpdateStatus(context.Background(), f.db, f.chef, o.ID, target)
		assert.True(t, apperr.Is(err, apperr.KindValidation), string(target))
	}

	var stored models.Order
	require.NoError(t, f.db.First(&stored, o.ID).Error)
	assert.Equal(t, models.OrderPending, stored.Status)
}

func TestUpdateStatusRequiresStaff(t *testing.T) {
	f := setup(t)
	o := f.order(t, f.bob)

	_, err := UpdateStatus(context.Background(), f.db, f.bob, o.ID, models.OrderPreparing)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	_, err = UpdateStatus(context.Background(), f.db, f.editor, o.ID, models.OrderPreparing)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := Create(ctx, f.db, f.bob, CreateInput{}, time.Now())
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Create(ctx, f.db, f.bob, CreateInput{Items: []ItemInput{{MenuItemID: f.burger.ID, Quantity: 0}}}, time.Now())
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Create(ctx, f.db, f.bob, CreateInput{Items: []ItemInput{{MenuItemID: 999, Quantity: 1}}}, time.Now())
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, f.db.Model(f.fries).Update("available", false).Error)
	_, err = Create(ctx, f.db, f.bob, CreateInput{Items: []ItemInput{
		{MenuItemID: f.burger.ID, Quantity: 1},
		{MenuItemID: f.fries.ID, Quantity: 1},
	}}, time.Now())
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	table := uint(999)
	_, err = Create(ctx, f.db, f.bob, CreateInput{TableID: &table, Items: []ItemInput{{MenuItemID: f.burger.ID, Quantity: 1}}}, time.Now())
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Create(ctx, f.db, f.chef, CreateInput{Items: []ItemInput{{MenuItemID: f.burger.ID, Quantity: 1}}}, time.Now())
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	assert.Zero(t, countOrders(t, f.db))
	orders, err := List(ctx, f.db, f.bob, "")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateWithDiscount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateDiscount(t, f.db, "SAVE10", 10, 1)
	in := CreateInput{
		DiscountCode: "save10",
		Items:        []ItemInput{{MenuItemID: f.burger.ID, Quantity: 2}, {MenuItemID: f.fries.ID, Quantity: 1}},
	}

	o, err := Create(ctx, f.db, f.bob, in, time.Now())
	require.NoError(t, err)
	require.NotNil(t, o.Discount)
	assert.Equal(t, "21.00", o.Total().StringFixed(2))
	assert.Equal(t, "18.90", o.Payable().StringFixed(2))

	// The only use is gone; the second order rolls back entirely.
	_, err = Create(ctx, f.db, f.alice, in, time.Now())
	assert.Error(t, err)
	assert.Equal(t, int64(1), countOrders(t, f.db))

	var items int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Equal(t, int64(2), items)

	var d models.DiscountCode
	require.NoError(t, f.db.Where("code = ?", "SAVE10").First(&d).Error)
	assert.Equal(t, 1, d.UsedCount)
}

func TestListScoping(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	mine := f.order(t, f.bob)
	f.order(t, f.alice)
	latest := f.order(t, f.bob)

	orders, err := List(ctx, f.db, f.bob, "")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, latest.ID, orders[0].ID)
	assert.Equal(t, mine.ID, orders[1].ID)
	for _, o := range orders {
		assert.Equal(t, *f.bob.CustomerID, *o.CustomerID)
	}

	orders, err = List(ctx, f.db, f.chef, "")
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	orders, err = List(ctx, f.db, f.editor, "")
	require.NoError(t, err)
	assert.Empty(t, orders)

	orders, err = List(ctx, f.db, nil, "")
	require.NoError(t, err)
	assert.Empty(t, orders)

	items, err := ListItems(ctx, f.db, f.alice)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	items, err = ListItems(ctx, f.db, f.waiter)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestObjectAccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.order(t, f.bob)

	_, err := Get(ctx, f.db, f.alice, o.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	_, err = Get(ctx, f.db, f.alice, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = Get(ctx, f.db, f.waiter, o.ID)
	assert.NoError(t, err)

	_, err = GetItem(ctx, f.db, f.alice, o.Items[0].ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	it, err := GetItem(ctx, f.db, f.bob, o.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Burger", it.MenuItem.Name)
}

func TestCancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.order(t, f.bob)

	_, err := Cancel(ctx, f.db, f.alice, o.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	got, err := Cancel(ctx, f.db, f.bob, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)

	_, err = Cancel(ctx, f.db, f.waiter, o.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = UpdateStatus(ctx, f.db, f.waiter, o.ID, models.OrderPreparing)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestStaleTransitionConflicts(t *testing.T) {
	f := setup(t)
	o := f.order(t, f.bob)

	// A reader that loaded the order before someone else moved it.
	stale := models.Order{ID: o.ID, Status: models.OrderPending}
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", o.ID).Update("status", models.OrderReady).Error)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return move(tx, f.chef, &stale, models.OrderPreparing)
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestSetEstimate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.order(t, f.bob)
	at := time.Now().Add(20 * time.Minute).Truncate(time.Second)

	_, err := SetEstimate(ctx, f.db, f.waiter, o.ID, at)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	got, err := SetEstimate(ctx, f.db, f.chef, o.ID, at)
	require.NoError(t, err)
	require.NotNil(t, got.EstimatedTime)
	assert.True(t, at.Equal(*got.EstimatedTime))
}

func TestDeleteCascades(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.order(t, f.bob)
	admin := auth.NewPrincipal(testutil.CreateUser(t, f.db, "root", models.RoleAdmin))

	inv := models.Invoice{Number: "inv-1", OrderID: o.ID, CustomerID: o.CustomerID, Amount: o.Payable(), Status: models.InvoiceIssued, IssuedAt: time.Now()}
	require.NoError(t, f.db.Omit("Order", "Customer").Create(&inv).Error)
	require.NoError(t, f.db.Omit("Invoice").Create(&models.Payment{InvoiceID: inv.ID, Status: models.PaymentPending}).Error)

	assert.True(t, apperr.Is(Delete(ctx, f.db, f.waiter, o.ID), apperr.KindAuthorization))
	require.NoError(t, Delete(ctx, f.db, admin, o.ID))
	assert.True(t, apperr.Is(Delete(ctx, f.db, admin, o.ID), apperr.KindNotFound))

	for _, m := range []any{&models.Order{}, &models.OrderItem{}, &models.Invoice{}, &models.Payment{}} {
		var n int64
		require.NoError(t, f.db.Model(m).Count(&n).Error)
		assert.Zero(t, n)
	}
}
