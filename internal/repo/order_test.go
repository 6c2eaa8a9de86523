package repo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/testutil"
)

func TestCreateOrderWritesHeaderAndLines(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.User(t, db, "buyer@example.com", models.RoleCustomer)
	p := testutil.Product(t, db, "Brioche", "4.50", 3)

	o := &models.Order{UserID: u.ID, TotalAmount: decimal.RequireFromString("9.00"), Status: models.StatusPending}
	items := []models.OrderItem{{
		ProductID: p.ID, ProductName: p.Name, Quantity: 2,
		Price: p.Price, Subtotal: decimal.RequireFromString("9.00"),
	}}
	require.NoError(t, r.CreateOrder(ctx, o, items))
	require.NotZero(t, o.ID)

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, got.Status)
	require.Nil(t, got.DriverID)
	require.True(t, decimal.RequireFromString("9").Equal(got.TotalAmount))
	require.Len(t, got.Items, 1)
	require.Equal(t, o.ID, got.Items[0].OrderID)
	require.True(t, decimal.RequireFromString("4.5").Equal(got.Items[0].Price))
}

func TestCreateOrderRollsBackOnLineFailure(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.User(t, db, "buyer@example.com", models.RoleCustomer)
	p := testutil.Product(t, db, "Brioche", "4.50", 3)

	line := models.OrderItem{ProductID: p.ID, ProductName: p.Name, Quantity: 1, Price: p.Price, Subtotal: p.Price}
	o := &models.Order{UserID: u.ID, TotalAmount: p.Price, Status: models.StatusPending}
	// duplicate (order_id, product_id) violates the unique index
	err := r.CreateOrder(ctx, o, []models.OrderItem{line, line})
	require.Error(t, err)

	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestGetOrderMissing(t *testing.T) {
	r := New(testutil.NewDB(t))
	o, err := r.GetOrder(context.Background(), 123)
	require.NoError(t, err)
	require.Nil(t, o)
}

func TestListOrdersPaginationSortAndFilter(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.User(t, db, "list@example.com", models.RoleCustomer)
	other := testutil.User(t, db, "other@example.com", models.RoleCustomer)
	p := testutil.Product(t, db, "Scone", "1.00", 100)

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	statuses := []models.OrderStatus{
		models.StatusPending, models.StatusDelivered, models.StatusPending,
		models.StatusCancelled, models.StatusPending,
	}
	for i, st := range statuses {
		o := testutil.Order(t, db, u.ID, st, p)
		require.NoError(t, db.Model(o).Updates(map[string]any{
			"created_at":   base.Add(time.Duration(i) * time.Hour),
			"total_amount": decimal.NewFromInt(int64(10 * (i + 1))),
		}).Error)
	}
	testutil.Order(t, db, other.ID, models.StatusPending, p)

	orders, total, err := r.ListOrders(ctx, models.OrderQuery{UserID: u.ID, Page: 1, Limit: 2, Desc: true})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, orders, 2)
	require.True(t, orders[0].CreatedAt.After(orders[1].CreatedAt))

	orders, _, err = r.ListOrders(ctx, models.OrderQuery{UserID: u.ID, Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	orders, total, err = r.ListOrders(ctx, models.OrderQuery{UserID: u.ID, Status: "pending", SortBy: "total_amount"})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	for i := 1; i < len(orders); i++ {
		require.True(t, orders[i-1].TotalAmount.LessThan(orders[i].TotalAmount))
		require.Equal(t, models.StatusPending, orders[i].Status)
	}

	// unknown sort columns fall back to created_at instead of reaching SQL
	_, total, err = r.ListOrders(ctx, models.OrderQuery{SortBy: "id; DROP TABLE orders"})
	require.NoError(t, err)
	require.Equal(t, int64(6), total)

	_, total, err = r.ListOrders(ctx, models.OrderQuery{Status: "On The Way"})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestStatusAndDriverUpdates(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.User(t, db, "cust@example.com", models.RoleCustomer)
	d1 := testutil.User(t, db, "d1@example.com", models.RoleDriver)
	d2 := testutil.User(t, db, "d2@example.com", models.RoleDriver)
	p := testutil.Product(t, db, "Pie", "8.00", 5)
	o := testutil.Order(t, db, u.ID, models.StatusPending, p)

	ok, err := r.SetStatus(ctx, o.ID, models.StatusPreparing)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.SetStatus(ctx, o.ID, models.StatusPreparing)
	require.NoError(t, err)
	require.True(t, ok, "re-setting the same status still matches the row")
	ok, err = r.SetStatus(ctx, 999, models.StatusReady)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = r.SetDriver(ctx, o.ID, d1.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.SetDeliveryStatus(ctx, o.ID, d2.ID, models.StatusDelivered)
	require.NoError(t, err)
	require.False(t, ok, "other driver must not match")

	ok, err = r.SetDeliveryStatus(ctx, o.ID, d1.ID, models.StatusOnTheWay)
	require.NoError(t, err)
	require.True(t, ok)

	orders, total, err := r.ListOrders(ctx, models.OrderQuery{DriverID: d1.ID, WithCustomer: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "cust@example.com", orders[0].Customer.Email)

	email, err := r.CustomerEmail(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, "cust@example.com", email)

	n, err := r.UnassignDriverFromAll(ctx, d1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Nil(t, got.DriverID)
	require.Equal(t, models.StatusPending, got.Status)
}
