// Package testutil holds fixtures shared by repo, service and handler tests.
package testutil

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery/internal/models"
	pkgdb "github.com/Skotchmaster/bakery/pkg/db"
)

// MemoryDSN is a private in-memory sqlite database that enforces foreign keys
// the way postgres does.
const MemoryDSN = "file::memory:?_pragma=foreign_keys(1)"

// NewDB opens an isolated in-memory sqlite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	// one connection per handle keeps each :memory: database private to the test
	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return db
}

func User(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Product(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: "bread",
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func CartLine(t *testing.T, db *gorm.DB, userID, productID uint, qty int) {
	t.Helper()
	require.NoError(t, db.Omit("Product").Create(&models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}).Error)
}

// Order inserts an order with one line per product at its current price.
func Order(t *testing.T, db *gorm.DB, userID uint, status models.OrderStatus, products ...*models.Product) *models.Order {
	t.Helper()
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(products))
	for _, p := range products {
		items = append(items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    1,
			Price:       p.Price,
			Subtotal:    p.Price,
		})
		total = total.Add(p.Price)
	}
	o := &models.Order{UserID: userID, TotalAmount: total, Status: status}
	require.NoError(t, db.Omit("Customer", "Items").Create(o).Error)
	for i := range items {
		items[i].OrderID = o.ID
	}
	if len(items) > 0 {
		require.NoError(t, db.Create(&items).Error)
	}
	return o
}
