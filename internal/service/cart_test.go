package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/repo"
	"github.com/Skotchmaster/bakery/internal/testutil"
	"github.com/Skotchmaster/bakery/pkg/apperr"
)

func TestCartAddMergesAndChecksStock(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &CartService{Repo: repo.New(db)}
	ctx := context.Background()
	u := testutil.User(t, db, "c@example.com", models.RoleCustomer)
	p := testutil.Product(t, db, "Sourdough", "6.00", 5)

	item, err := svc.Add(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, item.Quantity)

	item, err = svc.Add(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 5, item.Quantity)

	_, err = svc.Add(ctx, u.ID, p.ID, 1)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, "Not enough stock for Sourdough. Only 5 available", apperr.From(err).Message)

	_, err = svc.Add(ctx, u.ID, p.ID, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.Add(ctx, u.ID, 999, 1)
	require.ErrorIs(t, err, ErrProductNotFound)

	cart, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, "30.00", cart.Total.StringFixed(2))
}

func TestCartOutOfStock(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &CartService{Repo: repo.New(db)}
	u := testutil.User(t, db, "c@example.com", models.RoleCustomer)
	p := testutil.Product(t, db, "Croissant", "2.00", 0)

	_, err := svc.Add(context.Background(), u.ID, p.ID, 1)
	require.ErrorIs(t, err, ErrOutOfStock)
}

func TestCartUpdateRemoveClear(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &CartService{Repo: repo.New(db)}
	ctx := context.Background()
	u := testutil.User(t, db, "c@example.com", models.RoleCustomer)
	a := testutil.Product(t, db, "Bagel", "1.00", 4)
	b := testutil.Product(t, db, "Muffin", "2.00", 4)

	_, err := svc.Update(ctx, u.ID, a.ID, 2)
	require.ErrorIs(t, err, ErrCartItemNotFound)

	testutil.CartLine(t, db, u.ID, a.ID, 1)
	testutil.CartLine(t, db, u.ID, b.ID, 1)

	item, err := svc.Update(ctx, u.ID, a.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, item.Quantity)
	_, err = svc.Update(ctx, u.ID, a.ID, 5)
	require.ErrorIs(t, err, ErrInsufficientStock)

	require.NoError(t, svc.Remove(ctx, u.ID, a.ID))
	require.ErrorIs(t, svc.Remove(ctx, u.ID, a.ID), ErrCartItemNotFound)

	n, err := svc.Clear(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	cart, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
	require.True(t, cart.Total.IsZero())
}
