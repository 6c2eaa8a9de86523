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

func TestAddReviewEligibility(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &ReviewService{Repo: repo.New(db)}
	ctx := context.Background()

	alice := testutil.User(t, db, "alice@example.com", models.RoleCustomer)
	bob := testutil.User(t, db, "bob@example.com", models.RoleCustomer)
	bread := testutil.Product(t, db, "Bread", "3.00", 10)
	cake := testutil.Product(t, db, "Cake", "12.00", 10)

	delivered := testutil.Order(t, db, alice.ID, models.StatusDelivered, bread)
	pending := testutil.Order(t, db, alice.ID, models.StatusPending, cake)

	cases := []struct {
		name    string
		userID  uint
		in      ReviewInput
		wantErr error
	}{
		{"rating too low", alice.ID, ReviewInput{ProductID: bread.ID, OrderID: delivered.ID, Rating: 0}, apperr.ErrValidation},
		{"rating too high", alice.ID, ReviewInput{ProductID: bread.ID, OrderID: delivered.ID, Rating: 6}, apperr.ErrValidation},
		{"order not delivered", alice.ID, ReviewInput{ProductID: cake.ID, OrderID: pending.ID, Rating: 4}, ErrReviewNotAllowed},
		{"product not in order", alice.ID, ReviewInput{ProductID: cake.ID, OrderID: delivered.ID, Rating: 4}, ErrReviewNotAllowed},
		{"someone else's order", bob.ID, ReviewInput{ProductID: bread.ID, OrderID: delivered.ID, Rating: 4}, ErrReviewNotAllowed},
		{"no eligible order", bob.ID, ReviewInput{ProductID: bread.ID, Rating: 4}, ErrReviewNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddReview(ctx, tc.userID, tc.in)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	rv, err := svc.AddReview(ctx, alice.ID, ReviewInput{ProductID: bread.ID, OrderID: delivered.ID, Rating: 5, Comment: " lovely "})
	require.NoError(t, err)
	require.Equal(t, "lovely", rv.Comment)

	_, err = svc.AddReview(ctx, alice.ID, ReviewInput{ProductID: bread.ID, OrderID: delivered.ID, Rating: 3})
	require.ErrorIs(t, err, ErrAlreadyReviewed)
	require.Equal(t, 409, apperr.StatusOf(err))

	// without an order id the only delivered order is already reviewed
	_, err = svc.AddReview(ctx, alice.ID, ReviewInput{ProductID: bread.ID, Rating: 3})
	require.ErrorIs(t, err, ErrAlreadyReviewed)
	require.Equal(t, 409, apperr.StatusOf(err))
}

func TestAddReviewPicksEligibleOrder(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &ReviewService{Repo: repo.New(db)}
	ctx := context.Background()

	u := testutil.User(t, db, "u@example.com", models.RoleCustomer)
	p := testutil.Product(t, db, "Pie", "8.00", 10)
	first := testutil.Order(t, db, u.ID, models.StatusDelivered, p)
	second := testutil.Order(t, db, u.ID, models.StatusDelivered, p)

	el, err := svc.CanReview(ctx, u.ID, p.ID)
	require.NoError(t, err)
	require.True(t, el.CanReview)

	rv, err := svc.AddReview(ctx, u.ID, ReviewInput{ProductID: p.ID, Rating: 4})
	require.NoError(t, err)
	require.Contains(t, []uint{first.ID, second.ID}, rv.OrderID)

	rv2, err := svc.AddReview(ctx, u.ID, ReviewInput{ProductID: p.ID, Rating: 2})
	require.NoError(t, err)
	require.NotEqual(t, rv.OrderID, rv2.OrderID)

	el, err = svc.CanReview(ctx, u.ID, p.ID)
	require.NoError(t, err)
	require.False(t, el.CanReview)

	_, err = svc.AddReview(ctx, u.ID, ReviewInput{ProductID: p.ID, Rating: 5})
	require.ErrorIs(t, err, ErrAlreadyReviewed)

	rating, err := svc.Rating(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), rating.Count)
	require.InDelta(t, 3.0, rating.Average, 0.001)

	page, err := svc.ListByProduct(ctx, p.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, 2, page.Pagination.TotalPages)

	mine, err := svc.ListMine(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
}
