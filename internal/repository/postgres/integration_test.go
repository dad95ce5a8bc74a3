//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/database"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := database.WaitForDB(cfg, 5, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	require.NoError(t, database.RunMigrations(ctx, db))

	return db
}

func createTestUser(t *testing.T, db *sqlx.DB) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:    uuid.New(),
		Email: uuid.NewString() + "@example.com",
		Name:  "Integration Shopper",
		Role:  "customer",
	}
	require.NoError(t, NewUserRepository(db).Upsert(context.Background(), u))
	return u
}

func createTestProduct(t *testing.T, db *sqlx.DB, inventory int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:      "Linen Shirt " + uuid.NewString()[:8],
		Category:  "shirts",
		Price:     decimal.RequireFromString("49.90"),
		Inventory: inventory,
	}
	require.NoError(t, NewProductRepository(db).Create(context.Background(), p))
	return p
}

func TestIntegration_ProductCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	small := decimal.RequireFromString("52.00")
	p := &domain.Product{
		Name:     "Wool Coat",
		Category: "outerwear",
		Price:    decimal.RequireFromString("189.00"),
		Variants: []domain.Variant{
			{Size: "S", Color: "camel", Inventory: 2, Price: &small},
			{Size: "M", Color: "camel", Inventory: 3},
		},
	}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, "Wool Coat", got.Name)
	assert.True(t, got.Price.Equal(p.Price))
	assert.Equal(t, 5, got.Inventory)
	assert.Len(t, got.Variants, 2)
}

func TestIntegration_ReserveInventoryOnce(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	buyer := createTestUser(t, db)
	p := createTestProduct(t, db, 4)
	orders := NewOrderRepository(db)

	o := &domain.Order{
		UserID: &buyer.ID,
		Items: domain.OrderItems{
			{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 3},
		},
		ShippingAddress: domain.ShippingAddress{FullName: "A", Line1: "1 Main St", City: "Lagos", Country: "NG"},
		Total:           p.Price.Mul(decimal.NewFromInt(3)),
		Currency:        "usd",
	}
	require.NoError(t, orders.Create(ctx, o))

	reserved, _, err := orders.ReserveInventory(ctx, o.ID, nil)
	require.NoError(t, err)
	assert.False(t, reserved, "unpaid orders are never reserved")

	paid, err := orders.MarkPaid(ctx, o.ID, domain.PaymentConfirmation{Reference: "pi_" + uuid.NewString(), PaidAt: time.Now().UTC()})
	require.NoError(t, err)
	require.True(t, paid)

	lines := []domain.StockLine{{ProductID: p.ID, Quantity: 3}}

	reserved, adjustments, err := orders.ReserveInventory(ctx, o.ID, lines)
	require.NoError(t, err)
	assert.True(t, reserved)
	require.Len(t, adjustments, 1)
	assert.Equal(t, 1, adjustments[0].Remaining)

	reserved, _, err = orders.ReserveInventory(ctx, o.ID, lines)
	require.NoError(t, err)
	assert.False(t, reserved)

	got, err := NewProductRepository(db).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Inventory)
}

func TestIntegration_MarkPaidIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p := createTestProduct(t, db, 10)
	email := "guest@example.com"
	orders := NewOrderRepository(db)

	o := &domain.Order{
		GuestEmail:      &email,
		Items:           domain.OrderItems{{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1}},
		ShippingAddress: domain.ShippingAddress{FullName: "B", Line1: "2 Main St", City: "Accra", Country: "GH"},
		Total:           p.Price,
		Currency:        "usd",
	}
	require.NoError(t, orders.Create(ctx, o))

	confirmation := domain.PaymentConfirmation{Reference: "pi_" + uuid.NewString(), PaidAt: time.Now().UTC()}

	first, err := orders.MarkPaid(ctx, o.ID, confirmation)
	require.NoError(t, err)
	second, err := orders.MarkPaid(ctx, o.ID, confirmation)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)

	got, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, domain.OrderConfirmed, got.Status)
}

func TestIntegration_RatingRecompute(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p := createTestProduct(t, db, 10)
	reviews := NewReviewRepository(db)

	for _, rating := range []int{5, 4, 3} {
		u := createTestUser(t, db)
		require.NoError(t, reviews.Upsert(ctx, &domain.Review{
			ProductID: p.ID,
			UserID:    u.ID,
			Rating:    rating,
		}))
	}

	agg, err := reviews.RecomputeProductRating(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, agg.ReviewCount)
	assert.InDelta(t, 4.0, agg.AverageRating, 0.01)

	got, err := NewProductRepository(db).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.ReviewCount)
	assert.InDelta(t, 4.0, got.AverageRating, 0.01)
}
