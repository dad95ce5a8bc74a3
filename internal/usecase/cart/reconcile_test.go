package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront/internal/domain"
)

func cartWith(items ...domain.CartItem) *domain.Cart {
	c := domain.NewCart(domain.GuestOwner("sess"))
	c.Items = items
	c.Recalculate()
	return c
}

func TestReconcile_ClampsQuantityToInventory(t *testing.T) {
	p := uuid.New()
	c := cartWith(domain.CartItem{ProductID: p, Name: "Tee", Quantity: 5, Price: decimal.NewFromInt(1000)})
	live := map[uuid.UUID]*domain.Product{p: {ID: p, Price: decimal.NewFromInt(1000), Inventory: 3}}

	res := Reconcile(c, live)

	assert.False(t, res.IsValid)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.True(t, c.Subtotal.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, 3, c.ItemCount)
	assert.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "quantity reduced")
	assert.Len(t, res.Updated, 1)
	assert.Empty(t, res.Removed)
}

func TestReconcile_RemovesMissingAndSoldOut(t *testing.T) {
	gone, soldOut, ok := uuid.New(), uuid.New(), uuid.New()
	c := cartWith(
		domain.CartItem{ProductID: gone, Name: "Gone", Quantity: 1, Price: decimal.NewFromInt(10)},
		domain.CartItem{ProductID: soldOut, Name: "Sold", Quantity: 1, Price: decimal.NewFromInt(10)},
		domain.CartItem{ProductID: ok, Name: "Ok", Quantity: 2, Price: decimal.NewFromInt(10)},
	)
	live := map[uuid.UUID]*domain.Product{
		soldOut: {ID: soldOut, Price: decimal.NewFromInt(10), Inventory: 0},
		ok:      {ID: ok, Price: decimal.NewFromInt(10), Inventory: 9},
	}

	res := Reconcile(c, live)

	assert.False(t, res.IsValid)
	assert.Len(t, res.Removed, 2)
	assert.Len(t, res.Errors, 2)
	require.Len(t, c.Items, 1)
	assert.Equal(t, ok, c.Items[0].ProductID)
	assert.True(t, c.Subtotal.Equal(decimal.NewFromInt(20)))
}

func TestReconcile_MissingVariantRemoved(t *testing.T) {
	p := uuid.New()
	v := uuid.New()
	c := cartWith(domain.CartItem{ProductID: p, VariantID: &v, Name: "Dress", Quantity: 1, Price: decimal.NewFromInt(80)})
	live := map[uuid.UUID]*domain.Product{p: {ID: p, Price: decimal.NewFromInt(80), Inventory: 5,
		Variants: []domain.Variant{{ID: uuid.New(), Inventory: 5}}}}

	res := Reconcile(c, live)

	assert.False(t, res.IsValid)
	assert.Empty(t, c.Items)
	assert.True(t, c.Subtotal.IsZero())
}

func TestReconcile_RepricesBeyondEpsilon(t *testing.T) {
	p, q := uuid.New(), uuid.New()
	v := uuid.New()
	override := decimal.RequireFromString("25.50")
	c := cartWith(
		domain.CartItem{ProductID: p, Name: "Cap", Quantity: 1, Price: decimal.RequireFromString("10.005")},
		domain.CartItem{ProductID: q, VariantID: &v, Name: "Belt", Quantity: 2, Price: decimal.NewFromInt(20)},
	)
	live := map[uuid.UUID]*domain.Product{
		p: {ID: p, Price: decimal.NewFromInt(10), Inventory: 4},
		q: {ID: q, Price: decimal.NewFromInt(20), Variants: []domain.Variant{{ID: v, Price: &override, Inventory: 4}}},
	}

	res := Reconcile(c, live)

	assert.False(t, res.IsValid)
	require.Len(t, res.Updated, 1)
	assert.Equal(t, q, res.Updated[0].ProductID)
	assert.True(t, c.Items[1].Price.Equal(override))
	assert.True(t, c.Items[0].Price.Equal(decimal.RequireFromString("10.005")))
	assert.True(t, c.Subtotal.Equal(decimal.RequireFromString("61.005")))
}

func TestReconcile_ValidCartUnchanged(t *testing.T) {
	p := uuid.New()
	c := cartWith(domain.CartItem{ProductID: p, Name: "Sock", Quantity: 2, Price: decimal.NewFromInt(5)})
	live := map[uuid.UUID]*domain.Product{p: {ID: p, Price: decimal.NewFromInt(5), Inventory: 2}}

	res := Reconcile(c, live)

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 2, c.ItemCount)
}

func TestProductIDs_Distinct(t *testing.T) {
	p := uuid.New()
	v1, v2 := uuid.New(), uuid.New()
	c := cartWith(
		domain.CartItem{ProductID: p, VariantID: &v1, Quantity: 1},
		domain.CartItem{ProductID: p, VariantID: &v2, Quantity: 1},
	)

	assert.Equal(t, []uuid.UUID{p}, productIDs(c))
}
