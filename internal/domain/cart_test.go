package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartOwner_Valid(t *testing.T) {
	id := uuid.New()

	assert.True(t, UserOwner(id).Valid())
	assert.True(t, GuestOwner("sess-1").Valid())
	assert.False(t, CartOwner{}.Valid())
	assert.False(t, CartOwner{UserID: &id, SessionID: "sess-1"}.Valid())
}

func TestCart_AddItemMergesSameLine(t *testing.T) {
	productID := uuid.New()
	variantID := uuid.New()
	cart := NewCart(GuestOwner("sess-1"))

	cart.AddItem(CartItem{ProductID: productID, VariantID: &variantID, Quantity: 1, Price: decimal.NewFromInt(20)})
	cart.AddItem(CartItem{ProductID: productID, VariantID: &variantID, Quantity: 2, Price: decimal.NewFromInt(20)})
	cart.AddItem(CartItem{ProductID: productID, Quantity: 1, Price: decimal.NewFromInt(25)})

	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 4, cart.ItemCount)
	assert.True(t, decimal.NewFromInt(85).Equal(cart.Subtotal))
}

func TestCart_SetQuantityZeroRemoves(t *testing.T) {
	productID := uuid.New()
	cart := NewCart(GuestOwner("sess-1"))
	cart.AddItem(CartItem{ProductID: productID, Quantity: 3, Price: decimal.NewFromInt(10)})

	assert.True(t, cart.SetQuantity(productID, nil, 0))
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.ItemCount)
	assert.True(t, cart.Subtotal.IsZero())

	assert.False(t, cart.RemoveItem(productID, nil))
}

func TestCart_Merge(t *testing.T) {
	shared := uuid.New()
	userCart := NewCart(UserOwner(uuid.New()))
	userCart.AddItem(CartItem{ProductID: shared, Quantity: 1, Price: decimal.NewFromInt(10)})

	guest := NewCart(GuestOwner("sess-1"))
	guest.AddItem(CartItem{ProductID: shared, Quantity: 2, Price: decimal.NewFromInt(10)})
	guest.AddItem(CartItem{ProductID: uuid.New(), Quantity: 1, Price: decimal.NewFromInt(5)})

	userCart.Merge(guest)

	assert.Len(t, userCart.Items, 2)
	assert.Equal(t, 4, userCart.ItemCount)
	assert.True(t, decimal.NewFromInt(35).Equal(userCart.Subtotal))
}
