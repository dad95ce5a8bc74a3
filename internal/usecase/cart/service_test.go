package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/mocks"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

func newTestService() (*Service, *mocks.CartRepository, *mocks.ProductRepository, *mocks.EventRecorder) {
	carts := new(mocks.CartRepository)
	products := new(mocks.ProductRepository)
	recorder := new(mocks.EventRecorder)
	return NewService(carts, products, recorder, logger.New("test")), carts, products, recorder
}

func TestService_Get_PersistsReconciledCart(t *testing.T) {
	service, carts, products, _ := newTestService()
	owner := domain.GuestOwner("sess-1")
	p := uuid.New()

	stored := domain.NewCart(owner)
	stored.Items = []domain.CartItem{{ProductID: p, Name: "Tee", Quantity: 5, Price: decimal.NewFromInt(1000)}}
	stored.Recalculate()

	carts.On("GetByOwner", mock.Anything, owner).Return(stored, nil)
	products.On("GetByIDs", mock.Anything, []uuid.UUID{p}).
		Return(map[uuid.UUID]*domain.Product{p: {ID: p, Price: decimal.NewFromInt(1000), Inventory: 3}}, nil)
	carts.On("Save", mock.Anything, stored).Return(nil)

	view, err := service.Get(context.Background(), owner)

	require.NoError(t, err)
	assert.False(t, view.Reconciliation.IsValid)
	assert.Equal(t, 3, view.Cart.Items[0].Quantity)
	assert.True(t, view.Cart.Subtotal.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, 3, view.Cart.ItemCount)
	assert.Len(t, view.Reconciliation.Errors, 1)
	carts.AssertExpectations(t)
	products.AssertNumberOfCalls(t, "GetByIDs", 1)
}

func TestService_Get_MissingCartIsEmpty(t *testing.T) {
	service, carts, products, _ := newTestService()
	owner := domain.UserOwner(uuid.New())

	carts.On("GetByOwner", mock.Anything, owner).Return(nil, domain.ErrNotFound)

	view, err := service.Get(context.Background(), owner)

	require.NoError(t, err)
	assert.True(t, view.Cart.IsEmpty())
	assert.True(t, view.Reconciliation.IsValid)
	products.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Get_InvalidOwner(t *testing.T) {
	service, _, _, _ := newTestService()

	_, err := service.Get(context.Background(), domain.CartOwner{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_AddItem_Success(t *testing.T) {
	service, carts, products, recorder := newTestService()
	userID := uuid.New()
	owner := domain.UserOwner(userID)
	p := uuid.New()
	v := uuid.New()
	product := &domain.Product{
		ID:       p,
		Name:     "Dress",
		Price:    decimal.NewFromInt(80),
		Images:   []string{"dress.jpg"},
		Variants: []domain.Variant{{ID: v, Size: "S", Color: "red", Inventory: 4}},
	}
	product.SyncInventory()

	carts.On("GetByOwner", mock.Anything, owner).Return(nil, domain.ErrNotFound)
	products.On("GetByID", mock.Anything, p).Return(product, nil)
	carts.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)
	recorder.On("Record", mock.Anything, p, domain.EventAddToCart, 2, &userID).Return(nil)
	products.On("GetByIDs", mock.Anything, []uuid.UUID{p}).Return(map[uuid.UUID]*domain.Product{p: product}, nil)

	view, err := service.AddItem(context.Background(), owner, ItemInput{ProductID: p, VariantID: &v, Quantity: 2})

	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 1)
	item := view.Cart.Items[0]
	assert.Equal(t, "S", item.Size)
	assert.Equal(t, "dress.jpg", item.Image)
	assert.True(t, view.Cart.Subtotal.Equal(decimal.NewFromInt(160)))
	recorder.AssertExpectations(t)
}

func TestService_AddItem_InsufficientStock(t *testing.T) {
	service, carts, products, _ := newTestService()
	owner := domain.GuestOwner("sess")
	p := uuid.New()

	existing := domain.NewCart(owner)
	existing.AddItem(domain.CartItem{ProductID: p, Quantity: 2, Price: decimal.NewFromInt(10)})

	carts.On("GetByOwner", mock.Anything, owner).Return(existing, nil)
	products.On("GetByID", mock.Anything, p).Return(&domain.Product{ID: p, Price: decimal.NewFromInt(10), Inventory: 3}, nil)

	_, err := service.AddItem(context.Background(), owner, ItemInput{ProductID: p, Quantity: 2})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 3, de.Details["available"])
	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_AddItem_VariantRequired(t *testing.T) {
	service, carts, products, _ := newTestService()
	owner := domain.GuestOwner("sess")
	p := uuid.New()

	carts.On("GetByOwner", mock.Anything, owner).Return(nil, domain.ErrNotFound)
	products.On("GetByID", mock.Anything, p).Return(&domain.Product{ID: p, Variants: []domain.Variant{{ID: uuid.New(), Inventory: 1}}}, nil)

	_, err := service.AddItem(context.Background(), owner, ItemInput{ProductID: p, Quantity: 1})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_UpdateQuantity_ItemNotInCart(t *testing.T) {
	service, carts, _, _ := newTestService()
	owner := domain.GuestOwner("sess")

	carts.On("GetByOwner", mock.Anything, owner).Return(domain.NewCart(owner), nil)

	_, err := service.RemoveItem(context.Background(), owner, uuid.New(), nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Merge(t *testing.T) {
	service, carts, products, _ := newTestService()
	userID := uuid.New()
	p := uuid.New()
	guestOwner := domain.GuestOwner("sess")
	userOwner := domain.UserOwner(userID)

	guest := domain.NewCart(guestOwner)
	guest.AddItem(domain.CartItem{ProductID: p, Quantity: 1, Price: decimal.NewFromInt(10)})
	mine := domain.NewCart(userOwner)
	mine.AddItem(domain.CartItem{ProductID: p, Quantity: 2, Price: decimal.NewFromInt(10)})

	carts.On("GetByOwner", mock.Anything, guestOwner).Return(guest, nil)
	carts.On("GetByOwner", mock.Anything, userOwner).Return(mine, nil)
	carts.On("Save", mock.Anything, mine).Return(nil)
	carts.On("DeleteByOwner", mock.Anything, guestOwner).Return(nil)
	products.On("GetByIDs", mock.Anything, []uuid.UUID{p}).
		Return(map[uuid.UUID]*domain.Product{p: {ID: p, Price: decimal.NewFromInt(10), Inventory: 10}}, nil)

	view, err := service.Merge(context.Background(), userID, "sess")

	require.NoError(t, err)
	assert.Equal(t, 3, view.Cart.ItemCount)
	carts.AssertExpectations(t)
}

func TestService_Delete_SkipsInvalidOwners(t *testing.T) {
	service, carts, _, _ := newTestService()
	owner := domain.UserOwner(uuid.New())

	carts.On("DeleteByOwner", mock.Anything, owner).Return(nil)

	assert.NoError(t, service.Delete(context.Background(), owner, domain.CartOwner{}))
	carts.AssertNumberOfCalls(t, "DeleteByOwner", 1)
}
