package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/mocks"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/product"
)

type productFixture struct {
	handler  *ProductHandler
	repo     *mocks.ProductRepository
	search   *mocks.ProductSearchIndex
	recorder *mocks.EventRecorder
}

func newProductFixture() productFixture {
	f := productFixture{
		repo:     new(mocks.ProductRepository),
		search:   new(mocks.ProductSearchIndex),
		recorder: new(mocks.EventRecorder),
	}
	log := logger.New("test")
	f.handler = NewProductHandler(product.NewService(f.repo, f.search, f.recorder, log), log)
	return f
}

func TestProductHandler_Create_Success(t *testing.T) {
	f := newProductFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", jsonBody(t, ProductRequest{
		Name:     "Linen Shirt",
		Category: "shirts",
		Price:    decimal.RequireFromString("59.00"),
		Variants: []VariantRequest{
			{Size: "M", Color: "white", Inventory: 4},
			{Size: "L", Color: "white", Inventory: 2},
		},
	}))
	w := httptest.NewRecorder()

	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Linen Shirt" && len(p.Variants) == 2 && p.Inventory == 6
	})).Return(nil)
	f.search.On("Index", mock.Anything, mock.Anything).Return(nil)

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.repo.AssertExpectations(t)
	f.search.AssertExpectations(t)
}

func TestProductHandler_Create_InvalidJSON(t *testing.T) {
	f := newProductFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Invalid request body")
}

func TestProductHandler_Create_ValidationError(t *testing.T) {
	f := newProductFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", jsonBody(t, ProductRequest{
		Name:  "",
		Price: decimal.RequireFromString("10"),
	}))
	w := httptest.NewRecorder()

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "details")
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductHandler_Create_RepositoryError(t *testing.T) {
	f := newProductFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", jsonBody(t, ProductRequest{
		Name:  "Test Product",
		Price: decimal.RequireFromString("99.99"),
	}))
	w := httptest.NewRecorder()

	f.repo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("database error"))

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["error"])
}

func TestProductHandler_GetByID_RecordsView(t *testing.T) {
	f := newProductFixture()
	productID := uuid.New()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String(), nil)
	req = asUser(withParams(req, map[string]string{"id": productID.String()}), userID)
	w := httptest.NewRecorder()

	f.repo.On("GetByID", mock.Anything, productID).Return(&domain.Product{ID: productID, Name: "Tee"}, nil)
	f.recorder.On("Record", mock.Anything, productID, domain.EventView, 1, &userID).Return(nil)

	f.handler.GetByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "data")
	f.recorder.AssertExpectations(t)
}

func TestProductHandler_GetByID_ViewFailureIgnored(t *testing.T) {
	f := newProductFixture()
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String(), nil)
	req = withParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	f.repo.On("GetByID", mock.Anything, productID).Return(&domain.Product{ID: productID}, nil)
	f.recorder.On("Record", mock.Anything, productID, domain.EventView, 1, (*uuid.UUID)(nil)).Return(fmt.Errorf("mongo down"))

	f.handler.GetByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProductHandler_GetByID_InvalidUUID(t *testing.T) {
	f := newProductFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/invalid-uuid", nil)
	req = withParams(req, map[string]string{"id": "invalid-uuid"})
	w := httptest.NewRecorder()

	f.handler.GetByID(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Invalid product ID")
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	f := newProductFixture()
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String(), nil)
	req = withParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	f.repo.On("GetByID", mock.Anything, productID).Return(nil, domain.ErrNotFound)

	f.handler.GetByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	f.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_List_Success(t *testing.T) {
	f := newProductFixture()
	products := []*domain.Product{
		{ID: uuid.New(), Name: "Product 1"},
		{ID: uuid.New(), Name: "Product 2"},
	}
	filter := domain.ProductListFilter{Category: "dresses", Sort: domain.SortPriceAsc, Limit: 10, Offset: 5}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=dresses&sort=price_asc&limit=10&offset=5", nil)
	w := httptest.NewRecorder()

	f.repo.On("List", mock.Anything, filter).Return(products, nil)
	f.repo.On("Count", mock.Anything, filter).Return(12, nil)

	f.handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body, "data")
	assert.Equal(t, float64(12), body["pagination"].(map[string]any)["total"])
	f.repo.AssertExpectations(t)
}

func TestProductHandler_List_UnsupportedSort(t *testing.T) {
	f := newProductFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?sort=random", nil)
	w := httptest.NewRecorder()

	f.handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_Search_KeepsRelevanceOrder(t *testing.T) {
	f := newProductFixture()
	first, second := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=linen", nil)
	w := httptest.NewRecorder()

	f.search.On("Search", mock.Anything, "linen", 20).Return([]uuid.UUID{first, second}, nil)
	f.repo.On("GetByIDs", mock.Anything, []uuid.UUID{first, second}).Return(map[uuid.UUID]*domain.Product{
		second: {ID: second, Name: "Linen Trousers"},
		first:  {ID: first, Name: "Linen Shirt"},
	}, nil)

	f.handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]any)
	if assert.Len(t, data, 2) {
		assert.Equal(t, "Linen Shirt", data[0].(map[string]any)["name"])
	}
}

func TestProductHandler_Search_Unavailable(t *testing.T) {
	f := newProductFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=linen", nil)
	w := httptest.NewRecorder()

	f.search.On("Search", mock.Anything, "linen", 20).Return(nil, fmt.Errorf("timeout"))

	f.handler.Search(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestProductHandler_Update_FetchesVersion(t *testing.T) {
	f := newProductFixture()
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+productID.String(), jsonBody(t, ProductRequest{
		Name:  "Updated",
		Price: decimal.RequireFromString("20"),
	}))
	req = withParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	f.repo.On("GetByID", mock.Anything, productID).Return(&domain.Product{ID: productID, Version: 3}, nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ID == productID && p.Version == 3
	})).Return(nil)
	f.search.On("Index", mock.Anything, mock.Anything).Return(nil)

	f.handler.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.repo.AssertExpectations(t)
}

func TestProductHandler_Update_Conflict(t *testing.T) {
	f := newProductFixture()
	productID := uuid.New()
	version := 2

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+productID.String(), jsonBody(t, ProductRequest{
		Name:    "Updated",
		Price:   decimal.RequireFromString("20"),
		Version: &version,
	}))
	req = withParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	f.repo.On("Update", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	f.handler.Update(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestProductHandler_Delete_Success(t *testing.T) {
	f := newProductFixture()
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+productID.String(), nil)
	req = withParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	f.repo.On("Delete", mock.Anything, productID).Return(nil)
	f.search.On("Remove", mock.Anything, productID).Return(nil)

	f.handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	f.search.AssertExpectations(t)
}
