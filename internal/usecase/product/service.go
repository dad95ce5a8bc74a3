package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/pkg/validator"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// EventRecorder records catalog analytics
type EventRecorder interface {
	Record(ctx context.Context, productID uuid.UUID, eventType domain.EventType, quantity int, userID *uuid.UUID) error
}

// Service handles catalog business logic
type Service struct {
	repo     domain.ProductRepository
	search   domain.ProductSearchIndex
	recorder EventRecorder
	logger   *logger.Logger
}

// NewService creates a new product service
func NewService(repo domain.ProductRepository, search domain.ProductSearchIndex, recorder EventRecorder, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		search:   search,
		recorder: recorder,
		logger:   log,
	}
}

func (s *Service) validate(product *domain.Product) error {
	details, err := validator.Struct(product)
	if err != nil {
		s.logger.Error("Product validation failed", err)
		return domain.NewError(domain.ErrInvalidInput, "validation failed").WithDetails(details)
	}
	if !product.Price.IsPositive() {
		return domain.NewError(domain.ErrInvalidInput, "validation failed").
			WithDetails(map[string]any{"price": "gt"})
	}
	for _, v := range product.Variants {
		if v.Price != nil && v.Price.IsNegative() {
			return domain.NewError(domain.ErrInvalidInput, "validation failed").
				WithDetails(map[string]any{"variants.price": "gte"})
		}
	}
	return nil
}

// Create creates a product and indexes it for search
func (s *Service) Create(ctx context.Context, product *domain.Product) error {
	if err := s.validate(product); err != nil {
		return err
	}
	product.SyncInventory()

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", err)
		return err
	}

	if err := s.search.Index(ctx, product); err != nil {
		s.logger.Warnf("Failed to index product %s: %v", product.ID, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created successfully")

	return nil
}

// GetByID retrieves a product by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found: %s", id)
		} else {
			s.logger.Error("Failed to get product", err)
		}
		return nil, err
	}

	return product, nil
}

// List retrieves a page of products with the total count
func (s *Service) List(ctx context.Context, filter domain.ProductListFilter) ([]*domain.Product, int, error) {
	if filter.Limit <= 0 || filter.Limit > maxLimit {
		filter.Limit = defaultLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	switch filter.Sort {
	case "", domain.SortNewest, domain.SortPopular, domain.SortPriceAsc, domain.SortPriceDesc:
	default:
		return nil, 0, domain.NewError(domain.ErrInvalidInput, "unsupported sort order")
	}

	products, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	return products, total, nil
}

// Popular returns the top products by popularity score
func (s *Service) Popular(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit <= 0 || limit > maxLimit {
		limit = 10
	}
	products, err := s.repo.List(ctx, domain.ProductListFilter{Sort: domain.SortPopular, Limit: limit})
	if err != nil {
		s.logger.Error("Failed to list popular products", err)
		return nil, err
	}
	return products, nil
}

// Search returns products matching the query ranked by relevance
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.Product{}, nil
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	ids, err := s.search.Search(ctx, query, limit)
	if err != nil {
		s.logger.Error("Failed to search products", err)
		return nil, domain.WrapError(domain.ErrDependency, err, "search unavailable")
	}
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	byID, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load searched products", err)
		return nil, err
	}

	// keep relevance order; deleted products drop out
	products := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// RecordView counts a product page view
func (s *Service) RecordView(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.recorder.Record(ctx, id, domain.EventView, 1, userID)
}

// Update updates an existing product and refreshes its search document
func (s *Service) Update(ctx context.Context, product *domain.Product) error {
	if err := s.validate(product); err != nil {
		return err
	}
	product.SyncInventory()

	if err := s.repo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to update product", err)
		return err
	}

	if err := s.search.Index(ctx, product); err != nil {
		s.logger.Warnf("Failed to reindex product %s: %v", product.ID, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product updated successfully")

	return nil
}

// Delete soft-deletes a product
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", err)
		return err
	}

	if err := s.search.Remove(ctx, id); err != nil {
		s.logger.Warnf("Failed to remove product %s from search: %v", id, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product deleted successfully")

	return nil
}
