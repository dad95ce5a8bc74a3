package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// maxLineQuantity bounds one cart line
const maxLineQuantity = 99

// EventRecorder records add-to-cart analytics
type EventRecorder interface {
	Record(ctx context.Context, productID uuid.UUID, eventType domain.EventType, quantity int, userID *uuid.UUID) error
}

// ItemInput identifies a product line and its desired quantity
type ItemInput struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity"`
}

// View is a reconciled cart with what reconciliation changed
type View struct {
	Cart           *domain.Cart           `json:"cart"`
	Reconciliation domain.ReconcileResult `json:"reconciliation"`
}

// Service handles cart operations
type Service struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	recorder EventRecorder
	logger   *logger.Logger
}

// NewService creates a new cart service
func NewService(carts domain.CartRepository, products domain.ProductRepository, recorder EventRecorder, log *logger.Logger) *Service {
	return &Service{
		carts:    carts,
		products: products,
		recorder: recorder,
		logger:   log,
	}
}

func (s *Service) load(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, domain.NewError(domain.ErrInvalidInput, "cart owner is required")
	}
	c, err := s.carts.GetByOwner(ctx, owner)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewCart(owner), nil
	}
	if err != nil {
		s.logger.Error("Failed to load cart", err)
		return nil, err
	}
	return c, nil
}

// Get returns the owner's cart reconciled against the live catalog.
// A cart changed by reconciliation is persisted.
func (s *Service) Get(ctx context.Context, owner domain.CartOwner) (*View, error) {
	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, c)
}

func (s *Service) reconcile(ctx context.Context, c *domain.Cart) (*View, error) {
	if c.IsEmpty() {
		c.Recalculate()
		return &View{Cart: c, Reconciliation: Reconcile(c, nil)}, nil
	}

	live, err := s.products.GetByIDs(ctx, productIDs(c))
	if err != nil {
		s.logger.Error("Failed to load cart products", err)
		return nil, err
	}

	result := Reconcile(c, live)
	if !result.IsValid {
		if err := s.carts.Save(ctx, c); err != nil {
			s.logger.Error("Failed to save reconciled cart", err)
			return nil, err
		}
		s.logger.WithFields(map[string]any{
			"cart_id": c.ID,
			"removed": len(result.Removed),
			"updated": len(result.Updated),
		}).Info("Cart reconciled")
	}
	return &View{Cart: c, Reconciliation: result}, nil
}

// resolve loads the product and variant for a line and returns available stock
func (s *Service) resolve(ctx context.Context, in ItemInput) (*domain.Product, *domain.Variant, int, error) {
	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, nil, 0, err
	}

	if in.VariantID == nil {
		if product.HasVariants() {
			return nil, nil, 0, domain.NewError(domain.ErrInvalidInput, "a size or color must be selected")
		}
		return product, nil, product.Inventory, nil
	}

	variant, ok := product.Variant(*in.VariantID)
	if !ok {
		return nil, nil, 0, domain.NewError(domain.ErrNotFound, "variant not found")
	}
	return product, variant, variant.Inventory, nil
}

func insufficientStock(available int) error {
	return domain.NewError(domain.ErrInvalidInput, "insufficient stock").
		WithDetails(map[string]any{"available": available})
}

// AddItem adds quantity of a product to the cart after a stock check
func (s *Service) AddItem(ctx context.Context, owner domain.CartOwner, in ItemInput) (*View, error) {
	if in.Quantity < 1 || in.Quantity > maxLineQuantity {
		return nil, domain.NewError(domain.ErrInvalidInput, "quantity must be between 1 and 99")
	}

	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	product, variant, available, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	existing := 0
	for _, item := range c.Items {
		if item.Matches(in.ProductID, in.VariantID) {
			existing = item.Quantity
		}
	}
	if existing+in.Quantity > available {
		return nil, insufficientStock(available)
	}

	item := domain.CartItem{
		ProductID: product.ID,
		VariantID: in.VariantID,
		Quantity:  in.Quantity,
		Price:     product.PriceFor(variant),
		Name:      product.Name,
	}
	if len(product.Images) > 0 {
		item.Image = product.Images[0]
	}
	if variant != nil {
		item.Size = variant.Size
		item.Color = variant.Color
	}
	c.AddItem(item)

	if err := s.carts.Save(ctx, c); err != nil {
		s.logger.Error("Failed to save cart", err)
		return nil, err
	}

	if err := s.recorder.Record(ctx, product.ID, domain.EventAddToCart, in.Quantity, owner.UserID); err != nil {
		s.logger.Warnf("Failed to record add to cart for product %s: %v", product.ID, err)
	}

	return s.reconcile(ctx, c)
}

// UpdateQuantity sets a line's quantity; zero removes the line
func (s *Service) UpdateQuantity(ctx context.Context, owner domain.CartOwner, in ItemInput) (*View, error) {
	if in.Quantity < 0 || in.Quantity > maxLineQuantity {
		return nil, domain.NewError(domain.ErrInvalidInput, "quantity must be between 0 and 99")
	}

	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	if in.Quantity > 0 {
		_, _, available, err := s.resolve(ctx, in)
		if err != nil {
			return nil, err
		}
		if in.Quantity > available {
			return nil, insufficientStock(available)
		}
	}

	if !c.SetQuantity(in.ProductID, in.VariantID, in.Quantity) {
		return nil, domain.NewError(domain.ErrNotFound, "item not in cart")
	}

	if err := s.carts.Save(ctx, c); err != nil {
		s.logger.Error("Failed to save cart", err)
		return nil, err
	}
	return s.reconcile(ctx, c)
}

// RemoveItem drops a line from the cart
func (s *Service) RemoveItem(ctx context.Context, owner domain.CartOwner, productID uuid.UUID, variantID *uuid.UUID) (*View, error) {
	return s.UpdateQuantity(ctx, owner, ItemInput{ProductID: productID, VariantID: variantID, Quantity: 0})
}

// Clear empties the cart; the cart document itself is kept
func (s *Service) Clear(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	c.Clear()
	if err := s.carts.Save(ctx, c); err != nil {
		s.logger.Error("Failed to clear cart", err)
		return nil, err
	}
	return c, nil
}

// Merge folds the guest session's cart into the user's cart and deletes the guest cart
func (s *Service) Merge(ctx context.Context, userID uuid.UUID, sessionID string) (*View, error) {
	userOwner := domain.UserOwner(userID)
	if sessionID == "" {
		return s.Get(ctx, userOwner)
	}

	guestOwner := domain.GuestOwner(sessionID)
	guest, err := s.carts.GetByOwner(ctx, guestOwner)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && guest.IsEmpty()) {
		return s.Get(ctx, userOwner)
	}
	if err != nil {
		s.logger.Error("Failed to load guest cart", err)
		return nil, err
	}

	c, err := s.load(ctx, userOwner)
	if err != nil {
		return nil, err
	}
	c.Merge(guest)

	if err := s.carts.Save(ctx, c); err != nil {
		s.logger.Error("Failed to save merged cart", err)
		return nil, err
	}
	if err := s.carts.DeleteByOwner(ctx, guestOwner); err != nil {
		s.logger.Warnf("Failed to delete merged guest cart %s: %v", sessionID, err)
	}

	s.logger.WithFields(map[string]any{
		"user_id": userID,
		"items":   len(guest.Items),
	}).Info("Guest cart merged")

	return s.reconcile(ctx, c)
}

// Delete removes the carts of the given owners; missing carts are ignored
func (s *Service) Delete(ctx context.Context, owners ...domain.CartOwner) error {
	var errs error
	for _, owner := range owners {
		if !owner.Valid() {
			continue
		}
		if err := s.carts.DeleteByOwner(ctx, owner); err != nil {
			s.logger.Error("Failed to delete cart", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
