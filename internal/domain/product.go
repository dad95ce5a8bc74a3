package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Popularity weights applied per unit of each event type
var (
	PurchaseWeight  = decimal.NewFromInt(5)
	AddToCartWeight = decimal.NewFromInt(2)
	ViewWeight      = decimal.NewFromFloat(0.2)
)

// Product represents a catalog item
type Product struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Name            string          `json:"name" db:"name" validate:"required,min=1,max=255"`
	Description     *string         `json:"description,omitempty" db:"description"`
	Category        string          `json:"category" db:"category" validate:"max=100"`
	Price           decimal.Decimal `json:"price" db:"price"`
	Images          pq.StringArray  `json:"images" db:"images"`
	Inventory       int             `json:"inventory" db:"inventory" validate:"gte=0"`
	ViewCount       int64           `json:"view_count" db:"view_count"`
	AddToCartCount  int64           `json:"add_to_cart_count" db:"add_to_cart_count"`
	PurchaseCount   int64           `json:"purchase_count" db:"purchase_count"`
	PopularityScore decimal.Decimal `json:"popularity_score" db:"popularity_score"`
	AverageRating   float64         `json:"average_rating" db:"average_rating"`
	ReviewCount     int             `json:"review_count" db:"review_count"`
	Variants        []Variant       `json:"variants,omitempty" db:"-" validate:"dive"`
	Version         int             `json:"version" db:"version"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Variant is a size/color combination with its own stock and optional price override
type Variant struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	ProductID uuid.UUID        `json:"product_id" db:"product_id"`
	Size      string           `json:"size" db:"size" validate:"max=50"`
	Color     string           `json:"color" db:"color" validate:"max=50"`
	Price     *decimal.Decimal `json:"price,omitempty" db:"price"`
	Inventory int              `json:"inventory" db:"inventory" validate:"gte=0"`
}

// Variant returns the variant with the given id
func (p *Product) Variant(id uuid.UUID) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// HasVariants reports whether stock is tracked per variant
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// SyncInventory sets the aggregate inventory to the variant sum when variants exist
func (p *Product) SyncInventory() {
	if !p.HasVariants() {
		return
	}
	total := 0
	for _, v := range p.Variants {
		total += v.Inventory
	}
	p.Inventory = total
}

// PriceFor returns the live unit price, honoring a variant override
func (p *Product) PriceFor(variant *Variant) decimal.Decimal {
	if variant != nil && variant.Price != nil {
		return *variant.Price
	}
	return p.Price
}

// ProductListFilter narrows catalog listings
type ProductListFilter struct {
	Category string
	Sort     string
	Limit    int
	Offset   int
}

// Supported catalog sort orders
const (
	SortNewest    = "newest"
	SortPopular   = "popular"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// StockLine is a product/variant quantity pair used for reservation and restoration
type StockLine struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity"`
}

// StockAdjustment reports the inventory left after a reservation line
type StockAdjustment struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Remaining int        `json:"remaining"`
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// Create creates a product and its variants
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product with variants (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// GetByIDs retrieves products with variants in one round trip, keyed by id
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)

	// List retrieves a page of products (excludes soft-deleted)
	List(ctx context.Context, filter ProductListFilter) ([]*Product, error)

	// Count returns the number of products matching the filter
	Count(ctx context.Context, filter ProductListFilter) (int, error)

	// Update updates product fields and replaces its variants
	Update(ctx context.Context, product *Product) error

	// Delete soft-deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementCounter bumps one popularity counter and the derived score
	IncrementCounter(ctx context.Context, id uuid.UUID, eventType EventType, quantity int) error

	// LowStock lists products at or below the threshold
	LowStock(ctx context.Context, threshold, limit int) ([]*Product, error)
}

// ProductSearchIndex maintains a full-text index over the catalog
type ProductSearchIndex interface {
	// Index upserts the searchable fields of a product
	Index(ctx context.Context, product *Product) error

	// Remove drops a product from the index
	Remove(ctx context.Context, id uuid.UUID) error

	// Search returns product ids ranked by relevance
	Search(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
}
