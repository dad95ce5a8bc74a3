package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/database"
)

const productColumns = `id, name, description, category, price, images, inventory,
	view_count, add_to_cart_count, purchase_count, popularity_score,
	average_rating, review_count, version, created_at, updated_at, deleted_at`

var productOrder = map[string]string{
	domain.SortNewest:    "created_at DESC",
	domain.SortPopular:   "popularity_score DESC, created_at DESC",
	domain.SortPriceAsc:  "price ASC, created_at DESC",
	domain.SortPriceDesc: "price DESC, created_at DESC",
}

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product together with its variants
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	product.SyncInventory()
	if product.Images == nil {
		product.Images = pq.StringArray{}
	}

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO products (name, description, category, price, images, inventory, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING id, average_rating, version, created_at, updated_at
		`
		err := tx.QueryRowxContext(
			ctx,
			query,
			product.Name,
			product.Description,
			product.Category,
			product.Price,
			product.Images,
			product.Inventory,
			time.Now(),
		).Scan(
			&product.ID,
			&product.AverageRating,
			&product.Version,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return err
		}

		return insertVariants(ctx, tx, product)
	})
}

// GetByID retrieves a product with its variants
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.attachVariants(ctx, []*domain.Product{&product}); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs retrieves live products with variants keyed by id. Missing ids are simply absent.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	result := make(map[uuid.UUID]*domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL`

	var products []*domain.Product
	if err := r.db.SelectContext(ctx, &products, query, uuidArray(ids)); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

// List retrieves a page of products
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductListFilter) ([]*domain.Product, error) {
	order, ok := productOrder[filter.Sort]
	if !ok {
		order = productOrder[domain.SortNewest]
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE deleted_at IS NULL AND ($1 = '' OR category = $1)
		ORDER BY %s
		LIMIT $2 OFFSET $3
	`, productColumns, order)

	var products []*domain.Product
	err := r.db.SelectContext(ctx, &products, query, filter.Category, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// Count returns the number of products matching the filter
func (r *ProductRepository) Count(ctx context.Context, filter domain.ProductListFilter) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND ($1 = '' OR category = $1)`

	var count int
	if err := r.db.GetContext(ctx, &count, query, filter.Category); err != nil {
		return 0, err
	}
	return count, nil
}

// Update updates product fields and replaces its variants (optimistic locking on version)
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	product.SyncInventory()
	if product.Images == nil {
		product.Images = pq.StringArray{}
	}

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE products
			SET name = $1, description = $2, category = $3, price = $4, images = $5,
				inventory = $6, updated_at = $7, version = version + 1
			WHERE id = $8 AND deleted_at IS NULL AND version = $9
			RETURNING version, updated_at
		`
		err := tx.QueryRowxContext(
			ctx,
			query,
			product.Name,
			product.Description,
			product.Category,
			product.Price,
			product.Images,
			product.Inventory,
			time.Now(),
			product.ID,
			product.Version,
		).Scan(&product.Version, &product.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrConflict
			}
			return err
		}

		return syncVariants(ctx, tx, product)
	})
}

// Delete soft-deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE products
		SET deleted_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementCounter bumps the counter of the event type and adds its weight to the popularity score
func (r *ProductRepository) IncrementCounter(ctx context.Context, id uuid.UUID, eventType domain.EventType, quantity int) error {
	var column string
	weight := domain.ViewWeight
	switch eventType {
	case domain.EventView:
		column = "view_count"
	case domain.EventAddToCart:
		column = "add_to_cart_count"
		weight = domain.AddToCartWeight
	case domain.EventPurchase:
		column = "purchase_count"
		weight = domain.PurchaseWeight
	default:
		return fmt.Errorf("unknown event type %q", eventType)
	}
	if quantity < 1 {
		quantity = 1
	}

	query := fmt.Sprintf(`
		UPDATE products
		SET %[1]s = %[1]s + $1, popularity_score = popularity_score + $2
		WHERE id = $3
	`, column)

	_, err := r.db.ExecContext(ctx, query, quantity, weight.Mul(decimalFromInt(quantity)), id)
	return err
}

// LowStock lists live products at or below the threshold, lowest first
func (r *ProductRepository) LowStock(ctx context.Context, threshold, limit int) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL AND inventory <= $1
		ORDER BY inventory ASC, name ASC
		LIMIT $2`

	var products []*domain.Product
	if err := r.db.SelectContext(ctx, &products, query, threshold, limit); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) attachVariants(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(products))
	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	query := `
		SELECT id, product_id, size, color, price, inventory
		FROM product_variants
		WHERE product_id = ANY($1::uuid[])
		ORDER BY size, color
	`
	var variants []domain.Variant
	if err := r.db.SelectContext(ctx, &variants, query, uuidArray(ids)); err != nil {
		return err
	}

	for _, v := range variants {
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	return nil
}

// syncVariants upserts variants by id and drops the ones no longer listed.
// Ids stay stable so placed orders can still find their variant on restock.
func syncVariants(ctx context.Context, tx *sqlx.Tx, product *domain.Product) error {
	ids := make([]uuid.UUID, 0, len(product.Variants))
	for i := range product.Variants {
		v := &product.Variants[i]
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		v.ProductID = product.ID
		ids = append(ids, v.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_variants WHERE product_id = $1 AND NOT (id = ANY($2::uuid[]))`,
		product.ID, uuidArray(ids),
	); err != nil {
		return err
	}

	query := `
		INSERT INTO product_variants (id, product_id, size, color, price, inventory)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET size = EXCLUDED.size, color = EXCLUDED.color, price = EXCLUDED.price, inventory = EXCLUDED.inventory
		WHERE product_variants.product_id = EXCLUDED.product_id
	`
	for _, v := range product.Variants {
		result, err := tx.ExecContext(ctx, query, v.ID, v.ProductID, v.Size, v.Color, v.Price, v.Inventory)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.NewError(domain.ErrInvalidInput, "variant belongs to another product").
				WithDetails(map[string]any{"variant_id": v.ID})
		}
	}
	return nil
}

func insertVariants(ctx context.Context, tx *sqlx.Tx, product *domain.Product) error {
	query := `
		INSERT INTO product_variants (id, product_id, size, color, price, inventory)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range product.Variants {
		v := &product.Variants[i]
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		v.ProductID = product.ID
		if _, err := tx.ExecContext(ctx, query, v.ID, v.ProductID, v.Size, v.Color, v.Price, v.Inventory); err != nil {
			return err
		}
	}
	return nil
}
