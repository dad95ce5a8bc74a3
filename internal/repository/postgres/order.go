package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/database"
)

const orderColumns = `id, user_id, guest_email, items, shipping_address, total, currency,
	status, payment_status, payment_reference, authorization_code, paid_at,
	tracking_number, estimated_delivery, inventory_reserved, created_at, updated_at`

// OrderRepository implements domain.OrderRepository for PostgreSQL
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new PostgreSQL order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create stores a new order
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (user_id, guest_email, items, shipping_address, total, currency, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	if order.Status == "" {
		order.Status = domain.OrderPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentPending
	}

	return r.db.QueryRowxContext(
		ctx,
		query,
		order.UserID,
		order.GuestEmail,
		order.Items,
		order.ShippingAddress,
		order.Total,
		order.Currency,
		order.Status,
		order.PaymentStatus,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

// GetByID retrieves an order
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByPaymentReference retrieves the order carrying the gateway reference
func (r *OrderRepository) GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_reference = $1`, reference)
}

func (r *OrderRepository) getOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.GetContext(ctx, &order, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List retrieves a page of orders, newest first
func (r *OrderRepository) List(ctx context.Context, filter domain.OrderListFilter) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::uuid IS NULL OR user_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	var orders []*domain.Order
	err := r.db.SelectContext(ctx, &orders, query, filter.UserID, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Count returns the number of orders matching the filter
func (r *OrderRepository) Count(ctx context.Context, filter domain.OrderListFilter) (int, error) {
	query := `SELECT COUNT(*) FROM orders WHERE ($1::uuid IS NULL OR user_id = $1) AND ($2 = '' OR status = $2)`

	var count int
	if err := r.db.GetContext(ctx, &count, query, filter.UserID, string(filter.Status)); err != nil {
		return 0, err
	}
	return count, nil
}

// SetPaymentReference records the reference issued when payment was initialized
func (r *OrderRepository) SetPaymentReference(ctx context.Context, id uuid.UUID, reference string) error {
	query := `UPDATE orders SET payment_reference = $1, updated_at = NOW() WHERE id = $2 AND payment_status <> 'paid'`

	result, err := r.db.ExecContext(ctx, query, reference, id)
	if err != nil {
		return err
	}
	return expectOneRow(result, domain.ErrNotFound)
}

// MarkPaid moves payment to paid and a pending order to confirmed. Only one caller wins.
func (r *OrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, confirmation domain.PaymentConfirmation) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = 'paid',
			status = CASE WHEN status = 'pending' THEN 'confirmed' ELSE status END,
			payment_reference = $1,
			authorization_code = NULLIF($2, ''),
			paid_at = $3,
			updated_at = NOW()
		WHERE id = $4 AND payment_status IN ('pending', 'failed')
	`

	result, err := r.db.ExecContext(ctx, query, confirmation.Reference, confirmation.AuthorizationCode, confirmation.PaidAt, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 1 {
		return true, nil
	}
	return false, r.ensureExists(ctx, id)
}

// MarkPaymentFailed records a failed verification unless the order is already settled
func (r *OrderRepository) MarkPaymentFailed(ctx context.Context, id uuid.UUID, reference string) error {
	query := `
		UPDATE orders
		SET payment_status = 'failed',
			payment_reference = COALESCE(payment_reference, NULLIF($1, '')),
			updated_at = NOW()
		WHERE id = $2 AND payment_status IN ('pending', 'failed')
	`

	if _, err := r.db.ExecContext(ctx, query, reference, id); err != nil {
		return err
	}
	return nil
}

// UpdateStatus persists status, tracking number and ETA when the stored status still equals from
func (r *OrderRepository) UpdateStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, tracking_number = $2, estimated_delivery = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		order.Status,
		order.TrackingNumber,
		order.EstimatedDelivery,
		order.ID,
		from,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// ReserveInventory decrements stock for a paid order exactly once.
// Stock may go negative; the remaining levels are returned so callers can report oversells.
func (r *OrderRepository) ReserveInventory(ctx context.Context, id uuid.UUID, lines []domain.StockLine) (bool, []domain.StockAdjustment, error) {
	var reserved bool
	var adjustments []domain.StockAdjustment

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		claim := `
			UPDATE orders SET inventory_reserved = TRUE, updated_at = NOW()
			WHERE id = $1 AND inventory_reserved = FALSE AND payment_status = 'paid'
		`
		result, err := tx.ExecContext(ctx, claim, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		reserved = true

		for _, line := range sortedLines(lines) {
			remaining, ok, err := adjustStock(ctx, tx, line, -line.Quantity)
			if err != nil {
				return err
			}
			if ok {
				adjustments = append(adjustments, domain.StockAdjustment{
					ProductID: line.ProductID,
					VariantID: line.VariantID,
					Remaining: remaining,
				})
			}
		}
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return reserved, adjustments, nil
}

// RestoreInventory returns the stock of a reserved order exactly once.
// Lines whose variant or product row is gone are returned as skipped.
func (r *OrderRepository) RestoreInventory(ctx context.Context, id uuid.UUID, lines []domain.StockLine) (bool, []domain.StockLine, error) {
	var restored bool
	var skipped []domain.StockLine

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		release := `
			UPDATE orders SET inventory_reserved = FALSE, updated_at = NOW()
			WHERE id = $1 AND inventory_reserved = TRUE
		`
		result, err := tx.ExecContext(ctx, release, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		restored = true

		for _, line := range sortedLines(lines) {
			_, ok, err := adjustStock(ctx, tx, line, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				skipped = append(skipped, line)
			}
		}
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return restored, skipped, nil
}

// FindPaidOrderWithProduct returns the most recent paid order of the user containing the product
func (r *OrderRepository) FindPaidOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (uuid.UUID, error) {
	contains, err := json.Marshal([]map[string]string{{"product_id": productID.String()}})
	if err != nil {
		return uuid.Nil, err
	}

	query := `
		SELECT id FROM orders
		WHERE user_id = $1 AND payment_status = 'paid' AND items @> $2::jsonb
		ORDER BY paid_at DESC
		LIMIT 1
	`

	var id uuid.UUID
	if err := r.db.GetContext(ctx, &id, query, userID, string(contains)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, domain.ErrNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}

// CountByStatus groups order counts by status
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	var rows []struct {
		Status domain.OrderStatus `db:"status"`
		Count  int                `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM orders GROUP BY status`); err != nil {
		return nil, err
	}

	counts := make(map[domain.OrderStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// PaidRevenue sums the totals of paid orders
func (r *OrderRepository) PaidRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(total), 0) FROM orders WHERE payment_status = 'paid'`)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *OrderRepository) ensureExists(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

// adjustStock applies delta to the variant (when set) and the product aggregate.
// It returns the remaining level of the most specific row; ok is false when the row is gone.
func adjustStock(ctx context.Context, tx *sqlx.Tx, line domain.StockLine, delta int) (int, bool, error) {
	var remaining int

	if line.VariantID != nil {
		err := tx.QueryRowxContext(ctx,
			`UPDATE product_variants SET inventory = inventory + $1 WHERE id = $2 AND product_id = $3 RETURNING inventory`,
			delta, *line.VariantID, line.ProductID,
		).Scan(&remaining)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, false, nil
			}
			return 0, false, err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET inventory = inventory + $1, updated_at = $2 WHERE id = $3`,
			delta, time.Now(), line.ProductID,
		); err != nil {
			return 0, false, err
		}
		return remaining, true, nil
	}

	err := tx.QueryRowxContext(ctx,
		`UPDATE products SET inventory = inventory + $1, updated_at = $2 WHERE id = $3 RETURNING inventory`,
		delta, time.Now(), line.ProductID,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return remaining, true, nil
}

// sortedLines orders lines by product so concurrent reservations lock rows in the same order
func sortedLines(lines []domain.StockLine) []domain.StockLine {
	out := make([]domain.StockLine, len(lines))
	copy(out, lines)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out
}

func expectOneRow(result sql.Result, none error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return none
	}
	return nil
}
