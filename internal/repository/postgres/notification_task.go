package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront/internal/domain"
)

const taskColumns = `id, kind, order_id, status, attempts, completed_channels, last_error, created_at, updated_at, completed_at`

// NotificationTaskRepository implements domain.NotificationTaskRepository for PostgreSQL
type NotificationTaskRepository struct {
	db *sqlx.DB
}

// NewNotificationTaskRepository creates a new PostgreSQL notification task repository
func NewNotificationTaskRepository(db *sqlx.DB) *NotificationTaskRepository {
	return &NotificationTaskRepository{db: db}
}

// Create stores a submitted task
func (r *NotificationTaskRepository) Create(ctx context.Context, task *domain.NotificationTask) error {
	query := `
		INSERT INTO notification_tasks (kind, order_id, status)
		VALUES ($1, $2, 'submitted')
		RETURNING id, status, attempts, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query, task.Kind, task.OrderID).
		Scan(&task.ID, &task.Status, &task.Attempts, &task.CreatedAt, &task.UpdatedAt)
}

// GetByID retrieves a task
func (r *NotificationTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.NotificationTask, error) {
	var task domain.NotificationTask
	if err := r.db.GetContext(ctx, &task, `SELECT `+taskColumns+` FROM notification_tasks WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// MarkRunning moves a task to running and bumps its attempt counter. Finished tasks are left alone.
func (r *NotificationTaskRepository) MarkRunning(ctx context.Context, id uuid.UUID) (*domain.NotificationTask, error) {
	query := `
		UPDATE notification_tasks
		SET status = 'running', attempts = attempts + 1, updated_at = NOW()
		WHERE id = $1 AND status IN ('submitted', 'running', 'failed')
		RETURNING ` + taskColumns

	var task domain.NotificationTask
	if err := r.db.QueryRowxContext(ctx, query, id).StructScan(&task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, domain.NewError(domain.ErrStateConflict, "notification task already completed")
		}
		return nil, err
	}
	return &task, nil
}

// MarkSucceeded completes a task
func (r *NotificationTaskRepository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notification_tasks SET status = 'succeeded', last_error = NULL, completed_at = NOW(), updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result, domain.ErrNotFound)
}

// MarkFailed records a failure
func (r *NotificationTaskRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notification_tasks SET status = 'failed', last_error = $1, completed_at = NOW(), updated_at = NOW() WHERE id = $2`,
		errMsg, id,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result, domain.ErrNotFound)
}

// CompleteChannel records that a channel needs no further attempts. Repeats are no-ops.
func (r *NotificationTaskRepository) CompleteChannel(ctx context.Context, id uuid.UUID, channel string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notification_tasks
		SET completed_channels = array_append(completed_channels, $1), updated_at = NOW()
		WHERE id = $2 AND NOT ($1 = ANY(completed_channels))
	`, channel, id)
	return err
}

var (
	_ domain.ProductRepository          = (*ProductRepository)(nil)
	_ domain.OrderRepository            = (*OrderRepository)(nil)
	_ domain.UserRepository             = (*UserRepository)(nil)
	_ domain.ReviewRepository           = (*ReviewRepository)(nil)
	_ domain.RefundRepository           = (*RefundRepository)(nil)
	_ domain.SMSRepository              = (*SMSRepository)(nil)
	_ domain.NotificationTaskRepository = (*NotificationTaskRepository)(nil)
)
