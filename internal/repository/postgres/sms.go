package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront/internal/domain"
)

const smsColumns = `id, phone, message, type, priority, status, retry_count, max_retries, scheduled_at,
	claimed_at, sent_at, last_error, provider_message_id, created_at, updated_at`

// SMSRepository implements domain.SMSRepository for PostgreSQL
type SMSRepository struct {
	db *sqlx.DB
}

// NewSMSRepository creates a new PostgreSQL SMS queue repository
func NewSMSRepository(db *sqlx.DB) *SMSRepository {
	return &SMSRepository{db: db}
}

// Enqueue stores a pending message
func (r *SMSRepository) Enqueue(ctx context.Context, msg *domain.SMSMessage) error {
	if msg.MaxRetries <= 0 {
		msg.MaxRetries = domain.DefaultSMSMaxRetries
	}
	if msg.ScheduledAt.IsZero() {
		msg.ScheduledAt = time.Now()
	}

	query := `
		INSERT INTO sms_queue (phone, message, type, priority, max_retries, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, retry_count, created_at, updated_at
	`
	return r.db.QueryRowxContext(
		ctx,
		query,
		msg.Phone,
		msg.Message,
		msg.Type,
		msg.Priority,
		msg.MaxRetries,
		msg.ScheduledAt,
	).Scan(&msg.ID, &msg.Status, &msg.RetryCount, &msg.CreatedAt, &msg.UpdatedAt)
}

// GetByID retrieves a message
func (r *SMSRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SMSMessage, error) {
	var msg domain.SMSMessage
	if err := r.db.GetContext(ctx, &msg, `SELECT `+smsColumns+` FROM sms_queue WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// ReclaimStale returns messages stuck in processing since before the cutoff to the pending pool
func (r *SMSRepository) ReclaimStale(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		UPDATE sms_queue
		SET status = 'pending', claimed_at = NULL, updated_at = NOW()
		WHERE status = 'processing' AND claimed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// ClaimDue moves up to limit due messages to processing. SKIP LOCKED keeps overlapping ticks disjoint.
func (r *SMSRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.SMSMessage, error) {
	query := `
		WITH due AS (
			SELECT id FROM sms_queue
			WHERE status = 'pending' AND scheduled_at <= $1
			ORDER BY priority ASC, scheduled_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE sms_queue q
		SET status = 'processing', claimed_at = $1, updated_at = $1
		FROM due
		WHERE q.id = due.id
		RETURNING q.id, q.phone, q.message, q.type, q.priority, q.status, q.retry_count, q.max_retries,
			q.scheduled_at, q.claimed_at, q.sent_at, q.last_error, q.provider_message_id, q.created_at, q.updated_at
	`

	var claimed []*domain.SMSMessage
	if err := r.db.SelectContext(ctx, &claimed, query, now, limit); err != nil {
		return nil, err
	}

	sort.SliceStable(claimed, func(i, j int) bool {
		if claimed[i].Priority != claimed[j].Priority {
			return claimed[i].Priority < claimed[j].Priority
		}
		return claimed[i].ScheduledAt.Before(claimed[j].ScheduledAt)
	})
	return claimed, nil
}

// MarkSent records a successful delivery of a claimed message
func (r *SMSRepository) MarkSent(ctx context.Context, id uuid.UUID, providerID string, at time.Time) error {
	query := `
		UPDATE sms_queue
		SET status = 'sent', sent_at = $1, provider_message_id = NULLIF($2, ''), last_error = NULL, updated_at = $1
		WHERE id = $3 AND status = 'processing'
	`
	result, err := r.db.ExecContext(ctx, query, at, providerID, id)
	if err != nil {
		return err
	}
	return expectOneRow(result, domain.ErrConflict)
}

// MarkAttemptFailed bumps retry_count and either reschedules the message at retryAt or fails it for good
func (r *SMSRepository) MarkAttemptFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt time.Time) (domain.SMSStatus, error) {
	query := `
		UPDATE sms_queue
		SET retry_count = retry_count + 1,
			last_error = $1,
			status = CASE WHEN retry_count + 1 >= max_retries THEN 'failed' ELSE 'pending' END,
			scheduled_at = CASE WHEN retry_count + 1 >= max_retries THEN scheduled_at ELSE $2 END,
			claimed_at = NULL,
			updated_at = NOW()
		WHERE id = $3 AND status = 'processing'
		RETURNING status
	`

	var status domain.SMSStatus
	if err := r.db.QueryRowxContext(ctx, query, errMsg, retryAt, id).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrConflict
		}
		return "", err
	}
	return status, nil
}

// Cancel moves a pending message to cancelled
func (r *SMSRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sms_queue SET status = 'cancelled', updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
		id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.NewError(domain.ErrStateConflict, "only pending messages can be cancelled")
}

// List retrieves messages by status (all when empty), newest first
func (r *SMSRepository) List(ctx context.Context, status domain.SMSStatus, limit, offset int) ([]*domain.SMSMessage, error) {
	query := `SELECT ` + smsColumns + `
		FROM sms_queue
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var messages []*domain.SMSMessage
	if err := r.db.SelectContext(ctx, &messages, query, string(status), limit, offset); err != nil {
		return nil, err
	}
	return messages, nil
}

// CountByStatus counts messages in a status (all when empty)
func (r *SMSRepository) CountByStatus(ctx context.Context, status domain.SMSStatus) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sms_queue WHERE ($1 = '' OR status = $1)`, string(status)); err != nil {
		return 0, err
	}
	return count, nil
}

// AppendLog records a delivery attempt
func (r *SMSRepository) AppendLog(ctx context.Context, entry *domain.SMSLog) error {
	query := `
		INSERT INTO sms_logs (message_id, attempt, status, provider_message_id, error)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(
		ctx,
		query,
		entry.MessageID,
		entry.Attempt,
		entry.Status,
		entry.ProviderMessageID,
		entry.Error,
	).Scan(&entry.ID, &entry.CreatedAt)
}
