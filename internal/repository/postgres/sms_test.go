package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront/internal/domain"
)

func TestSMSRepository_ClaimDue_OrdersByPriority(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSMSRepository(db)
	now := time.Now()
	low, high := uuid.New(), uuid.New()

	mock.ExpectQuery("WITH due AS").
		WithArgs(now, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "phone", "priority", "status", "scheduled_at"}).
			AddRow(low.String(), "+15550001", 10, "processing", now.Add(-time.Minute)).
			AddRow(high.String(), "+15550002", 1, "processing", now))

	claimed, err := repo.ClaimDue(context.Background(), now, 10)

	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, high, claimed[0].ID)
	assert.Equal(t, low, claimed[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSMSRepository_MarkAttemptFailed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSMSRepository(db)
	id := uuid.New()
	retryAt := time.Now().Add(time.Minute)

	mock.ExpectQuery("UPDATE sms_queue").
		WithArgs("carrier down", retryAt, id).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))

	status, err := repo.MarkAttemptFailed(context.Background(), id, "carrier down", retryAt)

	require.NoError(t, err)
	assert.Equal(t, domain.SMSPending, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSMSRepository_MarkAttemptFailed_LostClaim(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSMSRepository(db)

	mock.ExpectQuery("UPDATE sms_queue").WillReturnRows(sqlmock.NewRows([]string{"status"}))

	_, err := repo.MarkAttemptFailed(context.Background(), uuid.New(), "x", time.Now())

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSMSRepository_Cancel_NotPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSMSRepository(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE sms_queue SET status = 'cancelled'").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM sms_queue").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(id.String(), "sent"))

	err := repo.Cancel(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSMSRepository_ReclaimStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSMSRepository(db)
	cutoff := time.Now().Add(-5 * time.Minute)

	mock.ExpectExec("UPDATE sms_queue").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ReclaimStale(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
