package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/Pesokrava/storefront/internal/domain"
)

func TestRefundRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRefundRepository(db)

	mock.ExpectQuery("INSERT INTO refund_requests").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.RefundRequest{
		OrderID: uuid.New(),
		UserID:  uuid.New(),
		Reason:  "wrong size",
	})

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundRepository_Approve(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRefundRepository(db)
	decision := domain.RefundDecision{
		RefundID: uuid.New(),
		OrderID:  uuid.New(),
		AdminID:  uuid.New(),
		At:       time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE refund_requests").
		WithArgs(domain.RefundApproved, nil, decision.AdminID, decision.At, decision.RefundID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders SET payment_status = 'refunded'").
		WithArgs(decision.OrderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Approve(context.Background(), decision)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundRepository_Approve_NotPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRefundRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE refund_requests").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), domain.RefundDecision{RefundID: uuid.New(), OrderID: uuid.New()})

	assert.ErrorIs(t, err, domain.ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundRepository_Resubmit_NotRejected(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRefundRepository(db)

	mock.ExpectQuery("UPDATE refund_requests").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Resubmit(context.Background(), uuid.New(), "changed my mind")

	assert.ErrorIs(t, err, domain.ErrStateConflict)
}
