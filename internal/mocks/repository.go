// Package mocks holds testify mocks of the domain repositories shared by service tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/storefront/internal/domain"
)

// ProductRepository is a mock implementation of domain.ProductRepository
type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.Product), args.Error(1)
}

func (m *ProductRepository) List(ctx context.Context, filter domain.ProductListFilter) ([]*domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *ProductRepository) Count(ctx context.Context, filter domain.ProductListFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProductRepository) IncrementCounter(ctx context.Context, id uuid.UUID, eventType domain.EventType, quantity int) error {
	return m.Called(ctx, id, eventType, quantity).Error(0)
}

func (m *ProductRepository) LowStock(ctx context.Context, threshold, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, threshold, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

// ProductSearchIndex is a mock implementation of domain.ProductSearchIndex
type ProductSearchIndex struct {
	mock.Mock
}

func (m *ProductSearchIndex) Index(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *ProductSearchIndex) Remove(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProductSearchIndex) Search(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// CartRepository is a mock implementation of domain.CartRepository
type CartRepository struct {
	mock.Mock
}

func (m *CartRepository) GetByOwner(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *CartRepository) DeleteByOwner(ctx context.Context, owner domain.CartOwner) error {
	return m.Called(ctx, owner).Error(0)
}

// OrderRepository is a mock implementation of domain.OrderRepository
type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderRepository) GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderRepository) List(ctx context.Context, filter domain.OrderListFilter) ([]*domain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *OrderRepository) Count(ctx context.Context, filter domain.OrderListFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *OrderRepository) SetPaymentReference(ctx context.Context, id uuid.UUID, reference string) error {
	return m.Called(ctx, id, reference).Error(0)
}

func (m *OrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, confirmation domain.PaymentConfirmation) (bool, error) {
	args := m.Called(ctx, id, confirmation)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) MarkPaymentFailed(ctx context.Context, id uuid.UUID, reference string) error {
	return m.Called(ctx, id, reference).Error(0)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	return m.Called(ctx, order, from).Error(0)
}

func (m *OrderRepository) ReserveInventory(ctx context.Context, id uuid.UUID, lines []domain.StockLine) (bool, []domain.StockAdjustment, error) {
	args := m.Called(ctx, id, lines)
	var adj []domain.StockAdjustment
	if args.Get(1) != nil {
		adj = args.Get(1).([]domain.StockAdjustment)
	}
	return args.Bool(0), adj, args.Error(2)
}

func (m *OrderRepository) RestoreInventory(ctx context.Context, id uuid.UUID, lines []domain.StockLine) (bool, []domain.StockLine, error) {
	args := m.Called(ctx, id, lines)
	var skipped []domain.StockLine
	if args.Get(1) != nil {
		skipped = args.Get(1).([]domain.StockLine)
	}
	return args.Bool(0), skipped, args.Error(2)
}

func (m *OrderRepository) FindPaidOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, userID, productID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.OrderStatus]int), args.Error(1)
}

func (m *OrderRepository) PaidRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// UserRepository is a mock implementation of domain.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

// ReviewRepository is a mock implementation of domain.ReviewRepository
type ReviewRepository struct {
	mock.Mock
}

func (m *ReviewRepository) Upsert(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *ReviewRepository) GetVisibleByProductID(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	args := m.Called(ctx, productID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *ReviewRepository) CountVisibleByProductID(ctx context.Context, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *ReviewRepository) ListByStatus(ctx context.Context, status domain.ReviewStatus, limit, offset int) ([]*domain.Review, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *ReviewRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ReviewRepository) AddReport(ctx context.Context, reviewID, reporterID uuid.UUID, reason string, threshold int) (*domain.ReportOutcome, error) {
	args := m.Called(ctx, reviewID, reporterID, reason, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportOutcome), args.Error(1)
}

func (m *ReviewRepository) AddHelpfulVote(ctx context.Context, reviewID, voterID uuid.UUID) (int, error) {
	args := m.Called(ctx, reviewID, voterID)
	return args.Int(0), args.Error(1)
}

func (m *ReviewRepository) RecomputeProductRating(ctx context.Context, productID uuid.UUID) (*domain.RatingAggregate, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingAggregate), args.Error(1)
}

// RefundRepository is a mock implementation of domain.RefundRepository
type RefundRepository struct {
	mock.Mock
}

func (m *RefundRepository) Create(ctx context.Context, refund *domain.RefundRequest) error {
	return m.Called(ctx, refund).Error(0)
}

func (m *RefundRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundRequest), args.Error(1)
}

func (m *RefundRepository) GetByOrderAndUser(ctx context.Context, orderID, userID uuid.UUID) (*domain.RefundRequest, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundRequest), args.Error(1)
}

func (m *RefundRepository) Resubmit(ctx context.Context, id uuid.UUID, reason string) (*domain.RefundRequest, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundRequest), args.Error(1)
}

func (m *RefundRepository) Approve(ctx context.Context, decision domain.RefundDecision) error {
	return m.Called(ctx, decision).Error(0)
}

func (m *RefundRepository) Reject(ctx context.Context, decision domain.RefundDecision) error {
	return m.Called(ctx, decision).Error(0)
}

func (m *RefundRepository) List(ctx context.Context, filter domain.RefundListFilter) ([]*domain.RefundRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RefundRequest), args.Error(1)
}

func (m *RefundRepository) Count(ctx context.Context, filter domain.RefundListFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

// SMSRepository is a mock implementation of domain.SMSRepository
type SMSRepository struct {
	mock.Mock
}

func (m *SMSRepository) Enqueue(ctx context.Context, msg *domain.SMSMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *SMSRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SMSMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SMSMessage), args.Error(1)
}

func (m *SMSRepository) ReclaimStale(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

func (m *SMSRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.SMSMessage, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SMSMessage), args.Error(1)
}

func (m *SMSRepository) MarkSent(ctx context.Context, id uuid.UUID, providerID string, at time.Time) error {
	return m.Called(ctx, id, providerID, at).Error(0)
}

func (m *SMSRepository) MarkAttemptFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt time.Time) (domain.SMSStatus, error) {
	args := m.Called(ctx, id, errMsg, retryAt)
	return args.Get(0).(domain.SMSStatus), args.Error(1)
}

func (m *SMSRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SMSRepository) List(ctx context.Context, status domain.SMSStatus, limit, offset int) ([]*domain.SMSMessage, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SMSMessage), args.Error(1)
}

func (m *SMSRepository) CountByStatus(ctx context.Context, status domain.SMSStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *SMSRepository) AppendLog(ctx context.Context, entry *domain.SMSLog) error {
	return m.Called(ctx, entry).Error(0)
}

// NotificationTaskRepository is a mock implementation of domain.NotificationTaskRepository
type NotificationTaskRepository struct {
	mock.Mock
}

func (m *NotificationTaskRepository) Create(ctx context.Context, task *domain.NotificationTask) error {
	return m.Called(ctx, task).Error(0)
}

func (m *NotificationTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.NotificationTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationTask), args.Error(1)
}

func (m *NotificationTaskRepository) MarkRunning(ctx context.Context, id uuid.UUID) (*domain.NotificationTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationTask), args.Error(1)
}

func (m *NotificationTaskRepository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *NotificationTaskRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return m.Called(ctx, id, errMsg).Error(0)
}

func (m *NotificationTaskRepository) CompleteChannel(ctx context.Context, id uuid.UUID, channel string) error {
	return m.Called(ctx, id, channel).Error(0)
}

// ProductEventRepository is a mock implementation of domain.ProductEventRepository
type ProductEventRepository struct {
	mock.Mock
}

func (m *ProductEventRepository) Append(ctx context.Context, events ...*domain.ProductEvent) error {
	return m.Called(ctx, events).Error(0)
}

func (m *ProductEventRepository) Buckets(ctx context.Context, productID uuid.UUID, from, to time.Time, interval string) ([]domain.EventBucket, error) {
	args := m.Called(ctx, productID, from, to, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EventBucket), args.Error(1)
}
