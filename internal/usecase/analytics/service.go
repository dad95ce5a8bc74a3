package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

const (
	// maxSeriesRange caps time-series queries
	maxSeriesRange = 90 * 24 * time.Hour

	dashboardListLimit = 10
)

// EventStream forwards product events to an external analytics pipeline
type EventStream interface {
	Publish(ctx context.Context, events ...*domain.ProductEvent) error
}

// Dashboard is the admin overview
type Dashboard struct {
	OrdersByStatus map[domain.OrderStatus]int `json:"orders_by_status"`
	PaidRevenue    decimal.Decimal            `json:"paid_revenue"`
	PendingRefunds int                        `json:"pending_refunds"`
	QueuedSMS      int                        `json:"queued_sms"`
	LowStock       []*domain.Product          `json:"low_stock"`
	TopProducts    []*domain.Product          `json:"top_products"`
	GeneratedAt    time.Time                  `json:"generated_at"`
}

// Service records product events and serves aggregates
type Service struct {
	events   domain.ProductEventRepository
	products domain.ProductRepository
	orders   domain.OrderRepository
	refunds  domain.RefundRepository
	sms      domain.SMSRepository
	stream   EventStream
	lowStock int
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a new analytics service; stream may be nil
func NewService(
	events domain.ProductEventRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	refunds domain.RefundRepository,
	sms domain.SMSRepository,
	stream EventStream,
	lowStockThreshold int,
	log *logger.Logger,
) *Service {
	return &Service{
		events:   events,
		products: products,
		orders:   orders,
		refunds:  refunds,
		sms:      sms,
		stream:   stream,
		lowStock: lowStockThreshold,
		logger:   log,
		now:      time.Now,
	}
}

// Record appends one event and bumps the product counters
func (s *Service) Record(ctx context.Context, productID uuid.UUID, eventType domain.EventType, quantity int, userID *uuid.UUID) error {
	if !eventType.Valid() || quantity <= 0 {
		return domain.ErrInvalidInput
	}

	event := &domain.ProductEvent{
		ProductID: productID,
		Type:      eventType,
		Quantity:  quantity,
		UserID:    userID,
		Timestamp: s.now().UTC(),
	}
	return s.record(ctx, event)
}

// RecordPurchase records one purchase event per order line.
// Every line is attempted; failures are combined.
func (s *Service) RecordPurchase(ctx context.Context, order *domain.Order) error {
	var errs error
	now := s.now().UTC()
	orderID := order.ID
	for _, item := range order.Items {
		event := &domain.ProductEvent{
			ProductID: item.ProductID,
			Type:      domain.EventPurchase,
			Quantity:  item.Quantity,
			UserID:    order.UserID,
			OrderID:   &orderID,
			Timestamp: now,
		}
		errs = multierr.Append(errs, s.record(ctx, event))
	}
	return errs
}

func (s *Service) record(ctx context.Context, event *domain.ProductEvent) error {
	if err := s.events.Append(ctx, event); err != nil {
		s.logger.Error("Failed to append product event", err)
		return err
	}

	if err := s.products.IncrementCounter(ctx, event.ProductID, event.Type, event.Quantity); err != nil {
		s.logger.WithFields(map[string]any{
			"product_id": event.ProductID,
			"type":       event.Type,
		}).Error("Failed to increment product counter", err)
		return err
	}

	if s.stream != nil {
		if err := s.stream.Publish(ctx, event); err != nil {
			s.logger.Warnf("Failed to stream product event %s: %v", event.ID, err)
		}
	}
	return nil
}

// ProductTimeSeries aggregates a product's events per hour or day
func (s *Service) ProductTimeSeries(ctx context.Context, productID uuid.UUID, from, to time.Time, interval string) ([]domain.EventBucket, error) {
	if interval == "" {
		interval = "day"
	}
	if interval != "day" && interval != "hour" {
		return nil, domain.NewError(domain.ErrInvalidInput, "interval must be hour or day")
	}
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-30 * 24 * time.Hour)
	}
	if !from.Before(to) {
		return nil, domain.NewError(domain.ErrInvalidInput, "from must be before to")
	}
	if to.Sub(from) > maxSeriesRange {
		return nil, domain.NewError(domain.ErrInvalidInput, "range is limited to 90 days")
	}

	buckets, err := s.events.Buckets(ctx, productID, from, to, interval)
	if err != nil {
		s.logger.Error("Failed to aggregate product events", err)
		return nil, err
	}
	return buckets, nil
}

// Dashboard gathers the admin overview with the queries running in parallel
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{GeneratedAt: s.now().UTC()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.orders.CountByStatus(gctx)
		d.OrdersByStatus = counts
		return err
	})
	g.Go(func() error {
		revenue, err := s.orders.PaidRevenue(gctx)
		d.PaidRevenue = revenue
		return err
	})
	g.Go(func() error {
		n, err := s.refunds.Count(gctx, domain.RefundListFilter{Status: domain.RefundPending})
		d.PendingRefunds = n
		return err
	})
	g.Go(func() error {
		n, err := s.sms.CountByStatus(gctx, domain.SMSPending)
		d.QueuedSMS = n
		return err
	})
	g.Go(func() error {
		products, err := s.products.LowStock(gctx, s.lowStock, dashboardListLimit)
		d.LowStock = products
		return err
	})
	g.Go(func() error {
		products, err := s.products.List(gctx, domain.ProductListFilter{Sort: domain.SortPopular, Limit: dashboardListLimit})
		d.TopProducts = products
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build dashboard", err)
		return nil, err
	}
	return d, nil
}
