package smsqueue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/gateway/sms"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/pkg/metrics"
	"github.com/Pesokrava/storefront/internal/pkg/validator"
	"github.com/Pesokrava/storefront/internal/repository/cache"
)

const (
	tickLockKey = "lock:sms:tick"
	maxBackoff  = 24 * time.Hour

	defaultLimit = 20
	maxLimit     = 100
)

// Options tunes queue processing
type Options struct {
	MaxRetries     int
	BatchSize      int
	StaleAfter     time.Duration
	RetryBaseDelay time.Duration
	LockTTL        time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = domain.DefaultSMSMaxRetries
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = 10 * time.Minute
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = time.Minute
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 2 * time.Minute
	}
	return o
}

// EnqueueInput describes a message to queue
type EnqueueInput struct {
	Phone       string     `json:"phone" validate:"required,e164"`
	Message     string     `json:"message" validate:"required,max=1600"`
	Type        string     `json:"type" validate:"required,max=64"`
	Priority    *int       `json:"priority,omitempty" validate:"omitempty,gte=0,lte=100"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// TickResult summarizes one processing pass
type TickResult struct {
	Skipped   bool `json:"skipped"`
	Reclaimed int  `json:"reclaimed"`
	Claimed   int  `json:"claimed"`
	Sent      int  `json:"sent"`
	Retried   int  `json:"retried"`
	Failed    int  `json:"failed"`
}

// Service runs the SMS priority queue
type Service struct {
	repo    domain.SMSRepository
	sender  sms.Sender
	locks   cache.KeyStore
	opts    Options
	metrics *metrics.Metrics
	logger  *logger.Logger
	now     func() time.Time
}

// NewService creates a new SMS queue service
func NewService(
	repo domain.SMSRepository,
	sender sms.Sender,
	locks cache.KeyStore,
	opts Options,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:    repo,
		sender:  sender,
		locks:   locks,
		opts:    opts.withDefaults(),
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
}

// Enqueue stores a pending message; priority defaults to normal and schedule to now
func (s *Service) Enqueue(ctx context.Context, in EnqueueInput) (*domain.SMSMessage, error) {
	in.Phone = strings.TrimSpace(in.Phone)
	in.Type = strings.TrimSpace(in.Type)
	if details, err := validator.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "invalid sms").WithDetails(details)
	}

	msg := &domain.SMSMessage{
		Phone:       in.Phone,
		Message:     in.Message,
		Type:        in.Type,
		Priority:    domain.SMSPriorityNormal,
		Status:      domain.SMSPending,
		MaxRetries:  s.opts.MaxRetries,
		ScheduledAt: s.now().UTC(),
	}
	if in.Priority != nil {
		msg.Priority = *in.Priority
	}
	if in.ScheduledAt != nil {
		msg.ScheduledAt = in.ScheduledAt.UTC()
	}

	if err := s.repo.Enqueue(ctx, msg); err != nil {
		s.logger.Error("Failed to enqueue sms", err)
		return nil, err
	}

	s.metrics.IncSMS("queued")
	return msg, nil
}

// Cancel withdraws a pending message
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.repo.Cancel(ctx, id)
}

// Get returns a queued message
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.SMSMessage, error) {
	return s.repo.GetByID(ctx, id)
}

// List pages through messages in a status; pending when status is empty
func (s *Service) List(ctx context.Context, status domain.SMSStatus, limit, offset int) ([]*domain.SMSMessage, int, error) {
	if status == "" {
		status = domain.SMSPending
	}
	if !validStatus(status) {
		return nil, 0, domain.NewError(domain.ErrInvalidInput, "unknown sms status")
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	msgs, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByStatus(ctx, status)
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func validStatus(status domain.SMSStatus) bool {
	switch status {
	case domain.SMSPending, domain.SMSProcessing, domain.SMSSent, domain.SMSFailed, domain.SMSCancelled:
		return true
	}
	return false
}

// backoff returns base * 2^retries, capped
func (s *Service) backoff(retries int) time.Duration {
	d := s.opts.RetryBaseDelay
	for i := 0; i < retries; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// ProcessTick delivers due messages once. Overlapping ticks are skipped through a Redis lock;
// claims use SKIP LOCKED so a lost lock still never double-claims.
func (s *Service) ProcessTick(ctx context.Context) (result TickResult, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveJob("sms_tick", time.Since(start), err)
	}()

	lock, err := cache.NewRedisLock(s.locks, tickLockKey, s.opts.LockTTL)
	if err != nil {
		return result, err
	}
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return result, domain.WrapError(domain.ErrDependency, err, "sms tick lock unavailable")
	}
	if !acquired {
		s.logger.Debug("SMS tick already running, skipping")
		result.Skipped = true
		return result, nil
	}
	defer func() {
		// release must outlive a cancelled request context
		if relErr := lock.Release(context.Background()); relErr != nil {
			s.logger.Warnf("Failed to release sms tick lock: %v", relErr)
		}
	}()

	now := s.now().UTC()

	result.Reclaimed, err = s.repo.ReclaimStale(ctx, now.Add(-s.opts.StaleAfter))
	if err != nil {
		s.logger.Error("Failed to reclaim stale sms", err)
		return result, err
	}

	claimed, err := s.repo.ClaimDue(ctx, now, s.opts.BatchSize)
	if err != nil {
		s.logger.Error("Failed to claim due sms", err)
		return result, err
	}
	result.Claimed = len(claimed)

	var errs error
	for _, msg := range claimed {
		status, derr := s.deliver(ctx, msg)
		switch status {
		case domain.SMSSent:
			result.Sent++
		case domain.SMSPending:
			result.Retried++
		case domain.SMSFailed:
			result.Failed++
		}
		errs = multierr.Append(errs, derr)
	}

	if result.Claimed > 0 || result.Reclaimed > 0 {
		s.logger.WithFields(map[string]interface{}{
			"reclaimed": result.Reclaimed,
			"claimed":   result.Claimed,
			"sent":      result.Sent,
			"retried":   result.Retried,
			"failed":    result.Failed,
		}).Info("SMS tick processed")
	}

	return result, errs
}

// deliver sends one claimed message and records the attempt.
// Provider errors are outcomes; only bookkeeping errors are returned.
func (s *Service) deliver(ctx context.Context, msg *domain.SMSMessage) (domain.SMSStatus, error) {
	entry := &domain.SMSLog{
		MessageID: msg.ID,
		Attempt:   msg.RetryCount + 1,
	}

	var (
		status domain.SMSStatus
		err    error
	)

	providerID, sendErr := s.sender.Send(ctx, msg.Phone, msg.Message)
	if sendErr == nil {
		status = domain.SMSSent
		entry.ProviderMessageID = &providerID
		err = s.repo.MarkSent(ctx, msg.ID, providerID, s.now().UTC())
	} else {
		reason := sendErr.Error()
		entry.Error = &reason
		retryAt := s.now().UTC().Add(s.backoff(msg.RetryCount))
		status, err = s.repo.MarkAttemptFailed(ctx, msg.ID, reason, retryAt)
		s.logger.WithFields(map[string]interface{}{
			"sms_id":  msg.ID,
			"attempt": entry.Attempt,
			"status":  status,
		}).Warnf("SMS delivery failed: %v", sendErr)
	}

	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// reclaimed by another tick while sending
			s.logger.Warnf("SMS %s no longer processing", msg.ID)
			return "", nil
		}
		return "", err
	}

	entry.Status = status
	s.metrics.IncSMS(string(status))

	if logErr := s.repo.AppendLog(ctx, entry); logErr != nil {
		return status, logErr
	}
	return status, nil
}
