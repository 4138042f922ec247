package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/metrics"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/internal/utils"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

const publishTimeout = 2 * time.Second

//go:generate mockery --name SecurityEventPublisher --output ../mocks
type SecurityEventPublisher interface {
	PublishSecurityEvent(ctx context.Context, event *domain.SecurityEvent) error
}

// SecurityEventService records authentication events. Publishing is best
// effort and never fails the request that produced the event.
type SecurityEventService struct {
	repo      repository.Repository
	publisher SecurityEventPublisher
	metrics   *metrics.Collector
	logger    *logger.Logger
	now       func() time.Time
}

func NewSecurityEventService(repo repository.Repository, publisher SecurityEventPublisher, m *metrics.Collector, log *logger.Logger) *SecurityEventService {
	if log == nil {
		log = logger.NewNop()
	}
	return &SecurityEventService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    log,
		now:       time.Now,
	}
}

func (s *SecurityEventService) Record(ctx context.Context, eventType domain.SecurityEventType, tenantID, userID, message string) {
	if s == nil {
		return
	}
	// events are stored per tenant; without one there is nowhere to put them
	if tenantID == "" || s.publisher == nil {
		s.metrics.RecordSecurityEvent(string(eventType), "skipped")
		return
	}

	meta := utils.GetRequestMeta(ctx)
	event := &domain.SecurityEvent{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		UserID:    userID,
		Type:      eventType,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
		Message:   message,
		Timestamp: s.now().UTC(),
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishSecurityEvent(pubCtx, event); err != nil {
		logger.FromContext(ctx, s.logger).Warn("failed to publish security event",
			zap.String("type", string(eventType)),
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		s.metrics.RecordSecurityEvent(string(eventType), "failed")
		return
	}
	s.metrics.RecordSecurityEvent(string(eventType), "published")
}

// Search returns events of the tenant bound to ctx
func (s *SecurityEventService) Search(ctx context.Context, query dto.SecurityEventQuery) ([]dto.SecurityEventResponse, error) {
	filter, err := query.ToFilter()
	if err != nil {
		return nil, err
	}
	if filter.Type != "" && !domain.IsValidSecurityEventType(string(filter.Type)) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSecurityEventType, query.Type)
	}

	events, err := s.repo.SecurityEvents().Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search security events: %w", err)
	}
	return dto.FromSecurityEvents(events), nil
}
