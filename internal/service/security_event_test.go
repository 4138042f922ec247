package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/mocks"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
	"github.com/kingrain94/tenant-auth-api/internal/utils"
)

type SecurityEventServiceTestSuite struct {
	suite.Suite
	mockRepo      *mocks.Repository
	mockEvents    *mocks.SecurityEventRepository
	mockPublisher *mocks.SecurityEventPublisher
	service       *SecurityEventService
}

func (s *SecurityEventServiceTestSuite) SetupTest() {
	s.mockRepo = new(mocks.Repository)
	s.mockEvents = new(mocks.SecurityEventRepository)
	s.mockPublisher = new(mocks.SecurityEventPublisher)
	s.mockRepo.On("SecurityEvents").Return(s.mockEvents)

	s.service = NewSecurityEventService(s.mockRepo, s.mockPublisher, nil, nil)
}

func TestSecurityEventService(t *testing.T) {
	suite.Run(t, new(SecurityEventServiceTestSuite))
}

func (s *SecurityEventServiceTestSuite) TestRecord_CarriesRequestMeta() {
	// Arrange
	ctx := utils.WithRequestMeta(context.Background(), utils.RequestMeta{
		RequestID: "req-1",
		IPAddress: "10.0.0.7",
		UserAgent: "curl/8.0",
	})
	var published *domain.SecurityEvent
	s.mockPublisher.On("PublishSecurityEvent", mock.Anything, mock.AnythingOfType("*domain.SecurityEvent")).
		Return(nil).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(*domain.SecurityEvent)
		})

	// Act
	s.service.Record(ctx, domain.SecurityEventLogin, "tenant-1", "user-1", "login succeeded")

	// Assert
	s.Require().NotNil(published)
	s.NotEmpty(published.ID)
	s.Equal("tenant-1", published.TenantID)
	s.Equal("user-1", published.UserID)
	s.Equal(domain.SecurityEventLogin, published.Type)
	s.Equal("req-1", published.RequestID)
	s.Equal("10.0.0.7", published.IPAddress)
	s.Equal("curl/8.0", published.UserAgent)
	s.False(published.Timestamp.IsZero())
}

func (s *SecurityEventServiceTestSuite) TestRecord_SurvivesCancelledRequest() {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.mockPublisher.On("PublishSecurityEvent", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return(nil)

	// Act
	s.service.Record(ctx, domain.SecurityEventLogout, "tenant-1", "user-1", "")

	// Assert
	s.mockPublisher.AssertExpectations(s.T())
}

func (s *SecurityEventServiceTestSuite) TestRecord_SkipsWithoutTenant() {
	// Act
	s.service.Record(context.Background(), domain.SecurityEventLoginFailed, "", "", "unknown user")

	// Assert
	s.mockPublisher.AssertNotCalled(s.T(), "PublishSecurityEvent", mock.Anything, mock.Anything)
}

func (s *SecurityEventServiceTestSuite) TestRecord_PublishFailureIsSwallowed() {
	// Arrange
	s.mockPublisher.On("PublishSecurityEvent", mock.Anything, mock.Anything).Return(assertErr)

	// Act & Assert
	s.NotPanics(func() {
		s.service.Record(context.Background(), domain.SecurityEventLogin, "tenant-1", "user-1", "")
	})
}

func (s *SecurityEventServiceTestSuite) TestRecord_NilService() {
	var service *SecurityEventService
	s.NotPanics(func() {
		service.Record(context.Background(), domain.SecurityEventLogin, "tenant-1", "user-1", "")
	})
}

func (s *SecurityEventServiceTestSuite) TestSearch() {
	// Arrange
	ctx := tenancy.WithTenant(context.Background(), testTenant("tenant-1"))
	s.mockEvents.On("Search", ctx, domain.SecurityEventFilter{Type: domain.SecurityEventLoginFailed, Page: 2}).
		Return([]domain.SecurityEvent{{ID: "e1", TenantID: "tenant-1", Type: domain.SecurityEventLoginFailed}}, nil)

	// Act
	events, err := s.service.Search(ctx, dto.SecurityEventQuery{Type: "login_failed", Page: 2})

	// Assert
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("LOGIN_FAILED", events[0].Type)
}

func (s *SecurityEventServiceTestSuite) TestSearch_InvalidType() {
	// Act
	_, err := s.service.Search(context.Background(), dto.SecurityEventQuery{Type: "EXPLODED"})

	// Assert
	s.ErrorIs(err, domain.ErrInvalidSecurityEventType)
	s.mockEvents.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
}

func (s *SecurityEventServiceTestSuite) TestSearch_DateOnlyRangeCoversWholeEndDay() {
	// Arrange
	ctx := tenancy.WithTenant(context.Background(), testTenant("tenant-1"))
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC)
	s.mockEvents.On("Search", ctx, domain.SecurityEventFilter{StartTime: start, EndTime: end}).
		Return([]domain.SecurityEvent{}, nil)

	// Act
	events, err := s.service.Search(ctx, dto.SecurityEventQuery{StartTime: "2025-07-01", EndTime: "2025-07-31"})

	// Assert
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *SecurityEventServiceTestSuite) TestSearch_InvalidTimeRange() {
	testCases := []struct {
		name  string
		query dto.SecurityEventQuery
	}{
		{"unparseable start", dto.SecurityEventQuery{StartTime: "yesterday"}},
		{"unparseable end", dto.SecurityEventQuery{EndTime: "07/31/2025"}},
		{"start after end", dto.SecurityEventQuery{StartTime: "2025-08-01", EndTime: "2025-07-01"}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.service.Search(context.Background(), tc.query)
			s.ErrorIs(err, domain.ErrInvalidTimeRange)
		})
	}
	s.mockEvents.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
}
