package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/mocks"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
)

type ClientServiceTestSuite struct {
	suite.Suite
	mockRepo     *mocks.Repository
	mockClient   *mocks.ClientRepository
	mockLocation *mocks.LocationRepository
	clients      *ClientService
	locations    *LocationService

	ctx        context.Context
	tenant     *domain.Tenant
	dispatcher *domain.User
	member     *domain.User
	client     *domain.Client
}

func (s *ClientServiceTestSuite) SetupTest() {
	s.mockRepo = new(mocks.Repository)
	s.mockClient = new(mocks.ClientRepository)
	s.mockLocation = new(mocks.LocationRepository)
	s.mockRepo.On("Client").Return(s.mockClient)
	s.mockRepo.On("Location").Return(s.mockLocation)

	s.clients = NewClientService(s.mockRepo, nil)
	s.locations = NewLocationService(s.mockRepo, s.clients, nil)

	s.tenant = testTenant("tenant-1")
	s.dispatcher = testUser("dispatcher-1", s.tenant, domain.RoleDispatcher)
	s.member = testUser("member-1", s.tenant)
	s.client = &domain.Client{ID: "client-1", TenantID: s.tenant.ID, CompanyName: "Northwind", IsActive: true}
	s.ctx = tenancy.WithTenant(context.Background(), s.tenant)
}

func TestClientService(t *testing.T) {
	suite.Run(t, new(ClientServiceTestSuite))
}

func (s *ClientServiceTestSuite) createRequest() dto.CreateClientRequest {
	return dto.CreateClientRequest{
		CompanyName: " Northwind ",
		Email:       "OPS@northwind.test",
		BillingAddress: dto.AddressRequest{
			Line1: "100 King St W", City: "Toronto", State: "ON", PostalCode: "M5X 1A9",
		},
	}
}

func (s *ClientServiceTestSuite) TestCreate_Dispatcher() {
	// Arrange
	s.mockClient.On("Create", s.ctx, mock.MatchedBy(func(c *domain.Client) bool {
		return c.TenantID == s.tenant.ID
	})).Return(nil)

	// Act
	resp, err := s.clients.Create(s.ctx, principalFor(s.dispatcher), s.createRequest())

	// Assert
	s.Require().NoError(err)
	s.Equal("Northwind", resp.CompanyName)
	s.Equal("ops@northwind.test", resp.Email)
	s.mockClient.AssertExpectations(s.T())
}

func (s *ClientServiceTestSuite) TestCreate_MemberDenied() {
	// Act
	_, err := s.clients.Create(s.ctx, principalFor(s.member), s.createRequest())

	// Assert
	s.ErrorIs(err, ErrAccessDenied)
	s.mockClient.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *ClientServiceTestSuite) TestGetByID_MemberMayView() {
	// Arrange
	s.mockClient.On("GetByID", s.ctx, s.client.ID).Return(s.client, nil)

	// Act
	resp, err := s.clients.GetByID(s.ctx, principalFor(s.member), s.client.ID)

	// Assert
	s.Require().NoError(err)
	s.Equal(s.client.ID, resp.ID)
}

func (s *ClientServiceTestSuite) TestGetByID_OtherTenantLooksMissing() {
	// Arrange
	foreign := &domain.Client{ID: "client-9", TenantID: "tenant-2"}
	s.mockClient.On("GetByID", s.ctx, foreign.ID).Return(foreign, nil)

	// Act
	_, err := s.clients.GetByID(s.ctx, principalFor(s.dispatcher), foreign.ID)

	// Assert
	s.ErrorIs(err, ErrClientNotFound)
}

func (s *ClientServiceTestSuite) TestUpdate() {
	// Arrange
	name := "Northwind Traders"
	inactive := false
	s.mockClient.On("GetByID", s.ctx, s.client.ID).Return(s.client, nil)
	s.mockClient.On("Update", s.ctx, s.client).Return(nil)

	// Act
	resp, err := s.clients.Update(s.ctx, principalFor(s.dispatcher), s.client.ID, dto.UpdateClientRequest{CompanyName: &name, IsActive: &inactive})

	// Assert
	s.Require().NoError(err)
	s.Equal(name, resp.CompanyName)
	s.False(resp.IsActive)
}

func (s *ClientServiceTestSuite) TestDelete_RequiresAdmin() {
	// Arrange
	s.mockClient.On("GetByID", s.ctx, s.client.ID).Return(s.client, nil)

	// Act
	err := s.clients.Delete(s.ctx, principalFor(s.dispatcher), s.client.ID)

	// Assert
	s.ErrorIs(err, ErrAccessDenied)
	s.mockClient.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything)
}

func (s *ClientServiceTestSuite) TestDelete_Admin() {
	// Arrange
	admin := testUser("admin-1", s.tenant, domain.RoleAdmin)
	s.mockClient.On("GetByID", s.ctx, s.client.ID).Return(s.client, nil)
	s.mockClient.On("Delete", s.ctx, s.client.ID).Return(nil)

	// Act
	err := s.clients.Delete(s.ctx, principalFor(admin), s.client.ID)

	// Assert
	s.NoError(err)
}

func (s *ClientServiceTestSuite) TestList_RequiresPrincipal() {
	_, err := s.clients.List(s.ctx, nil, dto.ListClientsRequest{})
	s.ErrorIs(err, ErrNotAuthenticated)
}

func (s *ClientServiceTestSuite) TestLocationCreate_DefaultsCountry() {
	// Arrange
	s.mockClient.On("GetByID", s.ctx, s.client.ID).Return(s.client, nil)
	s.mockLocation.On("Create", s.ctx, mock.AnythingOfType("*domain.Location")).Return(nil)

	// Act
	resp, err := s.locations.Create(s.ctx, principalFor(s.dispatcher), s.client.ID, dto.CreateLocationRequest{
		Address:   dto.AddressRequest{Line1: "1 Dock Rd", City: "Hamilton", State: "ON", PostalCode: "L8L 1A1"},
		IsPrimary: true,
	})

	// Assert
	s.Require().NoError(err)
	s.Equal(s.client.ID, resp.ClientID)
	s.Equal(domain.DefaultCountry, resp.Address.Country)
	s.True(resp.IsPrimary)
}

func (s *ClientServiceTestSuite) TestLocationCreate_MissingClient() {
	// Arrange
	s.mockClient.On("GetByID", s.ctx, "ghost").Return(nil, repository.ErrNotFound)

	// Act
	_, err := s.locations.Create(s.ctx, principalFor(s.dispatcher), "ghost", dto.CreateLocationRequest{})

	// Assert
	s.ErrorIs(err, ErrClientNotFound)
	s.mockLocation.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *ClientServiceTestSuite) TestLocationCreate_MemberDenied() {
	// Arrange
	s.mockClient.On("GetByID", s.ctx, s.client.ID).Return(s.client, nil)

	// Act
	_, err := s.locations.Create(s.ctx, principalFor(s.member), s.client.ID, dto.CreateLocationRequest{})

	// Assert
	s.ErrorIs(err, ErrAccessDenied)
}

func (s *ClientServiceTestSuite) TestLocationGetByID_OtherTenantLooksMissing() {
	// Arrange
	foreign := &domain.Location{ID: "loc-9", TenantID: "tenant-2", ClientID: "client-9"}
	s.mockLocation.On("GetByID", s.ctx, foreign.ID).Return(foreign, nil)

	// Act
	_, err := s.locations.GetByID(s.ctx, principalFor(s.dispatcher), foreign.ID)

	// Assert
	s.ErrorIs(err, ErrLocationNotFound)
}

func (s *ClientServiceTestSuite) TestLocationListByClient() {
	// Arrange
	s.mockClient.On("GetByID", s.ctx, s.client.ID).Return(s.client, nil)
	s.mockLocation.On("ListByClient", s.ctx, s.client.ID).Return([]domain.Location{
		{ID: "loc-1", TenantID: s.tenant.ID, ClientID: s.client.ID},
	}, nil)

	// Act
	locations, err := s.locations.ListByClient(s.ctx, principalFor(s.member), s.client.ID)

	// Assert
	s.Require().NoError(err)
	s.Len(locations, 1)
}
