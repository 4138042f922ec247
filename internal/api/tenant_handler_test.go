package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/service"
	"github.com/kingrain94/tenant-auth-api/internal/utils"
)

type TenantHandlerTestSuite struct {
	suite.Suite
	mockService *MockTenantService
	handler     *TenantHandler
	principal   *domain.Principal
}

type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) GetByID(ctx context.Context, principal *domain.Principal, id string) (*dto.TenantResponse, error) {
	args := m.Called(ctx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TenantResponse), args.Error(1)
}

func (m *MockTenantService) Update(ctx context.Context, principal *domain.Principal, id string, req dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	args := m.Called(ctx, principal, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TenantResponse), args.Error(1)
}

func (m *MockTenantService) ChangeStatus(ctx context.Context, principal *domain.Principal, id string, req dto.ChangeTenantStatusRequest) (*dto.TenantResponse, error) {
	args := m.Called(ctx, principal, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TenantResponse), args.Error(1)
}

func (s *TenantHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockService = new(MockTenantService)
	s.handler = NewTenantHandler(s.mockService)
	s.principal = &domain.Principal{
		User:   &domain.User{ID: "admin-1", TenantID: "tenant1", Roles: domain.RoleSet{domain.RoleAdmin}},
		Tenant: &domain.Tenant{ID: "tenant1"},
	}
}

func TestTenantHandler(t *testing.T) {
	suite.Run(t, new(TenantHandlerTestSuite))
}

func (s *TenantHandlerTestSuite) newContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, path, bytes.NewBuffer(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "tenant1"}}
	c.Set(string(utils.PrincipalKey), s.principal)
	return c, w
}

func (s *TenantHandlerTestSuite) TestGetTenant_Success() {
	// Arrange
	now := time.Now()
	expected := &dto.TenantResponse{
		ID:        "tenant1",
		Name:      "Acme Logistics",
		Subdomain: "acme",
		Status:    string(domain.TenantStatusActive),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mockService.On("GetByID", mock.Anything, s.principal, "tenant1").Return(expected, nil)
	c, w := s.newContext(http.MethodGet, "/tenants/tenant1", nil)

	// Act
	s.handler.GetTenant(c)

	// Assert
	s.Equal(http.StatusOK, w.Code)
	var response dto.TenantResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	s.NoError(err)
	s.Equal(expected.ID, response.ID)
	s.Equal(expected.Subdomain, response.Subdomain)
	s.mockService.AssertExpectations(s.T())
}

func (s *TenantHandlerTestSuite) TestGetTenant_OtherTenantIsNotFound() {
	// Arrange
	s.mockService.On("GetByID", mock.Anything, s.principal, "tenant1").Return(nil, service.ErrTenantNotFound)
	c, w := s.newContext(http.MethodGet, "/tenants/tenant1", nil)

	// Act
	s.handler.GetTenant(c)

	// Assert
	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"error":"Tenant not found"}`, w.Body.String())
}

func (s *TenantHandlerTestSuite) TestUpdateTenant_Success() {
	// Arrange
	name := "Acme Logistics Inc."
	req := dto.UpdateTenantRequest{Name: &name}
	s.mockService.On("Update", mock.Anything, s.principal, "tenant1", req).
		Return(&dto.TenantResponse{ID: "tenant1", Name: name}, nil)
	c, w := s.newContext(http.MethodPatch, "/tenants/tenant1", req)

	// Act
	s.handler.UpdateTenant(c)

	// Assert
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), name)
	s.mockService.AssertExpectations(s.T())
}

func (s *TenantHandlerTestSuite) TestUpdateTenant_InvalidRateLimit() {
	// Arrange
	c, w := s.newContext(http.MethodPatch, "/tenants/tenant1", map[string]int{"rate_limit": 0})

	// Act
	s.handler.UpdateTenant(c)

	// Assert
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.mockService.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *TenantHandlerTestSuite) TestUpdateTenant_Denied() {
	// Arrange
	name := "Renamed"
	s.mockService.On("Update", mock.Anything, s.principal, "tenant1", mock.Anything).Return(nil, service.ErrAccessDenied)
	c, w := s.newContext(http.MethodPatch, "/tenants/tenant1", dto.UpdateTenantRequest{Name: &name})

	// Act
	s.handler.UpdateTenant(c)

	// Assert
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *TenantHandlerTestSuite) TestChangeTenantStatus_Success() {
	// Arrange
	req := dto.ChangeTenantStatusRequest{Status: "suspended"}
	s.mockService.On("ChangeStatus", mock.Anything, s.principal, "tenant1", req).
		Return(&dto.TenantResponse{ID: "tenant1", Status: "suspended"}, nil)
	c, w := s.newContext(http.MethodPost, "/tenants/tenant1/status", req)

	// Act
	s.handler.ChangeTenantStatus(c)

	// Assert
	s.Equal(http.StatusOK, w.Code)
	var response dto.TenantResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Equal("suspended", response.Status)
}

func (s *TenantHandlerTestSuite) TestChangeTenantStatus_UnknownStatus() {
	// Arrange
	c, w := s.newContext(http.MethodPost, "/tenants/tenant1/status", map[string]string{"status": "deleted"})

	// Act
	s.handler.ChangeTenantStatus(c)

	// Assert
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}
