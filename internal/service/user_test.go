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

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo      *mocks.Repository
	mockUser      *mocks.UserRepository
	mockRefresh   *mocks.RefreshTokenRepository
	mockPublisher *mocks.SecurityEventPublisher
	service       *UserService

	ctx    context.Context
	tenant *domain.Tenant
	admin  *domain.User
	member *domain.User
}

func (s *UserServiceTestSuite) SetupTest() {
	s.mockRepo = new(mocks.Repository)
	s.mockUser = new(mocks.UserRepository)
	s.mockRefresh = new(mocks.RefreshTokenRepository)
	s.mockPublisher = new(mocks.SecurityEventPublisher)

	s.mockRepo.On("User").Return(s.mockUser)
	s.mockRepo.On("RefreshToken").Return(s.mockRefresh)

	events := NewSecurityEventService(s.mockRepo, s.mockPublisher, nil, nil)
	s.service = NewUserService(s.mockRepo, testHasher, NewRefreshTokenService(s.mockRepo, 0), nil, events, nil)

	s.tenant = testTenant("tenant-1")
	s.admin = testUser("admin-1", s.tenant, domain.RoleAdmin)
	s.member = testUser("member-1", s.tenant)
	s.ctx = tenancy.WithTenant(context.Background(), s.tenant)
}

func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func eventOfType(t domain.SecurityEventType) interface{} {
	return mock.MatchedBy(func(e *domain.SecurityEvent) bool {
		return e.Type == t
	})
}

func (s *UserServiceTestSuite) TestCreate_Success() {
	// Arrange
	s.mockUser.On("EmailExists", s.ctx, "new@example.com", "").Return(false, nil)
	s.mockUser.On("Create", s.ctx, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).TenantID = s.tenant.ID
	})

	// Act
	resp, err := s.service.Create(s.ctx, principalFor(s.admin), dto.CreateUserRequest{
		Email:     "new@example.com",
		Password:  "long-enough-password",
		FirstName: "New",
		LastName:  "User",
		Roles:     []string{"ROLE_DISPATCHER"},
	})

	// Assert
	s.Require().NoError(err)
	s.Equal("new@example.com", resp.Email)
	s.Equal(s.tenant.ID, resp.TenantID)
	s.Equal([]string{"ROLE_USER", "ROLE_DISPATCHER"}, resp.Roles)
	s.True(resp.IsActive)
	s.mockUser.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestCreate_RequiresAdmin() {
	// Act
	_, err := s.service.Create(s.ctx, principalFor(s.member), dto.CreateUserRequest{Email: "x@example.com", Password: "long-enough-password"})

	// Assert
	s.ErrorIs(err, ErrAccessDenied)
	s.mockUser.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestCreate_EmailTakenInTenant() {
	// Arrange
	s.mockUser.On("EmailExists", s.ctx, "taken@example.com", "").Return(true, nil)

	// Act
	_, err := s.service.Create(s.ctx, principalFor(s.admin), dto.CreateUserRequest{Email: "taken@example.com", Password: "long-enough-password"})

	// Assert
	s.ErrorIs(err, ErrEmailAlreadyExists)
}

func (s *UserServiceTestSuite) TestCreate_DuplicateOnInsert() {
	// Arrange
	s.mockUser.On("EmailExists", s.ctx, "race@example.com", "").Return(false, nil)
	s.mockUser.On("Create", s.ctx, mock.Anything).Return(repository.ErrDuplicate)

	// Act
	_, err := s.service.Create(s.ctx, principalFor(s.admin), dto.CreateUserRequest{Email: "race@example.com", Password: "long-enough-password"})

	// Assert
	s.ErrorIs(err, ErrEmailAlreadyExists)
}

func (s *UserServiceTestSuite) TestCreate_ValidatesInput() {
	_, err := s.service.Create(s.ctx, principalFor(s.admin), dto.CreateUserRequest{Email: "a@example.com", Password: "short"})
	s.ErrorIs(err, ErrWeakPassword)

	_, err = s.service.Create(s.ctx, principalFor(s.admin), dto.CreateUserRequest{Email: "a@example.com", Password: "long-enough-password", Roles: []string{"ROLE_ROOT"}})
	s.ErrorIs(err, domain.ErrInvalidRole)

	s.mockUser.AssertNotCalled(s.T(), "EmailExists", mock.Anything, mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestProvision_SkipsVoters() {
	// Arrange
	s.mockUser.On("EmailExists", s.ctx, "owner@example.com", "").Return(false, nil)
	s.mockUser.On("Create", s.ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	// Act
	resp, err := s.service.Provision(s.ctx, dto.CreateUserRequest{
		Email:    "owner@example.com",
		Password: "long-enough-password",
		Roles:    []string{"ROLE_ADMIN"},
	})

	// Assert
	s.Require().NoError(err)
	s.Contains(resp.Roles, "ROLE_ADMIN")
	s.mockUser.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestProvision_SameEmailInAnotherTenant() {
	// Arrange
	emails := make(map[string]bool)
	s.mockUser.On("EmailExists", mock.Anything, "shared@example.com", "").Return(func(ctx context.Context, email, _ string) bool {
		tenantID, _ := tenancy.TenantID(ctx)
		return emails[tenantID+"/"+email]
	}, nil)
	s.mockUser.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(func(ctx context.Context, user *domain.User) error {
		user.TenantID, _ = tenancy.TenantID(ctx)
		emails[user.TenantID+"/"+user.Email] = true
		return nil
	})
	other := tenancy.WithTenant(context.Background(), testTenant("tenant-2"))
	req := dto.CreateUserRequest{Email: "shared@example.com", Password: "long-enough-password"}

	// Act
	first, err := s.service.Provision(s.ctx, req)
	s.Require().NoError(err)
	second, err := s.service.Provision(other, req)
	s.Require().NoError(err)
	_, err = s.service.Provision(s.ctx, req)

	// Assert
	s.Equal("tenant-1", first.TenantID)
	s.Equal("tenant-2", second.TenantID)
	s.ErrorIs(err, ErrEmailAlreadyExists)
}

func (s *UserServiceTestSuite) TestGetByID_OtherTenantLooksMissing() {
	// Arrange
	foreign := testUser("foreign-1", testTenant("tenant-2"))
	s.mockUser.On("GetByID", s.ctx, "foreign-1").Return(foreign, nil)

	// Act
	_, err := s.service.GetByID(s.ctx, principalFor(s.admin), "foreign-1")

	// Assert
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserServiceTestSuite) TestGetByID_NotFound() {
	// Arrange
	s.mockUser.On("GetByID", s.ctx, "ghost").Return(nil, repository.ErrNotFound)

	// Act
	_, err := s.service.GetByID(s.ctx, principalFor(s.admin), "ghost")

	// Assert
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserServiceTestSuite) TestGetByID_NonAdminSeesNothing() {
	// Arrange
	s.mockUser.On("GetByID", s.ctx, s.admin.ID).Return(s.admin, nil)

	// Act
	_, err := s.service.GetByID(s.ctx, principalFor(s.member), s.admin.ID)

	// Assert
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserServiceTestSuite) TestUpdate_EmailUniquenessExcludesSelf() {
	// Arrange
	newEmail := "Renamed@Example.com"
	s.mockUser.On("GetByID", s.ctx, s.member.ID).Return(s.member, nil)
	s.mockUser.On("EmailExists", s.ctx, newEmail, s.member.ID).Return(false, nil)
	s.mockUser.On("Update", s.ctx, s.member).Return(nil)

	// Act
	resp, err := s.service.Update(s.ctx, principalFor(s.admin), s.member.ID, dto.UpdateUserRequest{Email: &newEmail})

	// Assert
	s.Require().NoError(err)
	s.Equal("renamed@example.com", resp.Email)
	s.mockUser.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestUpdate_MemberCannotEdit() {
	// Arrange
	s.mockUser.On("GetByID", s.ctx, s.admin.ID).Return(s.admin, nil)

	// Act
	_, err := s.service.Update(s.ctx, principalFor(s.member), s.admin.ID, dto.UpdateUserRequest{Roles: []string{"ROLE_USER"}})

	// Assert
	s.ErrorIs(err, ErrAccessDenied)
	s.mockUser.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestDelete_SelfIsDenied() {
	// Arrange
	s.mockUser.On("GetByID", s.ctx, s.admin.ID).Return(s.admin, nil)

	// Act
	err := s.service.Delete(s.ctx, principalFor(s.admin), s.admin.ID)

	// Assert
	s.ErrorIs(err, ErrAccessDenied)
	s.mockUser.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestDelete_Success() {
	// Arrange
	s.mockUser.On("GetByID", s.ctx, s.member.ID).Return(s.member, nil)
	s.mockUser.On("Delete", s.ctx, s.member.ID).Return(nil)

	// Act
	err := s.service.Delete(s.ctx, principalFor(s.admin), s.member.ID)

	// Assert
	s.NoError(err)
	s.mockUser.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestChangePassword_SelfRequiresCurrent() {
	// Arrange
	s.mockUser.On("GetByID", s.ctx, s.member.ID).Return(s.member, nil)

	// Act
	missing := s.service.ChangePassword(s.ctx, principalFor(s.member), s.member.ID, dto.ChangePasswordRequest{NewPassword: "another-password"})
	wrong := s.service.ChangePassword(s.ctx, principalFor(s.member), s.member.ID, dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "another-password"})

	// Assert
	s.ErrorIs(missing, ErrCurrentPasswordNeeded)
	s.ErrorIs(wrong, ErrInvalidPassword)
	s.mockUser.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestChangePassword_SelfRevokesSessions() {
	// Arrange
	oldHash := s.member.PasswordHash
	s.mockUser.On("GetByID", s.ctx, s.member.ID).Return(s.member, nil)
	s.mockUser.On("Update", s.ctx, s.member).Return(nil)
	s.mockRefresh.On("RevokeAllForUser", s.ctx, s.member.ID).Return(int64(3), nil)
	s.mockPublisher.On("PublishSecurityEvent", mock.Anything, eventOfType(domain.SecurityEventPasswordChanged)).Return(nil)

	// Act
	err := s.service.ChangePassword(s.ctx, principalFor(s.member), s.member.ID, dto.ChangePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "another-password",
	})

	// Assert
	s.Require().NoError(err)
	s.NotEqual(oldHash, s.member.PasswordHash)
	s.True(testHasher.Compare(s.member.PasswordHash, "another-password"))
	s.mockRefresh.AssertExpectations(s.T())
	s.mockPublisher.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestChangePassword_AdminSkipsCurrent() {
	// Arrange
	s.mockUser.On("GetByID", s.ctx, s.member.ID).Return(s.member, nil)
	s.mockUser.On("Update", s.ctx, s.member).Return(nil)
	s.mockRefresh.On("RevokeAllForUser", s.ctx, s.member.ID).Return(int64(0), nil)
	s.mockPublisher.On("PublishSecurityEvent", mock.Anything, mock.Anything).Return(nil)

	// Act
	err := s.service.ChangePassword(s.ctx, principalFor(s.admin), s.member.ID, dto.ChangePasswordRequest{NewPassword: "reset-password"})

	// Assert
	s.NoError(err)
}

func (s *UserServiceTestSuite) TestChangePassword_MemberCannotChangeOthers() {
	// Act
	err := s.service.ChangePassword(s.ctx, principalFor(s.member), s.admin.ID, dto.ChangePasswordRequest{NewPassword: "another-password"})

	// Assert
	s.ErrorIs(err, ErrAccessDenied)
	s.mockUser.AssertNotCalled(s.T(), "GetByID", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestChangePassword_AdminOfOtherTenant() {
	// Arrange
	foreign := testUser("foreign-1", testTenant("tenant-2"))
	s.mockUser.On("GetByID", s.ctx, foreign.ID).Return(foreign, nil)

	// Act
	err := s.service.ChangePassword(s.ctx, principalFor(s.admin), foreign.ID, dto.ChangePasswordRequest{NewPassword: "another-password"})

	// Assert
	s.ErrorIs(err, ErrAccessDenied)
}

func (s *UserServiceTestSuite) TestDeactivate_Self() {
	// Act
	err := s.service.Deactivate(s.ctx, principalFor(s.admin), s.admin.ID)

	// Assert
	s.ErrorIs(err, ErrSelfDeactivation)
	s.mockUser.AssertNotCalled(s.T(), "GetByID", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestDeactivate_RevokesSessions() {
	// Arrange
	s.mockUser.On("GetByID", s.ctx, s.member.ID).Return(s.member, nil)
	s.mockUser.On("Update", s.ctx, s.member).Return(nil)
	s.mockRefresh.On("RevokeAllForUser", s.ctx, s.member.ID).Return(int64(2), nil)
	s.mockPublisher.On("PublishSecurityEvent", mock.Anything, eventOfType(domain.SecurityEventUserDeactivated)).Return(nil)

	// Act
	err := s.service.Deactivate(s.ctx, principalFor(s.admin), s.member.ID)

	// Assert
	s.Require().NoError(err)
	s.False(s.member.Active)
	s.mockRefresh.AssertExpectations(s.T())
	s.mockPublisher.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestDeactivate_RevocationFailureIsNotFatal() {
	// Arrange
	s.mockUser.On("GetByID", s.ctx, s.member.ID).Return(s.member, nil)
	s.mockUser.On("Update", s.ctx, s.member).Return(nil)
	s.mockRefresh.On("RevokeAllForUser", s.ctx, s.member.ID).Return(int64(0), assertErr)
	s.mockPublisher.On("PublishSecurityEvent", mock.Anything, mock.Anything).Return(nil)

	// Act
	err := s.service.Deactivate(s.ctx, principalFor(s.admin), s.member.ID)

	// Assert
	s.NoError(err)
}

func (s *UserServiceTestSuite) TestActivate() {
	// Arrange
	s.member.Active = false
	s.mockUser.On("GetByID", s.ctx, s.member.ID).Return(s.member, nil)
	s.mockUser.On("Update", s.ctx, s.member).Return(nil)

	// Act
	err := s.service.Activate(s.ctx, principalFor(s.admin), s.member.ID)

	// Assert
	s.NoError(err)
	s.True(s.member.Active)
}

func (s *UserServiceTestSuite) TestList() {
	// Arrange
	s.mockUser.On("List", s.ctx, domain.UserFilter{Role: domain.RoleAdmin, Limit: 10}).
		Return([]domain.User{*s.admin}, int64(1), nil)

	// Act
	resp, err := s.service.List(s.ctx, principalFor(s.admin), dto.ListUsersRequest{Role: "ROLE_ADMIN", Limit: 10})

	// Assert
	s.Require().NoError(err)
	s.Equal(int64(1), resp.Total)
	s.Require().Len(resp.Users, 1)
	s.Equal(s.admin.ID, resp.Users[0].ID)
}

func (s *UserServiceTestSuite) TestList_Rejections() {
	_, err := s.service.List(s.ctx, principalFor(s.member), dto.ListUsersRequest{})
	s.ErrorIs(err, ErrAccessDenied)

	_, err = s.service.List(s.ctx, principalFor(s.admin), dto.ListUsersRequest{Role: "ROLE_ROOT"})
	s.ErrorIs(err, domain.ErrInvalidRole)

	_, err = s.service.List(s.ctx, nil, dto.ListUsersRequest{})
	s.ErrorIs(err, ErrNotAuthenticated)
}

func (s *UserServiceTestSuite) TestProfile() {
	// Arrange
	s.mockUser.On("GetByID", s.ctx, s.member.ID).Return(s.member, nil)

	// Act
	resp, err := s.service.Profile(s.ctx, principalFor(s.member))

	// Assert
	s.Require().NoError(err)
	s.Equal("Test User", resp.FullName)
}
