package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/authz"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/password"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

// UserService manages users of the caller's tenant. Every repository call runs
// under the request's tenant binding, so users of other tenants are not found.
type UserService struct {
	repo          repository.Repository
	hasher        *password.Hasher
	refreshTokens *RefreshTokenService
	decisions     *authz.Manager
	events        *SecurityEventService
	logger        *logger.Logger
	now           func() time.Time
}

func NewUserService(repo repository.Repository, hasher *password.Hasher, refreshTokens *RefreshTokenService, decisions *authz.Manager, events *SecurityEventService, log *logger.Logger) *UserService {
	if decisions == nil {
		decisions = authz.DefaultManager()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &UserService{
		repo:          repo,
		hasher:        hasher,
		refreshTokens: refreshTokens,
		decisions:     decisions,
		events:        events,
		logger:        log,
		now:           time.Now,
	}
}

func actorOf(principal *domain.Principal) (*authz.Actor, error) {
	actor := authz.NewActor(principal)
	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	return actor, nil
}

func (s *UserService) Profile(ctx context.Context, principal *domain.Principal) (*dto.UserResponse, error) {
	if principal == nil || principal.User == nil {
		return nil, ErrNotAuthenticated
	}
	user, err := s.load(ctx, principal.User.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromUser(user), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, principal *domain.Principal, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if principal == nil || principal.User == nil {
		return nil, ErrNotAuthenticated
	}
	user, err := s.load(ctx, principal.User.ID)
	if err != nil {
		return nil, err
	}

	user.Rename(deref(req.FirstName), deref(req.LastName), s.now())
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return dto.FromUser(user), nil
}

func (s *UserService) List(ctx context.Context, principal *domain.Principal, req dto.ListUsersRequest) (*dto.UserListResponse, error) {
	actor, err := actorOf(principal)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageUsers(actor) {
		return nil, ErrAccessDenied
	}

	filter := domain.UserFilter{Email: req.Email, Active: req.Active, Limit: req.Limit, Offset: req.Offset}
	if req.Role != "" {
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = role
	}

	users, total, err := s.repo.User().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &dto.UserListResponse{
		Users:  dto.FromUsers(users),
		Total:  total,
		Limit:  req.Limit,
		Offset: req.Offset,
	}, nil
}

// Create adds a user to the caller's tenant. Email uniqueness is per tenant.
func (s *UserService) Create(ctx context.Context, principal *domain.Principal, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	actor, err := actorOf(principal)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageUsers(actor) {
		return nil, ErrAccessDenied
	}
	return s.Provision(ctx, req)
}

// Provision creates a user in the tenant bound to ctx without consulting the
// voters. It backs operator tooling only.
func (s *UserService) Provision(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	roles, err := domain.ParseRoles(req.Roles)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().EmailExists(ctx, req.Email, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser("", req.Email, req.FirstName, req.LastName, hash, roles, s.now())
	if err := s.repo.User().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return dto.FromUser(user), nil
}

func (s *UserService) GetByID(ctx context.Context, principal *domain.Principal, id string) (*dto.UserResponse, error) {
	user, err := s.authorize(ctx, principal, authz.ActionView, id)
	if err != nil {
		return nil, err
	}
	return dto.FromUser(user), nil
}

func (s *UserService) Update(ctx context.Context, principal *domain.Principal, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.authorize(ctx, principal, authz.ActionEdit, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if req.Email != nil && domain.NormalizeEmail(*req.Email) != user.Email {
		exists, err := s.repo.User().EmailExists(ctx, *req.Email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.ChangeEmail(*req.Email, now)
	}
	if req.FirstName != nil || req.LastName != nil {
		user.Rename(deref(req.FirstName), deref(req.LastName), now)
	}
	if req.Roles != nil {
		roles, err := domain.ParseRoles(req.Roles)
		if err != nil {
			return nil, err
		}
		user.AssignRoles(roles, now)
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return dto.FromUser(user), nil
}

func (s *UserService) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	if _, err := s.authorize(ctx, principal, authz.ActionDelete, id); err != nil {
		return err
	}
	if err := s.repo.User().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ChangePassword lets users change their own password, given the current one,
// and admins change the password of any user of their tenant. Every refresh
// token of the target is revoked.
func (s *UserService) ChangePassword(ctx context.Context, principal *domain.Principal, id string, req dto.ChangePasswordRequest) error {
	actor, err := actorOf(principal)
	if err != nil {
		return err
	}
	self := actor.UserID == id
	if !self && !authz.IsAdmin(actor) {
		return ErrAccessDenied
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !authz.IsSameTenant(actor, user.TenantID) {
		return ErrAccessDenied
	}

	if self {
		if req.CurrentPassword == "" {
			return ErrCurrentPasswordNeeded
		}
		if !s.hasher.Compare(user.PasswordHash, req.CurrentPassword) {
			return ErrInvalidPassword
		}
	}
	if err := checkPassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	user.ChangePassword(hash, s.now())
	if err := s.repo.User().Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.revokeSessions(ctx, user.ID)
	s.events.Record(ctx, domain.SecurityEventPasswordChanged, user.TenantID, user.ID, "password changed by "+actor.UserID)
	return nil
}

func (s *UserService) Activate(ctx context.Context, principal *domain.Principal, id string) error {
	user, err := s.authorize(ctx, principal, authz.ActionEdit, id)
	if err != nil {
		return err
	}
	user.Activate(s.now())
	if err := s.repo.User().Update(ctx, user); err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	return nil
}

func (s *UserService) Deactivate(ctx context.Context, principal *domain.Principal, id string) error {
	if principal != nil && principal.UserID() == id {
		return ErrSelfDeactivation
	}
	user, err := s.authorize(ctx, principal, authz.ActionEdit, id)
	if err != nil {
		return err
	}
	user.Deactivate(s.now())
	if err := s.repo.User().Update(ctx, user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.revokeSessions(ctx, user.ID)
	s.events.Record(ctx, domain.SecurityEventUserDeactivated, user.TenantID, user.ID, "deactivated by "+principal.UserID())
	return nil
}

func (s *UserService) revokeSessions(ctx context.Context, userID string) {
	n, err := s.refreshTokens.RevokeAll(ctx, userID)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("failed to revoke refresh tokens", err, zap.String("user_id", userID))
		return
	}
	logger.FromContext(ctx, s.logger).Info("refresh tokens revoked", zap.String("user_id", userID), zap.Int64("count", n))
}

// authorize loads id and asks the voters. Denied reads look like missing
// users; denied writes are access errors.
func (s *UserService) authorize(ctx context.Context, principal *domain.Principal, action authz.Action, id string) (*domain.User, error) {
	actor, err := actorOf(principal)
	if err != nil {
		return nil, err
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.decisions.Allowed(actor, action, user) {
		if action == authz.ActionView {
			return nil, ErrUserNotFound
		}
		return nil, ErrAccessDenied
	}
	return user, nil
}

func (s *UserService) load(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func checkPassword(plain string) error {
	err := password.Validate(plain)
	if errors.Is(err, password.ErrTooShort) {
		return ErrWeakPassword
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
