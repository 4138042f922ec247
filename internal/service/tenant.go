package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/authz"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
)

type TenantService struct {
	repo      repository.Repository
	decisions *authz.Manager
	now       func() time.Time
}

func NewTenantService(repo repository.Repository, decisions *authz.Manager) *TenantService {
	if decisions == nil {
		decisions = authz.DefaultManager()
	}
	return &TenantService{repo: repo, decisions: decisions, now: time.Now}
}

// Create provisions a new trial tenant. It is an operator action and is not
// exposed over HTTP.
func (s *TenantService) Create(ctx context.Context, req dto.CreateTenantRequest) (*dto.TenantResponse, error) {
	tenant, err := domain.NewTenant(req.Name, req.Subdomain, s.now())
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Tenant().SubdomainExists(ctx, tenant.Subdomain)
	if err != nil {
		return nil, fmt.Errorf("failed to check subdomain: %w", err)
	}
	if exists {
		return nil, ErrTenantExists
	}

	if err := s.repo.Tenant().Create(ctx, tenant); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTenantExists
		}
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	return dto.FromTenant(tenant), nil
}

// List returns every operational tenant; operator use only
func (s *TenantService) List(ctx context.Context) ([]dto.TenantResponse, error) {
	tenants, err := s.repo.Tenant().ListOperational(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	responses := make([]dto.TenantResponse, len(tenants))
	for i := range tenants {
		responses[i] = *dto.FromTenant(&tenants[i])
	}
	return responses, nil
}

func (s *TenantService) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	tenant, err := s.repo.Tenant().GetBySubdomain(ctx, subdomain)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

func (s *TenantService) GetByID(ctx context.Context, principal *domain.Principal, id string) (*dto.TenantResponse, error) {
	tenant, err := s.authorize(ctx, principal, authz.ActionView, id)
	if err != nil {
		return nil, err
	}
	return dto.FromTenant(tenant), nil
}

func (s *TenantService) Update(ctx context.Context, principal *domain.Principal, id string, req dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	tenant, err := s.authorize(ctx, principal, authz.ActionEdit, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if req.Name != nil {
		if err := tenant.Rename(*req.Name, now); err != nil {
			return nil, err
		}
	}
	if req.RateLimit != nil {
		tenant.RateLimit = *req.RateLimit
		tenant.UpdatedAt = now
	}

	if err := s.repo.Tenant().Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return dto.FromTenant(tenant), nil
}

// ChangeStatus moves the tenant to trial, active or suspended. Suspended
// tenants can no longer authenticate.
func (s *TenantService) ChangeStatus(ctx context.Context, principal *domain.Principal, id string, req dto.ChangeTenantStatusRequest) (*dto.TenantResponse, error) {
	tenant, err := s.authorize(ctx, principal, authz.ActionEdit, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, tenant, req.Status); err != nil {
		return nil, err
	}
	return dto.FromTenant(tenant), nil
}

// SetStatus is the operator counterpart of ChangeStatus, without voters
func (s *TenantService) SetStatus(ctx context.Context, subdomain, status string) (*dto.TenantResponse, error) {
	tenant, err := s.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, tenant, status); err != nil {
		return nil, err
	}
	return dto.FromTenant(tenant), nil
}

func (s *TenantService) transition(ctx context.Context, tenant *domain.Tenant, raw string) error {
	status, err := domain.ParseTenantStatus(raw)
	if err != nil {
		return err
	}
	if err := tenant.TransitionTo(status, s.now()); err != nil {
		return err
	}
	if err := s.repo.Tenant().Update(ctx, tenant); err != nil {
		return fmt.Errorf("failed to update tenant status: %w", err)
	}
	return nil
}

func (s *TenantService) authorize(ctx context.Context, principal *domain.Principal, action authz.Action, id string) (*domain.Tenant, error) {
	actor, err := actorOf(principal)
	if err != nil {
		return nil, err
	}

	tenant, err := s.repo.Tenant().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	if !s.decisions.Allowed(actor, action, tenant) {
		// another tenant's existence is not disclosed
		if action == authz.ActionView || !authz.IsSameTenant(actor, tenant.ID) {
			return nil, ErrTenantNotFound
		}
		return nil, ErrAccessDenied
	}
	return tenant, nil
}
