package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/authz"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
)

type ClientService struct {
	repo      repository.Repository
	decisions *authz.Manager
	now       func() time.Time
}

func NewClientService(repo repository.Repository, decisions *authz.Manager) *ClientService {
	if decisions == nil {
		decisions = authz.DefaultManager()
	}
	return &ClientService{repo: repo, decisions: decisions, now: time.Now}
}

func (s *ClientService) List(ctx context.Context, principal *domain.Principal, req dto.ListClientsRequest) (*dto.ClientListResponse, error) {
	if _, err := actorOf(principal); err != nil {
		return nil, err
	}

	clients, total, err := s.repo.Client().List(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return &dto.ClientListResponse{
		Clients: dto.FromClients(clients),
		Total:   total,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}, nil
}

func (s *ClientService) Create(ctx context.Context, principal *domain.Principal, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	actor, err := actorOf(principal)
	if err != nil {
		return nil, err
	}

	client := domain.NewClient(req.CompanyName, req.ContactName, req.Email, req.Phone, req.BillingAddress.ToAddress(), s.now())
	client.TenantID = actor.TenantID
	if !s.decisions.Allowed(actor, authz.ActionCreate, client) {
		return nil, ErrAccessDenied
	}

	if err := s.repo.Client().Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return dto.FromClient(client), nil
}

func (s *ClientService) GetByID(ctx context.Context, principal *domain.Principal, id string) (*dto.ClientResponse, error) {
	client, err := s.authorize(ctx, principal, authz.ActionView, id)
	if err != nil {
		return nil, err
	}
	return dto.FromClient(client), nil
}

func (s *ClientService) Update(ctx context.Context, principal *domain.Principal, id string, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := s.authorize(ctx, principal, authz.ActionEdit, id)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != nil {
		client.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.ContactName != nil {
		client.ContactName = strings.TrimSpace(*req.ContactName)
	}
	if req.Email != nil {
		client.Email = domain.NormalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.BillingAddress != nil {
		client.BillingAddress = req.BillingAddress.ToAddress()
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}
	client.UpdatedAt = s.now()

	if err := s.repo.Client().Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return dto.FromClient(client), nil
}

func (s *ClientService) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	if _, err := s.authorize(ctx, principal, authz.ActionDelete, id); err != nil {
		return err
	}
	if err := s.repo.Client().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (s *ClientService) authorize(ctx context.Context, principal *domain.Principal, action authz.Action, id string) (*domain.Client, error) {
	actor, err := actorOf(principal)
	if err != nil {
		return nil, err
	}

	client, err := s.repo.Client().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if !s.decisions.Allowed(actor, action, client) {
		if action == authz.ActionView {
			return nil, ErrClientNotFound
		}
		return nil, ErrAccessDenied
	}
	return client, nil
}
