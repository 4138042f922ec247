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

// LocationService manages the delivery locations of clients
type LocationService struct {
	repo      repository.Repository
	clients   *ClientService
	decisions *authz.Manager
	now       func() time.Time
}

func NewLocationService(repo repository.Repository, clients *ClientService, decisions *authz.Manager) *LocationService {
	if decisions == nil {
		decisions = authz.DefaultManager()
	}
	return &LocationService{repo: repo, clients: clients, decisions: decisions, now: time.Now}
}

func (s *LocationService) ListByClient(ctx context.Context, principal *domain.Principal, clientID string) ([]dto.LocationResponse, error) {
	if _, err := s.clients.authorize(ctx, principal, authz.ActionView, clientID); err != nil {
		return nil, err
	}

	locations, err := s.repo.Location().ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return dto.FromLocations(locations), nil
}

func (s *LocationService) Create(ctx context.Context, principal *domain.Principal, clientID string, req dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	client, err := s.clients.authorize(ctx, principal, authz.ActionView, clientID)
	if err != nil {
		return nil, err
	}
	actor, err := actorOf(principal)
	if err != nil {
		return nil, err
	}

	location := domain.NewLocation(client.ID, req.Address.ToAddress(), s.now())
	location.TenantID = client.TenantID
	location.Latitude = req.Latitude
	location.Longitude = req.Longitude
	location.SpecialInstructions = strings.TrimSpace(req.SpecialInstructions)
	location.IsPrimary = req.IsPrimary

	if !s.decisions.Allowed(actor, authz.ActionCreate, location) {
		return nil, ErrAccessDenied
	}

	if err := s.repo.Location().Create(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return dto.FromLocation(location), nil
}

func (s *LocationService) GetByID(ctx context.Context, principal *domain.Principal, id string) (*dto.LocationResponse, error) {
	location, err := s.authorize(ctx, principal, authz.ActionView, id)
	if err != nil {
		return nil, err
	}
	return dto.FromLocation(location), nil
}

func (s *LocationService) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	if _, err := s.authorize(ctx, principal, authz.ActionDelete, id); err != nil {
		return err
	}
	if err := s.repo.Location().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLocationNotFound
		}
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return nil
}

func (s *LocationService) authorize(ctx context.Context, principal *domain.Principal, action authz.Action, id string) (*domain.Location, error) {
	actor, err := actorOf(principal)
	if err != nil {
		return nil, err
	}

	location, err := s.repo.Location().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	if !s.decisions.Allowed(actor, action, location) {
		if action == authz.ActionView {
			return nil, ErrLocationNotFound
		}
		return nil, ErrAccessDenied
	}
	return location, nil
}
