package dto

import (
	"fmt"
	"strings"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/pkg/utils"
)

// FromUser converts a User domain model to a UserResponse DTO. Roles are the
// effective roles, so ROLE_USER is always present.
func FromUser(user *domain.User) *UserResponse {
	roles := user.EffectiveRoles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return &UserResponse{
		ID:          user.ID,
		TenantID:    user.TenantID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		Roles:       names,
		IsActive:    user.Active,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func FromUsers(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = *FromUser(&users[i])
	}
	return responses
}

func FromTenant(tenant *domain.Tenant) *TenantResponse {
	return &TenantResponse{
		ID:        tenant.ID,
		Name:      tenant.Name,
		Subdomain: tenant.Subdomain,
		Status:    string(tenant.Status),
		RateLimit: tenant.RateLimit,
		CreatedAt: tenant.CreatedAt,
		UpdatedAt: tenant.UpdatedAt,
	}
}

// ToAddress converts an AddressRequest DTO to the embedded Address value
func (r *AddressRequest) ToAddress() domain.Address {
	return domain.Address{
		Line1:      strings.TrimSpace(r.Line1),
		Line2:      strings.TrimSpace(r.Line2),
		City:       strings.TrimSpace(r.City),
		State:      strings.TrimSpace(r.State),
		PostalCode: strings.TrimSpace(r.PostalCode),
		Country:    strings.TrimSpace(r.Country),
	}
}

func fromAddress(a domain.Address) AddressResponse {
	return AddressResponse{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func FromClient(client *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:             client.ID,
		CompanyName:    client.CompanyName,
		ContactName:    client.ContactName,
		Email:          client.Email,
		Phone:          client.Phone,
		BillingAddress: fromAddress(client.BillingAddress),
		IsActive:       client.IsActive,
		CreatedAt:      client.CreatedAt,
		UpdatedAt:      client.UpdatedAt,
	}
}

func FromClients(clients []domain.Client) []ClientResponse {
	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = *FromClient(&clients[i])
	}
	return responses
}

func FromLocation(location *domain.Location) *LocationResponse {
	return &LocationResponse{
		ID:                  location.ID,
		ClientID:            location.ClientID,
		Address:             fromAddress(location.Address),
		Latitude:            location.Latitude,
		Longitude:           location.Longitude,
		SpecialInstructions: location.SpecialInstructions,
		IsPrimary:           location.IsPrimary,
		CreatedAt:           location.CreatedAt,
	}
}

func FromLocations(locations []domain.Location) []LocationResponse {
	responses := make([]LocationResponse, len(locations))
	for i := range locations {
		responses[i] = *FromLocation(&locations[i])
	}
	return responses
}

func FromSecurityEvents(events []domain.SecurityEvent) []SecurityEventResponse {
	responses := make([]SecurityEventResponse, len(events))
	for i, e := range events {
		responses[i] = SecurityEventResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Type:      string(e.Type),
			IPAddress: e.IPAddress,
			UserAgent: e.UserAgent,
			RequestID: e.RequestID,
			Message:   e.Message,
			Timestamp: e.Timestamp,
		}
	}
	return responses
}

// ToFilter converts query parameters into a search filter. The tenant is
// taken from the request context by the repository, not from here.
func (q *SecurityEventQuery) ToFilter() (domain.SecurityEventFilter, error) {
	filter := domain.SecurityEventFilter{
		UserID:   q.UserID,
		Type:     domain.SecurityEventType(strings.ToUpper(strings.TrimSpace(q.Type))),
		Page:     q.Page,
		PageSize: q.PageSize,
	}

	if q.StartTime != "" {
		t, err := utils.ParseUserTime(q.StartTime, false)
		if err != nil {
			return filter, fmt.Errorf("%w: start_time: %v", domain.ErrInvalidTimeRange, err)
		}
		filter.StartTime = t
	}
	if q.EndTime != "" {
		t, err := utils.ParseUserTime(q.EndTime, true)
		if err != nil {
			return filter, fmt.Errorf("%w: end_time: %v", domain.ErrInvalidTimeRange, err)
		}
		filter.EndTime = t
	}
	if !filter.StartTime.IsZero() && !filter.EndTime.IsZero() && filter.StartTime.After(filter.EndTime) {
		return filter, fmt.Errorf("%w: start_time must be before end_time", domain.ErrInvalidTimeRange)
	}
	return filter, nil
}
