package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

type TenantStatus string

const (
	TenantStatusTrial     TenantStatus = "trial"
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

const (
	subdomainMinLength = 3
	subdomainMaxLength = 100
	defaultRateLimit   = 1000
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	ErrInvalidSubdomain    = errors.New("subdomain must be 3-100 lowercase letters, digits or single hyphens")
	ErrInvalidTenantStatus = errors.New("invalid tenant status")
	ErrInvalidTenantName   = errors.New("tenant name is required")
)

type Tenant struct {
	ID        string       `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name      string       `gorm:"type:varchar(255);not null" json:"name"`
	Subdomain string       `gorm:"type:varchar(100);not null;uniqueIndex" json:"subdomain"`
	Status    TenantStatus `gorm:"type:varchar(20);not null" json:"status"`
	RateLimit int          `gorm:"not null;default:1000" json:"rate_limit"`
	CreatedAt time.Time    `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant builds a trial tenant with a normalized, validated subdomain
func NewTenant(name, subdomain string, now time.Time) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTenantName
	}

	subdomain = NormalizeSubdomain(subdomain)
	if err := ValidateSubdomain(subdomain); err != nil {
		return nil, err
	}

	return &Tenant{
		Name:      name,
		Subdomain: subdomain,
		Status:    TenantStatusTrial,
		RateLimit: defaultRateLimit,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NormalizeSubdomain lowercases and trims so uniqueness holds case-insensitively
func NormalizeSubdomain(subdomain string) string {
	return strings.ToLower(strings.TrimSpace(subdomain))
}

func ValidateSubdomain(subdomain string) error {
	if len(subdomain) < subdomainMinLength || len(subdomain) > subdomainMaxLength {
		return ErrInvalidSubdomain
	}
	if !subdomainPattern.MatchString(subdomain) {
		return ErrInvalidSubdomain
	}
	return nil
}

func ParseTenantStatus(status string) (TenantStatus, error) {
	switch s := TenantStatus(strings.ToLower(strings.TrimSpace(status))); s {
	case TenantStatusTrial, TenantStatusActive, TenantStatusSuspended:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTenantStatus, status)
	}
}

// IsOperational reports whether users of the tenant may authenticate
func (t *Tenant) IsOperational() bool {
	return t.Status == TenantStatusTrial || t.Status == TenantStatusActive
}

func (t *Tenant) Activate(now time.Time) {
	t.transition(TenantStatusActive, now)
}

func (t *Tenant) Suspend(now time.Time) {
	t.transition(TenantStatusSuspended, now)
}

func (t *Tenant) ConvertToTrial(now time.Time) {
	t.transition(TenantStatusTrial, now)
}

// TransitionTo applies the named status transition
func (t *Tenant) TransitionTo(status TenantStatus, now time.Time) error {
	switch status {
	case TenantStatusActive:
		t.Activate(now)
	case TenantStatusSuspended:
		t.Suspend(now)
	case TenantStatusTrial:
		t.ConvertToTrial(now)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTenantStatus, status)
	}
	return nil
}

func (t *Tenant) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidTenantName
	}
	t.Name = name
	t.UpdatedAt = now
	return nil
}

func (t *Tenant) transition(status TenantStatus, now time.Time) {
	t.Status = status
	t.UpdatedAt = now
}
