package domain

import "time"

// Principal is the authenticated caller of a request
type Principal struct {
	User      *User
	Tenant    *Tenant
	TokenID   string
	ExpiresAt time.Time
}

func (p *Principal) UserID() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.ID
}

func (p *Principal) TenantID() string {
	if p == nil || p.Tenant == nil {
		return ""
	}
	return p.Tenant.ID
}
