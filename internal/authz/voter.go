// Package authz decides whether an authenticated actor may act on a subject.
package authz

import (
	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

type Decision int

const (
	Abstain Decision = iota
	Grant
	Deny
)

func (d Decision) String() string {
	switch d {
	case Grant:
		return "grant"
	case Deny:
		return "deny"
	default:
		return "abstain"
	}
}

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Actor is the caller a decision is made for
type Actor struct {
	UserID   string
	TenantID string
	Roles    []domain.Role
}

// NewActor builds an actor from an authenticated principal; nil when there is none
func NewActor(principal *domain.Principal) *Actor {
	if principal == nil || principal.User == nil {
		return nil
	}
	tenantID := principal.TenantID()
	if tenantID == "" {
		tenantID = principal.User.TenantID
	}
	return &Actor{
		UserID:   principal.User.ID,
		TenantID: tenantID,
		Roles:    principal.User.EffectiveRoles(),
	}
}

func (a *Actor) HasRole(role domain.Role) bool {
	return a != nil && domain.HasRole(a.Roles, role)
}

type Voter interface {
	Vote(actor *Actor, action Action, subject any) Decision
}

// UserVoter lets admins view, edit and delete users of their own tenant,
// except that nobody deletes themselves.
type UserVoter struct{}

func (UserVoter) Vote(actor *Actor, action Action, subject any) Decision {
	target, ok := subject.(*domain.User)
	if !ok || target == nil {
		return Abstain
	}
	switch action {
	case ActionView, ActionEdit, ActionDelete:
	default:
		return Abstain
	}

	if actor == nil || !IsAdmin(actor) || !IsSameTenant(actor, target.TenantID) {
		return Deny
	}
	if action == ActionDelete && actor.UserID == target.ID {
		return Deny
	}
	return Grant
}

// TenantVoter lets admins view and edit their own tenant
type TenantVoter struct{}

func (TenantVoter) Vote(actor *Actor, action Action, subject any) Decision {
	tenant, ok := subject.(*domain.Tenant)
	if !ok || tenant == nil {
		return Abstain
	}
	if action != ActionView && action != ActionEdit {
		return Abstain
	}

	if actor == nil || !CanManageTenant(actor) || !IsSameTenant(actor, tenant.ID) {
		return Deny
	}
	return Grant
}

// ResourceVoter covers clients and locations
type ResourceVoter struct{}

func (ResourceVoter) Vote(actor *Actor, action Action, subject any) Decision {
	var tenantID string
	switch s := subject.(type) {
	case *domain.Client:
		if s == nil {
			return Abstain
		}
		tenantID = s.TenantID
	case *domain.Location:
		if s == nil {
			return Abstain
		}
		tenantID = s.TenantID
	default:
		return Abstain
	}

	var allowed func(*Actor) bool
	switch action {
	case ActionView:
		allowed = func(a *Actor) bool { return a.HasRole(domain.RoleUser) }
	case ActionCreate, ActionEdit:
		allowed = CanManageClients
	case ActionDelete:
		allowed = IsAdmin
	default:
		return Abstain
	}

	if actor == nil || !IsSameTenant(actor, tenantID) || !allowed(actor) {
		return Deny
	}
	return Grant
}

// Manager combines voters affirmatively: one Grant is enough unless any voter
// denied, and an all-abstain outcome is a denial.
type Manager struct {
	voters []Voter
}

func NewManager(voters ...Voter) *Manager {
	return &Manager{voters: voters}
}

// DefaultManager holds every voter of the application
func DefaultManager() *Manager {
	return NewManager(UserVoter{}, TenantVoter{}, ResourceVoter{})
}

func (m *Manager) Decide(actor *Actor, action Action, subject any) Decision {
	if actor == nil {
		return Deny
	}
	granted := false
	for _, v := range m.voters {
		switch v.Vote(actor, action, subject) {
		case Deny:
			return Deny
		case Grant:
			granted = true
		}
	}
	if granted {
		return Grant
	}
	return Deny
}

func (m *Manager) Allowed(actor *Actor, action Action, subject any) bool {
	return m.Decide(actor, action, subject) == Grant
}
