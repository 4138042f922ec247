package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TenantID     string     `gorm:"type:uuid;not null;uniqueIndex:uniq_users_tenant_email,priority:1" json:"tenant_id"`
	Email        string     `gorm:"type:varchar(180);not null;uniqueIndex:uniq_users_tenant_email,priority:2" json:"email"`
	PasswordHash string     `gorm:"column:password;type:varchar(255);not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string     `gorm:"type:varchar(100);not null" json:"last_name"`
	Roles        RoleSet    `gorm:"type:jsonb;not null" json:"roles"`
	Active       bool       `gorm:"column:is_active;not null" json:"is_active"`
	LastLoginAt  *time.Time `gorm:"type:timestamp with time zone" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`
	Tenant       *Tenant    `gorm:"foreignKey:TenantID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// NewUser builds an active user with normalized email and names.
// An empty role list is stored as RoleUser.
func NewUser(tenantID, email, firstName, lastName, passwordHash string, roles RoleSet, now time.Time) *User {
	if len(roles) == 0 {
		roles = RoleSet{RoleUser}
	}
	return &User{
		TenantID:     tenantID,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Roles:        roles,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) EffectiveRoles() []Role {
	return EffectiveRoles(u.Roles)
}

func (u *User) HasRole(role Role) bool {
	return HasRole(u.EffectiveRoles(), role)
}

func (u *User) Rename(firstName, lastName string, now time.Time) {
	if firstName = strings.TrimSpace(firstName); firstName != "" {
		u.FirstName = firstName
	}
	if lastName = strings.TrimSpace(lastName); lastName != "" {
		u.LastName = lastName
	}
	u.UpdatedAt = now
}

func (u *User) ChangeEmail(email string, now time.Time) {
	u.Email = NormalizeEmail(email)
	u.UpdatedAt = now
}

func (u *User) ChangePassword(hash string, now time.Time) {
	u.PasswordHash = hash
	u.UpdatedAt = now
}

func (u *User) AssignRoles(roles RoleSet, now time.Time) {
	if len(roles) == 0 {
		roles = RoleSet{RoleUser}
	}
	u.Roles = roles
	u.UpdatedAt = now
}

func (u *User) Activate(now time.Time) {
	u.Active = true
	u.UpdatedAt = now
}

func (u *User) Deactivate(now time.Time) {
	u.Active = false
	u.UpdatedAt = now
}

func (u *User) RecordLogin(now time.Time) {
	u.LastLoginAt = &now
}

// CanAuthenticate reports whether both the user and its tenant are operational
func (u *User) CanAuthenticate() bool {
	return u.Active && u.Tenant != nil && u.Tenant.IsOperational()
}

type UserFilter struct {
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Active *bool  `json:"active"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}
