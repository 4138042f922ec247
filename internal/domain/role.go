package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Role represents a user role in the system
type Role string

const (
	// RoleUser is held by every authenticated user, stored or not
	RoleUser Role = "ROLE_USER"

	// RoleDispatcher can manage clients and locations of their tenant
	RoleDispatcher Role = "ROLE_DISPATCHER"

	// RoleAdmin can manage users and the settings of their own tenant
	RoleAdmin Role = "ROLE_ADMIN"
)

// ValidRoles contains all valid roles in the system, in display order
var ValidRoles = []Role{RoleUser, RoleDispatcher, RoleAdmin}

var ErrInvalidRole = errors.New("invalid role")

// IsValidRole checks if a given role is valid
func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, Role(role))
}

// ParseRole converts a raw role name into a Role, rejecting anything outside the closed set
func ParseRole(role string) (Role, error) {
	if !IsValidRole(role) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return Role(role), nil
}

// ParseRoles converts raw role names, failing on the first unknown one
func ParseRoles(raw []string) (RoleSet, error) {
	roles := make(RoleSet, 0, len(raw))
	for _, r := range raw {
		role, err := ParseRole(r)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// EffectiveRoles returns the deduplicated roles in ValidRoles order, always including RoleUser
func EffectiveRoles(stored []Role) []Role {
	effective := make([]Role, 0, len(ValidRoles))
	for _, role := range ValidRoles {
		if role == RoleUser || slices.Contains(stored, role) {
			effective = append(effective, role)
		}
	}
	return effective
}

// HasRole checks if a slice of roles contains a specific role
func HasRole(roles []Role, role Role) bool {
	return slices.Contains(roles, role)
}

// HasAnyRole checks if a slice of roles contains any of the specified roles
func HasAnyRole(roles []Role, requiredRoles ...Role) bool {
	for _, required := range requiredRoles {
		if HasRole(roles, required) {
			return true
		}
	}
	return false
}

// HasAllRoles checks if a slice of roles contains all of the specified roles
func HasAllRoles(roles []Role, requiredRoles ...Role) bool {
	for _, required := range requiredRoles {
		if !HasRole(roles, required) {
			return false
		}
	}
	return true
}

// RoleSet is the stored role list of a user, persisted as a JSON array
type RoleSet []Role

func (r RoleSet) Value() (driver.Value, error) {
	if r == nil {
		r = RoleSet{}
	}
	data, err := json.Marshal([]Role(r))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (r *RoleSet) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = RoleSet{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported role set type %T", src)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode roles: %w", err)
	}

	roles, err := ParseRoles(raw)
	if err != nil {
		return err
	}
	*r = roles
	return nil
}

// Strings returns the role names
func (r RoleSet) Strings() []string {
	out := make([]string, len(r))
	for i, role := range r {
		out[i] = string(role)
	}
	return out
}
