package authz

import "github.com/kingrain94/tenant-auth-api/internal/domain"

func IsAdmin(actor *Actor) bool {
	return actor.HasRole(domain.RoleAdmin)
}

func IsDispatcher(actor *Actor) bool {
	return actor.HasRole(domain.RoleDispatcher)
}

func CanManageUsers(actor *Actor) bool {
	return IsAdmin(actor)
}

func CanManageClients(actor *Actor) bool {
	return IsAdmin(actor) || IsDispatcher(actor)
}

func CanManageTenant(actor *Actor) bool {
	return IsAdmin(actor)
}

// IsSameTenant is false whenever either side has no tenant
func IsSameTenant(actor *Actor, tenantID string) bool {
	if actor == nil || actor.TenantID == "" || tenantID == "" {
		return false
	}
	return actor.TenantID == tenantID
}
