package dto

type LoginRequest struct {
	Email     string `json:"email" binding:"required,email" example:"admin@acme.test"`
	Password  string `json:"password" binding:"required" example:"s3cret-pass"`
	Subdomain string `json:"subdomain" example:"acme"`
}

// RefreshRequest leaves refresh_token optional so a missing token is reported
// as a bad request rather than a validation failure
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" example:"9f86d081884c7d659a2feaa0c55ad015..."`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" example:"9f86d081884c7d659a2feaa0c55ad015..."`
}

type CreateTenantRequest struct {
	Name      string `json:"name" binding:"required" example:"Acme Logistics"`
	Subdomain string `json:"subdomain" binding:"required" example:"acme"`
}

type UpdateTenantRequest struct {
	Name      *string `json:"name" example:"Acme Logistics Inc."`
	RateLimit *int    `json:"rate_limit" binding:"omitempty,min=1" example:"2000"`
}

type ChangeTenantStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=trial active suspended" example:"active"`
}

type CreateUserRequest struct {
	Email     string   `json:"email" binding:"required,email" example:"jane@acme.test"`
	Password  string   `json:"password" binding:"required" example:"s3cret-pass"`
	FirstName string   `json:"first_name" binding:"required,max=100" example:"Jane"`
	LastName  string   `json:"last_name" binding:"required,max=100" example:"Doe"`
	Roles     []string `json:"roles" example:"ROLE_DISPATCHER"`
}

type UpdateUserRequest struct {
	Email     *string  `json:"email" binding:"omitempty,email" example:"jane@acme.test"`
	FirstName *string  `json:"first_name" binding:"omitempty,max=100" example:"Jane"`
	LastName  *string  `json:"last_name" binding:"omitempty,max=100" example:"Doe"`
	Roles     []string `json:"roles" example:"ROLE_ADMIN"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100" example:"Jane"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100" example:"Doe"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" example:"old-pass-123"`
	NewPassword     string `json:"new_password" binding:"required" example:"new-pass-456"`
}

type ListUsersRequest struct {
	Email  string `form:"email" example:"acme.test"`
	Role   string `form:"role" example:"ROLE_ADMIN"`
	Active *bool  `form:"active" example:"true"`
	Limit  int    `form:"limit" example:"20"`
	Offset int    `form:"offset" example:"0"`
}

type AddressRequest struct {
	Line1      string `json:"address_line1" binding:"required,max=255" example:"100 King St W"`
	Line2      string `json:"address_line2" binding:"max=255" example:"Suite 400"`
	City       string `json:"city" binding:"required,max=100" example:"Toronto"`
	State      string `json:"state" binding:"required,max=100" example:"ON"`
	PostalCode string `json:"postal_code" binding:"required,max=20" example:"M5X 1A9"`
	Country    string `json:"country" binding:"max=100" example:"Canada"`
}

type CreateClientRequest struct {
	CompanyName    string         `json:"company_name" binding:"required,max=255" example:"Northwind"`
	ContactName    string         `json:"contact_name" binding:"max=255" example:"Sam Carter"`
	Email          string         `json:"email" binding:"omitempty,email" example:"ops@northwind.test"`
	Phone          string         `json:"phone" binding:"max=50" example:"+1 416 555 0100"`
	BillingAddress AddressRequest `json:"billing_address" binding:"required"`
}

type UpdateClientRequest struct {
	CompanyName    *string         `json:"company_name" binding:"omitempty,max=255" example:"Northwind Traders"`
	ContactName    *string         `json:"contact_name" binding:"omitempty,max=255" example:"Sam Carter"`
	Email          *string         `json:"email" binding:"omitempty,email" example:"billing@northwind.test"`
	Phone          *string         `json:"phone" binding:"omitempty,max=50" example:"+1 416 555 0101"`
	BillingAddress *AddressRequest `json:"billing_address"`
	IsActive       *bool           `json:"is_active" example:"true"`
}

type ListClientsRequest struct {
	Limit  int `form:"limit" example:"20"`
	Offset int `form:"offset" example:"0"`
}

type CreateLocationRequest struct {
	Address             AddressRequest `json:"address" binding:"required"`
	Latitude            *float64       `json:"latitude" binding:"omitempty,min=-90,max=90" example:"43.6481"`
	Longitude           *float64       `json:"longitude" binding:"omitempty,min=-180,max=180" example:"-79.3815"`
	SpecialInstructions string         `json:"special_instructions" example:"Dock 4, ring twice"`
	IsPrimary           bool           `json:"is_primary" example:"true"`
}

type SecurityEventQuery struct {
	UserID    string `form:"user_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type      string `form:"type" example:"LOGIN_FAILED"`
	// StartTime and EndTime accept RFC3339 or YYYY-MM-DD
	StartTime string `form:"start_time" example:"2025-07-01"`
	EndTime   string `form:"end_time" example:"2025-07-31T23:59:59Z"`
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"50"`
}
