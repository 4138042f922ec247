package dto

import "time"

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"9f86d081884c7d659a2feaa0c55ad015..."`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int64  `json:"expires_in" example:"900"`
}

type LoginResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Successfully logged out"`
}

type UserResponse struct {
	ID          string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID    string     `json:"tenant_id" example:"0b0e3c4f-8d55-4a5e-9f43-1f4f7b9d2a10"`
	Email       string     `json:"email" example:"jane@acme.test"`
	FirstName   string     `json:"first_name" example:"Jane"`
	LastName    string     `json:"last_name" example:"Doe"`
	FullName    string     `json:"full_name" example:"Jane Doe"`
	Roles       []string   `json:"roles" example:"ROLE_USER,ROLE_ADMIN"`
	IsActive    bool       `json:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" example:"2025-07-17T21:20:48Z"`
	CreatedAt   time.Time  `json:"created_at" example:"2025-07-17T21:20:48Z"`
	UpdatedAt   time.Time  `json:"updated_at" example:"2025-07-17T21:20:48Z"`
}

type UserListResponse struct {
	Users  []UserResponse `json:"users"`
	Total  int64          `json:"total" example:"42"`
	Limit  int            `json:"limit" example:"20"`
	Offset int            `json:"offset" example:"0"`
}

type TenantResponse struct {
	ID        string    `json:"id" example:"0b0e3c4f-8d55-4a5e-9f43-1f4f7b9d2a10"`
	Name      string    `json:"name" example:"Acme Logistics"`
	Subdomain string    `json:"subdomain" example:"acme"`
	Status    string    `json:"status" example:"active"`
	RateLimit int       `json:"rate_limit" example:"1000"`
	CreatedAt time.Time `json:"created_at" example:"2025-07-17T21:20:48Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2025-07-17T21:20:48Z"`
}

type AddressResponse struct {
	Line1      string `json:"address_line1" example:"100 King St W"`
	Line2      string `json:"address_line2,omitempty" example:"Suite 400"`
	City       string `json:"city" example:"Toronto"`
	State      string `json:"state" example:"ON"`
	PostalCode string `json:"postal_code" example:"M5X 1A9"`
	Country    string `json:"country" example:"Canada"`
}

type ClientResponse struct {
	ID             string          `json:"id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	CompanyName    string          `json:"company_name" example:"Northwind"`
	ContactName    string          `json:"contact_name" example:"Sam Carter"`
	Email          string          `json:"email" example:"ops@northwind.test"`
	Phone          string          `json:"phone" example:"+1 416 555 0100"`
	BillingAddress AddressResponse `json:"billing_address"`
	IsActive       bool            `json:"is_active" example:"true"`
	CreatedAt      time.Time       `json:"created_at" example:"2025-07-17T21:20:48Z"`
	UpdatedAt      time.Time       `json:"updated_at" example:"2025-07-17T21:20:48Z"`
}

type ClientListResponse struct {
	Clients []ClientResponse `json:"clients"`
	Total   int64            `json:"total" example:"12"`
	Limit   int              `json:"limit" example:"20"`
	Offset  int              `json:"offset" example:"0"`
}

type LocationResponse struct {
	ID                  string          `json:"id" example:"1f0c8a52-9b5d-4d1e-a6b7-3f2d1c0b9a88"`
	ClientID            string          `json:"client_id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	Address             AddressResponse `json:"address"`
	Latitude            *float64        `json:"latitude,omitempty" example:"43.6481"`
	Longitude           *float64        `json:"longitude,omitempty" example:"-79.3815"`
	SpecialInstructions string          `json:"special_instructions,omitempty" example:"Dock 4, ring twice"`
	IsPrimary           bool            `json:"is_primary" example:"true"`
	CreatedAt           time.Time       `json:"created_at" example:"2025-07-17T21:20:48Z"`
}

type SecurityEventResponse struct {
	ID        string    `json:"id" example:"3d6f0a1e-2b1c-4b7a-9c51-0e6d2f8a7b44"`
	UserID    string    `json:"user_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type      string    `json:"type" example:"LOGIN_FAILED"`
	IPAddress string    `json:"ip_address,omitempty" example:"192.168.1.1"`
	UserAgent string    `json:"user_agent,omitempty" example:"Mozilla/5.0"`
	RequestID string    `json:"request_id,omitempty" example:"b1946ac9-2f0c-4c7e-9f58-1a5d3c1e7f00"`
	Message   string    `json:"message" example:"invalid credentials"`
	Timestamp time.Time `json:"timestamp" example:"2025-07-17T21:20:48Z"`
}
